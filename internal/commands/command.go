// Package commands implements the command executor: parsing a command
// line into a verb and arguments, gating by game state and roundtime,
// dispatching to a verb handler, and packaging the response.
package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emberfallmud/emberfall/internal/combat"
	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/loot"
	"github.com/emberfallmud/emberfall/internal/messaging"
	"github.com/emberfallmud/emberfall/internal/metrics"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// PlayerStore is the slice of the document store the executor needs:
// hydration on first command and immediate saves after critical verbs.
type PlayerStore interface {
	GetPlayer(name string) (*game.Player, error)
	PutPlayer(p *game.Player) error
	PutBand(b *game.Band) error
	DeleteBand(id string) error
}

// Notifier pushes events to player channels. Satisfied by
// messaging.Publisher; tests substitute a recorder.
type Notifier interface {
	Send(playerName string, env messaging.Envelope) error
	BroadcastRoom(w *game.World, roomId storage.Identifier, env messaging.Envelope, skip ...string) error
}

// Response is what a dispatched command returns to the transport.
type Response struct {
	Messages     []string          `json:"messages"`
	GameState    string            `json:"game_state"`
	Vitals       game.Vitals       `json:"vitals"`
	MapData      map[string]MapRoom `json:"map_data,omitempty"`
	LeaveMessage string            `json:"leave_message,omitempty"`
}

// MapRoom is one visited room in the client map delta.
type MapRoom struct {
	Name  string            `json:"name"`
	Exits map[string]string `json:"exits"`
}

// Verbs a player may still use while frozen by an administrator.
var frozenAllow = map[string]bool{
	"look": true, "say": true, "quit": true, "help": true,
}

// Verbs allowed through a hard roundtime instead of being queued.
var hardRTAllow = map[string]bool{
	"look": true, "help": true, "quit": true, "say": true,
}

// Verbs recognized during a training session.
var trainingAllow = map[string]bool{
	"list": true, "train": true, "done": true, "check": true,
	"checkin": true, "levelup": true, "level": true, "look": true,
	"confirm": true, "cancel": true,
}

// Verbs that request an immediate save after dispatch.
var criticalVerbs = map[string]bool{
	"quit": true, "save": true, "trade": true, "exchange": true,
	"give": true, "accept": true, "buy": true, "sell": true,
}

// Executor resolves players, routes command lines to verb handlers,
// and packages responses. It runs on the simulation goroutine only.
type Executor struct {
	World    *game.World
	Store    PlayerStore
	Notify   Notifier
	Treasure *loot.Manager

	Rules    combat.Rules
	Roll     combat.Roller
	LootRoll loot.Roller

	Clock func() time.Time

	registry map[string]*Registration

	// Transient per-player dialog state, never persisted.
	chargen     map[string]*chargenPool
	conversions map[string]*pendingConversion
}

// NewExecutor wires an executor with the standard verb set.
func NewExecutor(w *game.World, store PlayerStore, notify Notifier, treasure *loot.Manager) *Executor {
	e := &Executor{
		World:       w,
		Store:       store,
		Notify:      notify,
		Treasure:    treasure,
		Rules:       combat.DefaultRules(),
		Roll:        combat.NewRoller(),
		LootRoll:    loot.NewRoller(),
		Clock:       time.Now,
		registry:    map[string]*Registration{},
		chargen:     map[string]*chargenPool{},
		conversions: map[string]*pendingConversion{},
	}
	e.registerAll()
	return e
}

func (e *Executor) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}

// Execute runs one command line for a player. An unknown player is
// hydrated from the store; absent there, a new character is created at
// the chargen start room when an account id is supplied.
func (e *Executor) Execute(playerName, line, sid, accountId string) (*Response, error) {
	now := e.now()

	sess := e.World.Session(playerName)
	if sess == nil {
		var err error
		sess, err = e.hydrate(playerName, sid, accountId, now)
		if err != nil {
			return nil, err
		}
		if sess.Player.GameState == game.StateChargen && sess.Player.ChargenStep == 0 {
			// Brand new character: open with the stat roll instead of
			// treating the first line as a command.
			p := sess.Player
			p.Queue(fmt.Sprintf("Welcome to Emberfall, %s!", p.Name))
			e.beginStatRoll(p)
			return e.respond(p, now), nil
		}
	}
	sess.Sid = sid
	sess.LastSeen = now
	p := sess.Player

	// Stale output from an earlier pass does not belong to this
	// command.
	p.DrainMessages()

	fields := strings.Fields(line)
	if len(fields) == 0 {
		p.Queue("What?")
		return e.respond(p, now), nil
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	if p.Flags.Bool("frozen", false) && !frozenAllow[verb] {
		p.Queue("You are frozen and cannot act.")
		metrics.RecordCommand(verb, metrics.StatusBlocked)
		return e.respond(p, now), nil
	}

	if _, err := e.World.Room(p.RoomId); err != nil {
		p.Queue("The world around you flickers strangely.")
		slog.Error("room hydration failed", "room", p.RoomId, "err", err)
		return e.respond(p, now), nil
	}

	switch p.GameState {
	case game.StateChargen:
		e.runChargen(p, line)
		return e.respond(p, now), nil
	case game.StateTraining:
		if !trainingAllow[verb] {
			p.Queue("You are in the middle of training. Only LIST, TRAIN, CHECK, LEVELUP, and DONE work here.")
			metrics.RecordCommand(verb, metrics.StatusBlocked)
			return e.respond(p, now), nil
		}
	}

	if p.InHardRT(now) && !hardRTAllow[verb] {
		remaining := p.RTEnd.Sub(now).Seconds()
		if len(sess.Queue) < e.World.Settings.CommandQueueDepth {
			sess.Queue = append(sess.Queue, line)
			p.Queue(fmt.Sprintf("Wait %.1f seconds.", remaining))
		} else {
			p.Queue(fmt.Sprintf("Wait %.1f seconds. (Too many commands queued; this one was dropped.)", remaining))
		}
		metrics.RecordCommand(verb, metrics.StatusBlocked)
		return e.respond(p, now), nil
	}

	resp := e.dispatch(sess, verb, args, now)

	if criticalVerbs[verb] {
		e.save(p)
	}

	return resp, nil
}

// dispatch finds and runs the handler for a verb. Handler panics are
// contained: the loop must survive any single bad verb.
func (e *Executor) dispatch(sess *game.Session, verb string, args []string, now time.Time) *Response {
	p := sess.Player

	reg := e.lookup(verb)
	if reg == nil || (reg.Admin && !p.Admin) {
		p.Queue(fmt.Sprintf("I don't know the command **'%s'**.", verb))
		metrics.RecordCommand(verb, metrics.StatusUnknown)
		return e.respond(p, now)
	}

	c := &Context{
		Ex:     e,
		World:  e.World,
		Player: p,
		Args:   args,
		Verb:   verb,
		Now:    now,
	}
	if r, err := e.World.Room(p.RoomId); err == nil {
		c.Room = r
	}

	status := metrics.StatusSuccess
	func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("verb panicked", "verb", verb, "player", p.Name, "panic", r)
				p.Queue(fmt.Sprintf("An unexpected error occurred while running **%s**.", verb))
				status = metrics.StatusError
			}
		}()
		if err := reg.Handler(c); err != nil {
			var ue *UserError
			if errors.As(err, &ue) {
				p.Queue(ue.Message)
			} else {
				slog.Error("verb failed", "verb", verb, "player", p.Name, "err", err)
				p.Queue(fmt.Sprintf("An unexpected error occurred while running **%s**.", verb))
				status = metrics.StatusError
			}
		}
	}()
	metrics.RecordCommand(reg.Name, status)

	resp := e.respond(p, now)
	resp.LeaveMessage = c.LeaveMessage
	return resp
}

// hydrate loads a player from the store or creates a fresh character.
func (e *Executor) hydrate(name, sid, accountId string, now time.Time) (*game.Session, error) {
	var p *game.Player
	if e.Store != nil {
		stored, err := e.Store.GetPlayer(name)
		if err != nil {
			return nil, fmt.Errorf("loading player %q: %w", name, err)
		}
		p = stored
	}

	if p == nil {
		if accountId == "" {
			return nil, fmt.Errorf("unknown player %q", name)
		}
		p = game.NewPlayer(name, accountId, e.World.Settings.ChargenStartRoom)
		p.Admin = e.World.Settings.IsAdminAccount(accountId)
	}

	if p.Race != "" {
		p.SetRace(e.World.Library.Races.Get(p.Race))
	}
	p.ClampVitals()

	sess := &game.Session{Player: p, Sid: sid, LastSeen: now}
	e.World.SetSession(sess)
	e.World.AddPlayerToIndex(p.Name, p.RoomId)
	p.VisitRoom(p.RoomId)
	return sess, nil
}

// save writes a player through immediately, keeping the dirty flag on
// failure so the background writer retries.
func (e *Executor) save(p *game.Player) {
	if e.Store == nil {
		return
	}
	if err := e.Store.PutPlayer(p); err != nil {
		slog.Error("immediate save failed", "player", p.Name, "err", err)
		metrics.PersistenceFailures.Inc()
		p.Queue("(Your progress could not be saved; it will be retried shortly.)")
		return
	}
	p.ClearDirty()
}

// respond drains the player's message buffer into a response with a
// fresh vitals snapshot and map delta.
func (e *Executor) respond(p *game.Player, now time.Time) *Response {
	return &Response{
		Messages:  p.DrainMessages(),
		GameState: p.GameState,
		Vitals:    game.Snapshot(e.World.Library, p, now),
		MapData:   e.mapData(p),
	}
}

// mapData returns the static geometry of every room the player has
// visited: the client draws its map from this.
func (e *Executor) mapData(p *game.Player) map[string]MapRoom {
	if len(p.VisitedRooms) == 0 {
		return nil
	}
	out := make(map[string]MapRoom, len(p.VisitedRooms))
	for id := range p.VisitedRooms {
		tmpl := e.World.Library.Rooms.Get(storage.Identifier(id))
		if tmpl == nil {
			continue
		}
		exits := make(map[string]string, len(tmpl.Exits))
		for dir, dest := range tmpl.Exits {
			exits[dir] = dest
		}
		out[id] = MapRoom{Name: tmpl.Name, Exits: exits}
	}
	return out
}

// send pushes an event to a single player, tolerating a missing
// notifier in tests.
func (e *Executor) send(playerName string, env messaging.Envelope) {
	if e.Notify == nil {
		return
	}
	if err := e.Notify.Send(playerName, env); err != nil {
		slog.Error("send failed", "player", playerName, "err", err)
	}
}

// broadcast fans an event out to a room, skipping the named players.
func (e *Executor) broadcast(roomId storage.Identifier, env messaging.Envelope, skip ...string) {
	if e.Notify == nil {
		return
	}
	if err := e.Notify.BroadcastRoom(e.World, roomId, env, skip...); err != nil {
		slog.Error("broadcast failed", "room", roomId, "err", err)
	}
}
