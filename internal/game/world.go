package game

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/emberfallmud/emberfall/internal/assets"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// Session is one connected player: the hydrated character plus the
// transport binding and the per-player command queue.
type Session struct {
	Player   *Player
	Sid      string
	LastSeen time.Time

	Queue []string // commands held back by hard roundtime
}

// Event is a deferred simulation mutation. Transport handlers never
// touch world state directly; they enqueue one of these for the
// scheduler to run.
type Event struct {
	Id   string
	Name string
	Fn   func()
}

// World owns every piece of mutable simulation state. There is
// exactly one per process; verbs and workers receive it by pointer.
//
// Lock order: dirMu before roomMu; no handler holds more than one
// directory-level lock at a time. Broadcasters copy recipient sets
// under dirMu and send with no lock held.
type World struct {
	Library  *assets.Library
	Settings Settings

	playerMu sync.RWMutex
	players  map[string]*Session

	dirMu       sync.RWMutex
	rooms       map[storage.Identifier]*Room
	roomPlayers map[storage.Identifier]map[string]bool
	mobRooms    map[string]storage.Identifier

	roomMu sync.Mutex

	combatMu sync.Mutex
	combat   map[string]*CombatState
	mobHP    map[string]int
	defeated map[string]*DefeatedMob

	tradeMu sync.Mutex
	trades  map[string]*PendingTrade

	groupMu sync.Mutex
	groups  map[string]*Group
	invites map[string]*GroupInvite

	bandMu sync.Mutex
	bands  map[string]*Band

	envMu sync.Mutex
	env   Environment

	eventMu sync.Mutex
	events  []Event
}

func NewWorld(lib *assets.Library, settings Settings) *World {
	return &World{
		Library:     lib,
		Settings:    settings,
		players:     map[string]*Session{},
		rooms:       map[storage.Identifier]*Room{},
		roomPlayers: map[storage.Identifier]map[string]bool{},
		mobRooms:    map[string]storage.Identifier{},
		combat:      map[string]*CombatState{},
		mobHP:       map[string]int{},
		defeated:    map[string]*DefeatedMob{},
		trades:      map[string]*PendingTrade{},
		groups:      map[string]*Group{},
		invites:     map[string]*GroupInvite{},
		bands:       map[string]*Band{},
		env:         NewEnvironment(),
	}
}

// Key collates a player name for map lookups.
func Key(name string) string { return strings.ToLower(name) }

// --- Event queue ---

// Enqueue defers a mutation onto the simulation thread. Non-blocking
// for the caller; the scheduler drains a bounded batch per pass.
func (w *World) Enqueue(name string, fn func()) {
	w.eventMu.Lock()
	defer w.eventMu.Unlock()
	w.events = append(w.events, Event{Id: ulid.Make().String(), Name: name, Fn: fn})
}

// DrainEvents removes and returns up to n queued events.
func (w *World) DrainEvents(n int) []Event {
	w.eventMu.Lock()
	defer w.eventMu.Unlock()
	if n > len(w.events) {
		n = len(w.events)
	}
	out := w.events[:n:n]
	w.events = w.events[n:]
	return out
}

// --- Sessions ---

func (w *World) Session(name string) *Session {
	w.playerMu.RLock()
	defer w.playerMu.RUnlock()
	return w.players[Key(name)]
}

// Player returns the character behind an active session, or nil.
func (w *World) Player(name string) *Player {
	if s := w.Session(name); s != nil {
		return s.Player
	}
	return nil
}

func (w *World) SetSession(s *Session) {
	w.playerMu.Lock()
	defer w.playerMu.Unlock()
	w.players[Key(s.Player.Name)] = s
}

// RemoveSession drops the session and its spatial-index entry.
// Group and band cleanup is the caller's job; it needs messaging.
func (w *World) RemoveSession(name string) *Session {
	key := Key(name)

	w.playerMu.Lock()
	s := w.players[key]
	delete(w.players, key)
	w.playerMu.Unlock()

	if s != nil {
		w.RemovePlayerFromIndex(key, s.Player.RoomId)
	}
	return s
}

// Sessions returns a snapshot of every active session.
func (w *World) Sessions() []*Session {
	w.playerMu.RLock()
	defer w.playerMu.RUnlock()
	out := make([]*Session, 0, len(w.players))
	for _, s := range w.players {
		out = append(out, s)
	}
	return out
}

// --- Spatial index ---

func (w *World) AddPlayerToIndex(name string, roomId storage.Identifier) {
	key := Key(name)
	w.dirMu.Lock()
	defer w.dirMu.Unlock()
	if w.roomPlayers[roomId] == nil {
		w.roomPlayers[roomId] = map[string]bool{}
	}
	w.roomPlayers[roomId][key] = true
}

func (w *World) RemovePlayerFromIndex(name string, roomId storage.Identifier) {
	key := Key(name)
	w.dirMu.Lock()
	defer w.dirMu.Unlock()
	if set := w.roomPlayers[roomId]; set != nil {
		delete(set, key)
		if len(set) == 0 {
			delete(w.roomPlayers, roomId)
		}
	}
}

// MoveIndex relocates a player between room sets atomically.
func (w *World) MoveIndex(name string, from, to storage.Identifier) {
	key := Key(name)
	w.dirMu.Lock()
	defer w.dirMu.Unlock()
	if set := w.roomPlayers[from]; set != nil {
		delete(set, key)
		if len(set) == 0 {
			delete(w.roomPlayers, from)
		}
	}
	if w.roomPlayers[to] == nil {
		w.roomPlayers[to] = map[string]bool{}
	}
	w.roomPlayers[to][key] = true
}

// PlayersIn returns a snapshot of lowercase player names in a room.
func (w *World) PlayersIn(roomId storage.Identifier) []string {
	w.dirMu.RLock()
	defer w.dirMu.RUnlock()
	out := make([]string, 0, len(w.roomPlayers[roomId]))
	for name := range w.roomPlayers[roomId] {
		out = append(out, name)
	}
	return out
}

// --- Mob index ---

func (w *World) RegisterMob(uid string, roomId storage.Identifier) {
	w.dirMu.Lock()
	defer w.dirMu.Unlock()
	w.mobRooms[uid] = roomId
}

func (w *World) UnregisterMob(uid string) {
	w.dirMu.Lock()
	defer w.dirMu.Unlock()
	delete(w.mobRooms, uid)
}

// MobRoom returns where a live mob currently is.
func (w *World) MobRoom(uid string) (storage.Identifier, bool) {
	w.dirMu.RLock()
	defer w.dirMu.RUnlock()
	id, ok := w.mobRooms[uid]
	return id, ok
}

// ActiveMobs returns a snapshot of uid -> room for every live mob.
func (w *World) ActiveMobs() map[string]storage.Identifier {
	w.dirMu.RLock()
	defer w.dirMu.RUnlock()
	out := make(map[string]storage.Identifier, len(w.mobRooms))
	for uid, id := range w.mobRooms {
		out[uid] = id
	}
	return out
}

// --- Rooms ---

// Room hydrates a room into the active cache on first reference and
// returns it. Mob stubs merge their template underneath; uids already
// in the defeated table stay out of the room.
func (w *World) Room(id storage.Identifier) (*Room, error) {
	w.dirMu.Lock()
	defer w.dirMu.Unlock()

	if r, ok := w.rooms[id]; ok {
		return r, nil
	}

	tmpl := w.Library.Rooms.Get(id)
	if tmpl == nil {
		return nil, fmt.Errorf("unknown room %q", id)
	}

	r := &Room{Id: id, Template: tmpl}

	for _, stub := range tmpl.Mobs {
		mobTmpl := w.Library.Monsters.Get(stub.MonsterId)
		if mobTmpl == nil {
			continue
		}
		if stub.Uid != "" && w.isDefeated(stub.Uid) {
			continue
		}
		m := HydrateMob(stub, mobTmpl)
		r.Mobs = append(r.Mobs, m)
		w.mobRooms[m.Uid] = id
	}

	for _, stub := range tmpl.Items {
		ref := assets.ItemRef{ItemId: stub.ItemId, Uid: stub.Uid}
		if ref.Uid == "" {
			ref.Uid = uuid.NewString()
		}
		r.Items = append(r.Items, ref)
	}

	w.rooms[id] = r
	return r, nil
}

func (w *World) isDefeated(uid string) bool {
	w.combatMu.Lock()
	defer w.combatMu.Unlock()
	_, ok := w.defeated[uid]
	return ok
}

// WithRoom hydrates a room and runs fn with the room lock held.
func (w *World) WithRoom(id storage.Identifier, fn func(*Room) error) error {
	r, err := w.Room(id)
	if err != nil {
		return err
	}
	w.roomMu.Lock()
	defer w.roomMu.Unlock()
	return fn(r)
}

// WithRooms hydrates two rooms and runs fn with the room lock held
// once, for cross-room moves.
func (w *World) WithRooms(a, b storage.Identifier, fn func(from, to *Room) error) error {
	from, err := w.Room(a)
	if err != nil {
		return err
	}
	to, err := w.Room(b)
	if err != nil {
		return err
	}
	w.roomMu.Lock()
	defer w.roomMu.Unlock()
	return fn(from, to)
}

// ActiveRooms returns a snapshot of hydrated room ids.
func (w *World) ActiveRooms() []storage.Identifier {
	w.dirMu.RLock()
	defer w.dirMu.RUnlock()
	out := make([]storage.Identifier, 0, len(w.rooms))
	for id := range w.rooms {
		out = append(out, id)
	}
	return out
}

// --- Combat state ---

func (w *World) CombatState(id string) *CombatState {
	w.combatMu.Lock()
	defer w.combatMu.Unlock()
	return w.combat[id]
}

func (w *World) SetCombatState(id string, cs *CombatState) {
	w.combatMu.Lock()
	defer w.combatMu.Unlock()
	w.combat[id] = cs
}

func (w *World) RemoveCombatState(id string) *CombatState {
	w.combatMu.Lock()
	defer w.combatMu.Unlock()
	cs := w.combat[id]
	delete(w.combat, id)
	return cs
}

// StopCombatBetween clears both sides of an engagement.
func (w *World) StopCombatBetween(a, b string) {
	w.combatMu.Lock()
	defer w.combatMu.Unlock()
	delete(w.combat, a)
	delete(w.combat, b)
}

// CombatStates returns a snapshot of every entry.
func (w *World) CombatStates() map[string]*CombatState {
	w.combatMu.Lock()
	defer w.combatMu.Unlock()
	out := make(map[string]*CombatState, len(w.combat))
	for id, cs := range w.combat {
		out[id] = cs
	}
	return out
}

// --- Runtime monster hp ---

// MobHP returns the current hp for a mob, seeding from maxHP on
// first reference.
func (w *World) MobHP(uid string, maxHP int) int {
	w.combatMu.Lock()
	defer w.combatMu.Unlock()
	if hp, ok := w.mobHP[uid]; ok {
		return hp
	}
	w.mobHP[uid] = maxHP
	return maxHP
}

// DamageMob subtracts damage and returns the remaining hp.
func (w *World) DamageMob(uid string, maxHP, damage int) int {
	w.combatMu.Lock()
	defer w.combatMu.Unlock()
	if _, ok := w.mobHP[uid]; !ok {
		w.mobHP[uid] = maxHP
	}
	w.mobHP[uid] -= damage
	return w.mobHP[uid]
}

func (w *World) RemoveMobHP(uid string) {
	w.combatMu.Lock()
	defer w.combatMu.Unlock()
	delete(w.mobHP, uid)
}

// --- Defeated table ---

func (w *World) Defeated(uid string) *DefeatedMob {
	w.combatMu.Lock()
	defer w.combatMu.Unlock()
	return w.defeated[uid]
}

func (w *World) SetDefeated(uid string, d *DefeatedMob) {
	w.combatMu.Lock()
	defer w.combatMu.Unlock()
	w.defeated[uid] = d
}

func (w *World) RemoveDefeated(uid string) *DefeatedMob {
	w.combatMu.Lock()
	defer w.combatMu.Unlock()
	d := w.defeated[uid]
	delete(w.defeated, uid)
	return d
}

// DefeatedMobs returns a snapshot of the respawn table.
func (w *World) DefeatedMobs() map[string]*DefeatedMob {
	w.combatMu.Lock()
	defer w.combatMu.Unlock()
	out := make(map[string]*DefeatedMob, len(w.defeated))
	for uid, d := range w.defeated {
		out[uid] = d
	}
	return out
}

// --- Trades ---

func (w *World) Trade(receiver string) *PendingTrade {
	w.tradeMu.Lock()
	defer w.tradeMu.Unlock()
	return w.trades[Key(receiver)]
}

func (w *World) SetTrade(receiver string, t *PendingTrade) {
	w.tradeMu.Lock()
	defer w.tradeMu.Unlock()
	w.trades[Key(receiver)] = t
}

func (w *World) RemoveTrade(receiver string) *PendingTrade {
	w.tradeMu.Lock()
	defer w.tradeMu.Unlock()
	t := w.trades[Key(receiver)]
	delete(w.trades, Key(receiver))
	return t
}

// Trades returns a snapshot keyed by receiver.
func (w *World) Trades() map[string]*PendingTrade {
	w.tradeMu.Lock()
	defer w.tradeMu.Unlock()
	out := make(map[string]*PendingTrade, len(w.trades))
	for k, t := range w.trades {
		out[k] = t
	}
	return out
}

// --- Groups ---

func (w *World) Group(id string) *Group {
	if id == "" {
		return nil
	}
	w.groupMu.Lock()
	defer w.groupMu.Unlock()
	return w.groups[id]
}

func (w *World) SetGroup(g *Group) {
	w.groupMu.Lock()
	defer w.groupMu.Unlock()
	w.groups[g.Id] = g
}

func (w *World) RemoveGroup(id string) {
	w.groupMu.Lock()
	defer w.groupMu.Unlock()
	delete(w.groups, id)
}

// NewGroup creates a group led by name.
func (w *World) NewGroup(leader string) *Group {
	g := &Group{Id: uuid.NewString(), Leader: Key(leader), Members: []string{Key(leader)}}
	w.SetGroup(g)
	return g
}

func (w *World) Invite(name string) *GroupInvite {
	w.groupMu.Lock()
	defer w.groupMu.Unlock()
	return w.invites[Key(name)]
}

func (w *World) SetInvite(name string, inv *GroupInvite) {
	w.groupMu.Lock()
	defer w.groupMu.Unlock()
	w.invites[Key(name)] = inv
}

func (w *World) RemoveInvite(name string) *GroupInvite {
	w.groupMu.Lock()
	defer w.groupMu.Unlock()
	inv := w.invites[Key(name)]
	delete(w.invites, Key(name))
	return inv
}

// Invites returns a snapshot keyed by invitee.
func (w *World) Invites() map[string]*GroupInvite {
	w.groupMu.Lock()
	defer w.groupMu.Unlock()
	out := make(map[string]*GroupInvite, len(w.invites))
	for k, inv := range w.invites {
		out[k] = inv
	}
	return out
}

// --- Bands ---

func (w *World) Band(id string) *Band {
	if id == "" {
		return nil
	}
	w.bandMu.Lock()
	defer w.bandMu.Unlock()
	return w.bands[id]
}

func (w *World) SetBand(b *Band) {
	w.bandMu.Lock()
	defer w.bandMu.Unlock()
	w.bands[b.Id] = b
}

func (w *World) RemoveBand(id string) {
	w.bandMu.Lock()
	defer w.bandMu.Unlock()
	delete(w.bands, id)
}

// LoadBands replaces the band table wholesale, used at boot.
func (w *World) LoadBands(bands map[string]*Band) {
	w.bandMu.Lock()
	defer w.bandMu.Unlock()
	w.bands = bands
}

// Bands returns a snapshot of every band.
func (w *World) Bands() map[string]*Band {
	w.bandMu.Lock()
	defer w.bandMu.Unlock()
	out := make(map[string]*Band, len(w.bands))
	for id, b := range w.bands {
		out[id] = b
	}
	return out
}

// BankBandXP adds experience to a band's bank for the next payout.
func (w *World) BankBandXP(id string, amount int) {
	w.bandMu.Lock()
	defer w.bandMu.Unlock()
	if b, ok := w.bands[id]; ok {
		b.XPBank += amount
	}
}

// --- Environment ---

func (w *World) Env() Environment {
	w.envMu.Lock()
	defer w.envMu.Unlock()
	return w.env
}

func (w *World) SetEnv(env Environment) {
	w.envMu.Lock()
	defer w.envMu.Unlock()
	w.env = env
}

// RollChance draws r in [0,1) and reports r < chance.
func RollChance(chance float64) bool {
	return rand.Float64() < chance
}
