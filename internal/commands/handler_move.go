package commands

import (
	"fmt"
	"time"

	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/messaging"
	"github.com/emberfallmud/emberfall/internal/storage"
)

var directions = []struct {
	name    string
	aliases []string
}{
	{"north", []string{"n"}},
	{"south", []string{"s"}},
	{"east", []string{"e"}},
	{"west", []string{"w"}},
	{"northeast", []string{"ne"}},
	{"northwest", []string{"nw"}},
	{"southeast", []string{"se"}},
	{"southwest", []string{"sw"}},
	{"up", []string{"u"}},
	{"down", []string{"d"}},
	{"out", nil},
}

var directionNames = func() map[string]string {
	m := map[string]string{}
	for _, d := range directions {
		m[d.name] = d.name
		for _, a := range d.aliases {
			m[a] = d.name
		}
	}
	return m
}()

func handleGo(c *Context) error {
	if len(c.Args) == 0 {
		return NewUserError("Move where? (e.g., NORTH, SOUTH, E, W, etc.)")
	}
	dir, ok := directionNames[game.Key(c.Args[0])]
	if !ok {
		dir = game.Key(c.Args[0])
	}
	return movePlayer(c, dir)
}

func handleDirection(c *Context) error {
	return movePlayer(c, directionNames[c.Verb])
}

func movePlayer(c *Context, direction string) error {
	p := c.Player

	dest, ok := c.Room.Exit(direction)
	if !ok {
		return NewUserError("You cannot go that way.")
	}

	newRoom, err := c.World.Room(dest)
	if err != nil || dest == "void" {
		return NewUserError("You move, but find only an endless void. You quickly scramble back.")
	}

	old := p.RoomId
	err = c.World.WithRooms(old, dest, func(from, to *game.Room) error {
		releaseTable(c.World, from, p.Name)
		claimTable(to, p.Name)
		return nil
	})
	if err != nil {
		return err
	}

	c.Ex.broadcast(old, messaging.Envelope{
		Type: messaging.EventAmbientMove,
		Text: fmt.Sprintf("%s heads %s.", p.Name, direction),
	}, game.Key(p.Name))

	c.World.MoveIndex(p.Name, old, dest)
	p.RoomId = dest
	p.VisitRoom(dest)
	p.MarkDirty()

	p.Queue(fmt.Sprintf("You move %s...", direction))
	c.Room = newRoom
	showRoom(c, newRoom)

	c.Ex.broadcast(dest, messaging.Envelope{
		Type: messaging.EventAmbientMove,
		Text: fmt.Sprintf("%s arrives.", p.Name),
	}, game.Key(p.Name))

	aggroCheck(c, newRoom)
	return nil
}

// claimTable gives an unowned private table to the entrant.
func claimTable(r *game.Room, playerName string) {
	if r.Template != nil && r.Template.PrivateTable && r.Owner == "" {
		r.Owner = game.Key(playerName)
	}
}

// releaseTable passes table ownership to the oldest remaining
// occupant when the owner walks out.
func releaseTable(w *game.World, r *game.Room, playerName string) {
	if r.Template == nil || !r.Template.PrivateTable {
		return
	}
	if r.Owner != game.Key(playerName) {
		return
	}
	r.Owner = ""
	for _, name := range w.PlayersIn(r.Id) {
		if name != game.Key(playerName) {
			r.Owner = name
			break
		}
	}
	if r.Owner == "" {
		r.Invited = nil
	}
}

// aggroCheck makes hostile mobs in the room open combat against the
// player who just walked in.
func aggroCheck(c *Context, r *game.Room) {
	p := c.Player
	if p.Admin && p.Flags.Bool("invisible", false) {
		return
	}

	for _, m := range r.Mobs {
		if c.World.CombatState(m.Uid) != nil {
			continue
		}
		hostile := m.Template != nil && m.Template.Aggressive
		if !hostile && m.Faction != "" {
			f := c.World.Library.Factions.Get(storage.Identifier(m.Faction))
			hostile = f != nil && f.KOSPlayers
		}
		if !hostile {
			continue
		}

		p.Queue(fmt.Sprintf("The **%s** notices you and attacks!", m.Name))
		c.World.SetCombatState(m.Uid, &game.CombatState{
			Type:       game.StateTypeCombat,
			TargetId:   game.Key(p.Name),
			NextAction: c.Now.Add(time.Second),
			RoomId:     r.Id,
		})
	}
}
