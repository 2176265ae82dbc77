package commands

import (
	"fmt"
	"strings"

	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/messaging"
	"github.com/emberfallmud/emberfall/internal/storage"
)

func handleTeleport(c *Context) error {
	if len(c.Args) == 0 {
		return NewUserError("Usage: TELEPORT <room_id> | <player_name>")
	}
	target := strings.Join(c.Args, " ")

	// Room id first, then an online player's location.
	dest := storage.Identifier(strings.ToLower(strings.ReplaceAll(target, " ", "_")))
	if _, err := c.World.Room(dest); err == nil {
		teleportTo(c, dest, "You fade out and reappear elsewhere.")
		return nil
	}
	if other := c.World.Player(target); other != nil {
		teleportTo(c, other.RoomId, fmt.Sprintf("You teleport to %s.", other.Name))
		return nil
	}
	return NewUserError("Target not found.")
}

func teleportTo(c *Context, dest storage.Identifier, msg string) {
	p := c.Player
	old := p.RoomId

	c.World.MoveIndex(p.Name, old, dest)
	p.RoomId = dest
	p.VisitRoom(dest)
	p.MarkDirty()

	p.Queue(msg)
	if room, err := c.World.Room(dest); err == nil {
		c.Room = room
		showRoom(c, room)
	}
}

func handleFreeze(c *Context) error {
	if len(c.Args) == 0 {
		return NewUserError("Freeze who?")
	}
	target := c.World.Player(strings.Join(c.Args, " "))
	if target == nil {
		return NewUserError("Player not found.")
	}

	if target.Flags.Bool("frozen", false) {
		target.Flags.Set("frozen", false)
		c.Player.Queue(fmt.Sprintf("%s is thawed.", target.Name))
		target.Queue("You can move again.")
	} else {
		target.Flags.Set("frozen", true)
		c.Player.Queue(fmt.Sprintf("%s is now frozen.", target.Name))
		target.Queue("You have been frozen by an administrator.")
	}
	target.MarkDirty()
	return nil
}

func handleRestore(c *Context) error {
	target := c.Player
	if len(c.Args) > 0 {
		found := c.World.Player(strings.Join(c.Args, " "))
		if found == nil {
			return NewUserError("Player not found.")
		}
		target = found
	}

	target.HP = target.MaxHP()
	target.Mana = target.MaxMana()
	target.Stamina = target.MaxStamina()
	target.Spirit = target.MaxSpirit()
	target.Wounds = map[string]int{}
	target.Scars = map[string]int{}
	target.Bandaged = map[string]bool{}
	target.ConLost = 0
	target.DeathStingPoints = 0
	target.MarkDirty()

	target.Queue("You feel a divine energy fully restore you.")
	if target != c.Player {
		c.Player.Queue(fmt.Sprintf("You restored %s.", target.Name))
	}
	return nil
}

func handleWiz(c *Context) error {
	p := c.Player
	if p.Flags.Bool("invisible", false) {
		p.Flags.Set("invisible", false)
		p.Queue("You reappear (Admin Invisibility OFF).")
		c.Ex.broadcast(c.Room.Id, messaging.Envelope{
			Type: messaging.EventAmbient,
			Text: fmt.Sprintf("%s appears out of thin air.", p.Name),
		}, game.Key(p.Name))
	} else {
		p.Flags.Set("invisible", true)
		p.Queue("You fade from sight (Admin Invisibility ON).")
		c.Ex.broadcast(c.Room.Id, messaging.Envelope{
			Type: messaging.EventAmbient,
			Text: fmt.Sprintf("%s fades into thin air.", p.Name),
		}, game.Key(p.Name))
	}
	return nil
}
