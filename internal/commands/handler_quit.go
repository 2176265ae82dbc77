package commands

import (
	"fmt"

	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/messaging"
)

func handleSave(c *Context) error {
	c.Ex.save(c.Player)
	c.Player.Queue("Your character has been saved.")
	return nil
}

func handleQuit(c *Context) error {
	p := c.Player
	key := game.Key(p.Name)

	p.Queue("You close your eyes and drift away from the world...")
	c.Ex.save(p)

	// Drop any engagements before the session disappears.
	c.World.RemoveCombatState(key)
	for id, cs := range c.World.CombatStates() {
		if cs.TargetId == key {
			c.World.RemoveCombatState(id)
		}
	}

	c.Ex.broadcast(p.RoomId, messaging.Envelope{
		Type: messaging.EventAmbientMove,
		Text: fmt.Sprintf("%s disappears.", p.Name),
	}, key)

	c.World.RemoveSession(p.Name)
	return nil
}
