package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/messaging"
)

func handleSay(c *Context) error {
	if len(c.Args) == 0 {
		return NewUserError("What do you want to say?")
	}
	p := c.Player
	msg := strings.Join(c.Args, " ")

	p.Queue(fmt.Sprintf("You say, \"%s\"", msg))

	heard := fmt.Sprintf("%s says, \"%s\"", p.Name, msg)
	for _, name := range c.World.PlayersIn(c.Room.Id) {
		if name == game.Key(p.Name) {
			continue
		}
		listener := c.World.Player(name)
		if listener == nil || listener.Ignores(game.Key(p.Name)) {
			continue
		}
		c.Ex.send(name, messaging.Envelope{Type: messaging.EventMessage, Text: heard})
	}
	return nil
}

func handleWho(c *Context) error {
	p := c.Player

	type row struct {
		name  string
		level int
		flags []string
	}
	var rows []row
	for _, sess := range c.World.Sessions() {
		other := sess.Player
		if other.Flags.Bool("invisible", false) && !p.Admin {
			continue
		}
		var flags []string
		if other.Admin {
			flags = append(flags, "[ADMIN]")
		}
		for _, f := range p.Friends {
			if f == game.Key(other.Name) {
				flags = append(flags, "[FRIEND]")
				break
			}
		}
		if p.Ignores(game.Key(other.Name)) {
			flags = append(flags, "[IGNORED]")
		}
		rows = append(rows, row{name: other.Name, level: other.Level, flags: flags})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].level != rows[j].level {
			return rows[i].level > rows[j].level
		}
		return rows[i].name < rows[j].name
	})

	p.Queue("\n--- Citizens of Emberfall ---")
	for _, r := range rows {
		line := fmt.Sprintf("[Lvl %-2d] %s", r.level, r.name)
		if len(r.flags) > 0 {
			line += " " + strings.Join(r.flags, " ")
		}
		p.Queue(line)
	}
	p.Queue(fmt.Sprintf("\nTotal Online: %d", len(rows)))
	return nil
}
