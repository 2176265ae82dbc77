package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/messaging"
)

var stanceAliases = map[string]string{
	"off": "offensive", "offensive": "offensive",
	"adv": "advance", "advance": "advance",
	"fwd": "forward", "forward": "forward",
	"neu": "neutral", "neutral": "neutral",
	"gua": "guarded", "guarded": "guarded",
	"def": "defensive", "defensive": "defensive",
}

// Third-person flavor shown to the room on a stance change.
var stanceMessages = map[string]string{
	"offensive": "drops all defense as he moves into a battle-ready stance.",
	"advance":   "moves into an aggressive stance, clearly preparing for an attack.",
	"forward":   "switches to a slightly aggressive stance.",
	"neutral":   "falls back into a relaxed, neutral stance.",
	"guarded":   "moves into a defensive stance, clearly guarding himself.",
	"defensive": "moves into a defensive stance, ready to fend off an attack.",
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func handleStance(c *Context) error {
	p := c.Player

	if len(c.Args) == 0 {
		p.Queue(fmt.Sprintf("You are currently in **%s** stance.", capitalize(p.Stance)))
		return nil
	}

	stance, ok := stanceAliases[game.Key(c.Args[0])]
	if !ok {
		return NewUserError("Usage: STANCE <offensive|advance|forward|neutral|guarded|defensive>")
	}
	if stance == p.Stance {
		return NewUserError(fmt.Sprintf("You are already in %s stance.", capitalize(stance)))
	}

	p.Stance = stance
	p.MarkDirty()
	p.Queue(fmt.Sprintf("You are now in **%s** stance.", capitalize(stance)))

	c.Ex.broadcast(c.Room.Id, messaging.Envelope{
		Type: messaging.EventMessage,
		Text: fmt.Sprintf("%s %s", p.Name, stanceMessages[stance]),
	}, game.Key(p.Name))
	return nil
}

// postureMap binds each posture verb to the state it moves into.
var postureMap = map[string]string{
	"stand":    "standing",
	"sit":      "sitting",
	"kneel":    "kneeling",
	"prone":    "prone",
	"lay":      "prone",
	"crouch":   "crouching",
	"meditate": "meditating",
}

func handlePosture(c *Context) error {
	p := c.Player
	target := postureMap[c.Verb]

	if p.Posture == target {
		return NewUserError(fmt.Sprintf("You are already %s.", target))
	}

	if target == "standing" {
		failChance := 0.20
		if p.Posture == "prone" {
			failChance = 0.40
		}
		if c.Ex.Roll.Float64() < failChance {
			roll := c.Ex.Roll.D100()
			base := 1.0
			switch {
			case roll <= 10:
				base = 3.0
			case roll <= 40:
				base = 2.0
			}
			reduction := float64(p.StatBonus("DEX")+p.StatBonus("AGI")) / 20.0
			rt := base - reduction
			if rt < 0.5 {
				rt = 0.5
			}
			p.SetRoundtime(c.Now, time.Duration(rt*float64(time.Second)), "hard")
			p.Queue("You stumble slightly while trying to stand.")
			return nil
		}
		p.Posture = "standing"
		p.MarkDirty()
		p.SetRoundtime(c.Now, 500*time.Millisecond, "hard")
		p.Queue("You move to a standing position.")
		return nil
	}

	p.Posture = target
	p.MarkDirty()
	p.SetRoundtime(c.Now, 500*time.Millisecond, "hard")
	p.Queue(fmt.Sprintf("You move into a **%s** position.", target))
	return nil
}
