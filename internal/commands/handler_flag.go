package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emberfallmud/emberfall/internal/game"
)

// flagOptions lists the accepted values per flag. Plain on/off flags
// are stored as booleans so event filtering can read them directly;
// multi-valued flags are stored as strings.
var flagOptions = map[string][]string{
	"mechanics":    {"on", "numberless", "flavorless", "brief", "off"},
	"combat":       {"on", "numberless", "flavorless", "brief", "off"},
	"showdeath":    {"on", "off"},
	"descriptions": {"on", "brief", "off"},
	"ambient":      {"on", "off"},
	"idlekick":     {"on", "off"},
	"righthand":    {"on", "off"},
	"lefthand":     {"on", "off"},
	"safedrop":     {"on", "off"},
	"groupinvites": {"on", "off"},
}

type flagDefault struct {
	name string
	def  string
}

// flagDefaults fixes the display order and default of every flag.
var flagDefaults = []flagDefault{
	{"mechanics", "on"},
	{"combat", "on"},
	{"showdeath", "on"},
	{"descriptions", "on"},
	{"ambient", "on"},
	{"idlekick", "on"},
	{"idletime", "30"},
	{"righthand", "on"},
	{"lefthand", "off"},
	{"safedrop", "on"},
	{"groupinvites", "on"},
}

func isOnOffFlag(name string) bool {
	opts := flagOptions[name]
	return len(opts) == 2 && opts[0] == "on" && opts[1] == "off"
}

// flagString reads a flag value as its display string, regardless of
// whether it is stored as a string, bool, or int.
func flagString(p *game.Player, key, def string) string {
	var s string
	if found, err := p.Flags.Get(key, &s); found && err == nil {
		return s
	}
	var b bool
	if found, err := p.Flags.Get(key, &b); found && err == nil {
		if b {
			return "on"
		}
		return "off"
	}
	var n int
	if found, err := p.Flags.Get(key, &n); found && err == nil {
		return strconv.Itoa(n)
	}
	return def
}

func flagInt(p *game.Player, key string, def int) int {
	var n int
	if found, err := p.Flags.Get(key, &n); found && err == nil {
		return n
	}
	return def
}

func setFlag(p *game.Player, name, value string) {
	if isOnOffFlag(name) {
		p.Flags.Set(name, value == "on")
	} else {
		p.Flags.Set(name, value)
	}
	p.MarkDirty()
}

func showCurrentFlags(p *game.Player) {
	p.Queue("--- **Your Current Flags** ---")
	for _, f := range flagDefaults {
		value := flagString(p, f.name, f.def)
		p.Queue(fmt.Sprintf("%-15s %s", strings.ToUpper(f.name), strings.ToUpper(value)))
	}
}

func handleFlag(c *Context) error {
	p := c.Player
	args := c.Args

	switch strings.ToLower(strings.Join(args, " ")) {
	case "group open":
		args = []string{"groupinvites", "on"}
		p.Queue("(Alias for: FLAG GROUPINVITES ON)")
	case "group close":
		args = []string{"groupinvites", "off"}
		p.Queue("(Alias for: FLAG GROUPINVITES OFF)")
	}

	if len(args) == 0 {
		showCurrentFlags(p)
		return nil
	}
	if len(args) < 2 {
		return NewUserError("Usage: FLAG <setting> <value> (e.g., FLAG COMBAT BRIEF)")
	}

	name := strings.ToLower(args[0])
	value := strings.ToLower(strings.Join(args[1:], " "))

	if name == "idletime" {
		minutes, err := strconv.Atoi(value)
		if err != nil {
			return NewUserError("Usage: FLAG IDLETIME <minutes>")
		}
		if minutes < 5 || minutes > 120 {
			return NewUserError("IDLETIME must be between 5 and 120 minutes.")
		}
		p.Flags.Set("idletime", minutes)
		p.MarkDirty()
		p.Queue(fmt.Sprintf("Flag IDLETIME set to %d minutes.", minutes))
		return nil
	}

	opts, ok := flagOptions[name]
	if !ok {
		p.Queue(fmt.Sprintf("Unknown flag: '%s'.", name))
		p.Queue("Type FLAG to see all available settings.")
		return nil
	}

	valid := false
	for _, o := range opts {
		if o == value {
			valid = true
			break
		}
	}
	if !valid {
		return NewUserError(fmt.Sprintf("Invalid value. Options for %s are: %s.",
			strings.ToUpper(name), strings.ToUpper(strings.Join(opts, ", "))))
	}

	setFlag(p, name, value)
	p.Queue(fmt.Sprintf("Flag %s set to %s.", strings.ToUpper(name), strings.ToUpper(value)))

	// Only one hand can be the default at a time.
	if name == "righthand" && value == "on" && flagString(p, "lefthand", "off") == "on" {
		setFlag(p, "lefthand", "off")
		p.Queue("Flag LEFTHAND set to OFF (mutually exclusive).")
	} else if name == "lefthand" && value == "on" && flagString(p, "righthand", "on") == "on" {
		setFlag(p, "righthand", "off")
		p.Queue("Flag RIGHTHAND set to OFF (mutually exclusive).")
	}
	return nil
}
