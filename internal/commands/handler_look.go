package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emberfallmud/emberfall/internal/game"
)

func handleLook(c *Context) error {
	if c.Room == nil {
		return NewUserError("There is nothing here to see.")
	}
	if len(c.Args) == 0 {
		showRoom(c, c.Room)
		return nil
	}
	return lookAt(c, strings.Join(c.Args, " "))
}

// showRoom prints the standard room view: name, description, visible
// contents, other players, and exits.
func showRoom(c *Context, r *game.Room) {
	p := c.Player
	env := c.World.Env()

	p.Queue(fmt.Sprintf("**%s**", r.Template.Name))
	if flagString(p, "descriptions", "on") != "off" {
		p.Queue(r.Template.Description(env.TimeOfDay, env.Weather))
	}

	var seen []string
	for _, m := range r.Mobs {
		seen = append(seen, m.Name)
	}
	for _, corpse := range r.Corpses {
		seen = append(seen, corpse.Name)
	}
	for _, ref := range r.Items {
		if tmpl := c.World.Library.Items.Get(ref.ItemId); tmpl != nil {
			seen = append(seen, tmpl.Name)
		}
	}
	if len(seen) > 0 {
		p.Queue("You also see: " + strings.Join(seen, ", ") + ".")
	}

	var others []string
	for _, name := range c.World.PlayersIn(r.Id) {
		if name == game.Key(p.Name) {
			continue
		}
		pl := c.World.Player(name)
		if pl == nil || pl.Flags.Bool("invisible", false) {
			continue
		}
		others = append(others, pl.Name)
	}
	if len(others) > 0 {
		sort.Strings(others)
		p.Queue("Also here: " + strings.Join(others, ", ") + ".")
	}

	dirs := make([]string, 0, len(r.Template.Exits))
	for dir := range r.Template.Exits {
		dirs = append(dirs, dir)
	}
	if len(dirs) == 0 {
		p.Queue("Obvious exits: none.")
	} else {
		sort.Strings(dirs)
		p.Queue("Obvious exits: " + strings.Join(dirs, ", ") + ".")
	}
}

// lookAt examines a single target in the room.
func lookAt(c *Context, word string) error {
	p := c.Player

	for _, name := range c.World.PlayersIn(c.Room.Id) {
		other := c.World.Player(name)
		if other == nil || game.Key(other.Name) != game.Key(word) {
			continue
		}
		if other.Flags.Bool("invisible", false) && !p.Admin {
			continue
		}
		p.Queue(fmt.Sprintf("You look at %s.", other.Name))
		p.Queue(describePlayer(other))
		return nil
	}

	if m := c.Room.FindMob(word); m != nil {
		p.Queue(fmt.Sprintf("You examine the **%s** closely.", m.Name))
		return nil
	}
	if corpse := c.Room.FindCorpse(word); corpse != nil {
		p.Queue(fmt.Sprintf("You examine the **%s** closely.", corpse.Name))
		return nil
	}
	if idx := c.Room.FindItem(c.World.Library, word); idx >= 0 {
		ref := c.Room.Items[idx]
		if tmpl := c.World.Library.Items.Get(ref.ItemId); tmpl != nil {
			p.Queue(fmt.Sprintf("You examine the **%s** closely.", tmpl.Name))
			return nil
		}
	}

	return NewUserError(fmt.Sprintf("You don't see a **%s** here.", word))
}

// article returns "an" before a vowel sound, "a" otherwise.
func article(word string) string {
	w := strings.TrimSpace(strings.ToLower(word))
	if w == "" {
		return "a"
	}
	if strings.ContainsRune("aeiou", rune(w[0])) {
		return "an"
	}
	return "a"
}

// describePlayer builds the appearance paragraph from the answers the
// character gave during creation.
func describePlayer(p *game.Player) string {
	app := p.Appearance
	get := func(key, def string) string {
		if v, ok := app[key]; ok && v != "" {
			return v
		}
		return def
	}

	var desc []string

	race := get("race", "Human")
	desc = append(desc, fmt.Sprintf("They appear to be %s **%s**.", article(race), race))

	line := fmt.Sprintf("They are %s", get("height", "average"))
	if build := app["build"]; build != "" {
		line += fmt.Sprintf(" and has %s %s build.", article(build), build)
	} else {
		line += "."
	}
	desc = append(desc, line)

	desc = append(desc, fmt.Sprintf("They appear to be %s.", get("age", "in their prime")))

	line = fmt.Sprintf("They have %s %s eyes", get("eye_char", "clear"), get("eye_color", "brown"))
	if complexion := app["complexion"]; complexion != "" {
		line += fmt.Sprintf(" and %s skin.", complexion)
	} else {
		line += "."
	}
	desc = append(desc, line)

	if style := app["hair_style"]; style != "" {
		line = fmt.Sprintf("They have %s %s %s hair", style, get("hair_texture", "straight"), get("hair_color", "brown"))
		if quirk := app["hair_quirk"]; quirk != "" {
			line += fmt.Sprintf(" %s.", quirk)
		} else {
			line += "."
		}
		desc = append(desc, line)
	}

	var face []string
	if f := app["face"]; f != "" {
		face = append(face, fmt.Sprintf("%s %s face", article(f), f))
	}
	if n := app["nose"]; n != "" {
		face = append(face, fmt.Sprintf("%s %s nose", article(n), n))
	}
	if m := app["mark"]; m != "" {
		face = append(face, fmt.Sprintf("%s %s", article(m), m))
	}
	if len(face) > 0 {
		desc = append(desc, "They have "+strings.Join(face, ", ")+".")
	}

	if u := app["unique"]; u != "" {
		desc = append(desc, u+".")
	}

	return strings.Join(desc, "\n")
}

func handleHelp(c *Context) error {
	p := c.Player
	p.Queue("--- Commands ---")
	p.Queue("Movement: NORTH, SOUTH, EAST, WEST, UP, DOWN (or GO <direction>)")
	p.Queue("World: LOOK, SAY <text>, WHO, GET <item>, DROP <item>, INVENTORY, WEALTH")
	p.Queue("Combat: ATTACK <target>, STANCE <name>, STAND/SIT/KNEEL/PRONE")
	p.Queue("Corpses: SEARCH <corpse>, SKIN <corpse>")
	p.Queue("Trading: GIVE <player> <item|silver>, EXCHANGE <item> FOR <n> SILVER, ACCEPT, DECLINE")
	p.Queue("Company: GROUP, JOIN, LEAVE, BAND, BT <text>")
	p.Queue("Progress: EXPERIENCE, CHECKIN (at the inn), FLAG, SAVE, QUIT")
	return nil
}
