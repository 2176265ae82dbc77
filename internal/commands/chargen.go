package commands

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// Character creation walks a fixed script: roll the twelve stats
// (step 1), assign them (step 2), then answer the appearance
// questions (steps 3 through 17). Step 99 means finished and waiting
// on initial training.

// statRollRanges are the twelve (min,max) bands one stat pool draws
// from, in order.
var statRollRanges = [12][2]int{
	{30, 90},
	{70, 90}, {70, 90}, {70, 90},
	{60, 80}, {60, 80}, {60, 80},
	{50, 80}, {50, 80},
	{40, 75}, {40, 75},
	{40, 80},
}

var (
	physicalPriority     = []string{"STR", "DEX", "CON", "AGI"}
	intellectualPriority = []string{"LOG", "INT", "WIS", "INF"}
	spiritualPriority    = []string{"ZEA", "ESS", "WIS", "DIS"}
)

type chargenQuestion struct {
	Key    string
	Prompt string
}

var chargenQuestions = []chargenQuestion{
	{"race", "You see your reflection. What is your **Race**?\n(Options: Human, Elf, Dwarf, Dark Elf)"},
	{"height", "What is your **Height**?\n(Options: shorter than average, average, taller than average)"},
	{"build", "What is your **Body Build**?\n(Options: slender, average, athletic, stocky, burly)"},
	{"age", "How **Old** do you appear?\n(Options: youthful, in your prime, middle-aged, wizened with age)"},
	{"eye_char", "What is your **Eye Characteristic**?\n(Options: piercing, clear, hooded, bright, deep-set)"},
	{"eye_color", "What is your **Eye Color**?\n(Options: blue, brown, green, hazel, violet, silver)"},
	{"complexion", "What is your **Complexion**?\n(Options: pale, fair, tan, dark, ashen, ruddy)"},
	{"hair_style", "What is your **Hair Style**?\n(Options: short, long, shoulder-length, shaved, cropped)"},
	{"hair_texture", "What is your **Hair Texture**?\n(Options: straight, wavy, curly, braided)"},
	{"hair_color", "What is your **Hair Color**?\n(Options: black, brown, blonde, red, silver, white)"},
	{"hair_quirk", "What is your **Hair Quirk**?\n(e.g., swept back, messy, in a ponytail, none)"},
	{"face", "What is your **Face Shape**?\n(Options: angular, round, square, oval)"},
	{"nose", "What is your **Nose Shape**?\n(Options: straight, aquiline, broad, button)"},
	{"mark", "Any **Distinguishing Mark**?\n(e.g., a scar over one eye, none)"},
	{"unique", "Finally, what **Unique Feature** do you have?\n(e.g., a silver locket, a faint aura, none)"},
}

// chargenPool is the transient roll state for one player mid-creation.
// It is never persisted; a reconnect mid-roll simply rolls fresh.
type chargenPool struct {
	current []int
	best    []int
	assign  []int
}

func (e *Executor) rollStatPool() []int {
	pool := make([]int, 0, len(statRollRanges))
	for _, r := range statRollRanges {
		pool = append(pool, r[0]+e.LootRoll.IntN(r[1]-r[0]+1))
	}
	return pool
}

// beginStatRoll opens character creation with the first stat roll.
func (e *Executor) beginStatRoll(p *game.Player) {
	p.Queue("\nFirst, you must roll your 12 base stats.")

	pool := e.rollStatPool()
	cp := &chargenPool{current: pool, best: pool}
	e.chargen[game.Key(p.Name)] = cp

	p.ChargenStep = 1
	p.MarkDirty()
	e.sendStatRollPrompt(p, cp)
}

func poolString(pool []int) string {
	sorted := append([]int(nil), pool...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	parts := make([]string, len(sorted))
	for i, v := range sorted {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}

func poolTotal(pool []int) int {
	total := 0
	for _, v := range pool {
		total += v
	}
	return total
}

func (e *Executor) sendStatRollPrompt(p *game.Player, cp *chargenPool) {
	p.Queue("\n--- **Your CURRENT Stat Roll** ---")
	p.Queue(fmt.Sprintf("Roll:  %s", poolString(cp.current)))
	p.Queue(fmt.Sprintf("Total: **%d**", poolTotal(cp.current)))
	p.Queue("--- **Your BEST Stat Roll** ---")
	p.Queue(fmt.Sprintf("Pool:  %s", poolString(cp.best)))
	p.Queue(fmt.Sprintf("Total: **%d**", poolTotal(cp.best)))
	p.Queue("--- Options ---")
	p.Queue("- REROLL")
	p.Queue("- USE THIS ROLL (Selects the CURRENT roll)")
	p.Queue("- USE BEST ROLL (Selects the BEST roll)")
}

// runChargen processes one line of input during character creation.
func (e *Executor) runChargen(p *game.Player, line string) {
	key := game.Key(p.Name)
	cp := e.chargen[key]
	if cp == nil {
		cp = &chargenPool{}
		e.chargen[key] = cp
	}

	command := strings.ToLower(strings.TrimSpace(line))

	switch {
	case p.ChargenStep == 1:
		e.handleStatRollInput(p, cp, command)
	case p.ChargenStep == 2:
		e.handleAssignmentInput(p, cp, command)
	case p.ChargenStep > 2 && p.ChargenStep < 99:
		e.handleAppearanceInput(p, line)
	default:
		p.Queue("An error occurred. Please refresh.")
		p.GameState = game.StatePlaying
		p.MarkDirty()
	}
}

func (e *Executor) handleStatRollInput(p *game.Player, cp *chargenPool, command string) {
	switch command {
	case "reroll":
		p.Queue("> REROLL")

		pool := e.rollStatPool()
		cp.current = pool
		newTotal := poolTotal(pool)
		bestTotal := poolTotal(cp.best)
		if newTotal > bestTotal || len(cp.best) == 0 {
			p.Queue(fmt.Sprintf("New total: %d. **This is your new BEST roll!**", newTotal))
			cp.best = pool
		} else {
			p.Queue(fmt.Sprintf("New total: %d. Your best remains %d.", newTotal, bestTotal))
		}
		e.sendStatRollPrompt(p, cp)

	case "use this roll":
		if len(cp.current) == 0 {
			e.beginStatRoll(p)
			return
		}
		p.Queue("> USE THIS ROLL")
		cp.assign = cp.current
		p.ChargenStep = 2
		p.MarkDirty()
		e.sendAssignmentPrompt(p, cp, "CURRENT")

	case "use best roll":
		if len(cp.best) == 0 {
			e.beginStatRoll(p)
			return
		}
		p.Queue("> USE BEST ROLL")
		cp.assign = cp.best
		p.ChargenStep = 2
		p.MarkDirty()
		e.sendAssignmentPrompt(p, cp, "BEST")

	default:
		if len(cp.current) == 0 {
			// Reconnected mid-roll with no transient state left.
			e.beginStatRoll(p)
			return
		}
		p.Queue("That is not a valid command.")
		e.sendStatRollPrompt(p, cp)
	}
}

func (e *Executor) sendAssignmentPrompt(p *game.Player, cp *chargenPool, poolName string) {
	p.Queue(fmt.Sprintf("\n--- Assigning your **%s** Roll ---", poolName))
	p.Queue(fmt.Sprintf("Pool: %s", poolString(cp.assign)))
	p.Queue("How would you like to assign these stats?")
	p.Queue("- ASSIGN PHYSICAL (Prioritizes STR, DEX, CON, AGI)")
	p.Queue("- ASSIGN INTELLECTUAL (Prioritizes LOG, INT, WIS, INF)")
	p.Queue("- ASSIGN SPIRITUAL (Prioritizes ZEA, ESS, WIS, DIS)")
}

func (e *Executor) handleAssignmentInput(p *game.Player, cp *chargenPool, command string) {
	if len(cp.assign) == 0 {
		e.beginStatRoll(p)
		return
	}

	var priority []string
	switch command {
	case "assign physical":
		p.Queue("> ASSIGN PHYSICAL")
		priority = physicalPriority
	case "assign intellectual":
		p.Queue("> ASSIGN INTELLECTUAL")
		priority = intellectualPriority
	case "assign spiritual":
		p.Queue("> ASSIGN SPIRITUAL")
		priority = spiritualPriority
	default:
		p.Queue("That is not a valid assignment command.")
		e.sendAssignmentPrompt(p, cp, "SELECTED")
		return
	}

	p.Stats = assignStatsByPriority(cp.assign, priority)
	p.ClampVitals()
	p.MarkDirty()
	p.Queue(formatStats(p.Stats))

	p.ChargenStep = 3
	e.sendChargenPrompt(p)
}

// assignStatsByPriority hands out the pool highest-first: the
// priority stats take the top values, the rest fill alphabetically.
func assignStatsByPriority(pool []int, priority []string) map[string]int {
	sorted := append([]int(nil), pool...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	remaining := []string{
		"STR", "CON", "DEX", "AGI",
		"LOG", "INT", "WIS", "INF",
		"ZEA", "ESS", "DIS", "AUR",
	}
	out := map[string]int{}

	take := func(stat string) bool {
		for i, s := range remaining {
			if s == stat {
				remaining = append(remaining[:i], remaining[i+1:]...)
				return true
			}
		}
		return false
	}

	for _, stat := range priority {
		if len(sorted) == 0 {
			break
		}
		if take(stat) {
			out[stat] = sorted[0]
			sorted = sorted[1:]
		}
	}

	sort.Strings(remaining)
	for _, stat := range remaining {
		if len(sorted) == 0 {
			break
		}
		out[stat] = sorted[0]
		sorted = sorted[1:]
	}
	return out
}

func formatStats(stats map[string]int) string {
	get := func(s string) string {
		if v, ok := stats[s]; ok {
			return fmt.Sprintf("%-3d", v)
		}
		return "---"
	}
	lines := []string{
		"**Your Assigned Stats:**",
		"--- Physical ---",
		fmt.Sprintf("STR: %s CON: %s DEX: %s AGI: %s", get("STR"), get("CON"), get("DEX"), get("AGI")),
		"--- Mental ---",
		fmt.Sprintf("LOG: %s INT: %s WIS: %s INF: %s", get("LOG"), get("INT"), get("WIS"), get("INF")),
		"--- Spiritual ---",
		fmt.Sprintf("ZEA: %s ESS: %s", get("ZEA"), get("ESS")),
		"--- Hybrid ---",
		fmt.Sprintf("DIS: %s AUR: %s", get("DIS"), get("AUR")),
	}
	return strings.Join(lines, "\n")
}

func (e *Executor) sendChargenPrompt(p *game.Player) {
	idx := p.ChargenStep - 3
	if idx < 0 || idx >= len(chargenQuestions) {
		p.Queue("An error occurred in character creation.")
		p.GameState = game.StatePlaying
		p.MarkDirty()
		return
	}
	p.Queue("\n" + chargenQuestions[idx].Prompt)
}

func (e *Executor) handleAppearanceInput(p *game.Player, line string) {
	idx := p.ChargenStep - 3
	if idx < 0 || idx >= len(chargenQuestions) {
		p.GameState = game.StatePlaying
		p.MarkDirty()
		return
	}

	q := chargenQuestions[idx]
	answer := strings.TrimSpace(line)
	if strings.EqualFold(answer, "none") {
		answer = ""
	}

	if p.Appearance == nil {
		p.Appearance = map[string]string{}
	}
	p.Appearance[q.Key] = answer
	p.Queue(fmt.Sprintf("> %s", answer))

	if q.Key == "race" && answer != "" {
		raceId := storage.Identifier(strings.ReplaceAll(strings.ToLower(answer), " ", "_"))
		if race := e.World.Library.Races.Get(raceId); race != nil {
			p.Race = raceId
			p.SetRace(race)
		}
	}

	p.ChargenStep++
	p.MarkDirty()

	if p.ChargenStep-3 < len(chargenQuestions) {
		e.sendChargenPrompt(p)
		return
	}

	e.finishChargen(p)
}

// finishChargen grants the level-zero training points and drops the
// player into the initial training session.
func (e *Executor) finishChargen(p *game.Player) {
	p.ChargenStep = 99
	delete(e.chargen, game.Key(p.Name))

	var ptps, mtps, stps int
	if leveling := e.World.Library.Leveling.Get("default"); leveling != nil {
		row := leveling.ForLevel(1)
		ptps, mtps, stps = row.PTP, row.MTP, row.STP
	}
	p.PTPs += ptps
	p.MTPs += mtps
	p.STPs += stps
	p.Queue("\nYou have received your initial training points:")
	p.Queue(fmt.Sprintf(" %d PTPs, %d MTPs, %d STPs", ptps, mtps, stps))

	p.GameState = game.StateTraining
	p.MarkDirty()

	p.Queue("\nCharacter creation complete! You must now train your initial skills.")
	showSkillList(e.World.Library, p, "all")
	showTrainingMenu(p)
}

// ceilHalf rounds up the halved base cost, the floor of the stat
// discount.
func ceilHalf(n int) int {
	return int(math.Ceil(float64(n) / 2.0))
}
