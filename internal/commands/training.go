package commands

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/emberfallmud/emberfall/internal/assets"
	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// A skill may be trained at most this many ranks per level.
const ranksPerLevel = 3

// skillCategoryOrder fixes the display order of the ALL listing.
// Categories missing from this list sort after it alphabetically.
var skillCategoryOrder = []string{
	"Armor Skills", "Weapon Skills", "Combat Skills",
	"Defensive Skills", "Physical Skills",
	"General Skills", "Subterfuge Skills", "Magical Skills",
	"Lore Skills", "Mental Skills", "Spiritual Skills",
}

// discountedCost applies the key-stat discount to one bucket's base
// cost: the average of the key attributes, each lifted to at least 70
// and the average clamped to 100, scales the cost linearly down to
// half at 100.
func discountedCost(base int, stats map[string]int, keyStats []string) int {
	if base == 0 {
		return 0
	}
	if len(keyStats) == 0 {
		return base
	}

	var avg float64
	if len(keyStats) == 1 {
		avg = float64(maxInt(70, stats[keyStats[0]]))
	} else {
		a := maxInt(70, stats[keyStats[0]])
		b := maxInt(70, stats[keyStats[1]])
		avg = float64(a+b) / 2.0
	}
	if avg > 100 {
		avg = 100
	}

	pct := (avg - 70.0) / 30.0
	minCost := ceilHalf(base)
	return int(math.Round(float64(base) - float64(base-minCost)*pct))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// skillCosts returns the per-rank training cost of a skill for a
// player, after stat discounts.
func skillCosts(p *game.Player, s *assets.Skill) (ptp, mtp, stp int) {
	ptp = discountedCost(s.Cost.PTP, p.Stats, s.KeyStats)
	mtp = discountedCost(s.Cost.MTP, p.Stats, s.KeyStats)
	stp = discountedCost(s.Cost.STP, p.Stats, s.KeyStats)
	return ptp, mtp, stp
}

// findSkill resolves a skill by display name or id.
func findSkill(lib *assets.Library, name string) (storage.Identifier, *assets.Skill) {
	want := strings.ToLower(strings.TrimSpace(name))
	idForm := strings.ReplaceAll(want, " ", "_")
	for id, s := range lib.Skills.GetAll() {
		if strings.ToLower(s.Name) == want || string(id) == idForm {
			return id, s
		}
	}
	return "", nil
}

func showTrainingMenu(p *game.Player) {
	p.Queue("\n--- **Skill Training** ---")
	p.Queue(fmt.Sprintf(" Physical TPs: %d", p.PTPs))
	p.Queue(fmt.Sprintf(" Mental TPs:   %d", p.MTPs))
	p.Queue(fmt.Sprintf(" Spiritual TPs: %d", p.STPs))
	p.Queue("---")
	p.Queue("Type 'LIST ALL' to see all skills.")
	p.Queue("Type 'LIST CATEGORIES' to see skill groups.")
	p.Queue("Type 'TRAIN <skill> <ranks>' (e.g., TRAIN BRAWLING 1)")
	p.Queue("Type 'DONE' to finish training.")
}

func formatSkillLine(p *game.Player, id storage.Identifier, s *assets.Skill) string {
	rank := p.SkillRank(string(id))
	trained := p.RanksTrainedThisLevel[string(id)]

	if trained >= ranksPerLevel {
		return fmt.Sprintf("- %s (Rank: %-3d) [Maxed for level]", s.Name, rank)
	}
	ptp, mtp, stp := skillCosts(p, s)
	mult := trained + 1
	return fmt.Sprintf("- %s (Rank: %-3d) [Cost: %dp / %dm / %ds]",
		s.Name, rank, ptp*mult, mtp*mult, stp*mult)
}

type skillEntry struct {
	id storage.Identifier
	s  *assets.Skill
}

func sortedSkills(lib *assets.Library) []skillEntry {
	out := make([]skillEntry, 0)
	for id, s := range lib.Skills.GetAll() {
		out = append(out, skillEntry{id, s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].s.Name < out[j].s.Name })
	return out
}

func categoryRank(cat string) int {
	for i, c := range skillCategoryOrder {
		if c == cat {
			return i
		}
	}
	return len(skillCategoryOrder)
}

// showSkillList lists skills for a category, "all" grouped by
// category, or "categories" for the group names.
func showSkillList(lib *assets.Library, p *game.Player, category string) {
	want := strings.ToLower(strings.TrimSpace(category))
	skills := sortedSkills(lib)

	catSet := map[string]bool{}
	for _, e := range skills {
		cat := e.s.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		catSet[cat] = true
	}
	cats := make([]string, 0, len(catSet))
	for c := range catSet {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	switch want {
	case "all":
		ordered := append([]string(nil), cats...)
		sort.SliceStable(ordered, func(i, j int) bool {
			ri, rj := categoryRank(ordered[i]), categoryRank(ordered[j])
			if ri != rj {
				return ri < rj
			}
			return ordered[i] < ordered[j]
		})
		for _, cat := range ordered {
			p.Queue(fmt.Sprintf("--- **%s** ---", strings.ToUpper(cat)))
			for _, e := range skills {
				if eCat := e.s.Category; eCat == cat || (eCat == "" && cat == "Uncategorized") {
					p.Queue(formatSkillLine(p, e.id, e.s))
				}
			}
		}
		return

	case "categories":
		p.Queue("--- **Skill Categories** ---")
		for _, cat := range cats {
			p.Queue(fmt.Sprintf("- %s", cat))
		}
		return
	}

	found := false
	for _, cat := range cats {
		if strings.ToLower(cat) == want {
			found = true
			p.Queue(fmt.Sprintf("--- **%s** ---", strings.ToUpper(cat)))
			for _, e := range skills {
				if eCat := e.s.Category; strings.ToLower(eCat) == want {
					p.Queue(formatSkillLine(p, e.id, e.s))
				}
			}
		}
	}
	if !found {
		p.Queue(fmt.Sprintf("No skills found for category '%s'.", category))
		p.Queue("Type 'LIST CATEGORIES' to see all categories.")
	}
}

// pendingConversion remembers a TRAIN attempt that fell short on one
// or more TP buckets and a CONFIRM would cover by burning surplus
// points two for one.
type pendingConversion struct {
	SkillName string
	Ranks     int
}

var tpBuckets = []string{"PTP", "MTP", "STP"}

func bucketValue(p *game.Player, bucket string) int {
	switch bucket {
	case "PTP":
		return p.PTPs
	case "MTP":
		return p.MTPs
	case "STP":
		return p.STPs
	}
	return 0
}

func addBucket(p *game.Player, bucket string, delta int) {
	switch bucket {
	case "PTP":
		p.PTPs += delta
	case "MTP":
		p.MTPs += delta
	case "STP":
		p.STPs += delta
	}
}

// conversionPlan computes, per deficit bucket, the surplus points to
// burn at two for one. Returns nil when the surpluses cannot cover.
type conversionStep struct {
	From string
	To   string
	Burn int
	Gain int
}

func conversionPlan(p *game.Player, need map[string]int) []conversionStep {
	have := map[string]int{}
	for _, b := range tpBuckets {
		have[b] = bucketValue(p, b)
	}

	var plan []conversionStep
	for _, to := range tpBuckets {
		deficit := need[to] - have[to]
		if deficit <= 0 {
			continue
		}
		for _, from := range tpBuckets {
			if deficit <= 0 {
				break
			}
			if from == to {
				continue
			}
			surplus := have[from] - need[from]
			if surplus < 2 {
				continue
			}
			gain := minInt(deficit, surplus/2)
			plan = append(plan, conversionStep{From: from, To: to, Burn: gain * 2, Gain: gain})
			have[from] -= gain * 2
			have[to] += gain
			deficit -= gain
		}
		if deficit > 0 {
			return nil
		}
	}
	return plan
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// trainSkill spends TPs to raise a skill, proposing a two-for-one
// bucket conversion when one bucket is short but another has surplus.
func (e *Executor) trainSkill(p *game.Player, skillName string, ranks int) {
	if ranks <= 0 {
		p.Queue("You must train at least 1 rank.")
		return
	}

	id, skill := findSkill(e.World.Library, skillName)
	if skill == nil {
		p.Queue(fmt.Sprintf("Unknown skill: '%s'.", skillName))
		return
	}

	already := p.RanksTrainedThisLevel[string(id)]
	if already >= ranksPerLevel {
		p.Queue(fmt.Sprintf("You have already trained **%s** %d times this level.", skill.Name, ranksPerLevel))
		return
	}
	if already+ranks > ranksPerLevel {
		p.Queue(fmt.Sprintf("You can only train %d more rank(s) in **%s** this level.", ranksPerLevel-already, skill.Name))
		return
	}

	ptp, mtp, stp := skillCosts(p, skill)
	var totalP, totalM, totalS int
	for i := 0; i < ranks; i++ {
		mult := already + 1 + i
		totalP += ptp * mult
		totalM += mtp * mult
		totalS += stp * mult
	}

	need := map[string]int{"PTP": totalP, "MTP": totalM, "STP": totalS}
	short := false
	if p.PTPs < totalP {
		p.Queue(fmt.Sprintf("You need %d PTPs but only have %d.", totalP, p.PTPs))
		short = true
	} else if p.MTPs < totalM {
		p.Queue(fmt.Sprintf("You need %d MTPs but only have %d.", totalM, p.MTPs))
		short = true
	} else if p.STPs < totalS {
		p.Queue(fmt.Sprintf("You need %d STPs but only have %d.", totalS, p.STPs))
		short = true
	}

	if short {
		plan := conversionPlan(p, need)
		if plan == nil {
			return
		}
		for _, step := range plan {
			p.Queue(fmt.Sprintf("You could convert %d %ss into %d %ss (two for one).", step.Burn, step.From, step.Gain, step.To))
		}
		p.Queue("Type 'CONFIRM' to convert and train, or 'CANCEL' to abort.")
		e.conversions[game.Key(p.Name)] = &pendingConversion{SkillName: skill.Name, Ranks: ranks}
		return
	}

	p.PTPs -= totalP
	p.MTPs -= totalM
	p.STPs -= totalS

	newRank := p.SkillRank(string(id)) + ranks
	if p.Skills == nil {
		p.Skills = map[string]int{}
	}
	p.Skills[string(id)] = newRank
	if p.RanksTrainedThisLevel == nil {
		p.RanksTrainedThisLevel = map[string]int{}
	}
	p.RanksTrainedThisLevel[string(id)] = already + ranks
	p.MarkDirty()

	p.Queue(fmt.Sprintf("You train **%s** to rank **%d**!", skill.Name, newRank))
	showTrainingMenu(p)
}

// applyConversion burns the planned surplus and retries the deferred
// TRAIN. Reports whether a conversion was pending.
func (e *Executor) applyConversion(p *game.Player) bool {
	key := game.Key(p.Name)
	conv := e.conversions[key]
	if conv == nil {
		return false
	}
	delete(e.conversions, key)

	id, skill := findSkill(e.World.Library, conv.SkillName)
	if skill == nil {
		p.Queue(fmt.Sprintf("Unknown skill: '%s'.", conv.SkillName))
		return true
	}

	already := p.RanksTrainedThisLevel[string(id)]
	ptp, mtp, stp := skillCosts(p, skill)
	var totalP, totalM, totalS int
	for i := 0; i < conv.Ranks; i++ {
		mult := already + 1 + i
		totalP += ptp * mult
		totalM += mtp * mult
		totalS += stp * mult
	}
	need := map[string]int{"PTP": totalP, "MTP": totalM, "STP": totalS}

	plan := conversionPlan(p, need)
	if plan == nil {
		p.Queue("You no longer have enough training points to convert.")
		return true
	}
	for _, step := range plan {
		addBucket(p, step.From, -step.Burn)
		addBucket(p, step.To, step.Gain)
		p.Queue(fmt.Sprintf("You convert %d %ss into %d %ss.", step.Burn, step.From, step.Gain, step.To))
	}
	p.MarkDirty()

	e.trainSkill(p, conv.SkillName, conv.Ranks)
	return true
}

// cancelConversion drops a pending conversion dialog. Reports whether
// one existed.
func (e *Executor) cancelConversion(p *game.Player) bool {
	key := game.Key(p.Name)
	if e.conversions[key] == nil {
		return false
	}
	delete(e.conversions, key)
	p.Queue("You decide against converting your training points.")
	return true
}

func handleCheckin(c *Context) error {
	p := c.Player
	if c.Room == nil || c.Room.Id != c.World.Settings.ChargenStartRoom {
		return NewUserError("You can only check in at the inn.")
	}

	p.GameState = game.StateTraining
	p.MarkDirty()
	p.Queue("You approach the front desk to review your skills...")

	p.Queue("\n--- **All Skills** ---")
	showSkillList(c.World.Library, p, "all")
	showTrainingMenu(p)
	return nil
}

func handleList(c *Context) error {
	p := c.Player
	if p.GameState != game.StateTraining {
		return NewUserError("You can only do that while you are training.")
	}

	category := "categories"
	if len(c.Args) > 0 {
		category = strings.Join(c.Args, " ")
	}
	showSkillList(c.World.Library, p, category)
	showTrainingMenu(p)
	return nil
}

func handleTrain(c *Context) error {
	p := c.Player
	if p.GameState != game.StateTraining {
		return NewUserError("You can only do that while you are training.")
	}
	if len(c.Args) < 2 {
		return NewUserError("Usage: TRAIN <skill name> <ranks>")
	}

	ranks, err := strconv.Atoi(c.Args[len(c.Args)-1])
	skillName := strings.Join(c.Args[:len(c.Args)-1], " ")
	if err != nil {
		ranks = 1
		skillName = strings.Join(c.Args, " ")
	}
	if ranks <= 0 {
		ranks = 1
	}

	c.Ex.trainSkill(p, skillName, ranks)
	return nil
}

func handleCheck(c *Context) error {
	if len(c.Args) > 0 && strings.EqualFold(c.Args[0], "in") {
		return handleCheckin(c)
	}
	if c.Player.GameState == game.StateTraining {
		showTrainingMenu(c.Player)
		return nil
	}
	return NewUserError("Check what? (Try CHECK IN at the inn.)")
}

func handleLevelup(c *Context) error {
	p := c.Player
	if p.GameState != game.StateTraining {
		return NewUserError("You can only do that while you are training.")
	}

	leveling := c.World.Library.Leveling.Get("default")
	if leveling == nil {
		return fmt.Errorf("leveling table missing")
	}
	next := leveling.NextLevelAt(p.Level)
	if next < 0 {
		return NewUserError("You are at the maximum level.")
	}
	if p.Experience < next {
		return NewUserError("You have not yet absorbed enough experience to advance.")
	}

	p.Level++
	row := leveling.ForLevel(p.Level)
	p.PTPs += row.PTP
	p.MTPs += row.MTP
	p.STPs += row.STP
	p.RanksTrainedThisLevel = map[string]int{}
	p.ClampVitals()
	p.MarkDirty()

	p.Queue(fmt.Sprintf("You have advanced to level %d!", p.Level))
	p.Queue(fmt.Sprintf("You gain %d PTPs, %d MTPs, and %d STPs.", row.PTP, row.MTP, row.STP))
	p.Queue("Your skill training limits have been reset.")
	showTrainingMenu(p)
	return nil
}

func handleDone(c *Context) error {
	p := c.Player
	if p.GameState != game.StateTraining {
		return NewUserError("You are not currently training.")
	}

	delete(c.Ex.conversions, game.Key(p.Name))

	settings := c.World.Settings
	if p.RoomId == settings.ChargenStartRoom && p.ChargenStep >= 99 && p.ChargenStep < 100 {
		// First training session: step out of the creation dream.
		p.GameState = game.StatePlaying
		p.ChargenStep = 100

		old := p.RoomId
		p.RoomId = settings.ChargenCompleteRoom
		c.World.MoveIndex(p.Name, old, p.RoomId)
		p.VisitRoom(p.RoomId)
		p.MarkDirty()

		p.Queue("\nYou have finalized your training.")
		p.Queue("You feel the dream fade...")
		p.Queue("You open your eyes and find yourself in...")

		if room, err := c.World.Room(p.RoomId); err == nil {
			c.Room = room
			showRoom(c, room)
		}
		return nil
	}

	p.GameState = game.StatePlaying
	p.MarkDirty()
	p.Queue("You check out from the front desk and head back into the inn.")
	if c.Room != nil {
		showRoom(c, c.Room)
	}
	return nil
}

func handleConfirm(c *Context) error {
	if c.Ex.applyConversion(c.Player) {
		return nil
	}
	return NewUserError("There is nothing to confirm.")
}
