package combat

import (
	"math"
	"math/rand/v2"

	"github.com/emberfallmud/emberfall/internal/assets"
)

// Rules carries the tunable combat constants. Advantage is the flat
// attacker-side bonus applied when the attack has no armor-vs-damage
// table of its own; Threshold is the endroll a hit must exceed.
type Rules struct {
	Advantage    int
	Threshold    int
	HitLocations []string
}

// DefaultRules returns the stock balance.
func DefaultRules() Rules {
	return Rules{
		Advantage:    40,
		Threshold:    100,
		HitLocations: []string{"chest", "abdomen", "back", "head", "neck", "right arm", "left arm", "right leg", "left leg", "right hand", "left hand"},
	}
}

// stanceMod holds the per-stance combat multipliers. Percent is the
// share of defensive components retained; ASPenalty and SkillFactor
// shape the attack side.
type stanceMod struct {
	Percent     int
	ASPenalty   int
	SkillFactor float64
}

var stanceMods = map[string]stanceMod{
	"offensive": {Percent: 20, ASPenalty: 0, SkillFactor: 1.0},
	"advance":   {Percent: 40, ASPenalty: -5, SkillFactor: 0.9},
	"forward":   {Percent: 60, ASPenalty: -10, SkillFactor: 0.8},
	"neutral":   {Percent: 80, ASPenalty: -15, SkillFactor: 0.75},
	"guarded":   {Percent: 90, ASPenalty: -25, SkillFactor: 0.65},
	"defensive": {Percent: 100, ASPenalty: -30, SkillFactor: 0.5},

	// Monsters fight from a fixed middle stance.
	"creature": {Percent: 50, ASPenalty: 0, SkillFactor: 1.0},
}

func stanceFor(name string) stanceMod {
	if m, ok := stanceMods[name]; ok {
		return m
	}
	return stanceMods["creature"]
}

// postureMod scales both sides of an entity's combat math by how it
// is positioned.
type postureMod struct {
	AttackFactor  float64
	DefenseFactor float64
	DSPenalty     int
}

var postureMods = map[string]postureMod{
	"standing":   {AttackFactor: 1.0, DefenseFactor: 1.0, DSPenalty: 0},
	"crouching":  {AttackFactor: 0.9, DefenseFactor: 0.9, DSPenalty: -5},
	"kneeling":   {AttackFactor: 0.8, DefenseFactor: 0.7, DSPenalty: -10},
	"sitting":    {AttackFactor: 0.6, DefenseFactor: 0.6, DSPenalty: -15},
	"prone":      {AttackFactor: 0.4, DefenseFactor: 0.4, DSPenalty: -20},
	"meditating": {AttackFactor: 0.5, DefenseFactor: 0.2, DSPenalty: -25},
}

func postureFor(name string) postureMod {
	if m, ok := postureMods[name]; ok {
		return m
	}
	return postureMods["standing"]
}

// armorHindrance scales evasion by how well the defender carries
// their armor. Training past the armor's threshold halves its
// effective action-point penalty.
func armorHindrance(torso *assets.Item, armorUseRanks int) float64 {
	if torso == nil || torso.ArmorAP == 0 {
		return 1.0
	}
	threshold := torso.ArmorRT*20 - 10
	effectiveAP := float64(torso.ArmorAP)
	if assets.SkillBonus(armorUseRanks) > threshold {
		effectiveAP /= 2
	}
	return math.Max(0, 1.0+effectiveAP/200.0)
}

// critBuckets randomizes the effective critical rank for a base rank.
// Higher base ranks draw from wider, higher windows.
var critBuckets = map[int][]int{
	1: {1},
	2: {1, 2},
	3: {2, 3},
	4: {2, 3, 4},
	5: {3, 4, 5},
	6: {3, 4, 5, 6},
	7: {4, 5, 6, 7},
	8: {4, 5, 6, 7, 8},
}

var critBucketTop = []int{5, 6, 7, 8, 9}

func randomizeCritRank(base int, roll Roller) int {
	if base <= 0 {
		return 0
	}
	bucket, ok := critBuckets[base]
	if !ok {
		bucket = critBucketTop
	}
	return bucket[roll.IntN(len(bucket))]
}

// Roundtime computes attack recovery in seconds from raw agility and
// the weapon's base speed. Floored at three seconds.
func Roundtime(agility, weaponBaseSpeed int) float64 {
	if weaponBaseSpeed <= 0 {
		weaponBaseSpeed = 3
	}
	rt := float64(weaponBaseSpeed+2) - float64(agility-50)/25.0
	return math.Max(3.0, rt)
}

// Roller is the randomness the resolver draws on. Tests substitute a
// scripted implementation.
type Roller interface {
	D100() int
	IntN(n int) int
	Float64() float64
}

type randRoller struct{}

func (randRoller) D100() int        { return rand.IntN(100) + 1 }
func (randRoller) IntN(n int) int   { return rand.IntN(n) }
func (randRoller) Float64() float64 { return rand.Float64() }

// NewRoller returns the production randomness source.
func NewRoller() Roller { return randRoller{} }
