package combat

import (
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/emberfallmud/emberfall/internal/assets"
)

func TestRoundtime(t *testing.T) {
	tests := map[string]struct {
		agility   int
		baseSpeed int
		exp       float64
	}{
		"average agility":      {agility: 50, baseSpeed: 4, exp: 6.0},
		"high agility":         {agility: 100, baseSpeed: 4, exp: 4.0},
		"floors at three":      {agility: 150, baseSpeed: 1, exp: 3.0},
		"unarmed default":      {agility: 50, baseSpeed: 0, exp: 5.0},
		"slow polearm":         {agility: 50, baseSpeed: 7, exp: 9.0},
		"low agility penalty":  {agility: 25, baseSpeed: 4, exp: 7.0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "roundtime", Roundtime(tc.agility, tc.baseSpeed), tc.exp)
		})
	}
}

func TestArmorHindrance(t *testing.T) {
	plate := &assets.Item{Type: "armor", ArmorType: "plate", ArmorAP: -50, ArmorRT: 8}

	tests := map[string]struct {
		torso *assets.Item
		ranks int
		exp   float64
	}{
		"no armor":          {torso: nil, ranks: 0, exp: 1.0},
		"untrained in full": {torso: plate, ranks: 0, exp: 0.75},
		// Bonus 151 clears the 8*20-10 threshold and halves the penalty.
		"well trained": {torso: plate, ranks: 51, exp: 0.875},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "hindrance", armorHindrance(tc.torso, tc.ranks), tc.exp)
		})
	}
}

func TestRandomizeCritRank(t *testing.T) {
	tests := map[string]struct {
		base int
		pick int
		exp  int
	}{
		"zero stays zero":     {base: 0, pick: 0, exp: 0},
		"one is fixed":        {base: 1, pick: 0, exp: 1},
		"two low":             {base: 2, pick: 0, exp: 1},
		"two high":            {base: 2, pick: 1, exp: 2},
		"six spans four":      {base: 6, pick: 3, exp: 6},
		"nine uses top band":  {base: 9, pick: 4, exp: 9},
		"twelve clamps":       {base: 12, pick: 0, exp: 5},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			roll := &scriptRoller{ints: []int{tc.pick}}
			testutil.AssertEqual(t, "rank", randomizeCritRank(tc.base, roll), tc.exp)
		})
	}
}

func TestConjugate(t *testing.T) {
	tests := map[string]struct {
		verb string
		exp  string
	}{
		"slash":  {verb: "slash", exp: "slashes"},
		"claw":   {verb: "claw", exp: "claws"},
		"smash":  {verb: "smash", exp: "smashes"},
		"lunge":  {verb: "lunge", exp: "lunges"},
		"pummel": {verb: "pummel", exp: "pummels"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "verb", conjugate(tc.verb), tc.exp)
		})
	}
}

func TestPossessive(t *testing.T) {
	testutil.AssertEqual(t, "plain", possessive("Aralyn"), "Aralyn's")
	testutil.AssertEqual(t, "trailing s", possessive("Silas"), "Silas'")
}

func TestWeightedPick(t *testing.T) {
	list := []assets.WeaponAttack{
		{Verb: "bite", Chance: 0.75},
		{Verb: "claw", Chance: 0.25},
	}

	low := weightedPick(list, &scriptRoller{floats: []float64{0.5}})
	testutil.AssertEqual(t, "low roll", low.Verb, "bite")

	high := weightedPick(list, &scriptRoller{floats: []float64{0.9}})
	testutil.AssertEqual(t, "high roll", high.Verb, "claw")
}
