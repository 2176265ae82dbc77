package combat

import (
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/emberfallmud/emberfall/internal/assets"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// scriptRoller feeds predetermined rolls to the resolver.
type scriptRoller struct {
	d100   int
	ints   []int
	floats []float64
}

func (r *scriptRoller) D100() int { return r.d100 }

func (r *scriptRoller) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptRoller) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

type critStore struct {
	recs map[storage.Identifier]*assets.CriticalTable
}

func (s *critStore) Save(id storage.Identifier, t *assets.CriticalTable) error {
	s.recs[id] = t
	return nil
}
func (s *critStore) Get(id storage.Identifier) *assets.CriticalTable { return s.recs[id] }
func (s *critStore) GetAll() map[storage.Identifier]*assets.CriticalTable {
	return s.recs
}
func (s *critStore) Len() int { return len(s.recs) }

func testCritLibrary(tables map[storage.Identifier]*assets.CriticalTable) *assets.Library {
	if tables == nil {
		tables = map[storage.Identifier]*assets.CriticalTable{}
	}
	return &assets.Library{Criticals: &critStore{recs: tables}}
}

func longsword() *assets.Item {
	return &assets.Item{
		Name:      "longsword",
		Type:      "weapon",
		Skill:     "one_handed_edged",
		BaseSpeed: 4,
		Attacks:   []assets.WeaponAttack{{Verb: "slash", DamageType: "slash", Chance: 1.0}},
		DamageFactors: map[string]float64{
			"unarmored": 0.100,
		},
	}
}

func TestSimpleMeleeHit(t *testing.T) {
	// AS 120 vs DS 40 with +40 advantage and a 55 roll lands an
	// endroll of 175; a 0.100 damage factor and divisor 11 yield 7
	// points with no critical.
	attacker := &Profile{
		Name:        "Aralyn",
		IsPlayer:    true,
		Stance:      "offensive",
		Posture:     "standing",
		StatBonuses: map[string]int{"STR": 20},
		Skills:      map[string]int{"one_handed_edged": 20}, // bonus 90
		RawAGI:      50,
		Weapon:      longsword(),
		BuffAS:      10,
	}
	defender := &Profile{
		Name:          "the giant rat",
		Stance:        "creature",
		Posture:       "standing",
		StatBonuses:   map[string]int{"AGI": 60, "INT": 80},
		InnateDivisor: 11,
	}

	roll := &scriptRoller{d100: 55, floats: []float64{0.5}, ints: []int{0}}
	rules := Rules{Advantage: 40, Threshold: 100, HitLocations: []string{"chest"}}

	res := Resolve(attacker, defender, testCritLibrary(nil), rules, roll)

	testutil.AssertEqual(t, "as", res.AS, 120)
	testutil.AssertEqual(t, "ds", res.DS, 40)
	testutil.AssertEqual(t, "avd", res.AvD, 40)
	testutil.AssertEqual(t, "endroll", res.Endroll, 175)
	testutil.AssertEqual(t, "hit", res.Hit, true)
	testutil.AssertEqual(t, "damage", res.Damage, 7)
	testutil.AssertEqual(t, "crit rank", res.CritRank, 0)
	testutil.AssertEqual(t, "fatal", res.Fatal, false)

	testutil.AssertEqual(t, "attempt", res.AttemptAttacker, "You slash your longsword at the giant rat!")
	testutil.AssertEqual(t, "result", res.ResultAttacker, "   ... and hits for 7 points of damage!")
	testutil.AssertEqual(t, "roll string", res.RollString, "  AS: +120 + AvD: +40 + d100: +55 - DS: 40 = 175")
	testutil.AssertEqual(t, "room attempt", res.AttemptRoom, "Aralyn slashes Aralyn's longsword at the giant rat!")
	testutil.AssertEqual(t, "broadcast", res.BroadcastResult, "You hit the giant rat for 7 points of damage!")

	testutil.AssertEqual(t, "roundtime", res.RoundtimeSeconds, 6.0)
}

func TestMiss(t *testing.T) {
	attacker := &Profile{
		Name:        "Aralyn",
		IsPlayer:    true,
		Stance:      "offensive",
		Posture:     "standing",
		StatBonuses: map[string]int{"STR": 50},
		RawAGI:      50,
	}
	defender := &Profile{
		Name:        "the town guard",
		IsPlayer:    true,
		Stance:      "defensive",
		Posture:     "standing",
		StatBonuses: map[string]int{"AGI": 100, "INT": 80},
	}

	roll := &scriptRoller{d100: 1, ints: []int{0, 0}}
	rules := Rules{Advantage: 40, Threshold: 100, HitLocations: []string{"chest"}}

	res := Resolve(attacker, defender, testCritLibrary(nil), rules, roll)

	testutil.AssertEqual(t, "as", res.AS, 50)
	testutil.AssertEqual(t, "ds", res.DS, 120)
	testutil.AssertEqual(t, "endroll", res.Endroll, -29)
	testutil.AssertEqual(t, "hit", res.Hit, false)
	testutil.AssertEqual(t, "damage", res.Damage, 0)
	testutil.AssertEqual(t, "miss line", res.ResultAttacker, "   A clean miss.")
	testutil.AssertEqual(t, "broadcast", res.BroadcastResult, "You miss the town guard.")
}

func TestFatalCritical(t *testing.T) {
	crits := map[storage.Identifier]*assets.CriticalTable{
		"crush": {Locations: map[string]map[string]assets.CriticalHit{
			"chest": {
				"1": {Message: "A crushing blow to {defender}'s chest!", ExtraDamage: 10, WoundRank: 3, Fatal: true},
			},
		}},
	}

	attacker := &Profile{
		Name:        "the cave troll",
		Stance:      "creature",
		Posture:     "standing",
		StatBonuses: map[string]int{"STR": 20},
		RawAGI:      50,
		InnateAttacks: []assets.WeaponAttack{
			{Verb: "smash", DamageType: "crush", WeaponName: "a massive fist", Chance: 1.0},
		},
	}
	defender := &Profile{
		Name:        "Aralyn",
		IsPlayer:    true,
		Stance:      "neutral",
		Posture:     "standing",
		StatBonuses: map[string]int{},
		Wounds:      map[string]int{},
	}

	// Endroll 150: margin 50 at df 0.100 is raw 5; divisor 5 gives
	// base rank 1, which always resolves to rank 1.
	roll := &scriptRoller{d100: 90, floats: []float64{0.5}, ints: []int{0, 0}}
	rules := Rules{Advantage: 40, Threshold: 100, HitLocations: []string{"chest"}}

	res := Resolve(attacker, defender, testCritLibrary(crits), rules, roll)

	testutil.AssertEqual(t, "endroll", res.Endroll, 150)
	testutil.AssertEqual(t, "hit", res.Hit, true)
	testutil.AssertEqual(t, "crit rank", res.CritRank, 1)
	testutil.AssertEqual(t, "fatal", res.Fatal, true)
	testutil.AssertEqual(t, "damage", res.Damage, 15)
	testutil.AssertEqual(t, "wound rank", res.WoundRank, 3)
	testutil.AssertEqual(t, "location", res.Location, "chest")
	testutil.AssertEqual(t, "crit message", res.CriticalMsg, "   A crushing blow to Aralyn's chest!")
	testutil.AssertEqual(t, "defender attempt", res.AttemptDefender, "the cave troll smashes a massive fist at you!")
}

func TestWoundAggravation(t *testing.T) {
	crits := map[storage.Identifier]*assets.CriticalTable{
		"slash": {Locations: map[string]map[string]assets.CriticalHit{
			"chest": {
				"1": {Message: "A shallow cut across {defender}'s chest.", ExtraDamage: 2, WoundRank: 1},
			},
		}},
	}

	attacker := &Profile{
		Name:        "the bandit",
		Stance:      "creature",
		Posture:     "standing",
		StatBonuses: map[string]int{"STR": 20},
		RawAGI:      50,
		Weapon:      longsword(),
	}
	defender := &Profile{
		Name:        "Aralyn",
		IsPlayer:    true,
		Stance:      "neutral",
		Posture:     "standing",
		StatBonuses: map[string]int{},
		Wounds:      map[string]int{"chest": 1},
		Bandaged:    map[string]bool{"chest": true},
	}

	roll := &scriptRoller{d100: 95, floats: []float64{0.5}, ints: []int{0, 0}}
	rules := Rules{Advantage: 40, Threshold: 100, HitLocations: []string{"chest"}}

	res := Resolve(attacker, defender, testCritLibrary(crits), rules, roll)

	testutil.AssertEqual(t, "hit", res.Hit, true)
	testutil.AssertEqual(t, "wound raised", res.WoundRank, 2)
	testutil.AssertEqual(t, "bandage torn", res.TearsBandage, true)

	exp := "   A shallow cut across Aralyn's chest.\n" +
		"The wound on Aralyn's chest begins to bleed profusely!\n" +
		"The bandages on Aralyn's chest are torn away!"
	testutil.AssertEqual(t, "crit message", res.CriticalMsg, exp)
}

func TestParryOnlyAgainstMelee(t *testing.T) {
	defender := &Profile{
		Name:        "Aralyn",
		IsPlayer:    true,
		Stance:      "defensive",
		Posture:     "standing",
		StatBonuses: map[string]int{},
		Skills:      map[string]int{"one_handed_edged": 20},
		Weapon:      longsword(),
	}

	melee := defenseStrength(defender, false)
	ranged := defenseStrength(defender, true)

	// Parry contributes against melee and nothing against ranged.
	testutil.AssertEqual(t, "melee ds", melee, 10)
	testutil.AssertEqual(t, "ranged ds", ranged, 0)
}

func TestShieldBlock(t *testing.T) {
	defender := &Profile{
		Name:        "Borin",
		IsPlayer:    true,
		Stance:      "defensive",
		Posture:     "standing",
		StatBonuses: map[string]int{"STR": 20, "DEX": 20},
		Skills:      map[string]int{"shield_use": 20},
		Shield:      &assets.Item{Name: "a wooden shield", Type: "shield", SizeModMelee: 1.0, SizeModRanged: 1.2},
	}

	// block base: 20 ranks + 5 + 5 = 30; full stance, standing.
	testutil.AssertEqual(t, "melee block", defenseStrength(defender, false), 30)
	testutil.AssertEqual(t, "ranged block", defenseStrength(defender, true), 36)
}
