package combat

import (
	"fmt"
	"math"
	"strings"

	"github.com/emberfallmud/emberfall/internal/assets"
)

var playerMissPool = []string{
	"   A clean miss.",
	"   You miss {defender} completely.",
	"   {defender} avoids the attack!",
	"   An awkward miss.",
	"   Your attack goes wide.",
}

var monsterMissPool = []string{
	"   A clean miss.",
	"   {attacker} misses {defender} completely.",
	"   {defender} avoids the attack!",
	"   An awkward miss.",
	"   The attack goes wide.",
}

// Result is the full outcome of one attack: numbers for the caller to
// apply and perspective strings for the caller to route.
type Result struct {
	Hit   bool
	Fatal bool
	Stun  bool

	Damage    int
	CritRank  int
	WoundRank int
	Location  string

	// TearsBandage is set when aggravating a dressed wound.
	TearsBandage bool

	AS      int
	AvD     int
	Roll    int
	DS      int
	Endroll int

	Verb       string
	DamageType string

	RollString string

	AttemptAttacker string
	AttemptDefender string
	AttemptRoom     string

	ResultAttacker  string
	ResultDefender  string
	BroadcastResult string

	CriticalMsg string

	RoundtimeSeconds float64
}

// Resolve runs one attack between two profiles. Pure except for the
// injected randomness; the caller applies damage, wounds, and death.
func Resolve(attacker, defender *Profile, lib *assets.Library, rules Rules, roll Roller) *Result {
	attack, weaponFirst, weaponThird := selectAttack(attacker, roll)

	defArmor := defender.ArmorType()
	df, avd := attackTables(attacker, defArmor, rules)

	as := attackStrength(attacker)
	isRanged := rangedWeapon(attacker.Weapon)
	ds := defenseStrength(defender, isRanged)

	d100 := roll.D100()
	endroll := (as + avd) - ds + d100

	res := &Result{
		AS:         as,
		AvD:        avd,
		Roll:       d100,
		DS:         ds,
		Endroll:    endroll,
		Verb:       attack.Verb,
		DamageType: attack.DamageType,
		Location:   "chest",

		RollString: fmt.Sprintf("  AS: %s + AvD: %s + d100: +%d - DS: %d = %d",
			signed(as), signed(avd), d100, ds, endroll),

		RoundtimeSeconds: Roundtime(attacker.RawAGI, weaponBaseSpeed(attacker.Weapon)),
	}

	verbNPC := conjugate(attack.Verb)
	res.AttemptAttacker = fmt.Sprintf("You %s %s at %s!", attack.Verb, weaponFirst, defender.Name)
	res.AttemptDefender = fmt.Sprintf("%s %s %s at you!", attacker.Name, verbNPC, weaponThird)
	res.AttemptRoom = fmt.Sprintf("%s %s %s at %s!", attacker.Name, verbNPC, weaponThird, defender.Name)

	if endroll <= rules.Threshold {
		res.ResultAttacker = missLine(playerMissPool, roll, attacker.Name, defender.Name)
		res.ResultDefender = missLine(monsterMissPool, roll, attacker.Name, "you")
		if attacker.IsPlayer {
			res.BroadcastResult = fmt.Sprintf("You miss %s.", defender.Name)
		} else {
			res.BroadcastResult = fmt.Sprintf("%s misses %s.", attacker.Name, defender.Name)
		}
		return res
	}

	res.Hit = true
	margin := endroll - rules.Threshold
	raw := math.Max(1, float64(margin)*df)

	baseRank := int(math.Trunc(raw / float64(defender.CriticalDivisor())))
	res.CritRank = randomizeCritRank(baseRank, roll)

	if len(rules.HitLocations) > 0 {
		res.Location = rules.HitLocations[roll.IntN(len(rules.HitLocations))]
	}

	crit := lib.Critical(attack.DamageType, res.Location, res.CritRank)
	res.Damage = int(math.Trunc(raw)) + crit.ExtraDamage
	res.Fatal = crit.Fatal
	res.Stun = crit.Stun
	res.WoundRank = crit.WoundRank

	critMsg := strings.ReplaceAll(crit.Message, "{defender}", defender.Name)

	// Hitting an already wounded spot aggravates it instead of
	// applying the table rank, and tears off bandages.
	if defender.IsPlayer && crit.WoundRank > 0 {
		if cur := defender.Wounds[res.Location]; cur > 0 {
			next := cur + 1
			if next > 3 {
				next = 3
			}
			res.WoundRank = next

			severity := "worsens"
			switch next {
			case 2:
				severity = "begins to bleed profusely"
			case 3:
				severity = "is mangled badly"
			}
			critMsg += fmt.Sprintf("\nThe wound on %s's %s %s!", defender.Name, res.Location, severity)

			if defender.Bandaged[res.Location] {
				res.TearsBandage = true
				critMsg += fmt.Sprintf("\nThe bandages on %s's %s are torn away!", defender.Name, res.Location)
			}
		}
	}

	if critMsg != "" {
		res.CriticalMsg = "   " + critMsg
	}

	hitLine := fmt.Sprintf("   ... and hits for %d points of damage!", res.Damage)
	res.ResultAttacker = hitLine
	res.ResultDefender = hitLine
	if attacker.IsPlayer {
		res.BroadcastResult = fmt.Sprintf("You hit %s for %d points of damage!", defender.Name, res.Damage)
	} else {
		res.BroadcastResult = fmt.Sprintf("%s hits %s for %d points of damage!", attacker.Name, defender.Name, res.Damage)
	}

	return res
}

// selectAttack draws one attack from the attacker's weighted list and
// builds the weapon display strings for the attacker's own line and
// for everyone else's.
func selectAttack(attacker *Profile, roll Roller) (assets.WeaponAttack, string, string) {
	var list []assets.WeaponAttack
	if attacker.Weapon != nil && len(attacker.Weapon.Attacks) > 0 {
		list = attacker.Weapon.Attacks
	} else if len(attacker.InnateAttacks) > 0 {
		list = attacker.InnateAttacks
	}
	if len(list) == 0 {
		list = []assets.WeaponAttack{{Verb: "attack", DamageType: "crush", WeaponName: "fist", Chance: 1.0}}
	}

	attack := weightedPick(list, roll)

	if attacker.Weapon != nil {
		third := possessive(attacker.Name) + " " + attacker.Weapon.Name
		if attacker.IsPlayer {
			return attack, "your " + attacker.Weapon.Name, third
		}
		return attack, third, third
	}
	if attack.WeaponName != "" && !attacker.IsPlayer {
		return attack, attack.WeaponName, attack.WeaponName
	}
	third := possessive(attacker.Name) + " fist"
	if attacker.IsPlayer {
		return attack, "your fist", third
	}
	return attack, third, third
}

func weightedPick(list []assets.WeaponAttack, roll Roller) assets.WeaponAttack {
	total := 0.0
	for _, a := range list {
		total += a.Chance
	}
	if total <= 0 {
		return list[roll.IntN(len(list))]
	}
	r := roll.Float64() * total
	upto := 0.0
	for _, a := range list {
		upto += a.Chance
		if upto >= r {
			return a
		}
	}
	return list[len(list)-1]
}

// attackTables resolves the damage factor and armor-vs-damage bonus
// against the defender's armor type. An attack with no avd data of
// its own falls back to the flat advantage.
func attackTables(attacker *Profile, defArmor string, rules Rules) (float64, int) {
	if attacker.Weapon != nil {
		df := attacker.Weapon.DamageFactor(defArmor)
		if len(attacker.Weapon.AvdModifiers) > 0 {
			return df, attacker.Weapon.AvdBonus(defArmor)
		}
		return df, rules.Advantage
	}

	df := 0.100
	if f, ok := attacker.InnateFactors[defArmor]; ok {
		df = f
	}
	if len(attacker.InnateAvd) > 0 {
		return df, attacker.InnateAvd[defArmor]
	}
	return df, rules.Advantage
}

// attackStrength builds the melee AS total.
func attackStrength(attacker *Profile) int {
	stance := stanceFor(attacker.Stance)
	posture := postureFor(attacker.Posture)

	as := attacker.StatBonus("STR")

	skill := "brawling"
	if attacker.Weapon != nil && attacker.Weapon.Skill != "" {
		skill = attacker.Weapon.Skill
	}
	skillBonus := assets.SkillBonus(attacker.SkillRank(skill))
	as += int(math.Floor(float64(skillBonus) * stance.SkillFactor))

	as += attacker.SkillRank("combat_maneuvers") / 2

	if attacker.Weapon != nil {
		as += attacker.Weapon.Enchantment
	}
	as += attacker.BuffAS

	as = int(math.Floor(float64(as) * posture.AttackFactor))
	as += stance.ASPenalty

	if as < 0 {
		as = 0
	}
	return as
}

// defenseStrength builds the DS total from generic, evade, block, and
// parry components.
func defenseStrength(defender *Profile, isRanged bool) int {
	stance := stanceFor(defender.Stance)
	posture := postureFor(defender.Posture)

	stancePct := float64(stance.Percent) / 100.0
	factor := posture.DefenseFactor

	generic := defender.BuffDS + posture.DSPenalty

	evadeBase := float64(defender.StatBonus("AGI") +
		defender.StatBonus("INT")/4 +
		defender.SkillRank("dodging"))
	evade := evadeBase * armorHindrance(defender.Torso, defender.SkillRank("armor_use")) * stancePct * factor
	if isRanged {
		evade *= 1.5
	}

	block := 0.0
	if defender.Shield != nil {
		blockBase := float64(defender.SkillRank("shield_use") +
			defender.StatBonus("STR")/4 +
			defender.StatBonus("DEX")/4)
		sizeMod := defender.Shield.SizeModMelee
		if isRanged {
			sizeMod = defender.Shield.SizeModRanged
		}
		if sizeMod == 0 {
			sizeMod = 1.0
		}
		block = blockBase * sizeMod * stancePct * factor
	}

	parry := 0.0
	if !isRanged && defender.Weapon != nil {
		parryBase := float64(defender.SkillRank(defender.Weapon.Skill) +
			defender.StatBonus("STR")/4 +
			defender.StatBonus("DEX")/4 +
			defender.Weapon.Enchantment)
		handedness := 1.0
		if defender.Weapon.TwoHanded() {
			handedness = 1.5
		}
		parry = parryBase * handedness * 0.5 * stancePct * factor
	}

	total := generic + int(math.Floor(evade)) + int(math.Floor(block)) + int(math.Floor(parry))
	if total < 0 {
		total = 0
	}
	return total
}

func rangedWeapon(w *assets.Item) bool {
	if w == nil {
		return false
	}
	return w.Skill == "bows" || w.Skill == "crossbows"
}

func weaponBaseSpeed(w *assets.Item) int {
	if w == nil {
		return 3
	}
	return w.BaseSpeed
}

func missLine(pool []string, roll Roller, attacker, defender string) string {
	line := pool[roll.IntN(len(pool))]
	line = strings.ReplaceAll(line, "{attacker}", attacker)
	return strings.ReplaceAll(line, "{defender}", defender)
}

func signed(n int) string {
	if n >= 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

func possessive(name string) string {
	if strings.HasSuffix(name, "s") {
		return name + "'"
	}
	return name + "'s"
}

// conjugate turns a second-person verb into third person for
// broadcast lines.
func conjugate(verb string) string {
	for _, suf := range []string{"s", "sh", "ch", "x", "o"} {
		if strings.HasSuffix(verb, suf) {
			return verb + "es"
		}
	}
	return verb + "s"
}
