package combat

import (
	"time"

	"github.com/emberfallmud/emberfall/internal/assets"
	"github.com/emberfallmud/emberfall/internal/game"
)

// Profile is the resolver's flattened view of one combatant. Building
// a profile pulls everything the math needs out of the entity so the
// resolver itself touches no shared state.
type Profile struct {
	Name     string
	IsPlayer bool
	Stance   string
	Posture  string
	Level    int

	StatBonuses map[string]int
	Skills      map[string]int
	RawAGI      int

	Weapon  *assets.Item
	Offhand *assets.Item
	Shield  *assets.Item
	Torso   *assets.Item

	InnateAttacks   []assets.WeaponAttack
	InnateArmorType string
	InnateDivisor   int
	InnateFactors   map[string]float64
	InnateAvd       map[string]int

	Wounds   map[string]int
	Bandaged map[string]bool

	BuffAS int
	BuffDS int
}

// PlayerProfile flattens a player for the resolver.
func PlayerProfile(lib *assets.Library, p *game.Player, now time.Time) *Profile {
	prof := &Profile{
		Name:        p.Name,
		IsPlayer:    true,
		Stance:      p.Stance,
		Posture:     p.Posture,
		Level:       p.Level,
		StatBonuses: map[string]int{},
		Skills:      p.Skills,
		RawAGI:      p.Stat("AGI"),
		Wounds:      p.Wounds,
		Bandaged:    p.Bandaged,
		BuffAS:      p.BuffAS(now),
		BuffDS:      p.BuffDS(now),
	}
	for _, s := range assets.StatNames {
		prof.StatBonuses[s] = p.StatBonus(s)
	}

	prof.Weapon = itemOfType(lib, p.Wielded("mainhand"), "weapon")
	prof.Offhand = itemOfType(lib, p.Wielded("offhand"), "weapon")
	prof.Shield = itemOfType(lib, p.Wielded("offhand"), "shield")
	prof.Torso = itemOfType(lib, p.WornItems["torso"], "armor")
	return prof
}

// MobProfile flattens a mob for the resolver.
func MobProfile(lib *assets.Library, m *game.Mob) *Profile {
	prof := &Profile{
		Name:        m.Name,
		Stance:      "creature",
		Posture:     "standing",
		StatBonuses: map[string]int{},
		RawAGI:      m.Stat("AGI"),
	}
	for _, s := range assets.StatNames {
		prof.StatBonuses[s] = m.StatBonus(s)
	}

	if t := m.Template; t != nil {
		prof.Level = t.Level
		prof.Skills = t.Skills
		prof.InnateAttacks = t.Attacks
		prof.InnateArmorType = t.InnateArmorType
		prof.InnateDivisor = t.Divisor()
		prof.InnateFactors = t.DamageFactors
		prof.InnateAvd = t.AvdModifiers

		prof.Weapon = itemOfType(lib, assets.ItemRef{ItemId: t.Equipped["mainhand"]}, "weapon")
		prof.Shield = itemOfType(lib, assets.ItemRef{ItemId: t.Equipped["offhand"]}, "shield")
		prof.Torso = itemOfType(lib, assets.ItemRef{ItemId: t.Equipped["torso"]}, "armor")
	}
	return prof
}

func itemOfType(lib *assets.Library, ref assets.ItemRef, itemType string) *assets.Item {
	if lib == nil || ref.Empty() {
		return nil
	}
	item := lib.Items.Get(ref.ItemId)
	if item == nil || item.Type != itemType {
		return nil
	}
	return item
}

// StatBonus returns a derived attribute bonus.
func (p *Profile) StatBonus(name string) int { return p.StatBonuses[name] }

// SkillRank returns trained ranks.
func (p *Profile) SkillRank(skill string) int { return p.Skills[skill] }

// ArmorType is the armor class hits against this profile key on.
func (p *Profile) ArmorType() string {
	if p.Torso != nil && p.Torso.ArmorType != "" {
		return p.Torso.ArmorType
	}
	if p.InnateArmorType != "" {
		return p.InnateArmorType
	}
	return assets.DefaultArmorType
}

// CriticalDivisor scales raw damage into a critical rank. Worn torso
// armor defaults to 11, innate hide to 5.
func (p *Profile) CriticalDivisor() int {
	if p.Torso != nil {
		if p.Torso.CriticalDivisor > 0 {
			return p.Torso.CriticalDivisor
		}
		return 11
	}
	if p.InnateDivisor > 0 {
		return p.InnateDivisor
	}
	return 5
}
