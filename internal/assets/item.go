package assets

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-errors"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// EquipmentSlots maps slot ids to their display names. The set is
// closed; items declaring an unknown slot fail validation.
var EquipmentSlots = map[string]string{
	"mainhand":         "Right Hand",
	"offhand":          "Left Hand",
	"torso":            "Torso",
	"head":             "Head",
	"legs_pulled":      "Legs (pulled over)",
	"feet_put_on":      "Feet (put on)",
	"shoulders_draped": "Shoulders (draped)",
	"back":             "Back",
	"waist":            "Waist",
	"belt":             "Belt",
	"neck":             "Neck",
	"wrist_right":      "Right Wrist",
	"wrist_left":       "Left Wrist",
	"finger_right":     "Right Finger",
	"finger_left":      "Left Finger",
	"arms":             "Arms",
	"legs_attached":    "Legs (attached)",
	"earlobe_right":    "Right Earlobe",
	"earlobe_left":     "Left Earlobe",
	"ankle_right":      "Right Ankle",
	"ankle_left":       "Left Ankle",
	"front":            "Front",
	"hands":            "Hands",
	"feet_slip_on":     "Feet (slip on)",
	"hair":             "Hair",
	"undershirt":       "Undershirt",
	"leggings":         "Leggings",
	"pin":              "Pin (General)",
	"shoulder_slung":   "Shoulder (Slung)",
}

// ArmorTypes orders armor classes from lightest to heaviest. Weapon
// damage-factor and avd tables are keyed by these names.
var ArmorTypes = []string{"unarmored", "cloth", "leather", "scale", "chain", "plate"}

const DefaultArmorType = "unarmored"

// WeaponAttack is one entry in a weapon's (or monster's) weighted
// attack list.
type WeaponAttack struct {
	Verb       string  `json:"verb"`
	DamageType string  `json:"damage_type"`
	WeaponName string  `json:"weapon_name,omitempty"`
	Chance     float64 `json:"chance"`
}

func (a *WeaponAttack) Validate() error {
	el := errors.NewErrorList()
	if a.Verb == "" {
		el.Add(fmt.Errorf("attack verb is required"))
	}
	if a.DamageType == "" {
		el.Add(fmt.Errorf("attack damage_type is required"))
	}
	if a.Chance < 0 {
		el.Add(fmt.Errorf("attack chance must not be negative"))
	}
	return el.Err()
}

// Item is a static item template. One template backs any number of
// runtime instances; instances reference it by id and carry their own
// uid.
type Item struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Type     string   `json:"type"` // weapon, armor, shield, container, gem, junk
	Slots    []string `json:"slots,omitempty"`
	Value    int      `json:"value,omitempty"` // silver
	Weight   int      `json:"weight,omitempty"`

	// Weapon fields
	Skill         string             `json:"skill,omitempty"`
	BaseSpeed     int                `json:"base_speed,omitempty"`
	Enchantment   int                `json:"enchantment,omitempty"`
	Attacks       []WeaponAttack     `json:"attacks,omitempty"`
	DamageFactors map[string]float64 `json:"damage_factors,omitempty"` // armor type -> factor
	AvdModifiers  map[string]int     `json:"avd_modifiers,omitempty"`  // armor type -> bonus

	// Armor fields
	ArmorType       string `json:"armor_type,omitempty"`
	ArmorAP         int    `json:"armor_ap,omitempty"`
	ArmorRT         int    `json:"armor_rt,omitempty"`
	CriticalDivisor int    `json:"critical_divisor,omitempty"`

	// Shield fields
	SizeModMelee  float64 `json:"size_mod_melee,omitempty"`
	SizeModRanged float64 `json:"size_mod_ranged,omitempty"`
}

func (i *Item) IsWeapon() bool    { return i.Type == "weapon" }
func (i *Item) IsArmor() bool     { return i.Type == "armor" }
func (i *Item) IsShield() bool    { return i.Type == "shield" }
func (i *Item) IsContainer() bool { return i.Type == "container" }

// TwoHanded reports whether the weapon needs both hands.
func (i *Item) TwoHanded() bool {
	switch i.Skill {
	case "two_handed_edged", "two_handed_blunt", "polearms":
		return true
	}
	return false
}

// DamageFactor returns the weapon's damage factor against the given
// armor type, falling back to a baseline of 0.100.
func (i *Item) DamageFactor(armorType string) float64 {
	if f, ok := i.DamageFactors[armorType]; ok {
		return f
	}
	return 0.100
}

// AvdBonus returns the weapon's attack-vs-armor bonus against the
// given armor type.
func (i *Item) AvdBonus(armorType string) int {
	if b, ok := i.AvdModifiers[armorType]; ok {
		return b
	}
	return i.AvdModifiers[DefaultArmorType]
}

// MatchKeyword reports whether word targets this item.
func (i *Item) MatchKeyword(word string) bool {
	w := strings.ToLower(word)
	if strings.ToLower(i.Name) == w {
		return true
	}
	for _, k := range i.Keywords {
		if strings.ToLower(k) == w {
			return true
		}
	}
	return false
}

// Validate satisfies storage.ValidatingSpec
func (i *Item) Validate() error {
	el := errors.NewErrorList()

	if i.Name == "" {
		el.Add(fmt.Errorf("item name is required"))
	}
	if i.Type == "" {
		el.Add(fmt.Errorf("item type is required"))
	}

	for _, s := range i.Slots {
		if _, ok := EquipmentSlots[s]; !ok {
			el.Add(fmt.Errorf("unknown equipment slot %q", s))
		}
	}

	if i.ArmorType != "" {
		valid := false
		for _, t := range ArmorTypes {
			if t == i.ArmorType {
				valid = true
				break
			}
		}
		if !valid {
			el.Add(fmt.Errorf("unknown armor type %q", i.ArmorType))
		}
	}

	for n, a := range i.Attacks {
		if err := a.Validate(); err != nil {
			el.Add(fmt.Errorf("attack %d: %w", n, err))
		}
	}

	return el.Err()
}

// ItemRef is what a player slot or inventory entry holds: a template
// id plus an optional per-instance uid for distinct runtime items.
type ItemRef struct {
	ItemId storage.Identifier `json:"item_id"`
	Uid    string             `json:"uid,omitempty"`
}

func (r ItemRef) Empty() bool {
	return r.ItemId == ""
}

// Same reports whether two refs name the same item instance. Refs
// with uids compare by uid; template-only refs compare by template.
func (r ItemRef) Same(o ItemRef) bool {
	if r.Uid != "" || o.Uid != "" {
		return r.Uid == o.Uid
	}
	return r.ItemId == o.ItemId
}
