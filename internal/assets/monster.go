package assets

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-errors"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// MovementRules controls passive wandering for a monster.
type MovementRules struct {
	WanderChance  float64  `json:"wander_chance"`
	AllowedRooms  []string `json:"allowed_rooms,omitempty"`
	LeaveMessage  string   `json:"leave_message,omitempty"`  // template; {{.Name}} and {{.Exit}}
	ArriveMessage string   `json:"arrive_message,omitempty"` // template; {{.Name}}
}

// RespawnPolicy controls how a defeated monster returns.
type RespawnPolicy struct {
	Seconds       int     `json:"seconds"`
	ChancePerTick float64 `json:"chance_per_tick"`
}

// SkinYield describes what skinning a corpse of this monster produces.
type SkinYield struct {
	ItemId storage.Identifier `json:"item_id"`
	DC     int                `json:"dc"` // first aid check difficulty
}

// Monster is a static monster or npc template.
type Monster struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Type     string   `json:"type"` // monster or npc
	Level    int      `json:"level"`
	MaxHP    int      `json:"max_hp"`

	Stats  map[string]int `json:"stats,omitempty"`
	Skills map[string]int `json:"skills,omitempty"`

	Faction    string `json:"faction,omitempty"`
	Aggressive bool   `json:"aggressive,omitempty"`
	Unique     bool   `json:"unique,omitempty"`
	Family     string `json:"family,omitempty"` // quest counter bucket

	Attacks         []WeaponAttack     `json:"attacks,omitempty"`
	InnateArmorType string             `json:"innate_armor_type,omitempty"`
	CriticalDivisor int                `json:"critical_divisor,omitempty"`
	DamageFactors   map[string]float64 `json:"damage_factors,omitempty"`
	AvdModifiers    map[string]int     `json:"avd_modifiers,omitempty"`
	Equipped        map[string]storage.Identifier `json:"equipped,omitempty"`

	Experience int                `json:"experience,omitempty"`
	LootTable  storage.Identifier `json:"loot_table,omitempty"`
	Skinnable  *SkinYield         `json:"skinnable,omitempty"`

	Movement MovementRules  `json:"movement,omitempty"`
	Respawn  *RespawnPolicy `json:"respawn,omitempty"`
}

// ArmorType is the armor class used when nothing is worn on the torso.
func (m *Monster) ArmorType() string {
	if m.InnateArmorType != "" {
		return m.InnateArmorType
	}
	return DefaultArmorType
}

// Divisor is the critical divisor for unarmored hits against this
// monster. Innate hide defaults to 5.
func (m *Monster) Divisor() int {
	if m.CriticalDivisor > 0 {
		return m.CriticalDivisor
	}
	return 5
}

// MatchKeyword reports whether word targets this monster.
func (m *Monster) MatchKeyword(word string) bool {
	w := strings.ToLower(word)
	if strings.ToLower(m.Name) == w {
		return true
	}
	for _, k := range m.Keywords {
		if strings.ToLower(k) == w {
			return true
		}
	}
	return false
}

// Validate satisfies storage.ValidatingSpec
func (m *Monster) Validate() error {
	el := errors.NewErrorList()

	if m.Name == "" {
		el.Add(fmt.Errorf("monster name is required"))
	}
	if m.MaxHP <= 0 {
		el.Add(fmt.Errorf("monster max_hp must be positive"))
	}
	if m.Level < 0 {
		el.Add(fmt.Errorf("monster level must not be negative"))
	}

	for name := range m.Stats {
		if !ValidStat(name) {
			el.Add(fmt.Errorf("unknown stat %q", name))
		}
	}

	if m.Movement.WanderChance < 0 || m.Movement.WanderChance > 1 {
		el.Add(fmt.Errorf("wander_chance must be in [0,1]"))
	}
	if m.Respawn != nil {
		if m.Respawn.Seconds < 0 {
			el.Add(fmt.Errorf("respawn seconds must not be negative"))
		}
		if m.Respawn.ChancePerTick < 0 || m.Respawn.ChancePerTick > 1 {
			el.Add(fmt.Errorf("respawn chance_per_tick must be in [0,1]"))
		}
	}

	for n, a := range m.Attacks {
		if err := a.Validate(); err != nil {
			el.Add(fmt.Errorf("attack %d: %w", n, err))
		}
	}

	return el.Err()
}
