package game

import (
	"time"

	"github.com/emberfallmud/emberfall/internal/assets"
)

// WornItem is the client-facing view of one equipment slot.
type WornItem struct {
	Name        string `json:"name"`
	SlotDisplay string `json:"slot_display"`
}

// Vitals is the client-facing snapshot attached to command responses
// and update_vitals events.
type Vitals struct {
	Health    int `json:"health"`
	MaxHealth int `json:"max_health"`

	Mana    int `json:"mana"`
	MaxMana int `json:"max_mana"`

	Stamina    int `json:"stamina"`
	MaxStamina int `json:"max_stamina"`

	Spirit    int `json:"spirit"`
	MaxSpirit int `json:"max_spirit"`

	CurrentRoomId string `json:"current_room_id"`
	Stance        string `json:"stance"`
	Posture       string `json:"posture"`

	Wounds map[string]int      `json:"wounds"`
	Scars  map[string]int      `json:"scars"`
	Worn   map[string]WornItem `json:"worn_items"`

	StatusEffects []string `json:"status_effects"`

	ExpToNext  int `json:"exp_to_next"`
	ExpPercent int `json:"exp_percent"`

	RTEndTimeMs  int64  `json:"rt_end_time_ms"`
	RTDurationMs int64  `json:"rt_duration_ms"`
	RTType       string `json:"rt_type,omitempty"`
}

// Snapshot builds the vitals view of a player at now.
func Snapshot(lib *assets.Library, p *Player, now time.Time) Vitals {
	v := Vitals{
		Health:     p.HP,
		MaxHealth:  p.MaxHP(),
		Mana:       p.Mana,
		MaxMana:    p.MaxMana(),
		Stamina:    p.Stamina,
		MaxStamina: p.MaxStamina(),
		Spirit:     p.Spirit,
		MaxSpirit:  p.MaxSpirit(),

		CurrentRoomId: p.RoomId.String(),
		Stance:        p.Stance,
		Posture:       p.Posture,

		Wounds: map[string]int{},
		Scars:  map[string]int{},
		Worn:   map[string]WornItem{},
	}

	for loc, rank := range p.Wounds {
		if rank > 0 {
			v.Wounds[loc] = rank
		}
	}
	for loc, rank := range p.Scars {
		if rank > 0 {
			v.Scars[loc] = rank
		}
	}

	for slot, ref := range p.WornItems {
		if ref.Empty() {
			continue
		}
		name := ref.ItemId.String()
		if tmpl := lib.Items.Get(ref.ItemId); tmpl != nil {
			name = tmpl.Name
		}
		v.Worn[slot] = WornItem{Name: name, SlotDisplay: assets.EquipmentSlots[slot]}
	}

	for _, b := range p.ActiveBuffs(now) {
		v.StatusEffects = append(v.StatusEffects, b.Name)
	}
	if p.DeathStingPoints > 0 {
		v.StatusEffects = append(v.StatusEffects, "death's sting")
	}

	leveling := lib.Leveling.Get("default")
	v.ExpToNext = p.ExpToNext(leveling)
	if leveling != nil {
		cur := leveling.ForLevel(p.Level).Experience
		next := leveling.NextLevelAt(p.Level)
		if next > cur {
			pct := 100 * (p.Experience - cur) / (next - cur)
			v.ExpPercent = clamp(pct, 0, 100)
		} else {
			v.ExpPercent = 100
		}
	}

	if now.Before(p.RTEnd) {
		v.RTEndTimeMs = p.RTEnd.UnixMilli()
		v.RTDurationMs = p.RTDuration.Milliseconds()
		v.RTType = p.RTType
	}

	return v
}
