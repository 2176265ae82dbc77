package loot

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emberfallmud/emberfall/internal/assets"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// Treasure tier tuning. A tier spans a silver-value band; gems and
// general items are drawn from the library by value.
const (
	maxTier       = 10
	tierValueBand = 60

	gemChance   = 0.35
	itemChance  = 0.20
	chestChance = 0.05
	chestTier   = 4

	// Pressure moves by killPressure per kill and drains
	// decayPerMinute back toward the rested floor. The modifier is
	// pressure/4, so the bounds hold it to [-5,+5].
	killPressure   = 4.0
	decayPerMinute = 1.0
	pressureFloor  = -20.0
	pressureCap    = 20.0
)

// DynamicLoot is one treasure-level generation result.
type DynamicLoot struct {
	Coins int
	Items []assets.ItemRef
}

// Manager tracks hunting pressure per monster template and generates
// dynamic treasure on the first search of a corpse. Heavily hunted
// templates yield poorer finds; rested ones yield richer.
type Manager struct {
	lib  *assets.Library
	roll Roller

	mu          sync.Mutex
	pressure    map[storage.Identifier]float64
	lastDecayAt time.Time

	gems  []tieredItem
	goods []tieredItem
	chest storage.Identifier
}

type tieredItem struct {
	id    storage.Identifier
	value int
}

// NewManager indexes the item library by value band.
func NewManager(lib *assets.Library, roll Roller, now time.Time) *Manager {
	m := &Manager{
		lib:         lib,
		roll:        roll,
		pressure:    map[storage.Identifier]float64{},
		lastDecayAt: now,
	}

	for id, item := range lib.Items.GetAll() {
		switch item.Type {
		case "gem":
			m.gems = append(m.gems, tieredItem{id: id, value: item.Value})
		case "junk", "weapon", "armor", "shield":
			if item.Value > 0 {
				m.goods = append(m.goods, tieredItem{id: id, value: item.Value})
			}
		case "container":
			if m.chest == "" {
				m.chest = id
			}
		}
	}
	return m
}

// RecordKill raises hunting pressure on a template.
func (m *Manager) RecordKill(templateId storage.Identifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pressure[templateId] = math.Min(pressureCap, m.pressure[templateId]+killPressure)
}

// Decay drains pressure linearly for the minutes elapsed since the
// last sweep. Idle templates drift toward the rested floor.
func (m *Manager) Decay(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	minutes := now.Sub(m.lastDecayAt).Minutes()
	if minutes < 1 {
		return
	}
	m.lastDecayAt = now

	for id, p := range m.pressure {
		m.pressure[id] = math.Max(pressureFloor, p-decayPerMinute*minutes)
	}
}

// Modifier returns the tier offset for a template, in [-5, +5].
func (m *Manager) Modifier(templateId storage.Identifier) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int(m.pressure[templateId] / 4)
}

// Tier resolves the treasure tier for one roll against a template.
func (m *Manager) Tier(mobLevel int, templateId storage.Identifier) int {
	tier := mobLevel/2 + 1 - m.Modifier(templateId)
	if tier < 1 {
		tier = 1
	}
	if tier > maxTier {
		tier = maxTier
	}
	return tier
}

// Generate rolls dynamic treasure for a corpse's first search. Coins
// always drop; gems, general items, and chests are chance rolls at
// the resolved tier.
func (m *Manager) Generate(mobLevel int, templateId storage.Identifier) DynamicLoot {
	tier := m.Tier(mobLevel, templateId)

	out := DynamicLoot{
		Coins: tier + m.roll.IntN(tier*10),
	}

	if m.roll.Float64() < gemChance {
		if ref, ok := m.pickByTier(m.gems, tier); ok {
			out.Items = append(out.Items, ref)
		}
	}
	if m.roll.Float64() < itemChance {
		if ref, ok := m.pickByTier(m.goods, tier); ok {
			out.Items = append(out.Items, ref)
		}
	}
	if tier >= chestTier && m.chest != "" && m.roll.Float64() < chestChance {
		out.Items = append(out.Items, assets.ItemRef{ItemId: m.chest, Uid: uuid.NewString()})
	}
	return out
}

// pickByTier draws a random item whose value fits the tier's band.
// An empty band falls back to the cheapest candidates.
func (m *Manager) pickByTier(pool []tieredItem, tier int) (assets.ItemRef, bool) {
	if len(pool) == 0 {
		return assets.ItemRef{}, false
	}

	ceiling := tier * tierValueBand
	var band []tieredItem
	for _, it := range pool {
		if it.value <= ceiling {
			band = append(band, it)
		}
	}
	if len(band) == 0 {
		band = pool
	}

	pick := band[m.roll.IntN(len(band))]
	return assets.ItemRef{ItemId: pick.id, Uid: uuid.NewString()}, true
}
