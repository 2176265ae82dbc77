// Package loot builds corpses, rolls static loot tables, and generates
// dynamic treasure scaled by hunting pressure.
package loot

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emberfallmud/emberfall/internal/assets"
	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// Roller is the randomness the loot rolls draw on. Tests substitute a
// scripted implementation.
type Roller interface {
	Float64() float64
	IntN(n int) int
}

type randRoller struct{}

func (randRoller) Float64() float64 { return rand.Float64() }
func (randRoller) IntN(n int) int   { return rand.IntN(n) }

// NewRoller returns the production randomness source.
func NewRoller() Roller { return randRoller{} }

// RollTable evaluates every entry of a static loot table
// independently. Entries that require skinning never drop here, and
// entries naming unknown items are skipped.
func RollTable(lib *assets.Library, tableId storage.Identifier, roll Roller) []assets.ItemRef {
	table := lib.LootTables.Get(tableId)
	if table == nil {
		return nil
	}

	var drops []assets.ItemRef
	for _, e := range table.Entries {
		if e.RequiresSkinning {
			continue
		}
		if lib.Items.Get(e.ItemId) == nil {
			continue
		}
		if roll.Float64() >= e.Chance {
			continue
		}

		qty := e.MinQuantity
		if qty <= 0 {
			qty = 1
		}
		if e.MaxQuantity > e.MinQuantity {
			qty = e.MinQuantity + roll.IntN(e.MaxQuantity-e.MinQuantity+1)
		}
		for i := 0; i < qty; i++ {
			drops = append(drops, assets.ItemRef{ItemId: e.ItemId, Uid: uuid.NewString()})
		}
	}
	return drops
}

// NewCorpse builds the corpse record for a freshly defeated mob.
// Static loot is rolled immediately; dynamic treasure waits for the
// first SEARCH.
func NewCorpse(lib *assets.Library, m *game.Mob, now time.Time, decayAfter time.Duration, roll Roller) *game.Corpse {
	c := &game.Corpse{
		Uid:        uuid.NewString(),
		Name:       fmt.Sprintf("corpse of a %s", m.Name),
		TemplateId: m.TemplateId,
		DecayAt:    now.Add(decayAfter),
	}

	c.Keywords = append(c.Keywords, "corpse")
	for _, w := range strings.Fields(strings.ToLower(m.Name)) {
		c.Keywords = append(c.Keywords, w)
	}

	if t := m.Template; t != nil {
		c.Level = t.Level
		c.Skinnable = t.Skinnable
		if t.LootTable != "" {
			c.Items = RollTable(lib, t.LootTable, roll)
		}
	}
	return c
}

// SkinResult reports one skinning attempt.
type SkinResult struct {
	Success bool
	Item    assets.ItemRef
	Message string
}

// Skin resolves a skinning attempt against the corpse's template
// yield. The corpse is marked skinned regardless of outcome.
func Skin(lib *assets.Library, c *game.Corpse, firstAidBonus int, creatureName string) SkinResult {
	c.Skinned = true

	yield := c.Skinnable
	if yield == nil || lib.Items.Get(yield.ItemId) == nil {
		return SkinResult{Message: "You can't seem to find a way to skin this creature."}
	}
	if firstAidBonus < yield.DC {
		return SkinResult{Message: "You try to skin the creature, but fail to produce anything of use."}
	}

	item := lib.Items.Get(yield.ItemId)
	return SkinResult{
		Success: true,
		Item:    assets.ItemRef{ItemId: yield.ItemId, Uid: uuid.NewString()},
		Message: fmt.Sprintf("You skillfully skin the %s, producing %s.", creatureName, item.Name),
	}
}
