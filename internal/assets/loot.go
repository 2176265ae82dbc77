package assets

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// LootEntry is one drop in a loot table. Quantity may span a range;
// Min alone means a fixed count.
type LootEntry struct {
	ItemId           storage.Identifier `json:"item_id"`
	Chance           float64            `json:"chance"`
	MinQuantity      int                `json:"min_quantity,omitempty"`
	MaxQuantity      int                `json:"max_quantity,omitempty"`
	RequiresSkinning bool               `json:"requires_skinning,omitempty"`
}

// LootTable is a static list of chance rolls evaluated independently
// on corpse creation.
type LootTable struct {
	Entries []LootEntry `json:"entries"`
}

// Validate satisfies storage.ValidatingSpec
func (t *LootTable) Validate() error {
	el := errors.NewErrorList()

	if len(t.Entries) == 0 {
		el.Add(fmt.Errorf("loot table needs at least one entry"))
	}
	for n, e := range t.Entries {
		if e.ItemId == "" {
			el.Add(fmt.Errorf("entry %d: item_id is required", n))
		}
		if e.Chance < 0 || e.Chance > 1 {
			el.Add(fmt.Errorf("entry %d: chance must be in [0,1]", n))
		}
		if e.MaxQuantity < e.MinQuantity {
			el.Add(fmt.Errorf("entry %d: max_quantity below min_quantity", n))
		}
	}

	return el.Err()
}
