package assets

import (
	"fmt"
	"strconv"

	"github.com/pixil98/go-errors"
)

// CriticalHit is one cell of a critical table.
type CriticalHit struct {
	Message     string `json:"message"` // {defender} is interpolated
	ExtraDamage int    `json:"extra_damage"`
	WoundRank   int    `json:"wound_rank"`
	Stun        bool   `json:"stun,omitempty"`
	Fatal       bool   `json:"fatal,omitempty"`
}

// CriticalTable maps hit location -> crit rank (as a string key in
// JSON) -> result for a single damage type. One asset file per
// damage type.
type CriticalTable struct {
	Locations map[string]map[string]CriticalHit `json:"locations"`
}

// Lookup resolves a critical result. Ranks above the highest defined
// rank for a location clamp down to it; rank 0 yields the zero hit.
func (t *CriticalTable) Lookup(location string, rank int) CriticalHit {
	if rank <= 0 {
		return CriticalHit{}
	}

	locTable, ok := t.Locations[location]
	if !ok {
		for _, v := range t.Locations {
			locTable = v
			break
		}
	}
	if len(locTable) == 0 {
		return CriticalHit{Message: "A solid hit!", ExtraDamage: 1, WoundRank: 1}
	}

	maxRank := 1
	for k := range locTable {
		if n, err := strconv.Atoi(k); err == nil && n > maxRank {
			maxRank = n
		}
	}
	if rank > maxRank {
		rank = maxRank
	}

	hit, ok := locTable[strconv.Itoa(rank)]
	if !ok {
		return CriticalHit{Message: "A solid hit!", ExtraDamage: 1, WoundRank: 1}
	}
	return hit
}

// Validate satisfies storage.ValidatingSpec
func (t *CriticalTable) Validate() error {
	el := errors.NewErrorList()

	if len(t.Locations) == 0 {
		el.Add(fmt.Errorf("critical table needs at least one location"))
	}
	for loc, ranks := range t.Locations {
		for rank, hit := range ranks {
			if _, err := strconv.Atoi(rank); err != nil {
				el.Add(fmt.Errorf("%s: rank key %q is not a number", loc, rank))
			}
			if hit.WoundRank < 0 || hit.WoundRank > 3 {
				el.Add(fmt.Errorf("%s rank %s: wound_rank must be in [0,3]", loc, rank))
			}
			if hit.ExtraDamage < 0 {
				el.Add(fmt.Errorf("%s rank %s: extra_damage must not be negative", loc, rank))
			}
		}
	}

	return el.Err()
}
