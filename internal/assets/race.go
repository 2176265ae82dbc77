package assets

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Race carries per-race stat adjustments applied on top of rolled
// attributes when computing bonuses.
type Race struct {
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	StatModifiers map[string]int `json:"stat_modifiers,omitempty"`
}

// Modifier returns the racial adjustment for the given stat.
func (r *Race) Modifier(stat string) int {
	if r == nil {
		return 0
	}
	return r.StatModifiers[stat]
}

// Validate satisfies storage.ValidatingSpec
func (r *Race) Validate() error {
	el := errors.NewErrorList()

	if r.Name == "" {
		el.Add(fmt.Errorf("race name is required"))
	}
	for stat := range r.StatModifiers {
		if !ValidStat(stat) {
			el.Add(fmt.Errorf("unknown stat %q", stat))
		}
	}

	return el.Err()
}
