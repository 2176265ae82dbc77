package assets

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// TrainingCost is the training-point price of one rank of a skill.
type TrainingCost struct {
	PTP int `json:"ptp"`
	MTP int `json:"mtp"`
	STP int `json:"stp"`
}

// Skill is a trainable skill definition.
type Skill struct {
	Name     string       `json:"name"`
	Category string       `json:"category,omitempty"`
	Cost     TrainingCost `json:"cost"`

	// KeyStats drive the stat-based training discount. The average
	// of these attributes, clamped to [70,100], scales the cost down
	// linearly to half at 100.
	KeyStats []string `json:"key_stats,omitempty"`
}

// Validate satisfies storage.ValidatingSpec
func (s *Skill) Validate() error {
	el := errors.NewErrorList()

	if s.Name == "" {
		el.Add(fmt.Errorf("skill name is required"))
	}
	if s.Cost.PTP < 0 || s.Cost.MTP < 0 || s.Cost.STP < 0 {
		el.Add(fmt.Errorf("skill costs must not be negative"))
	}
	if s.Cost.PTP+s.Cost.MTP+s.Cost.STP == 0 {
		el.Add(fmt.Errorf("skill needs a nonzero cost"))
	}
	for _, st := range s.KeyStats {
		if !ValidStat(st) {
			el.Add(fmt.Errorf("unknown key stat %q", st))
		}
	}

	return el.Err()
}

// SkillBonus converts skill ranks into a bonus with diminishing
// returns: +5/rank through 10, +4 through 20, +3 through 30, +2
// through 40, then +1 per rank (rank + 100).
func SkillBonus(rank int) int {
	switch {
	case rank <= 0:
		return 0
	case rank <= 10:
		return rank * 5
	case rank <= 20:
		return 50 + (rank-10)*4
	case rank <= 30:
		return 90 + (rank-20)*3
	case rank <= 40:
		return 120 + (rank-30)*2
	default:
		return 140 + (rank - 40)
	}
}
