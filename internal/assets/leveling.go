package assets

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// LevelRow is one level's requirements and grants.
type LevelRow struct {
	Experience int `json:"experience"` // total absorbed exp required
	PTP        int `json:"ptp"`        // training points granted
	MTP        int `json:"mtp"`
	STP        int `json:"stp"`
}

// Leveling is the level-experience table. Index 0 is level 1.
type Leveling struct {
	Levels []LevelRow `json:"levels"`
}

// ForLevel returns the row for a level, clamping past the table end.
func (l *Leveling) ForLevel(level int) LevelRow {
	if len(l.Levels) == 0 {
		return LevelRow{}
	}
	if level < 1 {
		level = 1
	}
	if level > len(l.Levels) {
		level = len(l.Levels)
	}
	return l.Levels[level-1]
}

// NextLevelAt returns the absorbed-exp threshold for advancing past
// the given level, or -1 when the table is exhausted.
func (l *Leveling) NextLevelAt(level int) int {
	if level >= len(l.Levels) {
		return -1
	}
	return l.Levels[level].Experience
}

// Validate satisfies storage.ValidatingSpec
func (l *Leveling) Validate() error {
	el := errors.NewErrorList()

	if len(l.Levels) == 0 {
		el.Add(fmt.Errorf("leveling table needs at least one level"))
	}
	prev := -1
	for n, row := range l.Levels {
		if row.Experience <= prev {
			el.Add(fmt.Errorf("level %d: experience must increase", n+1))
		}
		prev = row.Experience
	}

	return el.Err()
}
