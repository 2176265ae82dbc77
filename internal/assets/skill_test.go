package assets

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestSkillBonus(t *testing.T) {
	tests := map[string]struct {
		rank int
		exp  int
	}{
		"zero ranks":        {rank: 0, exp: 0},
		"negative ranks":    {rank: -3, exp: 0},
		"first tier":        {rank: 5, exp: 25},
		"first tier top":    {rank: 10, exp: 50},
		"second tier":       {rank: 15, exp: 70},
		"second tier top":   {rank: 20, exp: 90},
		"third tier top":    {rank: 30, exp: 120},
		"fourth tier top":   {rank: 40, exp: 140},
		"rank plus hundred": {rank: 41, exp: 141},
		"deep ranks":        {rank: 100, exp: 200},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "bonus", SkillBonus(tt.rank), tt.exp)
		})
	}
}

func TestStatBonus(t *testing.T) {
	tests := map[string]struct {
		value int
		mod   int
		exp   int
	}{
		"baseline":        {value: 50, exp: 0},
		"above baseline":  {value: 70, exp: 10},
		"below baseline":  {value: 40, exp: -5},
		"racial modifier": {value: 60, mod: 5, exp: 10},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "bonus", StatBonus(tt.value, tt.mod), tt.exp)
		})
	}
}

func TestSkillValidate(t *testing.T) {
	tests := map[string]struct {
		skill  Skill
		expErr bool
	}{
		"valid": {
			skill: Skill{Name: "dodging", Cost: TrainingCost{PTP: 2}, KeyStats: []string{"AGI"}},
		},
		"missing name": {
			skill:  Skill{Cost: TrainingCost{PTP: 1}},
			expErr: true,
		},
		"zero cost": {
			skill:  Skill{Name: "free"},
			expErr: true,
		},
		"bad key stat": {
			skill:  Skill{Name: "dodging", Cost: TrainingCost{PTP: 2}, KeyStats: []string{"LCK"}},
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.skill.Validate()
			if tt.expErr && err == nil {
				t.Error("expected error")
			}
			if !tt.expErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
