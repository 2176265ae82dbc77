package sim

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestNextWeather(t *testing.T) {
	tests := map[string]struct {
		current     string
		clearChecks int
		roll        float64
		want        string
		wantChecks  int
	}{
		"clear holds on high roll": {
			current: "clear", clearChecks: 0, roll: 0.5,
			want: "clear", wantChecks: 1,
		},
		"clear breaks on low roll": {
			current: "clear", clearChecks: 0, roll: 0.1,
			want: "light clouds", wantChecks: 0,
		},
		"long clear spell breaks more easily": {
			current: "clear", clearChecks: 10, roll: 0.6,
			want: "light clouds", wantChecks: 0,
		},
		"worsen chance caps": {
			current: "clear", clearChecks: 100, roll: 0.9,
			want: "clear", wantChecks: 101,
		},
		"improves below quarter": {
			current: "rain", roll: 0.2,
			want: "light rain", wantChecks: 0,
		},
		"stays in the middle band": {
			current: "rain", roll: 0.5,
			want: "rain", wantChecks: 0,
		},
		"worsens above three quarters": {
			current: "rain", roll: 0.8,
			want: "heavy rain", wantChecks: 0,
		},
		"storm cannot worsen": {
			current: "storm", roll: 0.99,
			want: "storm", wantChecks: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, checks := nextWeather(tt.current, tt.clearChecks, tt.roll)
			testutil.AssertEqual(t, "weather", got, tt.want)
			testutil.AssertEqual(t, "clear checks", checks, tt.wantChecks)
		})
	}
}

func TestPickExit(t *testing.T) {
	exits := map[string]string{
		"north": "north_road",
		"south": "south_gate",
	}

	tests := map[string]struct {
		allowed  []string
		wantDest string
		wantOk   bool
	}{
		"one allowed destination": {
			allowed:  []string{"south_gate"},
			wantDest: "south_gate",
			wantOk:   true,
		},
		"nothing allowed": {
			allowed: []string{"elsewhere"},
			wantOk:  false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, dest, ok := pickExit(exits, tt.allowed, func(n int) int { return 0 })
			testutil.AssertEqual(t, "ok", ok, tt.wantOk)
			if ok {
				testutil.AssertEqual(t, "destination", dest.String(), tt.wantDest)
			}
		})
	}
}

func TestRenderMove(t *testing.T) {
	tests := map[string]struct {
		tmpl string
		data moveData
		want string
	}{
		"default leave": {
			tmpl: defaultLeaveMessage,
			data: moveData{Name: "giant rat", Exit: "north"},
			want: "The giant rat wanders north.",
		},
		"default arrive": {
			tmpl: defaultArriveMessage,
			data: moveData{Name: "giant rat"},
			want: "A giant rat wanders in.",
		},
		"custom template with sprig": {
			tmpl: "{{.Name | title}} slithers {{.Exit}}.",
			data: moveData{Name: "cave serpent", Exit: "down"},
			want: "Cave Serpent slithers down.",
		},
		"broken template falls back": {
			tmpl: "{{.Name",
			data: moveData{Name: "giant rat"},
			want: "The giant rat wanders off.",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "message", renderMove(tt.tmpl, tt.data), tt.want)
		})
	}
}
