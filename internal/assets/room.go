package assets

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// MobStub embeds a monster or npc placement in a room template. At
// hydration time the referenced template is merged underneath the
// stub; any field set here wins.
type MobStub struct {
	Uid       string             `json:"uid,omitempty"`
	MonsterId storage.Identifier `json:"monster_id"`

	// Optional per-placement overrides
	Name    string         `json:"name,omitempty"`
	MaxHP   int            `json:"max_hp,omitempty"`
	Faction string         `json:"faction,omitempty"`
	Stats   map[string]int `json:"stats,omitempty"`
}

func (s *MobStub) Validate() error {
	if s.MonsterId == "" {
		return fmt.Errorf("mob stub monster_id is required")
	}
	return nil
}

// ItemStub places a loose item on the room floor at hydration.
type ItemStub struct {
	Uid    string             `json:"uid,omitempty"`
	ItemId storage.Identifier `json:"item_id"`
}

// AmbientEvent is a flavor message that may fire on the global tick.
type AmbientEvent struct {
	Chance  float64 `json:"chance"`
	Message string  `json:"message"`
}

// Room is a static room template. The runtime room value hydrated
// from it lives in the game package.
type Room struct {
	Name string `json:"name"`

	// Descriptions keyed by "<time>_<weather>" with a "default"
	// fallback, e.g. "night_clear".
	Descriptions map[string]string `json:"descriptions"`

	Exits map[string]string `json:"exits"` // direction -> room id

	Outdoor     bool `json:"outdoor,omitempty"`
	Underground bool `json:"underground,omitempty"`
	Town        bool `json:"town,omitempty"`
	Node        bool `json:"node,omitempty"`

	// PrivateTable rooms track an owner and invite list; the first
	// entrant becomes owner.
	PrivateTable bool `json:"private_table,omitempty"`

	Mobs  []MobStub  `json:"mobs,omitempty"`
	Items []ItemStub `json:"items,omitempty"`

	AmbientEvents []AmbientEvent `json:"ambient_events,omitempty"`
	OnEnter       string         `json:"on_enter,omitempty"`
}

// Description picks the best description for the current time of day
// and weather.
func (r *Room) Description(timeOfDay, weather string) string {
	if d, ok := r.Descriptions[timeOfDay+"_"+weather]; ok {
		return d
	}
	if d, ok := r.Descriptions[timeOfDay]; ok {
		return d
	}
	return r.Descriptions["default"]
}

// Validate satisfies storage.ValidatingSpec
func (r *Room) Validate() error {
	el := errors.NewErrorList()

	if r.Name == "" {
		el.Add(fmt.Errorf("room name is required"))
	}
	if len(r.Descriptions) == 0 {
		el.Add(fmt.Errorf("room needs at least one description"))
	} else if _, ok := r.Descriptions["default"]; !ok {
		el.Add(fmt.Errorf("room needs a default description"))
	}

	for dir, dest := range r.Exits {
		if dest == "" {
			el.Add(fmt.Errorf("exit %s: destination is required", dir))
		}
	}

	for n := range r.Mobs {
		if err := r.Mobs[n].Validate(); err != nil {
			el.Add(fmt.Errorf("mob %d: %w", n, err))
		}
	}

	for n, ev := range r.AmbientEvents {
		if ev.Message == "" {
			el.Add(fmt.Errorf("ambient event %d: message is required", n))
		}
		if ev.Chance < 0 || ev.Chance > 1 {
			el.Add(fmt.Errorf("ambient event %d: chance must be in [0,1]", n))
		}
	}

	return el.Err()
}
