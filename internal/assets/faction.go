package assets

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Faction defines allegiance relations for monsters and npcs.
type Faction struct {
	Name string `json:"name"`

	// KOS factions are attacked on sight by members of this faction.
	KOS []string `json:"kos,omitempty"`

	// KOSPlayers makes members attack any player entering the room.
	KOSPlayers bool `json:"kos_players,omitempty"`

	// Rivals gain standing with a player who kills a member of this
	// faction; the player loses standing with this faction itself.
	Rivals []string `json:"rivals,omitempty"`

	// StandingLossOnKill / StandingGainForRivals tune the adjustment
	// applied when a member is killed.
	StandingLossOnKill    int `json:"standing_loss_on_kill,omitempty"`
	StandingGainForRivals int `json:"standing_gain_for_rivals,omitempty"`
}

// IsKOS reports whether members of this faction attack members of
// other on sight.
func (f *Faction) IsKOS(other string) bool {
	for _, k := range f.KOS {
		if k == other {
			return true
		}
	}
	return false
}

// Validate satisfies storage.ValidatingSpec
func (f *Faction) Validate() error {
	el := errors.NewErrorList()
	if f.Name == "" {
		el.Add(fmt.Errorf("faction name is required"))
	}
	return el.Err()
}
