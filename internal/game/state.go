package game

import (
	"time"

	"github.com/emberfallmud/emberfall/internal/storage"
)

// Combat state kinds.
const (
	StateTypeCombat    = "combat"
	StateTypeRoundtime = "roundtime"
)

// CombatState tracks one combatant, keyed in the world by player name
// (lowercase) or mob uid. A combat entry whose target has left the
// room is dropped on the next combat pass.
type CombatState struct {
	Type       string
	TargetId   string
	NextAction time.Time
	RoomId     storage.Identifier
	RTType     string // hard or soft, roundtime entries only
}

// DefeatedMob records a dead mob awaiting respawn. Its uid stays out
// of every room's mob list while the entry exists.
type DefeatedMob struct {
	RoomId     storage.Identifier
	TemplateId storage.Identifier
	Type       string
	EligibleAt time.Time
	Chance     float64
	Faction    string
}

// Environment is the world's (time-of-day, weather) pair. Owned by
// the scheduler; read under the world's env lock.
type Environment struct {
	TimeStep    int
	TimeOfDay   string
	Weather     string
	ClearChecks int
}

// TimeCycle maps the 16 environment steps to display phases. Four
// steps of dawn and dusk frame longer day and night stretches.
var TimeCycle = []string{
	"dawn", "dawn",
	"day", "day", "day", "day", "day", "day",
	"dusk", "dusk",
	"night", "night", "night", "night", "night", "night",
}

// WeatherSeverityOrder ranks weather from mildest to harshest; the
// Markov update walks this list.
var WeatherSeverityOrder = []string{
	"clear", "light clouds", "overcast", "fog",
	"light rain", "rain", "heavy rain", "storm",
}

// NewEnvironment starts at first light under clear skies.
func NewEnvironment() Environment {
	return Environment{TimeStep: 0, TimeOfDay: TimeCycle[0], Weather: "clear"}
}
