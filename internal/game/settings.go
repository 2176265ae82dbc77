package game

import (
	"time"

	"github.com/emberfallmud/emberfall/internal/storage"
)

// Settings are the simulation tuning knobs. Defaults mirror the shipped
// game balance; the config layer may override any of them.
type Settings struct {
	Quantum             time.Duration
	EventsPerPass       int
	GlobalTickInterval  time.Duration
	MonsterTickInterval time.Duration
	BandPayoutInterval  time.Duration
	WriterInterval      time.Duration
	PlayerTimeout       time.Duration

	CommandQueueDepth int

	ChargenStartRoom    storage.Identifier
	ChargenCompleteRoom storage.Identifier
	DeathRoom           storage.Identifier

	CombatAdvantage int
	HitThreshold    int

	TradeExpiry         time.Duration
	CorpseDecay         time.Duration
	RespawnDefault      time.Duration
	RespawnChance       float64
	SkinningBaseRT      time.Duration
	AttackRoundtimeBase float64
	LookRoundtime       time.Duration

	// Environment cadence, measured in global ticks.
	TimeStepTicks   int
	WeatherTicks    int
	TimeCycleLength int

	AdminAccounts []string
}

// DefaultSettings returns the stock balance values.
func DefaultSettings() Settings {
	return Settings{
		Quantum:             50 * time.Millisecond,
		EventsPerPass:       50,
		GlobalTickInterval:  30 * time.Second,
		MonsterTickInterval: 10 * time.Second,
		BandPayoutInterval:  60 * time.Second,
		WriterInterval:      60 * time.Second,
		PlayerTimeout:       600 * time.Second,

		CommandQueueDepth: 10,

		ChargenStartRoom:    "inn_room",
		ChargenCompleteRoom: "town_square",
		DeathRoom:           "temple_of_light",

		CombatAdvantage: 40,
		HitThreshold:    100,

		TradeExpiry:         30 * time.Second,
		CorpseDecay:         300 * time.Second,
		RespawnDefault:      300 * time.Second,
		RespawnChance:       0.2,
		SkinningBaseRT:      5 * time.Second,
		AttackRoundtimeBase: 3.0,
		LookRoundtime:       200 * time.Millisecond,

		TimeStepTicks:   3,
		WeatherTicks:    10,
		TimeCycleLength: 16,
	}
}

// IsAdminAccount reports whether an account name is on the admin
// allowlist.
func (s Settings) IsAdminAccount(name string) bool {
	for _, a := range s.AdminAccounts {
		if a == name {
			return true
		}
	}
	return false
}
