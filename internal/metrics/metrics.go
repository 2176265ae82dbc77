// Package metrics exposes simulation counters over a prometheus
// endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for command execution metrics.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusUnknown = "unknown_verb"
	StatusBlocked = "blocked"
)

// TickDuration is the histogram of scheduler pass durations.
var TickDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "emberfall_tick_duration_seconds",
		Help:    "Scheduler pass duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"phase"},
)

// EventsDrained counts event-queue entries run by the scheduler.
var EventsDrained = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "emberfall_events_drained_total",
		Help: "Total event queue entries executed",
	},
)

// CommandExecutions counts verb dispatches by outcome.
var CommandExecutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "emberfall_command_executions_total",
		Help: "Total number of command executions",
	},
	[]string{"verb", "status"},
)

// CombatSwings counts resolved attacks.
var CombatSwings = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "emberfall_combat_swings_total",
		Help: "Total attack resolutions",
	},
	[]string{"outcome"},
)

// PlayersOnline tracks the live session count.
var PlayersOnline = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "emberfall_players_online",
		Help: "Active player sessions",
	},
)

// PersistenceFailures counts failed writer passes.
var PersistenceFailures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "emberfall_persistence_failures_total",
		Help: "Total failed persistence writes",
	},
)

// Register registers all simulation metrics with a registry. Panics on
// duplicate registration, following prometheus convention.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(TickDuration)
	reg.MustRegister(EventsDrained)
	reg.MustRegister(CommandExecutions)
	reg.MustRegister(CombatSwings)
	reg.MustRegister(PlayersOnline)
	reg.MustRegister(PersistenceFailures)
}

// RecordCommand increments the command counter.
func RecordCommand(verb, status string) {
	CommandExecutions.WithLabelValues(verb, status).Inc()
}

// ObserveTick records one scheduler phase duration.
func ObserveTick(phase string, d time.Duration) {
	TickDuration.WithLabelValues(phase).Observe(d.Seconds())
}
