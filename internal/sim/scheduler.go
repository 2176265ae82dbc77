// Package sim runs the simulation loop: a fixed quantum pass that
// drains deferred events, releases roundtime-queued commands, swings
// mob attacks, and fires the slower world ticks (environment, monster
// wandering, band payouts).
package sim

import (
	"context"
	"log/slog"
	"time"

	"github.com/emberfallmud/emberfall/internal/commands"
	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/loot"
	"github.com/emberfallmud/emberfall/internal/messaging"
	"github.com/emberfallmud/emberfall/internal/metrics"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// Scheduler owns the simulation cadence. All world mutation funnels
// through its goroutine; transports only enqueue.
type Scheduler struct {
	World    *game.World
	Ex       *commands.Executor
	Notify   commands.Notifier
	Treasure *loot.Manager
	Roll     loot.Roller

	Clock func() time.Time

	tickCount   int
	lastGlobal  time.Time
	lastMonster time.Time
	lastPayout  time.Time
}

// NewScheduler wires a scheduler over an executor's world.
func NewScheduler(ex *commands.Executor, notify commands.Notifier, treasure *loot.Manager) *Scheduler {
	return &Scheduler{
		World:    ex.World,
		Ex:       ex,
		Notify:   notify,
		Treasure: treasure,
		Roll:     loot.NewRoller(),
		Clock:    time.Now,
	}
}

func (s *Scheduler) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// Start runs the loop until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.World.Settings.Quantum)
	defer ticker.Stop()

	now := s.now()
	s.lastGlobal = now
	s.lastMonster = now
	s.lastPayout = now

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Pass(s.now())
		}
	}
}

// Pass executes one scheduler quantum.
func (s *Scheduler) Pass(now time.Time) {
	s.drainEvents()
	s.releaseQueued(now)
	s.combatPass(now)
	s.expireOffers(now)

	if now.Sub(s.lastMonster) >= s.World.Settings.MonsterTickInterval {
		s.lastMonster = now
		start := time.Now()
		s.monsterTick(now)
		metrics.ObserveTick("monster", time.Since(start))
	}
	if now.Sub(s.lastPayout) >= s.World.Settings.BandPayoutInterval {
		s.lastPayout = now
		game.PayoutBands(s.World)
	}
	if now.Sub(s.lastGlobal) >= s.World.Settings.GlobalTickInterval {
		s.lastGlobal = now
		s.tickCount++
		start := time.Now()
		s.globalTick(now)
		metrics.ObserveTick("global", time.Since(start))
	}

	s.flushMessages()
}

// drainEvents runs a bounded batch of deferred mutations. A panicking
// event must not take the loop down.
func (s *Scheduler) drainEvents() {
	start := time.Now()
	events := s.World.DrainEvents(s.World.Settings.EventsPerPass)
	for _, ev := range events {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("event panicked", "event", ev.Name, "id", ev.Id, "panic", r)
				}
			}()
			ev.Fn()
		}()
	}
	if len(events) > 0 {
		metrics.ObserveTick("events", time.Since(start))
	}
}

// releaseQueued replays commands held back by hard roundtime, one per
// player per pass.
func (s *Scheduler) releaseQueued(now time.Time) {
	for _, sess := range s.World.Sessions() {
		p := sess.Player
		if len(sess.Queue) == 0 || p.InHardRT(now) {
			continue
		}
		line := sess.Queue[0]
		sess.Queue = sess.Queue[1:]

		resp, err := s.Ex.Execute(p.Name, line, sess.Sid, "")
		if err != nil {
			slog.Error("queued command failed", "player", p.Name, "err", err)
			continue
		}
		s.send(p.Name, messaging.Envelope{
			Type:    messaging.EventCommandResponse,
			Payload: resp,
		})
	}
}

// flushMessages delivers lines queued on players outside their own
// command cycle: combat results, trades, group chatter.
func (s *Scheduler) flushMessages() {
	for _, sess := range s.World.Sessions() {
		for _, msg := range sess.Player.DrainMessages() {
			s.send(sess.Player.Name, messaging.Envelope{
				Type: messaging.EventMessage,
				Text: msg,
			})
		}
	}
}

func (s *Scheduler) send(playerName string, env messaging.Envelope) {
	if s.Notify == nil {
		return
	}
	if err := s.Notify.Send(playerName, env); err != nil {
		slog.Error("send failed", "player", playerName, "err", err)
	}
}

func (s *Scheduler) broadcast(roomId storage.Identifier, env messaging.Envelope, skip ...string) {
	if s.Notify == nil {
		return
	}
	if err := s.Notify.BroadcastRoom(s.World, roomId, env, skip...); err != nil {
		slog.Error("broadcast failed", "room", roomId, "err", err)
	}
}
