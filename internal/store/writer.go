package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/emberfallmud/emberfall/internal/game"
)

// Writer is the background persistence worker. Each pass snapshots
// every dirty player and all bands; verbs that need durability
// immediately call the store directly instead of waiting.
type Writer struct {
	world    *game.World
	store    *Store
	interval time.Duration
}

func NewWriter(world *game.World, store *Store, interval time.Duration) *Writer {
	return &Writer{world: world, store: store, interval: interval}
}

func (w *Writer) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final flush so a clean shutdown loses nothing.
			w.Flush(context.WithoutCancel(ctx))
			return nil
		case <-ticker.C:
			w.Flush(ctx)
		}
	}
}

// Flush writes every dirty player and all bands. Players stay dirty
// when the write fails so the next pass retries them.
func (w *Writer) Flush(ctx context.Context) {
	var dirty []*game.Player
	for _, s := range w.world.Sessions() {
		if s.Player != nil && s.Player.Dirty() {
			dirty = append(dirty, s.Player)
		}
	}

	if len(dirty) > 0 {
		if err := w.store.PutPlayers(dirty...); err != nil {
			slog.ErrorContext(ctx, "persisting players", "err", err, "count", len(dirty))
		} else {
			for _, p := range dirty {
				p.ClearDirty()
			}
			slog.DebugContext(ctx, "persisted players", "count", len(dirty))
		}
	}

	for _, b := range w.world.Bands() {
		if err := w.store.PutBand(b); err != nil {
			slog.ErrorContext(ctx, "persisting band", "err", err, "band", b.Id)
		}
	}
}
