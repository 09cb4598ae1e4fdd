package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/fr0stylo/ourastream/internal/app/ports"
)

// Retention deletes events older than a fixed number of days on an interval.
type Retention struct {
	store    ports.EventPruner
	days     int
	interval time.Duration
}

func NewRetention(store ports.EventPruner, days int, interval time.Duration) *Retention {
	return &Retention{store: store, days: days, interval: interval}
}

// Run prunes at once and then every interval until ctx is done. A
// non-positive retention or interval disables it.
func (r *Retention) Run(ctx context.Context) error {
	if r.days <= 0 || r.interval <= 0 {
		slog.InfoContext(ctx, "Event pruning disabled")
		return nil
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.PruneOnce(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// PruneOnce runs one prune and logs the outcome.
func (r *Retention) PruneOnce(ctx context.Context) int64 {
	deleted, err := r.store.PruneOlderThan(ctx, r.days)
	if err != nil {
		slog.ErrorContext(ctx, "Event prune failed", "error", err)
		return 0
	}
	slog.InfoContext(ctx, "Pruned old events", "deleted", deleted, "retention_days", r.days)
	return deleted
}
