package sink

import (
	"context"
	"log/slog"

	"github.com/fr0stylo/ourastream/internal/app/domain"
)

const defaultQueueSize = 256

// Dispatcher decouples request handlers from sink latency with a bounded queue
// drained by a single worker.
type Dispatcher struct {
	forwarder *Forwarder
	queue     chan domain.StoredEvent
	metrics   sinkMetrics
}

func NewDispatcher(forwarder *Forwarder, size int) *Dispatcher {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Dispatcher{
		forwarder: forwarder,
		queue:     make(chan domain.StoredEvent, size),
		metrics:   newSinkMetrics(),
	}
}

// Enqueue never blocks; it reports false when the sink is disabled or the
// queue is full.
func (d *Dispatcher) Enqueue(event domain.StoredEvent) bool {
	if !d.forwarder.Enabled() {
		return false
	}
	select {
	case d.queue <- event:
		return true
	default:
		d.metrics.recordDropped(context.Background(), string(event.Event.DataType), "queue_full")
		return false
	}
}

// Run forwards queued events until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	if !d.forwarder.Enabled() {
		return nil
	}
	d.forwarder.Start(ctx)
	defer func() {
		if err := d.forwarder.Close(); err != nil {
			slog.Warn("Sink stream close failed", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			if left := len(d.queue); left > 0 {
				slog.Warn("Sink dispatcher stopped with queued events", "pending", left)
			}
			return nil
		case event := <-d.queue:
			d.forwarder.Ingest(ctx, event)
		}
	}
}
