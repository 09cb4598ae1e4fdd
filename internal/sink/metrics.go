package sink

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type sinkMetrics struct {
	attempts  metric.Int64Counter
	forwarded metric.Int64Counter
	dropped   metric.Int64Counter
	reopened  metric.Int64Counter
}

func newSinkMetrics() sinkMetrics {
	meter := otel.Meter("github.com/fr0stylo/ourastream/internal/sink")
	attempts, _ := meter.Int64Counter("ourastream.sink.attempts")
	forwarded, _ := meter.Int64Counter("ourastream.sink.forwarded")
	dropped, _ := meter.Int64Counter("ourastream.sink.dropped")
	reopened, _ := meter.Int64Counter("ourastream.sink.reopened")
	return sinkMetrics{
		attempts:  attempts,
		forwarded: forwarded,
		dropped:   dropped,
		reopened:  reopened,
	}
}

func (m sinkMetrics) recordAttempt(ctx context.Context, dataType string) {
	m.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("data_type", dataType)))
}

func (m sinkMetrics) recordForwarded(ctx context.Context, dataType string) {
	m.forwarded.Add(ctx, 1, metric.WithAttributes(attribute.String("data_type", dataType)))
}

func (m sinkMetrics) recordDropped(ctx context.Context, dataType, reason string) {
	m.dropped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("data_type", dataType),
		attribute.String("reason", reason),
	))
}

func (m sinkMetrics) recordReopen(ctx context.Context) {
	m.reopened.Add(ctx, 1)
}
