package oura

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type webhookIngestionMetrics struct {
	requests metric.Int64Counter
	accepted metric.Int64Counter
	rejected metric.Int64Counter
}

func newWebhookIngestionMetrics() webhookIngestionMetrics {
	meter := otel.Meter("github.com/fr0stylo/ourastream/internal/webhooks/oura")
	requests, _ := meter.Int64Counter("ourastream.ingestion.requests")
	accepted, _ := meter.Int64Counter("ourastream.ingestion.accepted")
	rejected, _ := meter.Int64Counter("ourastream.ingestion.rejected")
	return webhookIngestionMetrics{
		requests: requests,
		accepted: accepted,
		rejected: rejected,
	}
}

func (m webhookIngestionMetrics) recordRequest(ctx context.Context) {
	m.requests.Add(ctx, 1)
}

func (m webhookIngestionMetrics) recordAccepted(ctx context.Context, dataType string) {
	m.accepted.Add(ctx, 1, metric.WithAttributes(attribute.String("data_type", dataType)))
}

func (m webhookIngestionMetrics) recordRejected(ctx context.Context, reason string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
