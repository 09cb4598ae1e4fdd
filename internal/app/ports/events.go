package ports

import (
	"context"

	"github.com/fr0stylo/ourastream/internal/app/domain"
	"github.com/fr0stylo/ourastream/internal/hub"
)

// EventStore is the storage contract shared by every event backend.
// Add notifies live subscribers only after the write is durable.
type EventStore interface {
	Add(ctx context.Context, event domain.WebhookEvent) (domain.StoredEvent, error)
	GetRecent(ctx context.Context, limit int) ([]domain.StoredEvent, error)
	GetByDataType(ctx context.Context, dataType domain.DataType, limit int) ([]domain.StoredEvent, error)
	Count(ctx context.Context) (int64, error)
	Clear(ctx context.Context) (int64, error)
	PruneOlderThan(ctx context.Context, days int) (int64, error)
	Subscribe(ctx context.Context) *hub.Subscription
	Close() error
}

// EventAdder is the write side used by producers.
type EventAdder interface {
	Add(ctx context.Context, event domain.WebhookEvent) (domain.StoredEvent, error)
}

// EventPruner removes events past retention.
type EventPruner interface {
	PruneOlderThan(ctx context.Context, days int) (int64, error)
}
