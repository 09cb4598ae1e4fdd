package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fr0stylo/ourastream/internal/app/domain"
	"github.com/fr0stylo/ourastream/internal/app/ports"
	"github.com/fr0stylo/ourastream/internal/db"
	"github.com/fr0stylo/ourastream/internal/db/queries"
	"github.com/fr0stylo/ourastream/internal/hub"
)

var _ ports.EventStore = (*EventStore)(nil)

// EventStore keeps events as sqlite rows and notifies the hub after each commit.
type EventStore struct {
	database eventDatabase
	hub      *hub.Hub
	now      func() time.Time
	closeFn  func() error
}

// EventStoreOption customizes an EventStore.
type EventStoreOption func(*EventStore)

// WithClock overrides the receive-time clock.
func WithClock(now func() time.Time) EventStoreOption {
	return func(s *EventStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewEventStore creates a store over a shared database handle. Close does not
// close the shared handle.
func NewEventStore(database *db.Database, h *hub.Hub, opts ...EventStoreOption) *EventStore {
	return newEventStore(database, h, nil, opts...)
}

// OpenEventStore opens the database at path and returns a store owning it.
func OpenEventStore(path string, h *hub.Hub, opts ...EventStoreOption) (*EventStore, error) {
	database, err := db.New(path)
	if err != nil {
		return nil, err
	}
	return newEventStore(database, h, database.Close, opts...), nil
}

func newEventStore(database eventDatabase, h *hub.Hub, closeFn func() error, opts ...EventStoreOption) *EventStore {
	if h == nil {
		h = hub.New()
	}
	store := &EventStore{
		database: database,
		hub:      h,
		now:      time.Now,
		closeFn:  closeFn,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Add persists event and publishes the stored record once the insert commits.
func (s *EventStore) Add(ctx context.Context, event domain.WebhookEvent) (domain.StoredEvent, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return domain.StoredEvent{}, fmt.Errorf("encode event: %w", err)
	}
	stored := domain.StoredEvent{
		ID:         uuid.NewString(),
		ReceivedAt: s.now().UTC(),
		Event:      event,
	}
	err = s.database.AddEvent(ctx, queries.InsertEventParams{
		ID:         stored.ID,
		ReceivedAt: db.FormatTimestamp(stored.ReceivedAt),
		DataType:   string(event.DataType),
		EventType:  string(event.EventType),
		UserID:     toNullString(event.UserID),
		Payload:    string(payload),
	})
	if err != nil {
		return domain.StoredEvent{}, fmt.Errorf("insert event: %w", err)
	}
	s.hub.Publish(stored)
	return stored, nil
}

// GetRecent returns up to limit events, newest first.
func (s *EventStore) GetRecent(ctx context.Context, limit int) ([]domain.StoredEvent, error) {
	if limit <= 0 {
		return []domain.StoredEvent{}, nil
	}
	rows, err := s.database.ListRecentEvents(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return mapEventRows(rows)
}

// GetByDataType returns up to limit events of one data type, newest first.
func (s *EventStore) GetByDataType(ctx context.Context, dataType domain.DataType, limit int) ([]domain.StoredEvent, error) {
	if limit <= 0 {
		return []domain.StoredEvent{}, nil
	}
	rows, err := s.database.ListEventsByDataType(ctx, queries.ListEventsByDataTypeParams{
		DataType: string(dataType),
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list %s events: %w", dataType, err)
	}
	return mapEventRows(rows)
}

func (s *EventStore) Count(ctx context.Context) (int64, error) {
	return s.database.CountEvents(ctx)
}

// Clear deletes every event and returns how many were stored.
func (s *EventStore) Clear(ctx context.Context) (int64, error) {
	return s.database.ClearEvents(ctx)
}

// PruneOlderThan deletes events received more than days ago.
func (s *EventStore) PruneOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := s.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	deleted, err := s.database.PruneEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	if deleted > 0 {
		slog.InfoContext(ctx, "Pruned stored events", "deleted", deleted, "retention_days", days)
	}
	return deleted, nil
}

func (s *EventStore) Subscribe(ctx context.Context) *hub.Subscription {
	return s.hub.Subscribe(ctx)
}

func (s *EventStore) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}
