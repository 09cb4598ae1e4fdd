package warehouse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fr0stylo/ourastream/internal/app/domain"
	"github.com/fr0stylo/ourastream/internal/app/ports"
	"github.com/fr0stylo/ourastream/internal/hub"
)

var _ ports.EventStore = (*EventStore)(nil)

type statementExecutor interface {
	Execute(ctx context.Context, statement string) ([]Row, error)
}

// EventStore keeps events in a Delta table. Live notifications stay in process.
type EventStore struct {
	client statementExecutor
	table  string
	hub    *hub.Hub
	now    func() time.Time

	initMu      sync.Mutex
	initialized atomic.Bool
}

type EventStoreOption func(*EventStore)

func WithClock(now func() time.Time) EventStoreOption {
	return func(s *EventStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewEventStore(client statementExecutor, table string, h *hub.Hub, opts ...EventStoreOption) *EventStore {
	if h == nil {
		h = hub.New()
	}
	store := &EventStore{
		client: client,
		table:  strings.TrimSpace(table),
		hub:    h,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// ensureTable creates the table once; concurrent first callers wait on the lock.
func (s *EventStore) ensureTable(ctx context.Context) error {
	if s.initialized.Load() {
		return nil
	}
	s.initMu.Lock()
	defer s.initMu.Unlock()
	if s.initialized.Load() {
		return nil
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id STRING,
  received_at TIMESTAMP,
  data_type STRING,
  event_type STRING,
  user_id STRING,
  payload STRING
) USING DELTA`, s.table)
	if _, err := s.client.Execute(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	s.initialized.Store(true)
	return nil
}

func (s *EventStore) Add(ctx context.Context, event domain.WebhookEvent) (domain.StoredEvent, error) {
	if err := s.ensureTable(ctx); err != nil {
		return domain.StoredEvent{}, err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return domain.StoredEvent{}, fmt.Errorf("encode event: %w", err)
	}
	stored := domain.StoredEvent{
		ID:         uuid.NewString(),
		ReceivedAt: s.now().UTC(),
		Event:      event,
	}
	dataType := string(event.DataType)
	eventType := string(event.EventType)
	receivedAt := stored.ReceivedAt.Format(time.RFC3339Nano)
	payloadText := string(payload)
	insert := fmt.Sprintf(
		"INSERT INTO %s (id, received_at, data_type, event_type, user_id, payload) VALUES (%s, %s, %s, %s, %s, %s)",
		s.table,
		Escape(&stored.ID),
		Escape(&receivedAt),
		Escape(&dataType),
		Escape(&eventType),
		Escape(event.UserID),
		Escape(&payloadText),
	)
	if _, err := s.client.Execute(ctx, insert); err != nil {
		return domain.StoredEvent{}, fmt.Errorf("insert event: %w", err)
	}
	s.hub.Publish(stored)
	return stored, nil
}

func (s *EventStore) GetRecent(ctx context.Context, limit int) ([]domain.StoredEvent, error) {
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []domain.StoredEvent{}, nil
	}
	query := fmt.Sprintf("SELECT id, received_at, payload FROM %s ORDER BY received_at DESC LIMIT %d", s.table, limit)
	return s.selectEvents(ctx, query)
}

func (s *EventStore) GetByDataType(ctx context.Context, dataType domain.DataType, limit int) ([]domain.StoredEvent, error) {
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []domain.StoredEvent{}, nil
	}
	value := string(dataType)
	query := fmt.Sprintf(
		"SELECT id, received_at, payload FROM %s WHERE data_type = %s ORDER BY received_at DESC LIMIT %d",
		s.table, Escape(&value), limit,
	)
	return s.selectEvents(ctx, query)
}

func (s *EventStore) Count(ctx context.Context) (int64, error) {
	if err := s.ensureTable(ctx); err != nil {
		return 0, err
	}
	rows, err := s.client.Execute(ctx, fmt.Sprintf("SELECT COUNT(1) FROM %s", s.table))
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 || rows[0][0] == nil {
		return 0, nil
	}
	count, err := strconv.ParseInt(*rows[0][0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse count %q: %w", *rows[0][0], err)
	}
	return count, nil
}

func (s *EventStore) Clear(ctx context.Context) (int64, error) {
	total, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := s.client.Execute(ctx, fmt.Sprintf("DELETE FROM %s WHERE true", s.table)); err != nil {
		return 0, fmt.Errorf("clear events: %w", err)
	}
	return total, nil
}

// PruneOlderThan deletes old rows. The statement API does not report affected
// rows inline, so the result is always 0.
func (s *EventStore) PruneOlderThan(ctx context.Context, days int) (int64, error) {
	if err := s.ensureTable(ctx); err != nil {
		return 0, err
	}
	cutoff := s.now().UTC().Add(-time.Duration(days) * 24 * time.Hour).Format(time.RFC3339Nano)
	statement := fmt.Sprintf("DELETE FROM %s WHERE received_at < %s", s.table, Escape(&cutoff))
	if _, err := s.client.Execute(ctx, statement); err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return 0, nil
}

func (s *EventStore) Subscribe(ctx context.Context) *hub.Subscription {
	return s.hub.Subscribe(ctx)
}

func (s *EventStore) Close() error {
	return nil
}

func (s *EventStore) selectEvents(ctx context.Context, query string) ([]domain.StoredEvent, error) {
	rows, err := s.client.Execute(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select events: %w", err)
	}
	out := make([]domain.StoredEvent, 0, len(rows))
	for _, row := range rows {
		if len(row) < 3 || row[0] == nil || row[2] == nil {
			continue
		}
		var event domain.WebhookEvent
		if err := json.Unmarshal([]byte(*row[2]), &event); err != nil {
			slog.WarnContext(ctx, "Skipping unreadable warehouse row", "id", *row[0], "error", err)
			continue
		}
		out = append(out, domain.StoredEvent{
			ID:         *row[0],
			ReceivedAt: s.parseReceivedAt(row[1]),
			Event:      event,
		})
	}
	return out, nil
}

func (s *EventStore) parseReceivedAt(value *string) time.Time {
	if value != nil {
		if t, err := domain.ParseTimestamp(*value); err == nil {
			return t.UTC()
		}
	}
	return s.now().UTC()
}

// Escape renders value as a SQL string literal, or NULL when absent.
func Escape(value *string) string {
	if value == nil {
		return "NULL"
	}
	return "'" + strings.ReplaceAll(*value, "'", "''") + "'"
}
