package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fr0stylo/ourastream/internal/app/domain"
	"github.com/fr0stylo/ourastream/internal/db"
	"github.com/fr0stylo/ourastream/internal/db/queries"
)

type eventDatabase interface {
	AddEvent(ctx context.Context, params queries.InsertEventParams) error
	ListRecentEvents(ctx context.Context, limit int64) ([]queries.Event, error)
	ListEventsByDataType(ctx context.Context, arg queries.ListEventsByDataTypeParams) ([]queries.Event, error)
	CountEvents(ctx context.Context) (int64, error)
	ClearEvents(ctx context.Context) (int64, error)
	PruneEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type tokenDatabase interface {
	GetOAuthToken(ctx context.Context) (*queries.OauthToken, error)
	UpsertOAuthToken(ctx context.Context, arg queries.UpsertOAuthTokenParams) error
	DeleteOAuthTokens(ctx context.Context) error
}

var (
	_ eventDatabase = (*db.Database)(nil)
	_ tokenDatabase = (*db.Database)(nil)
)

func mapEventRows(rows []queries.Event) ([]domain.StoredEvent, error) {
	out := make([]domain.StoredEvent, 0, len(rows))
	for _, row := range rows {
		event, err := mapEventRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, nil
}

func mapEventRow(row queries.Event) (domain.StoredEvent, error) {
	receivedAt, err := db.ParseTimestamp(row.ReceivedAt)
	if err != nil {
		return domain.StoredEvent{}, fmt.Errorf("event %s received_at: %w", row.ID, err)
	}
	var event domain.WebhookEvent
	if err := json.Unmarshal([]byte(row.Payload), &event); err != nil {
		return domain.StoredEvent{}, fmt.Errorf("event %s payload: %w", row.ID, err)
	}
	return domain.StoredEvent{ID: row.ID, ReceivedAt: receivedAt.UTC(), Event: event}, nil
}

func toNullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func toNullInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func fromNullString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	out := value.String
	return &out
}

func fromNullInt64(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	out := value.Int64
	return &out
}
