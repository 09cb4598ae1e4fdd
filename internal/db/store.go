package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fr0stylo/ourastream/internal/db/queries"
)

// TimestampLayout is the fixed-width UTC layout for stored timestamps.
// Lexical order of values in this layout matches time order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a stored timestamp, accepting RFC 3339 for rows written elsewhere.
func ParseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

// AddEvent inserts one event row in its own transaction.
func (c *Database) AddEvent(ctx context.Context, params queries.InsertEventParams) error {
	return c.InTx(ctx, func(q *queries.Queries) error {
		return q.InsertEvent(ctx, params)
	})
}

// ClearEvents counts then deletes every event row.
func (c *Database) ClearEvents(ctx context.Context) (int64, error) {
	total, err := c.Queries.CountEvents(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := c.Queries.DeleteAllEvents(ctx); err != nil {
		return 0, err
	}
	return total, nil
}

// PruneEventsBefore deletes events received before cutoff.
func (c *Database) PruneEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return c.Queries.DeleteEventsReceivedBefore(ctx, FormatTimestamp(cutoff))
}

// GetOAuthToken returns the singleton token row, or nil when none is stored.
func (c *Database) GetOAuthToken(ctx context.Context) (*queries.OauthToken, error) {
	row, err := c.Queries.GetOAuthToken(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
