package db

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fr0stylo/ourastream/internal/db/queries"
	"github.com/fr0stylo/ourastream/internal/observability"
)

// Rolling window kept per query for percentile estimates.
const maxSamplesPerQuery = 512

const unknownQuery = "unknown"

// QueryLatency summarizes recent latencies of one sqlc query.
type QueryLatency struct {
	Name  string
	Count int
	P50   time.Duration
	P95   time.Duration
	Max   time.Duration
}

func (l QueryLatency) String() string {
	return fmt.Sprintf("%s: n=%d p50=%s p95=%s max=%s", l.Name, l.Count, l.P50, l.P95, l.Max)
}

type queryLatencyTracker struct {
	mu       sync.Mutex
	samples  map[string][]time.Duration
	duration metric.Float64Histogram
}

func newQueryLatencyTracker() *queryLatencyTracker {
	duration, _ := otel.Meter("github.com/fr0stylo/ourastream/internal/db").
		Float64Histogram("ourastream.db.query.duration", metric.WithUnit("ms"))
	return &queryLatencyTracker{samples: make(map[string][]time.Duration), duration: duration}
}

func (t *queryLatencyTracker) observe(ctx context.Context, name string, elapsed time.Duration) {
	if t.duration != nil {
		t.duration.Record(ctx, float64(elapsed.Microseconds())/1000,
			metric.WithAttributes(attribute.String("db.query_name", name)))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	window := append(t.samples[name], elapsed)
	if over := len(window) - maxSamplesPerQuery; over > 0 {
		window = window[over:]
	}
	t.samples[name] = window
}

// snapshot returns per-query stats, slowest p95 first.
func (t *queryLatencyTracker) snapshot() []QueryLatency {
	t.mu.Lock()
	stats := make([]QueryLatency, 0, len(t.samples))
	for name, window := range t.samples {
		if len(window) == 0 {
			continue
		}
		sorted := slices.Clone(window)
		slices.Sort(sorted)
		last := len(sorted) - 1
		stats = append(stats, QueryLatency{
			Name:  name,
			Count: len(sorted),
			P50:   sorted[last/2],
			P95:   sorted[int(float64(last)*0.95)],
			Max:   sorted[last],
		})
	}
	t.mu.Unlock()

	slices.SortFunc(stats, func(a, b QueryLatency) int {
		if a.P95 != b.P95 {
			if a.P95 > b.P95 {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return stats
}

// instrumentedDBTX wraps every sqlc call in a DB span and a latency sample.
type instrumentedDBTX struct {
	inner   queries.DBTX
	tracker *queryLatencyTracker
}

func newInstrumentedDBTX(inner queries.DBTX, tracker *queryLatencyTracker) queries.DBTX {
	if tracker == nil {
		return inner
	}
	return &instrumentedDBTX{inner: inner, tracker: tracker}
}

func instrument[T any](ctx context.Context, d *instrumentedDBTX, query, operation string, call func(context.Context) (T, error)) (T, error) {
	name := queryName(query)
	ctx, span := observability.StartDBSpan(ctx, "sqlite", name, operation)
	defer span.End()

	start := time.Now()
	result, err := call(ctx)
	d.tracker.observe(ctx, name, time.Since(start))
	span.RecordError(err)
	return result, err
}

func (d *instrumentedDBTX) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return instrument(ctx, d, query, "exec", func(ctx context.Context) (sql.Result, error) {
		return d.inner.ExecContext(ctx, query, args...)
	})
}

func (d *instrumentedDBTX) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return instrument(ctx, d, query, "prepare", func(ctx context.Context) (*sql.Stmt, error) {
		return d.inner.PrepareContext(ctx, query)
	})
}

func (d *instrumentedDBTX) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return instrument(ctx, d, query, "query", func(ctx context.Context) (*sql.Rows, error) {
		return d.inner.QueryContext(ctx, query, args...)
	})
}

// QueryRowContext defers errors to Scan, so the span records none.
func (d *instrumentedDBTX) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	row, _ := instrument(ctx, d, query, "query_row", func(ctx context.Context) (*sql.Row, error) {
		return d.inner.QueryRowContext(ctx, query, args...), nil
	})
	return row
}

// queryName reads the name from sqlc's leading "-- name: X :kind" comment.
func queryName(query string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(query), "\n")
	rest, ok := strings.CutPrefix(strings.TrimSpace(first), "-- name:")
	if !ok {
		return unknownQuery
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return unknownQuery
	}
	return fields[0]
}
