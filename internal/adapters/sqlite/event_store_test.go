package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fr0stylo/ourastream/internal/app/domain"
	"github.com/fr0stylo/ourastream/internal/db"
	"github.com/fr0stylo/ourastream/internal/hub"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func openTestDatabase(t *testing.T) *db.Database {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "events-test"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func sleepEvent(score float64) domain.WebhookEvent {
	return domain.WebhookEvent{
		DataType:  domain.DataTypeDailySleep,
		EventType: domain.EventTypeCreate,
		Data:      map[string]any{"score": score},
	}
}

func TestEventStoreAddPublishesAfterCommit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := hub.New()
	store := NewEventStore(openTestDatabase(t), h)

	sub := store.Subscribe(ctx)
	defer sub.Close()

	stored, err := store.Add(ctx, sleepEvent(85))
	if err != nil {
		t.Fatalf("add event: %v", err)
	}
	if stored.ID == "" || stored.ReceivedAt.IsZero() {
		t.Fatalf("expected id and received_at, got %+v", stored)
	}

	select {
	case got := <-sub.Events():
		if got.ID != stored.ID {
			t.Fatalf("expected published %s, got %s", stored.ID, got.ID)
		}
		count, err := store.Count(ctx)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected published event to be durable, count=%d", count)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected live notification")
	}
}

func TestEventStoreRecentOrderAndFilter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	store := NewEventStore(openTestDatabase(t), nil, WithClock(clock.Now))

	userID := "user-1"
	first, err := store.Add(ctx, sleepEvent(70))
	if err != nil {
		t.Fatalf("add first: %v", err)
	}
	clock.Advance(time.Second)
	second, err := store.Add(ctx, domain.WebhookEvent{
		DataType:  domain.DataTypeWorkout,
		EventType: domain.EventTypeUpdate,
		Data:      map[string]any{"activity": "run"},
		UserID:    &userID,
	})
	if err != nil {
		t.Fatalf("add second: %v", err)
	}
	clock.Advance(time.Second)
	third, err := store.Add(ctx, sleepEvent(90))
	if err != nil {
		t.Fatalf("add third: %v", err)
	}

	recent, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 || recent[0].ID != third.ID || recent[1].ID != second.ID || recent[2].ID != first.ID {
		t.Fatalf("unexpected order: %+v", recent)
	}
	if recent[1].Event.UserID == nil || *recent[1].Event.UserID != userID {
		t.Fatalf("expected user id round trip, got %+v", recent[1].Event)
	}
	if !recent[0].ReceivedAt.Equal(third.ReceivedAt) {
		t.Fatalf("expected received_at %s, got %s", third.ReceivedAt, recent[0].ReceivedAt)
	}

	limited, err := store.GetRecent(ctx, 2)
	if err != nil {
		t.Fatalf("recent limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 events, got %d", len(limited))
	}

	sleeps, err := store.GetByDataType(ctx, domain.DataTypeDailySleep, 10)
	if err != nil {
		t.Fatalf("by data type: %v", err)
	}
	if len(sleeps) != 2 || sleeps[0].ID != third.ID {
		t.Fatalf("unexpected filtered events: %+v", sleeps)
	}
	if score, _ := sleeps[0].Event.Data["score"].(float64); score != 90 {
		t.Fatalf("expected payload round trip, got %+v", sleeps[0].Event.Data)
	}

	none, err := store.GetRecent(ctx, 0)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty result for zero limit, got %v %v", none, err)
	}
}

func TestEventStoreClearAndPrune(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewEventStore(openTestDatabase(t), nil, WithClock(clock.Now))

	if _, err := store.Add(ctx, sleepEvent(60)); err != nil {
		t.Fatalf("add old: %v", err)
	}
	clock.Advance(40 * 24 * time.Hour)
	if _, err := store.Add(ctx, sleepEvent(80)); err != nil {
		t.Fatalf("add new: %v", err)
	}

	deleted, err := store.PruneOlderThan(ctx, 30)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 pruned event, got %d", deleted)
	}

	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("expected 1 cleared event, got %d", cleared)
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty store, got %d", count)
	}
}

func TestOpenEventStoreOwnsDatabase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "owned")
	store, err := OpenEventStore(path, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.Add(ctx, sleepEvent(75)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenEventStore(path, nil)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	count, err := reopened.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected persisted event, got %d", count)
	}
}
