package warehouse

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fr0stylo/ourastream/internal/app/domain"
)

func strPtr(value string) *string {
	return &value
}

func TestEscape(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   *string
		want string
	}{
		{in: nil, want: "NULL"},
		{in: strPtr(""), want: "''"},
		{in: strPtr("plain"), want: "'plain'"},
		{in: strPtr("O'Brien's"), want: "'O''Brien''s'"},
	}
	for _, tc := range cases {
		if got := Escape(tc.in); got != tc.want {
			t.Fatalf("Escape(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEventStoreCreatesTableOnceUnderConcurrency(t *testing.T) {
	t.Parallel()

	exec := &recordingExecutor{respond: func(statement string) ([]Row, error) {
		if strings.HasPrefix(statement, "SELECT COUNT(1)") {
			return []Row{{strPtr("0")}}, nil
		}
		return nil, nil
	}}
	store := NewEventStore(exec, "main.default.oura_events", nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Count(context.Background()); err != nil {
				t.Errorf("count: %v", err)
			}
		}()
	}
	wg.Wait()

	ddl := 0
	for _, statement := range exec.Statements() {
		if strings.HasPrefix(statement, "CREATE TABLE IF NOT EXISTS main.default.oura_events") {
			ddl++
			if !strings.Contains(statement, "USING DELTA") {
				t.Fatalf("expected delta table ddl, got %q", statement)
			}
		}
	}
	if ddl != 1 {
		t.Fatalf("expected DDL once, got %d", ddl)
	}
}

func TestEventStoreAddEscapesAndPublishes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	exec := &recordingExecutor{}
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	store := NewEventStore(exec, "events_tbl", nil, WithClock(func() time.Time { return now }))
	sub := store.Subscribe(ctx)
	defer sub.Close()

	stored, err := store.Add(ctx, domain.WebhookEvent{
		DataType:  domain.DataTypeTag,
		EventType: domain.EventTypeCreate,
		Data:      map[string]any{"text": "it's late"},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	statements := exec.Statements()
	if len(statements) != 2 {
		t.Fatalf("expected ddl and insert, got %v", statements)
	}
	insert := statements[1]
	if !strings.HasPrefix(insert, "INSERT INTO events_tbl (id, received_at, data_type, event_type, user_id, payload) VALUES ('"+stored.ID+"'") {
		t.Fatalf("unexpected insert %q", insert)
	}
	if !strings.Contains(insert, "it''s late") || !strings.Contains(insert, ", NULL, ") {
		t.Fatalf("expected escaped payload and NULL user id, got %q", insert)
	}

	select {
	case got := <-sub.Events():
		if got.ID != stored.ID {
			t.Fatalf("expected %s, got %s", stored.ID, got.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected live notification")
	}
}

func TestEventStoreReadsRowsAndSkipsBadPayloads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	payload := `{"data_type":"daily_sleep","event_type":"create","data":{"score":85},"user_id":null,"timestamp":null}`
	exec := &recordingExecutor{respond: func(statement string) ([]Row, error) {
		if strings.HasPrefix(statement, "SELECT id, received_at, payload") {
			return []Row{
				{strPtr("evt-1"), strPtr("2026-03-01T08:00:00.000Z"), strPtr(payload)},
				{strPtr("evt-2"), strPtr("2026-03-01T07:00:00.000Z"), strPtr("not json")},
			}, nil
		}
		return nil, nil
	}}
	store := NewEventStore(exec, "t", nil)

	events, err := store.GetByDataType(ctx, domain.DataTypeDailySleep, 5)
	if err != nil {
		t.Fatalf("get by type: %v", err)
	}
	if len(events) != 1 || events[0].ID != "evt-1" || events[0].Event.DataType != domain.DataTypeDailySleep {
		t.Fatalf("unexpected events %+v", events)
	}
	if !events[0].ReceivedAt.Equal(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected received_at %s", events[0].ReceivedAt)
	}
	last := exec.Statements()[len(exec.Statements())-1]
	if !strings.Contains(last, "WHERE data_type = 'daily_sleep' ORDER BY received_at DESC LIMIT 5") {
		t.Fatalf("unexpected select %q", last)
	}
}

func TestEventStoreClearAndPrune(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	exec := &recordingExecutor{respond: func(statement string) ([]Row, error) {
		if strings.HasPrefix(statement, "SELECT COUNT(1)") {
			return []Row{{strPtr("4")}}, nil
		}
		return nil, nil
	}}
	store := NewEventStore(exec, "t", nil)

	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared != 4 {
		t.Fatalf("expected 4, got %d", cleared)
	}
	pruned, err := store.PruneOlderThan(ctx, 30)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 0 {
		t.Fatalf("expected 0 from warehouse prune, got %d", pruned)
	}
	statements := exec.Statements()
	if !strings.HasPrefix(statements[len(statements)-1], "DELETE FROM t WHERE received_at < '") {
		t.Fatalf("unexpected prune statement %q", statements[len(statements)-1])
	}
}
