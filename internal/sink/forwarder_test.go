package sink

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fr0stylo/ourastream/internal/app/domain"
)

type fakeAck struct{ err error }

func (a fakeAck) Wait(context.Context) error { return a.err }

// silentAck never resolves on its own.
type silentAck struct{}

func (silentAck) Wait(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type fakeStream struct {
	mu      sync.Mutex
	ingest  func(Record) (Ack, error)
	records []Record
	closed  bool
}

func (s *fakeStream) Ingest(_ context.Context, record Record) (Ack, error) {
	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()
	if s.ingest == nil {
		return fakeAck{}, nil
	}
	return s.ingest(record)
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *fakeStream) recorded() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

func openerFor(streams ...*fakeStream) (StreamOpener, *int) {
	opens := 0
	return func(context.Context) (Stream, error) {
		if opens >= len(streams) {
			return nil, errors.New("no stream left")
		}
		s := streams[opens]
		opens++
		return s, nil
	}, &opens
}

func sampleEvent() domain.StoredEvent {
	user := "user-1"
	return domain.StoredEvent{
		ID:         "evt-1",
		ReceivedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		Event: domain.WebhookEvent{
			DataType:  domain.DataTypeDailySleep,
			EventType: domain.EventTypeCreate,
			Data:      map[string]any{"score": 82},
			UserID:    &user,
		},
	}
}

func TestIngestRetriesUntilAcknowledged(t *testing.T) {
	calls := 0
	stream := &fakeStream{ingest: func(Record) (Ack, error) {
		calls++
		if calls <= 2 {
			return fakeAck{err: errors.New("ack timeout")}, nil
		}
		return fakeAck{}, nil
	}}
	open, opens := openerFor(stream)

	var waits []time.Duration
	f := NewForwarder(open, WithBaseBackoff(time.Millisecond), WithWaitHook(func(d time.Duration) {
		waits = append(waits, d)
	}))

	if !f.Ingest(context.Background(), sampleEvent()) {
		t.Fatal("expected ingest to succeed on the third attempt")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(waits) != 2 || waits[0] != time.Millisecond || waits[1] != 2*time.Millisecond {
		t.Fatalf("expected exponential waits 1ms,2ms, got %v", waits)
	}
	if *opens != 1 {
		t.Fatalf("expected stream to be reused, opened %d times", *opens)
	}
}

func TestIngestGivesUpWithoutPanicking(t *testing.T) {
	stream := &fakeStream{ingest: func(Record) (Ack, error) {
		return nil, errors.New("rejected")
	}}
	open, _ := openerFor(stream)
	f := NewForwarder(open, WithBaseBackoff(time.Millisecond))

	if f.Ingest(context.Background(), sampleEvent()) {
		t.Fatal("expected ingest to report failure")
	}
	if got := len(stream.recorded()); got != 3 {
		t.Fatalf("expected 3 submissions, got %d", got)
	}
}

func TestIngestReopensBrokenStream(t *testing.T) {
	broken := &fakeStream{ingest: func(Record) (Ack, error) {
		return nil, errors.New("transport: Connection reset by peer")
	}}
	healthy := &fakeStream{}
	open, opens := openerFor(broken, healthy)
	f := NewForwarder(open, WithBaseBackoff(time.Millisecond))

	if !f.Ingest(context.Background(), sampleEvent()) {
		t.Fatal("expected ingest to succeed after reopen")
	}
	if *opens != 2 {
		t.Fatalf("expected 2 stream opens, got %d", *opens)
	}
	if !broken.closed {
		t.Fatal("expected broken stream to be closed")
	}
	records := healthy.recorded()
	if len(records) != 1 || records[0].ID != "evt-1" {
		t.Fatalf("unexpected records on healthy stream: %+v", records)
	}
}

func TestIngestTimesOutUnacknowledgedRecord(t *testing.T) {
	stuck := &fakeStream{ingest: func(Record) (Ack, error) { return silentAck{}, nil }}
	healthy := &fakeStream{}
	open, opens := openerFor(stuck, healthy)
	f := NewForwarder(open, WithBaseBackoff(time.Millisecond), WithAttemptTimeout(20*time.Millisecond))

	done := make(chan bool, 1)
	go func() { done <- f.Ingest(context.Background(), sampleEvent()) }()

	select {
	case ok := <-done:
		if !ok {
			t.Fatal("expected ingest to succeed on the reopened stream")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ingest blocked on an unacknowledged record")
	}
	if *opens != 2 || !stuck.closed {
		t.Fatalf("expected stuck stream to be replaced, opens=%d closed=%v", *opens, stuck.closed)
	}
	if len(healthy.recorded()) != 1 {
		t.Fatalf("expected record on the new stream, got %d", len(healthy.recorded()))
	}
}

func TestIngestGivesUpWhenNeverAcknowledged(t *testing.T) {
	newStuck := func() *fakeStream {
		return &fakeStream{ingest: func(Record) (Ack, error) { return silentAck{}, nil }}
	}
	open, _ := openerFor(newStuck(), newStuck(), newStuck(), newStuck())
	f := NewForwarder(open, WithBaseBackoff(time.Millisecond), WithAttemptTimeout(10*time.Millisecond))

	done := make(chan bool, 1)
	go func() { done <- f.Ingest(context.Background(), sampleEvent()) }()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected ingest to report failure")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ingest did not give up")
	}
}

func TestIngestRetriesFailedOpen(t *testing.T) {
	healthy := &fakeStream{}
	attempts := 0
	open := func(context.Context) (Stream, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("endpoint unreachable")
		}
		return healthy, nil
	}
	f := NewForwarder(open, WithBaseBackoff(time.Millisecond))

	if !f.Ingest(context.Background(), sampleEvent()) {
		t.Fatal("expected ingest to succeed once the stream opens")
	}
	if len(healthy.recorded()) != 1 {
		t.Fatalf("expected one record, got %d", len(healthy.recorded()))
	}
}

func TestDisabledForwarderIsNoop(t *testing.T) {
	f := NewForwarder(nil)
	if f.Enabled() {
		t.Fatal("expected forwarder without opener to be disabled")
	}
	if f.Ingest(context.Background(), sampleEvent()) {
		t.Fatal("expected disabled forwarder to report false")
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewRecordMapsStoredEvent(t *testing.T) {
	record, err := NewRecord(sampleEvent())
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	if record.ID != "evt-1" || record.DataType != "daily_sleep" || record.EventType != "create" || record.UserID != "user-1" {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.ReceivedAt != time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC).UnixMicro() {
		t.Fatalf("expected microsecond timestamp, got %d", record.ReceivedAt)
	}

	anonymous := sampleEvent()
	anonymous.Event.UserID = nil
	record, err = NewRecord(anonymous)
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	if record.UserID != "" {
		t.Fatalf("expected empty user id, got %q", record.UserID)
	}
}
