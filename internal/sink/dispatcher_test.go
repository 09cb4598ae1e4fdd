package sink

import (
	"context"
	"testing"
	"time"
)

func TestDispatcherForwardsQueuedEvents(t *testing.T) {
	stream := &fakeStream{}
	open, _ := openerFor(stream)
	d := NewDispatcher(NewForwarder(open), 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	if !d.Enqueue(sampleEvent()) {
		t.Fatal("expected enqueue to succeed")
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(stream.recorded()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for forwarded record")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
	if !stream.closed {
		t.Fatal("expected stream to be closed on shutdown")
	}
}

func TestDispatcherEnqueueDoesNotBlockWhenFull(t *testing.T) {
	open, _ := openerFor(&fakeStream{})
	d := NewDispatcher(NewForwarder(open), 1)

	if !d.Enqueue(sampleEvent()) {
		t.Fatal("expected first enqueue to succeed")
	}
	if d.Enqueue(sampleEvent()) {
		t.Fatal("expected enqueue on a full queue to report false")
	}
}

func TestDispatcherDisabled(t *testing.T) {
	d := NewDispatcher(NewForwarder(nil), 0)
	if d.Enqueue(sampleEvent()) {
		t.Fatal("expected disabled dispatcher to refuse events")
	}
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
}
