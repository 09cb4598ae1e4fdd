package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	portmocks "github.com/fr0stylo/ourastream/internal/app/ports/mocks"
)

func TestRetentionPrunesImmediately(t *testing.T) {
	store := portmocks.NewMockEventPruner(t)
	pruned := make(chan int, 1)
	store.EXPECT().PruneOlderThan(mock.Anything, 30).RunAndReturn(func(_ context.Context, days int) (int64, error) {
		select {
		case pruned <- days:
		default:
		}
		return 4, nil
	}).Once()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewRetention(store, 30, time.Hour).Run(ctx) }()

	select {
	case <-pruned:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a prune before the first interval")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("retention loop did not stop after cancel")
	}
}

func TestRetentionKeepsRunningAfterFailure(t *testing.T) {
	store := portmocks.NewMockEventPruner(t)
	calls := make(chan struct{}, 1)
	store.EXPECT().PruneOlderThan(mock.Anything, 7).RunAndReturn(func(context.Context, int) (int64, error) {
		select {
		case calls <- struct{}{}:
		default:
		}
		return 0, errors.New("database is locked")
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewRetention(store, 7, 5*time.Millisecond).Run(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("expected prune %d after a failed run", i+1)
		}
	}
	cancel()
	<-done
}

func TestRetentionDisabled(t *testing.T) {
	store := portmocks.NewMockEventPruner(t)
	if err := NewRetention(store, 0, time.Hour).Run(context.Background()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := NewRetention(store, 30, 0).Run(context.Background()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
