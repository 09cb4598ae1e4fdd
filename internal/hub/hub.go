// Package hub fans newly stored events out to live subscribers.
package hub

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fr0stylo/ourastream/internal/app/domain"
)

// Hub is an in-process broadcast of stored events.
type Hub struct {
	mu         sync.RWMutex
	subs       map[*Subscription]struct{}
	maxPending int
}

// Option configures a Hub.
type Option func(*Hub)

// WithMaxPending disconnects subscribers whose undelivered queue grows past limit.
// Zero keeps queues unbounded.
func WithMaxPending(limit int) Option {
	return func(h *Hub) {
		if limit > 0 {
			h.maxPending = limit
		}
	}
}

// New constructs an empty hub.
func New(opts ...Option) *Hub {
	h := &Hub{subs: make(map[*Subscription]struct{})}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a live feed. It ends when ctx is done or Close is called.
// Only events published after Subscribe returns are delivered.
func (h *Hub) Subscribe(ctx context.Context) *Subscription {
	s := &Subscription{
		hub:    h,
		signal: make(chan struct{}, 1),
		out:    make(chan domain.StoredEvent),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	go s.pump()
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()
	return s
}

// Publish enqueues event on every registered subscription without blocking.
func (h *Hub) Publish(event domain.StoredEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs {
		if !s.push(event, h.maxPending) {
			slog.Warn("Disconnecting slow live-feed subscriber", "max_pending", h.maxPending)
			go s.Close()
		}
	}
}

// Subscribers returns the number of registered subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

// Subscription is one viewer's delivery queue.
type Subscription struct {
	hub *Hub

	mu     sync.Mutex
	queue  []domain.StoredEvent
	closed bool

	signal    chan struct{}
	out       chan domain.StoredEvent
	done      chan struct{}
	closeOnce sync.Once
}

// Events returns the feed. The channel is closed once the subscription ends.
func (s *Subscription) Events() <-chan domain.StoredEvent {
	return s.out
}

// Done is closed when the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close deregisters the subscription and discards undelivered events.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.hub.remove(s)

		s.mu.Lock()
		s.closed = true
		s.queue = nil
		s.mu.Unlock()

		close(s.done)
	})
}

func (s *Subscription) push(event domain.StoredEvent, maxPending int) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return true
	}
	s.queue = append(s.queue, event)
	overflow := maxPending > 0 && len(s.queue) > maxPending
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
	return !overflow
}

func (s *Subscription) next() (domain.StoredEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return domain.StoredEvent{}, false
	}
	event := s.queue[0]
	s.queue[0] = domain.StoredEvent{}
	s.queue = s.queue[1:]
	return event, true
}

func (s *Subscription) pump() {
	defer close(s.out)

	for {
		event, ok := s.next()
		if !ok {
			select {
			case <-s.signal:
				continue
			case <-s.done:
				return
			}
		}

		select {
		case s.out <- event:
		case <-s.done:
			return
		}
	}
}
