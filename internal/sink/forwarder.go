package sink

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/fr0stylo/ourastream/internal/app/domain"
	"github.com/fr0stylo/ourastream/internal/observability"
)

const (
	defaultMaxAttempts = 3
	defaultBaseBackoff    = time.Second
	defaultAttemptTimeout = 30 * time.Second
)

var (
	errNoStream   = errors.New("sink stream unavailable")
	errAckTimeout = errors.New("sink acknowledgement timed out")
)

// Ack resolves when the sink acknowledges one submitted record.
type Ack interface {
	Wait(ctx context.Context) error
}

// Stream is one open submit/acknowledge connection.
type Stream interface {
	Ingest(ctx context.Context, record Record) (Ack, error)
	Close() error
}

// StreamOpener opens a fresh stream.
type StreamOpener func(ctx context.Context) (Stream, error)

// Forwarder submits records with bounded retries and reopens the stream when
// a failure says the connection is gone. A Forwarder without an opener is a
// no-op.
type Forwarder struct {
	open        StreamOpener
	maxAttempts uint64
	baseBackoff time.Duration
	timeout     time.Duration
	onWait      func(time.Duration)
	metrics     sinkMetrics

	mu     sync.Mutex
	stream Stream
}

type Option func(*Forwarder)

// WithMaxAttempts bounds submissions per record.
func WithMaxAttempts(attempts int) Option {
	return func(f *Forwarder) {
		if attempts > 0 {
			f.maxAttempts = uint64(attempts)
		}
	}
}

// WithBaseBackoff sets the first wait; later waits double.
func WithBaseBackoff(base time.Duration) Option {
	return func(f *Forwarder) {
		if base > 0 {
			f.baseBackoff = base
		}
	}
}

// WithAttemptTimeout bounds one submit plus its acknowledgement.
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(f *Forwarder) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// WithWaitHook observes every backoff wait.
func WithWaitHook(hook func(time.Duration)) Option {
	return func(f *Forwarder) {
		f.onWait = hook
	}
}

func NewForwarder(open StreamOpener, opts ...Option) *Forwarder {
	f := &Forwarder{
		open:        open,
		maxAttempts: defaultMaxAttempts,
		baseBackoff: defaultBaseBackoff,
		timeout:     defaultAttemptTimeout,
		metrics:     newSinkMetrics(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Enabled reports whether records are forwarded at all.
func (f *Forwarder) Enabled() bool {
	return f != nil && f.open != nil
}

// Start opens the stream eagerly. A failure is logged and the stream is
// opened again on the next record.
func (f *Forwarder) Start(ctx context.Context) {
	if !f.Enabled() {
		slog.InfoContext(ctx, "Sink disabled (credentials not configured)")
		return
	}
	if _, err := f.currentStream(ctx); err != nil {
		slog.WarnContext(ctx, "Sink stream open failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "Sink stream opened")
}

// Ingest forwards one event and reports whether it was acknowledged.
func (f *Forwarder) Ingest(ctx context.Context, event domain.StoredEvent) bool {
	if !f.Enabled() {
		return false
	}
	dataType := string(event.Event.DataType)
	ctx = observability.WithEventID(observability.WithDataType(ctx, dataType), event.ID)
	record, err := NewRecord(event)
	if err != nil {
		slog.ErrorContext(ctx, "Sink record mapping failed", "error", err)
		f.metrics.recordDropped(ctx, dataType, "mapping")
		return false
	}

	attempt := 0
	err = retry.Do(ctx, f.backoff(), func(ctx context.Context) error {
		attempt++
		f.metrics.recordAttempt(ctx, dataType)
		if err := f.submit(ctx, record); err != nil {
			slog.WarnContext(ctx, "Sink ingest attempt failed",
				"attempt", attempt,
				"max_attempts", f.maxAttempts,
				"error", err,
			)
			if streamBroken(err) {
				f.reopen(ctx)
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "Sink dropped event after retries", "attempts", attempt, "error", err)
		f.metrics.recordDropped(ctx, dataType, "exhausted")
		return false
	}
	f.metrics.recordForwarded(ctx, dataType)
	return true
}

// Close releases the current stream.
func (f *Forwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stream == nil {
		return nil
	}
	err := f.stream.Close()
	f.stream = nil
	return err
}

func (f *Forwarder) backoff() retry.Backoff {
	b := retry.WithMaxRetries(f.maxAttempts-1, retry.NewExponential(f.baseBackoff))
	if f.onWait == nil {
		return b
	}
	return retry.BackoffFunc(func() (time.Duration, bool) {
		next, stop := b.Next()
		if !stop {
			f.onWait(next)
		}
		return next, stop
	})
}

func (f *Forwarder) submit(ctx context.Context, record Record) error {
	stream, err := f.currentStream(ctx)
	if err != nil {
		return err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	ack, err := stream.Ingest(attemptCtx, record)
	if err == nil {
		err = ack.Wait(attemptCtx)
	}
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return errors.Join(errAckTimeout, err)
	}
	return err
}

func (f *Forwarder) currentStream(ctx context.Context) (Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stream != nil {
		return f.stream, nil
	}
	stream, err := f.open(ctx)
	if err != nil {
		return nil, errors.Join(errNoStream, err)
	}
	f.stream = stream
	return stream, nil
}

func (f *Forwarder) reopen(ctx context.Context) {
	f.mu.Lock()
	old := f.stream
	f.stream = nil
	f.mu.Unlock()
	if old != nil {
		if err := old.Close(); err != nil {
			slog.DebugContext(ctx, "Sink stream close failed", "error", err)
		}
	}
	f.metrics.recordReopen(ctx)
	if _, err := f.currentStream(ctx); err != nil {
		slog.WarnContext(ctx, "Sink stream reopen failed", "error", err)
	}
}

func streamBroken(err error) bool {
	if errors.Is(err, errNoStream) || errors.Is(err, errAckTimeout) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "closed") ||
		strings.Contains(msg, "connection") ||
		strings.Contains(msg, "unavailable")
}
