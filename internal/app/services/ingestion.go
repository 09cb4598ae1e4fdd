package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	cebinding "github.com/cloudevents/sdk-go/v2/binding"
	ceevent "github.com/cloudevents/sdk-go/v2/event"
	cehttp "github.com/cloudevents/sdk-go/v2/protocol/http"

	"github.com/fr0stylo/ourastream/internal/app/domain"
	"github.com/fr0stylo/ourastream/internal/app/ports"
	"github.com/fr0stylo/ourastream/internal/observability"
)

var (
	// ErrInvalidSignature indicates request signature validation failure.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrInvalidPayload indicates a body that is not a webhook event.
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrUnknownDataType indicates a data type outside the accepted set.
	ErrUnknownDataType = errors.New("unknown data type")
	// ErrIngestBusy indicates the store could not accept the event.
	ErrIngestBusy = errors.New("ingestion unavailable")
)

// IngestErrorKind classifies ingestion failures for transport-specific mapping.
type IngestErrorKind string

const (
	// IngestErrorUnknown is used when error is nil or not classified.
	IngestErrorUnknown IngestErrorKind = "unknown"
	// IngestErrorInvalidSignature indicates signature mismatch.
	IngestErrorInvalidSignature IngestErrorKind = "invalid_signature"
	// IngestErrorInvalidPayload indicates malformed event payload.
	IngestErrorInvalidPayload IngestErrorKind = "invalid_payload"
	// IngestErrorUnknownDataType indicates the data type is not accepted.
	IngestErrorUnknownDataType IngestErrorKind = "unknown_data_type"
	// IngestErrorBusy indicates a storage failure.
	IngestErrorBusy IngestErrorKind = "busy"
)

// IngestCommand is transport-agnostic webhook ingestion input.
type IngestCommand struct {
	SignatureHeader string
	Headers         http.Header
	Body            []byte
}

// WebhookIntake verifies, parses and stores pushed webhook events.
type WebhookIntake struct {
	secret    string
	store     ports.EventAdder
	forwarder ports.EventForwarder
}

// NewWebhookIntake constructs the intake. An empty secret disables signature
// checks; forwarder may be nil.
func NewWebhookIntake(secret string, store ports.EventAdder, forwarder ports.EventForwarder) *WebhookIntake {
	return &WebhookIntake{secret: secret, store: store, forwarder: forwarder}
}

// ClassifyIngestError classifies a returned ingestion error.
func ClassifyIngestError(err error) IngestErrorKind {
	switch {
	case err == nil:
		return IngestErrorUnknown
	case errors.Is(err, ErrInvalidSignature):
		return IngestErrorInvalidSignature
	case errors.Is(err, ErrUnknownDataType):
		return IngestErrorUnknownDataType
	case errors.Is(err, ErrInvalidPayload):
		return IngestErrorInvalidPayload
	case errors.Is(err, ErrIngestBusy):
		return IngestErrorBusy
	default:
		return IngestErrorUnknown
	}
}

// Ingest verifies the signature, parses the event, stores it and hands the
// stored record to the forwarder without waiting on it.
func (s *WebhookIntake) Ingest(ctx context.Context, cmd IngestCommand) (domain.StoredEvent, error) {
	if s.secret != "" && !validSignature(cmd.Body, s.secret, cmd.SignatureHeader) {
		return domain.StoredEvent{}, ErrInvalidSignature
	}

	event, err := parseIncomingEvent(ctx, cmd.Headers, cmd.Body)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownDataType) {
			return domain.StoredEvent{}, fmt.Errorf("%w: %v", ErrUnknownDataType, err)
		}
		return domain.StoredEvent{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	ctx = observability.WithDataType(ctx, string(event.DataType))
	stored, err := s.store.Add(ctx, event)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to store webhook event", "error", err)
		return domain.StoredEvent{}, fmt.Errorf("%w: %v", ErrIngestBusy, err)
	}

	ctx = observability.WithEventID(ctx, stored.ID)
	if s.forwarder != nil && !s.forwarder.Enqueue(stored) {
		slog.WarnContext(ctx, "Sink queue full; event not forwarded")
	}
	return stored, nil
}

// parseIncomingEvent accepts a bare webhook body or one wrapped in a
// CloudEvent, structured or binary.
func parseIncomingEvent(ctx context.Context, headers http.Header, body []byte) (domain.WebhookEvent, error) {
	if !isCloudEvent(headers) {
		return domain.ParseWebhookEvent(body)
	}

	req := &http.Request{
		Method: http.MethodPost,
		Header: headers.Clone(),
		Body:   io.NopCloser(bytes.NewReader(body)),
	}
	message := cehttp.NewMessageFromHttpRequest(req)
	defer func() {
		_ = message.Finish(nil)
	}()

	cloudEvent, err := cebinding.ToEvent(ctx, message)
	if err != nil {
		return domain.WebhookEvent{}, err
	}

	raw, err := cloudEventData(cloudEvent)
	if err != nil {
		return domain.WebhookEvent{}, err
	}
	return domain.ParseWebhookEvent(raw)
}

func isCloudEvent(headers http.Header) bool {
	if headers == nil {
		return false
	}
	if headers.Get("Ce-Specversion") != "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(headers.Get("Content-Type")), "application/cloudevents+json")
}

func cloudEventData(event *ceevent.Event) ([]byte, error) {
	if event == nil {
		return nil, errors.New("cloud event is nil")
	}
	raw := json.RawMessage{}
	if err := event.DataAs(&raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("cloud event data is empty")
	}
	return raw, nil
}

func validSignature(body []byte, secret, signature string) bool {
	signature = strings.ToLower(strings.TrimSpace(signature))
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignBody returns the hex HMAC-SHA256 of body under secret.
func SignBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
