// Package oura handles webhook deliveries from the Oura API.
package oura

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/fr0stylo/ourastream/internal/app/services"
)

const (
	// SignatureHeader carries the hex HMAC-SHA256 of the raw body.
	SignatureHeader = "X-Oura-Signature"
	maxPayloadBytes = 1 << 20
)

// ReceivedResponse acknowledges a stored delivery.
type ReceivedResponse struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id"`
	DataType  string `json:"data_type"`
	EventType string `json:"event_type"`
}

// Handler verifies and stores webhook deliveries.
type Handler struct {
	intake  *services.WebhookIntake
	metrics webhookIngestionMetrics
}

// NewHandler constructs an Oura webhook handler.
func NewHandler(intake *services.WebhookIntake) *Handler {
	return &Handler{intake: intake, metrics: newWebhookIngestionMetrics()}
}

// Handle validates and stores one delivery.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	h.metrics.recordRequest(ctx)

	body, readErr := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if readErr != nil {
		h.metrics.recordRejected(ctx, "read")
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return readErr
	}
	stored, ingestErr := h.intake.Ingest(ctx, services.IngestCommand{
		SignatureHeader: r.Header.Get(SignatureHeader),
		Headers:         r.Header,
		Body:            body,
	})
	if handled := writeIngestHTTPError(w, ingestErr); handled {
		h.metrics.recordRejected(ctx, string(services.ClassifyIngestError(ingestErr)))
		return nil
	}
	if ingestErr != nil {
		h.metrics.recordRejected(ctx, string(services.IngestErrorUnknown))
		return ingestErr
	}

	h.metrics.recordAccepted(ctx, string(stored.Event.DataType))
	return writeJSON(w, http.StatusOK, ReceivedResponse{
		Status:    "received",
		EventID:   stored.ID,
		DataType:  string(stored.Event.DataType),
		EventType: string(stored.Event.EventType),
	})
}

// HandleVerification echoes the subscription challenge.
func (h *Handler) HandleVerification(w http.ResponseWriter, r *http.Request) error {
	challenge := r.URL.Query().Get("challenge")
	return writeJSON(w, http.StatusOK, map[string]string{"challenge": challenge})
}

func writeIngestHTTPError(w http.ResponseWriter, err error) bool {
	switch services.ClassifyIngestError(err) {
	case services.IngestErrorUnknown:
		return false
	case services.IngestErrorInvalidSignature:
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return true
	case services.IngestErrorInvalidPayload:
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return true
	case services.IngestErrorUnknownDataType:
		http.Error(w, "unknown data type", http.StatusBadRequest)
		return true
	case services.IngestErrorBusy:
		http.Error(w, "event store unavailable", http.StatusServiceUnavailable)
		return true
	}

	return false
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}
