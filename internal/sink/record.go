// Package sink forwards stored events to a streaming ingest endpoint.
package sink

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/fr0stylo/ourastream/internal/app/domain"
)

// Record is the row shape written to the sink table.
type Record struct {
	ID         string
	ReceivedAt int64
	DataType   string
	EventType  string
	UserID     string
	Payload    string
}

// NewRecord maps a stored event. ReceivedAt is microseconds since the epoch.
func NewRecord(event domain.StoredEvent) (Record, error) {
	payload, err := json.Marshal(event.Event)
	if err != nil {
		return Record{}, fmt.Errorf("encode payload: %w", err)
	}
	userID := ""
	if event.Event.UserID != nil {
		userID = *event.Event.UserID
	}
	return Record{
		ID:         event.ID,
		ReceivedAt: event.ReceivedAt.UnixMicro(),
		DataType:   string(event.Event.DataType),
		EventType:  string(event.Event.EventType),
		UserID:     userID,
		Payload:    string(payload),
	}, nil
}

// Struct encodes the record for the wire. Microsecond timestamps fit a
// float64 mantissa exactly.
func (r Record) Struct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":          structpb.NewStringValue(r.ID),
		"received_at": structpb.NewNumberValue(float64(r.ReceivedAt)),
		"data_type":   structpb.NewStringValue(r.DataType),
		"event_type":  structpb.NewStringValue(r.EventType),
		"user_id":     structpb.NewStringValue(r.UserID),
		"payload":     structpb.NewStringValue(r.Payload),
	}}
}
