package eventpublisher

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

const defaultSource = "ourastream/webhookgenerator"

// BuildEventBody renders the delivery body in the shape the Oura API sends.
func BuildEventBody(event Event) ([]byte, error) {
	dataType := strings.TrimSpace(event.DataType)
	if dataType == "" {
		return nil, fmt.Errorf("data type is required")
	}
	eventType := strings.TrimSpace(event.EventType)
	if eventType == "" {
		eventType = "create"
	}
	data := event.Data
	if data == nil {
		data = map[string]any{}
	}

	payload := map[string]any{
		"data_type":  dataType,
		"event_type": eventType,
		"data":       data,
		"user_id":    nil,
		"timestamp":  nil,
	}
	if userID := strings.TrimSpace(event.UserID); userID != "" {
		payload["user_id"] = userID
	}
	if !event.Timestamp.IsZero() {
		payload["timestamp"] = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(payload)
}

// BuildCloudEventBody wraps the delivery body in a structured CloudEvent.
func BuildCloudEventBody(event Event, source string) ([]byte, error) {
	inner, err := BuildEventBody(event)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(source) == "" {
		source = defaultSource
	}

	ce := cloudevents.NewEvent()
	ce.SetID(uuid.NewString())
	ce.SetSource(source)
	ce.SetType("com.ouraring.webhook." + strings.TrimSpace(event.DataType))
	ce.SetTime(time.Now().UTC())
	if err := ce.SetData(cloudevents.ApplicationJSON, json.RawMessage(inner)); err != nil {
		return nil, fmt.Errorf("set cloud event data: %w", err)
	}
	if err := ce.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cloud event: %w", err)
	}
	return json.Marshal(ce)
}
