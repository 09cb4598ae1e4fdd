package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnknownDataType indicates a data_type outside the supported Oura set.
	ErrUnknownDataType = errors.New("unknown data type")
	// ErrUnknownEventType indicates an event_type other than create/update/delete.
	ErrUnknownEventType = errors.New("unknown event type")
	// ErrMalformedEvent indicates a body that is not a webhook event object.
	ErrMalformedEvent = errors.New("malformed event")
)

// DataType is one of the Oura API v2 data collections.
type DataType string

const (
	DataTypeTag               DataType = "tag"
	DataTypeEnhancedTag       DataType = "enhanced_tag"
	DataTypeWorkout           DataType = "workout"
	DataTypeSession           DataType = "session"
	DataTypeSleep             DataType = "sleep"
	DataTypeDailySleep        DataType = "daily_sleep"
	DataTypeDailyReadiness    DataType = "daily_readiness"
	DataTypeDailyActivity     DataType = "daily_activity"
	DataTypeDailySpO2         DataType = "daily_spo2"
	DataTypeSleepTime         DataType = "sleep_time"
	DataTypeRestModePeriod    DataType = "rest_mode_period"
	DataTypeRingConfiguration DataType = "ring_configuration"
	DataTypeDailyStress       DataType = "daily_stress"
	DataTypeDailyCyclePhases  DataType = "daily_cycle_phases"
)

var dataTypes = []DataType{
	DataTypeTag,
	DataTypeEnhancedTag,
	DataTypeWorkout,
	DataTypeSession,
	DataTypeSleep,
	DataTypeDailySleep,
	DataTypeDailyReadiness,
	DataTypeDailyActivity,
	DataTypeDailySpO2,
	DataTypeSleepTime,
	DataTypeRestModePeriod,
	DataTypeRingConfiguration,
	DataTypeDailyStress,
	DataTypeDailyCyclePhases,
}

// DataTypes returns every supported data type.
func DataTypes() []DataType {
	out := make([]DataType, len(dataTypes))
	copy(out, dataTypes)
	return out
}

// ParseDataType validates a raw data type value.
func ParseDataType(value string) (DataType, error) {
	candidate := DataType(strings.TrimSpace(value))
	if candidate.Valid() {
		return candidate, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDataType, value)
}

// Valid reports whether d belongs to the supported set.
func (d DataType) Valid() bool {
	for _, known := range dataTypes {
		if d == known {
			return true
		}
	}
	return false
}

// IsDaily reports whether the collection is a per-calendar-day aggregate.
func (d DataType) IsDaily() bool {
	return strings.HasPrefix(string(d), "daily_") || d == DataTypeSleepTime
}

// IsStatic reports whether the collection is device configuration rather than a timeline.
func (d DataType) IsStatic() bool {
	return d == DataTypeRingConfiguration
}

// EventType is the webhook change kind.
type EventType string

const (
	EventTypeCreate EventType = "create"
	EventTypeUpdate EventType = "update"
	EventTypeDelete EventType = "delete"
)

// Valid reports whether e is create, update or delete.
func (e EventType) Valid() bool {
	switch e {
	case EventTypeCreate, EventTypeUpdate, EventTypeDelete:
		return true
	default:
		return false
	}
}

// WebhookEvent is one event delivered by webhook or synthesized by the poller.
type WebhookEvent struct {
	DataType  DataType       `json:"data_type"`
	EventType EventType      `json:"event_type"`
	Data      map[string]any `json:"data"`
	UserID    *string        `json:"user_id"`
	Timestamp *time.Time     `json:"timestamp"`
}

// timestampLayouts are tried in order; layouts without an offset read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
}

// ParseTimestamp accepts RFC 3339 plus the offset-less and space-separated forms Oura relays send.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", value)
}

// UnmarshalJSON decodes timestamp with ParseTimestamp instead of strict RFC 3339.
func (e *WebhookEvent) UnmarshalJSON(data []byte) error {
	type plain WebhookEvent
	var raw struct {
		plain
		Timestamp *string `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = WebhookEvent(raw.plain)
	e.Timestamp = nil
	if raw.Timestamp != nil {
		t, err := ParseTimestamp(*raw.Timestamp)
		if err != nil {
			return err
		}
		e.Timestamp = &t
	}
	return nil
}

// Validate checks the closed enums.
func (e WebhookEvent) Validate() error {
	if !e.DataType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownDataType, e.DataType)
	}
	if !e.EventType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEventType, e.EventType)
	}
	return nil
}

// ParseWebhookEvent decodes and validates a raw webhook body.
func ParseWebhookEvent(body []byte) (WebhookEvent, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return WebhookEvent{}, ErrMalformedEvent
	}
	var event WebhookEvent
	if err := json.Unmarshal(trimmed, &event); err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := event.Validate(); err != nil {
		return WebhookEvent{}, err
	}
	return event, nil
}

// StoredEvent is a WebhookEvent with storage identity. It is never mutated after Add.
type StoredEvent struct {
	ID         string       `json:"id"`
	ReceivedAt time.Time    `json:"received_at"`
	Event      WebhookEvent `json:"event"`
}

// EventView is the flattened event row served by the read API.
type EventView struct {
	ID         string         `json:"id"`
	ReceivedAt time.Time      `json:"received_at"`
	DataType   DataType       `json:"data_type"`
	EventType  EventType      `json:"event_type"`
	UserID     *string        `json:"user_id"`
	Timestamp  *time.Time     `json:"timestamp"`
	Data       map[string]any `json:"data"`
}

// View flattens a stored event.
func (s StoredEvent) View() EventView {
	return EventView{
		ID:         s.ID,
		ReceivedAt: s.ReceivedAt,
		DataType:   s.Event.DataType,
		EventType:  s.Event.EventType,
		UserID:     s.Event.UserID,
		Timestamp:  s.Event.Timestamp,
		Data:       s.Event.Data,
	}
}
