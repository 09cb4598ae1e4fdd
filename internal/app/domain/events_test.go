package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseWebhookEventAcceptsMinimalBody(t *testing.T) {
	event, err := ParseWebhookEvent([]byte(`{"data_type":"daily_sleep","event_type":"create"}`))
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if event.DataType != DataTypeDailySleep || event.EventType != EventTypeCreate {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Data != nil || event.UserID != nil || event.Timestamp != nil {
		t.Fatalf("expected optional fields to be absent, got %+v", event)
	}
}

func TestParseWebhookEventAcceptsRelaxedTimestamps(t *testing.T) {
	want := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	for _, raw := range []string{
		"2026-03-01T08:30:00Z",
		"2026-03-01T08:30:00",
		"2026-03-01 08:30:00",
		"2026-03-01T10:30:00+02:00",
	} {
		body := `{"data_type":"sleep","event_type":"update","timestamp":"` + raw + `"}`
		event, err := ParseWebhookEvent([]byte(body))
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if event.Timestamp == nil || !event.Timestamp.Equal(want) {
			t.Fatalf("%q: unexpected timestamp %v", raw, event.Timestamp)
		}
	}

	if _, err := ParseWebhookEvent([]byte(`{"data_type":"sleep","event_type":"update","timestamp":"yesterday"}`)); !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("expected malformed event for bad timestamp, got %v", err)
	}
}

func TestParseWebhookEventRejectsUnknownDataType(t *testing.T) {
	_, err := ParseWebhookEvent([]byte(`{"data_type":"heartrate_v9","event_type":"create"}`))
	if !errors.Is(err, ErrUnknownDataType) {
		t.Fatalf("expected ErrUnknownDataType, got %v", err)
	}
}

func TestParseWebhookEventRejectsUnknownEventType(t *testing.T) {
	_, err := ParseWebhookEvent([]byte(`{"data_type":"sleep","event_type":"upsert"}`))
	if !errors.Is(err, ErrUnknownEventType) {
		t.Fatalf("expected ErrUnknownEventType, got %v", err)
	}
}

func TestParseWebhookEventRejectsMalformedJSON(t *testing.T) {
	for _, body := range []string{"", "[]", `{"data_type":`, "null"} {
		if _, err := ParseWebhookEvent([]byte(body)); !errors.Is(err, ErrMalformedEvent) {
			t.Fatalf("body %q: expected ErrMalformedEvent, got %v", body, err)
		}
	}
}

func TestDataTypeClassification(t *testing.T) {
	if len(DataTypes()) != 14 {
		t.Fatalf("expected 14 data types, got %d", len(DataTypes()))
	}
	if !DataTypeDailyReadiness.IsDaily() || !DataTypeSleepTime.IsDaily() {
		t.Fatal("expected daily aggregates to be classified as daily")
	}
	if DataTypeWorkout.IsDaily() || DataTypeWorkout.IsStatic() {
		t.Fatal("workout is a document type")
	}
	if !DataTypeRingConfiguration.IsStatic() {
		t.Fatal("ring_configuration is static")
	}
	if _, err := ParseDataType(" tag "); err != nil {
		t.Fatalf("parse trimmed type: %v", err)
	}
}

func TestStoredEventJSONRoundTripPreservesFields(t *testing.T) {
	user := "user-1"
	ts := time.Date(2026, 2, 18, 7, 30, 0, 123456000, time.FixedZone("EET", 2*3600))
	stored := StoredEvent{
		ID:         "evt-1",
		ReceivedAt: time.Date(2026, 2, 18, 8, 0, 0, 987654000, time.UTC),
		Event: WebhookEvent{
			DataType:  DataTypeWorkout,
			EventType: EventTypeUpdate,
			Data:      map[string]any{"score": float64(81), "nested": map[string]any{"a": "b"}},
			UserID:    &user,
			Timestamp: &ts,
		},
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded StoredEvent
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.ID != stored.ID || !decoded.ReceivedAt.Equal(stored.ReceivedAt) {
		t.Fatalf("identity mismatch: %+v", decoded)
	}
	if decoded.Event.DataType != stored.Event.DataType || decoded.Event.EventType != stored.Event.EventType {
		t.Fatalf("enum mismatch: %+v", decoded.Event)
	}
	if decoded.Event.UserID == nil || *decoded.Event.UserID != user {
		t.Fatalf("user mismatch: %+v", decoded.Event.UserID)
	}
	if decoded.Event.Timestamp == nil || !decoded.Event.Timestamp.Equal(ts) {
		t.Fatalf("timestamp mismatch: %v", decoded.Event.Timestamp)
	}
	if decoded.Event.Data["score"] != float64(81) {
		t.Fatalf("data mismatch: %#v", decoded.Event.Data)
	}
}

func TestOAuthTokenExpiry(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expires := int64(60)
	token := OAuthToken{AccessToken: "a", CreatedAt: created, ExpiresIn: &expires}

	if token.IsExpired(created.Add(59 * time.Second)) {
		t.Fatal("token should still be valid")
	}
	if !token.IsExpired(created.Add(60 * time.Second)) {
		t.Fatal("token should expire exactly at expires_in")
	}

	token.ExpiresIn = nil
	if token.IsExpired(created.Add(365 * 24 * time.Hour)) {
		t.Fatal("token without expires_in never expires")
	}
}
