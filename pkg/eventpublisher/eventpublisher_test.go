package eventpublisher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBuildEventBodyMatchesWebhookShape(t *testing.T) {
	body, err := BuildEventBody(Event{
		DataType:  "daily_sleep",
		UserID:    "u-1",
		Timestamp: time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC),
		Data:      map[string]any{"score": 80},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if payload["data_type"] != "daily_sleep" || payload["event_type"] != "create" || payload["user_id"] != "u-1" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if payload["timestamp"] != "2026-03-01T07:00:00Z" {
		t.Fatalf("unexpected timestamp %v", payload["timestamp"])
	}
}

func TestBuildEventBodyKeepsAbsentOptionalsNull(t *testing.T) {
	body, err := BuildEventBody(Event{DataType: "workout", EventType: "delete"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if value, ok := payload["user_id"]; !ok || value != nil {
		t.Fatalf("expected null user_id, got %v", payload)
	}
	if _, err := BuildEventBody(Event{}); err == nil {
		t.Fatal("expected missing data type to fail")
	}
}

func TestBuildCloudEventBodyWrapsDelivery(t *testing.T) {
	body, err := BuildCloudEventBody(Event{DataType: "sleep"}, "tests/source")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if envelope["specversion"] != "1.0" || envelope["type"] != "com.ouraring.webhook.sleep" || envelope["source"] != "tests/source" {
		t.Fatalf("unexpected envelope %v", envelope)
	}
	data, ok := envelope["data"].(map[string]any)
	if !ok || data["data_type"] != "sleep" {
		t.Fatalf("unexpected envelope data %v", envelope["data"])
	}
}

func TestPublishSignsBody(t *testing.T) {
	var gotSignature, gotPath, gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSignature = r.Header.Get(SignatureHeader)
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"received","event_id":"evt-1","data_type":"sleep","event_type":"create"}`))
	}))
	defer srv.Close()

	client := Client{Endpoint: srv.URL, Secret: "secret"}
	receipt, err := client.Publish(context.Background(), Event{DataType: "sleep"})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if receipt.EventID != "evt-1" || receipt.Status != "received" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if gotPath != "/webhooks" || gotContentType != "application/json" {
		t.Fatalf("unexpected request path=%s content-type=%s", gotPath, gotContentType)
	}
	if gotSignature != Sign(gotBody, "secret") {
		t.Fatalf("signature does not cover the body")
	}
}

func TestPublishCloudEventContentType(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{"status":"received"}`))
	}))
	defer srv.Close()

	client := Client{Endpoint: srv.URL, CloudEvents: true}
	if _, err := client.Publish(context.Background(), Event{DataType: "tag"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if gotContentType != "application/cloudevents+json" {
		t.Fatalf("unexpected content type %q", gotContentType)
	}
}

func TestPublishReportsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := Client{Endpoint: srv.URL, Secret: "wrong"}
	_, err := client.Publish(context.Background(), Event{DataType: "sleep"})
	if err == nil || !strings.Contains(err.Error(), "invalid signature") {
		t.Fatalf("expected rejection error, got %v", err)
	}
}
