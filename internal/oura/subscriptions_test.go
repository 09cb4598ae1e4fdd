package oura

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSubscriptionsClientSendsClientHeaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-client-id") != "cid" || r.Header.Get("x-client-secret") != "secret" || r.Header.Get("Authorization") != "Bearer at" {
			t.Errorf("missing subscription headers: %v", r.Header)
		}
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`[{"id":"sub-1"}]`))
		case http.MethodPost:
			var body SubscriptionRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			if body.EventType != "create" || body.DataType != "daily_sleep" {
				t.Errorf("unexpected body %+v", body)
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"sub-2"}`))
		case http.MethodDelete:
			if r.URL.Path != "/v2/webhook/subscription/sub-1" {
				t.Errorf("unexpected delete path %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`not found`))
		}
	}))
	defer srv.Close()

	client := NewSubscriptionsClient(srv.URL+"/v2", "cid", "secret", srv.Client())
	ctx := context.Background()

	list, err := client.List(ctx, "at")
	if err != nil || !list.OK() {
		t.Fatalf("list: %+v %v", list, err)
	}
	created, err := client.Create(ctx, "at", SubscriptionRequest{CallbackURL: "https://x/webhooks", VerificationToken: "v", DataType: "daily_sleep"})
	if err != nil || created.StatusCode != http.StatusCreated {
		t.Fatalf("create: %+v %v", created, err)
	}
	if body, ok := created.JSON().(map[string]any); !ok || body["id"] != "sub-2" {
		t.Fatalf("unexpected create body %v", created.JSON())
	}
	deleted, err := client.Delete(ctx, "at", "sub-1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.OK() || deleted.StatusCode != http.StatusNotFound || deleted.JSON() != "not found" {
		t.Fatalf("expected upstream 404 passthrough, got %+v", deleted)
	}
}
