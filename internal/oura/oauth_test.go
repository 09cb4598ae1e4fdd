package oura

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTokenServer(t *testing.T, check func(form url.Values)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		check(r.PostForm)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":86400,"refresh_token":"rt-2","scope":"personal daily"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOAuthClientAuthorizationURL(t *testing.T) {
	t.Parallel()

	client := NewOAuthClient(OAuthSettings{
		ClientID:    "cid",
		RedirectURI: "http://localhost:8000/auth/callback",
		AuthURL:     "https://cloud.ouraring.com/oauth/authorize",
	}, nil)

	parsed, err := url.Parse(client.AuthorizationURL("st-1"))
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	q := parsed.Query()
	if q.Get("client_id") != "cid" || q.Get("state") != "st-1" || q.Get("response_type") != "code" {
		t.Fatalf("unexpected query %v", q)
	}
	if q.Get("scope") != "personal daily heartrate workout session tag spo2" {
		t.Fatalf("unexpected scope %q", q.Get("scope"))
	}
	if q.Get("redirect_uri") != "http://localhost:8000/auth/callback" {
		t.Fatalf("unexpected redirect %q", q.Get("redirect_uri"))
	}
}

func TestOAuthClientExchangeCode(t *testing.T) {
	t.Parallel()

	srv := newTokenServer(t, func(form url.Values) {
		if form.Get("grant_type") != "authorization_code" || form.Get("code") != "code-1" {
			t.Errorf("unexpected grant %v", form)
		}
		if form.Get("client_id") != "cid" || form.Get("client_secret") != "secret" {
			t.Errorf("expected client credentials in body, got %v", form)
		}
	})
	client := NewOAuthClient(OAuthSettings{ClientID: "cid", ClientSecret: "secret", TokenURL: srv.URL}, srv.Client())

	token, err := client.ExchangeCode(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if token.AccessToken != "at-1" || token.ExpiresIn == nil || *token.ExpiresIn != 86400 {
		t.Fatalf("unexpected token %+v", token)
	}
	if token.Scope == nil || *token.Scope != "personal daily" || token.RefreshToken == nil || *token.RefreshToken != "rt-2" {
		t.Fatalf("unexpected token extras %+v", token)
	}
	if token.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestOAuthClientRefresh(t *testing.T) {
	t.Parallel()

	srv := newTokenServer(t, func(form url.Values) {
		if form.Get("grant_type") != "refresh_token" || form.Get("refresh_token") != "rt-1" {
			t.Errorf("unexpected refresh grant %v", form)
		}
	})
	client := NewOAuthClient(OAuthSettings{ClientID: "cid", ClientSecret: "secret", TokenURL: srv.URL}, srv.Client())

	token, err := client.Refresh(context.Background(), "rt-1")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if token.AccessToken != "at-1" {
		t.Fatalf("unexpected token %+v", token)
	}

	if _, err := client.Refresh(context.Background(), " "); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Fatalf("expected empty refresh token error, got %v", err)
	}
}
