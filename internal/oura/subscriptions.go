package oura

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fr0stylo/ourastream/internal/observability"
)

// SubscriptionRequest is the body for creating a webhook subscription.
type SubscriptionRequest struct {
	CallbackURL       string `json:"callback_url"`
	VerificationToken string `json:"verification_token"`
	DataType          string `json:"data_type"`
	EventType         string `json:"event_type"`
}

// UpstreamResponse is a raw reply from the subscription API.
type UpstreamResponse struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r UpstreamResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON returns the body decoded as JSON, or as a string when it is not JSON.
func (r UpstreamResponse) JSON() any {
	var out any
	if err := json.Unmarshal(r.Body, &out); err != nil {
		return string(r.Body)
	}
	return out
}

// SubscriptionsClient manages webhook subscriptions with client credentials
// headers alongside the user's bearer token.
type SubscriptionsClient struct {
	endpoint     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

func NewSubscriptionsClient(apiBaseURL, clientID, clientSecret string, httpClient *http.Client) *SubscriptionsClient {
	if httpClient == nil {
		httpClient = observability.NewHTTPClient(30 * time.Second)
	}
	return &SubscriptionsClient{
		endpoint:     strings.TrimRight(strings.TrimSpace(apiBaseURL), "/") + "/webhook/subscription",
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
	}
}

func (c *SubscriptionsClient) List(ctx context.Context, accessToken string) (UpstreamResponse, error) {
	return c.do(ctx, http.MethodGet, c.endpoint, accessToken, nil)
}

func (c *SubscriptionsClient) Create(ctx context.Context, accessToken string, sub SubscriptionRequest) (UpstreamResponse, error) {
	if sub.EventType == "" {
		sub.EventType = "create"
	}
	raw, err := json.Marshal(sub)
	if err != nil {
		return UpstreamResponse{}, err
	}
	return c.do(ctx, http.MethodPost, c.endpoint, accessToken, raw)
}

func (c *SubscriptionsClient) Delete(ctx context.Context, accessToken, id string) (UpstreamResponse, error) {
	return c.do(ctx, http.MethodDelete, c.endpoint+"/"+url.PathEscape(id), accessToken, nil)
}

func (c *SubscriptionsClient) do(ctx context.Context, method, endpoint, accessToken string, body []byte) (UpstreamResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return UpstreamResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-client-secret", c.clientSecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UpstreamResponse{}, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return UpstreamResponse{}, err
	}
	return UpstreamResponse{StatusCode: resp.StatusCode, Body: payload}, nil
}
