package eventpublisher

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SignatureHeader carries the hex HMAC-SHA256 of the body.
const SignatureHeader = "X-Oura-Signature"

// Publish signs and posts one delivery.
func (c Client) Publish(ctx context.Context, event Event) (Receipt, error) {
	var (
		body        []byte
		contentType = "application/json"
		err         error
	)
	if c.CloudEvents {
		body, err = BuildCloudEventBody(event, c.Source)
		contentType = "application/cloudevents+json"
	} else {
		body, err = BuildEventBody(event)
	}
	if err != nil {
		return Receipt{}, err
	}
	return c.publishBody(ctx, body, contentType)
}

func (c Client) publishBody(ctx context.Context, body []byte, contentType string) (Receipt, error) {
	endpoint := strings.TrimSpace(c.Endpoint)
	if endpoint == "" {
		return Receipt{}, fmt.Errorf("endpoint is required")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	requestURL := strings.TrimRight(endpoint, "/") + "/webhooks"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("build request: %w", err)
	}
	if secret := strings.TrimSpace(c.Secret); secret != "" {
		req.Header.Set(SignatureHeader, Sign(body, secret))
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := httpClient.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= http.StatusMultipleChoices {
		return Receipt{}, fmt.Errorf("webhook rejected: status=%s body=%s", resp.Status, strings.TrimSpace(string(payload)))
	}
	var receipt Receipt
	if err := json.Unmarshal(payload, &receipt); err != nil {
		return Receipt{}, fmt.Errorf("decode receipt: %w", err)
	}
	return receipt, nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
