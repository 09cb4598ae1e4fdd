package oura

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/fr0stylo/ourastream/internal/app/domain"
	"github.com/fr0stylo/ourastream/internal/observability"
)

const maxCollectionPages = 20

// ErrUpstream is wrapped around non-2xx API responses.
var ErrUpstream = errors.New("oura api error")

// APIError carries the upstream status and body.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("oura api status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return ErrUpstream
}

// APIClient reads usercollection endpoints under a shared rate limit and a
// circuit breaker.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

func NewAPIClient(baseURL string, ratePerSecond float64, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = observability.NewHTTPClient(30 * time.Second)
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	burst := int(ratePerSecond)
	if burst < 1 {
		burst = 1
	}
	return &APIClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "oura-api",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				var apiErr *APIError
				if errors.As(err, &apiErr) {
					return apiErr.StatusCode < 500
				}
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				slog.Info("Circuit breaker state changed",
					"name", name,
					"from", from.String(),
					"to", to.String())
			},
		}),
	}
}

// CollectionParams returns the query window for dataType. Daily summaries
// take dates, timestamped collections take datetimes and ring configuration
// takes no window.
func CollectionParams(dataType domain.DataType, since, until time.Time) url.Values {
	params := url.Values{}
	switch {
	case dataType.IsStatic():
	case dataType.IsDaily():
		params.Set("start_date", since.Format(time.DateOnly))
		params.Set("end_date", until.Format(time.DateOnly))
	default:
		params.Set("start_datetime", since.Format(time.RFC3339))
		params.Set("end_datetime", until.Format(time.RFC3339))
	}
	return params
}

type collectionPage struct {
	Data      []map[string]any `json:"data"`
	NextToken *string          `json:"next_token"`
}

// FetchCollection returns every record of dataType within [since, until],
// following next_token pagination.
func (c *APIClient) FetchCollection(ctx context.Context, accessToken string, dataType domain.DataType, since, until time.Time) ([]map[string]any, error) {
	ctx, span := observability.StartSpan(ctx, "oura.fetch_collection")
	defer span.End()

	params := CollectionParams(dataType, since, until)
	records := make([]map[string]any, 0)
	for page := 0; page < maxCollectionPages; page++ {
		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.fetchPage(ctx, accessToken, dataType, params)
		})
		if err != nil {
			return nil, err
		}
		body := result.(collectionPage)
		records = append(records, body.Data...)
		if body.NextToken == nil || *body.NextToken == "" {
			return records, nil
		}
		params.Set("next_token", *body.NextToken)
	}
	slog.WarnContext(ctx, "Stopped following collection pages", "data_type", dataType, "pages", maxCollectionPages)
	return records, nil
}

func (c *APIClient) fetchPage(ctx context.Context, accessToken string, dataType domain.DataType, params url.Values) (collectionPage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return collectionPage{}, err
	}
	endpoint := c.baseURL + "/usercollection/" + url.PathEscape(string(dataType))
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return collectionPage{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return collectionPage{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return collectionPage{}, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}
	var page collectionPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return collectionPage{}, fmt.Errorf("decode %s collection: %w", dataType, err)
	}
	return page, nil
}
