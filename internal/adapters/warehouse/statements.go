package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fr0stylo/ourastream/internal/observability"
)

const (
	statementsPath      = "/api/2.0/sql/statements"
	defaultPollInterval = 400 * time.Millisecond

	stateSucceeded = "SUCCEEDED"
	stateFailed    = "FAILED"
	stateCanceled  = "CANCELED"
)

// ErrStatementFailed is returned when the warehouse reports FAILED or CANCELED.
var ErrStatementFailed = errors.New("statement failed")

// Row is one inline result row; SQL NULL is nil.
type Row []*string

// StatementClient runs SQL through the Databricks statement execution API.
type StatementClient struct {
	baseURL      string
	httpPath     string
	token        string
	pollInterval time.Duration
	httpClient   *http.Client
}

type StatementOption func(*StatementClient)

// WithPollInterval sets the wait between status polls.
func WithPollInterval(interval time.Duration) StatementOption {
	return func(c *StatementClient) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

func WithHTTPClient(client *http.Client) StatementOption {
	return func(c *StatementClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewStatementClient targets host, which may be a bare hostname or a full URL.
func NewStatementClient(host, httpPath, token string, opts ...StatementOption) *StatementClient {
	base := strings.TrimRight(strings.TrimSpace(host), "/")
	if base != "" && !strings.Contains(base, "://") {
		base = "https://" + base
	}
	client := &StatementClient{
		baseURL:      base,
		httpPath:     strings.TrimSpace(httpPath),
		token:        strings.TrimSpace(token),
		pollInterval: defaultPollInterval,
		httpClient:   observability.NewHTTPClient(30 * time.Second),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type statementRequest struct {
	Statement   string `json:"statement"`
	Disposition string `json:"disposition"`
}

type statementResponse struct {
	StatementID string `json:"statement_id"`
	Status      struct {
		State string `json:"state"`
		Error *struct {
			ErrorCode string `json:"error_code"`
			Message   string `json:"message"`
		} `json:"error"`
	} `json:"status"`
	Result *struct {
		DataArray []Row `json:"data_array"`
	} `json:"result"`
}

// Execute submits statement and waits for a terminal state. Rows are returned
// for statements that produce an inline result and nil otherwise.
func (c *StatementClient) Execute(ctx context.Context, statement string) ([]Row, error) {
	ctx, span := observability.StartSpan(ctx, "warehouse.execute")
	defer span.End()

	raw, err := json.Marshal(statementRequest{Statement: statement, Disposition: "INLINE"})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, statementsPath, raw)
	if err != nil {
		return nil, err
	}

	for {
		switch resp.Status.State {
		case stateSucceeded:
			if resp.Result == nil {
				return nil, nil
			}
			return resp.Result.DataArray, nil
		case stateFailed, stateCanceled:
			return nil, statementError(resp)
		}
		if resp.StatementID == "" {
			return nil, fmt.Errorf("statement pending without statement_id (state %q)", resp.Status.State)
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		resp, err = c.do(ctx, http.MethodGet, statementsPath+"/"+url.PathEscape(resp.StatementID), nil)
		if err != nil {
			return nil, err
		}
	}
}

func (c *StatementClient) do(ctx context.Context, method, path string, body []byte) (statementResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return statementResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Databricks-SQL-HTTP-Path", c.httpPath)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return statementResponse{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return statementResponse{}, fmt.Errorf("statement api %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	var parsed statementResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return statementResponse{}, fmt.Errorf("decode statement response: %w", err)
	}
	return parsed, nil
}

func statementError(resp statementResponse) error {
	if resp.Status.Error != nil && resp.Status.Error.Message != "" {
		return fmt.Errorf("%w: %s: %s", ErrStatementFailed, resp.Status.State, resp.Status.Error.Message)
	}
	return fmt.Errorf("%w: %s", ErrStatementFailed, resp.Status.State)
}
