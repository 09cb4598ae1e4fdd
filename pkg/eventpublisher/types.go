package eventpublisher

import (
	"net/http"
	"time"
)

// Client posts signed webhook deliveries to an ourastream instance.
type Client struct {
	Endpoint   string
	Secret     string
	Timeout    time.Duration
	HTTPClient *http.Client
	// CloudEvents wraps each delivery in a structured CloudEvent.
	CloudEvents bool
	Source      string
}

// Event is one webhook delivery. Empty EventType means create.
type Event struct {
	DataType  string
	EventType string
	UserID    string
	Timestamp time.Time
	Data      map[string]any
}

// Receipt is the server acknowledgement.
type Receipt struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id"`
	DataType  string `json:"data_type"`
	EventType string `json:"event_type"`
}
