// Package poller pulls usercollection data on an interval and stores it as events.
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/fr0stylo/ourastream/internal/app/domain"
	"github.com/fr0stylo/ourastream/internal/app/ports"
	"github.com/fr0stylo/ourastream/internal/observability"
)

// TokenProvider yields a usable credential, refreshing it when needed.
type TokenProvider interface {
	EnsureFresh(ctx context.Context, bootstrapRefresh string) *domain.OAuthToken
}

// CollectionFetcher reads one data type over a window.
type CollectionFetcher interface {
	FetchCollection(ctx context.Context, accessToken string, dataType domain.DataType, since, until time.Time) ([]map[string]any, error)
}

type Config struct {
	Interval         time.Duration
	LookbackDays     int
	DataTypes        []domain.DataType
	BootstrapRefresh string
}

// Poller runs fetch cycles until its context ends.
type Poller struct {
	cfg     Config
	tokens  TokenProvider
	fetcher CollectionFetcher
	store   ports.EventAdder
	now     func() time.Time
}

func New(cfg Config, tokens TokenProvider, fetcher CollectionFetcher, store ports.EventAdder) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.LookbackDays < 0 {
		cfg.LookbackDays = 1
	}
	return &Poller{cfg: cfg, tokens: tokens, fetcher: fetcher, store: store, now: time.Now}
}

// ParseDataTypes keeps the known names and logs the rest.
func ParseDataTypes(names []string) []domain.DataType {
	out := make([]domain.DataType, 0, len(names))
	for _, name := range names {
		dataType, err := domain.ParseDataType(name)
		if err != nil {
			slog.Warn("Ignoring unknown poll data type", "data_type", name)
			continue
		}
		out = append(out, dataType)
	}
	return out
}

// Run polls immediately and then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Poller started",
		"interval", p.cfg.Interval,
		"lookback_days", p.cfg.LookbackDays,
		"data_types", p.cfg.DataTypes,
	)
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		p.RunOnce(ctx)
		select {
		case <-ctx.Done():
			slog.Info("Poller stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce executes one cycle and returns the number of events stored.
func (p *Poller) RunOnce(ctx context.Context) int {
	ctx, span := observability.StartSpan(ctx, "poller.cycle")
	defer span.End()

	token := p.tokens.EnsureFresh(ctx, p.cfg.BootstrapRefresh)
	if token == nil || token.AccessToken == "" {
		slog.DebugContext(ctx, "Poller has no access token; skipping cycle")
		return 0
	}

	// Daily types only use the calendar dates of this window.
	until := p.now().UTC()
	since := until.AddDate(0, 0, -p.cfg.LookbackDays)

	stored := 0
	for _, dataType := range p.cfg.DataTypes {
		if ctx.Err() != nil {
			return stored
		}
		if p.pollType(ctx, token.AccessToken, dataType, since, until) {
			stored++
		}
	}
	return stored
}

func (p *Poller) pollType(ctx context.Context, accessToken string, dataType domain.DataType, since, until time.Time) bool {
	ctx = observability.WithDataType(ctx, string(dataType))
	records, err := p.fetcher.FetchCollection(ctx, accessToken, dataType, since, until)
	if err != nil {
		slog.WarnContext(ctx, "Poll failed", "error", err)
		return false
	}
	if len(records) == 0 {
		return false
	}

	list := make([]any, 0, len(records))
	for _, record := range records {
		list = append(list, record)
	}
	event := domain.WebhookEvent{
		DataType:  dataType,
		EventType: domain.EventTypeCreate,
		Data: map[string]any{
			"source":  "poller",
			"count":   len(records),
			"records": list,
			"range":   []any{since.Format(time.DateOnly), until.Format(time.DateOnly)},
		},
	}
	if _, err := p.store.Add(ctx, event); err != nil {
		slog.WarnContext(ctx, "Failed to store polled records", "error", err)
		return false
	}
	slog.InfoContext(ctx, "Stored polled records", "count", len(records))
	return true
}
