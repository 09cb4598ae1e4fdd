package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/fr0stylo/ourastream/internal/adapters/eventstore"
	"github.com/fr0stylo/ourastream/internal/adapters/sqlite"
	"github.com/fr0stylo/ourastream/internal/adapters/warehouse"
	"github.com/fr0stylo/ourastream/internal/app/ports"
	"github.com/fr0stylo/ourastream/internal/app/services"
	"github.com/fr0stylo/ourastream/internal/config"
	"github.com/fr0stylo/ourastream/internal/db"
	"github.com/fr0stylo/ourastream/internal/hub"
	"github.com/fr0stylo/ourastream/internal/observability"
	"github.com/fr0stylo/ourastream/internal/oura"
	"github.com/fr0stylo/ourastream/internal/poller"
	"github.com/fr0stylo/ourastream/internal/server"
	"github.com/fr0stylo/ourastream/internal/server/routes"
	"github.com/fr0stylo/ourastream/internal/sink"
	ourawebhook "github.com/fr0stylo/ourastream/internal/webhooks/oura"
)

const (
	serviceName     = "ourastream"
	shutdownTimeout = 10 * time.Second
)

func Run() error {
	baseHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	log := slog.New(observability.WrapSlogHandler(baseHandler))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.IsLocalDevelopment() && cfg.Auth.SecretKey == config.LocalSecretKey {
		slog.Warn("APP_SECRET_KEY not set, using local development fallback")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, log, observability.Config{
		Enabled:           cfg.Observability.Enabled,
		OTLPEndpoint:      cfg.Observability.OTLPEndpoint,
		OTLPTraceHeaders:  cfg.Observability.OTLPTraceHeaders,
		OTLPMetricHeaders: cfg.Observability.OTLPMetricHeaders,
		ServiceName:       cfg.Observability.ServiceName,
		ServiceVer:        cfg.Observability.ServiceVer,
		Environment:       cfg.Environment,
		SamplingRatio:     cfg.Observability.SamplingRatio,
		MetricsConsole:    cfg.Observability.MetricsConsole,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			slog.Error("Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	httpClient := observability.NewHTTPClient(30 * time.Second)
	events := hub.New(hub.WithMaxPending(cfg.Hub.MaxPending))
	store := eventstore.Open(log, cfg.Storage, database, events, warehouse.WithHTTPClient(httpClient))

	oauthClient := oura.NewOAuthClient(oura.OAuthSettings{
		ClientID:     cfg.Oura.ClientID,
		ClientSecret: cfg.Oura.ClientSecret,
		RedirectURI:  cfg.Oura.RedirectURI,
		AuthURL:      cfg.Oura.AuthURL,
		TokenURL:     cfg.Oura.TokenURL,
	}, httpClient)
	tokens := services.NewTokenStore(sqlite.NewTokenRepository(database), oauthClient)
	if _, err := tokens.Load(ctx); err != nil {
		slog.Warn("Failed to load stored oauth token", "error", err)
	}

	dispatcher, closeSink, err := newSinkDispatcher(cfg.Sink)
	if err != nil {
		return err
	}
	defer closeSink()
	var forwarder ports.EventForwarder
	if cfg.Sink.Configured() {
		forwarder = dispatcher
	}

	srv := server.New(log, serviceName)
	srv.RegisterRouter(routes.NewStatusRoutes(serviceName, cfg.Observability.ServiceVer, store, tokens))
	srv.RegisterRouter(routes.NewAuthRoutes(tokens, oauthClient, routes.NewSessionStore(routes.AuthConfig{
		SessionKey:    cfg.Auth.SecretKey,
		SecureCookies: cfg.Auth.SecureCookie,
	})))
	srv.RegisterRouter(routes.NewEventRoutes(
		ourawebhook.NewHandler(services.NewWebhookIntake(cfg.Oura.WebhookSecret, store, forwarder)),
		store,
	))
	srv.RegisterRouter(routes.NewSubscriptionRoutes(tokens,
		oura.NewSubscriptionsClient(cfg.Oura.APIBaseURL, cfg.Oura.ClientID, cfg.Oura.ClientSecret, httpClient)))
	srv.RegisterRouter(routes.NewLiveRoutes(store))

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("Starting server", "port", cfg.Server.Port)
		return srv.Start(addr)
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Polling.Enabled {
		p := poller.New(poller.Config{
			Interval:         cfg.Polling.Interval,
			LookbackDays:     cfg.Polling.LookbackDays,
			DataTypes:        poller.ParseDataTypes(cfg.Polling.DataTypes),
			BootstrapRefresh: cfg.Oura.InitialRefreshToken,
		}, tokens, oura.NewAPIClient(cfg.Oura.APIBaseURL, cfg.Oura.APIRatePerSecond, httpClient), store)
		group.Go(func() error {
			return p.Run(ctx)
		})
	} else {
		slog.Info("Poller disabled")
	}

	group.Go(func() error {
		return services.NewRetention(store, cfg.Prune.RetentionDays, cfg.Prune.Interval).Run(ctx)
	})
	group.Go(func() error {
		return dispatcher.Run(ctx)
	})

	if cfg.Database.LogTiming {
		go logDBLatencyStats(ctx, log, database)
	}

	err = group.Wait()
	if closeErr := store.Close(); closeErr != nil {
		slog.Error("Failed to close event store", "error", closeErr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func main() {
	if err := Run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// newSinkDispatcher dials the sink when configured. An unconfigured sink
// yields a dispatcher that refuses every event.
func newSinkDispatcher(cfg config.SinkConfig) (*sink.Dispatcher, func(), error) {
	if !cfg.Configured() {
		slog.Info("Sink disabled (credentials not configured)")
		return sink.NewDispatcher(sink.NewForwarder(nil), cfg.QueueSize), func() {}, nil
	}
	conn, err := sink.Dial(sink.GRPCConfig{
		Endpoint:     cfg.ServerEndpoint,
		WorkspaceURL: cfg.WorkspaceURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TableName:    cfg.TableName,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect sink: %w", err)
	}
	closeConn := func() {
		if err := conn.Close(); err != nil {
			slog.Error("Failed to close sink connection", "error", err)
		}
	}
	forwarder := sink.NewForwarder(sink.OpenGRPCStream(conn, cfg.TableName))
	return sink.NewDispatcher(forwarder, cfg.QueueSize), closeConn, nil
}

func logDBLatencyStats(ctx context.Context, log *slog.Logger, database *db.Database) {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		stats := database.QueryLatencyStats()
		for _, entry := range stats[:min(len(stats), 5)] {
			log.Info("db_query_latency",
				"query", entry.Name,
				"count", entry.Count,
				"p50_ms", entry.P50.Milliseconds(),
				"p95_ms", entry.P95.Milliseconds(),
				"max_ms", entry.Max.Milliseconds(),
			)
		}
	}
}
