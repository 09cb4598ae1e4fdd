package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/fr0stylo/ourastream/internal/adapters/eventstore"
	"github.com/fr0stylo/ourastream/internal/adapters/sqlite"
	"github.com/fr0stylo/ourastream/internal/app/services"
	"github.com/fr0stylo/ourastream/internal/config"
	"github.com/fr0stylo/ourastream/internal/db"
	"github.com/fr0stylo/ourastream/internal/hub"
	"github.com/fr0stylo/ourastream/internal/observability"
	"github.com/fr0stylo/ourastream/internal/oura"
	"github.com/fr0stylo/ourastream/internal/poller"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.LoadForTool()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dbPath := flag.String("db", cfg.Database.Path, "database path without .sqlite suffix")
	lookback := flag.Int("lookback-days", cfg.Polling.LookbackDays, "days before today to include")
	types := flag.String("types", strings.Join(cfg.Polling.DataTypes, ","), "comma-separated data types to fetch")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline for the cycle")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	database, err := db.New(strings.TrimSpace(*dbPath))
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() {
		_ = database.Close()
	}()

	store := eventstore.Open(nil, cfg.Storage, database, hub.New())
	defer func() {
		_ = store.Close()
	}()

	httpClient := observability.NewHTTPClient(30 * time.Second)
	oauthClient := oura.NewOAuthClient(oura.OAuthSettings{
		ClientID:     cfg.Oura.ClientID,
		ClientSecret: cfg.Oura.ClientSecret,
		RedirectURI:  cfg.Oura.RedirectURI,
		AuthURL:      cfg.Oura.AuthURL,
		TokenURL:     cfg.Oura.TokenURL,
	}, httpClient)
	tokens := services.NewTokenStore(sqlite.NewTokenRepository(database), oauthClient)

	p := poller.New(poller.Config{
		LookbackDays:     *lookback,
		DataTypes:        poller.ParseDataTypes(strings.Split(*types, ",")),
		BootstrapRefresh: cfg.Oura.InitialRefreshToken,
	}, tokens, oura.NewAPIClient(cfg.Oura.APIBaseURL, cfg.Oura.APIRatePerSecond, httpClient), store)

	stored := p.RunOnce(ctx)
	log.Printf("poll complete: stored=%d", stored)
}
