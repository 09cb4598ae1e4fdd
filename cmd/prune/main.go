package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/fr0stylo/ourastream/internal/adapters/eventstore"
	"github.com/fr0stylo/ourastream/internal/config"
	"github.com/fr0stylo/ourastream/internal/db"
	"github.com/fr0stylo/ourastream/internal/hub"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.LoadForTool()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dbPath := flag.String("db", cfg.Database.Path, "database path without .sqlite suffix")
	days := flag.Int("days", cfg.Prune.RetentionDays, "delete events received more than this many days ago")
	clearAll := flag.Bool("all", false, "delete every stored event instead of pruning by age")
	flag.Parse()

	if !*clearAll && *days <= 0 {
		log.Fatalf("days must be positive, got %d", *days)
	}

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

	before, err := store.Count(ctx)
	if err != nil {
		log.Fatalf("count events: %v", err)
	}

	var deleted int64
	if *clearAll {
		deleted, err = store.Clear(ctx)
	} else {
		deleted, err = store.PruneOlderThan(ctx, *days)
	}
	if err != nil {
		log.Fatalf("delete events: %v", err)
	}

	after, err := store.Count(ctx)
	if err != nil {
		log.Fatalf("count events: %v", err)
	}
	log.Printf("prune complete: before=%d deleted=%d after=%d", before, deleted, after)
}
