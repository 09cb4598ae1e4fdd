package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fr0stylo/ourastream/internal/config"
	"github.com/fr0stylo/ourastream/internal/db"
	"github.com/fr0stylo/ourastream/internal/db/queries"
)

func main() {
	var (
		dbPath     string
		windowDays int
	)

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.LoadForTool()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	flag.StringVar(&dbPath, "db", cfg.Database.Path, "database path without .sqlite suffix")
	flag.IntVar(&windowDays, "window-days", 30, "event window in days")
	flag.Parse()

	if windowDays <= 0 {
		log.Fatalf("window-days must be positive, got %d", windowDays)
	}

	ctx := context.Background()
	database, err := db.New(dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() { _ = database.Close() }()

	since := time.Now().UTC().AddDate(0, 0, -windowDays)
	sinceValue := db.FormatTimestamp(since)

	totalRows, err := database.CountEvents(ctx)
	if err != nil {
		log.Fatalf("count events: %v", err)
	}
	byType, err := database.CountEventsByDataTypeSince(ctx, sinceValue)
	if err != nil {
		log.Fatalf("count window rows: %v", err)
	}
	dailyRows, err := database.ListEventDailyVolume(ctx, queries.ListEventDailyVolumeParams{
		ReceivedAt: sinceValue,
		Limit:      int64(windowDays),
	})
	if err != nil {
		log.Fatalf("list daily volume: %v", err)
	}

	windowRows := int64(0)
	for _, row := range byType {
		windowRows += row.Total
	}

	fmt.Printf("events rows: %d\n", totalRows)
	fmt.Printf("events in last %dd: %d (avg %.2f/day)\n", windowDays, windowRows, float64(windowRows)/float64(windowDays))

	fmt.Printf("\nBy data type:\n")
	if len(byType) == 0 {
		fmt.Printf("- none\n")
	}
	for _, row := range byType {
		fmt.Printf("- %s: %d\n", row.DataType, row.Total)
	}

	fmt.Printf("\nDaily events (%s to now):\n", since.Format("2006-01-02"))
	for _, row := range dailyRows {
		fmt.Printf("- %s: %d\n", toString(row.Day), row.Total)
	}

	if stats := database.QueryLatencyStats(); len(stats) > 0 {
		fmt.Printf("\nQuery latency:\n")
		for _, stat := range stats {
			fmt.Printf("- %s\n", stat)
		}
	}
}

func toString(value interface{}) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case []byte:
		return strings.TrimSpace(string(typed))
	default:
		return strings.TrimSpace(fmt.Sprint(value))
	}
}
