package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fr0stylo/ourastream/internal/app/domain"
	"github.com/fr0stylo/ourastream/pkg/eventpublisher"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	interval, err := time.ParseDuration(cfg.Interval)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid interval duration:", err)
		os.Exit(1)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	client := eventpublisher.Client{
		Endpoint:    cfg.BaseURL,
		Secret:      cfg.Secret,
		Timeout:     10 * time.Second,
		CloudEvents: cfg.CloudEvents,
	}
	for sent := 0; ; sent++ {
		dataType := cfg.DataTypes[sent%len(cfg.DataTypes)]
		if err := sendWebhook(client, cfg.UserID, dataType); err != nil {
			fmt.Fprintln(os.Stderr, "webhook error:", err)
		}
		<-ticker.C
	}
}

func loadConfig(path string) (config, error) {
	if strings.TrimSpace(path) == "" {
		return config{}, fmt.Errorf("config path is required")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Secret = strings.TrimSpace(cfg.Secret)
	cfg.UserID = strings.TrimSpace(cfg.UserID)
	cfg.Interval = strings.TrimSpace(cfg.Interval)

	if cfg.BaseURL == "" || cfg.Secret == "" {
		return config{}, fmt.Errorf("config must include base_url and secret")
	}
	if len(cfg.DataTypes) == 0 {
		cfg.DataTypes = []string{string(domain.DataTypeDailySleep)}
	}
	for _, name := range cfg.DataTypes {
		if _, err := domain.ParseDataType(name); err != nil {
			return config{}, err
		}
	}
	if cfg.Interval == "" {
		return config{}, fmt.Errorf("interval must be provided")
	}

	parsed, err := time.ParseDuration(cfg.Interval)
	if err != nil {
		return config{}, fmt.Errorf("invalid interval duration: %w", err)
	}
	if parsed <= 0 {
		return config{}, fmt.Errorf("interval must be positive")
	}

	return cfg, nil
}

func sendWebhook(client eventpublisher.Client, userID, dataType string) error {
	receipt, err := client.Publish(context.Background(), eventpublisher.Event{
		DataType:  dataType,
		EventType: string(domain.EventTypeCreate),
		UserID:    userID,
		Timestamp: time.Now(),
		Data:      sampleData(domain.DataType(dataType)),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Webhook %s stored as %s\n", dataType, receipt.EventID)
	return nil
}

func sampleData(dataType domain.DataType) map[string]any {
	day := time.Now().UTC().Format("2006-01-02")
	switch {
	case dataType.IsDaily():
		return map[string]any{"day": day, "score": 60 + rand.IntN(40)}
	case dataType.IsStatic():
		return map[string]any{"color": "silver", "firmware_version": "2.9.0"}
	default:
		return map[string]any{
			"day":            day,
			"start_datetime": time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
			"end_datetime":   time.Now().UTC().Format(time.RFC3339),
		}
	}
}
