package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fr0stylo/ourastream/pkg/eventpublisher"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file loaded:", err)
	}
	v := viper.New()
	v.AutomaticEnv()

	endpoint := flag.String("endpoint", strings.TrimSpace(v.GetString("OURASTREAM_ENDPOINT")), "ourastream base URL (or OURASTREAM_ENDPOINT)")
	secret := flag.String("secret", strings.TrimSpace(v.GetString("OURA_WEBHOOK_SECRET")), "webhook signing secret (or OURA_WEBHOOK_SECRET)")
	dataType := flag.String("type", "daily_sleep", "data type")
	eventType := flag.String("event", "create", "event type (create, update, delete)")
	userID := flag.String("user", "", "user id (optional)")
	data := flag.String("data", "{}", "JSON object for the data field")
	wrap := flag.Bool("cloudevents", false, "wrap the delivery in a structured CloudEvent")
	source := flag.String("source", "", "CloudEvent source (optional)")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Parse()

	if strings.TrimSpace(*endpoint) == "" {
		exitErr("endpoint is required (or set OURASTREAM_ENDPOINT)")
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(*data), &fields); err != nil {
		exitErr("data must be a JSON object: " + err.Error())
	}

	client := eventpublisher.Client{
		Endpoint:    strings.TrimSpace(*endpoint),
		Secret:      strings.TrimSpace(*secret),
		Timeout:     *timeout,
		CloudEvents: *wrap,
		Source:      strings.TrimSpace(*source),
	}
	receipt, err := client.Publish(context.Background(), eventpublisher.Event{
		DataType:  strings.TrimSpace(*dataType),
		EventType: strings.TrimSpace(*eventType),
		UserID:    strings.TrimSpace(*userID),
		Timestamp: time.Now(),
		Data:      fields,
	})
	if err != nil {
		exitErr(err.Error())
	}

	fmt.Printf("Published %s/%s as %s\n", receipt.DataType, receipt.EventType, receipt.EventID)
}

func exitErr(message string) {
	fmt.Fprintln(os.Stderr, message)
	os.Exit(1)
}
