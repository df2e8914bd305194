// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServiceName and ServiceVersion identify this service in logs, traces and
// emitted events.
const (
	ServiceName    = "storefront"
	ServiceVersion = "0.1.0"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string

	// KafkaBrokers is empty when no broker is configured; the outbox relay
	// stays off and placed-order events remain queued in the outbox table.
	KafkaBrokers   []string
	OutboxInterval time.Duration
	OutboxBatch    int

	// OTelEndpoint enables trace export when set (host:port of an OTLP/HTTP
	// collector).
	OTelEndpoint string
}

// Load builds a Config from the environment. DATABASE_URL is the only
// required variable; everything else has a default or is optional.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8082"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		OTelEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}

	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	interval, err := time.ParseDuration(getenv("OUTBOX_INTERVAL", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("OUTBOX_INTERVAL: %w", err)
	}
	if interval <= 0 {
		return Config{}, errors.New("OUTBOX_INTERVAL must be positive")
	}
	cfg.OutboxInterval = interval

	batch, err := strconv.Atoi(getenv("OUTBOX_BATCH", "100"))
	if err != nil {
		return Config{}, fmt.Errorf("OUTBOX_BATCH: %w", err)
	}
	if batch <= 0 {
		return Config{}, errors.New("OUTBOX_BATCH must be positive")
	}
	cfg.OutboxBatch = batch

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
