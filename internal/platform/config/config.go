// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (Drive client, stores) via constructors.
  - Soft Requirements: The Drive credential and root folder are optional at parse
    time. Their absence is reported by the story directory as a configuration
    error instead of crashing the process.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/yomira-drive/pkg/pagination"
)

// # Configuration Schema

// Config holds all runtime configuration for the reader service.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Remote file storage (Google Drive v3 files API)
	DriveAPIKey       string        `env:"DRIVE_API_KEY"`
	DriveRootFolderID string        `env:"DRIVE_ROOT_FOLDER_ID"`
	DriveBaseURL      string        `env:"DRIVE_BASE_URL"  envDefault:"https://www.googleapis.com/drive/v3"`
	DrivePageSize     int           `env:"DRIVE_PAGE_SIZE" envDefault:"100"`
	DriveTimeout      time.Duration `env:"DRIVE_TIMEOUT"   envDefault:"30s"`

	// Session storage. Memory when RedisURL is empty.
	RedisURL   string        `env:"REDIS_URL"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	// Reading positions. Memory when PositionsPath is empty.
	PositionsPath       string `env:"POSITIONS_PATH"        envDefault:"./data/positions.db"`
	PositionsMaxEntries int    `env:"POSITIONS_MAX_ENTRIES" envDefault:"0"`

	// OTLP/HTTP collector endpoint (host:port). Tracing is off when empty.
	OTelEndpoint string `env:"OTEL_EXPORTER_ENDPOINT"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.DrivePageSize < 1 || cfg.DrivePageSize > pagination.MaxLimit {
		return nil, fmt.Errorf("config: DRIVE_PAGE_SIZE must be between 1 and %d, got %d", pagination.MaxLimit, cfg.DrivePageSize)
	}

	if cfg.PositionsMaxEntries < 0 {
		return nil, fmt.Errorf("config: POSITIONS_MAX_ENTRIES cannot be negative")
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// DriveConfigured reports whether both the credential and the root folder are set.
func (c *Config) DriveConfigured() bool {
	return strings.TrimSpace(c.DriveAPIKey) != "" && strings.TrimSpace(c.DriveRootFolderID) != ""
}

// AllowedOrigins splits [Config.ExtraOrigins] into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if clean := strings.TrimSpace(origin); clean != "" {
			origins = append(origins, clean)
		}
	}
	return origins
}
