// Package common provides shared helpers for the STAR service binaries.
//
// This package contains the YAML configuration loader and the logger and
// server-shell factories used by the standalone commands (randomness,
// aggregator, demo-cli) to reduce code duplication.
package common

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/rillian/sta-rs/api/httpserver"
	"github.com/rillian/sta-rs/services"
)

// PostgresSettings mirrors services.PostgresConfig with YAML field names.
type PostgresSettings struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
}

// Config holds the settings shared by the service binaries. Each command
// reads the fields it needs and ignores the rest.
type Config struct {
	HTTPAddr    string `json:"http_addr"`
	MetricsAddr string `json:"metrics_addr"`
	EnablePprof bool   `json:"enable_pprof"`
	AdminToken  string `json:"admin_token"`
	LogJSON     bool   `json:"log_json"`
	LogDebug    bool   `json:"log_debug"`

	// Randomness server settings.
	Epochs []string `json:"epochs"`

	// Aggregator settings.
	Epoch     string            `json:"epoch"`
	Threshold uint32            `json:"threshold"`
	Postgres  *PostgresSettings `json:"postgres,omitempty"`
}

// DefaultConfig returns a config suitable for local development.
func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:  ":8080",
		Epochs:    []string{"epoch-0"},
		Epoch:     "epoch-0",
		Threshold: 20,
	}
}

// LoadConfig reads a YAML config file. The file is converted to JSON
// before unmarshaling so the struct only needs JSON tags.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// NewLogger creates the structured logger used by all service binaries.
func NewLogger(jsonOutput, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// NewServerConfig builds the HTTP server shell configuration from the
// shared settings.
func NewServerConfig(cfg *Config, log *slog.Logger) *httpserver.HTTPServerConfig {
	return &httpserver.HTTPServerConfig{
		ListenAddr:               cfg.HTTPAddr,
		MetricsAddr:              cfg.MetricsAddr,
		EnablePprof:              cfg.EnablePprof,
		Log:                      log,
		DrainDuration:            5 * time.Second,
		GracefulShutdownDuration: 10 * time.Second,
		ReadTimeout:              15 * time.Second,
		WriteTimeout:             15 * time.Second,
	}
}

// NewTripleStore selects the triple store backend: PostgreSQL when
// configured, in-memory otherwise.
func NewTripleStore(cfg *Config) (services.TripleStore, error) {
	if cfg.Postgres == nil {
		return services.NewMemoryStore(), nil
	}
	return services.NewPostgresStore(&services.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	})
}
