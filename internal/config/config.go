// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port            string
	AdvertiseAddr   string // Address shown to the interface while no remote is connected; "" = autodetect
	AllowedOrigin   string
	Layout          string
	LayoutFile      string
	SuggestionsPath string
	StripWidth      float64
	LogLevel        slog.Level
	SessionLog      SessionLogConfig
	Peer            PeerConfig
}

// SessionLogConfig controls where completed sessions are appended.
type SessionLogConfig struct {
	Backend      string
	CSVPath      string
	DBPath       string
	QueueSize    int
	WriteTimeout time.Duration
}

// PeerConfig controls per-connection outbound buffering.
type PeerConfig struct {
	SendQueueSize int
	WriteTimeout  time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "10942"),
		AdvertiseAddr:   getEnv("ADVERTISE_ADDR", ""),
		AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "*"),
		Layout:          getEnv("LAYOUT", "simplified"),
		LayoutFile:      getEnv("LAYOUT_FILE", ""),
		SuggestionsPath: getEnv("SUGGESTIONS_PATH", ""),
		StripWidth:      getEnvFloat("SUGGESTION_STRIP_WIDTH", 1030),
		LogLevel:        getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		SessionLog: SessionLogConfig{
			Backend:      getEnv("SESSION_LOG_BACKEND", "csv"),
			CSVPath:      getEnv("SESSION_LOG_CSV", "./data/participant_data.csv"),
			DBPath:       getEnv("SESSION_DB_PATH", "./data/sessions.db"),
			QueueSize:    getEnvInt("SESSION_LOG_QUEUE_SIZE", 64),
			WriteTimeout: getEnvDuration("SESSION_LOG_WRITE_TIMEOUT", 5*time.Second),
		},
		Peer: PeerConfig{
			SendQueueSize: getEnvInt("PEER_SEND_QUEUE_SIZE", 256),
			WriteTimeout:  getEnvDuration("PEER_WRITE_TIMEOUT", 5*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.LayoutFile == "" && c.Layout != "simplified" && c.Layout != "standard" {
		return fmt.Errorf("LAYOUT must be simplified or standard, got %q", c.Layout)
	}
	if c.StripWidth <= 0 {
		return fmt.Errorf("SUGGESTION_STRIP_WIDTH must be > 0")
	}
	switch c.SessionLog.Backend {
	case "csv":
		if c.SessionLog.CSVPath == "" {
			return fmt.Errorf("SESSION_LOG_CSV cannot be empty")
		}
	case "sqlite":
		if c.SessionLog.DBPath == "" {
			return fmt.Errorf("SESSION_DB_PATH cannot be empty")
		}
	case "both":
		if c.SessionLog.CSVPath == "" || c.SessionLog.DBPath == "" {
			return fmt.Errorf("SESSION_LOG_CSV and SESSION_DB_PATH cannot be empty")
		}
	default:
		return fmt.Errorf("SESSION_LOG_BACKEND must be csv, sqlite or both, got %q", c.SessionLog.Backend)
	}
	if c.SessionLog.QueueSize <= 0 {
		return fmt.Errorf("SESSION_LOG_QUEUE_SIZE must be > 0")
	}
	if c.SessionLog.WriteTimeout <= 0 {
		return fmt.Errorf("SESSION_LOG_WRITE_TIMEOUT must be > 0")
	}
	if c.Peer.SendQueueSize <= 0 {
		return fmt.Errorf("PEER_SEND_QUEUE_SIZE must be > 0")
	}
	if c.Peer.WriteTimeout <= 0 {
		return fmt.Errorf("PEER_WRITE_TIMEOUT must be > 0")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return fallback
	}
	return level
}
