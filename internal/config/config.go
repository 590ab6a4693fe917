/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	DBBackend   DatabaseBackend
	DBDSN       string

	// Playlist defaults
	DefaultCount int // tracks per generated playlist when the request names none

	// HTTP edge
	CORSOrigins []string // RADIOSTREAM_CORS_ORIGIN, comma separated
	RateLimit   int      // requests per minute per client IP; 0 disables

	// Cache and event forwarding
	RedisAddr     string // empty disables the settings cache
	RedisPassword string
	RedisDB       int
	NATSURL       string // empty keeps events in-process

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	LegacyEnvWarnings []string
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:  getEnvAny([]string{"RADIOSTREAM_ENV", "RADIO_ENV"}, "development"),
		HTTPBind:     getEnvAny([]string{"RADIOSTREAM_HTTP_BIND", "RADIO_HTTP_BIND"}, "0.0.0.0"),
		HTTPPort:     getEnvIntAny([]string{"RADIOSTREAM_HTTP_PORT", "RADIO_HTTP_PORT"}, 8080),
		DBBackend:    DatabaseBackend(getEnvAny([]string{"RADIOSTREAM_DB_BACKEND", "RADIO_DB_BACKEND"}, string(DatabaseSQLite))),
		DBDSN:        getEnvAny([]string{"RADIOSTREAM_DB_DSN", "RADIO_DB_DSN"}, "radiostream.db"),
		DefaultCount: getEnvIntAny([]string{"RADIOSTREAM_DEFAULT_COUNT", "RADIO_DEFAULT_COUNT"}, 30),

		CORSOrigins: splitList(getEnvAny([]string{"RADIOSTREAM_CORS_ORIGIN", "RADIO_CORS_ORIGIN"}, "*")),
		RateLimit:   getEnvIntAny([]string{"RADIOSTREAM_RATE_LIMIT", "RADIO_RATE_LIMIT"}, 120),

		RedisAddr:     getEnvAny([]string{"RADIOSTREAM_REDIS_ADDR", "RADIO_REDIS_ADDR"}, ""),
		RedisPassword: getEnvAny([]string{"RADIOSTREAM_REDIS_PASSWORD", "RADIO_REDIS_PASSWORD"}, ""),
		RedisDB:       getEnvIntAny([]string{"RADIOSTREAM_REDIS_DB", "RADIO_REDIS_DB"}, 0),
		NATSURL:       getEnvAny([]string{"RADIOSTREAM_NATS_URL", "RADIO_NATS_URL"}, ""),

		// Tracing configuration
		TracingEnabled:    getEnvBoolAny([]string{"RADIOSTREAM_TRACING_ENABLED", "RADIO_TRACING_ENABLED"}, false),
		OTLPEndpoint:      getEnvAny([]string{"RADIOSTREAM_OTLP_ENDPOINT", "RADIO_OTLP_ENDPOINT"}, "localhost:4317"),
		TracingSampleRate: getEnvFloatAny([]string{"RADIOSTREAM_TRACING_SAMPLE_RATE", "RADIO_TRACING_SAMPLE_RATE"}, 1.0),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("RADIOSTREAM_DB_DSN must be provided")
	}

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("RADIOSTREAM_HTTP_PORT must be between 1 and 65535, got %d", cfg.HTTPPort)
	}

	if cfg.DefaultCount <= 0 {
		return nil, fmt.Errorf("RADIOSTREAM_DEFAULT_COUNT must be positive, got %d", cfg.DefaultCount)
	}

	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("RADIOSTREAM_RATE_LIMIT must not be negative, got %d", cfg.RateLimit)
	}

	if cfg.TracingSampleRate < 0 || cfg.TracingSampleRate > 1 {
		return nil, fmt.Errorf("RADIOSTREAM_TRACING_SAMPLE_RATE must be between 0 and 1, got %v", cfg.TracingSampleRate)
	}
	cfg.LegacyEnvWarnings = detectLegacyEnvWarnings()

	return cfg, nil
}

// HTTPAddr returns the listen address for the API server.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPBind, c.HTTPPort)
}

func detectLegacyEnvWarnings() []string {
	legacy := map[string]string{
		"ENVIRONMENT":         "use RADIOSTREAM_ENV",
		"TRACING_ENABLED":     "use RADIOSTREAM_TRACING_ENABLED",
		"OTLP_ENDPOINT":       "use RADIOSTREAM_OTLP_ENDPOINT",
		"TRACING_SAMPLE_RATE": "use RADIOSTREAM_TRACING_SAMPLE_RATE",
		"REDIS_ADDR":          "use RADIOSTREAM_REDIS_ADDR",
		"NATS_URL":            "use RADIOSTREAM_NATS_URL",
	}

	warnings := make([]string, 0, len(legacy))
	for key, recommendation := range legacy {
		if os.Getenv(key) != "" {
			warnings = append(warnings, fmt.Sprintf("legacy env key %s is set; %s", key, recommendation))
		}
	}
	return warnings
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}
