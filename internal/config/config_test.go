package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBBackend != DatabaseSQLite || cfg.DBDSN != "radiostream.db" {
		t.Fatalf("unexpected database defaults: %s %q", cfg.DBBackend, cfg.DBDSN)
	}
	if cfg.DefaultCount != 30 {
		t.Fatalf("default count = %d, want 30", cfg.DefaultCount)
	}
	if cfg.HTTPAddr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected listen address %q", cfg.HTTPAddr())
	}
	if cfg.RedisAddr != "" || cfg.NATSURL != "" {
		t.Fatal("cache and event forwarding should be off by default")
	}
}

func TestLoadReadsEnvKeys(t *testing.T) {
	t.Setenv("RADIOSTREAM_DB_BACKEND", "postgres")
	t.Setenv("RADIOSTREAM_DB_DSN", "host=localhost user=test dbname=test sslmode=disable")
	t.Setenv("RADIO_HTTP_PORT", "9090")
	t.Setenv("RADIOSTREAM_DEFAULT_COUNT", "12")
	t.Setenv("RADIOSTREAM_CORS_ORIGIN", "https://a.example, https://b.example")
	t.Setenv("RADIOSTREAM_TRACING_ENABLED", "yes")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBBackend != DatabasePostgres {
		t.Fatalf("unexpected backend %q", cfg.DBBackend)
	}
	if cfg.HTTPPort != 9090 {
		t.Fatalf("legacy alias not honoured, port = %d", cfg.HTTPPort)
	}
	if cfg.DefaultCount != 12 {
		t.Fatalf("default count = %d, want 12", cfg.DefaultCount)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Fatalf("cors origins = %v, want %v", cfg.CORSOrigins, want)
	}
	if !cfg.TracingEnabled {
		t.Fatal("expected tracing to be enabled")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"RADIOSTREAM_DB_BACKEND", "oracle"},
		{"RADIOSTREAM_HTTP_PORT", "70000"},
		{"RADIOSTREAM_DEFAULT_COUNT", "-3"},
		{"RADIOSTREAM_RATE_LIMIT", "-1"},
		{"RADIOSTREAM_TRACING_SAMPLE_RATE", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected %s=%s to be rejected", tt.key, tt.value)
			}
		})
	}
}

func TestLoadReportsLegacyEnvWarnings(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.LegacyEnvWarnings) != 2 {
		t.Fatalf("expected 2 legacy env warnings, got %v", cfg.LegacyEnvWarnings)
	}
}
