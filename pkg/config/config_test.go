package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Search.DefaultLimit != 25 || cfg.Search.MaxResults != 100 {
		t.Errorf("search limits = %d/%d, want 25/100", cfg.Search.DefaultLimit, cfg.Search.MaxResults)
	}
	if cfg.Kafka.Topics.RecordIngest != "record-ingest" {
		t.Errorf("RecordIngest topic = %q", cfg.Kafka.Topics.RecordIngest)
	}
	if cfg.Redis.CacheTTL != 60*time.Second {
		t.Errorf("CacheTTL = %v, want 60s", cfg.Redis.CacheTTL)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9999
ingestion:
  maxKeyLength: 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Ingestion.MaxKeyLength != 8 {
		t.Errorf("MaxKeyLength = %d, want 8", cfg.Ingestion.MaxKeyLength)
	}
	// Untouched sections keep their defaults.
	if cfg.Search.DefaultLimit != 25 {
		t.Errorf("DefaultLimit = %d, want 25", cfg.Search.DefaultLimit)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RDX_SERVER_PORT", "7070")
	t.Setenv("RDX_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RDX_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("Brokers = %v, want [k1:9092 k2:9092]", cfg.Kafka.Brokers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host: "db", Port: 5433, Database: "rdx", User: "u", Password: "p", SSLMode: "disable",
	}
	want := "host=db port=5433 user=u password=p dbname=rdx sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
