package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.PollInterval != 6*time.Second {
		t.Fatalf("expected 6s poll interval, got %v", cfg.Server.PollInterval)
	}
	if cfg.Database.Driver != "sqlite" || !cfg.Database.Encrypt {
		t.Fatalf("unexpected database defaults %+v", cfg.Database)
	}
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  addr: \":9000\"\n  poll_interval: 10s\nuser:\n  id: alice\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("JOBCLOCK_USER", "bob")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.PollInterval != 10*time.Second {
		t.Fatalf("file values not applied: %+v", cfg.Server)
	}
	if cfg.User.ID != "bob" {
		t.Fatalf("expected env override bob, got %s", cfg.User.ID)
	}
	// Untouched sections keep their defaults
	if cfg.Log.Level != "info" {
		t.Fatalf("expected default log level, got %s", cfg.Log.Level)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.Redis.Addr = "localhost:6379"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Redis.Addr != "localhost:6379" {
		t.Fatalf("expected redis addr to persist, got %q", loaded.Redis.Addr)
	}
}
