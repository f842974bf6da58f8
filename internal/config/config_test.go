package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.LiveInterval != 2*time.Second {
		t.Fatalf("live interval = %v", cfg.LiveInterval)
	}
	if cfg.TodayInterval != 10*time.Second {
		t.Fatalf("today interval = %v", cfg.TodayInterval)
	}
	if cfg.EarlyInterval != time.Hour {
		t.Fatalf("early interval = %v", cfg.EarlyInterval)
	}
	if cfg.SnapshotDir != "data" {
		t.Fatalf("snapshot dir = %q", cfg.SnapshotDir)
	}
	if cfg.SessionStatePath != "data/session.json" {
		t.Fatalf("session path = %q", cfg.SessionStatePath)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Port != "9090" {
		t.Fatalf("metrics = %+v", cfg.Metrics)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LIVE_POLL_INTERVAL", "5s")
	t.Setenv("SNAPSHOT_DIR", "/var/lib/odds")
	t.Setenv("ODDS_LOCALE", "en-us")

	cfg := Load()
	if cfg.LiveInterval != 5*time.Second {
		t.Fatalf("live interval = %v", cfg.LiveInterval)
	}
	if cfg.SnapshotDir != "/var/lib/odds" {
		t.Fatalf("snapshot dir = %q", cfg.SnapshotDir)
	}
	// The session file follows the snapshot dir unless pinned explicitly.
	if cfg.SessionStatePath != "/var/lib/odds/session.json" {
		t.Fatalf("session path = %q", cfg.SessionStatePath)
	}
	if cfg.Locale != "en-us" {
		t.Fatalf("locale = %q", cfg.Locale)
	}
}

func TestValidateRequiresCredentials(t *testing.T) {
	cfg := Config{Provider: "real", BaseURL: "https://example.com"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing-credentials error")
	}

	cfg.Username, cfg.Password = "user", "pass"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestValidateFixtureNeedsNothing(t *testing.T) {
	cfg := Config{Provider: FixtureProvider}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}
