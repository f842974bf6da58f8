package config

import (
	"errors"
	"path/filepath"

	"github.com/joho/godotenv"
)

// MetricsConfig holds telemetry export settings.
type MetricsConfig struct {
	Enabled      bool
	Port         string
	ServiceName  string
	OtlpEndpoint string
	OtlpInsecure bool
}

// Config holds runtime configuration for the sync process.
type Config struct {
	Provider string

	BaseURL   string
	Username  string
	Password  string
	Locale    string
	UserAgent string

	LiveInterval         Duration
	TodayInterval        Duration
	EarlyInterval        Duration
	SessionCheckInterval Duration
	StatsInterval        Duration

	SnapshotDir      string
	SessionStatePath string

	Metrics MetricsConfig
}

// Load reads configuration from the environment (and a .env file when
// present) with sensible defaults.
func Load() Config {
	_ = godotenv.Load()

	snapshotDir := envOrDefault(envSnapshotDir, defaultSnapshotDir)
	return Config{
		Provider:             envOrDefault(envProvider, defaultProvider),
		BaseURL:              envOrDefault(envBaseURL, ""),
		Username:             envOrDefault(envUsername, ""),
		Password:             envOrDefault(envPassword, ""),
		Locale:               envOrDefault(envLocale, ""),
		UserAgent:            envOrDefault(envUserAgent, ""),
		LiveInterval:         durationEnvOrDefault(envLiveInterval, defaultLiveInterval),
		TodayInterval:        durationEnvOrDefault(envTodayInterval, defaultTodayInterval),
		EarlyInterval:        durationEnvOrDefault(envEarlyInterval, defaultEarlyInterval),
		SessionCheckInterval: durationEnvOrDefault(envSessionCheck, defaultSessionCheck),
		StatsInterval:        durationEnvOrDefault(envStatsInterval, defaultStatsInterval),
		SnapshotDir:          snapshotDir,
		SessionStatePath:     envOrDefault(envSessionPath, filepath.Join(snapshotDir, "session.json")),
		Metrics: MetricsConfig{
			Enabled:      boolEnvOrDefault(envMetricsOn, defaultMetricsOn),
			Port:         envOrDefault(envMetricsPort, defaultMetricsPort),
			ServiceName:  envOrDefault(envOtelService, "odds-sync-service"),
			OtlpEndpoint: envOrDefault(envOtelEndpoint, ""),
			OtlpInsecure: boolEnvOrDefault(envOtelInsecure, false),
		},
	}
}

// FixtureProvider selects the canned-response transport.
const FixtureProvider = "fixture"

// Validate reports the only fatal startup condition: missing credentials
// for the real upstream. The fixture transport needs none.
func (c Config) Validate() error {
	if c.Provider == FixtureProvider {
		return nil
	}
	if c.Username == "" || c.Password == "" {
		return errors.New("config: ODDS_USERNAME and ODDS_PASSWORD are required")
	}
	return nil
}
