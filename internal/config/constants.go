package config

import "time"

const (
	envProvider       = "PROVIDER"
	envBaseURL        = "ODDS_BASE_URL"
	envUsername       = "ODDS_USERNAME"
	envPassword       = "ODDS_PASSWORD"
	envLocale         = "ODDS_LOCALE"
	envUserAgent      = "ODDS_USER_AGENT"
	envLiveInterval   = "LIVE_POLL_INTERVAL"
	envTodayInterval  = "TODAY_POLL_INTERVAL"
	envEarlyInterval  = "EARLY_POLL_INTERVAL"
	envSessionCheck   = "SESSION_CHECK_INTERVAL"
	envStatsInterval  = "STATS_REPORT_INTERVAL"
	envSnapshotDir    = "SNAPSHOT_DIR"
	envSessionPath    = "SESSION_STATE_PATH"
	envMetricsOn      = "METRICS_ENABLED"
	envMetricsPort    = "METRICS_PORT"
	envOtelEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService    = "OTEL_SERVICE_NAME"
	envOtelInsecure   = "OTEL_EXPORTER_OTLP_INSECURE"

	defaultProvider = "upstream"

	// Category cadences. Live runs hot; early barely moves.
	defaultLiveInterval  = 2 * time.Second
	defaultTodayInterval = 10 * time.Second
	defaultEarlyInterval = time.Hour

	defaultSessionCheck  = 5 * time.Minute
	defaultStatsInterval = time.Minute

	defaultSnapshotDir = "data"
	defaultMetricsOn   = true
	defaultMetricsPort = "9090"
)
