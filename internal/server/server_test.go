package server

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"odds-sync-service/internal/config"
	"odds-sync-service/internal/logging"
	"odds-sync-service/internal/metrics"
)

func testConfig(t *testing.T) config.Config {
	dir := t.TempDir()
	return config.Config{
		Provider:         config.FixtureProvider,
		SnapshotDir:      dir,
		SessionStatePath: filepath.Join(dir, "session.json"),
	}
}

func TestNewWiresFixtureProvider(t *testing.T) {
	logger := logging.NewLogger(logging.Config{Level: "error"})
	srv, err := New(context.Background(), testConfig(t), logger)
	if err != nil {
		t.Fatal(err)
	}
	if srv.metricsServer != nil {
		t.Fatal("metrics server built with telemetry disabled")
	}
	if srv.scheduler == nil {
		t.Fatal("scheduler not wired")
	}
}

func TestNewExposesMetricsEndpoint(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics = config.MetricsConfig{Enabled: true, Port: "0"}

	logger := logging.NewLogger(logging.Config{Level: "error"})
	srv, err := New(context.Background(), cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	if srv.metricsServer == nil {
		t.Fatal("metrics server missing")
	}
	defer srv.metricsStop(context.Background())
}

func TestNewPropagatesTelemetryFailure(t *testing.T) {
	orig := metricsSetup
	metricsSetup = func(context.Context, metrics.TelemetryConfig) (*metrics.Recorder, http.Handler, func(context.Context) error, error) {
		return nil, nil, nil, errors.New("exporter unavailable")
	}
	defer func() { metricsSetup = orig }()

	logger := logging.NewLogger(logging.Config{Level: "error"})
	if _, err := New(context.Background(), testConfig(t), logger); err == nil {
		t.Fatal("expected telemetry setup error")
	}
}
