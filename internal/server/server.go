// Package server assembles the sync process: transport, session manager,
// enrichment engine, scheduler, snapshot writer and the metrics endpoint.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"odds-sync-service/internal/config"
	"odds-sync-service/internal/enrich"
	"odds-sync-service/internal/logging"
	"odds-sync-service/internal/metrics"
	"odds-sync-service/internal/scheduler"
	"odds-sync-service/internal/session"
	"odds-sync-service/internal/snapshots"
	"odds-sync-service/internal/store"
	"odds-sync-service/internal/upstream"
	"odds-sync-service/internal/upstream/fixture"
)

var metricsSetup = metrics.Setup

// Server owns the process components and their lifecycle.
type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	recorder      *metrics.Recorder
	scheduler     *scheduler.Scheduler
	metricsServer *http.Server
	metricsStop   func(context.Context) error
}

// New wires a Server from configuration.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	recorder, promHandler, metricsStop, err := metricsSetup(ctx, metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	})
	if err != nil {
		return nil, err
	}

	// Resolved once so the login payload and the transport header agree.
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = upstream.DefaultUserAgent
	}

	doer := buildDoer(cfg, userAgent)
	sessions := session.NewManager(session.Config{
		Doer:     doer,
		Store:    session.NewStore(cfg.SessionStatePath),
		Logger:   logger,
		Recorder: recorder,
		Credentials: session.Credentials{
			Username: cfg.Username,
			Password: cfg.Password,
		},
		UserAgent: userAgent,
		Locale:    cfg.Locale,
	})

	sched := scheduler.New(scheduler.Config{
		Doer:                 doer,
		Sessions:             sessions,
		Enricher:             enrich.New(doer, logger, recorder),
		Cache:                store.NewCategoryCache(),
		Writer:               snapshots.NewWriter(cfg.SnapshotDir),
		Logger:               logger,
		Recorder:             recorder,
		LiveInterval:         cfg.LiveInterval,
		TodayInterval:        cfg.TodayInterval,
		EarlyInterval:        cfg.EarlyInterval,
		SessionCheckInterval: cfg.SessionCheckInterval,
		StatsInterval:        cfg.StatsInterval,
	})

	srv := &Server{
		cfg:         cfg,
		logger:      logger,
		recorder:    recorder,
		scheduler:   sched,
		metricsStop: metricsStop,
	}
	if promHandler != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promHandler)
		srv.metricsServer = &http.Server{
			Addr:              ":" + cfg.Metrics.Port,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return srv, nil
}

func buildDoer(cfg config.Config, userAgent string) upstream.Doer {
	if cfg.Provider == config.FixtureProvider {
		return fixture.New()
	}
	return upstream.NewClient(upstream.Config{
		BaseURL:   cfg.BaseURL,
		UserAgent: userAgent,
	})
}

// Run starts the scheduler and metrics endpoint and blocks until the
// context is cancelled, then shuts everything down.
func (s *Server) Run(ctx context.Context) {
	if s.metricsServer != nil {
		go func() {
			s.logger.Info("metrics server listening", slog.String("addr", s.metricsServer.Addr))
			if err := s.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logger.Error("metrics server failed", logging.FieldError, err)
			}
		}()
	}

	s.scheduler.Start(ctx)
	<-ctx.Done()
	s.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = s.scheduler.Stop(shutdownCtx)
	if s.metricsServer != nil {
		_ = s.metricsServer.Shutdown(shutdownCtx)
	}
	if s.metricsStop != nil {
		_ = s.metricsStop(shutdownCtx)
	}
}
