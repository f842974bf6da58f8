// Package scheduler drives the three category polling loops, the periodic
// session-liveness check and the statistics reporter. Each category runs on
// its own cadence with a non-reentrant guard: a slow cycle is skipped, never
// queued, and the three categories never block one another.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"odds-sync-service/internal/domain"
	"odds-sync-service/internal/logging"
	"odds-sync-service/internal/metrics"
	"odds-sync-service/internal/protocol"
	"odds-sync-service/internal/store"
	"odds-sync-service/internal/upstream"
)

// errNoSession marks a cycle that never reached the network because no
// valid session was available.
var errNoSession = errors.New("scheduler: no valid session")

// Sessions is the slice of the session manager the scheduler needs.
type Sessions interface {
	EnsureValid(ctx context.Context) bool
	UID() string
	Invalidate()
}

// Enricher augments matches with supplementary market detail in place.
type Enricher interface {
	Enrich(ctx context.Context, uid string, matches []*domain.Match) error
}

// SnapshotWriter persists combined snapshots.
type SnapshotWriter interface {
	Write(snap domain.Snapshot) error
}

// Config wires a Scheduler.
type Config struct {
	Doer     upstream.Doer
	Sessions Sessions
	Enricher Enricher
	Cache    *store.CategoryCache
	Writer   SnapshotWriter
	Logger   *slog.Logger
	Recorder *metrics.Recorder

	LiveInterval         time.Duration
	TodayInterval        time.Duration
	EarlyInterval        time.Duration
	SessionCheckInterval time.Duration
	StatsInterval        time.Duration
}

// Scheduler owns the polling loops.
type Scheduler struct {
	cfg      Config
	doer     upstream.Doer
	sessions Sessions
	enricher Enricher
	cache    *store.CategoryCache
	writer   SnapshotWriter
	logger   *slog.Logger
	recorder *metrics.Recorder
	now      func() time.Time

	loops    []*loop
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool
	wg       sync.WaitGroup
}

// loop is one category's timed task with its non-reentrant guard.
type loop struct {
	category domain.Category
	interval time.Duration
	running  atomic.Bool
}

// New constructs a Scheduler.
func New(cfg Config) *Scheduler {
	s := &Scheduler{
		cfg:      cfg,
		doer:     cfg.Doer,
		sessions: cfg.Sessions,
		enricher: cfg.Enricher,
		cache:    cfg.Cache,
		writer:   cfg.Writer,
		logger:   cfg.Logger,
		recorder: cfg.Recorder,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	s.loops = []*loop{
		{category: domain.CategoryLive, interval: cfg.LiveInterval},
		{category: domain.CategoryToday, interval: cfg.TodayInterval},
		{category: domain.CategoryEarly, interval: cfg.EarlyInterval},
	}
	return s
}

// Start launches all loops until the context is cancelled or Stop is
// called. Idempotent.
func (s *Scheduler) Start(ctx context.Context) {
	s.startMu.Lock()
	if s.started {
		s.startMu.Unlock()
		return
	}
	s.started = true
	s.startMu.Unlock()

	for _, l := range s.loops {
		s.wg.Add(1)
		go s.runLoop(ctx, l)
	}
	if s.cfg.SessionCheckInterval > 0 {
		s.wg.Add(1)
		go s.runLivenessCheck(ctx)
	}
	if s.cfg.StatsInterval > 0 {
		s.wg.Add(1)
		go s.runStatsReporter(ctx)
	}
	s.logInfo("scheduler started",
		slog.Int64("live_ms", s.cfg.LiveInterval.Milliseconds()),
		slog.Int64("today_ms", s.cfg.TodayInterval.Milliseconds()),
		slog.Int64("early_ms", s.cfg.EarlyInterval.Milliseconds()),
	)
}

// Stop halts all loops. Running cycles are not preempted; they finish and
// no new ones start.
func (s *Scheduler) Stop(ctx context.Context) error {
	_ = ctx
	s.stopOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
	return nil
}

func (s *Scheduler) runLoop(ctx context.Context, l *loop) {
	defer s.wg.Done()
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	// Initial fetch to warm the slot on boot.
	s.tick(ctx, l)
	for {
		select {
		case <-ctx.Done():
			s.logInfo("category loop stopped", logging.FieldCategory, string(l.category))
			return
		case <-s.done:
			s.logInfo("category loop stopped", logging.FieldCategory, string(l.category))
			return
		case <-ticker.C:
			s.tick(ctx, l)
		}
	}
}

// tick runs one cycle unless the previous one is still in flight. The
// guard only prevents a second start; it never aborts the first.
func (s *Scheduler) tick(ctx context.Context, l *loop) {
	if !l.running.CompareAndSwap(false, true) {
		s.logDebug("cycle still running, tick skipped", logging.FieldCategory, string(l.category))
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer l.running.Store(false)
		s.fetchCycle(ctx, l.category)
	}()
}

// fetchCycle is one strictly ordered pass: session check, listing,
// enrichment, slot replace, snapshot write. Any failure leaves the
// category's previous slot untouched: stale data beats erased data.
func (s *Scheduler) fetchCycle(ctx context.Context, category domain.Category) {
	start := s.now()

	if !s.sessions.EnsureValid(ctx) {
		s.recorder.RecordFetch(string(category), 0, time.Since(start), errNoSession)
		s.logWarn("cycle skipped: no valid session", logging.FieldCategory, string(category))
		return
	}
	uid := s.sessions.UID()

	body, err := s.doer.Do(ctx, protocol.BuildListingRequest(uid, category, s.now()))
	if err != nil {
		s.recorder.RecordFetch(string(category), 0, time.Since(start), err)
		s.logWarn("listing request failed", logging.FieldCategory, string(category), logging.FieldError, err)
		return
	}

	matches, err := protocol.ParseListing(body, category, s.now())
	if err != nil {
		if errors.Is(err, protocol.ErrDuplicateLogin) {
			s.sessions.Invalidate()
		}
		s.recorder.RecordFetch(string(category), 0, time.Since(start), err)
		s.logWarn("listing unusable", logging.FieldCategory, string(category), logging.FieldError, err)
		return
	}

	ptrs := make([]*domain.Match, len(matches))
	for i := range matches {
		ptrs[i] = &matches[i]
	}
	if err := s.enricher.Enrich(ctx, uid, ptrs); err != nil {
		// Listing data stays usable; a superseded session just forces the
		// next cycle through re-login.
		if errors.Is(err, protocol.ErrDuplicateLogin) {
			s.sessions.Invalidate()
		}
		s.logWarn("enrichment incomplete", logging.FieldCategory, string(category), logging.FieldError, err)
	}

	s.cache.SetCategory(category, matches)
	s.writeSnapshot()

	s.recorder.RecordFetch(string(category), len(matches), time.Since(start), nil)
	s.logInfo("category refreshed",
		logging.FieldCategory, string(category),
		logging.FieldCount, len(matches),
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
}

func (s *Scheduler) writeSnapshot() {
	start := s.now()
	snap := s.cache.Snapshot(s.now().UnixMilli())
	err := s.writer.Write(snap)
	s.recorder.RecordSnapshotWrite(time.Since(start), err)
	if err != nil {
		s.logWarn("snapshot write failed", logging.FieldError, err)
	}
}

func (s *Scheduler) runLivenessCheck(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.SessionCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if !s.sessions.EnsureValid(ctx) {
				s.logWarn("session liveness check failed")
			}
		}
	}
}

func (s *Scheduler) runStatsReporter(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.StatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.reportStats()
		}
	}
}

// reportStats emits the periodic human-readable summary.
func (s *Scheduler) reportStats() {
	sum := s.recorder.Summarize()
	args := []any{
		logging.FieldUptime, sum.Uptime.Round(time.Second).String(),
		"snapshot_writes", sum.SnapshotWrites,
		"login_attempts", sum.LoginAttempts,
		"login_failures", sum.LoginFailures,
		"supplement_requests", sum.SupplementRequests,
	}
	for _, cat := range domain.Categories() {
		c := sum.Categories[string(cat)]
		lastFetch := "never"
		if !c.LastFetchAt.IsZero() {
			lastFetch = c.LastFetchAt.Format(time.RFC3339)
		}
		args = append(args,
			string(cat)+"_fetches", c.TotalFetches,
			string(cat)+"_failed", c.FailedFetches,
			string(cat)+"_last_fetch", lastFetch,
			string(cat)+"_last_count", c.LastMatchCount,
		)
	}
	s.logInfo("stats report", args...)
}

func (s *Scheduler) logInfo(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Scheduler) logWarn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Scheduler) logDebug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
