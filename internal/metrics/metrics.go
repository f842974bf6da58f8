package metrics

import (
	"sync"
	"time"
)

type categoryStats struct {
	totalFetches   int
	successFetches int
	failedFetches  int
	lastFetchAt    time.Time
	lastMatchCount int
	lastDuration   time.Duration
}

// Recorder captures lightweight in-memory statistics about fetch cycles,
// logins, supplements and snapshot writes, mirroring them to otel
// instruments when configured. All methods tolerate a nil receiver.
type Recorder struct {
	mu        sync.Mutex
	startedAt time.Time
	byCat     map[string]*categoryStats

	loginAttempts  int
	loginSuccesses int
	loginFailures  int

	supplementRequests int
	supplementFailures int

	snapshotWrites int

	otel *otelInstruments
}

// NewRecorder creates a Recorder with no export backend.
func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		startedAt: time.Now(),
		byCat:     make(map[string]*categoryStats),
		otel:      otel,
	}
}

func (r *Recorder) ensure(category string) *categoryStats {
	s, ok := r.byCat[category]
	if !ok {
		s = &categoryStats{}
		r.byCat[category] = s
	}
	return s
}

// RecordFetch records one completed category cycle.
func (r *Recorder) RecordFetch(category string, matchCount int, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	s := r.ensure(category)
	s.totalFetches++
	s.lastDuration = duration
	if err != nil {
		s.failedFetches++
	} else {
		s.successFetches++
		s.lastFetchAt = time.Now()
		s.lastMatchCount = matchCount
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordFetch(category, duration, err)
	}
}

// RecordLoginAttempt counts an issued login request.
func (r *Recorder) RecordLoginAttempt() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.loginAttempts++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordLogin("attempt")
	}
}

// RecordLoginSuccess counts a successful login.
func (r *Recorder) RecordLoginSuccess() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.loginSuccesses++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordLogin("success")
	}
}

// RecordLoginFailure counts a classified login rejection.
func (r *Recorder) RecordLoginFailure() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.loginFailures++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordLogin("failure")
	}
}

// RecordSupplement counts one supplement fetch attempt.
func (r *Recorder) RecordSupplement(err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.supplementRequests++
	if err != nil {
		r.supplementFailures++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordSupplement(err)
	}
}

// RecordSnapshotWrite counts one snapshot write.
func (r *Recorder) RecordSnapshotWrite(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	if err == nil {
		r.snapshotWrites++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordSnapshotWrite(duration, err)
	}
}

// CategorySnapshot is a copy of one category's counters.
type CategorySnapshot struct {
	TotalFetches   int
	SuccessFetches int
	FailedFetches  int
	LastFetchAt    time.Time
	LastMatchCount int
	LastDuration   time.Duration
}

// Summary is a copy of the recorder state for the periodic stats report.
type Summary struct {
	Uptime             time.Duration
	Categories         map[string]CategorySnapshot
	LoginAttempts      int
	LoginSuccesses     int
	LoginFailures      int
	SupplementRequests int
	SupplementFailures int
	SnapshotWrites     int
}

// Summarize returns a point-in-time copy of all counters.
func (r *Recorder) Summarize() Summary {
	if r == nil {
		return Summary{Categories: map[string]CategorySnapshot{}}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := Summary{
		Uptime:             time.Since(r.startedAt),
		Categories:         make(map[string]CategorySnapshot, len(r.byCat)),
		LoginAttempts:      r.loginAttempts,
		LoginSuccesses:     r.loginSuccesses,
		LoginFailures:      r.loginFailures,
		SupplementRequests: r.supplementRequests,
		SupplementFailures: r.supplementFailures,
		SnapshotWrites:     r.snapshotWrites,
	}
	for cat, s := range r.byCat {
		out.Categories[cat] = CategorySnapshot{
			TotalFetches:   s.totalFetches,
			SuccessFetches: s.successFetches,
			FailedFetches:  s.failedFetches,
			LastFetchAt:    s.lastFetchAt,
			LastMatchCount: s.lastMatchCount,
			LastDuration:   s.lastDuration,
		}
	}
	return out
}

// Category returns the counters for one category.
func (r *Recorder) Category(category string) CategorySnapshot {
	if r == nil {
		return CategorySnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byCat[category]
	if !ok {
		return CategorySnapshot{}
	}
	return CategorySnapshot{
		TotalFetches:   s.totalFetches,
		SuccessFetches: s.successFetches,
		FailedFetches:  s.failedFetches,
		LastFetchAt:    s.lastFetchAt,
		LastMatchCount: s.lastMatchCount,
		LastDuration:   s.lastDuration,
	}
}
