// Package teststubs holds shared fakes for exercising the polling pipeline
// without a real upstream.
package teststubs

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"

	"odds-sync-service/internal/domain"
)

// ScriptedDoer replays canned responses per operation ("p" form field) and
// records every form it saw.
type ScriptedDoer struct {
	mu        sync.Mutex
	Responses map[string][][]byte // op -> successive bodies, last repeats
	Errs      map[string]error    // op -> forced error
	served    map[string]int
	forms     []url.Values
	Calls     atomic.Int64
}

// NewScriptedDoer constructs an empty ScriptedDoer.
func NewScriptedDoer() *ScriptedDoer {
	return &ScriptedDoer{
		Responses: make(map[string][][]byte),
		Errs:      make(map[string]error),
		served:    make(map[string]int),
	}
}

// Script appends a response body for the given operation.
func (d *ScriptedDoer) Script(op string, body []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Responses[op] = append(d.Responses[op], body)
}

// Fail forces the given operation to return err.
func (d *ScriptedDoer) Fail(op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Errs[op] = err
}

// Do implements upstream.Doer.
func (d *ScriptedDoer) Do(_ context.Context, form url.Values) ([]byte, error) {
	d.Calls.Add(1)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forms = append(d.forms, form)

	op := form.Get("p")
	if err, ok := d.Errs[op]; ok && err != nil {
		return nil, err
	}
	bodies := d.Responses[op]
	if len(bodies) == 0 {
		return nil, errors.New("teststubs: no scripted response for " + op)
	}
	i := d.served[op]
	if i >= len(bodies) {
		i = len(bodies) - 1
	}
	d.served[op]++
	return bodies[i], nil
}

// Forms returns a copy of every recorded form in order.
func (d *ScriptedDoer) Forms() []url.Values {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]url.Values(nil), d.forms...)
}

// FormsFor returns the recorded forms for one operation.
func (d *ScriptedDoer) FormsFor(op string) []url.Values {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []url.Values
	for _, f := range d.forms {
		if f.Get("p") == op {
			out = append(out, f)
		}
	}
	return out
}

// StubSessions is a fixed-answer session manager.
type StubSessions struct {
	Valid       bool
	SessionID   string
	Invalidated atomic.Int64
	Ensured     atomic.Int64
}

func (s *StubSessions) EnsureValid(context.Context) bool {
	s.Ensured.Add(1)
	return s.Valid
}

func (s *StubSessions) UID() string { return s.SessionID }

func (s *StubSessions) Invalidate() { s.Invalidated.Add(1) }

// StubEnricher records what it was asked to enrich.
type StubEnricher struct {
	mu      sync.Mutex
	batches [][]*domain.Match
	Err     error
}

func (e *StubEnricher) Enrich(_ context.Context, _ string, matches []*domain.Match) error {
	e.mu.Lock()
	e.batches = append(e.batches, matches)
	e.mu.Unlock()
	return e.Err
}

// Batches returns the recorded enrichment batches.
func (e *StubEnricher) Batches() [][]*domain.Match {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]*domain.Match(nil), e.batches...)
}

// StubSnapshotWriter captures written snapshots.
type StubSnapshotWriter struct {
	mu      sync.Mutex
	Written []domain.Snapshot
	Err     error
}

func (w *StubSnapshotWriter) Write(snap domain.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	w.Written = append(w.Written, snap)
	return nil
}

// Last returns the most recent snapshot and whether any were written.
func (w *StubSnapshotWriter) Last() (domain.Snapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.Written) == 0 {
		return domain.Snapshot{}, false
	}
	return w.Written[len(w.Written)-1], true
}
