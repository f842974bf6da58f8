package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"odds-sync-service/internal/domain"
	"odds-sync-service/internal/metrics"
	"odds-sync-service/internal/protocol"
	"odds-sync-service/internal/upstream"
)

const (
	// FreshnessCeiling is how long a session identifier is trusted before
	// the manager forces a re-login. The server silently invalidates stale
	// sessions around this age.
	FreshnessCeiling = 2 * time.Hour

	// maxLoginAttempts is the consecutive classified-failure ceiling. Once
	// reached, EnsureValid stops issuing network requests until a future
	// successful login resets the counter.
	maxLoginAttempts = 2

	// defaultProbeInterval spaces out liveness probes so the fast live loop
	// does not double every listing request with a probe.
	defaultProbeInterval = 30 * time.Second
)

// Credentials are the upstream account credentials.
type Credentials struct {
	Username string
	Password string
}

// Config wires a Manager.
type Config struct {
	Doer        upstream.Doer
	Store       *Store
	Logger      *slog.Logger
	Recorder    *metrics.Recorder
	Credentials Credentials
	UserAgent   string
	Locale      string
}

// Manager owns the authenticated session identifier shared by all polling
// loops. Reads and writes are last-write-wins; a loop that briefly uses a
// just-invalidated identifier will trip its own invalidation next check.
type Manager struct {
	doer      upstream.Doer
	store     *Store
	logger    *slog.Logger
	recorder  *metrics.Recorder
	creds     Credentials
	userAgent string
	locale    string
	now       func() time.Time

	probeInterval time.Duration

	mu           sync.Mutex
	uid          string
	issuedAt     time.Time
	failures     int
	lastVerified time.Time
}

// NewManager constructs a Manager, restoring any persisted session state.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		doer:          cfg.Doer,
		store:         cfg.Store,
		logger:        cfg.Logger,
		recorder:      cfg.Recorder,
		creds:         cfg.Credentials,
		userAgent:     cfg.UserAgent,
		locale:        cfg.Locale,
		now:           time.Now,
		probeInterval: defaultProbeInterval,
	}
	// The login payload must carry the same user agent the transport sends.
	if m.userAgent == "" {
		m.userAgent = upstream.DefaultUserAgent
	}
	if cfg.Store != nil {
		if st, err := cfg.Store.Load(); err == nil && st.UID != "" {
			m.uid = st.UID
			m.issuedAt = st.IssuedAt
			m.logInfo("session restored", slog.Time("issued_at", st.IssuedAt))
		}
	}
	return m
}

// UID returns the current session identifier, empty when logged out.
func (m *Manager) UID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uid
}

// Invalidate clears the session identifier so the next EnsureValid forces a
// re-login. Called when any response carries the duplicate-login signal.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uid != "" {
		m.logInfo("session invalidated")
	}
	m.uid = ""
	m.lastVerified = time.Time{}
}

// Login performs a full login exchange. Classified rejections surface as
// *LoginError and count toward the attempt ceiling; transport failures do
// not, so a network blip cannot permanently halt fetching.
func (m *Manager) Login(ctx context.Context) error {
	form := protocol.BuildLoginRequest(m.creds.Username, m.creds.Password, newFingerprint(), m.userAgent, m.locale)

	m.recorder.RecordLoginAttempt()
	body, err := m.doer.Do(ctx, form)
	if err != nil {
		m.logError("login request failed", err)
		return err
	}
	reply, err := protocol.ParseLogin(body)
	if err != nil {
		m.logError("login response unparseable", err)
		return err
	}
	if reply.UID == "" {
		lerr := &LoginError{Kind: ClassifyLoginFailure(reply.Message), Message: reply.Message}
		m.mu.Lock()
		m.failures++
		failures := m.failures
		m.mu.Unlock()
		m.recorder.RecordLoginFailure()
		m.logError("login rejected", lerr, slog.Int("consecutive_failures", failures))
		return lerr
	}

	now := m.now()
	m.mu.Lock()
	m.uid = reply.UID
	m.issuedAt = now
	m.failures = 0
	m.lastVerified = now
	m.mu.Unlock()

	m.recorder.RecordLoginSuccess()
	m.logInfo("login succeeded", slog.String("username", reply.Username))
	if m.store != nil {
		if err := m.store.Save(State{UID: reply.UID, IssuedAt: now}); err != nil {
			m.logError("session persist failed", err)
		}
	}
	return nil
}

// EnsureValid reports whether a usable session exists, logging in when
// needed. It returns false without any network I/O once the login-attempt
// ceiling is reached.
func (m *Manager) EnsureValid(ctx context.Context) bool {
	m.mu.Lock()
	uid := m.uid
	fresh := uid != "" && m.now().Sub(m.issuedAt) < FreshnessCeiling
	probeDue := m.now().Sub(m.lastVerified) >= m.probeInterval
	failures := m.failures
	m.mu.Unlock()

	if fresh {
		if !probeDue {
			return true
		}
		switch m.probe(ctx, uid) {
		case probeOK:
			m.mu.Lock()
			m.lastVerified = m.now()
			m.mu.Unlock()
			return true
		case probeSuperseded:
			m.Invalidate()
		case probeFailed:
			// Transport trouble, not an invalid session. Let the cycle fail
			// on its own request rather than burning a login attempt.
			return false
		}
	}

	if failures >= maxLoginAttempts {
		return false
	}
	return m.Login(ctx) == nil
}

type probeResult int

const (
	probeOK probeResult = iota
	probeSuperseded
	probeFailed
)

// probe issues a minimal real listing request to confirm the server still
// honors the session.
func (m *Manager) probe(ctx context.Context, uid string) probeResult {
	body, err := m.doer.Do(ctx, protocol.BuildListingRequest(uid, domain.CategoryToday, m.now()))
	if err != nil {
		m.logError("liveness probe failed", err)
		return probeFailed
	}
	if protocol.IsDuplicateLogin(body) {
		return probeSuperseded
	}
	return probeOK
}

func (m *Manager) logInfo(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Info(msg, args...)
	}
}

func (m *Manager) logError(msg string, err error, args ...any) {
	if m.logger != nil {
		m.logger.Error(msg, append(args, "error", err)...)
	}
}
