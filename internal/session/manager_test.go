package session

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"odds-sync-service/internal/teststubs"
	"odds-sync-service/internal/upstream"
)

const (
	loginOK       = `<serverresponse><uid>sess-1</uid><username>punter</username></serverresponse>`
	loginOK2      = `<serverresponse><uid>sess-2</uid><username>punter</username></serverresponse>`
	loginRejected = `<serverresponse><msg>username or password error</msg></serverresponse>`
	listingOK     = `<serverresponse><game><gid>1</gid></game></serverresponse>`
	listingStolen = `<serverresponse>doubleLogin</serverresponse>`
)

func newTestManager(t *testing.T, doer *teststubs.ScriptedDoer) *Manager {
	t.Helper()
	return NewManager(Config{
		Doer:        doer,
		Credentials: Credentials{Username: "user", Password: "pass"},
	})
}

func TestLoginSuccessStoresSession(t *testing.T) {
	doer := teststubs.NewScriptedDoer()
	doer.Script("chk_login", []byte(loginOK))

	m := newTestManager(t, doer)
	if err := m.Login(context.Background()); err != nil {
		t.Fatal(err)
	}
	if m.UID() != "sess-1" {
		t.Fatalf("uid = %q", m.UID())
	}
}

func TestLoginPayloadCarriesDefaultUserAgent(t *testing.T) {
	doer := teststubs.NewScriptedDoer()
	doer.Script("chk_login", []byte(loginOK))

	// No user agent configured: the payload must still carry the transport
	// default, never the base64 of an empty string.
	m := newTestManager(t, doer)
	if err := m.Login(context.Background()); err != nil {
		t.Fatal(err)
	}

	forms := doer.FormsFor("chk_login")
	if len(forms) != 1 {
		t.Fatalf("login requests = %d", len(forms))
	}
	decoded, err := base64.StdEncoding.DecodeString(forms[0].Get("userAgent"))
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != upstream.DefaultUserAgent {
		t.Fatalf("payload user agent = %q, want transport default", decoded)
	}
}

func TestLoginClassifiesRejections(t *testing.T) {
	tests := []struct {
		msg  string
		kind LoginFailureKind
	}{
		{"username or password error", KindInvalidCredentials},
		{"your account is locked", KindAccountLocked},
		{"too many attempts, please wait", KindTooManyAttempts},
		{"server on fire", KindUnknown},
	}
	for _, tc := range tests {
		if got := ClassifyLoginFailure(tc.msg); got != tc.kind {
			t.Fatalf("ClassifyLoginFailure(%q) = %q, want %q", tc.msg, got, tc.kind)
		}
	}
}

func TestEnsureValidLoginCeiling(t *testing.T) {
	doer := teststubs.NewScriptedDoer()
	doer.Script("chk_login", []byte(loginRejected))

	m := newTestManager(t, doer)
	for i := 0; i < maxLoginAttempts; i++ {
		if m.EnsureValid(context.Background()) {
			t.Fatalf("attempt %d: expected EnsureValid false", i)
		}
	}
	callsAtCeiling := doer.Calls.Load()

	// Past the ceiling no network I/O may happen at all.
	for i := 0; i < 3; i++ {
		if m.EnsureValid(context.Background()) {
			t.Fatal("expected EnsureValid false past ceiling")
		}
	}
	if doer.Calls.Load() != callsAtCeiling {
		t.Fatalf("network I/O past ceiling: %d -> %d calls", callsAtCeiling, doer.Calls.Load())
	}
}

func TestLoginSuccessResetsFailureCounter(t *testing.T) {
	doer := teststubs.NewScriptedDoer()
	doer.Script("chk_login", []byte(loginRejected))
	doer.Script("chk_login", []byte(loginOK))
	doer.Script("chk_login", []byte(loginRejected))

	m := newTestManager(t, doer)

	if m.EnsureValid(context.Background()) {
		t.Fatal("first attempt should fail")
	}
	if !m.EnsureValid(context.Background()) {
		t.Fatal("second attempt should succeed")
	}

	// Counter is back to zero: failures can accumulate to the ceiling again.
	m.Invalidate()
	m.mu.Lock()
	failures := m.failures
	m.mu.Unlock()
	if failures != 0 {
		t.Fatalf("failures = %d after success, want 0", failures)
	}
}

func TestEnsureValidFreshSessionSkipsNetwork(t *testing.T) {
	doer := teststubs.NewScriptedDoer()
	m := newTestManager(t, doer)
	m.mu.Lock()
	m.uid = "sess-1"
	m.issuedAt = time.Now()
	m.lastVerified = time.Now()
	m.mu.Unlock()

	if !m.EnsureValid(context.Background()) {
		t.Fatal("expected fresh session to be valid")
	}
	if doer.Calls.Load() != 0 {
		t.Fatalf("expected no network calls, got %d", doer.Calls.Load())
	}
}

func TestEnsureValidProbesWhenDue(t *testing.T) {
	doer := teststubs.NewScriptedDoer()
	doer.Script("get_game_list", []byte(listingOK))

	m := newTestManager(t, doer)
	m.mu.Lock()
	m.uid = "sess-1"
	m.issuedAt = time.Now()
	m.lastVerified = time.Now().Add(-time.Minute)
	m.mu.Unlock()

	if !m.EnsureValid(context.Background()) {
		t.Fatal("expected probe to confirm session")
	}
	if got := len(doer.FormsFor("get_game_list")); got != 1 {
		t.Fatalf("expected one probe request, got %d", got)
	}
}

func TestEnsureValidRecoversFromDuplicateLogin(t *testing.T) {
	doer := teststubs.NewScriptedDoer()
	doer.Script("get_game_list", []byte(listingStolen))
	doer.Script("chk_login", []byte(loginOK2))

	m := newTestManager(t, doer)
	m.mu.Lock()
	m.uid = "sess-1"
	m.issuedAt = time.Now()
	m.lastVerified = time.Now().Add(-time.Minute)
	m.mu.Unlock()

	if !m.EnsureValid(context.Background()) {
		t.Fatal("expected re-login after duplicate-login probe")
	}
	if m.UID() != "sess-2" {
		t.Fatalf("uid = %q, want fresh session", m.UID())
	}
}

func TestEnsureValidExpiredSessionForcesRelogin(t *testing.T) {
	doer := teststubs.NewScriptedDoer()
	doer.Script("chk_login", []byte(loginOK2))

	m := newTestManager(t, doer)
	m.mu.Lock()
	m.uid = "stale"
	m.issuedAt = time.Now().Add(-FreshnessCeiling - time.Minute)
	m.mu.Unlock()

	if !m.EnsureValid(context.Background()) {
		t.Fatal("expected re-login for expired session")
	}
	if m.UID() != "sess-2" {
		t.Fatalf("uid = %q", m.UID())
	}
	// The expired path must not waste a probe on the dead identifier.
	if got := len(doer.FormsFor("get_game_list")); got != 0 {
		t.Fatalf("expected no probe, got %d", got)
	}
}

func TestSessionPersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	doer := teststubs.NewScriptedDoer()
	doer.Script("chk_login", []byte(loginOK))

	m := NewManager(Config{
		Doer:        doer,
		Store:       NewStore(path),
		Credentials: Credentials{Username: "user", Password: "pass"},
	})
	if err := m.Login(context.Background()); err != nil {
		t.Fatal(err)
	}

	restarted := NewManager(Config{
		Doer:        teststubs.NewScriptedDoer(),
		Store:       NewStore(path),
		Credentials: Credentials{Username: "user", Password: "pass"},
	})
	if restarted.UID() != "sess-1" {
		t.Fatalf("restored uid = %q, want sess-1", restarted.UID())
	}
}

func TestNetworkFailureDoesNotBurnLoginAttempts(t *testing.T) {
	doer := teststubs.NewScriptedDoer()
	doer.Fail("chk_login", context.DeadlineExceeded)

	m := newTestManager(t, doer)
	for i := 0; i < 5; i++ {
		if m.EnsureValid(context.Background()) {
			t.Fatal("expected EnsureValid false on network failure")
		}
	}
	m.mu.Lock()
	failures := m.failures
	m.mu.Unlock()
	if failures != 0 {
		t.Fatalf("transport failures counted toward ceiling: %d", failures)
	}
	if doer.Calls.Load() != 5 {
		t.Fatalf("expected retry on each tick, got %d calls", doer.Calls.Load())
	}
}
