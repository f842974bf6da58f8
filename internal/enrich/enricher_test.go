package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"odds-sync-service/internal/domain"
	"odds-sync-service/internal/protocol"
	"odds-sync-service/internal/teststubs"
)

const supplementOp = "get_game_more"

const supplementBody = `<serverresponse>
  <game>
    <league>Premier League</league>
    <team_h>Arsenal</team_h>
    <team_c>Chelsea</team_c>
    <datetime>03-01 20:00</datetime>
    <ratio>0.5</ratio>
    <ior_rh>0.85</ior_rh>
    <ior_rc>1.01</ior_rc>
  </game>
  <game>
    <ratio>1.0</ratio>
    <ior_rh>1.20</ior_rh>
    <ior_rc>0.70</ior_rc>
  </game>
</serverresponse>`

const supplementEmpty = `<serverresponse><m>no data</m></serverresponse>`

func newTestEngine(doer *teststubs.ScriptedDoer) *Engine {
	e := New(doer, nil, nil)
	e.delay = 0
	e.sleep = func(context.Context, time.Duration) {}
	return e
}

func liveMatch(id string, advertised, present int) *domain.Match {
	m := &domain.Match{ID: id, Category: domain.CategoryLive}
	m.MarketCounts.Handicap = advertised
	for i := 0; i < present; i++ {
		m.Markets.Full.Handicap = append(m.Markets.Full.Handicap, domain.HandicapLine{
			Subtype: "R", Line: "0.5", Home: "0.9", Away: "0.9",
		})
	}
	return m
}

func TestSelectCandidatesLiveEligibility(t *testing.T) {
	e := newTestEngine(teststubs.NewScriptedDoer())

	needsMore := liveMatch("1", 5, 1)
	saturated := liveMatch("2", 1, 1)
	today := &domain.Match{ID: "3", Category: domain.CategoryToday}

	got := e.SelectCandidates([]*domain.Match{saturated, today, needsMore})
	if len(got) != 2 {
		t.Fatalf("candidates = %d, want 2", len(got))
	}
	// Live sorts ahead of today regardless of input order.
	if got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("order = [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestSelectCandidatesOrderAndCap(t *testing.T) {
	e := newTestEngine(teststubs.NewScriptedDoer())
	e.maxPerCycle = 2

	small := liveMatch("small", 3, 0)
	big := liveMatch("big", 9, 0)
	today := &domain.Match{ID: "today", Category: domain.CategoryToday}

	got := e.SelectCandidates([]*domain.Match{small, today, big})
	if len(got) != 2 {
		t.Fatalf("candidates = %d, want cap of 2", len(got))
	}
	if got[0].ID != "big" || got[1].ID != "small" {
		t.Fatalf("order = [%s %s], want advertised-count descending", got[0].ID, got[1].ID)
	}
}

func TestEnrichMergesWithoutDuplicates(t *testing.T) {
	doer := teststubs.NewScriptedDoer()
	doer.Script(supplementOp, []byte(supplementBody))

	m := &domain.Match{ID: "9", Category: domain.CategoryToday, Home: "Arsenal"}
	m.Markets.Full.Handicap = []domain.HandicapLine{
		{Subtype: "R", Line: "0.5", Home: "0.80", Away: "1.05"},
	}

	e := newTestEngine(doer)
	if err := e.Enrich(context.Background(), "sess", []*domain.Match{m}); err != nil {
		t.Fatal(err)
	}

	lines := m.Markets.Full.Handicap
	if len(lines) != 2 {
		t.Fatalf("handicap lines = %d, want 2 (one overwritten, one appended)", len(lines))
	}
	if lines[0].Line != "0.5" || lines[0].Home != "0.85" {
		t.Fatalf("shared key not overwritten: %+v", lines[0])
	}
	if lines[1].Line != "1.0" {
		t.Fatalf("new line not appended: %+v", lines[1])
	}
}

func TestEnrichAddsDistinctLines(t *testing.T) {
	doer := teststubs.NewScriptedDoer()
	doer.Script(supplementOp, []byte(`<serverresponse>
  <game><ratio>1.0</ratio><ior_rh>1.20</ior_rh><ior_rc>0.70</ior_rc></game>
  <game><ratio>1.5</ratio><ior_rh>1.55</ior_rh><ior_rc>0.55</ior_rc></game>
</serverresponse>`))

	m := &domain.Match{ID: "9", Category: domain.CategoryToday}
	m.Markets.Full.Handicap = []domain.HandicapLine{
		{Subtype: "R", Line: "0.5", Home: "0.80", Away: "1.05"},
	}

	e := newTestEngine(doer)
	if err := e.Enrich(context.Background(), "sess", []*domain.Match{m}); err != nil {
		t.Fatal(err)
	}
	// One inline line plus two supplement lines at distinct keys: three total.
	if got := len(m.Markets.Full.Handicap); got != 3 {
		t.Fatalf("handicap lines = %d, want 3", got)
	}
}

func TestEnrichBackfillsOnlyEmptyFields(t *testing.T) {
	doer := teststubs.NewScriptedDoer()
	doer.Script(supplementOp, []byte(supplementBody))

	m := &domain.Match{ID: "9", Category: domain.CategoryToday, Home: "Listing Name"}

	e := newTestEngine(doer)
	if err := e.Enrich(context.Background(), "sess", []*domain.Match{m}); err != nil {
		t.Fatal(err)
	}
	if m.Home != "Listing Name" {
		t.Fatalf("populated field overwritten: %q", m.Home)
	}
	if m.League != "Premier League" || m.Away != "Chelsea" {
		t.Fatalf("empty fields not backfilled: league=%q away=%q", m.League, m.Away)
	}
	if m.StartTime == "" {
		t.Fatal("start time not backfilled")
	}
}

func TestEnrichWalksFallbackShapes(t *testing.T) {
	doer := teststubs.NewScriptedDoer()
	doer.Script(supplementOp, []byte(supplementBody))

	// No primary id, so the first request shape that applies uses ecid.
	m := &domain.Match{ExtendedID: "e77", Category: domain.CategoryEarly}

	e := newTestEngine(doer)
	if err := e.Enrich(context.Background(), "sess", []*domain.Match{m}); err != nil {
		t.Fatal(err)
	}

	forms := doer.FormsFor(supplementOp)
	if len(forms) != 1 {
		t.Fatalf("requests = %d, want 1", len(forms))
	}
	if forms[0].Get("ecid") != "e77" || forms[0].Has("gid") {
		t.Fatalf("unexpected identifiers: %v", forms[0])
	}
}

func TestEnrichAdvancesPastStructuralFailures(t *testing.T) {
	doer := teststubs.NewScriptedDoer()
	doer.Script(supplementOp, []byte(supplementEmpty))
	doer.Script(supplementOp, []byte(supplementBody))

	m := &domain.Match{ID: "9", Category: domain.CategoryToday}

	e := newTestEngine(doer)
	if err := e.Enrich(context.Background(), "sess", []*domain.Match{m}); err != nil {
		t.Fatal(err)
	}
	if got := doer.Calls.Load(); got != 2 {
		t.Fatalf("calls = %d, want retry after structural failure", got)
	}
	if len(m.Markets.Full.Handicap) != 2 {
		t.Fatalf("second attempt not merged: %d lines", len(m.Markets.Full.Handicap))
	}
}

func TestEnrichPropagatesDuplicateLogin(t *testing.T) {
	doer := teststubs.NewScriptedDoer()
	doer.Script(supplementOp, []byte(`<serverresponse>doubleLogin</serverresponse>`))

	m := &domain.Match{ID: "9", Category: domain.CategoryToday}

	e := newTestEngine(doer)
	err := e.Enrich(context.Background(), "sess", []*domain.Match{m})
	if !errors.Is(err, protocol.ErrDuplicateLogin) {
		t.Fatalf("err = %v, want duplicate-login", err)
	}
}

func TestEnrichAbsorbsExhaustedMatches(t *testing.T) {
	doer := teststubs.NewScriptedDoer()
	doer.Fail(supplementOp, errors.New("boom"))

	broken := &domain.Match{ID: "1", Category: domain.CategoryToday}

	e := newTestEngine(doer)
	if err := e.Enrich(context.Background(), "sess", []*domain.Match{broken}); err != nil {
		t.Fatalf("per-match exhaustion must not fail the batch: %v", err)
	}
}

func TestFallbackTableLoads(t *testing.T) {
	if fallbacks.Version == 0 {
		t.Fatal("fallback table missing version")
	}
	if len(fallbacks.Attempts) == 0 || len(fallbacks.Locales) == 0 {
		t.Fatal("fallback table incomplete")
	}
	// The primary shape uses the main identifier alone.
	if len(fallbacks.Attempts[0].Use) != 1 || fallbacks.Attempts[0].Use[0] != "gid" {
		t.Fatalf("first attempt = %v", fallbacks.Attempts[0].Use)
	}
}
