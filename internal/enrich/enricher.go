// Package enrich fetches supplementary per-match market detail for matches
// whose listing advertised more markets than it carried inline, and merges
// the result into the match model without duplicating lines.
package enrich

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"odds-sync-service/internal/domain"
	"odds-sync-service/internal/logging"
	"odds-sync-service/internal/metrics"
	"odds-sync-service/internal/protocol"
	"odds-sync-service/internal/timeutil"
	"odds-sync-service/internal/upstream"
)

const (
	// defaultMaxPerCycle caps supplement fetches per category cycle.
	defaultMaxPerCycle = 50
	// defaultRequestDelay spaces supplement requests to stay under the
	// upstream rate limit. The chain is serial, never pooled.
	defaultRequestDelay = 50 * time.Millisecond
)

// errExhausted reports that every fallback request shape failed for a
// match. The match keeps its inline lines.
var errExhausted = errors.New("enrich: all supplement request shapes exhausted")

// Engine fetches and merges supplementary market detail.
type Engine struct {
	doer     upstream.Doer
	logger   *slog.Logger
	recorder *metrics.Recorder

	maxPerCycle int
	delay       time.Duration
	now         func() time.Time
	sleep       func(context.Context, time.Duration)
}

// New constructs an Engine.
func New(doer upstream.Doer, logger *slog.Logger, recorder *metrics.Recorder) *Engine {
	return &Engine{
		doer:        doer,
		logger:      logger,
		recorder:    recorder,
		maxPerCycle: defaultMaxPerCycle,
		delay:       defaultRequestDelay,
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// SelectCandidates returns the matches worth a supplement fetch, ordered
// live-first then by descending advertised market count, truncated to the
// per-cycle budget. Today/early listings never report counts, so all their
// matches are eligible; live matches only when the advertised handicap or
// over/under count exceeds the lines already present.
func (e *Engine) SelectCandidates(matches []*domain.Match) []*domain.Match {
	eligible := make([]*domain.Match, 0, len(matches))
	for _, m := range matches {
		if eligibleForSupplement(m) {
			eligible = append(eligible, m)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		li, lj := eligible[i].Category == domain.CategoryLive, eligible[j].Category == domain.CategoryLive
		if li != lj {
			return li
		}
		return eligible[i].MarketCounts.Total() > eligible[j].MarketCounts.Total()
	})
	if len(eligible) > e.maxPerCycle {
		eligible = eligible[:e.maxPerCycle]
	}
	return eligible
}

func eligibleForSupplement(m *domain.Match) bool {
	if m.Category != domain.CategoryLive {
		return true
	}
	handicapLines := len(m.Markets.Full.Handicap) + len(m.Markets.Half.Handicap)
	overUnderLines := len(m.Markets.Full.OverUnder) + len(m.Markets.Half.OverUnder)
	return m.MarketCounts.Handicap > handicapLines || m.MarketCounts.OverUnder > overUnderLines
}

// Enrich fetches supplements for the selected candidates and merges them in
// place. It returns protocol.ErrDuplicateLogin as soon as any response
// carries the duplicate-login signal; per-match failures are absorbed.
func (e *Engine) Enrich(ctx context.Context, uid string, matches []*domain.Match) error {
	candidates := e.SelectCandidates(matches)
	first := true
	for _, m := range candidates {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := e.enrichOne(ctx, uid, m, &first)
		if errors.Is(err, protocol.ErrDuplicateLogin) {
			return err
		}
		if err != nil {
			e.logDebug("supplement exhausted", slog.String("match_id", m.ID), logging.FieldError, err)
		}
	}
	return nil
}

// enrichOne walks the fallback table (identifier combinations under each
// locale) and accepts the first response that parses as structurally valid
// XML, discarding the rest.
func (e *Engine) enrichOne(ctx context.Context, uid string, m *domain.Match, first *bool) error {
	for _, attempt := range fallbacks.Attempts {
		gid, ecid, lid, ok := attempt.identifiers(m.ID, m.ExtendedID, m.LeagueID)
		if !ok {
			continue
		}
		for _, locale := range fallbacks.Locales {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !*first {
				e.sleep(ctx, e.delay)
			}
			*first = false

			form := protocol.BuildSupplementRequest(uid, m.Category, gid, ecid, lid, locale)
			body, err := e.doer.Do(ctx, form)
			e.recorder.RecordSupplement(err)
			if err != nil {
				continue
			}
			sup, err := protocol.ParseSupplement(body)
			if errors.Is(err, protocol.ErrDuplicateLogin) {
				return err
			}
			if err != nil {
				continue
			}
			e.merge(m, sup)
			return nil
		}
	}
	return errExhausted
}

// merge folds the supplement into the match. Market lines merge under the
// (subtype, line) composite key; descriptive fields are backfilled only
// when the listing left them empty.
func (e *Engine) merge(m *domain.Match, sup protocol.Supplement) {
	domain.MergeMarkets(&m.Markets, sup.Markets)

	if m.League == "" {
		m.League = sup.League
	}
	if m.Home == "" {
		m.Home = sup.Home
	}
	if m.Away == "" {
		m.Away = sup.Away
	}
	if m.StartTime == "" && sup.StartTimeRaw != "" {
		m.StartTime = timeutil.NormalizeStartTime(sup.StartTimeRaw, e.now())
	}
}

func (e *Engine) logDebug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
