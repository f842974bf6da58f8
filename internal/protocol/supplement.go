package protocol

import (
	"strings"

	"odds-sync-service/internal/domain"
)

// Supplement is the parsed result of a per-match market-detail response.
// Descriptive fields are carried for backfill only; the today/early listing
// sometimes omits them.
type Supplement struct {
	League       string
	Home         string
	Away         string
	StartTimeRaw string
	Markets      domain.Markets
}

// Empty reports whether the supplement carries no market lines at all.
func (s Supplement) Empty() bool {
	count := func(g domain.MarketGroup) int {
		n := len(g.Handicap) + len(g.OverUnder)
		if g.Moneyline != nil {
			n++
		}
		return n
	}
	return count(s.Markets.Full)+count(s.Markets.Half)+count(s.Markets.Corners) == 0
}

type marketScope int

const (
	scopeFull marketScope = iota
	scopeHalf
	scopeCorners
	scopeDiscard
)

// ParseSupplement decodes a supplement response. Each match element holds
// one market variant identified by its subtype marker. Card-count and
// corner lookalike families are recognized by the marker and by team-name
// substrings, not by tag prefixes alone.
func ParseSupplement(body []byte) (Supplement, error) {
	if IsDuplicateLogin(body) {
		return Supplement{}, ErrDuplicateLogin
	}
	elements, err := decodeElements(body, matchElement)
	if err != nil {
		return Supplement{}, err
	}
	if len(elements) == 0 {
		return Supplement{}, &ParseError{Op: "parse supplement", Err: errNoElements}
	}

	var sup Supplement
	for _, el := range elements {
		mergeVariant(&sup, el)
	}
	return sup, nil
}

func mergeVariant(sup *Supplement, el element) {
	markets := &sup.Markets
	marker := strings.ToUpper(strings.TrimSpace(el.probe(tagsVariantMarker...)))
	scope := classifyScope(marker, el.probe(tagsHome...), el.probe(tagsAway...))
	if scope == scopeDiscard {
		return
	}

	// Backfill descriptive fields only from goal-scope elements; lookalike
	// variants carry decorated team names ("Arsenal (Corners)").
	if scope == scopeFull || scope == scopeHalf {
		if sup.League == "" {
			sup.League = el.probe(tagsLeague...)
		}
		if sup.Home == "" {
			sup.Home = el.probe(tagsHome...)
		}
		if sup.Away == "" {
			sup.Away = el.probe(tagsAway...)
		}
		if sup.StartTimeRaw == "" {
			sup.StartTimeRaw = el.probe(tagsStartTime...)
		}
	}

	group := &markets.Full
	half := false
	switch scope {
	case scopeHalf:
		group = &markets.Half
		half = true
	case scopeCorners:
		group = &markets.Corners
	}

	subtype := marker
	if subtype == "" {
		subtype = "R"
	}

	if home, away := el.probe("ior_rh", "ior_hrh", "ior_reh"), el.probe("ior_rc", "ior_hrc", "ior_rec"); home != "" && away != "" {
		group.Handicap = domain.MergeHandicap(group.Handicap, []domain.HandicapLine{{
			Subtype: subtype,
			Line:    el.probe("ratio", "hratio"),
			Home:    home,
			Away:    away,
		}})
	}
	if over, under := el.probe("ior_ouc", "ior_houc", "ior_rouc"), el.probe("ior_ouh", "ior_houh", "ior_rouh"); over != "" && under != "" {
		line := el.probe("ratio_uo", "hratio_uo", "ratio_ruo", "ratio_o")
		// Goal-line plausibility only applies to goal scopes; corner totals
		// legitimately run far higher.
		if scope == scopeCorners || plausibleGoalLine(line, half) {
			group.OverUnder = domain.MergeOverUnder(group.OverUnder, []domain.OverUnderLine{{
				Subtype: subtype,
				Line:    line,
				Over:    over,
				Under:   under,
			}})
		}
	}
	if home, away := el.probe("ior_mh", "ior_hmh", "ior_rmh"), el.probe("ior_mc", "ior_hmc", "ior_rmc"); home != "" && away != "" {
		group.Moneyline = &domain.Moneyline{
			Home: home,
			Away: away,
			Draw: el.probe("ior_mn", "ior_hmn", "ior_rmn"),
		}
	}
}

// classifyScope routes a market variant to its scope, discarding the two
// lookalike families that are not scoreable goal markets: card counts and
// corner markets dressed as goal lines.
func classifyScope(marker, home, away string) marketScope {
	teams := strings.ToLower(home + " " + away)
	if markerInFamily(marker, "TC") ||
		strings.Contains(teams, "cards") ||
		strings.Contains(teams, "bookings") ||
		strings.Contains(teams, "罚牌") {
		return scopeDiscard
	}
	if markerInFamily(marker, "CN") ||
		strings.Contains(teams, "corners") ||
		strings.Contains(teams, "角球") {
		return scopeCorners
	}
	if strings.HasPrefix(marker, "H") {
		return scopeHalf
	}
	return scopeFull
}

// markerInFamily matches a family code against the marker's underscore
// segments, so "TC_OU" is a card market but a marker merely containing the
// bigram ("MATCH_OU") is not.
func markerInFamily(marker, family string) bool {
	for _, seg := range strings.Split(marker, "_") {
		if seg == family {
			return true
		}
	}
	return false
}
