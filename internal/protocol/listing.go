package protocol

import (
	"time"

	"odds-sync-service/internal/domain"
	"odds-sync-service/internal/timeutil"
)

const matchElement = "game"

// ParseListing decodes a primary listing response into matches. The
// duplicate-login signal is checked on the raw body before any structural
// parsing so a superseded session is never mistaken for an empty listing.
func ParseListing(body []byte, category domain.Category, now time.Time) ([]domain.Match, error) {
	if IsDuplicateLogin(body) {
		return nil, ErrDuplicateLogin
	}
	elements, err := decodeElements(body, matchElement)
	if err != nil {
		return nil, err
	}
	matches := make([]domain.Match, 0, len(elements))
	for _, el := range elements {
		m := buildMatch(el, category, now)
		if m.ID == "" && m.ExtendedID == "" {
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func buildMatch(el element, category domain.Category, now time.Time) domain.Match {
	m := domain.Match{
		ID:           el.probe(tagsID...),
		ExtendedID:   el.probe(tagsExtendedID...),
		LeagueID:     el.probe(tagsLeagueID...),
		League:       el.probe(tagsLeague...),
		Home:         el.probe(tagsHome...),
		Away:         el.probe(tagsAway...),
		CurrentScore: el.probe(tagsScore...),
		StatusCode:   el.probe(tagsStatus...),
		ClockLabel:   timeutil.NormalizeClockLabel(el.probe(tagsClock...)),
		Category:     category,
		StartTime:    timeutil.NormalizeStartTime(el.probe(tagsStartTime...), now),
		MarketCounts: domain.MarketCounts{
			Handicap:     parseCount(el.probe(tagsHandicapCount...)),
			OverUnder:    parseCount(el.probe(tagsOverUnderCount...)),
			CorrectScore: parseCount(el.probe(tagsCorrectScoreCount...)),
			Corners:      parseCount(el.probe(tagsCornerCount...)),
		},
	}
	m.Markets.Full = parseFullGroup(el)
	m.Markets.Half = parseHalfGroup(el)
	return m
}

// Inline market tags. Live and pre-match variants of the same market trade
// under different tags and keep distinct subtypes; they are never folded
// together.
func parseFullGroup(el element) domain.MarketGroup {
	var g domain.MarketGroup
	if home, away := el.probe("ior_rh"), el.probe("ior_rc"); home != "" && away != "" {
		g.Handicap = append(g.Handicap, domain.HandicapLine{
			Subtype: "R",
			Line:    el.probe("ratio"),
			Home:    home,
			Away:    away,
		})
	}
	if home, away := el.probe("ior_reh"), el.probe("ior_rec"); home != "" && away != "" {
		g.Handicap = append(g.Handicap, domain.HandicapLine{
			Subtype: "RE",
			Line:    el.probe("ratio_re", "ratio"),
			Home:    home,
			Away:    away,
		})
	}
	if over, under := el.probe("ior_ouc"), el.probe("ior_ouh"); over != "" && under != "" {
		if line := el.probe("ratio_uo", "ratio_o"); plausibleGoalLine(line, false) {
			g.OverUnder = append(g.OverUnder, domain.OverUnderLine{
				Subtype: "OU",
				Line:    line,
				Over:    over,
				Under:   under,
			})
		}
	}
	if over, under := el.probe("ior_rouc"), el.probe("ior_rouh"); over != "" && under != "" {
		if line := el.probe("ratio_ruo", "ratio_uo"); plausibleGoalLine(line, false) {
			g.OverUnder = append(g.OverUnder, domain.OverUnderLine{
				Subtype: "ROU",
				Line:    line,
				Over:    over,
				Under:   under,
			})
		}
	}
	if home, away := el.probe("ior_mh", "ior_rmh"), el.probe("ior_mc", "ior_rmc"); home != "" && away != "" {
		g.Moneyline = &domain.Moneyline{
			Home: home,
			Away: away,
			Draw: el.probe("ior_mn", "ior_rmn"),
		}
	}
	return g
}

func parseHalfGroup(el element) domain.MarketGroup {
	var g domain.MarketGroup
	if home, away := el.probe("ior_hrh"), el.probe("ior_hrc"); home != "" && away != "" {
		g.Handicap = append(g.Handicap, domain.HandicapLine{
			Subtype: "HR",
			Line:    el.probe("hratio"),
			Home:    home,
			Away:    away,
		})
	}
	if over, under := el.probe("ior_houc"), el.probe("ior_houh"); over != "" && under != "" {
		if line := el.probe("hratio_uo", "hratio_o"); plausibleGoalLine(line, true) {
			g.OverUnder = append(g.OverUnder, domain.OverUnderLine{
				Subtype: "HOU",
				Line:    line,
				Over:    over,
				Under:   under,
			})
		}
	}
	if home, away := el.probe("ior_hmh"), el.probe("ior_hmc"); home != "" && away != "" {
		g.Moneyline = &domain.Moneyline{
			Home: home,
			Away: away,
			Draw: el.probe("ior_hmn"),
		}
	}
	return g
}
