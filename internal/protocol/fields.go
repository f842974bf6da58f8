package protocol

import (
	"strconv"
	"strings"
)

// Ordered candidate tag names per logical field. The upstream renames the
// same field between categories and locales; first non-empty candidate
// wins. The lists are a tolerance layer and must stay ordered.
var (
	tagsID         = []string{"gid", "gidm", "id"}
	tagsExtendedID = []string{"ecid", "eventid"}
	tagsLeague     = []string{"league", "league_name", "lname"}
	tagsHome       = []string{"team_h", "team_name_h", "home"}
	tagsAway       = []string{"team_c", "team_name_c", "away"}
	tagsScore      = []string{"score", "now_score", "score_all"}
	tagsStatus     = []string{"status", "gstatus"}
	tagsClock      = []string{"retimeset", "re_time"}
	tagsStartTime  = []string{"datetime", "opentime"}
	tagsLeagueID   = []string{"lid", "league_id"}

	tagsHandicapCount     = []string{"r_count", "hdp_count"}
	tagsOverUnderCount    = []string{"ou_count"}
	tagsCorrectScoreCount = []string{"pd_count"}
	tagsCornerCount       = []string{"cn_count"}

	tagsVariantMarker = []string{"ptype", "ltype_name", "model"}
)

// Over/under plausibility ceilings. A parsed goal line averaging above the
// ceiling is a mis-tagged corner or card market that slipped past the
// family filter. Empirical values carried over from observed traffic.
const (
	MaxPlausibleFullLine = 6.0
	MaxPlausibleHalfLine = 3.5
)

// lineAverage parses an upstream line expression into its numeric average.
// Quarter lines arrive as "2.5/3" or "2.5-3"; plain lines as "2.5".
func lineAverage(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) == 0 {
		return 0, false
	}
	var sum float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, false
		}
		sum += v
	}
	return sum / float64(len(parts)), true
}

// plausibleGoalLine reports whether an over/under line is believable for a
// goal market in the given scope. Unparseable lines are kept; the filter
// only rejects confidently implausible values.
func plausibleGoalLine(raw string, half bool) bool {
	avg, ok := lineAverage(raw)
	if !ok {
		return true
	}
	if half {
		return avg <= MaxPlausibleHalfLine
	}
	return avg <= MaxPlausibleFullLine
}

func parseCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
