package timeutil

import (
	"strings"
	"time"
)

// StartTimeLayout is the canonical format for normalized fixture start
// times.
const StartTimeLayout = time.RFC3339

// upstreamLayout is the two-digit month-day format the wire protocol uses
// for fixture start times ("08-28 14:30"). The year is never transmitted.
const upstreamLayout = "01-02 15:04"

// NormalizeStartTime converts an upstream "MM-DD hh:mm" value into RFC3339,
// inferring the year from now: dates more than six months behind now are
// assumed to belong to the following year (the early feed lists fixtures
// across a year boundary). Unparseable input is returned unchanged.
func NormalizeStartTime(raw string, now time.Time) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := time.ParseInLocation(upstreamLayout, raw, now.Location())
	if err != nil {
		return raw
	}
	t := time.Date(now.Year(), parsed.Month(), parsed.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
	if t.Before(now.AddDate(0, -6, 0)) {
		t = t.AddDate(1, 0, 0)
	}
	return t.Format(StartTimeLayout)
}

// NormalizeClockLabel tidies the upstream phase^elapsed clock value
// ("2H^93:26") into a single space-separated label ("2H 93:26").
func NormalizeClockLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return strings.Join(strings.FieldsFunc(raw, func(r rune) bool {
		return r == '^' || r == '\n' || r == ' '
	}), " ")
}
