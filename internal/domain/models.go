package domain

// Category identifies one of the three independent polling feeds.
type Category string

const (
	CategoryLive  Category = "live"
	CategoryToday Category = "today"
	CategoryEarly Category = "early"
)

// Categories lists all polling categories in reporting order.
func Categories() []Category {
	return []Category{CategoryLive, CategoryToday, CategoryEarly}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryLive, CategoryToday, CategoryEarly:
		return true
	}
	return false
}

// Moneyline holds straight win odds for one scope. Draw is empty for
// two-way variants.
type Moneyline struct {
	Home string `json:"home,omitempty"`
	Away string `json:"away,omitempty"`
	Draw string `json:"draw,omitempty"`
}

// HandicapLine is one handicap offer. Subtype carries the upstream market
// variant tag; live and pre-match handicaps trade under different tags and
// must stay distinct even when the line value coincides.
type HandicapLine struct {
	Subtype string `json:"subtype"`
	Line    string `json:"line"`
	Home    string `json:"home"`
	Away    string `json:"away"`
}

// OverUnderLine is one total-goals (or total-corners) offer.
type OverUnderLine struct {
	Subtype string `json:"subtype"`
	Line    string `json:"line"`
	Over    string `json:"over"`
	Under   string `json:"under"`
}

// MarketGroup collects the market kinds for one scope.
type MarketGroup struct {
	Moneyline *Moneyline      `json:"moneyline,omitempty"`
	Handicap  []HandicapLine  `json:"handicap,omitempty"`
	OverUnder []OverUnderLine `json:"overUnder,omitempty"`
}

// Markets groups market data by scope.
type Markets struct {
	Full    MarketGroup `json:"full"`
	Half    MarketGroup `json:"half"`
	Corners MarketGroup `json:"corners"`
}

// MarketCounts carries the listing's advertised number of available markets
// per kind. Used only to decide supplement eligibility, never serialized.
type MarketCounts struct {
	Handicap     int `json:"-"`
	OverUnder    int `json:"-"`
	CorrectScore int `json:"-"`
	Corners      int `json:"-"`
}

// Total returns the sum of all advertised market counts.
func (c MarketCounts) Total() int {
	return c.Handicap + c.OverUnder + c.CorrectScore + c.Corners
}

// Match is one fixture as currently known. The upstream exposes two
// identifiers for the same fixture depending on category; either may be
// empty, never both for a usable match.
type Match struct {
	ID           string       `json:"id"`
	ExtendedID   string       `json:"extendedId,omitempty"`
	LeagueID     string       `json:"leagueId,omitempty"`
	League       string       `json:"league"`
	Home         string       `json:"home"`
	Away         string       `json:"away"`
	CurrentScore string       `json:"currentScore,omitempty"`
	StatusCode   string       `json:"statusCode,omitempty"`
	ClockLabel   string       `json:"clockLabel,omitempty"`
	Category     Category     `json:"category"`
	StartTime    string       `json:"startTime,omitempty"`
	Markets      Markets      `json:"markets"`
	MarketCounts MarketCounts `json:"-"`
}

// InlineLineCount returns the number of handicap plus over/under lines
// currently attached to the match across all scopes.
func (m *Match) InlineLineCount() int {
	n := len(m.Markets.Full.Handicap) + len(m.Markets.Full.OverUnder)
	n += len(m.Markets.Half.Handicap) + len(m.Markets.Half.OverUnder)
	n += len(m.Markets.Corners.Handicap) + len(m.Markets.Corners.OverUnder)
	return n
}
