package domain

// Breakdown reports how many matches each category contributed to a
// snapshot.
type Breakdown struct {
	Live  int `json:"live"`
	Today int `json:"today"`
	Early int `json:"early"`
}

// Snapshot is the combined document written for downstream consumers. It is
// always replaced wholesale; readers never see a partial write.
type Snapshot struct {
	Timestamp  int64     `json:"timestamp"`
	Matches    []Match   `json:"matches"`
	MatchCount int       `json:"matchCount"`
	Breakdown  Breakdown `json:"breakdown"`
}

// NewSnapshot builds a Snapshot from the per-category match sets, in
// live/today/early order.
func NewSnapshot(timestampMS int64, live, today, early []Match) Snapshot {
	matches := make([]Match, 0, len(live)+len(today)+len(early))
	matches = append(matches, live...)
	matches = append(matches, today...)
	matches = append(matches, early...)
	return Snapshot{
		Timestamp:  timestampMS,
		Matches:    matches,
		MatchCount: len(matches),
		Breakdown:  Breakdown{Live: len(live), Today: len(today), Early: len(early)},
	}
}
