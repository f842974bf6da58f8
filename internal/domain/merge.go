package domain

// lineKey is the uniqueness key for a market line entry. Two offers with the
// same upstream subtype and line value are the same logical line; the later
// merge wins its side values.
type lineKey struct {
	subtype string
	line    string
}

func (l HandicapLine) key() lineKey  { return lineKey{l.Subtype, l.Line} }
func (l OverUnderLine) key() lineKey { return lineKey{l.Subtype, l.Line} }

// MergeHandicap merges src into dst, overwriting entries that share a
// (subtype, line) key and appending the rest in src order. Merging the same
// batch twice yields the same result as merging it once.
func MergeHandicap(dst, src []HandicapLine) []HandicapLine {
	idx := make(map[lineKey]int, len(dst))
	for i, l := range dst {
		idx[l.key()] = i
	}
	for _, l := range src {
		if i, ok := idx[l.key()]; ok {
			dst[i] = l
			continue
		}
		idx[l.key()] = len(dst)
		dst = append(dst, l)
	}
	return dst
}

// MergeOverUnder merges src into dst with the same key semantics as
// MergeHandicap.
func MergeOverUnder(dst, src []OverUnderLine) []OverUnderLine {
	idx := make(map[lineKey]int, len(dst))
	for i, l := range dst {
		idx[l.key()] = i
	}
	for _, l := range src {
		if i, ok := idx[l.key()]; ok {
			dst[i] = l
			continue
		}
		idx[l.key()] = len(dst)
		dst = append(dst, l)
	}
	return dst
}

// MergeGroup merges src's lines and moneyline into dst. The moneyline is
// replaced only when src carries one.
func MergeGroup(dst *MarketGroup, src MarketGroup) {
	if src.Moneyline != nil {
		ml := *src.Moneyline
		dst.Moneyline = &ml
	}
	dst.Handicap = MergeHandicap(dst.Handicap, src.Handicap)
	dst.OverUnder = MergeOverUnder(dst.OverUnder, src.OverUnder)
}

// MergeMarkets merges every scope of src into dst.
func MergeMarkets(dst *Markets, src Markets) {
	MergeGroup(&dst.Full, src.Full)
	MergeGroup(&dst.Half, src.Half)
	MergeGroup(&dst.Corners, src.Corners)
}
