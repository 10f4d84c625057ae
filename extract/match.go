package extract

// MatchResult is the outcome of testing a pattern against a location.
type MatchResult uint8

const (
	// Reject: the location is not on the way to, nor inside, the pattern.
	Reject MatchResult = iota
	// PartialPrefix: the location is one frame short and the pending key
	// completes the pattern; the next value is the matched region.
	PartialPrefix
	// Exact: every pattern segment is matched by the location; the event is
	// part of the matched value.
	Exact
)

func (r MatchResult) String() string {
	switch r {
	case PartialPrefix:
		return "partial"
	case Exact:
		return "exact"
	default:
		return "reject"
	}
}

// Match tests pattern against loc plus an optional pending key.
func Match(loc Location, pending string, hasPending bool, p Pattern) MatchResult {
	n, m := loc.Len(), p.Len()
	if m == 0 {
		return Reject
	}
	common := min(n, m)
	for i := 0; i < common; i++ {
		if !segmentMatches(p.segs[i], loc.frames[i].Seg) {
			return Reject
		}
	}
	if n >= m {
		return Exact
	}
	if n == m-1 && hasPending {
		if last := p.segs[n]; last.Kind == SegmentNamed && last.Key == pending {
			return PartialPrefix
		}
	}
	return Reject
}

func segmentMatches(want, got Segment) bool {
	if want.Kind == SegmentAnyIndex {
		return got.Kind == SegmentAnyIndex
	}
	return got.Kind == SegmentNamed && got.Key == want.Key
}
