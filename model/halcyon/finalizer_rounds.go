package halcyon

// FinalizerRounds is an ordered mapping from rounds to the finalizers whose
// highest quorum certificate was for that round. A timeout certificate
// carries one such mapping per epoch bucket; keys need not be distinct
// across the two buckets of one certificate.
//
// The zero value is the empty mapping.
type FinalizerRounds struct {
	// pairs is kept sorted by strictly ascending round.
	pairs []FinalizerRound
}

// FinalizerRound is one entry of a FinalizerRounds mapping.
type FinalizerRound struct {
	Round      Round
	Finalizers FinalizerSet
}

// NewFinalizerRounds builds an ordered mapping from the given entries.
// Entries for the same round are unioned.
func NewFinalizerRounds(entries ...FinalizerRound) FinalizerRounds {
	var fr FinalizerRounds
	for _, e := range entries {
		fr.Add(e.Round, e.Finalizers)
	}
	return fr
}

// Add unions the given finalizers into the entry for round, creating the
// entry if it does not exist yet.
func (fr *FinalizerRounds) Add(round Round, finalizers FinalizerSet) {
	lo, hi := 0, len(fr.pairs)
	for lo < hi {
		mid := (lo + hi) / 2
		if fr.pairs[mid].Round < round {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(fr.pairs) && fr.pairs[lo].Round == round {
		fr.pairs[lo].Finalizers = fr.pairs[lo].Finalizers.Union(finalizers)
		return
	}
	fr.pairs = append(fr.pairs, FinalizerRound{})
	copy(fr.pairs[lo+1:], fr.pairs[lo:])
	fr.pairs[lo] = FinalizerRound{Round: round, Finalizers: finalizers}
}

// Lookup returns the finalizer set recorded for round.
func (fr FinalizerRounds) Lookup(round Round) (FinalizerSet, bool) {
	for _, p := range fr.pairs {
		if p.Round == round {
			return p.Finalizers, true
		}
	}
	return FinalizerSet{}, false
}

// Entries returns the mapping in ascending round order. The returned slice
// is shared with the mapping and must not be mutated.
func (fr FinalizerRounds) Entries() []FinalizerRound {
	return fr.pairs
}

// IsEmpty reports whether the mapping has no entries.
func (fr FinalizerRounds) IsEmpty() bool {
	return len(fr.pairs) == 0
}

// HighestRound returns the largest round key, or false for the empty mapping.
func (fr FinalizerRounds) HighestRound() (Round, bool) {
	if len(fr.pairs) == 0 {
		return 0, false
	}
	return fr.pairs[len(fr.pairs)-1].Round, true
}

// Equal reports whether both mappings hold the same rounds with the same
// finalizer sets.
func (fr FinalizerRounds) Equal(other FinalizerRounds) bool {
	if len(fr.pairs) != len(other.pairs) {
		return false
	}
	for i, p := range fr.pairs {
		q := other.pairs[i]
		if p.Round != q.Round || !p.Finalizers.Equal(q.Finalizers) {
			return false
		}
	}
	return true
}
