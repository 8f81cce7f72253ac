package halcyon

import (
	"math/bits"

	"golang.org/x/exp/slices"
)

// FinalizerSet records which members of the finalization committee
// contributed to an aggregate signature. It is a bitset keyed by
// FinalizerIndex with no inherent upper bound on committee size.
//
// Canonical form: the highest word is non-zero (no trailing zero words).
// All constructors and operations preserve canonical form, so two sets over
// the same indices are always deep-equal.
type FinalizerSet struct {
	// words[i] covers indices [64*i, 64*i+63], least significant bit first.
	words []uint64
}

// NewFinalizerSet builds the set of the given indices. Duplicates collapse
// and input order is irrelevant.
func NewFinalizerSet(indices []FinalizerIndex) FinalizerSet {
	var s FinalizerSet
	for _, ix := range indices {
		s.add(ix)
	}
	return s
}

func (s *FinalizerSet) add(ix FinalizerIndex) {
	word := int(ix / 64)
	for len(s.words) <= word {
		s.words = append(s.words, 0)
	}
	s.words[word] |= 1 << (ix % 64)
}

// Contains reports whether the given finalizer is in the set.
func (s FinalizerSet) Contains(ix FinalizerIndex) bool {
	word := int(ix / 64)
	if word >= len(s.words) {
		return false
	}
	return s.words[word]&(1<<(ix%64)) != 0
}

// Indices returns the members in ascending order without duplicates.
// NewFinalizerSet and Indices are mutual inverses up to deduplication and
// ordering of the input.
func (s FinalizerSet) Indices() []FinalizerIndex {
	indices := make([]FinalizerIndex, 0, s.Cardinality())
	for w, word := range s.words {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			indices = append(indices, FinalizerIndex(w*64+b))
			word &^= 1 << b
		}
	}
	return indices
}

// Union returns the set of finalizers present in either operand.
func (s FinalizerSet) Union(other FinalizerSet) FinalizerSet {
	longer, shorter := s.words, other.words
	if len(shorter) > len(longer) {
		longer, shorter = shorter, longer
	}
	words := slices.Clone(longer)
	for i, w := range shorter {
		words[i] |= w
	}
	return FinalizerSet{words: words}
}

// Cardinality returns the number of members.
func (s FinalizerSet) Cardinality() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// IsEmpty reports whether the set has no members.
func (s FinalizerSet) IsEmpty() bool {
	return len(s.words) == 0
}

// Equal reports whether both sets contain exactly the same finalizers.
func (s FinalizerSet) Equal(other FinalizerSet) bool {
	return slices.Equal(s.words, other.words)
}

// Bytes returns the minimal big-endian byte representation of the bitset,
// interpreting bit i as finalizer index i counted from the least significant
// end. The empty set yields nil. The first byte of a non-empty result is
// always non-zero, which is what makes the wire form canonical.
func (s FinalizerSet) Bytes() []byte {
	if len(s.words) == 0 {
		return nil
	}
	// Highest word is non-zero by the canonical-form invariant.
	high := s.words[len(s.words)-1]
	highBytes := 8 - bits.LeadingZeros64(high)/8
	out := make([]byte, highBytes+8*(len(s.words)-1))
	pos := 0
	for i := highBytes - 1; i >= 0; i-- {
		out[pos] = byte(high >> (8 * i))
		pos++
	}
	for w := len(s.words) - 2; w >= 0; w-- {
		word := s.words[w]
		for i := 7; i >= 0; i-- {
			out[pos] = byte(word >> (8 * i))
			pos++
		}
	}
	return out
}

// FinalizerSetFromBytes reconstructs a set from its minimal big-endian
// representation. It rejects non-canonical input (a leading zero byte), so
// Bytes and FinalizerSetFromBytes are mutual inverses.
func FinalizerSetFromBytes(b []byte) (FinalizerSet, error) {
	if len(b) == 0 {
		return FinalizerSet{}, nil
	}
	if b[0] == 0 {
		return FinalizerSet{}, NewInvalidEncodingErrorf("finalizer set has leading zero byte")
	}
	words := make([]uint64, (len(b)+7)/8)
	for i := 0; i < len(b); i++ {
		// b[len(b)-1] is bit 0..7, proceeding towards higher indices.
		byteIx := len(b) - 1 - i
		words[i/8] |= uint64(b[byteIx]) << (8 * (i % 8))
	}
	return FinalizerSet{words: words}, nil
}
