package halcyon

// TimeoutCertificate proves that a quorum of finalizers gave up on a round.
// Each contributing finalizer attested the round of the highest QC it knew;
// those attestations are grouped by round in per-epoch buckets. MinEpoch is
// the epoch of the first bucket, MinEpoch+1 that of the second. The second
// bucket is empty unless the quorum straddled an epoch transition; an empty
// bucket stays empty in the canonical form and on the wire (it is never
// substituted by a copy of the first).
type TimeoutCertificate struct {
	Round                 Round
	MinEpoch              Epoch
	FinalizerRoundsFirst  FinalizerRounds
	FinalizerRoundsSecond FinalizerRounds
	AggregateSignature    TimeoutSignature
}

// UntrustedTimeoutCertificate is an input-only representation of a
// TimeoutCertificate, used for construction with named fields.
type UntrustedTimeoutCertificate TimeoutCertificate

// NewTimeoutCertificate validates the untrusted input and returns a
// TimeoutCertificate. Cryptographic validity of the aggregate requires the
// committee keys and is checked in consensus/verification.
// All errors indicate a valid TimeoutCertificate cannot be constructed.
func NewTimeoutCertificate(untrusted UntrustedTimeoutCertificate) (*TimeoutCertificate, error) {
	if untrusted.FinalizerRoundsFirst.IsEmpty() {
		return nil, NewInvalidCertificateErrorf("first-epoch finalizer rounds must not be empty")
	}
	if len(untrusted.AggregateSignature) != TimeoutSignatureLen {
		return nil, NewInvalidCertificateErrorf("aggregate signature must be %d bytes, got %d", TimeoutSignatureLen, len(untrusted.AggregateSignature))
	}
	// No finalizer may attest a QC round at or above the timed-out round.
	if high, ok := untrusted.FinalizerRoundsFirst.HighestRound(); ok && high >= untrusted.Round {
		return nil, NewInvalidCertificateErrorf("attested QC round (%d) must be below the timed-out round (%d)", high, untrusted.Round)
	}
	if high, ok := untrusted.FinalizerRoundsSecond.HighestRound(); ok && high >= untrusted.Round {
		return nil, NewInvalidCertificateErrorf("attested QC round (%d) must be below the timed-out round (%d)", high, untrusted.Round)
	}
	return &TimeoutCertificate{
		Round:                 untrusted.Round,
		MinEpoch:              untrusted.MinEpoch,
		FinalizerRoundsFirst:  untrusted.FinalizerRoundsFirst,
		FinalizerRoundsSecond: untrusted.FinalizerRoundsSecond,
		AggregateSignature:    untrusted.AggregateSignature,
	}, nil
}

// Equal reports whether both certificates are field-wise identical.
func (tc *TimeoutCertificate) Equal(other *TimeoutCertificate) bool {
	return tc.Round == other.Round &&
		tc.MinEpoch == other.MinEpoch &&
		tc.FinalizerRoundsFirst.Equal(other.FinalizerRoundsFirst) &&
		tc.FinalizerRoundsSecond.Equal(other.FinalizerRoundsSecond) &&
		tc.AggregateSignature.Equal(other.AggregateSignature)
}
