package halcyon

// QuorumCertificate proves that a quorum of finalizers voted for a specific
// block at a specific round and epoch. The aggregate signature must verify
// against the union of the signatories' public keys for the
// QuorumSignatureMessage over (block, round, epoch).
type QuorumCertificate struct {
	Block              BlockHash
	Round              Round
	Epoch              Epoch
	AggregateSignature QuorumSignature
	Signatories        FinalizerSet
}

// UntrustedQuorumCertificate is an input-only representation of a
// QuorumCertificate, used for construction with named fields.
type UntrustedQuorumCertificate QuorumCertificate

// NewQuorumCertificate validates the untrusted input and returns a
// QuorumCertificate. Cryptographic validity of the aggregate is not checked
// here; that requires the committee keys (consensus/verification).
// All errors indicate a valid QuorumCertificate cannot be constructed.
func NewQuorumCertificate(untrusted UntrustedQuorumCertificate) (*QuorumCertificate, error) {
	if untrusted.Block == ZeroHash {
		return nil, NewInvalidCertificateErrorf("block hash must not be zero")
	}
	if len(untrusted.AggregateSignature) != QuorumSignatureLen {
		return nil, NewInvalidCertificateErrorf("aggregate signature must be %d bytes, got %d", QuorumSignatureLen, len(untrusted.AggregateSignature))
	}
	if untrusted.Signatories.IsEmpty() {
		return nil, NewInvalidCertificateErrorf("signatories must not be empty")
	}
	return &QuorumCertificate{
		Block:              untrusted.Block,
		Round:              untrusted.Round,
		Epoch:              untrusted.Epoch,
		AggregateSignature: untrusted.AggregateSignature,
		Signatories:        untrusted.Signatories,
	}, nil
}

// SignatureMessage reconstructs the byte domain every contributing vote
// signed, given the genesis hash of the chain.
func (qc *QuorumCertificate) SignatureMessage(genesis Hash) QuorumSignatureMessage {
	return QuorumSignatureMessage{
		Genesis: genesis,
		Block:   qc.Block,
		Round:   qc.Round,
		Epoch:   qc.Epoch,
	}
}

// Equal reports whether both certificates are field-wise identical.
func (qc *QuorumCertificate) Equal(other *QuorumCertificate) bool {
	return qc.Block == other.Block &&
		qc.Round == other.Round &&
		qc.Epoch == other.Epoch &&
		qc.AggregateSignature.Equal(other.AggregateSignature) &&
		qc.Signatories.Equal(other.Signatories)
}
