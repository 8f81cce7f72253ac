package halcyon

import "bytes"

const (
	// QuorumSignatureLen is the compressed size of a BLS12-381 G1 point.
	QuorumSignatureLen = 48
	// TimeoutSignatureLen equals QuorumSignatureLen; both schemes sign into G1.
	TimeoutSignatureLen = 48
	// BlockSignatureLen is the raw r||s size of an ECDSA P-256 signature.
	BlockSignatureLen = 64
)

// QuorumSignature is a BLS signature on a QuorumSignatureMessage, either
// from a single finalizer or aggregated from several by point addition.
// Aggregation lives in module/signature; the model only carries the bytes.
type QuorumSignature []byte

// EmptyQuorumSignature returns the identity element of signature
// aggregation: the serialization of the G1 identity point. Combining any
// signature with it yields that signature unchanged.
func EmptyQuorumSignature() QuorumSignature {
	s := make(QuorumSignature, QuorumSignatureLen)
	s[0] = 0xc0
	return s
}

// IsEmpty reports whether the signature is the aggregation identity.
func (s QuorumSignature) IsEmpty() bool {
	return bytes.Equal(s, EmptyQuorumSignature())
}

// Equal reports byte equality.
func (s QuorumSignature) Equal(other QuorumSignature) bool {
	return bytes.Equal(s, other)
}

// TimeoutSignature is a BLS signature on a TimeoutSignatureMessage. It
// aggregates exactly like QuorumSignature but is kept as a distinct type so
// the two cannot be confused.
type TimeoutSignature []byte

// EmptyTimeoutSignature returns the aggregation identity.
func EmptyTimeoutSignature() TimeoutSignature {
	return TimeoutSignature(EmptyQuorumSignature())
}

// IsEmpty reports whether the signature is the aggregation identity.
func (s TimeoutSignature) IsEmpty() bool {
	return bytes.Equal(s, EmptyTimeoutSignature())
}

// Equal reports byte equality.
func (s TimeoutSignature) Equal(other TimeoutSignature) bool {
	return bytes.Equal(s, other)
}

// BlockSignature is a conventional (non-aggregatable) signature produced
// with a baker's block key. It signs timeout messages and baked blocks.
type BlockSignature []byte

// Equal reports byte equality.
func (s BlockSignature) Equal(other BlockSignature) bool {
	return bytes.Equal(s, other)
}
