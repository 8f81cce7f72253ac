package signature

import (
	"fmt"

	"github.com/onflow/crypto"
	"github.com/onflow/crypto/hash"

	"github.com/halcyonnet/halcyon-go/model/halcyon"
)

// This file implements the signature operations of the protocol:
// BLS signing of quorum and timeout signature messages, same-message
// aggregation (point addition), aggregate verification against summed
// public keys, and the multi-message pairing check used for timeout
// certificates, whose contributing votes attest different QC rounds.
//
// Signature combination forms a commutative monoid: Combine* is commutative
// and associative, with halcyon.EmptyQuorumSignature (the G1 identity
// point) as the identity element. Aggregating signatures over different
// messages is legal bit-wise; the resulting aggregate only verifies under
// the many-messages check that pairs each public key with its own message.

// SignQuorumSignatureMessage signs the canonical bytes of msg with the
// finalizer's BLS key.
func SignQuorumSignatureMessage(sk crypto.PrivateKey, msg halcyon.QuorumSignatureMessage) (halcyon.QuorumSignature, error) {
	sig, err := sk.Sign(msg.Bytes(), NewBLSHasher(QuorumVoteTag))
	if err != nil {
		return nil, fmt.Errorf("could not sign quorum signature message: %w", err)
	}
	return halcyon.QuorumSignature(sig), nil
}

// CheckQuorumSignatureSingle verifies a single finalizer's signature on msg.
func CheckQuorumSignatureSingle(msg halcyon.QuorumSignatureMessage, pk crypto.PublicKey, sig halcyon.QuorumSignature) (bool, error) {
	return pk.Verify(crypto.Signature(sig), msg.Bytes(), NewBLSHasher(QuorumVoteTag))
}

// CheckQuorumSignature verifies one aggregate signature on msg against the
// sum of the supplied public keys. The caller supplies exactly the keys of
// the claimed signatories, derived from the certificate's finalizer set.
func CheckQuorumSignature(msg halcyon.QuorumSignatureMessage, pks []crypto.PublicKey, aggregate halcyon.QuorumSignature) (bool, error) {
	return crypto.VerifyBLSSignatureOneMessage(pks, crypto.Signature(aggregate), msg.Bytes(), NewBLSHasher(QuorumVoteTag))
}

// CombineQuorumSignatures adds the two signature points. Both operands must
// carry signatures over the same message for the result to verify under
// CheckQuorumSignature.
func CombineQuorumSignatures(a, b halcyon.QuorumSignature) (halcyon.QuorumSignature, error) {
	combined, err := combine(crypto.Signature(a), crypto.Signature(b), a.IsEmpty(), b.IsEmpty())
	if err != nil {
		return nil, err
	}
	return halcyon.QuorumSignature(combined), nil
}

// SignTimeoutSignatureMessage signs the canonical bytes of msg with the
// finalizer's BLS key.
func SignTimeoutSignatureMessage(sk crypto.PrivateKey, msg halcyon.TimeoutSignatureMessage) (halcyon.TimeoutSignature, error) {
	sig, err := sk.Sign(msg.Bytes(), NewBLSHasher(TimeoutVoteTag))
	if err != nil {
		return nil, fmt.Errorf("could not sign timeout signature message: %w", err)
	}
	return halcyon.TimeoutSignature(sig), nil
}

// CheckTimeoutSignatureSingle verifies a single finalizer's signature on msg.
func CheckTimeoutSignatureSingle(msg halcyon.TimeoutSignatureMessage, pk crypto.PublicKey, sig halcyon.TimeoutSignature) (bool, error) {
	return pk.Verify(crypto.Signature(sig), msg.Bytes(), NewBLSHasher(TimeoutVoteTag))
}

// CheckTimeoutSignature verifies one aggregate signature against the sum of
// the supplied public keys, for contributors that all attested the same msg.
func CheckTimeoutSignature(msg halcyon.TimeoutSignatureMessage, pks []crypto.PublicKey, aggregate halcyon.TimeoutSignature) (bool, error) {
	return crypto.VerifyBLSSignatureOneMessage(pks, crypto.Signature(aggregate), msg.Bytes(), NewBLSHasher(TimeoutVoteTag))
}

// CheckTimeoutSignatureMany verifies one aggregate over heterogeneous
// timeout signature messages: pks[i] (itself possibly an aggregate of the
// keys of a same-message group) is paired with msgs[i]. This is the check
// backing timeout certificates, where finalizers attest different QC rounds.
func CheckTimeoutSignatureMany(msgs []halcyon.TimeoutSignatureMessage, pks []crypto.PublicKey, aggregate halcyon.TimeoutSignature) (bool, error) {
	if len(msgs) != len(pks) {
		return false, fmt.Errorf("%d messages for %d public keys", len(msgs), len(pks))
	}
	messages := make([][]byte, len(msgs))
	hashers := make([]hash.Hasher, len(msgs))
	for i, m := range msgs {
		messages[i] = m.Bytes()
		hashers[i] = NewBLSHasher(TimeoutVoteTag)
	}
	return crypto.VerifyBLSSignatureManyMessages(pks, crypto.Signature(aggregate), messages, hashers)
}

// CombineTimeoutSignatures adds the two signature points. Unlike quorum
// aggregation, timeout certificates legitimately combine signatures over
// different messages; verification goes through CheckTimeoutSignatureMany.
func CombineTimeoutSignatures(a, b halcyon.TimeoutSignature) (halcyon.TimeoutSignature, error) {
	combined, err := combine(crypto.Signature(a), crypto.Signature(b), a.IsEmpty(), b.IsEmpty())
	if err != nil {
		return nil, err
	}
	return halcyon.TimeoutSignature(combined), nil
}

// AggregatePublicKeys sums the given BLS public keys.
func AggregatePublicKeys(pks []crypto.PublicKey) (crypto.PublicKey, error) {
	return crypto.AggregateBLSPublicKeys(pks)
}

func combine(a, b crypto.Signature, aEmpty, bEmpty bool) (crypto.Signature, error) {
	// The identity element short-circuits so that combining never hands the
	// identity point to the crypto library.
	if aEmpty {
		return b, nil
	}
	if bEmpty {
		return a, nil
	}
	combined, err := crypto.AggregateBLSSignatures([]crypto.Signature{a, b})
	if err != nil {
		return nil, fmt.Errorf("could not combine signatures: %w (%w)", err, ErrInvalidSignatureFormat)
	}
	return combined, nil
}
