package signature

import (
	"github.com/onflow/crypto"
	"github.com/onflow/crypto/hash"
)

// List of domain separation tags for protocol signatures.
//
// Quorum and timeout votes use the BLS signature scheme; the hash-to-curve
// step includes a tag scoping each signature to its sub-protocol, simulating
// orthogonal random oracles. Chain-level separation is achieved separately
// by embedding the genesis hash in every signed message.

const protocolPrefix = "HALCYON-"
const protocolVersion = "-V01-"
const cipherSuiteIndex = "CS00-"

func tag(domain string) string {
	return protocolPrefix + domain + protocolVersion + cipherSuiteIndex + "with-"
}

var (
	// QuorumVoteTag is used for finalizer quorum votes.
	QuorumVoteTag = tag("Quorum_Vote")
	// TimeoutVoteTag is used for finalizer timeout votes.
	TimeoutVoteTag = tag("Timeout_Vote")
)

// NewBLSHasher returns a hasher to be used for BLS signing and verifying
// under the given domain tag. It is the expand-message step of the BLS
// hash-to-curve, an XOF based on KMAC128.
func NewBLSHasher(tag string) hash.Hasher {
	return crypto.NewExpandMsgXOFKMAC128(tag)
}

// NewBlockSignatureHasher returns the hasher for the conventional
// (non-aggregatable) block signature scheme: ECDSA P-256 over SHA3-256.
// Block and timeout-message signatures are chain-scoped by prefixing the
// genesis hash to the signed bytes rather than by a tag.
func NewBlockSignatureHasher() hash.Hasher {
	return hash.NewSHA3_256()
}
