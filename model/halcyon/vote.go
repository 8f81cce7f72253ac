package halcyon

import "encoding/binary"

// QuorumSignatureMessage is the canonical byte domain a finalizer signs to
// vote for a block. The genesis hash is included for domain separation so a
// signature can never be replayed on a different chain.
type QuorumSignatureMessage struct {
	Genesis Hash
	Block   BlockHash
	Round   Round
	Epoch   Epoch
}

// Bytes returns the canonical byte form of the message. Each structure that
// gets signed contains the (sometimes redundant) round and epoch so the
// signed message can be reconstructed and verified without the full block.
func (m QuorumSignatureMessage) Bytes() []byte {
	msg := make([]byte, 0, 2*HashLen+16)
	msg = append(msg, m.Genesis[:]...)
	msg = append(msg, m.Block[:]...)
	msg = binary.BigEndian.AppendUint64(msg, uint64(m.Round))
	msg = binary.BigEndian.AppendUint64(msg, uint64(m.Epoch))
	return msg
}

// QuorumMessage is a single finalizer's signed vote for a block in a round.
// Its signature must verify against the finalizer's public key for the
// QuorumSignatureMessage derived from the message fields and the chain's
// genesis hash.
//
// An instance should be built through NewQuorumMessage, which validates the
// untrusted input representation.
type QuorumMessage struct {
	Signature QuorumSignature
	Block     BlockHash
	Finalizer FinalizerIndex
	Round     Round
	Epoch     Epoch
}

// UntrustedQuorumMessage is an input-only representation of a QuorumMessage,
// used for construction with named fields.
type UntrustedQuorumMessage QuorumMessage

// NewQuorumMessage validates the untrusted input and returns a QuorumMessage.
// All errors indicate a valid QuorumMessage cannot be constructed.
func NewQuorumMessage(untrusted UntrustedQuorumMessage) (*QuorumMessage, error) {
	if len(untrusted.Signature) != QuorumSignatureLen {
		return nil, NewInvalidMessageErrorf("quorum signature must be %d bytes, got %d", QuorumSignatureLen, len(untrusted.Signature))
	}
	if untrusted.Block == ZeroHash {
		return nil, NewInvalidMessageErrorf("block hash must not be zero")
	}
	return &QuorumMessage{
		Signature: untrusted.Signature,
		Block:     untrusted.Block,
		Finalizer: untrusted.Finalizer,
		Round:     untrusted.Round,
		Epoch:     untrusted.Epoch,
	}, nil
}

// SignatureMessage reconstructs the byte domain this message's signature
// covers, given the genesis hash of the chain.
func (m *QuorumMessage) SignatureMessage(genesis Hash) QuorumSignatureMessage {
	return QuorumSignatureMessage{
		Genesis: genesis,
		Block:   m.Block,
		Round:   m.Round,
		Epoch:   m.Epoch,
	}
}
