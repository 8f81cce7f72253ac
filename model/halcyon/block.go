package halcyon

import "encoding/binary"

// BlockHeader is the fixed-size part of a block that chains it to its
// parent. Hashing the header together with a commitment to the remaining
// content yields the block hash, which is what lets finalization entries
// prove successor identity without the full block (see FinalizationEntry).
type BlockHeader struct {
	Round  Round
	Epoch  Epoch
	Parent BlockHash
}

// Bytes returns the canonical byte form of the header.
func (h BlockHeader) Bytes() []byte {
	b := make([]byte, 0, 16+HashLen)
	b = binary.BigEndian.AppendUint64(b, uint64(h.Round))
	b = binary.BigEndian.AppendUint64(b, uint64(h.Epoch))
	b = append(b, h.Parent[:]...)
	return b
}

// BlockNonce is the baker's VRF proof for the round, produced by the
// external VRF module. The core treats it as opaque bytes.
type BlockNonce []byte

// BlockItem is a transaction as carried in a block: the canonical payload
// bytes produced by the transaction subsystem, tagged with the time the item
// arrived at the baker. Decoding rejects items whose arrival time exceeds
// the caller-supplied bound.
type BlockItem struct {
	ArrivalTime Timestamp
	Payload     []byte
}

// BakedBlock is the unsigned content of a block produced by a baker for a
// round. A timeout certificate is present exactly when the round did not
// follow directly from the QC round; an epoch finalization entry is present
// only in the first block of a new epoch.
type BakedBlock struct {
	Round                   Round
	Epoch                   Epoch
	Timestamp               Timestamp
	Baker                   BakerID
	QuorumCertificate       QuorumCertificate
	TimeoutCertificate      *TimeoutCertificate
	EpochFinalizationEntry  *FinalizationEntry
	BlockNonce              BlockNonce
	StateHash               Hash
	TransactionOutcomesHash Hash
	Transactions            []BlockItem
}

// UntrustedBakedBlock is an input-only representation of a BakedBlock, used
// for construction with named fields.
type UntrustedBakedBlock BakedBlock

// NewBakedBlock validates the untrusted input and returns a BakedBlock.
// All errors indicate a valid BakedBlock cannot be constructed.
func NewBakedBlock(untrusted UntrustedBakedBlock) (*BakedBlock, error) {
	if untrusted.Round <= untrusted.QuorumCertificate.Round {
		return nil, NewInvalidMessageErrorf("block round (%d) must be above its QC round (%d)", untrusted.Round, untrusted.QuorumCertificate.Round)
	}
	directSuccessor := untrusted.Round == untrusted.QuorumCertificate.Round+1
	if directSuccessor && untrusted.TimeoutCertificate != nil {
		return nil, NewInvalidMessageErrorf("block for round %d directly follows its QC and must not carry a timeout certificate", untrusted.Round)
	}
	if !directSuccessor && untrusted.TimeoutCertificate == nil {
		return nil, NewInvalidMessageErrorf("block for round %d skips rounds after QC round %d and must carry a timeout certificate", untrusted.Round, untrusted.QuorumCertificate.Round)
	}
	if untrusted.TimeoutCertificate != nil && untrusted.TimeoutCertificate.Round+1 != untrusted.Round {
		return nil, NewInvalidMessageErrorf("timeout certificate round (%d) must immediately precede the block round (%d)", untrusted.TimeoutCertificate.Round, untrusted.Round)
	}
	if len(untrusted.BlockNonce) == 0 {
		return nil, NewInvalidMessageErrorf("block nonce must not be empty")
	}
	b := BakedBlock(untrusted)
	return &b, nil
}

// Header returns the header chaining this block to the block certified by
// its quorum certificate.
func (b *BakedBlock) Header() BlockHeader {
	return BlockHeader{
		Round:  b.Round,
		Epoch:  b.Epoch,
		Parent: b.QuorumCertificate.Block,
	}
}

// SignedBlock is a baked block together with the baker's block-key signature
// over (genesis, canonical block encoding).
type SignedBlock struct {
	Block     BakedBlock
	Signature BlockSignature
}

// UntrustedSignedBlock is an input-only representation of a SignedBlock,
// used for construction with named fields.
type UntrustedSignedBlock SignedBlock

// NewSignedBlock validates the untrusted input and returns a SignedBlock.
// All errors indicate a valid SignedBlock cannot be constructed.
func NewSignedBlock(untrusted UntrustedSignedBlock) (*SignedBlock, error) {
	block, err := NewBakedBlock(UntrustedBakedBlock(untrusted.Block))
	if err != nil {
		return nil, err
	}
	if len(untrusted.Signature) != BlockSignatureLen {
		return nil, NewInvalidMessageErrorf("block signature must be %d bytes, got %d", BlockSignatureLen, len(untrusted.Signature))
	}
	return &SignedBlock{
		Block:     *block,
		Signature: untrusted.Signature,
	}, nil
}
