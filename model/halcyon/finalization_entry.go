package halcyon

import "github.com/onflow/crypto/hash"

// SuccessorProof is the quasi-hash committing to the remainder of a
// successor block's content. Hashing it together with the successor's header
// reproduces the successor block hash, so finalization can be checked
// without the full successor block.
type SuccessorProof = Hash

// SuccessorBlockHash derives the block hash of the immediate successor of
// the block certified by header's parent reference:
//
//	hash(header.Bytes() ++ proof)
func SuccessorBlockHash(header BlockHeader, proof SuccessorProof) BlockHash {
	hasher := hash.NewSHA3_256()
	_, _ = hasher.Write(header.Bytes())
	_, _ = hasher.Write(proof[:])
	var out BlockHash
	copy(out[:], hasher.SumHash())
	return out
}

// FinalizationEntry proves that a block is finalized: a QC on the block
// itself and a QC on its immediate successor, plus the successor proof that
// ties the successor QC's block hash to the finalized block.
type FinalizationEntry struct {
	FinalizedQC    QuorumCertificate
	SuccessorQC    QuorumCertificate
	SuccessorProof SuccessorProof
}

// UntrustedFinalizationEntry is an input-only representation of a
// FinalizationEntry, used for construction with named fields.
type UntrustedFinalizationEntry FinalizationEntry

// NewFinalizationEntry validates the successor linkage and returns a
// FinalizationEntry. It enforces:
//
//	successor.Round == finalized.Round + 1
//	successor.Epoch == finalized.Epoch
//	successor.Block == SuccessorBlockHash(header(finalized.Round+1, finalized.Epoch, finalized.Block), proof)
//
// All errors indicate a valid FinalizationEntry cannot be constructed.
func NewFinalizationEntry(untrusted UntrustedFinalizationEntry) (*FinalizationEntry, error) {
	finalized := untrusted.FinalizedQC
	successor := untrusted.SuccessorQC
	if successor.Round != finalized.Round+1 {
		return nil, NewInvalidCertificateErrorf("successor QC round (%d) must immediately follow the finalized round (%d)", successor.Round, finalized.Round)
	}
	if successor.Epoch != finalized.Epoch {
		return nil, NewInvalidCertificateErrorf("successor QC epoch (%d) must equal the finalized epoch (%d)", successor.Epoch, finalized.Epoch)
	}
	derived := SuccessorBlockHash(BlockHeader{
		Round:  finalized.Round + 1,
		Epoch:  finalized.Epoch,
		Parent: finalized.Block,
	}, untrusted.SuccessorProof)
	if successor.Block != derived {
		return nil, NewInvalidCertificateErrorf("successor QC block (%x) does not match the hash derived from the successor proof (%x)", successor.Block, derived)
	}
	return &FinalizationEntry{
		FinalizedQC:    finalized,
		SuccessorQC:    successor,
		SuccessorProof: untrusted.SuccessorProof,
	}, nil
}
