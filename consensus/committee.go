// Package consensus defines the interfaces the message and certificate core
// consumes from its collaborators: the finalization-committee membership
// service and the durable round-status store. The sub-packages implement
// signing, verification, certificate formation and persistence on top of
// the value types in model/halcyon.
package consensus

import (
	"errors"
	"fmt"

	"github.com/onflow/crypto"

	"github.com/halcyonnet/halcyon-go/model/halcyon"
)

// ErrUnknownFinalizer is returned by Committee implementations for an index
// outside the committee of the queried epoch.
var ErrUnknownFinalizer = errors.New("unknown finalizer")

// ErrUnknownBaker is returned by Committee implementations for a baker that
// is not a member of the queried epoch.
var ErrUnknownBaker = errors.New("unknown baker")

// Committee is the finalization-committee membership service for the chain.
// Implementations are provided by the protocol-state layer; the core only
// reads keys and weights by epoch.
type Committee interface {
	// FinalizerKey returns the BLS public key of the finalizer at the given
	// index in the given epoch's committee.
	// Expected errors: ErrUnknownFinalizer.
	FinalizerKey(epoch halcyon.Epoch, index halcyon.FinalizerIndex) (crypto.PublicKey, error)

	// FinalizerBlockKey returns the block-signature public key of the
	// finalizer at the given index, used to check the outer signature of its
	// timeout messages.
	// Expected errors: ErrUnknownFinalizer.
	FinalizerBlockKey(epoch halcyon.Epoch, index halcyon.FinalizerIndex) (crypto.PublicKey, error)

	// BakerKey returns the block-signature public key of the given baker in
	// the given epoch.
	// Expected errors: ErrUnknownBaker.
	BakerKey(epoch halcyon.Epoch, baker halcyon.BakerID) (crypto.PublicKey, error)

	// FinalizerWeight returns the voting weight of the finalizer at the
	// given index in the given epoch.
	// Expected errors: ErrUnknownFinalizer.
	FinalizerWeight(epoch halcyon.Epoch, index halcyon.FinalizerIndex) (uint64, error)

	// TotalWeight returns the summed voting weight of the given epoch's
	// committee.
	TotalWeight(epoch halcyon.Epoch) (uint64, error)
}

// ComputeWeightThresholdForBuildingQC returns the minimum accumulated weight
// for a quorum: the smallest integer t such that 2*totalWeight/3 < t.
// The same threshold applies to timeout certificates.
func ComputeWeightThresholdForBuildingQC(totalWeight uint64) uint64 {
	return 2*totalWeight/3 + 1
}

// SignatoriesWeight sums the weights of the given finalizer set in the given
// epoch.
func SignatoriesWeight(committee Committee, epoch halcyon.Epoch, signatories halcyon.FinalizerSet) (uint64, error) {
	var weight uint64
	for _, index := range signatories.Indices() {
		w, err := committee.FinalizerWeight(epoch, index)
		if err != nil {
			return 0, fmt.Errorf("could not get weight of finalizer %d in epoch %d: %w", index, epoch, err)
		}
		weight += w
	}
	return weight, nil
}
