// Package votecollector assembles quorum certificates from streaming quorum
// votes for one specific (block, round, epoch).
package votecollector

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/halcyonnet/halcyon-go/consensus"
	"github.com/halcyonnet/halcyon-go/consensus/verification"
	"github.com/halcyonnet/halcyon-go/model/halcyon"
	"github.com/halcyonnet/halcyon-go/module"
	"github.com/halcyonnet/halcyon-go/module/signature"
)

var (
	// ErrVoteForIncompatibleBlock is returned for votes on a different block
	// than the collector's target. Expected during normal operation under
	// byzantine or lagging peers.
	ErrVoteForIncompatibleBlock = errors.New("vote for incompatible block")

	// ErrVoteForIncompatibleRound is returned for votes on a different
	// round or epoch than the collector's target.
	ErrVoteForIncompatibleRound = errors.New("vote for incompatible round")
)

// OnQCCreated is called exactly once, when the collector reaches quorum
// weight and assembles the certificate.
type OnQCCreated func(*halcyon.QuorumCertificate)

// VoteCollector folds verified quorum votes into an aggregate until quorum
// weight is reached, then emits the QC through the callback. Process may be
// called from multiple goroutines; aggregation of the finalizer set and the
// signature is serialized internally per the certificate-formation contract.
type VoteCollector struct {
	log       zerolog.Logger
	metrics   module.ConsensusMetrics
	committee consensus.Committee
	verifier  *verification.Verifier

	block halcyon.BlockHash
	round halcyon.Round
	epoch halcyon.Epoch

	mu          sync.Mutex
	aggregator  *signature.QuorumSignatureAggregator
	weight      uint64
	threshold   uint64
	done        atomic.Bool
	onQCCreated OnQCCreated
}

// New creates a collector for votes on the given block at (round, epoch).
func New(
	log zerolog.Logger,
	metrics module.ConsensusMetrics,
	committee consensus.Committee,
	verifier *verification.Verifier,
	genesis halcyon.Hash,
	block halcyon.BlockHash,
	round halcyon.Round,
	epoch halcyon.Epoch,
	onQCCreated OnQCCreated,
) (*VoteCollector, error) {
	total, err := committee.TotalWeight(epoch)
	if err != nil {
		return nil, fmt.Errorf("could not get total weight of epoch %d: %w", epoch, err)
	}
	msg := halcyon.QuorumSignatureMessage{
		Genesis: genesis,
		Block:   block,
		Round:   round,
		Epoch:   epoch,
	}
	return &VoteCollector{
		log: log.With().
			Str("component", "vote_collector").
			Uint64("round", uint64(round)).
			Uint64("epoch", uint64(epoch)).
			Logger(),
		metrics:     metrics,
		committee:   committee,
		verifier:    verifier,
		block:       block,
		round:       round,
		epoch:       epoch,
		aggregator:  signature.NewQuorumSignatureAggregator(msg),
		threshold:   consensus.ComputeWeightThresholdForBuildingQC(total),
		onQCCreated: onQCCreated,
	}, nil
}

// Process verifies and folds one quorum vote.
// Expected error returns during normal operations:
//   - ErrVoteForIncompatibleBlock / ErrVoteForIncompatibleRound
//   - signature.ErrDuplicatedSigner for a repeated vote
//   - halcyon.InvalidMessageError for an invalid signature
//
// All other errors are unexpected and potential symptoms of corrupted state.
func (c *VoteCollector) Process(msg *halcyon.QuorumMessage) error {
	if msg.Round != c.round || msg.Epoch != c.epoch {
		return fmt.Errorf("vote is for round %d epoch %d, collecting for round %d epoch %d: %w",
			msg.Round, msg.Epoch, c.round, c.epoch, ErrVoteForIncompatibleRound)
	}
	if msg.Block != c.block {
		return fmt.Errorf("vote is for block %v, collecting for block %v: %w", msg.Block, c.block, ErrVoteForIncompatibleBlock)
	}
	if c.done.Load() {
		return nil
	}

	valid, err := c.verifier.VerifyQuorumMessage(msg)
	if err != nil {
		return fmt.Errorf("could not verify quorum vote of finalizer %d: %w", msg.Finalizer, err)
	}
	if !valid {
		c.metrics.OnInvalidMessageDetected()
		return halcyon.NewInvalidMessageErrorf("quorum vote of finalizer %d: %w", msg.Finalizer, halcyon.ErrInvalidSignature)
	}
	pk, err := c.committee.FinalizerKey(msg.Epoch, msg.Finalizer)
	if err != nil {
		return fmt.Errorf("could not get key of finalizer %d: %w", msg.Finalizer, err)
	}
	weight, err := c.committee.FinalizerWeight(msg.Epoch, msg.Finalizer)
	if err != nil {
		return fmt.Errorf("could not get weight of finalizer %d: %w", msg.Finalizer, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.aggregator.TrustedAdd(msg.Finalizer, pk, msg.Signature); err != nil {
		return err
	}
	c.metrics.OnQuorumMessageProcessed()
	c.weight += weight
	if c.weight < c.threshold {
		return nil
	}
	if !c.done.CAS(false, true) {
		return nil
	}
	qc, err := c.buildQC()
	if err != nil {
		return fmt.Errorf("could not build quorum certificate: %w", err)
	}
	c.metrics.OnQuorumCertificateConstructed()
	c.log.Info().Int("signatories", qc.Signatories.Cardinality()).Msg("quorum certificate constructed")
	c.onQCCreated(qc)
	return nil
}

func (c *VoteCollector) buildQC() (*halcyon.QuorumCertificate, error) {
	signatories, aggregate, err := c.aggregator.Aggregate()
	if err != nil {
		return nil, err
	}
	return halcyon.NewQuorumCertificate(halcyon.UntrustedQuorumCertificate{
		Block:              c.block,
		Round:              c.round,
		Epoch:              c.epoch,
		AggregateSignature: aggregate,
		Signatories:        signatories,
	})
}
