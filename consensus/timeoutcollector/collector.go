// Package timeoutcollector assembles timeout certificates from streaming
// timeout votes for one specific round.
package timeoutcollector

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
	// ErrTimeoutForIncompatibleRound is returned for timeout votes on a
	// different round than the collector's target.
	ErrTimeoutForIncompatibleRound = errors.New("timeout for incompatible round")

	// ErrTimeoutForIncompatibleEpoch is returned for timeout votes whose QC
	// epoch is outside the collector's two-epoch window.
	ErrTimeoutForIncompatibleEpoch = errors.New("timeout for incompatible epoch")
)

// OnTCCreated is called exactly once, when the collector reaches quorum
// weight and assembles the certificate.
type OnTCCreated func(*halcyon.TimeoutCertificate)

// TimeoutCollector folds verified timeout votes for one round into an
// aggregate until quorum weight is reached, then emits the TC through the
// callback. A quorum may straddle an epoch transition, so contributions are
// accepted for QC epochs minEpoch and minEpoch+1 and grouped into the
// certificate's two epoch buckets. Weight is assessed against the committee
// of the epoch the emitted certificate will carry as MinEpoch, matching what
// the verifier re-derives from the certificate.
type TimeoutCollector struct {
	log      zerolog.Logger
	metrics  module.ConsensusMetrics
	verifier *verification.Verifier

	committee consensus.Committee
	round     halcyon.Round
	minEpoch  halcyon.Epoch

	mu          sync.Mutex
	aggregator  *signature.TimeoutSignatureAggregator
	weight      uint64
	hasMinEpoch bool
	done        atomic.Bool
	onTCCreated OnTCCreated

	// threshold is the quorum weight for a certificate carrying minEpoch;
	// thresholdNext applies when every contribution lands in minEpoch+1 and
	// the certificate shifts its MinEpoch accordingly. Keeping both ensures
	// the builder demands exactly the weight the verifier will re-derive
	// from the emitted certificate's MinEpoch.
	threshold     uint64
	thresholdNext uint64
}

// New creates a collector for timeout votes on the given round, with
// minEpoch as the first of the two admissible QC epochs.
func New(
	log zerolog.Logger,
	metrics module.ConsensusMetrics,
	committee consensus.Committee,
	verifier *verification.Verifier,
	genesis halcyon.Hash,
	round halcyon.Round,
	minEpoch halcyon.Epoch,
	onTCCreated OnTCCreated,
) (*TimeoutCollector, error) {
	total, err := committee.TotalWeight(minEpoch)
	if err != nil {
		return nil, fmt.Errorf("could not get total weight of epoch %d: %w", minEpoch, err)
	}
	totalNext, err := committee.TotalWeight(minEpoch + 1)
	if err != nil {
		return nil, fmt.Errorf("could not get total weight of epoch %d: %w", minEpoch+1, err)
	}
	return &TimeoutCollector{
		log: log.With().
			Str("component", "timeout_collector").
			Uint64("round", uint64(round)).
			Logger(),
		metrics:     metrics,
		verifier:    verifier,
		committee:   committee,
		round:       round,
		minEpoch:    minEpoch,
		aggregator:  signature.NewTimeoutSignatureAggregator(genesis, round),
		onTCCreated: onTCCreated,

		threshold:     consensus.ComputeWeightThresholdForBuildingQC(total),
		thresholdNext: consensus.ComputeWeightThresholdForBuildingQC(totalNext),
	}, nil
}

// Process verifies and folds one timeout vote.
// Expected error returns during normal operations:
//   - ErrTimeoutForIncompatibleRound / ErrTimeoutForIncompatibleEpoch
//   - signature.ErrDuplicatedSigner for a repeated vote
//   - halcyon.InvalidMessageError for an invalid signature
//
// All other errors are unexpected and potential symptoms of corrupted state.
func (c *TimeoutCollector) Process(msg *halcyon.TimeoutMessage) error {
	body := &msg.Body
	if body.Round != c.round {
		return fmt.Errorf("timeout is for round %d, collecting for round %d: %w", body.Round, c.round, ErrTimeoutForIncompatibleRound)
	}
	if body.Epoch != c.minEpoch && body.Epoch != c.minEpoch+1 {
		return fmt.Errorf("timeout QC epoch %d outside window [%d, %d]: %w", body.Epoch, c.minEpoch, c.minEpoch+1, ErrTimeoutForIncompatibleEpoch)
	}
	if c.done.Load() {
		return nil
	}

	valid, err := c.verifier.VerifyTimeoutMessage(msg)
	if err != nil {
		return fmt.Errorf("could not verify timeout vote of finalizer %d: %w", body.Finalizer, err)
	}
	if !valid {
		c.metrics.OnInvalidMessageDetected()
		return halcyon.NewInvalidMessageErrorf("timeout vote of finalizer %d: %w", body.Finalizer, halcyon.ErrInvalidSignature)
	}
	valid, err = c.verifier.VerifyQuorumCertificate(&body.QuorumCertificate)
	if err != nil {
		return fmt.Errorf("could not verify QC embedded in timeout of finalizer %d: %w", body.Finalizer, err)
	}
	if !valid {
		c.metrics.OnInvalidMessageDetected()
		return halcyon.NewInvalidMessageErrorf("QC embedded in timeout of finalizer %d: %w", body.Finalizer, halcyon.ErrInvalidSignature)
	}
	pk, err := c.committee.FinalizerKey(body.Epoch, body.Finalizer)
	if err != nil {
		return fmt.Errorf("could not get key of finalizer %d: %w", body.Finalizer, err)
	}
	weight, err := c.committee.FinalizerWeight(body.Epoch, body.Finalizer)
	if err != nil {
		return fmt.Errorf("could not get weight of finalizer %d: %w", body.Finalizer, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.aggregator.TrustedAdd(body.Finalizer, pk, body.QuorumCertificate.Round, body.Epoch, body.AggregateSignature)
	if err != nil {
		return err
	}
	c.metrics.OnTimeoutMessageProcessed()
	if body.Epoch == c.minEpoch {
		c.hasMinEpoch = true
	}
	c.weight += weight
	// Without any minEpoch contribution the certificate will carry
	// MinEpoch+1, so quorum is measured against that epoch's committee.
	threshold := c.threshold
	if !c.hasMinEpoch {
		threshold = c.thresholdNext
	}
	if c.weight < threshold {
		return nil
	}
	if !c.done.CAS(false, true) {
		return nil
	}
	tc, err := c.buildTC()
	if err != nil {
		return fmt.Errorf("could not build timeout certificate: %w", err)
	}
	c.metrics.OnTimeoutCertificateConstructed()
	c.log.Info().Int("signers", c.aggregator.NumSigners()).Msg("timeout certificate constructed")
	c.onTCCreated(tc)
	return nil
}

// buildTC assembles the certificate from the collected contributions. An
// absent second-epoch bucket yields an explicitly empty mapping, per the
// canonical encoding rule.
func (c *TimeoutCollector) buildTC() (*halcyon.TimeoutCertificate, error) {
	_, aggregate, err := c.aggregator.Aggregate()
	if err != nil {
		return nil, err
	}
	byEpoch := c.aggregator.ByEpoch()
	minEpoch := c.minEpoch
	first := byEpoch[c.minEpoch]
	second := byEpoch[c.minEpoch+1]
	// If every contribution came from the second epoch, it becomes the
	// certificate's first (and only) bucket.
	if first.IsEmpty() {
		minEpoch = c.minEpoch + 1
		first, second = second, halcyon.FinalizerRounds{}
	}
	return halcyon.NewTimeoutCertificate(halcyon.UntrustedTimeoutCertificate{
		Round:                 c.round,
		MinEpoch:              minEpoch,
		FinalizerRoundsFirst:  first,
		FinalizerRoundsSecond: second,
		AggregateSignature:    aggregate,
	})
}
