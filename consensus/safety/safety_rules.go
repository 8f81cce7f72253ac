// Package safety gates every signing action of the local baker behind the
// persistent round status, so that no two conflicting statements are ever
// signed for the same round, even across a crash and restart.
package safety

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/halcyonnet/halcyon-go/consensus"
	"github.com/halcyonnet/halcyon-go/consensus/verification"
	"github.com/halcyonnet/halcyon-go/model/halcyon"
	"github.com/halcyonnet/halcyon-go/storage"
)

// SafetyRules wraps the Signer with the read-modify-persist-write sequence
// over PersistentRoundStatus. Every signing method signs, applies the status
// transition, persists the new status durably, and only then releases the
// signed artifact to the caller.
//
// Single-writer discipline: the enclosing engine must guarantee at most one
// in-flight call at a time. An InvalidTransitionError escaping any method
// indicates a potential equivocation bug in the caller and must be treated
// as fatal.
type SafetyRules struct {
	log     zerolog.Logger
	signer  *verification.Signer
	persist consensus.Persister
	status  halcyon.PersistentRoundStatus
}

// New creates the safety rules, recovering the round status from storage.
// A missing status (first start) begins from the zero status.
func New(log zerolog.Logger, signer *verification.Signer, persist consensus.Persister) (*SafetyRules, error) {
	status, err := persist.GetRoundStatus()
	if errors.Is(err, storage.ErrNotFound) {
		return &SafetyRules{
			log:     log.With().Str("component", "safety_rules").Logger(),
			signer:  signer,
			persist: persist,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not recover round status: %w", err)
	}
	return &SafetyRules{
		log:     log.With().Str("component", "safety_rules").Logger(),
		signer:  signer,
		persist: persist,
		status:  *status,
	}, nil
}

// RoundStatus returns a copy of the current round status.
func (r *SafetyRules) RoundStatus() halcyon.PersistentRoundStatus {
	return r.status
}

// ProduceQuorumVote signs a quorum vote for the given block, records it in
// the round status and persists the status before returning the vote.
func (r *SafetyRules) ProduceQuorumVote(block halcyon.BlockHash, round halcyon.Round, epoch halcyon.Epoch) (*halcyon.QuorumMessage, error) {
	msg, err := r.signer.CreateQuorumMessage(block, round, epoch)
	if err != nil {
		return nil, fmt.Errorf("could not create quorum vote: %w", err)
	}
	next, err := r.status.RecordQuorumVote(msg)
	if err != nil {
		return nil, err
	}
	if err := r.commit(next); err != nil {
		return nil, err
	}
	r.log.Debug().Uint64("round", uint64(round)).Uint64("epoch", uint64(epoch)).Msg("quorum vote signed")
	return msg, nil
}

// ProduceTimeoutMessage signs a timeout vote for round, attesting highestQC,
// records it and persists the status before returning the message.
func (r *SafetyRules) ProduceTimeoutMessage(round halcyon.Round, highestQC *halcyon.QuorumCertificate) (*halcyon.TimeoutMessage, error) {
	msg, err := r.signer.CreateTimeoutMessage(round, highestQC)
	if err != nil {
		return nil, fmt.Errorf("could not create timeout message: %w", err)
	}
	next, err := r.status.RecordTimeoutVote(msg)
	if err != nil {
		return nil, err
	}
	if err := r.commit(next); err != nil {
		return nil, err
	}
	r.log.Debug().Uint64("round", uint64(round)).Msg("timeout message signed")
	return msg, nil
}

// ProduceSignedBlock signs the baked block, records the baked round and
// persists the status before returning the signed block.
func (r *SafetyRules) ProduceSignedBlock(block *halcyon.BakedBlock) (*halcyon.SignedBlock, error) {
	signed, err := r.signer.SignBlock(block)
	if err != nil {
		return nil, fmt.Errorf("could not sign block: %w", err)
	}
	next, err := r.status.RecordBakedRound(block.Round)
	if err != nil {
		return nil, err
	}
	if err := r.commit(next); err != nil {
		return nil, err
	}
	r.log.Debug().Uint64("round", uint64(block.Round)).Msg("block signed")
	return signed, nil
}

// WitnessTimeoutCertificate records a newly witnessed TC. Stale certificates
// are ignored.
func (r *SafetyRules) WitnessTimeoutCertificate(tc *halcyon.TimeoutCertificate) error {
	next := r.status.RecordLatestTimeoutCertificate(tc)
	return r.commit(next)
}

func (r *SafetyRules) commit(next halcyon.PersistentRoundStatus) error {
	if err := r.persist.PutRoundStatus(&next); err != nil {
		return fmt.Errorf("could not persist round status: %w", err)
	}
	r.status = next
	return nil
}
