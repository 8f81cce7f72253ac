package halcyon

// PersistentRoundStatus is the record of the local baker's last signing
// actions. It is read before every signing action and must be persisted
// durably before the corresponding vote or block is released, so that a
// restarted baker can never sign two conflicting statements for the same
// round (equivocation).
//
// All transitions are pure: they take the old status and return the new one
// without mutating the receiver. The enclosing engine serializes updates
// (single-writer discipline, see consensus/safety).
type PersistentRoundStatus struct {
	// LastSignedQuorumMessage is the most recent quorum vote signed by this
	// baker, if any.
	LastSignedQuorumMessage *QuorumMessage
	// LastSignedTimeoutMessage is the most recent timeout vote signed by
	// this baker, if any.
	LastSignedTimeoutMessage *TimeoutMessage
	// LastBakedRound is the highest round for which this baker signed a
	// block. Zero if no block was ever baked.
	LastBakedRound Round
	// LatestTimeoutCertificate is the most recent TC witnessed by this
	// baker, if any.
	LatestTimeoutCertificate *TimeoutCertificate
}

// LastSignedQuorumRound returns the round of the last signed quorum vote,
// or false if none was ever signed.
func (s PersistentRoundStatus) LastSignedQuorumRound() (Round, bool) {
	if s.LastSignedQuorumMessage == nil {
		return 0, false
	}
	return s.LastSignedQuorumMessage.Round, true
}

// LastSignedTimeoutRound returns the round of the last signed timeout vote,
// or false if none was ever signed.
func (s PersistentRoundStatus) LastSignedTimeoutRound() (Round, bool) {
	if s.LastSignedTimeoutMessage == nil {
		return 0, false
	}
	return s.LastSignedTimeoutMessage.Body.Round, true
}

// RecordQuorumVote returns the status with msg recorded as the last signed
// quorum vote. Recording a vote for a round at or below the last signed one
// is an InvalidTransitionError: the caller is about to equivocate and must
// treat the error as fatal.
func (s PersistentRoundStatus) RecordQuorumVote(msg *QuorumMessage) (PersistentRoundStatus, error) {
	if last, ok := s.LastSignedQuorumRound(); ok && msg.Round <= last {
		return s, NewInvalidTransitionErrorf("quorum vote for round %d at or below last signed round %d", msg.Round, last)
	}
	next := s
	next.LastSignedQuorumMessage = msg
	return next, nil
}

// RecordTimeoutVote returns the status with msg recorded as the last signed
// timeout vote, refusing round regressions as RecordQuorumVote does.
func (s PersistentRoundStatus) RecordTimeoutVote(msg *TimeoutMessage) (PersistentRoundStatus, error) {
	if last, ok := s.LastSignedTimeoutRound(); ok && msg.Body.Round <= last {
		return s, NewInvalidTransitionErrorf("timeout vote for round %d at or below last signed round %d", msg.Body.Round, last)
	}
	next := s
	next.LastSignedTimeoutMessage = msg
	return next, nil
}

// RecordBakedRound returns the status with round recorded as the last baked
// round. The last baked round never decreases.
func (s PersistentRoundStatus) RecordBakedRound(round Round) (PersistentRoundStatus, error) {
	if round <= s.LastBakedRound && s.LastBakedRound != 0 {
		return s, NewInvalidTransitionErrorf("baked round %d at or below last baked round %d", round, s.LastBakedRound)
	}
	next := s
	next.LastBakedRound = round
	return next, nil
}

// RecordLatestTimeoutCertificate returns the status with tc recorded as the
// latest witnessed timeout certificate. A TC for an older round than the
// recorded one is ignored, not an error: witnessing stale certificates is
// normal during catch-up.
func (s PersistentRoundStatus) RecordLatestTimeoutCertificate(tc *TimeoutCertificate) PersistentRoundStatus {
	if s.LatestTimeoutCertificate != nil && tc.Round <= s.LatestTimeoutCertificate.Round {
		return s
	}
	next := s
	next.LatestTimeoutCertificate = tc
	return next
}
