package signature

import (
	"fmt"

	"github.com/onflow/crypto"

	"github.com/halcyonnet/halcyon-go/model/halcyon"
)

// QuorumSignatureAggregator folds same-message quorum votes into one
// aggregate signature and the finalizer set of its signatories. It is the
// building block of QC formation.
//
// Not concurrency safe: certificate formation is serialized per
// (round, message kind) by the enclosing collector.
type QuorumSignatureAggregator struct {
	message   halcyon.QuorumSignatureMessage
	keys      map[halcyon.FinalizerIndex]crypto.PublicKey
	aggregate halcyon.QuorumSignature
	signers   halcyon.FinalizerSet
}

// NewQuorumSignatureAggregator creates an aggregator for votes on msg.
func NewQuorumSignatureAggregator(msg halcyon.QuorumSignatureMessage) *QuorumSignatureAggregator {
	return &QuorumSignatureAggregator{
		message:   msg,
		keys:      make(map[halcyon.FinalizerIndex]crypto.PublicKey),
		aggregate: halcyon.EmptyQuorumSignature(),
	}
}

// Verify checks sig against the aggregator's message for the given key,
// without adding it.
func (a *QuorumSignatureAggregator) Verify(pk crypto.PublicKey, sig halcyon.QuorumSignature) (bool, error) {
	return CheckQuorumSignatureSingle(a.message, pk, sig)
}

// TrustedAdd adds a signature without verifying it. The caller must have
// verified it beforehand. Returns ErrDuplicatedSigner if the finalizer
// already contributed.
func (a *QuorumSignatureAggregator) TrustedAdd(index halcyon.FinalizerIndex, pk crypto.PublicKey, sig halcyon.QuorumSignature) error {
	if a.signers.Contains(index) {
		return fmt.Errorf("finalizer %d already contributed: %w", index, ErrDuplicatedSigner)
	}
	combined, err := CombineQuorumSignatures(a.aggregate, sig)
	if err != nil {
		return err
	}
	a.aggregate = combined
	a.signers = a.signers.Union(halcyon.NewFinalizerSet([]halcyon.FinalizerIndex{index}))
	a.keys[index] = pk
	return nil
}

// VerifyAndAdd verifies the signature and adds it if valid. The returned
// bool reports validity; an invalid signature is not an error.
func (a *QuorumSignatureAggregator) VerifyAndAdd(index halcyon.FinalizerIndex, pk crypto.PublicKey, sig halcyon.QuorumSignature) (bool, error) {
	ok, err := a.Verify(pk, sig)
	if err != nil || !ok {
		return ok, err
	}
	return true, a.TrustedAdd(index, pk, sig)
}

// HasSignature reports whether the given finalizer already contributed.
func (a *QuorumSignatureAggregator) HasSignature(index halcyon.FinalizerIndex) bool {
	return a.signers.Contains(index)
}

// NumSigners returns the number of collected contributions.
func (a *QuorumSignatureAggregator) NumSigners() int {
	return a.signers.Cardinality()
}

// Aggregate returns the signatory set and the aggregate signature collected
// so far. Returns ErrInsufficientSignatures if nothing was added.
func (a *QuorumSignatureAggregator) Aggregate() (halcyon.FinalizerSet, halcyon.QuorumSignature, error) {
	if a.signers.IsEmpty() {
		return halcyon.FinalizerSet{}, nil, ErrInsufficientSignatures
	}
	return a.signers, a.aggregate, nil
}

// VerifyAggregate checks the collected aggregate against the sum of the
// contributed public keys. A certificate built from this aggregator is valid
// iff this holds for exactly its recorded finalizer set.
func (a *QuorumSignatureAggregator) VerifyAggregate() (bool, error) {
	pks := make([]crypto.PublicKey, 0, len(a.keys))
	for _, index := range a.signers.Indices() {
		pks = append(pks, a.keys[index])
	}
	return CheckQuorumSignature(a.message, pks, a.aggregate)
}

// timeoutContribution records which message a finalizer attested, so the
// aggregate can later be verified with the many-messages pairing check.
type timeoutContribution struct {
	qcRound halcyon.Round
	qcEpoch halcyon.Epoch
	key     crypto.PublicKey
}

// TimeoutSignatureAggregator folds timeout votes for one round into one
// aggregate signature. Contributions attest different QC rounds, so the
// aggregate spans multiple messages; grouping for TC construction is by
// (epoch, QC round).
//
// Not concurrency safe, like QuorumSignatureAggregator.
type TimeoutSignatureAggregator struct {
	genesis       halcyon.Hash
	round         halcyon.Round
	contributions map[halcyon.FinalizerIndex]timeoutContribution
	aggregate     halcyon.TimeoutSignature
	signers       halcyon.FinalizerSet
}

// NewTimeoutSignatureAggregator creates an aggregator for timeout votes on
// the given round.
func NewTimeoutSignatureAggregator(genesis halcyon.Hash, round halcyon.Round) *TimeoutSignatureAggregator {
	return &TimeoutSignatureAggregator{
		genesis:       genesis,
		round:         round,
		contributions: make(map[halcyon.FinalizerIndex]timeoutContribution),
		aggregate:     halcyon.EmptyTimeoutSignature(),
	}
}

// TrustedAdd adds a contribution without verifying its signature. The
// caller must have verified it beforehand. Returns ErrDuplicatedSigner if
// the finalizer already contributed.
func (a *TimeoutSignatureAggregator) TrustedAdd(index halcyon.FinalizerIndex, pk crypto.PublicKey, qcRound halcyon.Round, qcEpoch halcyon.Epoch, sig halcyon.TimeoutSignature) error {
	if a.signers.Contains(index) {
		return fmt.Errorf("finalizer %d already contributed: %w", index, ErrDuplicatedSigner)
	}
	combined, err := CombineTimeoutSignatures(a.aggregate, sig)
	if err != nil {
		return err
	}
	a.aggregate = combined
	a.signers = a.signers.Union(halcyon.NewFinalizerSet([]halcyon.FinalizerIndex{index}))
	a.contributions[index] = timeoutContribution{qcRound: qcRound, qcEpoch: qcEpoch, key: pk}
	return nil
}

// VerifyAndAdd verifies the finalizer's signature over its own timeout
// signature message and adds it if valid.
func (a *TimeoutSignatureAggregator) VerifyAndAdd(index halcyon.FinalizerIndex, pk crypto.PublicKey, qcRound halcyon.Round, qcEpoch halcyon.Epoch, sig halcyon.TimeoutSignature) (bool, error) {
	if a.signers.Contains(index) {
		return false, fmt.Errorf("finalizer %d already contributed: %w", index, ErrDuplicatedSigner)
	}
	msg := halcyon.TimeoutSignatureMessage{
		Genesis: a.genesis,
		Round:   a.round,
		QCRound: qcRound,
		QCEpoch: qcEpoch,
	}
	ok, err := CheckTimeoutSignatureSingle(msg, pk, sig)
	if err != nil || !ok {
		return ok, err
	}
	return true, a.TrustedAdd(index, pk, qcRound, qcEpoch, sig)
}

// HasSignature reports whether the given finalizer already contributed.
func (a *TimeoutSignatureAggregator) HasSignature(index halcyon.FinalizerIndex) bool {
	return a.signers.Contains(index)
}

// NumSigners returns the number of collected contributions.
func (a *TimeoutSignatureAggregator) NumSigners() int {
	return a.signers.Cardinality()
}

// ByEpoch returns the collected contributions grouped into per-epoch
// finalizer-round mappings, keyed by epoch.
func (a *TimeoutSignatureAggregator) ByEpoch() map[halcyon.Epoch]halcyon.FinalizerRounds {
	grouped := make(map[halcyon.Epoch]halcyon.FinalizerRounds)
	for index, c := range a.contributions {
		fr := grouped[c.qcEpoch]
		fr.Add(c.qcRound, halcyon.NewFinalizerSet([]halcyon.FinalizerIndex{index}))
		grouped[c.qcEpoch] = fr
	}
	return grouped
}

// Aggregate returns the signatory set and the aggregate signature collected
// so far. Returns ErrInsufficientSignatures if nothing was added.
func (a *TimeoutSignatureAggregator) Aggregate() (halcyon.FinalizerSet, halcyon.TimeoutSignature, error) {
	if a.signers.IsEmpty() {
		return halcyon.FinalizerSet{}, nil, ErrInsufficientSignatures
	}
	return a.signers, a.aggregate, nil
}
