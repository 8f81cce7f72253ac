// Package unittest provides deterministic fixtures for tests. Fixture keys
// carry no behavioral significance; they exist so that tests which do not
// exercise cryptography get structurally valid values cheaply.
package unittest

import (
	"crypto/rand"
	"fmt"

	"github.com/onflow/crypto"

	"github.com/halcyonnet/halcyon-go/model/halcyon"
)

// GenesisFixture returns a fixed genesis hash.
func GenesisFixture() halcyon.Hash {
	return HashFixture(0xa1)
}

// HashFixture returns a hash filled with the given byte.
func HashFixture(fill byte) halcyon.Hash {
	var h halcyon.Hash
	for i := range h {
		h[i] = fill
	}
	return h
}

// RandomHashFixture returns a random hash.
func RandomHashFixture() halcyon.Hash {
	var h halcyon.Hash
	_, _ = rand.Read(h[:])
	return h
}

// BLSKeyFixture returns a deterministic BLS private key derived from seed.
func BLSKeyFixture(seed byte) crypto.PrivateKey {
	raw := make([]byte, crypto.KeyGenSeedMinLen)
	for i := range raw {
		raw[i] = seed ^ byte(i)
	}
	sk, err := crypto.GeneratePrivateKey(crypto.BLSBLS12381, raw)
	if err != nil {
		panic(fmt.Sprintf("could not generate BLS fixture key: %s", err))
	}
	return sk
}

// ECDSAKeyFixture returns a deterministic ECDSA P-256 private key derived
// from seed, for the block signature scheme.
func ECDSAKeyFixture(seed byte) crypto.PrivateKey {
	raw := make([]byte, crypto.KeyGenSeedMinLen)
	for i := range raw {
		raw[i] = seed ^ byte(i) ^ 0x5a
	}
	sk, err := crypto.GeneratePrivateKey(crypto.ECDSAP256, raw)
	if err != nil {
		panic(fmt.Sprintf("could not generate ECDSA fixture key: %s", err))
	}
	return sk
}

// QuorumSignatureFixture returns signature bytes of the right length filled
// with the given byte. Not a valid curve point; for structural tests only.
func QuorumSignatureFixture(fill byte) halcyon.QuorumSignature {
	sig := make(halcyon.QuorumSignature, halcyon.QuorumSignatureLen)
	for i := range sig {
		sig[i] = fill
	}
	return sig
}

// BlockSignatureFixture returns block-signature bytes of the right length.
func BlockSignatureFixture(fill byte) halcyon.BlockSignature {
	sig := make(halcyon.BlockSignature, halcyon.BlockSignatureLen)
	for i := range sig {
		sig[i] = fill
	}
	return sig
}

// FinalizerSetFixture returns the set {0, 3, 17}.
func FinalizerSetFixture() halcyon.FinalizerSet {
	return halcyon.NewFinalizerSet([]halcyon.FinalizerIndex{0, 3, 17})
}

// QuorumCertificateFixture returns a structurally valid QC, modified by the
// given options.
func QuorumCertificateFixture(opts ...func(*halcyon.QuorumCertificate)) *halcyon.QuorumCertificate {
	qc := &halcyon.QuorumCertificate{
		Block:              HashFixture(0x42),
		Round:              7,
		Epoch:              2,
		AggregateSignature: QuorumSignatureFixture(0x33),
		Signatories:        FinalizerSetFixture(),
	}
	for _, opt := range opts {
		opt(qc)
	}
	return qc
}

// WithQCRound sets the QC's round.
func WithQCRound(round halcyon.Round) func(*halcyon.QuorumCertificate) {
	return func(qc *halcyon.QuorumCertificate) {
		qc.Round = round
	}
}

// WithQCEpoch sets the QC's epoch.
func WithQCEpoch(epoch halcyon.Epoch) func(*halcyon.QuorumCertificate) {
	return func(qc *halcyon.QuorumCertificate) {
		qc.Epoch = epoch
	}
}

// WithQCBlock sets the QC's block hash.
func WithQCBlock(block halcyon.BlockHash) func(*halcyon.QuorumCertificate) {
	return func(qc *halcyon.QuorumCertificate) {
		qc.Block = block
	}
}

// FinalizationEntryFixture returns a well-formed finalization entry whose
// successor QC block hash is correctly derived from the successor proof.
func FinalizationEntryFixture(opts ...func(*halcyon.FinalizationEntry)) *halcyon.FinalizationEntry {
	finalized := QuorumCertificateFixture()
	proof := HashFixture(0x77)
	successorBlock := halcyon.SuccessorBlockHash(halcyon.BlockHeader{
		Round:  finalized.Round + 1,
		Epoch:  finalized.Epoch,
		Parent: finalized.Block,
	}, proof)
	successor := QuorumCertificateFixture(
		WithQCRound(finalized.Round+1),
		WithQCEpoch(finalized.Epoch),
		WithQCBlock(successorBlock),
	)
	fe := &halcyon.FinalizationEntry{
		FinalizedQC:    *finalized,
		SuccessorQC:    *successor,
		SuccessorProof: proof,
	}
	for _, opt := range opts {
		opt(fe)
	}
	return fe
}

// TimeoutCertificateFixture returns a structurally valid TC with an empty
// second-epoch bucket, modified by the given options.
func TimeoutCertificateFixture(opts ...func(*halcyon.TimeoutCertificate)) *halcyon.TimeoutCertificate {
	first := halcyon.NewFinalizerRounds(
		halcyon.FinalizerRound{Round: 5, Finalizers: halcyon.NewFinalizerSet([]halcyon.FinalizerIndex{0, 2})},
		halcyon.FinalizerRound{Round: 6, Finalizers: halcyon.NewFinalizerSet([]halcyon.FinalizerIndex{1})},
	)
	tc := &halcyon.TimeoutCertificate{
		Round:                8,
		MinEpoch:             2,
		FinalizerRoundsFirst: first,
		AggregateSignature:   halcyon.TimeoutSignature(QuorumSignatureFixture(0x44)),
	}
	for _, opt := range opts {
		opt(tc)
	}
	return tc
}

// WithTCRound sets the TC's round.
func WithTCRound(round halcyon.Round) func(*halcyon.TimeoutCertificate) {
	return func(tc *halcyon.TimeoutCertificate) {
		tc.Round = round
	}
}

// WithTCSecondEpochRounds sets the TC's second-epoch bucket.
func WithTCSecondEpochRounds(fr halcyon.FinalizerRounds) func(*halcyon.TimeoutCertificate) {
	return func(tc *halcyon.TimeoutCertificate) {
		tc.FinalizerRoundsSecond = fr
	}
}

// QuorumMessageFixture returns a structurally valid quorum vote.
func QuorumMessageFixture(opts ...func(*halcyon.QuorumMessage)) *halcyon.QuorumMessage {
	msg := &halcyon.QuorumMessage{
		Signature: QuorumSignatureFixture(0x55),
		Block:     HashFixture(0x42),
		Finalizer: 3,
		Round:     7,
		Epoch:     2,
	}
	for _, opt := range opts {
		opt(msg)
	}
	return msg
}

// WithQMRound sets the vote's round.
func WithQMRound(round halcyon.Round) func(*halcyon.QuorumMessage) {
	return func(msg *halcyon.QuorumMessage) {
		msg.Round = round
	}
}

// TimeoutMessageFixture returns a structurally valid timeout vote wrapping
// QuorumCertificateFixture.
func TimeoutMessageFixture(opts ...func(*halcyon.TimeoutMessage)) *halcyon.TimeoutMessage {
	qc := QuorumCertificateFixture()
	msg := &halcyon.TimeoutMessage{
		Body: halcyon.TimeoutMessageBody{
			Finalizer:          3,
			Round:              qc.Round + 2,
			Epoch:              qc.Epoch,
			QuorumCertificate:  *qc,
			AggregateSignature: halcyon.TimeoutSignature(QuorumSignatureFixture(0x66)),
		},
		Signature: BlockSignatureFixture(0x21),
	}
	for _, opt := range opts {
		opt(msg)
	}
	return msg
}

// WithTMRound sets the timeout vote's round.
func WithTMRound(round halcyon.Round) func(*halcyon.TimeoutMessage) {
	return func(msg *halcyon.TimeoutMessage) {
		msg.Body.Round = round
	}
}

// BlockItemFixture returns a transaction with the given arrival time.
func BlockItemFixture(arrival halcyon.Timestamp) halcyon.BlockItem {
	return halcyon.BlockItem{
		ArrivalTime: arrival,
		Payload:     []byte("transfer fixture payload"),
	}
}

// BakedBlockFixture returns a structurally valid unsigned block that
// directly follows its QC round, modified by the given options.
func BakedBlockFixture(opts ...func(*halcyon.BakedBlock)) *halcyon.BakedBlock {
	qc := QuorumCertificateFixture()
	block := &halcyon.BakedBlock{
		Round:                   qc.Round + 1,
		Epoch:                   qc.Epoch,
		Timestamp:               1_700_000_000_000,
		Baker:                   11,
		QuorumCertificate:       *qc,
		BlockNonce:              []byte("vrf proof fixture bytes"),
		StateHash:               HashFixture(0x0e),
		TransactionOutcomesHash: HashFixture(0x0f),
		Transactions: []halcyon.BlockItem{
			BlockItemFixture(1_699_999_999_000),
			BlockItemFixture(1_699_999_999_500),
		},
	}
	for _, opt := range opts {
		opt(block)
	}
	return block
}

// WithBlockTimeoutCertificate equips the block with a TC and moves its round
// to follow the TC, preserving the block's structural invariants.
func WithBlockTimeoutCertificate(tc *halcyon.TimeoutCertificate) func(*halcyon.BakedBlock) {
	return func(block *halcyon.BakedBlock) {
		block.TimeoutCertificate = tc
		block.Round = tc.Round + 1
	}
}

// WithBlockFinalizationEntry equips the block with an epoch finalization
// entry.
func WithBlockFinalizationEntry(fe *halcyon.FinalizationEntry) func(*halcyon.BakedBlock) {
	return func(block *halcyon.BakedBlock) {
		block.EpochFinalizationEntry = fe
	}
}

// SignedBlockFixture returns a block with a structurally valid (but not
// cryptographically meaningful) signature.
func SignedBlockFixture(opts ...func(*halcyon.BakedBlock)) *halcyon.SignedBlock {
	return &halcyon.SignedBlock{
		Block:     *BakedBlockFixture(opts...),
		Signature: BlockSignatureFixture(0x19),
	}
}

// RoundStatusFixture returns a fully populated round status.
func RoundStatusFixture() *halcyon.PersistentRoundStatus {
	return &halcyon.PersistentRoundStatus{
		LastSignedQuorumMessage:  QuorumMessageFixture(),
		LastSignedTimeoutMessage: TimeoutMessageFixture(),
		LastBakedRound:           9,
		LatestTimeoutCertificate: TimeoutCertificateFixture(),
	}
}
