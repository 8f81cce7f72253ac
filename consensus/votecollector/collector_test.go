package votecollector_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonnet/halcyon-go/consensus/verification"
	"github.com/halcyonnet/halcyon-go/consensus/votecollector"
	"github.com/halcyonnet/halcyon-go/model/codec"
	"github.com/halcyonnet/halcyon-go/model/halcyon"
	"github.com/halcyonnet/halcyon-go/module/metrics"
	"github.com/halcyonnet/halcyon-go/module/signature"
	"github.com/halcyonnet/halcyon-go/utils/unittest"
)

type collectorEnv struct {
	genesis    halcyon.Hash
	identities []unittest.FinalizerIdentity
	committee  *unittest.StaticCommittee
	verifier   *verification.Verifier
}

func newCollectorEnv(n int) *collectorEnv {
	genesis := unittest.GenesisFixture()
	identities := unittest.FinalizerIdentityFixtures(n)
	committee := unittest.NewStaticCommittee(identities)
	return &collectorEnv{
		genesis:    genesis,
		identities: identities,
		committee:  committee,
		verifier:   verification.NewVerifier(genesis, codec.Version1, committee),
	}
}

func (e *collectorEnv) vote(t *testing.T, index halcyon.FinalizerIndex, block halcyon.BlockHash, round halcyon.Round, epoch halcyon.Epoch) *halcyon.QuorumMessage {
	t.Helper()
	id := e.identities[index]
	signer := verification.NewSigner(e.genesis, codec.Version1, index, id.BLSKey, id.BlockKey)
	msg, err := signer.CreateQuorumMessage(block, round, epoch)
	require.NoError(t, err)
	return msg
}

func TestVoteCollector_BuildsQC(t *testing.T) {
	env := newCollectorEnv(4)
	block := unittest.HashFixture(0x42)
	round, epoch := halcyon.Round(7), halcyon.Epoch(2)

	var created *halcyon.QuorumCertificate
	collector, err := votecollector.New(
		zerolog.Nop(), metrics.NewNoopCollector(), env.committee, env.verifier,
		env.genesis, block, round, epoch,
		func(qc *halcyon.QuorumCertificate) { created = qc },
	)
	require.NoError(t, err)

	// Threshold for total weight 4 is 3: two votes are not enough.
	require.NoError(t, collector.Process(env.vote(t, 0, block, round, epoch)))
	require.NoError(t, collector.Process(env.vote(t, 1, block, round, epoch)))
	assert.Nil(t, created)

	require.NoError(t, collector.Process(env.vote(t, 2, block, round, epoch)))
	require.NotNil(t, created)
	assert.Equal(t, block, created.Block)
	assert.Equal(t, round, created.Round)
	assert.Equal(t, []halcyon.FinalizerIndex{0, 1, 2}, created.Signatories.Indices())

	// The emitted certificate verifies against the committee.
	ok, err := env.verifier.VerifyQuorumCertificate(created)
	require.NoError(t, err)
	assert.True(t, ok)

	// A late vote after the QC is absorbed without a second emission.
	first := created
	require.NoError(t, collector.Process(env.vote(t, 3, block, round, epoch)))
	assert.Same(t, first, created)
}

func TestVoteCollector_RejectsIncompatibleVotes(t *testing.T) {
	env := newCollectorEnv(4)
	block := unittest.HashFixture(0x42)

	collector, err := votecollector.New(
		zerolog.Nop(), metrics.NewNoopCollector(), env.committee, env.verifier,
		env.genesis, block, 7, 2,
		func(*halcyon.QuorumCertificate) {},
	)
	require.NoError(t, err)

	t.Run("wrong round", func(t *testing.T) {
		err := collector.Process(env.vote(t, 0, block, 8, 2))
		require.ErrorIs(t, err, votecollector.ErrVoteForIncompatibleRound)
	})

	t.Run("wrong epoch", func(t *testing.T) {
		err := collector.Process(env.vote(t, 0, block, 7, 3))
		require.ErrorIs(t, err, votecollector.ErrVoteForIncompatibleRound)
	})

	t.Run("wrong block", func(t *testing.T) {
		err := collector.Process(env.vote(t, 0, unittest.HashFixture(0x43), 7, 2))
		require.ErrorIs(t, err, votecollector.ErrVoteForIncompatibleBlock)
	})

	t.Run("duplicate vote", func(t *testing.T) {
		require.NoError(t, collector.Process(env.vote(t, 1, block, 7, 2)))
		err := collector.Process(env.vote(t, 1, block, 7, 2))
		require.ErrorIs(t, err, signature.ErrDuplicatedSigner)
	})

	t.Run("forged signature", func(t *testing.T) {
		// Finalizer 3's vote carrying finalizer 2's claimed identity.
		forged := *env.vote(t, 3, block, 7, 2)
		forged.Finalizer = 2
		err := collector.Process(&forged)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidMessageError(err))
	})
}
