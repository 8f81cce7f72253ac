package halcyon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonnet/halcyon-go/model/halcyon"
	"github.com/halcyonnet/halcyon-go/utils/unittest"
)

func TestNewQuorumCertificate(t *testing.T) {
	valid := halcyon.UntrustedQuorumCertificate(*unittest.QuorumCertificateFixture())

	t.Run("valid certificate", func(t *testing.T) {
		qc, err := halcyon.NewQuorumCertificate(valid)
		require.NoError(t, err)
		assert.True(t, qc.Equal(unittest.QuorumCertificateFixture()))
	})

	t.Run("zero block hash", func(t *testing.T) {
		zero := valid
		zero.Block = halcyon.ZeroHash
		_, err := halcyon.NewQuorumCertificate(zero)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidCertificateError(err))
	})

	t.Run("wrong aggregate signature length", func(t *testing.T) {
		short := valid
		short.AggregateSignature = short.AggregateSignature[:20]
		_, err := halcyon.NewQuorumCertificate(short)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidCertificateError(err))
	})

	t.Run("empty signatories", func(t *testing.T) {
		empty := valid
		empty.Signatories = halcyon.FinalizerSet{}
		_, err := halcyon.NewQuorumCertificate(empty)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidCertificateError(err))
	})
}

func TestNewTimeoutCertificate(t *testing.T) {
	valid := halcyon.UntrustedTimeoutCertificate(*unittest.TimeoutCertificateFixture())

	t.Run("valid certificate", func(t *testing.T) {
		tc, err := halcyon.NewTimeoutCertificate(valid)
		require.NoError(t, err)
		assert.True(t, tc.Equal(unittest.TimeoutCertificateFixture()))
	})

	t.Run("empty first-epoch bucket", func(t *testing.T) {
		empty := valid
		empty.FinalizerRoundsFirst = halcyon.FinalizerRounds{}
		_, err := halcyon.NewTimeoutCertificate(empty)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidCertificateError(err))
	})

	t.Run("attested round reaches the timed-out round", func(t *testing.T) {
		stale := valid
		stale.Round = 6
		_, err := halcyon.NewTimeoutCertificate(stale)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidCertificateError(err))
	})

	t.Run("second bucket attests too high a round", func(t *testing.T) {
		bad := valid
		bad.FinalizerRoundsSecond = halcyon.NewFinalizerRounds(halcyon.FinalizerRound{
			Round:      bad.Round,
			Finalizers: halcyon.NewFinalizerSet([]halcyon.FinalizerIndex{5}),
		})
		_, err := halcyon.NewTimeoutCertificate(bad)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidCertificateError(err))
	})

	t.Run("wrong aggregate signature length", func(t *testing.T) {
		short := valid
		short.AggregateSignature = short.AggregateSignature[:47]
		_, err := halcyon.NewTimeoutCertificate(short)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidCertificateError(err))
	})
}

func TestNewFinalizationEntry(t *testing.T) {
	valid := halcyon.UntrustedFinalizationEntry(*unittest.FinalizationEntryFixture())

	t.Run("valid entry", func(t *testing.T) {
		fe, err := halcyon.NewFinalizationEntry(valid)
		require.NoError(t, err)
		assert.True(t, fe.FinalizedQC.Equal(&valid.FinalizedQC))
		assert.True(t, fe.SuccessorQC.Equal(&valid.SuccessorQC))
	})

	t.Run("successor does not immediately follow", func(t *testing.T) {
		gap := valid
		gap.SuccessorQC.Round = gap.FinalizedQC.Round + 2
		_, err := halcyon.NewFinalizationEntry(gap)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidCertificateError(err))
	})

	t.Run("successor in a different epoch", func(t *testing.T) {
		skewed := valid
		skewed.SuccessorQC.Epoch = skewed.FinalizedQC.Epoch + 1
		_, err := halcyon.NewFinalizationEntry(skewed)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidCertificateError(err))
	})

	t.Run("proof does not derive the successor block", func(t *testing.T) {
		forged := valid
		forged.SuccessorProof = unittest.HashFixture(0x99)
		_, err := halcyon.NewFinalizationEntry(forged)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidCertificateError(err))
	})
}

func TestSuccessorBlockHash(t *testing.T) {
	header := halcyon.BlockHeader{Round: 6, Epoch: 2, Parent: unittest.HashFixture(0x42)}
	proof := unittest.HashFixture(0x77)

	h1 := halcyon.SuccessorBlockHash(header, proof)
	h2 := halcyon.SuccessorBlockHash(header, proof)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, halcyon.ZeroHash, h1)

	// Any change to header or proof changes the derived hash.
	other := header
	other.Round++
	assert.NotEqual(t, h1, halcyon.SuccessorBlockHash(other, proof))
	assert.NotEqual(t, h1, halcyon.SuccessorBlockHash(header, unittest.HashFixture(0x78)))
}
