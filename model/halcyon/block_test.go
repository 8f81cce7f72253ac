package halcyon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonnet/halcyon-go/model/halcyon"
	"github.com/halcyonnet/halcyon-go/utils/unittest"
)

func TestNewBakedBlock(t *testing.T) {
	valid := halcyon.UntrustedBakedBlock(*unittest.BakedBlockFixture())

	t.Run("direct successor without TC", func(t *testing.T) {
		block, err := halcyon.NewBakedBlock(valid)
		require.NoError(t, err)
		assert.Equal(t, valid.Round, block.Round)
		assert.Nil(t, block.TimeoutCertificate)
	})

	t.Run("round not above QC round", func(t *testing.T) {
		stale := valid
		stale.Round = stale.QuorumCertificate.Round
		_, err := halcyon.NewBakedBlock(stale)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidMessageError(err))
	})

	t.Run("direct successor must not carry a TC", func(t *testing.T) {
		withTC := valid
		withTC.TimeoutCertificate = unittest.TimeoutCertificateFixture(
			unittest.WithTCRound(withTC.Round - 1),
		)
		_, err := halcyon.NewBakedBlock(withTC)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidMessageError(err))
	})

	t.Run("skipped rounds require a TC", func(t *testing.T) {
		skipping := valid
		skipping.Round = skipping.QuorumCertificate.Round + 3
		_, err := halcyon.NewBakedBlock(skipping)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidMessageError(err))
	})

	t.Run("TC must immediately precede the block round", func(t *testing.T) {
		lagging := valid
		lagging.Round = lagging.QuorumCertificate.Round + 3
		lagging.TimeoutCertificate = unittest.TimeoutCertificateFixture(
			unittest.WithTCRound(lagging.Round - 2),
		)
		_, err := halcyon.NewBakedBlock(lagging)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidMessageError(err))
	})

	t.Run("skipped rounds with matching TC", func(t *testing.T) {
		skipping := valid
		skipping.Round = skipping.QuorumCertificate.Round + 3
		skipping.TimeoutCertificate = unittest.TimeoutCertificateFixture(
			unittest.WithTCRound(skipping.Round - 1),
		)
		block, err := halcyon.NewBakedBlock(skipping)
		require.NoError(t, err)
		require.NotNil(t, block.TimeoutCertificate)
		assert.Equal(t, block.Round-1, block.TimeoutCertificate.Round)
	})

	t.Run("empty nonce", func(t *testing.T) {
		bare := valid
		bare.BlockNonce = nil
		_, err := halcyon.NewBakedBlock(bare)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidMessageError(err))
	})
}

func TestBakedBlock_Header(t *testing.T) {
	block := unittest.BakedBlockFixture()
	header := block.Header()
	assert.Equal(t, block.Round, header.Round)
	assert.Equal(t, block.Epoch, header.Epoch)
	assert.Equal(t, block.QuorumCertificate.Block, header.Parent)
}

func TestNewSignedBlock(t *testing.T) {
	valid := halcyon.UntrustedSignedBlock(*unittest.SignedBlockFixture())

	t.Run("valid block", func(t *testing.T) {
		sb, err := halcyon.NewSignedBlock(valid)
		require.NoError(t, err)
		assert.Equal(t, valid.Block.Round, sb.Block.Round)
	})

	t.Run("wrong signature length", func(t *testing.T) {
		short := valid
		short.Signature = short.Signature[:63]
		_, err := halcyon.NewSignedBlock(short)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidMessageError(err))
	})

	t.Run("invalid inner block", func(t *testing.T) {
		bad := valid
		bad.Block.BlockNonce = nil
		_, err := halcyon.NewSignedBlock(bad)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidMessageError(err))
	})
}
