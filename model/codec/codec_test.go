package codec_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/halcyonnet/halcyon-go/model/codec"
	"github.com/halcyonnet/halcyon-go/model/halcyon"
	"github.com/halcyonnet/halcyon-go/utils/unittest"
)

// maxTxTime comfortably exceeds the arrival times of all block fixtures.
const maxTxTime = halcyon.Timestamp(1_800_000_000_000)

func TestFinalizerSetRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		indices := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) halcyon.FinalizerIndex {
			return halcyon.FinalizerIndex(rapid.Uint32Range(0, 200).Draw(t, "index"))
		}), 0, 30).Draw(t, "indices")

		s := halcyon.NewFinalizerSet(indices)
		decoded, err := codec.DecodeFinalizerSet(codec.EncodeFinalizerSet(s))
		require.NoError(t, err)
		require.True(t, s.Equal(decoded))
	})
}

func TestFinalizerSet_RejectsNonCanonical(t *testing.T) {
	// Length prefix 2, leading zero byte.
	enc := []byte{0x00, 0x00, 0x00, 0x02, 0x00, 0x01}
	_, err := codec.DecodeFinalizerSet(enc)
	require.Error(t, err)
	assert.True(t, halcyon.IsInvalidEncodingError(err))
}

func TestQuorumCertificateRoundTrip(t *testing.T) {
	qc := unittest.QuorumCertificateFixture()
	enc := codec.EncodeQuorumCertificate(qc)

	decoded, err := codec.DecodeQuorumCertificate(enc)
	require.NoError(t, err)
	assert.True(t, qc.Equal(decoded))

	t.Run("truncated", func(t *testing.T) {
		for _, cut := range []int{1, 8, len(enc) / 2, len(enc) - 1} {
			_, err := codec.DecodeQuorumCertificate(enc[:len(enc)-cut])
			require.Error(t, err)
			assert.True(t, halcyon.IsInvalidEncodingError(err))
		}
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := codec.DecodeQuorumCertificate(append(append([]byte{}, enc...), 0x00))
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidEncodingError(err))
	})

	t.Run("non-canonical signatories bitset", func(t *testing.T) {
		// Replace the trailing set encoding (4-byte length + 3 set bytes for
		// finalizers {0, 3, 17}) with the same set padded by a zero byte.
		forged := append([]byte{}, enc[:len(enc)-7]...)
		forged = binary.BigEndian.AppendUint32(forged, 4)
		forged = append(forged, 0x00, 0x02, 0x00, 0x09)
		_, err := codec.DecodeQuorumCertificate(forged)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidEncodingError(err))
	})

	t.Run("empty signatories", func(t *testing.T) {
		forged := append([]byte{}, enc[:len(enc)-7]...)
		forged = binary.BigEndian.AppendUint32(forged, 0)
		_, err := codec.DecodeQuorumCertificate(forged)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidCertificateError(err))
	})
}

func TestQuorumMessageRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		msg := unittest.QuorumMessageFixture(func(m *halcyon.QuorumMessage) {
			m.Finalizer = halcyon.FinalizerIndex(rapid.Uint32().Draw(t, "finalizer"))
			m.Round = halcyon.Round(rapid.Uint64().Draw(t, "round"))
			m.Epoch = halcyon.Epoch(rapid.Uint64().Draw(t, "epoch"))
		})
		decoded, err := codec.DecodeQuorumMessage(codec.EncodeQuorumMessage(msg))
		require.NoError(t, err)
		require.Equal(t, msg, decoded)
	})
}

func TestTimeoutCertificateRoundTrip(t *testing.T) {
	t.Run("single epoch bucket", func(t *testing.T) {
		tc := unittest.TimeoutCertificateFixture()
		decoded, err := codec.DecodeTimeoutCertificate(codec.EncodeTimeoutCertificate(tc))
		require.NoError(t, err)
		assert.True(t, tc.Equal(decoded))
	})

	t.Run("both epoch buckets", func(t *testing.T) {
		tc := unittest.TimeoutCertificateFixture(unittest.WithTCSecondEpochRounds(
			halcyon.NewFinalizerRounds(halcyon.FinalizerRound{
				Round:      6,
				Finalizers: halcyon.NewFinalizerSet([]halcyon.FinalizerIndex{3}),
			}),
		))
		decoded, err := codec.DecodeTimeoutCertificate(codec.EncodeTimeoutCertificate(tc))
		require.NoError(t, err)
		assert.True(t, tc.Equal(decoded))
	})

	t.Run("empty second bucket written as zero count", func(t *testing.T) {
		tc := unittest.TimeoutCertificateFixture()
		enc := codec.EncodeTimeoutCertificate(tc)
		// The second bucket's count (zero) directly precedes the 48-byte
		// aggregate signature.
		countField := enc[len(enc)-halcyon.TimeoutSignatureLen-4 : len(enc)-halcyon.TimeoutSignatureLen]
		assert.Equal(t, []byte{0, 0, 0, 0}, countField)
	})
}

func TestTimeoutCertificate_DecodeRejectsMalformedRounds(t *testing.T) {
	encodeTC := func(writeBuckets func(buf []byte) []byte) []byte {
		var buf []byte
		buf = binary.BigEndian.AppendUint64(buf, 8) // round
		buf = binary.BigEndian.AppendUint64(buf, 2) // min epoch
		buf = writeBuckets(buf)
		buf = append(buf, unittest.QuorumSignatureFixture(0x44)...)
		return buf
	}

	t.Run("rounds not strictly ascending", func(t *testing.T) {
		enc := encodeTC(func(buf []byte) []byte {
			buf = binary.BigEndian.AppendUint32(buf, 2)
			buf = binary.BigEndian.AppendUint64(buf, 6)
			buf = binary.BigEndian.AppendUint32(buf, 1)
			buf = append(buf, 0x01)
			buf = binary.BigEndian.AppendUint64(buf, 5)
			buf = binary.BigEndian.AppendUint32(buf, 1)
			buf = append(buf, 0x02)
			return binary.BigEndian.AppendUint32(buf, 0)
		})
		_, err := codec.DecodeTimeoutCertificate(enc)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidEncodingError(err))
	})

	t.Run("duplicate round keys", func(t *testing.T) {
		enc := encodeTC(func(buf []byte) []byte {
			buf = binary.BigEndian.AppendUint32(buf, 2)
			buf = binary.BigEndian.AppendUint64(buf, 5)
			buf = binary.BigEndian.AppendUint32(buf, 1)
			buf = append(buf, 0x01)
			buf = binary.BigEndian.AppendUint64(buf, 5)
			buf = binary.BigEndian.AppendUint32(buf, 1)
			buf = append(buf, 0x02)
			return binary.BigEndian.AppendUint32(buf, 0)
		})
		_, err := codec.DecodeTimeoutCertificate(enc)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidEncodingError(err))
	})

	t.Run("entry with empty finalizer set", func(t *testing.T) {
		enc := encodeTC(func(buf []byte) []byte {
			buf = binary.BigEndian.AppendUint32(buf, 1)
			buf = binary.BigEndian.AppendUint64(buf, 5)
			buf = binary.BigEndian.AppendUint32(buf, 0)
			return binary.BigEndian.AppendUint32(buf, 0)
		})
		_, err := codec.DecodeTimeoutCertificate(enc)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidEncodingError(err))
	})
}

func TestFinalizationEntryRoundTrip(t *testing.T) {
	fe := unittest.FinalizationEntryFixture()
	enc := codec.EncodeFinalizationEntry(fe)

	decoded, err := codec.DecodeFinalizationEntry(enc)
	require.NoError(t, err)
	assert.True(t, fe.FinalizedQC.Equal(&decoded.FinalizedQC))
	assert.True(t, fe.SuccessorQC.Equal(&decoded.SuccessorQC))
	assert.Equal(t, fe.SuccessorProof, decoded.SuccessorProof)

	t.Run("forged proof fails revalidation", func(t *testing.T) {
		// The proof is the trailing 32 bytes; flipping one bit breaks the
		// successor linkage check.
		forged := append([]byte{}, enc...)
		forged[len(forged)-1] ^= 0x01
		_, err := codec.DecodeFinalizationEntry(forged)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidCertificateError(err))
	})
}

func TestTimeoutMessageRoundTrip(t *testing.T) {
	msg := unittest.TimeoutMessageFixture()

	body, err := codec.DecodeTimeoutMessageBody(codec.EncodeTimeoutMessageBody(&msg.Body))
	require.NoError(t, err)
	assert.Equal(t, msg.Body, *body)

	decoded, err := codec.DecodeTimeoutMessage(codec.EncodeTimeoutMessage(msg))
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)
}

func TestBakedBlockRoundTrip(t *testing.T) {
	variants := map[string]*halcyon.BakedBlock{
		"direct successor": unittest.BakedBlockFixture(),
		"with timeout certificate": unittest.BakedBlockFixture(
			unittest.WithBlockTimeoutCertificate(unittest.TimeoutCertificateFixture()),
		),
		"with epoch finalization entry": unittest.BakedBlockFixture(
			unittest.WithBlockFinalizationEntry(unittest.FinalizationEntryFixture()),
		),
		"no transactions": unittest.BakedBlockFixture(func(b *halcyon.BakedBlock) {
			b.Transactions = nil
		}),
	}
	for name, block := range variants {
		t.Run(name, func(t *testing.T) {
			enc, err := codec.EncodeBakedBlock(codec.Version1, block)
			require.NoError(t, err)
			decoded, err := codec.DecodeBakedBlock(codec.Version1, maxTxTime, enc)
			require.NoError(t, err)
			assert.Equal(t, block, decoded)
		})
	}
}

func TestBakedBlock_DecodeFailures(t *testing.T) {
	block := unittest.BakedBlockFixture()
	enc, err := codec.EncodeBakedBlock(codec.Version1, block)
	require.NoError(t, err)

	t.Run("unsupported version", func(t *testing.T) {
		_, err := codec.EncodeBakedBlock(codec.ProtocolVersion(2), block)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidEncodingError(err))
		_, err = codec.DecodeBakedBlock(codec.ProtocolVersion(0), maxTxTime, enc)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidEncodingError(err))
	})

	t.Run("invalid presence tag", func(t *testing.T) {
		// The TC presence tag follows the four header words and the QC.
		offset := 32 + len(codec.EncodeQuorumCertificate(&block.QuorumCertificate))
		forged := append([]byte{}, enc...)
		require.Equal(t, byte(0), forged[offset])
		forged[offset] = 0x02
		_, err := codec.DecodeBakedBlock(codec.Version1, maxTxTime, forged)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidEncodingError(err))
	})

	t.Run("transaction arrival beyond bound", func(t *testing.T) {
		_, err := codec.DecodeBakedBlock(codec.Version1, halcyon.Timestamp(1), enc)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidEncodingError(err))
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := codec.DecodeBakedBlock(codec.Version1, maxTxTime, enc[:len(enc)-3])
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidEncodingError(err))
	})

	t.Run("hostile transaction count", func(t *testing.T) {
		// A tiny input claiming 2^31 transactions must be rejected before
		// anything is allocated for them, not crash the process.
		empty := unittest.BakedBlockFixture(func(b *halcyon.BakedBlock) {
			b.Transactions = nil
		})
		encEmpty, err := codec.EncodeBakedBlock(codec.Version1, empty)
		require.NoError(t, err)
		forged := append([]byte{}, encEmpty[:len(encEmpty)-4]...)
		forged = binary.BigEndian.AppendUint32(forged, 1<<31)
		_, err = codec.DecodeBakedBlock(codec.Version1, maxTxTime, forged)
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidEncodingError(err))
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := codec.DecodeBakedBlock(codec.Version1, maxTxTime, append(append([]byte{}, enc...), 0xff))
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidEncodingError(err))
	})
}

func TestSignedBlockRoundTrip(t *testing.T) {
	sb := unittest.SignedBlockFixture()
	enc, err := codec.EncodeSignedBlock(codec.Version1, sb)
	require.NoError(t, err)

	decoded, err := codec.DecodeSignedBlock(codec.Version1, maxTxTime, enc)
	require.NoError(t, err)
	assert.Equal(t, sb, decoded)

	_, err = codec.DecodeSignedBlock(codec.Version1, maxTxTime, enc[:len(enc)-10])
	require.Error(t, err)
	assert.True(t, halcyon.IsInvalidEncodingError(err))
}

func TestPersistentRoundStatusRoundTrip(t *testing.T) {
	t.Run("zero status", func(t *testing.T) {
		var status halcyon.PersistentRoundStatus
		decoded, err := codec.DecodePersistentRoundStatus(codec.EncodePersistentRoundStatus(&status))
		require.NoError(t, err)
		assert.Equal(t, &status, decoded)
	})

	t.Run("fully populated", func(t *testing.T) {
		status := unittest.RoundStatusFixture()
		decoded, err := codec.DecodePersistentRoundStatus(codec.EncodePersistentRoundStatus(status))
		require.NoError(t, err)
		assert.Equal(t, status, decoded)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		enc := codec.EncodePersistentRoundStatus(unittest.RoundStatusFixture())
		_, err := codec.DecodePersistentRoundStatus(append(append([]byte{}, enc...), 0x00))
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidEncodingError(err))
	})

	t.Run("truncated", func(t *testing.T) {
		enc := codec.EncodePersistentRoundStatus(unittest.RoundStatusFixture())
		_, err := codec.DecodePersistentRoundStatus(enc[:5])
		require.Error(t, err)
		assert.True(t, halcyon.IsInvalidEncodingError(err))
	})
}
