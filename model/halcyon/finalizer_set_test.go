package halcyon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/halcyonnet/halcyon-go/model/halcyon"
)

func TestFinalizerSet_Membership(t *testing.T) {
	s := halcyon.NewFinalizerSet([]halcyon.FinalizerIndex{3, 0, 17, 3})

	assert.True(t, s.Contains(0))
	assert.True(t, s.Contains(3))
	assert.True(t, s.Contains(17))
	assert.False(t, s.Contains(1))
	assert.False(t, s.Contains(64))
	assert.False(t, s.Contains(1000))

	// Duplicates collapse and indices come back sorted.
	assert.Equal(t, []halcyon.FinalizerIndex{0, 3, 17}, s.Indices())
	assert.Equal(t, 3, s.Cardinality())
	assert.False(t, s.IsEmpty())

	empty := halcyon.NewFinalizerSet(nil)
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, 0, empty.Cardinality())
	assert.Empty(t, empty.Indices())
}

func TestFinalizerSet_Union(t *testing.T) {
	a := halcyon.NewFinalizerSet([]halcyon.FinalizerIndex{1, 70})
	b := halcyon.NewFinalizerSet([]halcyon.FinalizerIndex{2, 70, 130})

	u := a.Union(b)
	assert.Equal(t, []halcyon.FinalizerIndex{1, 2, 70, 130}, u.Indices())

	// Union is symmetric and does not disturb the operands.
	assert.True(t, u.Equal(b.Union(a)))
	assert.Equal(t, []halcyon.FinalizerIndex{1, 70}, a.Indices())
	assert.Equal(t, []halcyon.FinalizerIndex{2, 70, 130}, b.Indices())

	// The empty set is the identity of union.
	assert.True(t, a.Union(halcyon.FinalizerSet{}).Equal(a))
	assert.True(t, halcyon.FinalizerSet{}.Union(a).Equal(a))
}

func TestFinalizerSet_BytesRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		indices := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) halcyon.FinalizerIndex {
			return halcyon.FinalizerIndex(rapid.Uint32Range(0, 300).Draw(t, "index"))
		}), 0, 40).Draw(t, "indices")

		s := halcyon.NewFinalizerSet(indices)
		decoded, err := halcyon.FinalizerSetFromBytes(s.Bytes())
		require.NoError(t, err)
		require.True(t, s.Equal(decoded))
		require.Equal(t, s.Indices(), decoded.Indices())
	})
}

func TestFinalizerSet_BytesMinimal(t *testing.T) {
	// The empty set serializes to nothing.
	assert.Nil(t, halcyon.FinalizerSet{}.Bytes())

	// A non-empty serialization never starts with a zero byte.
	b := halcyon.NewFinalizerSet([]halcyon.FinalizerIndex{0, 9}).Bytes()
	require.NotEmpty(t, b)
	assert.NotZero(t, b[0])

	// Index 9 sets bit 1 of the high byte, index 0 bit 0 of the low byte.
	assert.Equal(t, []byte{0x02, 0x01}, b)
}

func TestFinalizerSetFromBytes_RejectsLeadingZero(t *testing.T) {
	_, err := halcyon.FinalizerSetFromBytes([]byte{0x00, 0x01})
	require.Error(t, err)
	assert.True(t, halcyon.IsInvalidEncodingError(err))

	// The canonical form of the same set decodes fine.
	s, err := halcyon.FinalizerSetFromBytes([]byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, []halcyon.FinalizerIndex{0}, s.Indices())
}
