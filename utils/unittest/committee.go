package unittest

import (
	"github.com/onflow/crypto"

	"github.com/halcyonnet/halcyon-go/consensus"
	"github.com/halcyonnet/halcyon-go/model/halcyon"
)

// FinalizerIdentity holds the full key material of one test finalizer. The
// finalizer doubles as a baker under BakerID(index), which mirrors how test
// committees are usually set up.
type FinalizerIdentity struct {
	Index    halcyon.FinalizerIndex
	Weight   uint64
	BLSKey   crypto.PrivateKey
	BlockKey crypto.PrivateKey
}

// FinalizerIdentityFixtures returns n deterministic finalizer identities
// with weight 1 each.
func FinalizerIdentityFixtures(n int) []FinalizerIdentity {
	identities := make([]FinalizerIdentity, n)
	for i := range identities {
		identities[i] = FinalizerIdentity{
			Index:    halcyon.FinalizerIndex(i),
			Weight:   1,
			BLSKey:   BLSKeyFixture(byte(i + 1)),
			BlockKey: ECDSAKeyFixture(byte(i + 1)),
		}
	}
	return identities
}

// StaticCommittee is a Committee with the same membership in every epoch.
type StaticCommittee struct {
	identities []FinalizerIdentity
}

var _ consensus.Committee = (*StaticCommittee)(nil)

// NewStaticCommittee creates a committee over the given identities.
func NewStaticCommittee(identities []FinalizerIdentity) *StaticCommittee {
	return &StaticCommittee{identities: identities}
}

func (c *StaticCommittee) member(index halcyon.FinalizerIndex) (*FinalizerIdentity, error) {
	if int(index) >= len(c.identities) {
		return nil, consensus.ErrUnknownFinalizer
	}
	return &c.identities[index], nil
}

func (c *StaticCommittee) FinalizerKey(_ halcyon.Epoch, index halcyon.FinalizerIndex) (crypto.PublicKey, error) {
	m, err := c.member(index)
	if err != nil {
		return nil, err
	}
	return m.BLSKey.PublicKey(), nil
}

func (c *StaticCommittee) FinalizerBlockKey(_ halcyon.Epoch, index halcyon.FinalizerIndex) (crypto.PublicKey, error) {
	m, err := c.member(index)
	if err != nil {
		return nil, err
	}
	return m.BlockKey.PublicKey(), nil
}

func (c *StaticCommittee) BakerKey(_ halcyon.Epoch, baker halcyon.BakerID) (crypto.PublicKey, error) {
	if int(baker) >= len(c.identities) {
		return nil, consensus.ErrUnknownBaker
	}
	return c.identities[baker].BlockKey.PublicKey(), nil
}

func (c *StaticCommittee) FinalizerWeight(_ halcyon.Epoch, index halcyon.FinalizerIndex) (uint64, error) {
	m, err := c.member(index)
	if err != nil {
		return 0, err
	}
	return m.Weight, nil
}

func (c *StaticCommittee) TotalWeight(_ halcyon.Epoch) (uint64, error) {
	var total uint64
	for _, m := range c.identities {
		total += m.Weight
	}
	return total, nil
}
