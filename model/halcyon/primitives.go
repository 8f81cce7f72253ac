package halcyon

import (
	"encoding/hex"
	"time"
)

// HashLen is the byte length of all protocol digests.
const HashLen = 32

// Hash is a 32-byte protocol digest. It identifies blocks, state roots,
// transaction outcome trees and the genesis of a chain.
type Hash [HashLen]byte

// ZeroHash is the all-zero digest. It is never a valid block reference.
var ZeroHash = Hash{}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// BlockHash identifies a block by the digest of its header and content.
type BlockHash = Hash

// Round is the monotonic protocol step counter within an epoch.
type Round uint64

// Epoch counts committee-membership eras.
type Epoch uint64

// FinalizerIndex is the position of a finalizer in the finalization
// committee of a given epoch. Validity against the committee size is the
// caller's concern; the type itself carries no bound.
type FinalizerIndex uint32

// BakerID identifies the account that baked a block.
type BakerID uint64

// Timestamp is a moment in time, expressed in milliseconds since the unix
// epoch. Millisecond granularity matches the wire format; conversions drop
// sub-millisecond precision.
type Timestamp uint64

// TimestampFromTime converts a time.Time to a protocol timestamp.
func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

// Time converts the timestamp back to a time.Time in UTC.
func (ts Timestamp) Time() time.Time {
	return time.UnixMilli(int64(ts)).UTC()
}

// After reports whether ts is strictly later than other.
func (ts Timestamp) After(other Timestamp) bool {
	return ts > other
}
