// Package codec implements the canonical binary encoding of every wire and
// storage type of the consensus core.
//
// Layout rules:
//   - fixed-width integers are big-endian;
//   - hashes and BLS signatures are raw fixed-width bytes;
//   - sequences and maps are length-prefixed (uint32) and ordered;
//   - optional values carry a one-byte presence tag (0 absent, 1 present);
//   - finalizer sets are length-prefixed minimal big-endian bitsets;
//   - finalizer-round mappings are encoded in strictly ascending round order.
//
// Decoding is total and fails closed: truncated input, out-of-range tags,
// non-canonical forms and trailing bytes all yield a typed
// halcyon.InvalidEncodingError, never a panic or a silently truncated value.
package codec

import (
	"encoding/binary"

	"github.com/halcyonnet/halcyon-go/model/halcyon"
)

// ProtocolVersion selects the block wire format. Decoders reject versions
// they do not understand.
type ProtocolVersion uint8

const (
	// Version1 is the only block format currently defined.
	Version1 ProtocolVersion = 1
)

func (v ProtocolVersion) valid() bool {
	return v == Version1
}

const (
	tagAbsent  = 0
	tagPresent = 1
)

// writer accumulates the canonical encoding. Writes never fail.
type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) u32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

func (w *writer) u64(v uint64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
}

func (w *writer) raw(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *writer) hash(h halcyon.Hash) {
	w.buf = append(w.buf, h[:]...)
}

func (w *writer) lenPrefixed(b []byte) {
	w.u32(uint32(len(b)))
	w.raw(b)
}

// reader consumes an encoding, failing closed on malformed input.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) take(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, halcyon.NewInvalidEncodingErrorf("unexpected end of input: need %d bytes, have %d", n, r.remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) hash() (halcyon.Hash, error) {
	var h halcyon.Hash
	b, err := r.take(halcyon.HashLen)
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

// sig reads a fixed-width signature and copies it out of the input buffer.
func (r *reader) sig(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

func (r *reader) lenPrefixed() ([]byte, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	b, err := r.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// presence reads an optional-value tag.
func (r *reader) presence() (bool, error) {
	t, err := r.u8()
	if err != nil {
		return false, err
	}
	switch t {
	case tagAbsent:
		return false, nil
	case tagPresent:
		return true, nil
	default:
		return false, halcyon.NewInvalidEncodingErrorf("invalid presence tag %d", t)
	}
}

// finish rejects trailing bytes after a complete top-level decode.
func (r *reader) finish() error {
	if r.remaining() != 0 {
		return halcyon.NewInvalidEncodingErrorf("%d trailing bytes after value", r.remaining())
	}
	return nil
}
