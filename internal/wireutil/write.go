// Package wireutil provides the little-endian primitive serialization the
// kernel hash and checksum preimages need. It is the Go-native analogue of
// peercoin-btcd's writeElement: one fixed-width Put method per field type
// instead of reflection-driven encoding/gob, because every preimage in this module is
// a short, fixed sequence of known-width fields.
package wireutil

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Buffer accumulates a little-endian preimage for hashing.
type Buffer struct {
	buf bytes.Buffer
}

// NewBuffer returns an empty preimage buffer with capacity hinted by size.
func NewBuffer(size int) *Buffer {
	b := &Buffer{}
	b.buf.Grow(size)
	return b
}

// PutUint32 appends v as 4 little-endian bytes.
func (b *Buffer) PutUint32(v uint32) *Buffer {
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], v)
	b.buf.Write(scratch[:])
	return b
}

// PutUint64 appends v as 8 little-endian bytes.
func (b *Buffer) PutUint64(v uint64) *Buffer {
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], v)
	b.buf.Write(scratch[:])
	return b
}

// PutHash appends a hash's raw bytes verbatim (hashes are not
// endian-swapped when mixed into a preimage; they are opaque 32-byte
// strings as far as the hash function is concerned).
func (b *Buffer) PutHash(h chainhash.Hash) *Buffer {
	b.buf.Write(h[:])
	return b
}

// Bytes returns the accumulated preimage.
func (b *Buffer) Bytes() []byte {
	return b.buf.Bytes()
}

// DoubleSHA256 hashes data with Bitcoin's double-SHA256 and returns it as
// a chainhash.Hash, exactly the "H" used throughout spec §4.
func DoubleSHA256(data []byte) chainhash.Hash {
	return chainhash.DoubleHashH(data)
}
