// Package chainindex models the branch-aware block tree the rest of the
// consensus kernel reads from. It owns no consensus logic of its own beyond
// the handful of per-entry derived values (entropy bit, flag predicates)
// that every other component treats as primitive inputs.
package chainindex

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Flags is the bit-packed per-entry state described in spec §3.
type Flags uint32

const (
	// FlagIsProofOfStake marks a block whose second transaction is a
	// coinstake that satisfied the kernel hash inequality.
	FlagIsProofOfStake Flags = 1 << 0
	// FlagStakeEntropyBit caches the entry's entropy bit so it does not
	// need to be recomputed from the hash on every modifier round.
	// Matches the reference BLOCK_STAKE_ENTROPY bit position (2); this
	// value is serialized into the stake-modifier checksum (see
	// Checksum in package stakemodifier), so it must line up exactly.
	FlagStakeEntropyBit Flags = 1 << 1
	// FlagGeneratedStakeModifier marks a block at which a new stake
	// modifier was computed (as opposed to inheriting the prior one).
	// Matches the reference BLOCK_STAKE_MODIFIER bit position (4); same
	// checksum-serialization constraint as FlagStakeEntropyBit.
	FlagGeneratedStakeModifier Flags = 1 << 2
)

// IsProofOfStake reports whether the entry's block used a PoS kernel.
func (f Flags) IsProofOfStake() bool { return f&FlagIsProofOfStake != 0 }

// GeneratedStakeModifier reports whether StakeModifier was freshly
// generated at this entry, rather than inherited from an ancestor.
func (f Flags) GeneratedStakeModifier() bool { return f&FlagGeneratedStakeModifier != 0 }

// StakeEntropyBit returns the cached entropy bit as 0 or 1.
func (f Flags) StakeEntropyBit() uint32 {
	if f&FlagStakeEntropyBit != 0 {
		return 1
	}
	return 0
}

// WithStakeEntropyBit returns f with the entropy bit flag set to match bit.
func (f Flags) WithStakeEntropyBit(bit uint32) Flags {
	if bit != 0 {
		return f | FlagStakeEntropyBit
	}
	return f &^ FlagStakeEntropyBit
}

// BlockIndexEntry is one node of the block tree (spec §3). Entries are
// allocated once and never mutated after being connected to the index,
// except for the fields that the stake modifier / kernel components are
// explicitly responsible for filling in (StakeModifier,
// StakeModifierChecksum, HashProofOfStake, and the Flags bits they own).
//
// Parent is a direct pointer rather than an arena index: entries never
// form cycles (each points only toward genesis), so Go's GC handles the
// back-edges without the bookkeeping an index-based arena would add, and
// every reference implementation in this domain (peercoin-btcd, dcrd)
// represents it the same way.
type BlockIndexEntry struct {
	Height    uint32
	BlockTime int64
	BlockHash chainhash.Hash
	Parent    *BlockIndexEntry

	Bits  uint32
	Flags Flags

	StakeModifier         uint64
	HashProofOfStake      chainhash.Hash
	StakeModifierChecksum uint32
}

// StakeEntropyBit extracts the deterministic single bit described in spec
// §3: bit 0 of the block hash's low-order 64 bits. chainhash.Hash stores
// bytes in internal (little-endian-ish) order, so byte 0 already holds the
// least significant byte of that low-64 word. It does not consult the
// cached flag bit — call this when populating a freshly connected entry,
// and cache the result via Flags.WithStakeEntropyBit.
func StakeEntropyBit(hash chainhash.Hash) uint32 {
	return uint32(hash[0] & 1)
}

// IsZero reports whether h is the all-zero hash, used throughout the kernel
// to distinguish "no proof-of-stake hash recorded" from a real hash.
func IsZero(h chainhash.Hash) bool {
	return h == chainhash.Hash{}
}
