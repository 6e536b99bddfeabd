// Package bigmath wraps the 256-bit integer arithmetic the kernel and
// stake-modifier selection use, on top of btcsuite/btcd's compact-target
// conversions rather than a hand-rolled bignum type.
package bigmath

import (
	"math/big"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// TargetFromBits expands a compact "nBits" difficulty target into a full
// 256-bit integer, exactly Bitcoin's CompactToBig semantics.
func TargetFromBits(bits uint32) *big.Int {
	return blockchain.CompactToBig(bits)
}

// HashToBig reinterprets a hash's raw bytes as a big-endian integer for
// comparison against a target, matching Bitcoin's HashToBig (which
// internally reverses the hash's little-endian byte order first).
func HashToBig(hash chainhash.Hash) *big.Int {
	return blockchain.HashToBig(&hash)
}

// ShiftRight right-shifts a selection hash by n bits and returns the full
// 256-bit result, the operation peercoin-btcd's selectBlockFromCandidates
// applies (via CBigNum >>=) when computing each candidate's hashSelection
// during stake modifier selection. Callers must compare the returned value
// at full width (e.g. via Cmp) rather than truncating it — a 256-bit
// "strictly lower" comparison is not equivalent to comparing only the low
// 64 bits.
func ShiftRight(hash chainhash.Hash, n uint) *big.Int {
	v := new(big.Int).SetBytes(reversed(hash))
	v.Rsh(v, n)
	return v
}

// reversed returns hash's bytes in big-endian order (chainhash.Hash stores
// them reversed relative to the natural big-integer interpretation used by
// CBigNum in the original implementation).
func reversed(hash chainhash.Hash) []byte {
	out := make([]byte, len(hash))
	for i, b := range hash {
		out[len(hash)-1-i] = b
	}
	return out
}

// WeightedTargetExceeds reports whether hash, read as a 256-bit integer,
// is less than or equal to target multiplied by weight — the kernel
// acceptance test of spec §4.5: hash <= target * coinDayWeight.
func WeightedTargetExceeds(hash chainhash.Hash, target *big.Int, weight uint64) bool {
	weighted := new(big.Int).Mul(target, new(big.Int).SetUint64(weight))
	return HashToBig(hash).Cmp(weighted) <= 0
}
