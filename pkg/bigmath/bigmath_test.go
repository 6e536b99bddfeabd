package bigmath

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

func TestWeightedTargetExceeds(t *testing.T) {
	target := big.NewInt(1000)

	var small chainhash.Hash // all zero, smallest possible value
	if !WeightedTargetExceeds(small, target, 1) {
		t.Fatal("the zero hash should always satisfy the target")
	}

	var large chainhash.Hash
	for i := range large {
		large[i] = 0xff
	}
	if WeightedTargetExceeds(large, target, 1) {
		t.Fatal("the maximal hash should not satisfy a small target at weight 1")
	}
	if WeightedTargetExceeds(large, target, 0) {
		t.Fatal("weight 0 collapses the target to 0, so even the maximal hash should fail")
	}
}

func TestShiftRight_HalvesPerBit(t *testing.T) {
	var h chainhash.Hash
	h[0] = 0xff // chainhash.Hash byte 0 is the big integer's least significant byte

	full := ShiftRight(h, 0)
	shifted := ShiftRight(h, 1)

	if full.Uint64() != 0xff {
		t.Fatalf("ShiftRight(h, 0) = %d, want 255", full)
	}
	if shifted.Cmp(new(big.Int).Rsh(full, 1)) != 0 {
		t.Fatalf("ShiftRight(h, 1) = %s, want %s", shifted, new(big.Int).Rsh(full, 1))
	}
}

func TestShiftRight_PreservesFullWidth(t *testing.T) {
	// low has only its least-significant byte set (hash[0] maps to the
	// big integer's low-order byte); high has only a byte above bit 64
	// set (hash[9] maps to the big integer's 10th-from-the-bottom byte,
	// well past the 64-bit boundary a uint64 truncation would keep). A
	// low-64-bit truncation of high would read back as zero and compare
	// equal to, or below, low — the full 256-bit comparison must not.
	var low, high chainhash.Hash
	low[0] = 0x01
	high[9] = 0x01

	lowBig := ShiftRight(low, 0)
	highBig := ShiftRight(high, 0)

	if lowBig.Cmp(highBig) >= 0 {
		t.Fatalf("expected the hash with only its low-order byte set to compare lower than one with only a byte above bit 64 set")
	}
	if highBig.Uint64() != 0 {
		t.Fatalf("sanity check failed: expected a uint64 truncation of high to read back as 0, got %d", highBig.Uint64())
	}
}

func TestTargetFromBits_PositiveForValidCompact(t *testing.T) {
	target := TargetFromBits(0x1d00ffff)
	if target.Sign() <= 0 {
		t.Fatal("expected a positive target for a valid compact encoding")
	}
}
