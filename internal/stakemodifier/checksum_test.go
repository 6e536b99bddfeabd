package stakemodifier

import (
	"testing"

	"github.com/epmcoin/stakekernel/internal/chainindex"
)

func TestChecksum_SensitiveToEveryInput(t *testing.T) {
	base := &chainindex.BlockIndexEntry{
		Flags:            chainindex.FlagGeneratedStakeModifier,
		HashProofOfStake: hashFromByte(7),
		StakeModifier:    42,
	}
	baseSum := Checksum(base)

	withParent := &chainindex.BlockIndexEntry{
		Flags:            base.Flags,
		HashProofOfStake: base.HashProofOfStake,
		StakeModifier:    base.StakeModifier,
		Parent:           &chainindex.BlockIndexEntry{StakeModifierChecksum: 0x1234},
	}
	if Checksum(withParent) == baseSum {
		t.Fatal("checksum should change when the parent checksum changes")
	}

	withFlags := &chainindex.BlockIndexEntry{
		Flags:            base.Flags | chainindex.FlagIsProofOfStake,
		HashProofOfStake: base.HashProofOfStake,
		StakeModifier:    base.StakeModifier,
	}
	if Checksum(withFlags) == baseSum {
		t.Fatal("checksum should change when flags change")
	}

	withHash := &chainindex.BlockIndexEntry{
		Flags:            base.Flags,
		HashProofOfStake: hashFromByte(8),
		StakeModifier:    base.StakeModifier,
	}
	if Checksum(withHash) == baseSum {
		t.Fatal("checksum should change when hashProofOfStake changes")
	}

	withModifier := &chainindex.BlockIndexEntry{
		Flags:            base.Flags,
		HashProofOfStake: base.HashProofOfStake,
		StakeModifier:    43,
	}
	if Checksum(withModifier) == baseSum {
		t.Fatal("checksum should change when the stake modifier changes")
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	entry := &chainindex.BlockIndexEntry{
		Flags:            chainindex.FlagGeneratedStakeModifier,
		HashProofOfStake: hashFromByte(3),
		StakeModifier:    99,
	}
	if Checksum(entry) != Checksum(entry) {
		t.Fatal("Checksum() should be a pure function of the entry")
	}
}

func TestCheckpoints_Check(t *testing.T) {
	cps := Checkpoints{100: 0xcafebabe}

	if !cps.Check(101, 0) {
		t.Fatal("heights without a checkpoint should always pass")
	}
	if !cps.Check(100, 0xcafebabe) {
		t.Fatal("matching checksum should pass")
	}
	if cps.Check(100, 0xdeadbeef) {
		t.Fatal("mismatching checksum should fail")
	}
}
