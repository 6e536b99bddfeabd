package stakemodifier

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/epmcoin/stakekernel/internal/chainindex"
	"github.com/epmcoin/stakekernel/internal/consensus"
)

func testParams() *consensus.Params {
	return &consensus.Params{
		ModifierInterval:      6 * 60 * 60,
		ModifierIntervalRatio: 3,
		PosTargetSpacing:      64,
		StakeMinAge:           60 * 60,
		StakeMaxAge:           60 * 60 * 24,
		MinimumStakeValue:     10000 * 1e8,
		CoinUnit:              1e8,
	}
}

func TestSelectionInterval_MatchesSumOfSections(t *testing.T) {
	params := testParams()

	var sum int64
	for i := 0; i < numSelectionRounds; i++ {
		sum += selectionIntervalSection(params, i)
	}

	if got := SelectionInterval(params); got != sum {
		t.Fatalf("SelectionInterval() = %d, want %d", got, sum)
	}
	if sum <= 0 {
		t.Fatal("selection interval should be positive")
	}
}

func TestSelectionIntervalSection_IncreasesTowardEnd(t *testing.T) {
	params := testParams()

	prev := selectionIntervalSection(params, 0)
	for i := 1; i < numSelectionRounds; i++ {
		cur := selectionIntervalSection(params, i)
		if cur < prev {
			t.Fatalf("section(%d)=%d should be >= section(%d)=%d: later sections must not shrink", i, cur, i-1, prev)
		}
		prev = cur
	}
}

func TestComputeNext_GenesisHasZeroModifier(t *testing.T) {
	modifier, generated, err := ComputeNext(&consensus.Context{Params: testParams()}, nil)
	if err != nil {
		t.Fatalf("ComputeNext() error = %v", err)
	}
	if !generated {
		t.Fatal("expected genesis modifier to be reported as generated")
	}
	if modifier != 0 {
		t.Fatalf("expected genesis modifier 0, got %d", modifier)
	}
}

func TestComputeNext_CarriesForwardWithinSameInterval(t *testing.T) {
	params := testParams()
	genesis := &chainindex.BlockIndexEntry{
		Height:    0,
		BlockTime: 0,
		BlockHash: hashFromByte(1),
		Flags:     chainindex.FlagGeneratedStakeModifier,
	}
	genesis.StakeModifier = 0xdeadbeef

	next := &chainindex.BlockIndexEntry{
		Height:    1,
		BlockTime: 100, // still inside the same ModifierInterval bucket as genesis
		BlockHash: hashFromByte(2),
		Parent:    genesis,
	}

	modifier, generated, err := ComputeNext(&consensus.Context{Params: params}, next)
	if err != nil {
		t.Fatalf("ComputeNext() error = %v", err)
	}
	if generated {
		t.Fatal("expected modifier to be inherited, not freshly generated, within the same interval")
	}
	if modifier != genesis.StakeModifier {
		t.Fatalf("ComputeNext() = %#x, want inherited %#x", modifier, genesis.StakeModifier)
	}
}

func TestComputeNext_Deterministic(t *testing.T) {
	params := testParams()
	genesis := &chainindex.BlockIndexEntry{
		Height:    0,
		BlockTime: 0,
		BlockHash: hashFromByte(1),
		Flags:     chainindex.FlagGeneratedStakeModifier,
	}

	var parent *chainindex.BlockIndexEntry = genesis
	var chainEntries []*chainindex.BlockIndexEntry
	for i := 1; i <= 100; i++ {
		e := &chainindex.BlockIndexEntry{
			Height:    uint32(i),
			BlockTime: int64(i) * 600,
			BlockHash: hashFromByte(byte(i)),
			Parent:    parent,
		}
		chainEntries = append(chainEntries, e)
		parent = e
	}

	tip := chainEntries[len(chainEntries)-1]
	ctx := &consensus.Context{Params: params}

	m1, g1, err1 := ComputeNext(ctx, tip)
	m2, g2, err2 := ComputeNext(ctx, tip)
	if err1 != nil || err2 != nil {
		t.Fatalf("ComputeNext() errors = %v, %v", err1, err2)
	}
	if m1 != m2 || g1 != g2 {
		t.Fatalf("ComputeNext() is not deterministic: (%d,%v) != (%d,%v)", m1, g1, m2, g2)
	}
}

func hashFromByte(b byte) chainhash.Hash {
	var h chainhash.Hash
	h[0] = b
	return h
}
