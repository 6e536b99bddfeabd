package chainindex

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

func hashFromByte(b byte) chainhash.Hash {
	var h chainhash.Hash
	h[0] = b
	return h
}

func buildChain(n int) []*BlockIndexEntry {
	entries := make([]*BlockIndexEntry, n)
	var parent *BlockIndexEntry
	for i := 0; i < n; i++ {
		entries[i] = &BlockIndexEntry{
			Height:    uint32(i),
			BlockTime: int64(i * 60),
			BlockHash: hashFromByte(byte(i + 1)),
			Parent:    parent,
		}
		parent = entries[i]
	}
	return entries
}

func TestIndex_SetActiveTipAndViewMethods(t *testing.T) {
	idx := New()
	chain := buildChain(5)
	for _, e := range chain {
		idx.AddEntry(e)
	}
	idx.SetActiveTip(chain[4])

	tip, ok := idx.Tip()
	if !ok || tip != chain[4] {
		t.Fatalf("Tip() = %v, %v; want chain[4], true", tip, ok)
	}

	for i, e := range chain {
		got, ok := idx.HeightAt(uint32(i))
		if !ok || got != e {
			t.Fatalf("HeightAt(%d) = %v, %v; want %v, true", i, got, ok, e)
		}
		if !idx.Contains(e) {
			t.Fatalf("Contains(%d) = false, want true", i)
		}
	}

	next, ok := idx.NextOnActive(chain[1])
	if !ok || next != chain[2] {
		t.Fatalf("NextOnActive(chain[1]) = %v, %v; want chain[2], true", next, ok)
	}

	if _, ok := idx.NextOnActive(chain[4]); ok {
		t.Fatal("NextOnActive(tip) should report false")
	}
}

func TestIndex_ByHashFindsOffActiveBranch(t *testing.T) {
	idx := New()
	chain := buildChain(3)
	for _, e := range chain {
		idx.AddEntry(e)
	}
	idx.SetActiveTip(chain[2])

	fork := &BlockIndexEntry{
		Height:    2,
		BlockTime: 200,
		BlockHash: hashFromByte(99),
		Parent:    chain[1],
	}
	idx.AddEntry(fork)

	got, ok := idx.ByHash(fork.BlockHash)
	if !ok || got != fork {
		t.Fatalf("ByHash(fork) = %v, %v; want fork, true", got, ok)
	}
	if idx.Contains(fork) {
		t.Fatal("Contains(fork) should be false: fork is not on the active chain")
	}
}

func TestForwardPath_StopsAtActiveChain(t *testing.T) {
	idx := New()
	chain := buildChain(3)
	for _, e := range chain {
		idx.AddEntry(e)
	}
	idx.SetActiveTip(chain[2])

	branch := make([]*BlockIndexEntry, 0, 3)
	parent := chain[1]
	for i := 0; i < 3; i++ {
		e := &BlockIndexEntry{
			Height:    uint32(2 + i),
			BlockTime: int64(1000 + i),
			BlockHash: hashFromByte(byte(50 + i)),
			Parent:    parent,
		}
		idx.AddEntry(e)
		branch = append(branch, e)
		parent = e
	}

	path := ForwardPath(idx, branch[2])
	if len(path) != 3 {
		t.Fatalf("ForwardPath returned %d entries, want 3", len(path))
	}
	for i, e := range branch {
		if path[i] != e {
			t.Fatalf("ForwardPath[%d] = %v, want %v", i, path[i], e)
		}
	}
}

func TestForwardPath_EmptyWhenAlreadyActive(t *testing.T) {
	idx := New()
	chain := buildChain(3)
	for _, e := range chain {
		idx.AddEntry(e)
	}
	idx.SetActiveTip(chain[2])

	path := ForwardPath(idx, chain[1])
	if len(path) != 0 {
		t.Fatalf("ForwardPath returned %d entries, want 0", len(path))
	}
}
