package chainindex

import (
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// View is the abstract read-only view of the block tree (spec §4.1). Every
// other component in this module is a pure function over a View plus
// consensus parameters; none of them acquire locking themselves.
type View interface {
	ByHash(hash chainhash.Hash) (*BlockIndexEntry, bool)
	HeightAt(height uint32) (*BlockIndexEntry, bool)
	NextOnActive(entry *BlockIndexEntry) (*BlockIndexEntry, bool)
	Contains(entry *BlockIndexEntry) bool
	Tip() (*BlockIndexEntry, bool)
}

// Index is an append-only, branch-aware store of BlockIndexEntry values.
// Its own reader-writer lock is unexported and is held only for the
// duration of each individual method; a consistent view across the
// several View calls a validator makes (spec §5's "chain lock") is left
// to locking the caller does outside Index.
type Index struct {
	mu sync.RWMutex

	byHash      map[chainhash.Hash]*BlockIndexEntry
	activeChain []*BlockIndexEntry // height-indexed, activeChain[0] is genesis
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		byHash: make(map[chainhash.Hash]*BlockIndexEntry),
	}
}

// ByHash looks up an entry by its block hash, active or not.
func (idx *Index) ByHash(hash chainhash.Hash) (*BlockIndexEntry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	e, ok := idx.byHash[hash]
	return e, ok
}

// HeightAt returns the active-chain entry at the given height.
func (idx *Index) HeightAt(height uint32) (*BlockIndexEntry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if int(height) >= len(idx.activeChain) {
		return nil, false
	}
	return idx.activeChain[height], true
}

// NextOnActive returns the active-chain successor of entry, if entry is
// itself on the active chain and is not the tip.
func (idx *Index) NextOnActive(entry *BlockIndexEntry) (*BlockIndexEntry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if entry == nil {
		return nil, false
	}
	next := entry.Height + 1
	if int(next) >= len(idx.activeChain) {
		return nil, false
	}
	candidate := idx.activeChain[next]
	if candidate.Parent != entry {
		return nil, false
	}
	return candidate, true
}

// Contains reports whether entry is on the active chain.
func (idx *Index) Contains(entry *BlockIndexEntry) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if entry == nil {
		return false
	}
	if int(entry.Height) >= len(idx.activeChain) {
		return false
	}
	return idx.activeChain[entry.Height] == entry
}

// Tip returns the current active-chain tip.
func (idx *Index) Tip() (*BlockIndexEntry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if len(idx.activeChain) == 0 {
		return nil, false
	}
	return idx.activeChain[len(idx.activeChain)-1], true
}

// AddEntry registers entry under its hash. It does not place entry on the
// active chain; callers must call SetActiveTip once
// their fork-choice rule has decided entry belongs there. This mirrors
// spec §1's stance that fork choice lives outside the core.
func (idx *Index) AddEntry(entry *BlockIndexEntry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.byHash[entry.BlockHash] = entry
}

// SetActiveTip makes tip the end of the active chain, walking parent
// pointers from tip all the way back to genesis and replacing the
// height-indexed slice with that path.
// This is the only mutator of activeChain and is expected to be called by
// the caller's chain-connection logic, never by the validators in this
// module.
func (idx *Index) SetActiveTip(tip *BlockIndexEntry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	chain := make([]*BlockIndexEntry, tip.Height+1)
	for e := tip; e != nil; e = e.Parent {
		chain[e.Height] = e
	}
	idx.activeChain = chain
}

// ForwardPath constructs the temporary forward path described in spec
// §4.3: walk from prev toward genesis collecting entries until an entry
// already on the active chain is reached, then reverse. The returned
// slice excludes the active-chain entry where the walk stopped; the
// active chain's NextOnActive is expected to take over traversal from
// there.
func ForwardPath(view View, prev *BlockIndexEntry) []*BlockIndexEntry {
	var rev []*BlockIndexEntry
	for e := prev; e != nil && !view.Contains(e); e = e.Parent {
		rev = append(rev, e)
	}
	path := make([]*BlockIndexEntry, len(rev))
	for i, e := range rev {
		path[len(rev)-1-i] = e
	}
	return path
}
