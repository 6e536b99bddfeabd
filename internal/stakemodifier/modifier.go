// Package stakemodifier computes and checksums the stake modifier that
// seeds kernel hash selection (spec §4.2 and §4.4). It is grounded on
// peercoin-btcd's kernel.go, generalized to take an explicit
// *consensus.Context instead of reading package-level chain state.
package stakemodifier

import (
	"errors"
	"math/big"
	"sort"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/epmcoin/stakekernel/internal/chainindex"
	"github.com/epmcoin/stakekernel/internal/consensus"
	"github.com/epmcoin/stakekernel/internal/metrics"
	"github.com/epmcoin/stakekernel/internal/wireutil"
	"github.com/epmcoin/stakekernel/pkg/bigmath"
)

// numSelectionRounds is the fixed number of selection rounds folded into
// the 64-bit modifier, one bit per round.
const numSelectionRounds = 64

// selectionIntervalSection returns the length, in seconds, of the
// nSection'th slice of the selection interval (spec §4.2). Sections near
// the end of the interval are longer than sections near the start, biasing
// candidate selection toward more recent blocks as nSection grows.
func selectionIntervalSection(params *consensus.Params, nSection int) int64 {
	ratio := params.ModifierIntervalRatio
	return params.ModifierInterval * (numSelectionRounds - 1) /
		((numSelectionRounds - 1) + (int64(numSelectionRounds-1-nSection))*(ratio-1))
}

// SelectionInterval returns the total look-back window, the sum of all 64
// section lengths. Exported because the kernel modifier resolver (spec
// §4.3) needs the same constant to know how far forward to walk.
func SelectionInterval(params *consensus.Params) int64 {
	var total int64
	for i := 0; i < numSelectionRounds; i++ {
		total += selectionIntervalSection(params, i)
	}
	return total
}

// lastStakeModifier walks parent pointers back from pindexPrev to the
// nearest ancestor (inclusive) that generated its own modifier, returning
// that modifier and the block time it was generated at.
func lastStakeModifier(pindexPrev *chainindex.BlockIndexEntry) (uint64, int64, error) {
	if pindexPrev == nil {
		return 0, 0, nil
	}
	e := pindexPrev
	for e.Parent != nil && !e.Flags.GeneratedStakeModifier() {
		e = e.Parent
	}
	if !e.Flags.GeneratedStakeModifier() {
		return 0, 0, errors.New("no generated stake modifier found on ancestor chain")
	}
	return e.StakeModifier, e.BlockTime, nil
}

// candidate pairs a block's timestamp with its hash for the sort-by-time
// step of candidate gathering (spec §4.2).
type candidate struct {
	blockTime int64
	hash      chainhash.Hash
	entry     *chainindex.BlockIndexEntry
}

// selectionHash computes a candidate's ranking hash: double-SHA256 of its
// proof hash concatenated with the previous stake modifier, right-shifted
// by 32 bits for proof-of-stake candidates so that PoS blocks are always
// favored over PoW blocks in the selection (spec §4.2's PoS bias). The
// full 256-bit shifted value is returned and must be compared at full
// width — spec §4.2 step 4 / §8 properties 3-4 require "strictly lower as
// unsigned 256-bit", which a low-64-bit truncation does not preserve.
func selectionHash(entry *chainindex.BlockIndexEntry, prevModifier uint64) *big.Int {
	proofHash := entry.BlockHash
	if entry.Flags.IsProofOfStake() && !chainindex.IsZero(entry.HashProofOfStake) {
		proofHash = entry.HashProofOfStake
	}
	buf := wireutil.NewBuffer(chainhash.HashSize + 8)
	buf.PutHash(proofHash)
	buf.PutUint64(prevModifier)
	h := wireutil.DoubleSHA256(buf.Bytes())

	shift := uint(0)
	if entry.Flags.IsProofOfStake() {
		shift = 32
	}
	return bigmath.ShiftRight(h, shift)
}

// selectBlockFromCandidates picks the candidate with the lowest selection
// hash among those not yet selected and timestamped at or before
// selectionIntervalStop (spec §4.2). Once a candidate has been accepted in
// an earlier round the loop still walks past it, so candidates are simply
// skipped rather than removed from the slice.
func selectBlockFromCandidates(
	sorted []candidate,
	selected map[chainhash.Hash]bool,
	selectionIntervalStop int64,
	prevModifier uint64,
) (*chainindex.BlockIndexEntry, bool) {
	var best *chainindex.BlockIndexEntry
	var bestHash *big.Int
	found := false

	for _, c := range sorted {
		if found && c.blockTime > selectionIntervalStop {
			break
		}
		if selected[c.hash] {
			continue
		}
		hSel := selectionHash(c.entry, prevModifier)
		if !found {
			found = true
			bestHash = hSel
			best = c.entry
		} else if hSel.Cmp(bestHash) < 0 {
			bestHash = hSel
			best = c.entry
		}
	}
	return best, found
}

// ComputeNext computes the stake modifier effective after connecting a
// block on top of pindexPrev (spec §4.2). It returns the modifier that
// should be recorded on the new block, and whether that modifier was
// freshly generated (as opposed to inherited unchanged).
//
// pindexPrev == nil designates the genesis block: its modifier is defined
// to be 0, freshly "generated".
func ComputeNext(ctx *consensus.Context, pindexPrev *chainindex.BlockIndexEntry) (modifier uint64, generated bool, err error) {
	if pindexPrev == nil {
		return 0, true, nil
	}

	started := time.Now()
	defer func() { metrics.ObserveModifierComputation(generated, err, started) }()

	prevModifier, modifierTime, err := lastStakeModifier(pindexPrev)
	if err != nil {
		return 0, false, newError("ComputeNext", err)
	}

	interval := ctx.Params.ModifierInterval
	if interval <= 0 {
		return 0, false, newError("ComputeNext", errors.New("non-positive modifier interval"))
	}

	// Modifier is only recomputed once per interval; while pindexPrev
	// still falls in the same interval as the last generation, the
	// current modifier carries forward unchanged.
	if modifierTime/interval >= pindexPrev.BlockTime/interval {
		return prevModifier, false, nil
	}

	selInterval := SelectionInterval(ctx.Params)
	selStart := (pindexPrev.BlockTime/interval)*interval - selInterval

	var sorted []candidate
	for e := pindexPrev; e != nil && e.BlockTime >= selStart; e = e.Parent {
		sorted = append(sorted, candidate{blockTime: e.BlockTime, hash: e.BlockHash, entry: e})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].blockTime != sorted[j].blockTime {
			return sorted[i].blockTime < sorted[j].blockTime
		}
		return lessHash(sorted[i].hash, sorted[j].hash)
	})

	rounds := numSelectionRounds
	if len(sorted) < rounds {
		rounds = len(sorted)
	}

	var newModifier uint64
	selectionIntervalStop := selStart
	selected := make(map[chainhash.Hash]bool, rounds)
	for round := 0; round < rounds; round++ {
		selectionIntervalStop += selectionIntervalSection(ctx.Params, round)
		picked, ok := selectBlockFromCandidates(sorted, selected, selectionIntervalStop, prevModifier)
		if !ok {
			return 0, false, newError("ComputeNext", errors.New("unable to select candidate block for round"))
		}
		newModifier |= uint64(picked.Flags.StakeEntropyBit()) << uint(round)
		selected[picked.BlockHash] = true
	}

	return newModifier, true, nil
}

func lessHash(a, b chainhash.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
