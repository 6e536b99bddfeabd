package kernel

import (
	"errors"

	"github.com/epmcoin/stakekernel/internal/chainindex"
	"github.com/epmcoin/stakekernel/internal/consensus"
	"github.com/epmcoin/stakekernel/internal/stakemodifier"
)

// resolvedModifier is the stake modifier a kernel hash should be built
// against, plus the height/time it was generated at (used only for
// diagnostics, not for the acceptance test itself).
type resolvedModifier struct {
	Modifier uint64
	Height   uint32
	Time     int64
}

// resolveKernelModifier finds the stake modifier that was in effect a full
// selection interval after blockFrom (the block whose coins are staking),
// walking forward from blockFrom toward pindexPrev (spec §4.3).
//
// blockFrom need not be on the active chain: pindexPrev, the tip the
// candidate block extends, may sit on a branch that has not yet been
// reorganized in. The walk therefore builds a temporary forward path with
// chainindex.ForwardPath for the non-active portion leading to pindexPrev;
// it follows active-chain successors until it reaches the height where
// that path begins, then continues along the path.
//
// The comparison pindex.Height >= tmpChain[0].Height-1 that decides when
// to switch from active-chain successors to the temporary path is an
// off-by-one carried over unchanged from the reference implementation:
// spec §9 requires bit-for-bit compatibility with existing history over
// a "more correct" rewrite here.
func resolveKernelModifier(ctx *consensus.Context, pindexPrev, blockFrom *chainindex.BlockIndexEntry) (resolvedModifier, bool, error) {
	if blockFrom == nil {
		return resolvedModifier{}, false, newIoError("resolveKernelModifier", errors.New("stake input's containing block not indexed"))
	}

	res := resolvedModifier{Height: blockFrom.Height, Time: blockFrom.BlockTime}
	selInterval := selectionIntervalOf(ctx)

	tmpChain := chainindex.ForwardPath(ctx.Chain, pindexPrev)

	pindex := blockFrom
	n := 0

	for res.Time < blockFrom.BlockTime+selInterval {
		var next *chainindex.BlockIndexEntry
		useTmp := len(tmpChain) > 0 && pindex.Height+1 >= tmpChain[0].Height
		if useTmp {
			if n < len(tmpChain) {
				next = tmpChain[n]
				n++
			}
		} else {
			next, _ = ctx.Chain.NextOnActive(pindex)
		}

		if next == nil {
			if isRecentEnough(ctx, blockFrom) {
				return resolvedModifier{}, false, newKernelError("resolveKernelModifier",
					errors.New("reached chain tip before resolving kernel modifier"))
			}
			return resolvedModifier{}, false, nil
		}
		pindex = next

		if pindex.Flags.GeneratedStakeModifier() {
			res.Height = pindex.Height
			res.Time = pindex.BlockTime
		}
	}

	res.Modifier = pindex.StakeModifier
	return res, true, nil
}

// isRecentEnough reports whether the stake candidate is too fresh for the
// resolver's inability to make progress to be tolerated; a node still
// syncing is expected to hit the chain tip while backfilling and should
// simply defer judgment rather than error out.
func isRecentEnough(ctx *consensus.Context, blockFrom *chainindex.BlockIndexEntry) bool {
	selInterval := selectionIntervalOf(ctx)
	return blockFrom.BlockTime+ctx.Params.StakeMinAge-selInterval > ctx.Clock.AdjustedTime()
}

func selectionIntervalOf(ctx *consensus.Context) int64 {
	return stakemodifier.SelectionInterval(ctx.Params)
}
