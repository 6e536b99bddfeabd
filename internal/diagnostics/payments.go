// Package diagnostics provides the non-consensus-critical reporting this
// module exposes to operators: the required-payments schedule and an
// audit trail of computed stake modifiers. None of it participates in
// block acceptance. Grounded on masternode-payments.cpp's
// GetRequiredPaymentsStrings and on the teacher's use of pkg/workerpool
// for bounded concurrent fan-out.
package diagnostics

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/epmcoin/stakekernel/internal/consensus"
	"github.com/epmcoin/stakekernel/internal/payee"
	"github.com/epmcoin/stakekernel/pkg/workerpool"
)

// RequiredPaymentsStrings renders the expected payee (and, where
// triggered, superblock) description for every height in
// [startHeight, endHeight), fanning the per-height lookups out across a
// bounded worker pool (spec §6).
//
// Heights beyond the current chain tip are resolved from the
// deterministic masternode list's projected schedule instead of a
// connected block, mirroring the original's "doProjection" fallback.
func RequiredPaymentsStrings(ctx context.Context, cctx *consensus.Context, startHeight, endHeight uint32) (map[uint32]string, error) {
	if startHeight < 1 {
		startHeight = 1
	}
	if endHeight <= startHeight {
		return map[uint32]string{}, nil
	}

	heights := make([]uint32, 0, endHeight-startHeight)
	for h := startHeight; h < endHeight; h++ {
		heights = append(heights, h)
	}

	results := make(map[uint32]string, len(heights))
	var mu sync.Mutex

	const workerCount = 8
	err := workerpool.Process(ctx, workerCount, heights, func(ctx context.Context, height uint32) error {
		str, err := requiredPaymentsStringAt(cctx, height)
		if err != nil {
			return err
		}
		mu.Lock()
		results[height] = str
		mu.Unlock()
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func requiredPaymentsStringAt(cctx *consensus.Context, height uint32) (string, error) {
	entry, onActiveChain := cctx.Chain.HeightAt(height - 1)
	if !onActiveChain {
		// The projected schedule starts at the height right after the tip,
		// so height takes the payee at its distance past the tip.
		offset := int(height) - 1
		if tip, ok := cctx.Chain.Tip(); ok {
			offset = int(height) - int(tip.Height) - 1
		}
		projected, err := cctx.MNs.ProjectedPayees(offset + 1)
		if err != nil {
			return "", err
		}
		var p *consensus.MNPayee
		if offset < len(projected) {
			p = projected[offset]
		}
		return payee.GetRequiredPaymentsString(cctx, height, p), nil
	}

	list, err := cctx.MNs.ListForBlock(entry.BlockHash)
	if err != nil {
		return "", err
	}
	p, _ := list.MNPayee()
	return payee.GetRequiredPaymentsString(cctx, height, p), nil
}

// SortedHeights returns a map's height keys in ascending order, a small
// convenience for formatting RequiredPaymentsStrings output.
func SortedHeights(m map[uint32]string) []uint32 {
	out := make([]uint32, 0, len(m))
	for h := range m {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FormatPaymentsReport renders a RequiredPaymentsStrings result as one
// "height: payee" line per entry, in ascending height order.
func FormatPaymentsReport(m map[uint32]string) string {
	var s string
	for _, h := range SortedHeights(m) {
		s += fmt.Sprintf("%d: %s\n", h, m[h])
	}
	return s
}
