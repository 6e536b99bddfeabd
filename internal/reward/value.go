// Package reward validates that a connecting block's total coinbase plus
// coinstake value stays within the schedule the network agreed on,
// folding in the superblock exception (spec §4.8). It is grounded on
// masternode-payments.cpp's IsBlockValueValid.
package reward

import (
	"errors"

	"github.com/epmcoin/stakekernel/internal/consensus"
	"github.com/epmcoin/stakekernel/internal/metrics"
)

// BlockValueInput is the minimal view of a connecting block's generation
// transaction this check needs.
type BlockValueInput struct {
	Height              uint32
	IsProofOfStake      bool
	GenerationTxOutputs []consensus.TxOut // coinbase (PoW) or coinstake (PoS) vout
	StakeValueIn        int64             // sum of the coinstake's spent inputs; 0 for PoW
	BlockReward         int64
}

type txOutputs []consensus.TxOut

func (t txOutputs) Outputs() []consensus.TxOut { return t }

func sumOutputs(outs []consensus.TxOut) int64 {
	var total int64
	for _, o := range outs {
		total += o.Value
	}
	return total
}

// IsBlockValueValid checks a connecting block's generation value against
// the regular block-reward schedule, or against the wider superblock
// schedule (plus exact payee validation) when the height is a triggered
// superblock (spec §4.8). Returns nil when the value is acceptable.
func IsBlockValueValid(ctx *consensus.Context, in BlockValueInput) (err error) {
	defer func() { metrics.ObserveBlockValueCheck(err) }()

	blockValue := sumOutputs(in.GenerationTxOutputs) - in.StakeValueIn
	isBlockRewardValueMet := blockValue <= in.BlockReward

	if in.Height == ctx.Params.GenerationHeight {
		return nil
	}

	if !ctx.Superblock.IsValidSuperblockHeight(in.Height) {
		if !isBlockRewardValueMet {
			return newError("IsBlockValueValid", in.Height, errors.New("coinbase pays too much: exceeded block reward, only regular blocks are allowed at this height"))
		}
		return nil
	}

	superblockMaxValue := in.BlockReward + ctx.Superblock.PaymentsLimit(in.Height)
	if blockValue > superblockMaxValue {
		return newError("IsBlockValueValid", in.Height, errors.New("coinbase pays too much: exceeded superblock max value"))
	}

	if !ctx.Sync.IsSynced() || ctx.Sync.LiteMode() {
		// Not enough data for full checks, but the superblock limit was
		// honored; trust the network to have followed the correct chain.
		return nil
	}

	if !ctx.Sporks.IsActive(consensus.SporkSuperblocksEnabled) {
		if !isBlockRewardValueMet {
			return newError("IsBlockValueValid", in.Height, errors.New("coinbase pays too much: exceeded block reward, superblocks are disabled"))
		}
		return nil
	}

	if !ctx.Superblock.IsSuperblockTriggered(in.Height) {
		if !isBlockRewardValueMet {
			return newError("IsBlockValueValid", in.Height, errors.New("coinbase pays too much: exceeded block reward, no triggered superblock detected"))
		}
		return nil
	}

	if !ctx.Superblock.IsValid(txOutputs(in.GenerationTxOutputs), in.Height, in.BlockReward) {
		return newError("IsBlockValueValid", in.Height, errors.New("invalid superblock detected"))
	}

	return nil
}
