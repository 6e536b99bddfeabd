// Package payee validates and fills the masternode and superblock
// payments a connecting block's generation transaction owes, under the
// deterministic masternode list (spec §4.7). It is grounded on
// masternode-payments.cpp's CMasternodePayments.
package payee

import (
	"errors"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/epmcoin/stakekernel/internal/consensus"
	"github.com/epmcoin/stakekernel/internal/metrics"
)

// MasternodePayment computes the masternode's share of a block's reward
// before any operator split is applied (spec §4.7).
func MasternodePayment(params *consensus.Params, blockReward int64) int64 {
	return blockReward * int64(params.MasternodeRewardBP) / 10000
}

// GetBlockTxOuts returns the masternode payout outputs due at height,
// split between the masternode operator and owner when the deterministic
// masternode carries an operator reward (spec §4.7). ok is false when no
// payee could be resolved (an empty masternode list), which the caller
// treats as "nothing to pay" rather than an error.
func GetBlockTxOuts(ctx *consensus.Context, height uint32, blockReward int64) (outs []consensus.TxOut, ok bool, err error) {
	if height == 0 {
		return nil, false, newError("GetBlockTxOuts", height, errors.New("height 0 has no preceding block"))
	}
	entry, found := ctx.Chain.HeightAt(height - 1)
	if !found {
		return nil, false, newError("GetBlockTxOuts", height, errors.New("active chain entry not found for height-1"))
	}

	list, err := ctx.MNs.ListForBlock(entry.BlockHash)
	if err != nil {
		return nil, false, newError("GetBlockTxOuts", height, err)
	}
	mnPayee, found := list.MNPayee()
	if !found {
		return nil, false, nil
	}

	masternodeReward := MasternodePayment(ctx.Params, blockReward)

	var operatorReward int64
	if mnPayee.OperatorRewardBP != 0 && len(mnPayee.OperatorPayoutScript) > 0 {
		// Can legitimately round to zero once the block reward has
		// dropped far enough; that is not an error.
		operatorReward = masternodeReward * int64(mnPayee.OperatorRewardBP) / 10000
		masternodeReward -= operatorReward
	}

	if masternodeReward > 0 {
		outs = append(outs, consensus.TxOut{Value: masternodeReward, ScriptPubKey: mnPayee.PayoutScript})
	}
	if operatorReward > 0 {
		outs = append(outs, consensus.TxOut{Value: operatorReward, ScriptPubKey: mnPayee.OperatorPayoutScript})
	}
	return outs, true, nil
}

// IsTransactionValid reports whether txOutputs pays every masternode
// output GetBlockTxOuts expects for height, as exact (value, script)
// matches (spec §4.7). A block at an empty-MN-list height is accepted
// unconditionally: there is nothing to check against.
func IsTransactionValid(ctx *consensus.Context, txOutputs []consensus.TxOut, height uint32, blockReward int64) (valid bool, err error) {
	defer func() {
		if err == nil {
			metrics.ObservePayeeCheck(valid)
		}
	}()

	expected, ok, err := GetBlockTxOuts(ctx, height, blockReward)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}

	for _, want := range expected {
		found := false
		for _, got := range txOutputs {
			if want.Equal(got) {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}

// txOutputs adapts a plain output slice to consensus.SuperblockTx.
type txOutputs []consensus.TxOut

func (o txOutputs) Outputs() []consensus.TxOut { return o }

// IsBlockPayeeValid is the upward interface this package exposes to block
// acceptance: does txNew's generation transaction pay everyone it owes at
// height (spec §6). It composes, in order: the genesis-height exception
// (spec §4.7), the lite-mode skip, the pre-superblock-activation skip, the
// triggered-superblock check, and finally the masternode payment check
// (masternode-payments.cpp's IsBlockPayeeValid).
func IsBlockPayeeValid(ctx *consensus.Context, txNew []consensus.TxOut, height uint32, blockReward int64) (bool, error) {
	if height == ctx.Params.GenerationHeight {
		want := consensus.TxOut{Value: ctx.Params.GenerationAmount, ScriptPubKey: ctx.Params.GenesisPayoutScript}
		for _, out := range txNew {
			if out.Equal(want) {
				return true, nil
			}
		}
		return false, nil
	}

	if ctx.Sync.LiteMode() {
		// No budget/superblock data to check against; accept the
		// longest chain rather than block sync on data we don't have.
		return true, nil
	}

	if height < ctx.Params.SuperblockStartBlock {
		// Superblocks haven't started yet; these blocks have long since
		// been buried under confirmations and can be accepted without
		// payee verification.
		return true, nil
	}

	if ctx.Sporks.IsActive(consensus.SporkSuperblocksEnabled) && ctx.Superblock.IsSuperblockTriggered(height) {
		if !ctx.Superblock.IsValid(txOutputs(txNew), height, blockReward) {
			return false, nil
		}
		// Valid triggered superblock; still has to also pay the
		// masternode below.
	}

	return IsTransactionValid(ctx, txNew, height, blockReward)
}

// IsScheduled reports whether payee is due to be paid within the next 8
// blocks of look-ahead (spec §4.7). Historical blocks cannot be answered
// this way; callers in full DIP0003 mode only.
func IsScheduled(ctx *consensus.Context, payeeProTxHash [32]byte) (bool, error) {
	if !ctx.Sync.FullDIP0003Mode() {
		return true, nil
	}
	projected, err := ctx.MNs.ProjectedPayees(8)
	if err != nil {
		return false, newError("IsScheduled", 0, err)
	}
	for _, p := range projected {
		if p.ProTxHash == payeeProTxHash {
			return true, nil
		}
	}
	return false, nil
}

// FillBlockPayments appends the generation-height exception, masternode
// and superblock payment outputs to baseOutputs, in exactly this order:
// [baseOutputs..., generation-height exception (if any), masternode
// payouts..., superblock payouts...], and subtracts the masternode
// payout total from the generation output the miner or staker would
// otherwise have kept in full. genOutputIndex selects which of
// baseOutputs absorbs that subtraction (0 for a coinbase-only layout, 1
// for a coinstake layout whose first output is conventionally empty).
func FillBlockPayments(ctx *consensus.Context, height uint32, blockReward int64, genOutputIndex int, baseOutputs []consensus.TxOut) ([]consensus.TxOut, error) {
	outs := append([]consensus.TxOut(nil), baseOutputs...)

	var superblockOuts []consensus.TxOut
	if ctx.Sporks.IsActive(consensus.SporkSuperblocksEnabled) && ctx.Superblock.IsSuperblockTriggered(height) {
		sb, err := ctx.Superblock.SuperblockPayments(height)
		if err != nil {
			return nil, newError("FillBlockPayments", height, err)
		}
		superblockOuts = sb
	}

	masternodeOuts, _, err := GetBlockTxOuts(ctx, height, blockReward)
	if err != nil {
		return nil, err
	}

	if height == ctx.Params.GenerationHeight {
		outs = append(outs, consensus.TxOut{Value: ctx.Params.GenerationAmount, ScriptPubKey: ctx.Params.GenesisPayoutScript})
	}

	if genOutputIndex >= 0 && genOutputIndex < len(outs) {
		for _, txout := range masternodeOuts {
			outs[genOutputIndex].Value -= txout.Value
		}
	}

	outs = append(outs, masternodeOuts...)
	outs = append(outs, superblockOuts...)
	return outs, nil
}

// GetRequiredPaymentsString renders a human-readable description of the
// payee(s) expected at height, used by diagnostics (spec §6's
// GetRequiredPaymentsString(s)).
func GetRequiredPaymentsString(ctx *consensus.Context, height uint32, payee *consensus.MNPayee) string {
	strPayee := "Unknown"
	if payee != nil {
		if addr := scriptAddress(payee.PayoutScript); addr != "" {
			strPayee = addr
		}
	}
	if ctx.Superblock.IsSuperblockTriggered(height) {
		strPayee += ", " + ctx.Superblock.RequiredPaymentsString(height)
	}
	return strPayee
}

func scriptAddress(script []byte) string {
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(script, &chaincfg.MainNetParams)
	if err != nil || len(addrs) == 0 {
		return ""
	}
	return addrs[0].EncodeAddress()
}
