// Package kernel resolves the stake modifier in effect for a candidate
// stake input and checks the resulting kernel hash against the
// proof-of-stake target (spec §4.3 and §4.5). It is grounded on
// peercoin-btcd's kernel.go and on the reference implementation's
// kernel.cpp (GetKernelStakeModifier, CheckStakeKernelHash,
// CheckKernelScript, CheckProofOfStake).
package kernel

import (
	"bytes"
	"errors"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"

	"github.com/epmcoin/stakekernel/internal/chainindex"
	"github.com/epmcoin/stakekernel/internal/consensus"
	"github.com/epmcoin/stakekernel/internal/metrics"
	"github.com/epmcoin/stakekernel/internal/wireutil"
	"github.com/epmcoin/stakekernel/pkg/bigmath"
)

// StakeInput is the minimal view of the coin being staked that the kernel
// hash depends on (spec §4.5). PrevOutOffset is the stake input's
// transaction offset within blockFrom, carried into the kernel preimage
// unchanged from the reference implementation even though this module
// has no block storage of its own to compute it from; callers that do
// read raw blocks are expected to supply it.
type StakeInput struct {
	BlockFrom     *chainindex.BlockIndexEntry
	PrevOutIndex  uint32
	PrevOutOffset uint32
	TxPrevTime    int64
	Value         int64
	PkScript      []byte
}

// VerifyResult carries the data a caller records on the connected block
// once a kernel hash has been accepted (spec §3's HashProofOfStake and
// StakeModifier fields).
type VerifyResult struct {
	HashProofOfStake chainhash.Hash
	StakeModifier    uint64
}

// CheckStakeKernelHash verifies that a coinstake's kernel hash, built from
// the resolved stake modifier and the staked input's metadata, satisfies
// hash <= target * coinDayWeight (spec §4.5).
func CheckStakeKernelHash(
	ctx *consensus.Context,
	bits uint32,
	pindexPrev *chainindex.BlockIndexEntry,
	input StakeInput,
	txTime int64,
) (result VerifyResult, err error) {
	started := time.Now()
	defer func() { metrics.ObserveKernelCheck(err, started) }()

	blockFrom := input.BlockFrom
	if blockFrom == nil {
		return VerifyResult{}, newIoError("CheckStakeKernelHash", errors.New("stake input's containing block not indexed"))
	}

	if txTime < blockFrom.BlockTime {
		return VerifyResult{}, newKernelError("CheckStakeKernelHash", errors.New("transaction timestamp precedes input's block"))
	}
	if blockFrom.BlockTime+ctx.Params.StakeMinAge > txTime {
		return VerifyResult{}, newKernelError("CheckStakeKernelHash", errors.New("stake input below minimum age"))
	}
	if input.Value < ctx.Params.MinimumStakeValue {
		return VerifyResult{}, newKernelError("CheckStakeKernelHash", errors.New("stake input below minimum value"))
	}

	target := bigmath.TargetFromBits(bits)

	timeWeight := txTime - input.TxPrevTime
	maxWeight := ctx.Params.StakeMaxAge - ctx.Params.StakeMinAge
	if timeWeight > maxWeight {
		timeWeight = maxWeight
	}
	coinDayWeight := uint64(input.Value) * uint64(timeWeight) / uint64(ctx.Params.CoinUnit) / 200

	resolved, ok, err := resolveKernelModifier(ctx, pindexPrev, blockFrom)
	if err != nil {
		return VerifyResult{}, err
	}
	if !ok {
		return VerifyResult{}, newKernelError("CheckStakeKernelHash", errors.New("stake modifier not yet resolvable from current chain state"))
	}

	buf := wireutil.NewBuffer(28)
	buf.PutUint64(resolved.Modifier)
	buf.PutUint32(uint32(blockFrom.BlockTime))
	buf.PutUint32(input.PrevOutOffset)
	buf.PutUint32(uint32(input.TxPrevTime))
	buf.PutUint32(input.PrevOutIndex)
	buf.PutUint32(uint32(txTime))
	hashProofOfStake := wireutil.DoubleSHA256(buf.Bytes())

	if !bigmath.WeightedTargetExceeds(hashProofOfStake, target, coinDayWeight) {
		return VerifyResult{}, newKernelError("CheckStakeKernelHash", errors.New("kernel hash exceeds target"))
	}

	return VerifyResult{HashProofOfStake: hashProofOfStake, StakeModifier: resolved.Modifier}, nil
}

// extractKeyHash recovers the public key hash a P2PKH or bare P2PK script
// pays to, or nil if the script is neither (spec §4.6's key-id solving).
func extractKeyHash(pkScript []byte) []byte {
	class, addrs, _, err := txscript.ExtractPkScriptAddrs(pkScript, &chaincfg.MainNetParams)
	if err != nil || len(addrs) == 0 {
		return nil
	}
	switch class {
	case txscript.PubKeyHashTy:
		if a, ok := addrs[0].(*btcutil.AddressPubKeyHash); ok {
			h := a.Hash160()
			return h[:]
		}
	case txscript.PubKeyTy:
		if a, ok := addrs[0].(*btcutil.AddressPubKey); ok {
			h := a.AddressPubKeyHash().Hash160()
			return h[:]
		}
	}
	return nil
}

// CheckKernelScript reports whether a coinstake's second output pays back
// to the same key that controlled the staked input (spec §4.6).
//
// Scripts this module cannot solve to a key hash extract as nil on both
// sides, and bytes.Equal(nil, nil) is true, so an unrecognized script
// pair is accepted rather than rejected. This leniency is carried over
// unchanged from the reference implementation rather than tightened.
func CheckKernelScript(scriptVin, scriptVout []byte) bool {
	return bytes.Equal(extractKeyHash(scriptVin), extractKeyHash(scriptVout))
}

// CheckProofOfStake composes the kernel script check and the kernel hash
// check, the two gates a coinstake's kernel input must pass (spec §4.5,
// §4.6).
func CheckProofOfStake(
	ctx *consensus.Context,
	bits uint32,
	pindexPrev *chainindex.BlockIndexEntry,
	input StakeInput,
	coinstakeVout1Script []byte,
	txTime int64,
) (VerifyResult, error) {
	if !CheckKernelScript(input.PkScript, coinstakeVout1Script) {
		return VerifyResult{}, newKernelError("CheckProofOfStake", errors.New("kernel script mismatch"))
	}
	return CheckStakeKernelHash(ctx, bits, pindexPrev, input, txTime)
}
