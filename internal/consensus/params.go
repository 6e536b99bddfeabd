// Package consensus holds the read-only configuration and the collaborator
// interfaces through which the kernel reaches out to the rest of the node.
// The error types of spec §7's taxonomy are not declared here but in the
// packages that return them (stakemodifier, kernel, reward, payee). None of
// the global singletons the original C++ relied on
// (mapBlockIndex/chainActive/pblocktree/deterministicMNManager/sporkManager/
// masternodeSync) survive here: every function that needs one of them
// takes a *Context explicitly.
package consensus

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// Params is the read-only consensus configuration (spec §3).
type Params struct {
	ModifierInterval      int64 // seconds between stake modifier recomputations
	ModifierIntervalRatio int64 // typically 3
	PosTargetSpacing      int64 // seconds
	StakeMinAge           int64 // seconds
	StakeMaxAge           int64 // seconds
	MinimumStakeValue     int64
	CoinUnit              int64 // satoshi scale, i.e. 1 coin in base units
	GenerationHeight      uint32
	GenerationAmount      int64
	LastPoWBlock          uint32
	SuperblockStartBlock  uint32
	GenesisHash           chainhash.Hash

	// MasternodeRewardBP is the masternode's cut of the block reward, in
	// basis points (spec §4.7); the remainder stays with the miner or
	// staker's generation output.
	MasternodeRewardBP uint16
	// GenesisPayoutScript is the scriptPubKey the one-time generation
	// height payout (spec §4.8) must pay to.
	GenesisPayoutScript []byte
}
