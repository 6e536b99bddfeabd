package consensus

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/epmcoin/stakekernel/internal/chainindex"
)

// MNPayee is the deterministic masternode list's idea of who gets paid at
// a given height: a payout script plus an optional operator split (spec
// §4.7).
type MNPayee struct {
	ProTxHash           chainhash.Hash
	PayoutScript        []byte
	OperatorRewardBP    uint16 // basis points, 0-10000
	OperatorPayoutScript []byte
}

// MNList is an immutable snapshot of the deterministic masternode list at
// a particular block. The core treats it as a value type keyed by block
// hash; the snapshot cache itself is externally owned (spec §5).
type MNList interface {
	// MNPayee returns the masternode due to be paid, or nil if the list
	// is empty (spec §4.7's "absence of an MN list is accepted").
	MNPayee() (*MNPayee, bool)
}

// DeterministicMNSubsystem resolves MNList snapshots and answers
// look-ahead queries about the projected payee schedule.
type DeterministicMNSubsystem interface {
	ListForBlock(blockHash chainhash.Hash) (MNList, error)
	// ProjectedPayees returns up to n upcoming payees starting after the
	// current chain tip, used by payee.IsScheduled and
	// diagnostics.RequiredPaymentsStrings.
	ProjectedPayees(n int) ([]*MNPayee, error)
}

// SuperblockSubsystem answers governance-triggered superblock questions
// (spec §6's "Superblock subsystem").
type SuperblockSubsystem interface {
	IsValidSuperblockHeight(height uint32) bool
	IsSuperblockTriggered(height uint32) bool
	PaymentsLimit(height uint32) int64
	SuperblockPayments(height uint32) ([]TxOut, error)
	// IsValid checks that txNew's payees and amounts match the
	// governance-determined plan for the triggered superblock at height.
	IsValid(txNew SuperblockTx, height uint32, blockReward int64) bool
	// RequiredPaymentsString renders the diagnostic string for a
	// triggered superblock at height, used by payee.GetRequiredPaymentsString.
	RequiredPaymentsString(height uint32) string
}

// SuperblockTx is the minimal view of a coinbase/coinstake transaction the
// superblock subsystem needs in order to validate its payees.
type SuperblockTx interface {
	Outputs() []TxOut
}

// TxOut is a (value, script) output pair, mirroring Bitcoin's CTxOut
// closely enough for the payee/value checks in this module.
type TxOut struct {
	Value        int64
	ScriptPubKey []byte
}

// Equal reports whether two outputs carry the same value and script,
// which is the exact-match rule spec §4.7 requires.
func (t TxOut) Equal(o TxOut) bool {
	if t.Value != o.Value {
		return false
	}
	if len(t.ScriptPubKey) != len(o.ScriptPubKey) {
		return false
	}
	for i := range t.ScriptPubKey {
		if t.ScriptPubKey[i] != o.ScriptPubKey[i] {
			return false
		}
	}
	return true
}

// SporkSubsystem reads runtime consensus-policy flags (spec §6 "Spork
// subsystem"). The core never touches persistent spork storage directly.
type SporkSubsystem interface {
	IsActive(id SporkID) bool
}

// SporkID enumerates the sporks this module cares about.
type SporkID int

const (
	SporkSuperblocksEnabled SporkID = iota
)

// SyncStatus reports whether the node has enough history to enforce
// payee/value rules strictly (spec §6).
type SyncStatus interface {
	IsSynced() bool
	LiteMode() bool
	FullDIP0003Mode() bool
}

// AdjustedTimeSource exposes the network-adjusted clock (spec §6).
type AdjustedTimeSource interface {
	AdjustedTime() int64
}

// Context bundles every collaborator the kernel reaches out to, replacing
// the global singletons of the original implementation
// (mapBlockIndex/chainActive/pblocktree/deterministicMNManager/
// sporkManager/masternodeSync). Validators take a *Context instead of
// touching package-level state.
type Context struct {
	Params *Params
	Chain  chainindex.View

	MNs        DeterministicMNSubsystem
	Superblock SuperblockSubsystem
	Sporks     SporkSubsystem
	Sync       SyncStatus
	Clock      AdjustedTimeSource
}

// CoinUnitAmount converts base units to btcutil.Amount purely for
// formatting in diagnostics; consensus math always stays in raw int64
// base units to avoid floating-point contamination.
func CoinUnitAmount(baseUnits int64) btcutil.Amount {
	return btcutil.Amount(baseUnits)
}
