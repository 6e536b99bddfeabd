package stakemodifier

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/epmcoin/stakekernel/internal/chainindex"
	"github.com/epmcoin/stakekernel/internal/metrics"
	"github.com/epmcoin/stakekernel/internal/wireutil"
	"github.com/epmcoin/stakekernel/pkg/bigmath"
)

// Checksum computes the 32-bit checksum chaining a block's stake modifier
// to its parent's (spec §4.4). Genesis (parent == nil) omits the parent
// checksum term entirely rather than substituting a zero placeholder —
// GetStakeModifierChecksum only serializes pprev->nStakeModifierChecksum
// when pprev is non-null, so including a zero term here would change the
// genesis digest and break the height-0 checkpoint.
func Checksum(entry *chainindex.BlockIndexEntry) uint32 {
	buf := wireutil.NewBuffer(4 + 4 + chainhash.HashSize + 8)
	if entry.Parent != nil {
		buf.PutUint32(entry.Parent.StakeModifierChecksum)
	}
	buf.PutUint32(uint32(entry.Flags))
	buf.PutHash(entry.HashProofOfStake)
	buf.PutUint64(entry.StakeModifier)

	h := wireutil.DoubleSHA256(buf.Bytes())
	// Keep the top 32 bits of the big-endian interpretation of the digest,
	// mirroring the original's hashChecksum >>= (256 - 32).
	big := bigmath.HashToBig(h)
	big.Rsh(big, 224)
	return uint32(big.Uint64())
}

// Checkpoints is the map of height -> known-good checksum hardcoded into
// the binary as a defense against long-range stake-modifier grinding
// attacks (spec §4.4). An empty map disables the check.
type Checkpoints map[uint32]uint32

// Check reports whether entry's checksum matches a hardcoded checkpoint
// for its height, or true if there is no checkpoint at that height.
func (c Checkpoints) Check(height uint32, checksum uint32) bool {
	want, ok := c[height]
	if !ok {
		return true
	}
	if want != checksum {
		metrics.IncCheckpointMismatch()
		return false
	}
	return true
}
