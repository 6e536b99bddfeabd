package diagnostics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/epmcoin/stakekernel/internal/chainindex"
	"github.com/epmcoin/stakekernel/pkg/batcher"
)

// ModifierRecord is one connected block's computed stake modifier state,
// the unit the audit sink batches up for delivery.
type ModifierRecord struct {
	Height                 uint32
	BlockHash              chainhash32
	StakeModifier          uint64
	StakeModifierChecksum  uint32
	GeneratedStakeModifier bool
	RecordedAt             time.Time
}

type chainhash32 = [32]byte

// AuditSink batches ModifierRecords and flushes them through a
// caller-supplied sink, rate limited so a burst of reorg-driven
// recomputation cannot overwhelm a slow downstream (e.g. a log shipper).
// This mirrors pkg/batcher's existing use in the teacher's ingestion
// pipeline, repointed at stake-modifier audit records instead of UTXO
// rows.
type AuditSink struct {
	batcher *batcher.Batcher[ModifierRecord]
}

// Sink receives flushed batches of ModifierRecords. Implementations are
// expected to be side-effecting only (logging, metrics export); nothing
// in the consensus path depends on a flush succeeding.
type Sink interface {
	Flush(ctx context.Context, records []ModifierRecord) error
}

// LogSink is a Sink that writes each record as a structured log line,
// the default when no durable audit destination is configured (spec §6
// carries no persistence requirement for this side channel).
type LogSink struct {
	Logger *zap.Logger
}

func (s LogSink) Flush(_ context.Context, records []ModifierRecord) error {
	for _, r := range records {
		s.Logger.Info("stake modifier recorded",
			zap.Uint32("height", r.Height),
			zap.String("block_hash", fmt.Sprintf("%x", r.BlockHash)),
			zap.Uint64("stake_modifier", r.StakeModifier),
			zap.Uint32("stake_modifier_checksum", r.StakeModifierChecksum),
			zap.Bool("generated", r.GeneratedStakeModifier),
		)
	}
	return nil
}

// NewAuditSink constructs an AuditSink flushing through sink, buffering
// up to flushSize records or flushInterval, whichever comes first, and
// rate limited to rps flushes per second.
func NewAuditSink(logger *zap.Logger, sink Sink, flushSize int, flushInterval time.Duration, rps int) *AuditSink {
	return &AuditSink{
		batcher: batcher.New(logger, sink.Flush, flushSize, flushInterval, rps),
	}
}

// Start begins the background flush loop.
func (a *AuditSink) Start(ctx context.Context) { a.batcher.Start(ctx) }

// Stop drains and stops the background flush loop.
func (a *AuditSink) Stop() { a.batcher.Stop() }

// Record queues a connected block's modifier state for audit. blockTime
// is not part of ModifierRecord's identity; RecordedAt is the wall-clock
// time of the call, for operator-facing lag measurement only.
func (a *AuditSink) Record(ctx context.Context, entry *chainindex.BlockIndexEntry) error {
	return a.batcher.Add(ctx, ModifierRecord{
		Height:                 entry.Height,
		BlockHash:              chainhash32(entry.BlockHash),
		StakeModifier:          entry.StakeModifier,
		StakeModifierChecksum:  entry.StakeModifierChecksum,
		GeneratedStakeModifier: entry.Flags.GeneratedStakeModifier(),
		RecordedAt:             time.Now(),
	})
}
