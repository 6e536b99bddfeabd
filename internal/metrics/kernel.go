package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	kernelChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stakekernel",
		Subsystem: "kernel",
		Name:      "checks_total",
		Help:      "Count of kernel hash verifications.",
	}, []string{"result"})
	kernelCheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stakekernel",
		Subsystem: "kernel",
		Name:      "check_duration_seconds",
		Help:      "Duration of kernel hash verifications.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"result"})
)

// ObserveKernelCheck records the outcome and latency of a CheckStakeKernelHash
// call. A CheckProofOfStake call is recorded only through the
// CheckStakeKernelHash call it makes; a kernel script mismatch is not
// recorded.
func ObserveKernelCheck(err error, started time.Time) {
	status := "accepted"
	if err != nil {
		status = "rejected"
	}
	kernelChecksTotal.WithLabelValues(status).Inc()
	kernelCheckDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
}

var (
	modifierComputationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stakekernel",
		Subsystem: "stakemodifier",
		Name:      "computations_total",
		Help:      "Count of stake modifier computations, split by whether a new modifier was generated.",
	}, []string{"generated", "status"})
	modifierComputationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stakekernel",
		Subsystem: "stakemodifier",
		Name:      "computation_duration_seconds",
		Help:      "Duration of stake modifier computations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"generated", "status"})
	checkpointMismatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stakekernel",
		Subsystem: "stakemodifier",
		Name:      "checkpoint_mismatches_total",
		Help:      "Count of stake modifier checksums that failed a hardcoded checkpoint.",
	})
)

// ObserveModifierComputation records the outcome and latency of a
// ComputeNext call.
func ObserveModifierComputation(generated bool, err error, started time.Time) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	generatedLabel := "inherited"
	if generated {
		generatedLabel = "generated"
	}
	modifierComputationsTotal.WithLabelValues(generatedLabel, status).Inc()
	modifierComputationDuration.WithLabelValues(generatedLabel, status).Observe(time.Since(started).Seconds())
}

// IncCheckpointMismatch records a hardcoded stake modifier checkpoint
// failure, a signal worth paging on since it indicates either a
// long-range grinding attack or a checkpoint table that has drifted from
// the active chain.
func IncCheckpointMismatch() {
	checkpointMismatchesTotal.Inc()
}

var (
	payeeChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stakekernel",
		Subsystem: "payee",
		Name:      "checks_total",
		Help:      "Count of masternode/superblock payee validations.",
	}, []string{"result"})
	blockValueChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stakekernel",
		Subsystem: "reward",
		Name:      "block_value_checks_total",
		Help:      "Count of block value validations.",
	}, []string{"result"})
)

// ObservePayeeCheck records the outcome of an IsTransactionValid call.
func ObservePayeeCheck(valid bool) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	payeeChecksTotal.WithLabelValues(result).Inc()
}

// ObserveBlockValueCheck records the outcome of an IsBlockValueValid call.
func ObserveBlockValueCheck(err error) {
	result := "valid"
	if err != nil {
		result = "invalid"
	}
	blockValueChecksTotal.WithLabelValues(result).Inc()
}
