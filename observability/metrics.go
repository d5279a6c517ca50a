package observability

import (
	"math"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"

	nativecommon "stakeledger/native/common"
)

// LedgerMetrics tracks reward ledger, pool, collector and emission activity.
type LedgerMetrics struct {
	operations     *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	revenue        prometheus.Counter
	escrowed       prometheus.Counter
	claims         prometheus.Counter
	claimed        prometheus.Counter
	massFailures   prometheus.Counter
	triggers       *prometheus.CounterVec
	forwarded      *prometheus.CounterVec
	emissions      prometheus.Counter
	emitted        prometheus.Counter
	bounties       prometheus.Counter
	rewardBalance  prometheus.Gauge
	undistributed  prometheus.Gauge
	totalShares    prometheus.Gauge
	principal      prometheus.Gauge
	feeHookFailure *prometheus.CounterVec
}

var (
	ledgerMetricsOnce sync.Once
	ledgerRegistry    *LedgerMetrics
)

// Rewards returns the lazily-initialised ledger metrics registry.
func Rewards() *LedgerMetrics {
	ledgerMetricsOnce.Do(func() {
		ledgerRegistry = newLedgerMetrics()
		ledgerRegistry.register(prometheus.DefaultRegisterer)
	})
	return ledgerRegistry
}

func newLedgerMetrics() *LedgerMetrics {
	counter := func(subsystem, name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stakeledger",
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}
	gauge := func(subsystem, name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stakeledger",
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}
	return &LedgerMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stakeledger",
			Subsystem: "service",
			Name:      "operations_total",
			Help:      "Ledger operations segmented by operation and error class.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stakeledger",
			Subsystem: "service",
			Name:      "operation_duration_seconds",
			Help:      "Latency distribution for ledger operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		revenue:      counter("rewards", "revenue_deposited_total", "Reward asset credited to the ledger, in base units."),
		escrowed:     counter("rewards", "revenue_escrowed_total", "Revenue received while no shares existed."),
		claims:       counter("rewards", "claims_total", "Successful non-zero payouts."),
		claimed:      counter("rewards", "claimed_amount_total", "Reward asset paid out, in base units."),
		massFailures: counter("rewards", "mass_claim_failures_total", "Accounts skipped by mass claims."),
		triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stakeledger",
			Subsystem: "collector",
			Name:      "triggers_total",
			Help:      "Collector triggers segmented by collector and outcome.",
		}, []string{"collector", "outcome"}),
		forwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stakeledger",
			Subsystem: "collector",
			Name:      "forwarded_amount_total",
			Help:      "Amount each collector forwarded to the pool or ledger.",
		}, []string{"collector"}),
		emissions:     counter("emission", "emissions_total", "Successful emissions."),
		emitted:       counter("emission", "emitted_amount_total", "Reserve released by emissions, in base units."),
		bounties:      counter("emission", "bounty_amount_total", "Bounty paid to emission callers, in base units."),
		rewardBalance: gauge("rewards", "reward_balance", "Reward balance held for holders."),
		undistributed: gauge("rewards", "undistributed", "Revenue escrowed while no shares exist."),
		totalShares:   gauge("rewards", "total_shares", "Total registered shares."),
		principal:     gauge("staking", "total_principal", "Principal held by the staking pool."),
		feeHookFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stakeledger",
			Subsystem: "bank",
			Name:      "fee_hook_failures_total",
			Help:      "Fee hook invocations that returned an error.",
		}, []string{"asset", "route"}),
	}
}

func (m *LedgerMetrics) register(reg prometheus.Registerer) {
	reg.MustRegister(
		m.operations,
		m.latency,
		m.revenue,
		m.escrowed,
		m.claims,
		m.claimed,
		m.massFailures,
		m.triggers,
		m.forwarded,
		m.emissions,
		m.emitted,
		m.bounties,
		m.rewardBalance,
		m.undistributed,
		m.totalShares,
		m.principal,
		m.feeHookFailure,
	)
}

// Observe records the outcome and latency of a service operation. The outcome
// label is the error class, or "success".
func (m *LedgerMetrics) Observe(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}
	outcome := "success"
	if class := nativecommon.Classify(err); class != nativecommon.ClassNone {
		outcome = string(class)
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.latency.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordTrigger counts a collector trigger attempt.
func (m *LedgerMetrics) RecordTrigger(collector string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if class := nativecommon.Classify(err); class != nativecommon.ClassNone {
		outcome = string(class)
	}
	m.triggers.WithLabelValues(collector, outcome).Inc()
}

// SetLedgerTotals refreshes the balance gauges.
func (m *LedgerMetrics) SetLedgerTotals(rewardBalance, undistributed, totalShares, principal *uint256.Int) {
	if m == nil {
		return
	}
	m.rewardBalance.Set(amountToFloat(rewardBalance))
	m.undistributed.Set(amountToFloat(undistributed))
	m.totalShares.Set(amountToFloat(totalShares))
	m.principal.Set(amountToFloat(principal))
}

func amountToFloat(value *uint256.Int) float64 {
	if value == nil {
		return 0
	}
	return bigToFloat(value.ToBig())
}

func bigToFloat(value *big.Int) float64 {
	if value == nil {
		return 0
	}
	floatVal, _ := new(big.Float).SetInt(value).Float64()
	if math.IsNaN(floatVal) || math.IsInf(floatVal, 0) {
		return 0
	}
	return floatVal
}

func decimalToFloat(raw string) float64 {
	value, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return 0
	}
	return bigToFloat(value)
}
