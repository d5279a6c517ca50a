package observability

import (
	"strconv"

	"stakeledger/core/events"
	"stakeledger/native/bank"
	"stakeledger/native/collector"
	"stakeledger/native/emission"
	"stakeledger/native/rewards"
)

// EventMetrics is an events.Emitter that folds module events into the
// ledger metrics registry.
type EventMetrics struct {
	metrics *LedgerMetrics
}

// NewEventMetrics returns an emitter that records into m, or into the
// default registry when m is nil.
func NewEventMetrics(m *LedgerMetrics) *EventMetrics {
	if m == nil {
		m = Rewards()
	}
	return &EventMetrics{metrics: m}
}

// Emit implements events.Emitter.
func (e *EventMetrics) Emit(evt events.Event) {
	if e == nil || e.metrics == nil {
		return
	}
	rec, ok := evt.(*events.Record)
	if !ok || rec == nil {
		return
	}
	m := e.metrics
	switch rec.Type {
	case rewards.EventTypeRevenueDeposited:
		amount := decimalToFloat(rec.Attr("amount"))
		m.revenue.Add(amount)
		if escrowed, _ := strconv.ParseBool(rec.Attr("escrowed")); escrowed {
			m.escrowed.Add(amount)
		}
	case rewards.EventTypeClaimed:
		m.claims.Inc()
		m.claimed.Add(decimalToFloat(rec.Attr("amount")))
	case rewards.EventTypeMassClaimCompleted:
		if failures, err := strconv.Atoi(rec.Attr("failures")); err == nil && failures > 0 {
			m.massFailures.Add(float64(failures))
		}
	case collector.EventTypeTriggered:
		m.forwarded.WithLabelValues(rec.Attr("collector")).Add(decimalToFloat(rec.Attr("forwarded")))
	case emission.EventTypeEmitted:
		m.emissions.Inc()
		m.emitted.Add(decimalToFloat(rec.Attr("amount")))
		m.bounties.Add(decimalToFloat(rec.Attr("bounty")))
	case bank.EventTypeFeeHookFailed:
		m.feeHookFailure.WithLabelValues(rec.Attr("symbol"), rec.Attr("route")).Inc()
	}
}
