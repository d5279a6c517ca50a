package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"stakeledger/core/events"
	nativecommon "stakeledger/native/common"
	"stakeledger/native/collector"
	"stakeledger/native/emission"
	"stakeledger/native/rewards"
)

func newTestMetrics(t *testing.T) *LedgerMetrics {
	t.Helper()
	m := newLedgerMetrics()
	m.register(prometheus.NewRegistry())
	return m
}

func TestObserveLabelsErrorClass(t *testing.T) {
	m := newTestMetrics(t)
	m.Observe("claim", time.Millisecond, nil)
	m.Observe("claim", time.Millisecond, rewards.ErrInsufficientRewardBalance)
	m.Observe("claim", time.Millisecond, nativecommon.ErrModulePaused)
	m.Observe("", time.Millisecond, errors.New("boom"))

	require.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("claim", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("claim", "solvency")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("claim", "paused")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("unknown", "internal")))
}

func TestEventMetricsFoldsRecords(t *testing.T) {
	m := newTestMetrics(t)
	sink := NewEventMetrics(m)

	sink.Emit(&events.Record{Type: rewards.EventTypeRevenueDeposited, Attributes: map[string]string{"amount": "100", "escrowed": "true"}})
	sink.Emit(&events.Record{Type: rewards.EventTypeRevenueDeposited, Attributes: map[string]string{"amount": "50", "escrowed": "false"}})
	sink.Emit(&events.Record{Type: rewards.EventTypeClaimed, Attributes: map[string]string{"amount": "70"}})
	sink.Emit(&events.Record{Type: rewards.EventTypeMassClaimCompleted, Attributes: map[string]string{"failures": "2"}})
	sink.Emit(&events.Record{Type: collector.EventTypeTriggered, Attributes: map[string]string{"collector": "dividend", "forwarded": "9"}})
	sink.Emit(&events.Record{Type: emission.EventTypeEmitted, Attributes: map[string]string{"amount": "40", "bounty": "1"}})
	sink.Emit(&events.Record{Type: "unrelated"})

	require.Equal(t, 150.0, testutil.ToFloat64(m.revenue))
	require.Equal(t, 100.0, testutil.ToFloat64(m.escrowed))
	require.Equal(t, 1.0, testutil.ToFloat64(m.claims))
	require.Equal(t, 70.0, testutil.ToFloat64(m.claimed))
	require.Equal(t, 2.0, testutil.ToFloat64(m.massFailures))
	require.Equal(t, 9.0, testutil.ToFloat64(m.forwarded.WithLabelValues("dividend")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.emissions))
	require.Equal(t, 40.0, testutil.ToFloat64(m.emitted))
	require.Equal(t, 1.0, testutil.ToFloat64(m.bounties))
}

func TestSetLedgerTotals(t *testing.T) {
	m := newTestMetrics(t)
	m.SetLedgerTotals(uint256.NewInt(10), uint256.NewInt(3), uint256.NewInt(1000), nil)
	require.Equal(t, 10.0, testutil.ToFloat64(m.rewardBalance))
	require.Equal(t, 3.0, testutil.ToFloat64(m.undistributed))
	require.Equal(t, 1000.0, testutil.ToFloat64(m.totalShares))
	require.Equal(t, 0.0, testutil.ToFloat64(m.principal))
}

func TestRecordTrigger(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordTrigger("reinvest", nil)
	m.RecordTrigger("reinvest", nativecommon.CollaboratorError("swap: deadline exceeded"))
	require.Equal(t, 1.0, testutil.ToFloat64(m.triggers.WithLabelValues("reinvest", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.triggers.WithLabelValues("reinvest", "collaborator")))
}
