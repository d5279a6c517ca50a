package state

import (
	"math/big"

	"stakeledger/native/collector"
)

type storedCollectorState struct {
	Name           string
	TotalReceived  *big.Int
	TotalSwappedIn *big.Int
	TotalForwarded *big.Int
	Triggers       uint64
	Failures       uint64
	LastTrigger    uint64
}

// CollectorState returns the bookkeeping of the named collector.
func (m *Manager) CollectorState(name string) (*collector.State, bool, error) {
	var stored storedCollectorState
	ok, err := m.get(prefixed(collectorPrefix, []byte(name)), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	st := &collector.State{
		Name:        stored.Name,
		Triggers:    stored.Triggers,
		Failures:    stored.Failures,
		LastTrigger: int64(stored.LastTrigger),
	}
	err = decodeAmounts(
		amountField{&st.TotalReceived, stored.TotalReceived},
		amountField{&st.TotalSwappedIn, stored.TotalSwappedIn},
		amountField{&st.TotalForwarded, stored.TotalForwarded},
	)
	if err != nil {
		return nil, false, err
	}
	return st, true, nil
}

// PutCollectorState persists collector bookkeeping under its name.
func (m *Manager) PutCollectorState(st *collector.State) error {
	ts := st.LastTrigger
	if ts < 0 {
		ts = 0
	}
	return m.put(prefixed(collectorPrefix, []byte(st.Name)), &storedCollectorState{
		Name:           st.Name,
		TotalReceived:  toBig(st.TotalReceived),
		TotalSwappedIn: toBig(st.TotalSwappedIn),
		TotalForwarded: toBig(st.TotalForwarded),
		Triggers:       st.Triggers,
		Failures:       st.Failures,
		LastTrigger:    uint64(ts),
	})
}
