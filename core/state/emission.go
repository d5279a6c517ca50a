package state

import (
	"math/big"

	"stakeledger/native/emission"
)

type storedEmissionState struct {
	Initialized  bool
	LastTime     uint64
	LastBlock    uint64
	TotalEmitted *big.Int
	TotalBounty  *big.Int
	Count        uint64
}

// EmissionState returns the persisted schedule, or nil when none is stored.
func (m *Manager) EmissionState() (*emission.State, error) {
	var stored storedEmissionState
	ok, err := m.get(emissionStateKey, &stored)
	if err != nil || !ok {
		return nil, err
	}
	st := &emission.State{
		Initialized: stored.Initialized,
		LastTime:    int64(stored.LastTime),
		LastBlock:   stored.LastBlock,
		Count:       stored.Count,
	}
	if err := decodeAmounts(amountField{&st.TotalEmitted, stored.TotalEmitted}, amountField{&st.TotalBounty, stored.TotalBounty}); err != nil {
		return nil, err
	}
	return st, nil
}

// PutEmissionState persists the schedule.
func (m *Manager) PutEmissionState(st *emission.State) error {
	ts := st.LastTime
	if ts < 0 {
		ts = 0
	}
	return m.put(emissionStateKey, &storedEmissionState{
		Initialized:  st.Initialized,
		LastTime:     uint64(ts),
		LastBlock:    st.LastBlock,
		TotalEmitted: toBig(st.TotalEmitted),
		TotalBounty:  toBig(st.TotalBounty),
		Count:        st.Count,
	})
}
