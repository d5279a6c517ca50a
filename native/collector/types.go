package collector

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	nativecommon "stakeledger/native/common"
)

// Kind names a collector variant.
type Kind string

const (
	KindReinvest Kind = "reinvest"
	KindDividend Kind = "dividend"
)

// State is the persisted bookkeeping of a collector. Held funds are always
// measured from the asset balance, never from these counters.
type State struct {
	Name           string
	TotalReceived  *uint256.Int
	TotalSwappedIn *uint256.Int
	TotalForwarded *uint256.Int
	Triggers       uint64
	Failures       uint64
	LastTrigger    int64
}

func (s *State) Copy() *State {
	if s == nil {
		return nil
	}
	return &State{
		Name:           s.Name,
		TotalReceived:  nativecommon.Clone(s.TotalReceived),
		TotalSwappedIn: nativecommon.Clone(s.TotalSwappedIn),
		TotalForwarded: nativecommon.Clone(s.TotalForwarded),
		Triggers:       s.Triggers,
		Failures:       s.Failures,
		LastTrigger:    s.LastTrigger,
	}
}

func (s *State) ensureDefaults() {
	for _, field := range []**uint256.Int{&s.TotalReceived, &s.TotalSwappedIn, &s.TotalForwarded} {
		if *field == nil {
			*field = new(uint256.Int)
		}
	}
}

// TriggerResult reports the outcome of a trigger. Skipped is set when the
// collector held nothing to process.
type TriggerResult struct {
	Collector  string
	Kind       Kind
	Address    ethcommon.Address
	Input      *uint256.Int
	SwappedOut *uint256.Int
	Forwarded  *uint256.Int
	Skipped    bool
}
