package emission

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	nativecommon "stakeledger/native/common"
)

// State is the persisted schedule.
type State struct {
	Initialized  bool
	LastTime     int64
	LastBlock    uint64
	TotalEmitted *uint256.Int
	TotalBounty  *uint256.Int
	Count        uint64
}

func (s *State) Copy() *State {
	if s == nil {
		return nil
	}
	return &State{
		Initialized:  s.Initialized,
		LastTime:     s.LastTime,
		LastBlock:    s.LastBlock,
		TotalEmitted: nativecommon.Clone(s.TotalEmitted),
		TotalBounty:  nativecommon.Clone(s.TotalBounty),
		Count:        s.Count,
	}
}

// Status describes whether an emission is currently due and what it would pay.
type Status struct {
	Initialized bool
	Ready       bool
	Mode        ThrottleMode
	Interval    uint64
	Elapsed     uint64
	Amount      *uint256.Int
	Bounty      *uint256.Int
	Reserve     *uint256.Int
	LastTime    int64
	LastBlock   uint64
}

// Result reports a completed emission.
type Result struct {
	Caller     ethcommon.Address
	Elapsed    uint64
	Amount     *uint256.Int
	Bounty     *uint256.Int
	Reinvested *uint256.Int
	Time       int64
	Block      uint64
}
