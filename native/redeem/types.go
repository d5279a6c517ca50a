package redeem

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Payout is one reserve asset's share of a redemption. Received is measured
// at the holder and may fall short of Amount on a taxed asset.
type Payout struct {
	Symbol   string
	Held     *uint256.Int
	Amount   *uint256.Int
	Received *uint256.Int
}

// Quote prices a redemption without moving funds.
type Quote struct {
	Amount  *uint256.Int
	Supply  *uint256.Int
	Payouts []Payout
}

func (q *Quote) empty() bool {
	for _, p := range q.Payouts {
		if !p.Amount.IsZero() {
			return false
		}
	}
	return true
}

// Receipt describes a completed redemption.
type Receipt struct {
	Holder       ethcommon.Address
	Burned       *uint256.Int
	SupplyBefore *uint256.Int
	Payouts      []Payout
}
