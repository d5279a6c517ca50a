package staking

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"stakeledger/core/events"
)

const (
	EventTypeDeposited  = "staking.deposited"
	EventTypeWithdrawn  = "staking.withdrawn"
	EventTypeReinvested = "staking.reinvested"
)

func depositedEvent(r *DepositReceipt) *events.Record {
	return &events.Record{
		Type: EventTypeDeposited,
		Attributes: map[string]string{
			"account":     r.Address.Hex(),
			"amount":      r.Received.Dec(),
			"shares":      r.SharesMinted.Dec(),
			"totalShares": r.TotalShares.Dec(),
		},
	}
}

func withdrawnEvent(r *WithdrawReceipt) *events.Record {
	attrs := map[string]string{
		"account":   r.Address.Hex(),
		"shares":    r.SharesBurned.Dec(),
		"principal": r.Principal.Dec(),
	}
	if r.Claimed != nil {
		attrs["claimed"] = r.Claimed.Dec()
	}
	return &events.Record{Type: EventTypeWithdrawn, Attributes: attrs}
}

func reinvestedEvent(from ethcommon.Address, amount, totalPrincipal *uint256.Int) *events.Record {
	return &events.Record{
		Type: EventTypeReinvested,
		Attributes: map[string]string{
			"from":           from.Hex(),
			"amount":         amount.Dec(),
			"totalPrincipal": totalPrincipal.Dec(),
		},
	}
}
