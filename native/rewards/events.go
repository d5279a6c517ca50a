package rewards

import (
	"strconv"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"stakeledger/core/events"
)

const (
	// EventTypeRevenueDeposited is emitted when revenue is credited to the ledger.
	EventTypeRevenueDeposited = "rewards.revenue.deposited"
	// EventTypeClaimed is emitted for every successful payout.
	EventTypeClaimed = "rewards.claimed"
	// EventTypeMassClaimCompleted is emitted once per mass claim batch.
	EventTypeMassClaimCompleted = "rewards.mass_claim.completed"
	// EventTypeClaimRefunded is emitted when a claim is returned to the vault.
	EventTypeClaimRefunded = "rewards.claim.refunded"
)

func revenueDepositedEvent(from ethcommon.Address, received *uint256.Int, escrowed bool, acc *uint256.Int) *events.Record {
	return &events.Record{
		Type: EventTypeRevenueDeposited,
		Attributes: map[string]string{
			"from":        from.Hex(),
			"amount":      received.Dec(),
			"escrowed":    strconv.FormatBool(escrowed),
			"accumulator": acc.Dec(),
		},
	}
}

func claimedEvent(addr ethcommon.Address, amount *uint256.Int) *events.Record {
	return &events.Record{
		Type: EventTypeClaimed,
		Attributes: map[string]string{
			"account": addr.Hex(),
			"amount":  amount.Dec(),
		},
	}
}

func claimRefundedEvent(addr ethcommon.Address, amount *uint256.Int) *events.Record {
	return &events.Record{
		Type: EventTypeClaimRefunded,
		Attributes: map[string]string{
			"account": addr.Hex(),
			"amount":  amount.Dec(),
		},
	}
}

func massClaimEvent(result *MassClaimResult) *events.Record {
	return &events.Record{
		Type: EventTypeMassClaimCompleted,
		Attributes: map[string]string{
			"payouts":  strconv.Itoa(len(result.Payouts)),
			"failures": strconv.Itoa(len(result.Failures)),
			"total":    result.Total.Dec(),
		},
	}
}
