package redeem

import (
	ethcommon "github.com/ethereum/go-ethereum/common"

	"stakeledger/core/events"
)

const EventTypeRedeemed = "redeem.redeemed"

func redeemedEvent(r *Receipt, reserve ethcommon.Address) *events.Record {
	attrs := map[string]string{
		"holder":  r.Holder.Hex(),
		"reserve": reserve.Hex(),
		"burned":  r.Burned.Dec(),
		"supply":  r.SupplyBefore.Dec(),
	}
	for _, p := range r.Payouts {
		attrs["paid."+p.Symbol] = p.Received.Dec()
	}
	return &events.Record{Type: EventTypeRedeemed, Attributes: attrs}
}
