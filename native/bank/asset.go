package bank

import (
	"errors"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	nativecommon "stakeledger/native/common"
)

var (
	// ErrInsufficientBalance is returned when the sender cannot cover a transfer.
	ErrInsufficientBalance = nativecommon.CallerError("bank: insufficient balance")
	// ErrInvalidRoute indicates a fee route with an empty sink or out-of-range rate.
	ErrInvalidRoute = errors.New("bank: invalid fee route")
	// ErrTransferRejected is returned by assets configured to refuse a movement.
	ErrTransferRejected = nativecommon.CollaboratorError("bank: transfer rejected")
)

// Asset is the fungible ledger the engines move funds through. Transfer may
// deliver less than amount to the recipient, so callers that care about the
// received amount measure the recipient's balance delta.
type Asset interface {
	Symbol() string
	BalanceOf(addr ethcommon.Address) (*uint256.Int, error)
	Transfer(from, to ethcommon.Address, amount *uint256.Int) error
}

// FeeHook is notified after a transfer fee lands on its sink.
type FeeHook interface {
	Receive(amount *uint256.Int) error
}

// FeeRoute diverts Bps basis points of every taxed transfer to Sink and
// notifies Hook when set.
type FeeRoute struct {
	Name string
	Bps  uint32
	Sink ethcommon.Address
	Hook FeeHook
}

func (r FeeRoute) validate() error {
	if r.Sink == (ethcommon.Address{}) || r.Bps > 10_000 {
		return ErrInvalidRoute
	}
	return nil
}
