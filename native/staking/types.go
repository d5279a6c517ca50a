package staking

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	nativecommon "stakeledger/native/common"
)

// Global tracks pool-wide principal and share supply.
type Global struct {
	TotalShares     *uint256.Int
	TotalPrincipal  *uint256.Int
	TotalReinvested *uint256.Int
	TotalDeposited  *uint256.Int
	TotalWithdrawn  *uint256.Int
}

func (g *Global) Copy() *Global {
	if g == nil {
		return nil
	}
	return &Global{
		TotalShares:     nativecommon.Clone(g.TotalShares),
		TotalPrincipal:  nativecommon.Clone(g.TotalPrincipal),
		TotalReinvested: nativecommon.Clone(g.TotalReinvested),
		TotalDeposited:  nativecommon.Clone(g.TotalDeposited),
		TotalWithdrawn:  nativecommon.Clone(g.TotalWithdrawn),
	}
}

// Account is a staker's share position.
type Account struct {
	Address     ethcommon.Address
	Shares      *uint256.Int
	Deposited   *uint256.Int
	Withdrawn   *uint256.Int
	LastDeposit int64
}

func (a *Account) Copy() *Account {
	if a == nil {
		return nil
	}
	return &Account{
		Address:     a.Address,
		Shares:      nativecommon.Clone(a.Shares),
		Deposited:   nativecommon.Clone(a.Deposited),
		Withdrawn:   nativecommon.Clone(a.Withdrawn),
		LastDeposit: a.LastDeposit,
	}
}

// DepositReceipt describes a completed deposit.
type DepositReceipt struct {
	Address        ethcommon.Address
	Requested      *uint256.Int
	Received       *uint256.Int
	SharesMinted   *uint256.Int
	TotalShares    *uint256.Int
	TotalPrincipal *uint256.Int
}

// WithdrawReceipt describes a completed withdrawal. Claimed is nil unless a
// reward claim was requested.
type WithdrawReceipt struct {
	Address        ethcommon.Address
	SharesBurned   *uint256.Int
	Principal      *uint256.Int
	Claimed        *uint256.Int
	TotalShares    *uint256.Int
	TotalPrincipal *uint256.Int
}
