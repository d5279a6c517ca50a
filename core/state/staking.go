package state

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"stakeledger/native/staking"
)

type storedStakingGlobal struct {
	TotalShares     *big.Int
	TotalPrincipal  *big.Int
	TotalReinvested *big.Int
	TotalDeposited  *big.Int
	TotalWithdrawn  *big.Int
}

type storedStakingAccount struct {
	Address     []byte
	Shares      *big.Int
	Deposited   *big.Int
	Withdrawn   *big.Int
	LastDeposit uint64
}

// StakingGlobal returns the pool totals, or nil when none are stored.
func (m *Manager) StakingGlobal() (*staking.Global, error) {
	var stored storedStakingGlobal
	ok, err := m.get(stakingGlobalKey, &stored)
	if err != nil || !ok {
		return nil, err
	}
	g := &staking.Global{}
	err = decodeAmounts(
		amountField{&g.TotalShares, stored.TotalShares},
		amountField{&g.TotalPrincipal, stored.TotalPrincipal},
		amountField{&g.TotalReinvested, stored.TotalReinvested},
		amountField{&g.TotalDeposited, stored.TotalDeposited},
		amountField{&g.TotalWithdrawn, stored.TotalWithdrawn},
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// PutStakingGlobal persists the pool totals.
func (m *Manager) PutStakingGlobal(g *staking.Global) error {
	return m.put(stakingGlobalKey, &storedStakingGlobal{
		TotalShares:     toBig(g.TotalShares),
		TotalPrincipal:  toBig(g.TotalPrincipal),
		TotalReinvested: toBig(g.TotalReinvested),
		TotalDeposited:  toBig(g.TotalDeposited),
		TotalWithdrawn:  toBig(g.TotalWithdrawn),
	})
}

// StakingAccount returns the stored share position for addr.
func (m *Manager) StakingAccount(addr ethcommon.Address) (*staking.Account, bool, error) {
	var stored storedStakingAccount
	ok, err := m.get(prefixed(stakingAccountPrefix, addr.Bytes()), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	account, err := stored.toAccount()
	if err != nil {
		return nil, false, err
	}
	return account, true, nil
}

func (s *storedStakingAccount) toAccount() (*staking.Account, error) {
	a := &staking.Account{
		Address:     ethcommon.BytesToAddress(s.Address),
		LastDeposit: int64(s.LastDeposit),
	}
	err := decodeAmounts(
		amountField{&a.Shares, s.Shares},
		amountField{&a.Deposited, s.Deposited},
		amountField{&a.Withdrawn, s.Withdrawn},
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// PutStakingAccount persists a share position.
func (m *Manager) PutStakingAccount(a *staking.Account) error {
	ts := a.LastDeposit
	if ts < 0 {
		ts = 0
	}
	return m.put(prefixed(stakingAccountPrefix, a.Address.Bytes()), &storedStakingAccount{
		Address:     a.Address.Bytes(),
		Shares:      toBig(a.Shares),
		Deposited:   toBig(a.Deposited),
		Withdrawn:   toBig(a.Withdrawn),
		LastDeposit: uint64(ts),
	})
}

// IterateStakingAccounts visits every stored share position in key order.
func (m *Manager) IterateStakingAccounts(fn func(*staking.Account) error) error {
	return m.iterate(stakingAccountPrefix, func(_, value []byte) error {
		var stored storedStakingAccount
		if err := decodeRLP(value, &stored); err != nil {
			return err
		}
		account, err := stored.toAccount()
		if err != nil {
			return err
		}
		return fn(account)
	})
}
