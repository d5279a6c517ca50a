package state

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"stakeledger/native/rewards"
)

type storedRewardsGlobal struct {
	TotalShares    *big.Int
	Accumulator    *big.Int
	RewardBalance  *big.Int
	Undistributed  *big.Int
	ScaledDust     *big.Int
	TotalDeposited *big.Int
	TotalClaimed   *big.Int
	Holders        uint64
}

func newStoredRewardsGlobal(g *rewards.Global) *storedRewardsGlobal {
	return &storedRewardsGlobal{
		TotalShares:    toBig(g.TotalShares),
		Accumulator:    toBig(g.Accumulator),
		RewardBalance:  toBig(g.RewardBalance),
		Undistributed:  toBig(g.Undistributed),
		ScaledDust:     toBig(g.ScaledDust),
		TotalDeposited: toBig(g.TotalDeposited),
		TotalClaimed:   toBig(g.TotalClaimed),
		Holders:        g.Holders,
	}
}

func (s *storedRewardsGlobal) toGlobal() (*rewards.Global, error) {
	g := &rewards.Global{Holders: s.Holders}
	err := decodeAmounts(
		amountField{&g.TotalShares, s.TotalShares},
		amountField{&g.Accumulator, s.Accumulator},
		amountField{&g.RewardBalance, s.RewardBalance},
		amountField{&g.Undistributed, s.Undistributed},
		amountField{&g.ScaledDust, s.ScaledDust},
		amountField{&g.TotalDeposited, s.TotalDeposited},
		amountField{&g.TotalClaimed, s.TotalClaimed},
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// storedRewardsAccount keeps the signed correction as magnitude plus sign;
// RLP only encodes non-negative integers.
type storedRewardsAccount struct {
	Address             []byte
	Shares              *big.Int
	CorrectionMagnitude *big.Int
	CorrectionNegative  bool
	Withdrawn           *big.Int
}

func newStoredRewardsAccount(a *rewards.Account) *storedRewardsAccount {
	stored := &storedRewardsAccount{
		Address:             a.Address.Bytes(),
		Shares:              toBig(a.Shares),
		CorrectionMagnitude: new(big.Int),
		Withdrawn:           toBig(a.Withdrawn),
	}
	if a.Correction != nil {
		stored.CorrectionMagnitude.Abs(a.Correction)
		stored.CorrectionNegative = a.Correction.Sign() < 0
	}
	return stored
}

func (s *storedRewardsAccount) toAccount() (*rewards.Account, error) {
	a := &rewards.Account{
		Address:    ethcommon.BytesToAddress(s.Address),
		Correction: new(big.Int),
	}
	if s.CorrectionMagnitude != nil {
		a.Correction.Set(s.CorrectionMagnitude)
		if s.CorrectionNegative {
			a.Correction.Neg(a.Correction)
		}
	}
	if err := decodeAmounts(amountField{&a.Shares, s.Shares}, amountField{&a.Withdrawn, s.Withdrawn}); err != nil {
		return nil, err
	}
	return a, nil
}

// RewardsGlobal returns the ledger totals, or nil when none are stored.
func (m *Manager) RewardsGlobal() (*rewards.Global, error) {
	var stored storedRewardsGlobal
	ok, err := m.get(rewardsGlobalKey, &stored)
	if err != nil || !ok {
		return nil, err
	}
	return stored.toGlobal()
}

// PutRewardsGlobal persists the ledger totals.
func (m *Manager) PutRewardsGlobal(g *rewards.Global) error {
	return m.put(rewardsGlobalKey, newStoredRewardsGlobal(g))
}

// RewardsAccount returns the stored reward position for addr.
func (m *Manager) RewardsAccount(addr ethcommon.Address) (*rewards.Account, bool, error) {
	var stored storedRewardsAccount
	ok, err := m.get(prefixed(rewardsAccountPrefix, addr.Bytes()), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	account, err := stored.toAccount()
	if err != nil {
		return nil, false, err
	}
	return account, true, nil
}

// PutRewardsAccount persists a reward position.
func (m *Manager) PutRewardsAccount(a *rewards.Account) error {
	return m.put(prefixed(rewardsAccountPrefix, a.Address.Bytes()), newStoredRewardsAccount(a))
}

// IterateRewardsAccounts visits every stored reward position in key order.
func (m *Manager) IterateRewardsAccounts(fn func(*rewards.Account) error) error {
	return m.iterate(rewardsAccountPrefix, func(_, value []byte) error {
		var stored storedRewardsAccount
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
