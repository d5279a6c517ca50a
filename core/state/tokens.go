package state

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func tokenBalanceKey(symbol string, addr ethcommon.Address) []byte {
	return prefixed(tokenBalancePrefix, []byte(symbol), []byte(":"), addr.Bytes())
}

// TokenBalance returns addr's balance of symbol; missing balances are zero.
func (m *Manager) TokenBalance(symbol string, addr ethcommon.Address) (*uint256.Int, error) {
	stored := new(big.Int)
	if _, err := m.get(tokenBalanceKey(symbol, addr), stored); err != nil {
		return nil, err
	}
	return fromBig(stored)
}

// PutTokenBalance persists addr's balance of symbol.
func (m *Manager) PutTokenBalance(symbol string, addr ethcommon.Address, amount *uint256.Int) error {
	return m.put(tokenBalanceKey(symbol, addr), toBig(amount))
}

// TokenSupply returns the minted supply of symbol.
func (m *Manager) TokenSupply(symbol string) (*uint256.Int, error) {
	stored := new(big.Int)
	if _, err := m.get(prefixed(tokenSupplyPrefix, []byte(symbol)), stored); err != nil {
		return nil, err
	}
	return fromBig(stored)
}

// PutTokenSupply persists the minted supply of symbol.
func (m *Manager) PutTokenSupply(symbol string, amount *uint256.Int) error {
	return m.put(prefixed(tokenSupplyPrefix, []byte(symbol)), toBig(amount))
}
