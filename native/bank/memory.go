package bank

import (
	"sync"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// MemoryBalances is an in-process balance store for tokens that do not need
// persistence.
type MemoryBalances struct {
	mu       sync.Mutex
	balances map[string]map[ethcommon.Address]*uint256.Int
	supply   map[string]*uint256.Int
}

func NewMemoryBalances() *MemoryBalances {
	return &MemoryBalances{
		balances: make(map[string]map[ethcommon.Address]*uint256.Int),
		supply:   make(map[string]*uint256.Int),
	}
}

func (m *MemoryBalances) TokenBalance(symbol string, addr ethcommon.Address) (*uint256.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if bal, ok := m.balances[symbol][addr]; ok {
		return new(uint256.Int).Set(bal), nil
	}
	return new(uint256.Int), nil
}

func (m *MemoryBalances) PutTokenBalance(symbol string, addr ethcommon.Address, amount *uint256.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	book, ok := m.balances[symbol]
	if !ok {
		book = make(map[ethcommon.Address]*uint256.Int)
		m.balances[symbol] = book
	}
	book[addr] = new(uint256.Int).Set(amount)
	return nil
}

func (m *MemoryBalances) TokenSupply(symbol string) (*uint256.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.supply[symbol]; ok {
		return new(uint256.Int).Set(s), nil
	}
	return new(uint256.Int), nil
}

func (m *MemoryBalances) PutTokenSupply(symbol string, amount *uint256.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.supply[symbol] = new(uint256.Int).Set(amount)
	return nil
}
