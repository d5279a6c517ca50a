package state

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	nativecommon "stakeledger/native/common"
	"stakeledger/storage"
)

// Manager persists every ledger module's records in a key/value database.
// It satisfies the state interfaces of the rewards, staking, collector,
// emission and bank packages.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

// Database exposes the underlying store.
func (m *Manager) Database() storage.Database { return m.db }

func (m *Manager) put(key []byte, value interface{}) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: manager unavailable")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(key, encoded)
}

// get decodes the value stored at key into out and reports whether it existed.
func (m *Manager) get(key []byte, out interface{}) (bool, error) {
	if m == nil || m.db == nil {
		return false, fmt.Errorf("state: manager unavailable")
	}
	data, err := m.db.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, fmt.Errorf("state: decode %x: %w", key, err)
	}
	return true, nil
}

func (m *Manager) iterate(prefix []byte, decode func(key, value []byte) error) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: manager unavailable")
	}
	return m.db.Iterate(prefix, decode)
}

func toBig(v *uint256.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v.ToBig()
}

func fromBig(v *big.Int) (*uint256.Int, error) {
	return nativecommon.FromBig(v)
}

type amountField struct {
	dst **uint256.Int
	src *big.Int
}

// decodeAmounts converts stored big integers back into 256-bit amounts,
// stopping at the first out-of-range value.
func decodeAmounts(fields ...amountField) error {
	for _, field := range fields {
		v, err := fromBig(field.src)
		if err != nil {
			return err
		}
		*field.dst = v
	}
	return nil
}

func decodeRLP(data []byte, out interface{}) error {
	if err := rlp.DecodeBytes(data, out); err != nil {
		return fmt.Errorf("state: decode record: %w", err)
	}
	return nil
}
