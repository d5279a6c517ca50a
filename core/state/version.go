package state

import (
	"errors"
	"fmt"
)

// StateVersion identifies the on-disk record layout. Increment it whenever a
// stored struct changes shape.
const StateVersion uint32 = 1

// ErrStateVersionMismatch indicates the stored schema version does not match
// the version supported by the current binary.
var ErrStateVersionMismatch = errors.New("state: schema version mismatch")

// SetStateVersion records version in state.
func (m *Manager) SetStateVersion(version uint32) error {
	return m.put(stateVersionKey, uint64(version))
}

// StateVersion returns the stored schema version and whether one was present.
func (m *Manager) StateVersion() (uint32, bool, error) {
	var stored uint64
	ok, err := m.get(stateVersionKey, &stored)
	if err != nil || !ok {
		return 0, ok, err
	}
	return uint32(stored), true, nil
}

// EnsureStateVersion stamps an empty store with StateVersion and rejects a
// store written by an incompatible binary.
func (m *Manager) EnsureStateVersion() error {
	version, ok, err := m.StateVersion()
	if err != nil {
		return err
	}
	if !ok {
		return m.SetStateVersion(StateVersion)
	}
	if version != StateVersion {
		return fmt.Errorf("%w: stored %d, supported %d", ErrStateVersionMismatch, version, StateVersion)
	}
	return nil
}
