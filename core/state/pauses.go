package state

import nativecommon "stakeledger/native/common"

// IsPaused reports whether module is paused. Storage errors report paused so
// mutating entry points fail closed.
func (m *Manager) IsPaused(module string) bool {
	var paused bool
	if _, err := m.get(prefixed(pausePrefix, []byte(module)), &paused); err != nil {
		return true
	}
	return paused
}

// SetPaused records the pause flag for module.
func (m *Manager) SetPaused(module string, paused bool) error {
	return m.put(prefixed(pausePrefix, []byte(module)), paused)
}

// Pauses returns the flag of every known module.
func (m *Manager) Pauses() map[string]bool {
	out := make(map[string]bool, len(nativecommon.Modules))
	for _, module := range nativecommon.Modules {
		out[module] = m.IsPaused(module)
	}
	return out
}
