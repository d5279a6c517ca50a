package common

import "errors"

var ErrModulePaused = errors.New("module paused")

// Module names used for pause checks.
const (
	ModuleStaking    = "staking"
	ModuleRewards    = "rewards"
	ModuleCollector  = "collector"
	ModuleEmission   = "emission"
	ModuleRedemption = "redemption"
)

// Modules lists every pausable module.
var Modules = []string{ModuleStaking, ModuleRewards, ModuleCollector, ModuleEmission, ModuleRedemption}

type PauseView interface {
	IsPaused(module string) bool
}

func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// IsKnownModule reports whether module names one of the pausable modules.
func IsKnownModule(module string) bool {
	for _, m := range Modules {
		if m == module {
			return true
		}
	}
	return false
}
