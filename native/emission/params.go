package emission

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	nativecommon "stakeledger/native/common"
)

// ThrottleMode selects the clock emissions are throttled against.
type ThrottleMode uint8

const (
	// ThrottleTime measures the interval in seconds.
	ThrottleTime ThrottleMode = iota
	// ThrottleBlock measures the interval in block heights.
	ThrottleBlock
)

func (m ThrottleMode) String() string {
	if m == ThrottleBlock {
		return "block"
	}
	return "time"
}

// ParseThrottleMode maps a configuration string onto a mode; empty selects time.
func ParseThrottleMode(raw string) (ThrottleMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "time", "seconds":
		return ThrottleTime, nil
	case "block", "blocks":
		return ThrottleBlock, nil
	default:
		return ThrottleTime, fmt.Errorf("emission: unknown throttle mode %q", raw)
	}
}

// Params configures the schedule. RatePerUnit is paid per elapsed second or
// block; a zero MaxPerEmission leaves emissions uncapped.
type Params struct {
	Mode           ThrottleMode
	Interval       uint64
	RatePerUnit    *uint256.Int
	MaxPerEmission *uint256.Int
	BountyPercent  uint8
}

// Validate checks the parameters are usable.
func (p Params) Validate() error {
	if p.Interval == 0 {
		return fmt.Errorf("emission: interval must be positive")
	}
	if nativecommon.IsZero(p.RatePerUnit) {
		return fmt.Errorf("emission: rate per unit must be positive")
	}
	if p.BountyPercent > 100 {
		return fmt.Errorf("emission: bounty percent %d exceeds 100", p.BountyPercent)
	}
	return nil
}
