package config

import (
	"fmt"
	"strings"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	nativecommon "stakeledger/native/common"
	"stakeledger/native/emission"
	"stakeledger/native/rewards"
)

func parseUintAmount(raw string) (*uint256.Int, error) {
	return nativecommon.ParseAmount(raw)
}

// ParseAddress parses a 0x-prefixed hex address, rejecting the zero address.
func ParseAddress(raw string) (ethcommon.Address, error) {
	trimmed := strings.TrimSpace(raw)
	if !ethcommon.IsHexAddress(trimmed) {
		return ethcommon.Address{}, fmt.Errorf("invalid address %q", raw)
	}
	addr := ethcommon.HexToAddress(trimmed)
	if addr == (ethcommon.Address{}) {
		return ethcommon.Address{}, fmt.Errorf("zero address not allowed")
	}
	return addr, nil
}

// ZeroSharePolicy parses the configured zero-share policy.
func (g Global) ZeroSharePolicy() (rewards.ZeroSharePolicy, error) {
	return rewards.ParseZeroSharePolicy(g.Rewards.ZeroSharePolicy)
}

// EmissionParams parses the emission section into scheduler parameters.
func (g Global) EmissionParams() (emission.Params, error) {
	mode, err := emission.ParseThrottleMode(g.Emission.Mode)
	if err != nil {
		return emission.Params{}, err
	}
	rate, err := parseUintAmount(g.Emission.RatePerUnit)
	if err != nil {
		return emission.Params{}, fmt.Errorf("invalid Emission.RatePerUnit: %w", err)
	}
	maxPer, err := parseUintAmount(g.Emission.MaxPerEmission)
	if err != nil {
		return emission.Params{}, fmt.Errorf("invalid Emission.MaxPerEmission: %w", err)
	}
	params := emission.Params{
		Mode:           mode,
		Interval:       g.Emission.Interval,
		RatePerUnit:    rate,
		MaxPerEmission: maxPer,
		BountyPercent:  g.Emission.BountyPercent,
	}
	return params, params.Validate()
}

// Deadline returns the swap deadline window of a dividend collector.
func (c Collector) Deadline() time.Duration {
	if c.DeadlineSecs == 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.DeadlineSecs) * time.Second
}

// ParsedRate is a validated fixed conversion rate.
type ParsedRate struct {
	From string
	To   string
	Num  *uint256.Int
	Den  *uint256.Int
}

// SwapRates parses every configured rate.
func (g Global) SwapRates() ([]ParsedRate, error) {
	out := make([]ParsedRate, 0, len(g.Swap.Rates))
	for i, rate := range g.Swap.Rates {
		num, err := parseUintAmount(rate.Num)
		if err != nil {
			return nil, fmt.Errorf("invalid Swap.Rates[%d].Num: %w", i, err)
		}
		den, err := parseUintAmount(rate.Den)
		if err != nil {
			return nil, fmt.Errorf("invalid Swap.Rates[%d].Den: %w", i, err)
		}
		if num.IsZero() || den.IsZero() {
			return nil, fmt.Errorf("Swap.Rates[%d]: rate must be positive", i)
		}
		out = append(out, ParsedRate{From: normaliseSymbol(rate.From), To: normaliseSymbol(rate.To), Num: num, Den: den})
	}
	return out, nil
}

// ParsedAllocation is a validated genesis mint.
type ParsedAllocation struct {
	Asset   string
	Address ethcommon.Address
	Amount  *uint256.Int
}

// GenesisAllocations parses every genesis mint.
func (g Global) GenesisAllocations() ([]ParsedAllocation, error) {
	out := make([]ParsedAllocation, 0, len(g.Genesis))
	for i, alloc := range g.Genesis {
		addr, err := ParseAddress(alloc.Address)
		if err != nil {
			return nil, fmt.Errorf("invalid Genesis[%d].Address: %w", i, err)
		}
		amount, err := parseUintAmount(alloc.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid Genesis[%d].Amount: %w", i, err)
		}
		out = append(out, ParsedAllocation{Asset: normaliseSymbol(alloc.Asset), Address: addr, Amount: amount})
	}
	return out, nil
}

// CollectedAsset returns the asset whose fees route to the named collector,
// defaulting to the staking asset for collectors no route references.
func (g Global) CollectedAsset(name string) string {
	for _, asset := range g.Assets {
		for _, route := range asset.Fees {
			if route.Collector == name {
				return asset.Symbol
			}
		}
	}
	return g.Staking.Asset
}

// PausedModules lists the modules paused at startup.
func (g Global) PausedModules() []string {
	var out []string
	if g.Pauses.Staking {
		out = append(out, nativecommon.ModuleStaking)
	}
	if g.Pauses.Rewards {
		out = append(out, nativecommon.ModuleRewards)
	}
	if g.Pauses.Collector {
		out = append(out, nativecommon.ModuleCollector)
	}
	if g.Pauses.Emission {
		out = append(out, nativecommon.ModuleEmission)
	}
	if g.Pauses.Redemption {
		out = append(out, nativecommon.ModuleRedemption)
	}
	return out
}

// RedemptionAssets returns the normalised reserve asset symbols.
func (g Global) RedemptionAssets() []string {
	out := make([]string, 0, len(g.Redemption.Assets))
	for _, symbol := range g.Redemption.Assets {
		out = append(out, normaliseSymbol(symbol))
	}
	return out
}
