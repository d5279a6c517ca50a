package config

import (
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// MaxBps is the basis-point denominator.
const MaxBps = uint32(10_000)

func ValidateConfig(g Global) error {
	assets := make(map[string]Asset, len(g.Assets))
	for _, asset := range g.Assets {
		if asset.Symbol == "" {
			return fmt.Errorf("assets: symbol required")
		}
		if _, dup := assets[asset.Symbol]; dup {
			return fmt.Errorf("assets: duplicate symbol %s", asset.Symbol)
		}
		assets[asset.Symbol] = asset
	}
	if _, ok := assets[g.Staking.Asset]; !ok {
		return fmt.Errorf("staking: asset %q not declared", g.Staking.Asset)
	}
	if _, ok := assets[g.Rewards.Asset]; !ok {
		return fmt.Errorf("rewards: asset %q not declared", g.Rewards.Asset)
	}
	stakingVault, err := ParseAddress(g.Staking.Vault)
	if err != nil {
		return fmt.Errorf("staking: vault: %w", err)
	}
	rewardsVault, err := ParseAddress(g.Rewards.Vault)
	if err != nil {
		return fmt.Errorf("rewards: vault: %w", err)
	}
	if stakingVault == rewardsVault {
		return fmt.Errorf("rewards: vault must differ from the staking vault")
	}
	if _, err := g.ZeroSharePolicy(); err != nil {
		return err
	}

	collectors := make(map[string]Collector, len(g.Collectors))
	addresses := map[ethcommon.Address]string{stakingVault: "staking vault", rewardsVault: "rewards vault"}
	for _, c := range g.Collectors {
		if c.Name == "" {
			return fmt.Errorf("collectors: name required")
		}
		if _, dup := collectors[c.Name]; dup {
			return fmt.Errorf("collectors: duplicate name %s", c.Name)
		}
		switch c.Kind {
		case "reinvest", "dividend":
		default:
			return fmt.Errorf("collectors: %s has unknown kind %q", c.Name, c.Kind)
		}
		addr, err := ParseAddress(c.Address)
		if err != nil {
			return fmt.Errorf("collectors: %s address: %w", c.Name, err)
		}
		if owner, taken := addresses[addr]; taken {
			return fmt.Errorf("collectors: %s address already used by %s", c.Name, owner)
		}
		addresses[addr] = "collector " + c.Name
		if c.SlippageBps > MaxBps {
			return fmt.Errorf("collectors: %s slippage %d bps exceeds %d", c.Name, c.SlippageBps, MaxBps)
		}
		collectors[c.Name] = c
	}

	collectorAsset := make(map[string]string, len(collectors))
	for _, asset := range g.Assets {
		total := uint32(0)
		for _, route := range asset.Fees {
			if (route.Collector == "") == (route.Sink == "") {
				return fmt.Errorf("assets: %s fee %q needs exactly one of Collector or Sink", asset.Symbol, route.Name)
			}
			if route.Collector != "" {
				c, ok := collectors[route.Collector]
				if !ok {
					return fmt.Errorf("assets: %s fee %q references unknown collector %s", asset.Symbol, route.Name, route.Collector)
				}
				if c.Kind == "reinvest" && asset.Symbol != g.Staking.Asset {
					return fmt.Errorf("assets: reinvest collector %s can only collect %s", c.Name, g.Staking.Asset)
				}
				if prev, seen := collectorAsset[c.Name]; seen && prev != asset.Symbol {
					return fmt.Errorf("assets: collector %s already collects %s", c.Name, prev)
				}
				collectorAsset[c.Name] = asset.Symbol
			} else if _, err := ParseAddress(route.Sink); err != nil {
				return fmt.Errorf("assets: %s fee %q sink: %w", asset.Symbol, route.Name, err)
			}
			total += route.Bps
		}
		if total > MaxBps {
			return fmt.Errorf("assets: %s fees total %d bps exceeds %d", asset.Symbol, total, MaxBps)
		}
		for _, raw := range asset.Exempt {
			if _, err := ParseAddress(raw); err != nil {
				return fmt.Errorf("assets: %s exempt: %w", asset.Symbol, err)
			}
		}
	}

	if g.Emission.Enabled {
		if _, err := g.EmissionParams(); err != nil {
			return fmt.Errorf("emission: %w", err)
		}
		if _, err := ParseAddress(g.Emission.Reserve); err != nil {
			return fmt.Errorf("emission: reserve: %w", err)
		}
	}

	if g.Redemption.Enabled {
		reserve, err := ParseAddress(g.Redemption.Reserve)
		if err != nil {
			return fmt.Errorf("redemption: reserve: %w", err)
		}
		if owner, taken := addresses[reserve]; taken {
			return fmt.Errorf("redemption: reserve already used by %s", owner)
		}
		symbols := g.RedemptionAssets()
		if len(symbols) == 0 {
			return fmt.Errorf("redemption: at least one reserve asset required")
		}
		seen := make(map[string]struct{}, len(symbols))
		for _, symbol := range symbols {
			if _, ok := assets[symbol]; !ok {
				return fmt.Errorf("redemption: asset %q not declared", symbol)
			}
			if symbol == g.Staking.Asset {
				return fmt.Errorf("redemption: cannot pay out the redeemed asset %s", symbol)
			}
			if _, dup := seen[symbol]; dup {
				return fmt.Errorf("redemption: duplicate asset %s", symbol)
			}
			seen[symbol] = struct{}{}
		}
	}

	rates, err := g.SwapRates()
	if err != nil {
		return fmt.Errorf("swap: %w", err)
	}
	if len(rates) > 0 || hasDividendCollector(g.Collectors) {
		if _, err := ParseAddress(g.Swap.Reserve); err != nil {
			return fmt.Errorf("swap: reserve: %w", err)
		}
	}
	if g.Swap.ImpactBps > MaxBps {
		return fmt.Errorf("swap: impact %d bps exceeds %d", g.Swap.ImpactBps, MaxBps)
	}
	for _, rate := range rates {
		if _, ok := assets[rate.From]; !ok {
			return fmt.Errorf("swap: rate references unknown asset %s", rate.From)
		}
		if _, ok := assets[rate.To]; !ok {
			return fmt.Errorf("swap: rate references unknown asset %s", rate.To)
		}
	}

	allocations, err := g.GenesisAllocations()
	if err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	for _, alloc := range allocations {
		if _, ok := assets[alloc.Asset]; !ok {
			return fmt.Errorf("genesis: unknown asset %s", alloc.Asset)
		}
	}
	return nil
}

func hasDividendCollector(collectors []Collector) bool {
	for _, c := range collectors {
		if c.Kind == "dividend" {
			return true
		}
	}
	return false
}
