package collector

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"stakeledger/native/bank"
	nativecommon "stakeledger/native/common"
)

// Reinvestor is the staking pool entry point used by ReinvestCollector.
type Reinvestor interface {
	Reinvest(from ethcommon.Address, amount *uint256.Int) (*uint256.Int, error)
}

// ReinvestCollector forwards collected principal-asset fees into the pool
// without minting shares.
type ReinvestCollector struct {
	base
	asset bank.Asset
	pool  Reinvestor
}

// NewReinvestCollector constructs a collector holding asset at addr.
func NewReinvestCollector(name string, addr ethcommon.Address, asset bank.Asset, pool Reinvestor) *ReinvestCollector {
	return &ReinvestCollector{base: newBase(name, KindReinvest, addr), asset: asset, pool: pool}
}

// Trigger forwards the full held balance to the pool. A zero balance is a
// no-op.
func (c *ReinvestCollector) Trigger() (*TriggerResult, error) {
	release, err := c.begin()
	if err != nil {
		return nil, err
	}
	defer release()

	st, err := c.load()
	if err != nil {
		return nil, err
	}
	result := c.result()
	held, err := c.asset.BalanceOf(c.addr)
	if err != nil {
		return nil, err
	}
	if held.IsZero() {
		result.Skipped = true
		return result, nil
	}
	result.Input = held
	if _, err := c.pool.Reinvest(c.addr, held); err != nil {
		return nil, c.recordFailure(st, wrapf(err, "collector %s: reinvest", c.name))
	}
	result.Forwarded = nativecommon.Clone(held)
	st.TotalForwarded = new(uint256.Int).Add(st.TotalForwarded, held)
	if err := c.finish(st, result); err != nil {
		return nil, err
	}
	return result, nil
}
