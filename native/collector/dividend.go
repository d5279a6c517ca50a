package collector

import (
	"errors"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"stakeledger/native/bank"
	nativecommon "stakeledger/native/common"
	"stakeledger/native/swap"
)

// RevenueSink is the reward ledger entry point used by DividendCollector.
type RevenueSink interface {
	DepositRevenue(from ethcommon.Address, amount *uint256.Int) (*uint256.Int, error)
}

// DividendCollector swaps collected fees into the reward asset and deposits
// the proceeds as ledger revenue.
type DividendCollector struct {
	base
	feeAsset    bank.Asset
	rewardAsset bank.Asset
	swapper     swap.Swapper
	ledger      RevenueSink
	path        []string
	slippageBps uint32
	deadline    time.Duration
}

// DividendOptions tunes the swap leg of a DividendCollector.
type DividendOptions struct {
	// Path overrides the default [fee, reward] route.
	Path        []string
	SlippageBps uint32
	Deadline    time.Duration
}

// NewDividendCollector constructs a collector holding feeAsset at addr.
func NewDividendCollector(name string, addr ethcommon.Address, feeAsset, rewardAsset bank.Asset, swapper swap.Swapper, ledger RevenueSink, opts DividendOptions) *DividendCollector {
	path := opts.Path
	if len(path) == 0 {
		path = []string{feeAsset.Symbol(), rewardAsset.Symbol()}
	}
	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = 5 * time.Minute
	}
	slippage := opts.SlippageBps
	if slippage > 10_000 {
		slippage = 10_000
	}
	return &DividendCollector{
		base:        newBase(name, KindDividend, addr),
		feeAsset:    feeAsset,
		rewardAsset: rewardAsset,
		swapper:     swapper,
		ledger:      ledger,
		path:        append([]string(nil), path...),
		slippageBps: slippage,
		deadline:    deadline,
	}
}

// MinOut applies the slippage tolerance to a quote.
func (c *DividendCollector) MinOut(quote *uint256.Int) *uint256.Int {
	out, err := nativecommon.MulDiv(quote, uint256.NewInt(uint64(10_000-c.slippageBps)), uint256.NewInt(10_000))
	if err != nil {
		return new(uint256.Int)
	}
	return out
}

// Trigger swaps the held fee asset and deposits every held unit of the
// reward asset, including proceeds left over from an earlier failed deposit.
// On ErrSlippageExceeded the fee asset stays held for a retry.
func (c *DividendCollector) Trigger() (*TriggerResult, error) {
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
	if c.feeAsset.Symbol() != c.rewardAsset.Symbol() {
		held, err := c.feeAsset.BalanceOf(c.addr)
		if err != nil {
			return nil, err
		}
		if !held.IsZero() {
			out, err := c.swapHeld(held)
			if err != nil {
				return nil, c.recordFailure(st, err)
			}
			result.Input = held
			result.SwappedOut = out
			st.TotalSwappedIn = new(uint256.Int).Add(st.TotalSwappedIn, held)
		}
	}

	proceeds, err := c.rewardAsset.BalanceOf(c.addr)
	if err != nil {
		return nil, err
	}
	if proceeds.IsZero() {
		if result.Input.IsZero() {
			result.Skipped = true
			return result, nil
		}
		if err := c.finish(st, result); err != nil {
			return nil, err
		}
		return result, nil
	}
	if _, err := c.ledger.DepositRevenue(c.addr, proceeds); err != nil {
		// The swap already settled; keep its bookkeeping and retry the deposit later.
		return result, c.recordFailure(st, wrapf(err, "collector %s: deposit revenue", c.name))
	}
	result.Forwarded = proceeds
	st.TotalForwarded = new(uint256.Int).Add(st.TotalForwarded, proceeds)
	if err := c.finish(st, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *DividendCollector) swapHeld(held *uint256.Int) (*uint256.Int, error) {
	quote, err := c.swapper.Quote(held, c.path)
	if err != nil {
		return nil, wrapf(err, "collector %s: quote", c.name)
	}
	if quote.IsZero() {
		return nil, wrapf(swap.ErrSlippageExceeded, "collector %s: zero quote for %s", c.name, held)
	}
	deadline := c.nowFn().Add(c.deadline)
	out, err := c.swapper.SwapExactInput(c.addr, held, c.path, c.MinOut(quote), c.addr, deadline)
	if err != nil {
		if errors.Is(err, swap.ErrSlippageExceeded) {
			return nil, wrapf(err, "collector %s: swap held for retry", c.name)
		}
		return nil, wrapf(err, "collector %s: swap", c.name)
	}
	return out, nil
}
