package swap

import (
	"errors"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"stakeledger/core/events"
	"stakeledger/native/bank"
)

type fixture struct {
	router  *FixedRateRouter
	fee     *bank.Token
	reward  *bank.Token
	owner   ethcommon.Address
	reserve ethcommon.Address
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	balances := bank.NewMemoryBalances()
	f := &fixture{
		fee:     bank.NewToken("FEE", balances),
		reward:  bank.NewToken("RWD", balances),
		owner:   ethcommon.HexToAddress("0x01"),
		reserve: ethcommon.HexToAddress("0xfe"),
		now:     time.Unix(1_700_000_000, 0),
	}
	f.router = NewFixedRateRouter(f.reserve)
	f.router.SetNowFunc(func() time.Time { return f.now })
	f.router.RegisterAsset(f.fee)
	f.router.RegisterAsset(f.reward)
	if err := f.router.SetRate("FEE", "RWD", uint256.NewInt(1), uint256.NewInt(2)); err != nil {
		t.Fatalf("set rate: %v", err)
	}
	if err := f.fee.Mint(f.owner, uint256.NewInt(1_000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := f.reward.Mint(f.reserve, uint256.NewInt(10_000)); err != nil {
		t.Fatalf("mint reserve: %v", err)
	}
	return f
}

func balance(t *testing.T, asset bank.Asset, who ethcommon.Address) uint64 {
	t.Helper()
	bal, err := asset.BalanceOf(who)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return bal.Uint64()
}

func TestQuote(t *testing.T) {
	f := newFixture(t)
	out, err := f.router.Quote(uint256.NewInt(100), []string{"fee", "rwd"})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if out.Uint64() != 50 {
		t.Fatalf("quote = %s, want 50", out)
	}
	if _, err := f.router.Quote(uint256.NewInt(100), []string{"RWD", "FEE"}); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected invalid path, got %v", err)
	}
	if _, err := f.router.Quote(uint256.NewInt(100), []string{"FEE"}); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected invalid path for single hop, got %v", err)
	}
}

func TestSwapExactInput(t *testing.T) {
	f := newFixture(t)
	recorder := &events.Recorder{}
	f.router.SetEmitter(recorder)
	recipient := ethcommon.HexToAddress("0x02")
	out, err := f.router.SwapExactInput(f.owner, uint256.NewInt(200), []string{"FEE", "RWD"}, uint256.NewInt(100), recipient, f.now.Add(time.Minute))
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if out.Uint64() != 100 {
		t.Fatalf("out = %s", out)
	}
	if got := balance(t, f.reward, recipient); got != 100 {
		t.Fatalf("recipient = %d", got)
	}
	if got := balance(t, f.fee, f.owner); got != 800 {
		t.Fatalf("owner fee balance = %d", got)
	}
	if got := balance(t, f.fee, f.reserve); got != 200 {
		t.Fatalf("reserve fee balance = %d", got)
	}
	if len(recorder.OfType(EventTypeSwapExecuted)) != 1 {
		t.Fatalf("expected swap event")
	}
}

func TestSwapSlippageMovesNothing(t *testing.T) {
	f := newFixture(t)
	f.router.SetExecutionImpact(1_000)
	_, err := f.router.SwapExactInput(f.owner, uint256.NewInt(200), []string{"FEE", "RWD"}, uint256.NewInt(95), f.owner, time.Time{})
	if !errors.Is(err, ErrSlippageExceeded) {
		t.Fatalf("expected slippage error, got %v", err)
	}
	if got := balance(t, f.fee, f.owner); got != 1_000 {
		t.Fatalf("owner balance changed: %d", got)
	}
	if got := balance(t, f.reward, f.reserve); got != 10_000 {
		t.Fatalf("reserve changed: %d", got)
	}
}

func TestSwapDeadline(t *testing.T) {
	f := newFixture(t)
	_, err := f.router.SwapExactInput(f.owner, uint256.NewInt(200), []string{"FEE", "RWD"}, uint256.NewInt(1), f.owner, f.now.Add(-time.Second))
	if !errors.Is(err, ErrDeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if got := balance(t, f.fee, f.owner); got != 1_000 {
		t.Fatalf("owner balance changed: %d", got)
	}
}

func TestSwapInsufficientLiquidity(t *testing.T) {
	f := newFixture(t)
	if err := f.fee.Mint(f.owner, uint256.NewInt(100_000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	_, err := f.router.SwapExactInput(f.owner, uint256.NewInt(50_000), []string{"FEE", "RWD"}, uint256.NewInt(1), f.owner, time.Time{})
	if !errors.Is(err, ErrInsufficientLiquidity) {
		t.Fatalf("expected liquidity error, got %v", err)
	}
}

func TestTaxedInputRefundedOnSlippage(t *testing.T) {
	f := newFixture(t)
	sink := ethcommon.HexToAddress("0xee")
	if err := f.fee.AddFeeRoute(bank.FeeRoute{Name: "tax", Bps: 5_000, Sink: sink}); err != nil {
		t.Fatalf("route: %v", err)
	}
	// Half the input is taxed away, so the executed output misses minOut.
	_, err := f.router.SwapExactInput(f.owner, uint256.NewInt(200), []string{"FEE", "RWD"}, uint256.NewInt(100), f.owner, time.Time{})
	if !errors.Is(err, ErrSlippageExceeded) {
		t.Fatalf("expected slippage error, got %v", err)
	}
	if got := balance(t, f.fee, f.reserve); got != 0 {
		t.Fatalf("reserve kept input: %d", got)
	}
	if got := balance(t, f.reward, f.reserve); got != 10_000 {
		t.Fatalf("reserve output moved: %d", got)
	}
}
