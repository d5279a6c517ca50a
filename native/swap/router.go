package swap

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"stakeledger/core/events"
	"stakeledger/native/bank"
	nativecommon "stakeledger/native/common"
)

var (
	// ErrSlippageExceeded indicates the execution output fell below minOut.
	ErrSlippageExceeded = nativecommon.CollaboratorError("swap: slippage exceeded")
	// ErrDeadlineExceeded indicates the swap was submitted after its deadline.
	ErrDeadlineExceeded = nativecommon.CollaboratorError("swap: deadline exceeded")
	// ErrInsufficientLiquidity indicates the reserve cannot cover the output.
	ErrInsufficientLiquidity = nativecommon.CollaboratorError("swap: insufficient liquidity")
	// ErrInvalidPath indicates an empty path or a hop without a configured rate.
	ErrInvalidPath = errors.New("swap: invalid path")
)

// EventTypeSwapExecuted is emitted after a successful swap.
const EventTypeSwapExecuted = "swap.executed"

// Swapper converts one asset into another along path (asset symbols, input
// first).
type Swapper interface {
	Quote(amountIn *uint256.Int, path []string) (*uint256.Int, error)
	SwapExactInput(owner ethcommon.Address, amountIn *uint256.Int, path []string, minOut *uint256.Int, recipient ethcommon.Address, deadline time.Time) (*uint256.Int, error)
}

type rate struct {
	num *uint256.Int
	den *uint256.Int
}

// FixedRateRouter settles swaps at configured rates against a reserve
// address that holds liquidity for every output asset.
type FixedRateRouter struct {
	mu        sync.Mutex
	reserve   ethcommon.Address
	assets    map[string]bank.Asset
	rates     map[string]rate
	impactBps uint32
	now       func() time.Time
	emitter   events.Emitter
}

// NewFixedRateRouter constructs a router settling through reserve.
func NewFixedRateRouter(reserve ethcommon.Address) *FixedRateRouter {
	return &FixedRateRouter{
		reserve: reserve,
		assets:  make(map[string]bank.Asset),
		rates:   make(map[string]rate),
		now:     time.Now,
		emitter: events.NoopEmitter{},
	}
}

// Reserve returns the liquidity address.
func (r *FixedRateRouter) Reserve() ethcommon.Address { return r.reserve }

// SetNowFunc overrides the clock used for deadline checks.
func (r *FixedRateRouter) SetNowFunc(now func() time.Time) {
	if now == nil {
		r.now = time.Now
		return
	}
	r.now = now
}

// SetEmitter configures the event emitter used by the router.
func (r *FixedRateRouter) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// SetExecutionImpact discounts executed output against the quote by bps,
// modelling price movement between quote and execution.
func (r *FixedRateRouter) SetExecutionImpact(bps uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bps > 10_000 {
		bps = 10_000
	}
	r.impactBps = bps
}

// RegisterAsset makes asset routable by its symbol.
func (r *FixedRateRouter) RegisterAsset(asset bank.Asset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[normaliseSymbol(asset.Symbol())] = asset
}

// SetRate configures the conversion from -> to as amountOut = amountIn*num/den.
func (r *FixedRateRouter) SetRate(from, to string, num, den *uint256.Int) error {
	if nativecommon.IsZero(num) || nativecommon.IsZero(den) {
		return fmt.Errorf("swap: rate %s/%s must be positive", from, to)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates[pairKey(from, to)] = rate{num: nativecommon.Clone(num), den: nativecommon.Clone(den)}
	return nil
}

// Quote implements Swapper.
func (r *FixedRateRouter) Quote(amountIn *uint256.Int, path []string) (*uint256.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quoteLocked(amountIn, path)
}

func (r *FixedRateRouter) quoteLocked(amountIn *uint256.Int, path []string) (*uint256.Int, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("%w: need at least two assets", ErrInvalidPath)
	}
	out := nativecommon.Clone(amountIn)
	for i := 0; i+1 < len(path); i++ {
		hop, ok := r.rates[pairKey(path[i], path[i+1])]
		if !ok {
			return nil, fmt.Errorf("%w: no rate for %s->%s", ErrInvalidPath, path[i], path[i+1])
		}
		next, err := nativecommon.MulDiv(out, hop.num, hop.den)
		if err != nil {
			return nil, fmt.Errorf("swap: quote %s->%s: %w", path[i], path[i+1], err)
		}
		out = next
	}
	return out, nil
}

// SwapExactInput implements Swapper. Deadline, slippage and liquidity are
// checked before any funds move; if a taxed input leaves the executed output
// under minOut the received input is returned to owner.
func (r *FixedRateRouter) SwapExactInput(owner ethcommon.Address, amountIn *uint256.Int, path []string, minOut *uint256.Int, recipient ethcommon.Address, deadline time.Time) (*uint256.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !deadline.IsZero() && r.now().After(deadline) {
		return nil, ErrDeadlineExceeded
	}
	if nativecommon.IsZero(amountIn) {
		return nil, fmt.Errorf("%w: zero input", ErrInvalidPath)
	}
	if len(path) < 2 {
		return nil, fmt.Errorf("%w: need at least two assets", ErrInvalidPath)
	}
	input, ok := r.assets[normaliseSymbol(path[0])]
	if !ok {
		return nil, fmt.Errorf("%w: unknown asset %s", ErrInvalidPath, path[0])
	}
	output, ok := r.assets[normaliseSymbol(path[len(path)-1])]
	if !ok {
		return nil, fmt.Errorf("%w: unknown asset %s", ErrInvalidPath, path[len(path)-1])
	}
	expected, err := r.executedOutput(amountIn, path)
	if err != nil {
		return nil, err
	}
	if expected.Lt(nativecommon.Clone(minOut)) {
		return nil, fmt.Errorf("%w: output %s below minimum %s", ErrSlippageExceeded, expected, nativecommon.Clone(minOut))
	}
	liquidity, err := output.BalanceOf(r.reserve)
	if err != nil {
		return nil, err
	}
	if liquidity.Lt(expected) {
		return nil, fmt.Errorf("%w: reserve holds %s, need %s", ErrInsufficientLiquidity, liquidity, expected)
	}

	before, err := input.BalanceOf(r.reserve)
	if err != nil {
		return nil, err
	}
	if err := input.Transfer(owner, r.reserve, amountIn); err != nil {
		return nil, fmt.Errorf("swap: pull input: %w", err)
	}
	after, err := input.BalanceOf(r.reserve)
	if err != nil {
		return nil, err
	}
	received := new(uint256.Int).Sub(after, before)
	out, err := r.executedOutput(received, path)
	if err != nil {
		return nil, err
	}
	if out.Lt(nativecommon.Clone(minOut)) || out.IsZero() {
		if refundErr := input.Transfer(r.reserve, owner, received); refundErr != nil {
			return nil, errors.Join(ErrSlippageExceeded, fmt.Errorf("swap: refund input: %w", refundErr))
		}
		return nil, fmt.Errorf("%w: received input %s yields %s", ErrSlippageExceeded, received, out)
	}
	if err := output.Transfer(r.reserve, recipient, out); err != nil {
		if refundErr := input.Transfer(r.reserve, owner, received); refundErr != nil {
			return nil, errors.Join(err, refundErr)
		}
		return nil, fmt.Errorf("swap: deliver output: %w", err)
	}
	r.emitter.Emit(&events.Record{
		Type: EventTypeSwapExecuted,
		Attributes: map[string]string{
			"owner":     owner.Hex(),
			"recipient": recipient.Hex(),
			"path":      strings.Join(path, ">"),
			"amountIn":  received.Dec(),
			"amountOut": out.Dec(),
		},
	})
	return out, nil
}

func (r *FixedRateRouter) executedOutput(amountIn *uint256.Int, path []string) (*uint256.Int, error) {
	quoted, err := r.quoteLocked(amountIn, path)
	if err != nil {
		return nil, err
	}
	if r.impactBps == 0 {
		return quoted, nil
	}
	return nativecommon.MulDiv(quoted, uint256.NewInt(uint64(10_000-r.impactBps)), uint256.NewInt(10_000))
}

func normaliseSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func pairKey(from, to string) string {
	return normaliseSymbol(from) + "/" + normaliseSymbol(to)
}
