package bank

import (
	"fmt"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"stakeledger/core/events"
	nativecommon "stakeledger/native/common"
)

const (
	// EventTypeTransfer is emitted for every completed token movement.
	EventTypeTransfer = "bank.transfer"
	// EventTypeFeeHookFailed is emitted when a fee hook returns an error.
	EventTypeFeeHookFailed = "bank.fee_hook.failed"

	bpsDenominator = 10_000
)

type tokenState interface {
	TokenBalance(symbol string, addr ethcommon.Address) (*uint256.Int, error)
	PutTokenBalance(symbol string, addr ethcommon.Address, amount *uint256.Int) error
	TokenSupply(symbol string) (*uint256.Int, error)
	PutTokenSupply(symbol string, amount *uint256.Int) error
}

// Token is a state-backed fungible asset with optional transfer tax routes.
type Token struct {
	symbol  string
	state   tokenState
	routes  []FeeRoute
	exempt  map[ethcommon.Address]struct{}
	blocked map[ethcommon.Address]struct{}
	emitter events.Emitter
}

// NewToken constructs a token over the supplied balance store.
func NewToken(symbol string, state tokenState) *Token {
	return &Token{
		symbol:  strings.ToUpper(strings.TrimSpace(symbol)),
		state:   state,
		exempt:  make(map[ethcommon.Address]struct{}),
		blocked: make(map[ethcommon.Address]struct{}),
		emitter: events.NoopEmitter{},
	}
}

// SetEmitter configures the event emitter used by the token.
func (t *Token) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		t.emitter = events.NoopEmitter{}
		return
	}
	t.emitter = emitter
}

// AddFeeRoute appends a transfer tax route. The sum of all route rates may not
// exceed 100%.
func (t *Token) AddFeeRoute(route FeeRoute) error {
	if err := route.validate(); err != nil {
		return err
	}
	total := uint64(route.Bps)
	for _, existing := range t.routes {
		total += uint64(existing.Bps)
	}
	if total > bpsDenominator {
		return fmt.Errorf("%w: total fee %d bps exceeds 100%%", ErrInvalidRoute, total)
	}
	t.routes = append(t.routes, route)
	t.exempt[route.Sink] = struct{}{}
	return nil
}

// Exempt excludes addr from transfer tax on both sides of a transfer.
func (t *Token) Exempt(addr ethcommon.Address) {
	t.exempt[addr] = struct{}{}
}

// Block refuses every transfer into or out of addr until Unblock is called.
func (t *Token) Block(addr ethcommon.Address) {
	t.blocked[addr] = struct{}{}
}

// Unblock lifts a previous Block.
func (t *Token) Unblock(addr ethcommon.Address) {
	delete(t.blocked, addr)
}

// Symbol implements Asset.
func (t *Token) Symbol() string { return t.symbol }

// BalanceOf implements Asset.
func (t *Token) BalanceOf(addr ethcommon.Address) (*uint256.Int, error) {
	if t == nil || t.state == nil {
		return nil, fmt.Errorf("bank: token not initialised")
	}
	bal, err := t.state.TokenBalance(t.symbol, addr)
	if err != nil {
		return nil, err
	}
	return nativecommon.Clone(bal), nil
}

// TotalSupply returns the minted supply.
func (t *Token) TotalSupply() (*uint256.Int, error) {
	supply, err := t.state.TokenSupply(t.symbol)
	if err != nil {
		return nil, err
	}
	return nativecommon.Clone(supply), nil
}

// Mint credits amount to addr and grows the supply.
func (t *Token) Mint(to ethcommon.Address, amount *uint256.Int) error {
	if nativecommon.IsZero(amount) {
		return nil
	}
	supply, err := t.state.TokenSupply(t.symbol)
	if err != nil {
		return err
	}
	next, err := nativecommon.Add(supply, amount)
	if err != nil {
		return fmt.Errorf("bank: mint %s: %w", t.symbol, err)
	}
	if err := t.credit(to, amount); err != nil {
		return err
	}
	return t.state.PutTokenSupply(t.symbol, next)
}

// Burn debits amount from addr and shrinks the supply. Burns are never taxed.
func (t *Token) Burn(from ethcommon.Address, amount *uint256.Int) error {
	if t == nil || t.state == nil {
		return fmt.Errorf("bank: token not initialised")
	}
	if nativecommon.IsZero(amount) {
		return nil
	}
	if _, blocked := t.blocked[from]; blocked {
		return fmt.Errorf("%w: holder %s blocked", ErrTransferRejected, from.Hex())
	}
	balance, err := t.state.TokenBalance(t.symbol, from)
	if err != nil {
		return err
	}
	remaining, err := nativecommon.Sub(balance, amount)
	if err != nil {
		return fmt.Errorf("%w: %s holds %s %s, burns %s", ErrInsufficientBalance, from.Hex(), nativecommon.Clone(balance), t.symbol, amount)
	}
	supply, err := t.state.TokenSupply(t.symbol)
	if err != nil {
		return err
	}
	nextSupply, err := nativecommon.Sub(supply, amount)
	if err != nil {
		return fmt.Errorf("bank: burn %s: %w", t.symbol, err)
	}
	if err := t.state.PutTokenBalance(t.symbol, from, remaining); err != nil {
		return err
	}
	return t.state.PutTokenSupply(t.symbol, nextSupply)
}

// Transfer implements Asset. Non-exempt transfers are taxed per the configured
// fee routes; the recipient receives the remainder.
func (t *Token) Transfer(from, to ethcommon.Address, amount *uint256.Int) error {
	if t == nil || t.state == nil {
		return fmt.Errorf("bank: token not initialised")
	}
	if nativecommon.IsZero(amount) {
		return nil
	}
	if _, ok := t.blocked[from]; ok {
		return fmt.Errorf("%w: sender %s blocked", ErrTransferRejected, from.Hex())
	}
	if _, ok := t.blocked[to]; ok {
		return fmt.Errorf("%w: recipient %s blocked", ErrTransferRejected, to.Hex())
	}
	balance, err := t.state.TokenBalance(t.symbol, from)
	if err != nil {
		return err
	}
	if nativecommon.Clone(balance).Lt(amount) {
		return fmt.Errorf("%w: %s holds %s %s, needs %s", ErrInsufficientBalance, from.Hex(), nativecommon.Clone(balance), t.symbol, amount)
	}
	fees := t.feesFor(from, to, amount)
	net := nativecommon.Clone(amount)
	for _, fee := range fees {
		net.Sub(net, fee)
	}

	remaining := new(uint256.Int).Sub(balance, amount)
	if err := t.state.PutTokenBalance(t.symbol, from, remaining); err != nil {
		return err
	}
	if err := t.credit(to, net); err != nil {
		return err
	}
	for i, fee := range fees {
		if fee.IsZero() {
			continue
		}
		if err := t.credit(t.routes[i].Sink, fee); err != nil {
			return err
		}
	}
	t.emitter.Emit(&events.Record{
		Type: EventTypeTransfer,
		Attributes: map[string]string{
			"symbol": t.symbol,
			"from":   from.Hex(),
			"to":     to.Hex(),
			"amount": amount.Dec(),
			"net":    net.Dec(),
		},
	})
	// Hooks run after balances settle; a failing hook never reverts the transfer.
	for i, fee := range fees {
		route := t.routes[i]
		if fee.IsZero() || route.Hook == nil {
			continue
		}
		if err := route.Hook.Receive(nativecommon.Clone(fee)); err != nil {
			t.emitter.Emit(&events.Record{
				Type: EventTypeFeeHookFailed,
				Attributes: map[string]string{
					"symbol": t.symbol,
					"route":  route.Name,
					"amount": fee.Dec(),
					"error":  err.Error(),
				},
			})
		}
	}
	return nil
}

func (t *Token) feesFor(from, to ethcommon.Address, amount *uint256.Int) []*uint256.Int {
	fees := make([]*uint256.Int, len(t.routes))
	_, fromExempt := t.exempt[from]
	_, toExempt := t.exempt[to]
	for i, route := range t.routes {
		if fromExempt || toExempt || route.Bps == 0 {
			fees[i] = new(uint256.Int)
			continue
		}
		fee, err := nativecommon.MulDiv(amount, uint256.NewInt(uint64(route.Bps)), uint256.NewInt(bpsDenominator))
		if err != nil {
			fee = new(uint256.Int)
		}
		fees[i] = fee
	}
	return fees
}

func (t *Token) credit(addr ethcommon.Address, amount *uint256.Int) error {
	current, err := t.state.TokenBalance(t.symbol, addr)
	if err != nil {
		return err
	}
	next, err := nativecommon.Add(current, amount)
	if err != nil {
		return fmt.Errorf("bank: credit %s: %w", addr.Hex(), err)
	}
	return t.state.PutTokenBalance(t.symbol, addr, next)
}
