package redeem

import (
	"errors"
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"stakeledger/core/events"
	"stakeledger/native/bank"
	nativecommon "stakeledger/native/common"
)

var (
	ErrNotInitialised = errors.New("redeem: engine not initialised")
	// ErrZeroAmount rejects an empty redemption.
	ErrZeroAmount = nativecommon.CallerError("redeem: amount must be positive")
	// ErrExceedsSupply rejects a quote for more than the circulating supply.
	ErrExceedsSupply = nativecommon.CallerError("redeem: amount exceeds supply")
	// ErrNothingToRedeem is returned when every pro-rata share rounds to zero.
	ErrNothingToRedeem = nativecommon.CallerError("redeem: reserve share rounds to zero")
	// ErrTransferFailed wraps a failed payout. The burn was reversed.
	ErrTransferFailed = nativecommon.CollaboratorError("redeem: payout transfer failed")
)

// BurnableAsset is the token redeemed against the reserve.
type BurnableAsset interface {
	bank.Asset
	TotalSupply() (*uint256.Int, error)
	Mint(to ethcommon.Address, amount *uint256.Int) error
	Burn(from ethcommon.Address, amount *uint256.Int) error
}

// Redeemer burns a holder's tokens and pays out the same fraction of the
// supply from each reserve asset.
type Redeemer struct {
	reserve ethcommon.Address
	token   BurnableAsset
	assets  []bank.Asset
	emitter events.Emitter
	pauses  nativecommon.PauseView
	guard   nativecommon.ReentrancyGuard
}

// NewRedeemer constructs a redeemer paying assets out of reserve.
func NewRedeemer(reserve ethcommon.Address, token BurnableAsset, assets ...bank.Asset) (*Redeemer, error) {
	if token == nil || len(assets) == 0 {
		return nil, ErrNotInitialised
	}
	seen := make(map[string]struct{}, len(assets))
	for _, asset := range assets {
		if asset == nil {
			return nil, ErrNotInitialised
		}
		symbol := asset.Symbol()
		if symbol == token.Symbol() {
			return nil, fmt.Errorf("redeem: reserve asset %s is the redeemed token", symbol)
		}
		if _, dup := seen[symbol]; dup {
			return nil, fmt.Errorf("redeem: duplicate reserve asset %s", symbol)
		}
		seen[symbol] = struct{}{}
	}
	return &Redeemer{
		reserve: reserve,
		token:   token,
		assets:  append([]bank.Asset(nil), assets...),
		emitter: events.NoopEmitter{},
	}, nil
}

// SetEmitter configures the event emitter used by the redeemer.
func (r *Redeemer) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// SetPauses wires the pause view consulted before redemptions.
func (r *Redeemer) SetPauses(p nativecommon.PauseView) { r.pauses = p }

// Reserve returns the paying address.
func (r *Redeemer) Reserve() ethcommon.Address { return r.reserve }

func (r *Redeemer) ready() error {
	if r == nil || r.token == nil || len(r.assets) == 0 {
		return ErrNotInitialised
	}
	return nil
}

// Quote prices a redemption of amount against the current reserve and supply.
func (r *Redeemer) Quote(amount *uint256.Int) (*Quote, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if nativecommon.IsZero(amount) {
		return nil, ErrZeroAmount
	}
	return r.quote(amount)
}

func (r *Redeemer) quote(amount *uint256.Int) (*Quote, error) {
	supply, err := r.token.TotalSupply()
	if err != nil {
		return nil, err
	}
	if amount.Gt(supply) {
		return nil, fmt.Errorf("%w: %s of %s", ErrExceedsSupply, amount, supply)
	}
	q := &Quote{Amount: nativecommon.Clone(amount), Supply: supply, Payouts: make([]Payout, 0, len(r.assets))}
	for _, asset := range r.assets {
		held, err := asset.BalanceOf(r.reserve)
		if err != nil {
			return nil, err
		}
		share, err := nativecommon.MulDiv(held, amount, supply)
		if err != nil {
			return nil, err
		}
		q.Payouts = append(q.Payouts, Payout{Symbol: asset.Symbol(), Held: held, Amount: share, Received: new(uint256.Int)})
	}
	return q, nil
}

// Redeem burns amount of the holder's tokens and transfers the matching
// fraction of every reserve asset to the holder. Either the burn and every
// payout happen or none does.
func (r *Redeemer) Redeem(holder ethcommon.Address, amount *uint256.Int) (*Receipt, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if nativecommon.IsZero(amount) {
		return nil, ErrZeroAmount
	}
	if err := nativecommon.Guard(r.pauses, nativecommon.ModuleRedemption); err != nil {
		return nil, err
	}
	release, err := r.guard.Enter()
	if err != nil {
		return nil, err
	}
	defer release()

	balance, err := r.token.BalanceOf(holder)
	if err != nil {
		return nil, err
	}
	if balance.Lt(amount) {
		return nil, fmt.Errorf("%w: %s holds %s %s, redeems %s", bank.ErrInsufficientBalance, holder.Hex(), balance, r.token.Symbol(), amount)
	}
	q, err := r.quote(amount)
	if err != nil {
		return nil, err
	}
	if q.empty() {
		return nil, ErrNothingToRedeem
	}
	if err := r.token.Burn(holder, amount); err != nil {
		return nil, fmt.Errorf("redeem: burn: %w", err)
	}
	for i := range q.Payouts {
		p := &q.Payouts[i]
		if p.Amount.IsZero() {
			continue
		}
		asset := r.assets[i]
		before, err := asset.BalanceOf(holder)
		if err != nil {
			return nil, r.unwind(holder, q, i, err)
		}
		if err := asset.Transfer(r.reserve, holder, p.Amount); err != nil {
			return nil, r.unwind(holder, q, i, fmt.Errorf("%w: %s: %v", ErrTransferFailed, p.Symbol, err))
		}
		after, err := asset.BalanceOf(holder)
		if err != nil {
			p.Received = nativecommon.Clone(p.Amount)
			return nil, r.unwind(holder, q, i+1, err)
		}
		if after.Gt(before) {
			p.Received = new(uint256.Int).Sub(after, before)
		}
	}
	receipt := &Receipt{Holder: holder, Burned: q.Amount, SupplyBefore: q.Supply, Payouts: q.Payouts}
	r.emitter.Emit(redeemedEvent(receipt, r.reserve))
	return receipt, nil
}

// unwind returns the first n payouts to the reserve and re-mints the burned
// tokens after a failed payout.
func (r *Redeemer) unwind(holder ethcommon.Address, q *Quote, n int, cause error) error {
	errs := []error{cause}
	for i := 0; i < n; i++ {
		p := q.Payouts[i]
		if nativecommon.IsZero(p.Received) {
			continue
		}
		if err := r.assets[i].Transfer(holder, r.reserve, p.Received); err != nil {
			errs = append(errs, fmt.Errorf("redeem: return %s: %w", p.Symbol, err))
		}
	}
	if err := r.token.Mint(holder, q.Amount); err != nil {
		errs = append(errs, fmt.Errorf("redeem: restore burn: %w", err))
	}
	return errors.Join(errs...)
}
