package staking

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"stakeledger/core/events"
	"stakeledger/native/bank"
	nativecommon "stakeledger/native/common"
)

var (
	ErrNotInitialised = errors.New("staking: engine not initialised")
	// ErrZeroAmount is returned for zero deposits, withdrawals and reinvestments.
	ErrZeroAmount = nativecommon.CallerError("staking: amount must be positive")
	// ErrInsufficientShares is returned when burning more shares than held.
	ErrInsufficientShares = nativecommon.CallerError("staking: insufficient shares")
	// ErrZeroShareMint is returned when a deposit is too small to mint a share.
	ErrZeroShareMint = nativecommon.CallerError("staking: deposit mints zero shares")
	// ErrTransferFailed wraps a failed principal payout; the position is restored.
	ErrTransferFailed = nativecommon.CollaboratorError("staking: transfer failed")
)

// valuePerShareScale is the fixed-point base reported by ValuePerShare.
var valuePerShareScale = uint256.NewInt(1_000_000_000_000_000_000)

// ShareLedger is the reward ledger that mirrors pool shares.
type ShareLedger interface {
	RegisterSharesDelta(addr ethcommon.Address, delta *big.Int) error
	Claim(addr ethcommon.Address) (*uint256.Int, error)
	// RefundClaim reverses a claim paid within a withdrawal that then failed.
	RefundClaim(addr ethcommon.Address, amount *uint256.Int) error
}

type poolState interface {
	StakingGlobal() (*Global, error)
	PutStakingGlobal(*Global) error
	StakingAccount(addr ethcommon.Address) (*Account, bool, error)
	PutStakingAccount(*Account) error
}

// Pool holds principal at vault and issues shares proportional to the
// principal contributed.
type Pool struct {
	state   poolState
	vault   ethcommon.Address
	asset   bank.Asset
	ledger  ShareLedger
	emitter events.Emitter
	pauses  nativecommon.PauseView
	guard   nativecommon.ReentrancyGuard
	nowFn   func() time.Time
}

// NewPool constructs a pool holding asset at vault and mirroring shares into
// ledger.
func NewPool(vault ethcommon.Address, asset bank.Asset, ledger ShareLedger) *Pool {
	return &Pool{
		vault:   vault,
		asset:   asset,
		ledger:  ledger,
		emitter: events.NoopEmitter{},
		nowFn:   time.Now,
	}
}

// SetState configures the persistence backend used by the pool.
func (p *Pool) SetState(state poolState) { p.state = state }

// SetEmitter configures the event emitter used by the pool.
func (p *Pool) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		p.emitter = events.NoopEmitter{}
		return
	}
	p.emitter = emitter
}

// SetPauses wires the pause view consulted before deposits and withdrawals.
func (p *Pool) SetPauses(pauses nativecommon.PauseView) { p.pauses = pauses }

// SetNowFunc overrides the clock used for deposit timestamps.
func (p *Pool) SetNowFunc(now func() time.Time) {
	if now == nil {
		p.nowFn = time.Now
		return
	}
	p.nowFn = now
}

// Vault returns the principal holding address.
func (p *Pool) Vault() ethcommon.Address { return p.vault }

// Asset returns the principal asset.
func (p *Pool) Asset() bank.Asset { return p.asset }

func (p *Pool) ready() error {
	if p == nil || p.state == nil || p.asset == nil || p.ledger == nil {
		return ErrNotInitialised
	}
	return nil
}

func (p *Pool) loadGlobal() (*Global, error) {
	global, err := p.state.StakingGlobal()
	if err != nil {
		return nil, err
	}
	if global == nil {
		global = &Global{}
	}
	global = global.Copy()
	for _, field := range []**uint256.Int{&global.TotalShares, &global.TotalPrincipal, &global.TotalReinvested, &global.TotalDeposited, &global.TotalWithdrawn} {
		if *field == nil {
			*field = new(uint256.Int)
		}
	}
	return global, nil
}

func (p *Pool) loadAccount(addr ethcommon.Address) (*Account, error) {
	account, ok, err := p.state.StakingAccount(addr)
	if err != nil {
		return nil, err
	}
	if !ok || account == nil {
		account = &Account{}
	} else {
		account = account.Copy()
	}
	account.Address = addr
	for _, field := range []**uint256.Int{&account.Shares, &account.Deposited, &account.Withdrawn} {
		if *field == nil {
			*field = new(uint256.Int)
		}
	}
	return account, nil
}

func sharesFor(received *uint256.Int, global *Global) (*uint256.Int, error) {
	if global.TotalShares.IsZero() {
		return nativecommon.Clone(received), nil
	}
	if global.TotalPrincipal.IsZero() {
		return nil, fmt.Errorf("staking: %s shares outstanding with no principal", global.TotalShares)
	}
	return nativecommon.MulDiv(received, global.TotalShares, global.TotalPrincipal)
}

// Deposit pulls amount of principal from addr and mints shares for the
// amount actually received.
func (p *Pool) Deposit(addr ethcommon.Address, amount *uint256.Int) (*DepositReceipt, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(p.pauses, nativecommon.ModuleStaking); err != nil {
		return nil, err
	}
	if nativecommon.IsZero(amount) {
		return nil, ErrZeroAmount
	}
	release, err := p.guard.Enter()
	if err != nil {
		return nil, err
	}
	defer release()

	global, err := p.loadGlobal()
	if err != nil {
		return nil, err
	}
	if preview, err := sharesFor(amount, global); err != nil {
		return nil, err
	} else if preview.IsZero() {
		return nil, ErrZeroShareMint
	}
	account, err := p.loadAccount(addr)
	if err != nil {
		return nil, err
	}

	received, err := p.pull(addr, amount)
	if err != nil {
		return nil, err
	}
	if received.IsZero() {
		return nil, ErrZeroShareMint
	}
	minted, err := sharesFor(received, global)
	if err != nil {
		return nil, p.refund(addr, received, err)
	}
	if minted.IsZero() {
		return nil, p.refund(addr, received, ErrZeroShareMint)
	}
	if err := p.ledger.RegisterSharesDelta(addr, minted.ToBig()); err != nil {
		return nil, p.refund(addr, received, fmt.Errorf("staking: register shares: %w", err))
	}

	account.Shares = new(uint256.Int).Add(account.Shares, minted)
	account.Deposited = new(uint256.Int).Add(account.Deposited, received)
	account.LastDeposit = p.nowFn().Unix()
	global.TotalShares = new(uint256.Int).Add(global.TotalShares, minted)
	global.TotalPrincipal = new(uint256.Int).Add(global.TotalPrincipal, received)
	global.TotalDeposited = new(uint256.Int).Add(global.TotalDeposited, received)
	if err := p.state.PutStakingAccount(account); err != nil {
		return nil, err
	}
	if err := p.state.PutStakingGlobal(global); err != nil {
		return nil, err
	}
	receipt := &DepositReceipt{
		Address:        addr,
		Requested:      nativecommon.Clone(amount),
		Received:       received,
		SharesMinted:   minted,
		TotalShares:    nativecommon.Clone(global.TotalShares),
		TotalPrincipal: nativecommon.Clone(global.TotalPrincipal),
	}
	p.emitter.Emit(depositedEvent(receipt))
	return receipt, nil
}

func (p *Pool) pull(from ethcommon.Address, amount *uint256.Int) (*uint256.Int, error) {
	before, err := p.asset.BalanceOf(p.vault)
	if err != nil {
		return nil, err
	}
	if err := p.asset.Transfer(from, p.vault, amount); err != nil {
		return nil, fmt.Errorf("staking: pull principal: %w", err)
	}
	after, err := p.asset.BalanceOf(p.vault)
	if err != nil {
		return nil, err
	}
	if after.Lt(before) {
		return nil, fmt.Errorf("staking: vault balance decreased during deposit")
	}
	return new(uint256.Int).Sub(after, before), nil
}

func (p *Pool) refund(to ethcommon.Address, amount *uint256.Int, cause error) error {
	if err := p.asset.Transfer(p.vault, to, amount); err != nil {
		return errors.Join(cause, fmt.Errorf("%w: refund %s: %v", ErrTransferFailed, amount, err))
	}
	return cause
}

// Withdraw burns shares and returns their principal value. With alsoClaim
// the holder's rewards are claimed in the same call: either both payouts
// happen or neither does.
func (p *Pool) Withdraw(addr ethcommon.Address, shares *uint256.Int, alsoClaim bool) (*WithdrawReceipt, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(p.pauses, nativecommon.ModuleStaking); err != nil {
		return nil, err
	}
	release, err := p.guard.Enter()
	if err != nil {
		return nil, err
	}
	defer release()
	return p.withdrawLocked(addr, shares, alsoClaim)
}

// WithdrawAll burns every share addr holds.
func (p *Pool) WithdrawAll(addr ethcommon.Address, alsoClaim bool) (*WithdrawReceipt, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(p.pauses, nativecommon.ModuleStaking); err != nil {
		return nil, err
	}
	release, err := p.guard.Enter()
	if err != nil {
		return nil, err
	}
	defer release()
	account, err := p.loadAccount(addr)
	if err != nil {
		return nil, err
	}
	return p.withdrawLocked(addr, account.Shares, alsoClaim)
}

func (p *Pool) withdrawLocked(addr ethcommon.Address, shares *uint256.Int, alsoClaim bool) (*WithdrawReceipt, error) {
	if nativecommon.IsZero(shares) {
		return nil, ErrZeroAmount
	}
	global, err := p.loadGlobal()
	if err != nil {
		return nil, err
	}
	account, err := p.loadAccount(addr)
	if err != nil {
		return nil, err
	}
	if account.Shares.Lt(shares) {
		return nil, fmt.Errorf("%w: holds %s, burning %s", ErrInsufficientShares, account.Shares, shares)
	}
	owed, err := nativecommon.MulDiv(shares, global.TotalPrincipal, global.TotalShares)
	if err != nil {
		return nil, err
	}
	prevAccount := account.Copy()
	prevGlobal := global.Copy()

	// The claim settles first so a rejected claim leaves the position intact.
	var claimed *uint256.Int
	if alsoClaim {
		if claimed, err = p.ledger.Claim(addr); err != nil {
			return nil, fmt.Errorf("staking: claim: %w", err)
		}
	}
	fail := func(cause error) error {
		if nativecommon.IsZero(claimed) {
			return cause
		}
		if err := p.ledger.RefundClaim(addr, claimed); err != nil {
			return errors.Join(cause, fmt.Errorf("staking: refund claim: %w", err))
		}
		return cause
	}

	if err := p.ledger.RegisterSharesDelta(addr, new(big.Int).Neg(shares.ToBig())); err != nil {
		return nil, fail(fmt.Errorf("staking: register shares: %w", err))
	}
	account.Shares = new(uint256.Int).Sub(account.Shares, shares)
	account.Withdrawn = new(uint256.Int).Add(account.Withdrawn, owed)
	global.TotalShares = new(uint256.Int).Sub(global.TotalShares, shares)
	global.TotalPrincipal = new(uint256.Int).Sub(global.TotalPrincipal, owed)
	global.TotalWithdrawn = new(uint256.Int).Add(global.TotalWithdrawn, owed)
	if err := p.state.PutStakingAccount(account); err != nil {
		return nil, fail(p.restore(prevAccount, prevGlobal, shares, err))
	}
	if err := p.state.PutStakingGlobal(global); err != nil {
		return nil, fail(p.restore(prevAccount, prevGlobal, shares, err))
	}

	if !owed.IsZero() {
		if err := p.asset.Transfer(p.vault, addr, owed); err != nil {
			return nil, fail(p.restore(prevAccount, prevGlobal, shares, fmt.Errorf("%w: %v", ErrTransferFailed, err)))
		}
	}
	receipt := &WithdrawReceipt{
		Address:        addr,
		SharesBurned:   nativecommon.Clone(shares),
		Principal:      owed,
		Claimed:        claimed,
		TotalShares:    nativecommon.Clone(global.TotalShares),
		TotalPrincipal: nativecommon.Clone(global.TotalPrincipal),
	}
	p.emitter.Emit(withdrawnEvent(receipt))
	return receipt, nil
}

// restore reinstates the position after a failed withdrawal.
func (p *Pool) restore(account *Account, global *Global, shares *uint256.Int, cause error) error {
	var errs []error
	if err := p.ledger.RegisterSharesDelta(account.Address, shares.ToBig()); err != nil {
		errs = append(errs, err)
	}
	if err := p.state.PutStakingAccount(account); err != nil {
		errs = append(errs, err)
	}
	if err := p.state.PutStakingGlobal(global); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{cause}, errs...)...)
	}
	return cause
}

// Reinvest pulls amount of principal from `from` and adds the received
// amount to the pool without minting shares, raising every share's value.
func (p *Pool) Reinvest(from ethcommon.Address, amount *uint256.Int) (*uint256.Int, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	if nativecommon.IsZero(amount) {
		return nil, ErrZeroAmount
	}
	release, err := p.guard.Enter()
	if err != nil {
		return nil, err
	}
	defer release()

	global, err := p.loadGlobal()
	if err != nil {
		return nil, err
	}
	received, err := p.pull(from, amount)
	if err != nil {
		return nil, err
	}
	if received.IsZero() {
		return received, nil
	}
	if global.TotalPrincipal, err = nativecommon.Add(global.TotalPrincipal, received); err != nil {
		return nil, err
	}
	global.TotalReinvested = new(uint256.Int).Add(global.TotalReinvested, received)
	if err := p.state.PutStakingGlobal(global); err != nil {
		return nil, err
	}
	p.emitter.Emit(reinvestedEvent(from, received, global.TotalPrincipal))
	return received, nil
}

// Account returns addr's position; unknown accounts are all zero.
func (p *Pool) Account(addr ethcommon.Address) (*Account, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	return p.loadAccount(addr)
}

// Snapshot returns a copy of the pool totals.
func (p *Pool) Snapshot() (*Global, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	return p.loadGlobal()
}

// BalanceOf returns the principal addr's shares currently redeem for.
func (p *Pool) BalanceOf(addr ethcommon.Address) (*uint256.Int, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	global, err := p.loadGlobal()
	if err != nil {
		return nil, err
	}
	account, err := p.loadAccount(addr)
	if err != nil {
		return nil, err
	}
	if global.TotalShares.IsZero() {
		return new(uint256.Int), nil
	}
	return nativecommon.MulDiv(account.Shares, global.TotalPrincipal, global.TotalShares)
}

// ValuePerShare returns principal per share scaled by 1e18.
func (p *Pool) ValuePerShare() (*uint256.Int, error) {
	global, err := p.Snapshot()
	if err != nil {
		return nil, err
	}
	if global.TotalShares.IsZero() {
		return nativecommon.Clone(valuePerShareScale), nil
	}
	return nativecommon.MulDiv(global.TotalPrincipal, valuePerShareScale, global.TotalShares)
}
