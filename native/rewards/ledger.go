package rewards

import (
	"errors"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"stakeledger/core/events"
	"stakeledger/native/bank"
	nativecommon "stakeledger/native/common"
)

var (
	ErrNotInitialised = errors.New("rewards: engine not initialised")
	// ErrZeroAmount is returned for zero-valued deposits.
	ErrZeroAmount = nativecommon.CallerError("rewards: amount must be positive")
	// ErrInsufficientShares is returned when a negative delta exceeds the
	// account's shares.
	ErrInsufficientShares = nativecommon.CallerError("rewards: insufficient shares")
	// ErrNoShares is returned under PolicyReject when revenue arrives while
	// no shares exist.
	ErrNoShares = nativecommon.CallerError("rewards: no shares outstanding")
	// ErrInsufficientRewardBalance signals a payout larger than the tracked
	// reward balance. It is never truncated.
	ErrInsufficientRewardBalance = nativecommon.SolvencyError("rewards: insufficient reward balance")
	// ErrTransferFailed wraps a failed payout transfer; bookkeeping is rolled
	// back.
	ErrTransferFailed = nativecommon.CollaboratorError("rewards: transfer failed")
)

type ledgerState interface {
	RewardsGlobal() (*Global, error)
	PutRewardsGlobal(*Global) error
	RewardsAccount(addr ethcommon.Address) (*Account, bool, error)
	PutRewardsAccount(*Account) error
	IterateRewardsAccounts(fn func(*Account) error) error
}

// Ledger distributes reward-asset revenue pro rata to share holders. Shares
// are mirrored from the staking pool through RegisterSharesDelta.
type Ledger struct {
	state   ledgerState
	vault   ethcommon.Address
	asset   bank.Asset
	policy  ZeroSharePolicy
	emitter events.Emitter
	pauses  nativecommon.PauseView
	guard   nativecommon.ReentrancyGuard
}

// NewLedger constructs a ledger holding asset at vault.
func NewLedger(vault ethcommon.Address, asset bank.Asset) *Ledger {
	return &Ledger{
		vault:   vault,
		asset:   asset,
		policy:  PolicyEscrow,
		emitter: events.NoopEmitter{},
	}
}

// SetState configures the persistence backend used by the ledger.
func (l *Ledger) SetState(state ledgerState) { l.state = state }

// SetEmitter configures the event emitter used by the ledger.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

// SetPauses wires the pause view consulted before claims and deposits.
func (l *Ledger) SetPauses(p nativecommon.PauseView) { l.pauses = p }

// SetZeroSharePolicy selects the handling of revenue arriving with no shares.
func (l *Ledger) SetZeroSharePolicy(policy ZeroSharePolicy) { l.policy = policy }

// Vault returns the address holding the reward asset.
func (l *Ledger) Vault() ethcommon.Address { return l.vault }

// Asset returns the reward asset.
func (l *Ledger) Asset() bank.Asset { return l.asset }

func (l *Ledger) ready() error {
	if l == nil || l.state == nil || l.asset == nil {
		return ErrNotInitialised
	}
	return nil
}

func (l *Ledger) loadGlobal() (*Global, error) {
	global, err := l.state.RewardsGlobal()
	if err != nil {
		return nil, err
	}
	if global == nil {
		global = &Global{}
	}
	global = global.Copy()
	global.ensureDefaults()
	return global, nil
}

func (l *Ledger) loadAccount(addr ethcommon.Address) (*Account, error) {
	account, ok, err := l.state.RewardsAccount(addr)
	if err != nil {
		return nil, err
	}
	if !ok || account == nil {
		account = &Account{Address: addr}
	} else {
		account = account.Copy()
	}
	account.Address = addr
	account.ensureDefaults()
	return account, nil
}

// RegisterSharesDelta mirrors a share change for addr. The correction is
// settled against the accumulator before the change so past revenue stays
// with the previous holders.
func (l *Ledger) RegisterSharesDelta(addr ethcommon.Address, delta *big.Int) error {
	if err := l.ready(); err != nil {
		return err
	}
	if delta == nil || delta.Sign() == 0 {
		return nil
	}
	release, err := l.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	global, err := l.loadGlobal()
	if err != nil {
		return err
	}
	account, err := l.loadAccount(addr)
	if err != nil {
		return err
	}
	magnitude, err := nativecommon.FromBig(new(big.Int).Abs(delta))
	if err != nil {
		return fmt.Errorf("rewards: share delta: %w", err)
	}
	hadShares := !account.Shares.IsZero()
	bootstrapping := global.TotalShares.IsZero()

	account.Correction = adjustCorrection(account.Correction, delta, global.Accumulator)
	if delta.Sign() > 0 {
		if account.Shares, err = nativecommon.Add(account.Shares, magnitude); err != nil {
			return err
		}
		if global.TotalShares, err = nativecommon.Add(global.TotalShares, magnitude); err != nil {
			return err
		}
	} else {
		if account.Shares.Lt(magnitude) {
			return fmt.Errorf("%w: holds %s, removing %s", ErrInsufficientShares, account.Shares, magnitude)
		}
		if global.TotalShares.Lt(magnitude) {
			return fmt.Errorf("rewards: total shares %s below removal %s", global.TotalShares, magnitude)
		}
		account.Shares = new(uint256.Int).Sub(account.Shares, magnitude)
		global.TotalShares = new(uint256.Int).Sub(global.TotalShares, magnitude)
	}

	switch {
	case !hadShares && !account.Shares.IsZero():
		global.Holders++
	case hadShares && account.Shares.IsZero() && global.Holders > 0:
		global.Holders--
	}

	// Escrowed revenue goes to the holders of the first shares minted.
	if bootstrapping && !global.TotalShares.IsZero() && !global.Undistributed.IsZero() {
		acc, dust, err := distribute(global.Accumulator, global.ScaledDust, global.Undistributed, global.TotalShares)
		if err != nil {
			return err
		}
		global.Accumulator = acc
		global.ScaledDust = dust
		global.Undistributed = new(uint256.Int)
	}

	if err := l.state.PutRewardsAccount(account); err != nil {
		return err
	}
	return l.state.PutRewardsGlobal(global)
}

// DepositRevenue pulls amount of the reward asset from `from` and distributes
// the amount actually received across all shares.
func (l *Ledger) DepositRevenue(from ethcommon.Address, amount *uint256.Int) (*uint256.Int, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(l.pauses, nativecommon.ModuleRewards); err != nil {
		return nil, err
	}
	if nativecommon.IsZero(amount) {
		return nil, ErrZeroAmount
	}
	release, err := l.guard.Enter()
	if err != nil {
		return nil, err
	}
	defer release()

	global, err := l.loadGlobal()
	if err != nil {
		return nil, err
	}
	if global.TotalShares.IsZero() && l.policy == PolicyReject {
		return nil, ErrNoShares
	}
	// Crediting less than amount cannot overflow where amount does not.
	if err := l.credit(global.Copy(), amount); err != nil {
		return nil, fmt.Errorf("rewards: credit %s: %w", amount, err)
	}
	received, err := l.pull(from, amount)
	if err != nil {
		return nil, err
	}
	if received.IsZero() {
		return received, nil
	}
	if err := l.credit(global, received); err != nil {
		return nil, l.refund(from, received, err)
	}
	if err := l.state.PutRewardsGlobal(global); err != nil {
		return nil, l.refund(from, received, err)
	}
	l.emitter.Emit(revenueDepositedEvent(from, received, global.TotalShares.IsZero(), global.Accumulator))
	return received, nil
}

// pull moves amount into the vault and returns the vault balance delta.
func (l *Ledger) pull(from ethcommon.Address, amount *uint256.Int) (*uint256.Int, error) {
	before, err := l.asset.BalanceOf(l.vault)
	if err != nil {
		return nil, err
	}
	if err := l.asset.Transfer(from, l.vault, amount); err != nil {
		return nil, fmt.Errorf("rewards: pull revenue: %w", err)
	}
	after, err := l.asset.BalanceOf(l.vault)
	if err != nil {
		return nil, err
	}
	if after.Lt(before) {
		return nil, fmt.Errorf("rewards: vault balance decreased during deposit")
	}
	return new(uint256.Int).Sub(after, before), nil
}

// refund returns revenue that was pulled but could not be booked.
func (l *Ledger) refund(to ethcommon.Address, amount *uint256.Int, cause error) error {
	if err := l.asset.Transfer(l.vault, to, amount); err != nil {
		return errors.Join(cause, fmt.Errorf("%w: refund %s: %v", ErrTransferFailed, amount, err))
	}
	return cause
}

func (l *Ledger) credit(global *Global, received *uint256.Int) error {
	var err error
	if global.RewardBalance, err = nativecommon.Add(global.RewardBalance, received); err != nil {
		return err
	}
	if global.TotalDeposited, err = nativecommon.Add(global.TotalDeposited, received); err != nil {
		return err
	}
	if global.TotalShares.IsZero() {
		global.Undistributed, err = nativecommon.Add(global.Undistributed, received)
		return err
	}
	acc, dust, err := distribute(global.Accumulator, global.ScaledDust, received, global.TotalShares)
	if err != nil {
		return err
	}
	global.Accumulator = acc
	global.ScaledDust = dust
	return nil
}

// Withdrawable returns the rewards addr can currently claim.
func (l *Ledger) Withdrawable(addr ethcommon.Address) (*uint256.Int, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	global, err := l.loadGlobal()
	if err != nil {
		return nil, err
	}
	account, err := l.loadAccount(addr)
	if err != nil {
		return nil, err
	}
	return withdrawableFor(account, global.Accumulator), nil
}

// Claim pays addr its withdrawable rewards. A zero withdrawable is a no-op.
func (l *Ledger) Claim(addr ethcommon.Address) (*uint256.Int, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(l.pauses, nativecommon.ModuleRewards); err != nil {
		return nil, err
	}
	release, err := l.guard.Enter()
	if err != nil {
		return nil, err
	}
	defer release()
	return l.claimLocked(addr)
}

func (l *Ledger) claimLocked(addr ethcommon.Address) (*uint256.Int, error) {
	global, err := l.loadGlobal()
	if err != nil {
		return nil, err
	}
	account, err := l.loadAccount(addr)
	if err != nil {
		return nil, err
	}
	amount := withdrawableFor(account, global.Accumulator)
	if amount.IsZero() {
		return amount, nil
	}
	if global.RewardBalance.Lt(amount) {
		return nil, fmt.Errorf("%w: owed %s, held %s", ErrInsufficientRewardBalance, amount, global.RewardBalance)
	}
	prevAccount := account.Copy()
	prevGlobal := global.Copy()

	if account.Withdrawn, err = nativecommon.Add(account.Withdrawn, amount); err != nil {
		return nil, err
	}
	global.RewardBalance = new(uint256.Int).Sub(global.RewardBalance, amount)
	if global.TotalClaimed, err = nativecommon.Add(global.TotalClaimed, amount); err != nil {
		return nil, err
	}
	if err := l.state.PutRewardsAccount(account); err != nil {
		return nil, err
	}
	if err := l.state.PutRewardsGlobal(global); err != nil {
		return nil, err
	}

	if err := l.asset.Transfer(l.vault, addr, amount); err != nil {
		if rbErr := l.state.PutRewardsAccount(prevAccount); rbErr != nil {
			return nil, errors.Join(fmt.Errorf("%w: %v", ErrTransferFailed, err), rbErr)
		}
		if rbErr := l.state.PutRewardsGlobal(prevGlobal); rbErr != nil {
			return nil, errors.Join(fmt.Errorf("%w: %v", ErrTransferFailed, err), rbErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	l.emitter.Emit(claimedEvent(addr, amount))
	return amount, nil
}

// RefundClaim pulls amount back from addr into the vault and books what
// arrived as unclaimed again. It reverses a claim whose enclosing operation
// failed and ignores pauses.
func (l *Ledger) RefundClaim(addr ethcommon.Address, amount *uint256.Int) error {
	if err := l.ready(); err != nil {
		return err
	}
	if nativecommon.IsZero(amount) {
		return nil
	}
	release, err := l.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	account, err := l.loadAccount(addr)
	if err != nil {
		return err
	}
	if account.Withdrawn.Lt(amount) {
		return fmt.Errorf("rewards: refund %s exceeds withdrawn %s", amount, account.Withdrawn)
	}
	received, err := l.pull(addr, amount)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	global, err := l.loadGlobal()
	if err != nil {
		return err
	}
	if received.Gt(amount) {
		received = nativecommon.Clone(amount)
	}
	account.Withdrawn = new(uint256.Int).Sub(account.Withdrawn, received)
	if global.RewardBalance, err = nativecommon.Add(global.RewardBalance, received); err != nil {
		return err
	}
	if global.TotalClaimed.Lt(received) {
		global.TotalClaimed = new(uint256.Int)
	} else {
		global.TotalClaimed = new(uint256.Int).Sub(global.TotalClaimed, received)
	}
	if err := l.state.PutRewardsAccount(account); err != nil {
		return err
	}
	if err := l.state.PutRewardsGlobal(global); err != nil {
		return err
	}
	l.emitter.Emit(claimRefundedEvent(addr, received))
	return nil
}

// MassClaim pays every listed account, or every known account when addrs is
// nil. Per-account failures are collected in the result; a solvency
// violation aborts the batch.
func (l *Ledger) MassClaim(addrs []ethcommon.Address) (*MassClaimResult, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(l.pauses, nativecommon.ModuleRewards); err != nil {
		return nil, err
	}
	release, err := l.guard.Enter()
	if err != nil {
		return nil, err
	}
	defer release()

	if addrs == nil {
		if addrs, err = l.knownAccounts(); err != nil {
			return nil, err
		}
	}
	result := &MassClaimResult{Total: new(uint256.Int)}
	seen := make(map[ethcommon.Address]struct{}, len(addrs))
	for _, addr := range addrs {
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		amount, err := l.claimLocked(addr)
		if err != nil {
			if errors.Is(err, nativecommon.ErrSolvency) {
				return result, err
			}
			result.Failures = append(result.Failures, MassClaimFailure{Address: addr, Err: err})
			continue
		}
		if amount.IsZero() {
			continue
		}
		result.Payouts = append(result.Payouts, ClaimResult{Address: addr, Amount: amount})
		result.Total.Add(result.Total, amount)
	}
	l.emitter.Emit(massClaimEvent(result))
	return result, nil
}

func (l *Ledger) knownAccounts() ([]ethcommon.Address, error) {
	addrs := make([]ethcommon.Address, 0)
	err := l.state.IterateRewardsAccounts(func(account *Account) error {
		addrs = append(addrs, account.Address)
		return nil
	})
	return addrs, err
}

// Account returns addr's reward position; unknown accounts are all zero.
func (l *Ledger) Account(addr ethcommon.Address) (*Account, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	return l.loadAccount(addr)
}

// Snapshot returns a copy of the global record.
func (l *Ledger) Snapshot() (*Global, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	return l.loadGlobal()
}

// HolderCount returns the number of accounts with nonzero shares.
func (l *Ledger) HolderCount() (uint64, error) {
	global, err := l.Snapshot()
	if err != nil {
		return 0, err
	}
	return global.Holders, nil
}

// TotalShares returns the mirrored share supply.
func (l *Ledger) TotalShares() (*uint256.Int, error) {
	global, err := l.Snapshot()
	if err != nil {
		return nil, err
	}
	return global.TotalShares, nil
}

// Audit recomputes the ledger invariants over every known account.
func (l *Ledger) Audit() (*AuditReport, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	global, err := l.loadGlobal()
	if err != nil {
		return nil, err
	}
	report := &AuditReport{
		TotalShares:     global.TotalShares,
		SumShares:       new(uint256.Int),
		RewardBalance:   global.RewardBalance,
		SumWithdrawable: new(uint256.Int),
		Undistributed:   global.Undistributed,
		Surplus:         new(uint256.Int),
	}
	err = l.state.IterateRewardsAccounts(func(account *Account) error {
		account = account.Copy()
		account.ensureDefaults()
		report.Accounts++
		report.SumShares.Add(report.SumShares, account.Shares)
		report.SumWithdrawable.Add(report.SumWithdrawable, withdrawableFor(account, global.Accumulator))
		return nil
	})
	if err != nil {
		return nil, err
	}
	owed := new(uint256.Int).Add(report.SumWithdrawable, global.Undistributed)
	report.SharesConserved = report.SumShares.Eq(global.TotalShares)
	report.Solvent = !global.RewardBalance.Lt(owed)
	if report.Solvent {
		report.Surplus.Sub(global.RewardBalance, owed)
	}
	if report.VaultBalance, err = l.asset.BalanceOf(l.vault); err != nil {
		return nil, err
	}
	report.VaultCoversOwed = !report.VaultBalance.Lt(global.RewardBalance)
	return report, nil
}
