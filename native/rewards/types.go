package rewards

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	nativecommon "stakeledger/native/common"
)

// Scale is the fixed-point base of the reward-per-share accumulator (2^128).
var Scale = new(uint256.Int).Lsh(uint256.NewInt(1), 128)

// ZeroSharePolicy decides what happens to revenue deposited while no shares
// exist.
type ZeroSharePolicy uint8

const (
	// PolicyEscrow holds the revenue as undistributed and credits it to the
	// accumulator once shares are minted.
	PolicyEscrow ZeroSharePolicy = iota
	// PolicyReject refuses the deposit with ErrNoShares.
	PolicyReject
)

func (p ZeroSharePolicy) String() string {
	switch p {
	case PolicyReject:
		return "reject"
	default:
		return "escrow"
	}
}

// ParseZeroSharePolicy maps a configuration string onto a policy. The empty
// string selects escrow.
func ParseZeroSharePolicy(raw string) (ZeroSharePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "escrow":
		return PolicyEscrow, nil
	case "reject":
		return PolicyReject, nil
	default:
		return PolicyEscrow, fmt.Errorf("rewards: unknown zero share policy %q", raw)
	}
}

// Global captures the ledger-wide accounting.
type Global struct {
	TotalShares *uint256.Int
	// Accumulator is the reward per share ever distributed, scaled by Scale.
	Accumulator *uint256.Int
	// RewardBalance is the reward asset the ledger owes or escrows.
	RewardBalance *uint256.Int
	// Undistributed is revenue received while TotalShares was zero.
	Undistributed *uint256.Int
	// ScaledDust is the scaled remainder carried into the next distribution.
	ScaledDust *uint256.Int

	TotalDeposited *uint256.Int
	TotalClaimed   *uint256.Int
	Holders        uint64
}

// Copy returns a deep copy of the global record.
func (g *Global) Copy() *Global {
	if g == nil {
		return nil
	}
	return &Global{
		TotalShares:    nativecommon.Clone(g.TotalShares),
		Accumulator:    nativecommon.Clone(g.Accumulator),
		RewardBalance:  nativecommon.Clone(g.RewardBalance),
		Undistributed:  nativecommon.Clone(g.Undistributed),
		ScaledDust:     nativecommon.Clone(g.ScaledDust),
		TotalDeposited: nativecommon.Clone(g.TotalDeposited),
		TotalClaimed:   nativecommon.Clone(g.TotalClaimed),
		Holders:        g.Holders,
	}
}

func (g *Global) ensureDefaults() {
	for _, field := range []**uint256.Int{&g.TotalShares, &g.Accumulator, &g.RewardBalance, &g.Undistributed, &g.ScaledDust, &g.TotalDeposited, &g.TotalClaimed} {
		if *field == nil {
			*field = new(uint256.Int)
		}
	}
}

// Account is a holder's reward position. Correction is signed.
type Account struct {
	Address    ethcommon.Address
	Shares     *uint256.Int
	Correction *big.Int
	Withdrawn  *uint256.Int
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	if a == nil {
		return nil
	}
	out := &Account{
		Address:   a.Address,
		Shares:    nativecommon.Clone(a.Shares),
		Withdrawn: nativecommon.Clone(a.Withdrawn),
	}
	if a.Correction != nil {
		out.Correction = new(big.Int).Set(a.Correction)
	} else {
		out.Correction = new(big.Int)
	}
	return out
}

func (a *Account) ensureDefaults() {
	if a.Shares == nil {
		a.Shares = new(uint256.Int)
	}
	if a.Correction == nil {
		a.Correction = new(big.Int)
	}
	if a.Withdrawn == nil {
		a.Withdrawn = new(uint256.Int)
	}
}

// ClaimResult reports a single payout.
type ClaimResult struct {
	Address ethcommon.Address
	Amount  *uint256.Int
}

// MassClaimFailure records an account that could not be paid.
type MassClaimFailure struct {
	Address ethcommon.Address
	Err     error
}

// MassClaimResult aggregates a batch payout.
type MassClaimResult struct {
	Payouts  []ClaimResult
	Failures []MassClaimFailure
	Total    *uint256.Int
}

// Err joins every per-account failure, or returns nil.
func (r *MassClaimResult) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, failure := range r.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", failure.Address.Hex(), failure.Err))
	}
	return errors.Join(errs...)
}

// AuditReport is the outcome of recomputing the ledger invariants over every
// known account. Surplus is RewardBalance minus everything owed or escrowed.
type AuditReport struct {
	Accounts        uint64
	TotalShares     *uint256.Int
	SumShares       *uint256.Int
	RewardBalance   *uint256.Int
	SumWithdrawable *uint256.Int
	Undistributed   *uint256.Int
	VaultBalance    *uint256.Int
	Surplus         *uint256.Int
	SharesConserved bool
	Solvent         bool
	VaultCoversOwed bool
}

// Healthy reports whether every audited invariant holds.
func (r *AuditReport) Healthy() bool {
	return r != nil && r.SharesConserved && r.Solvent && r.VaultCoversOwed
}
