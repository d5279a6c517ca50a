package stakingd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	nativecommon "stakeledger/native/common"
	"stakeledger/native/collector"
	"stakeledger/native/emission"
	"stakeledger/native/redeem"
	"stakeledger/native/rewards"
	"stakeledger/native/staking"
	"stakeledger/observability"
	telemetry "stakeledger/observability/otel"
)

var (
	ErrUnknownCollector   = nativecommon.CallerError("stakingd: unknown collector")
	ErrUnknownModule      = nativecommon.CallerError("stakingd: unknown module")
	ErrEmissionDisabled   = nativecommon.CallerError("stakingd: emission disabled")
	ErrRedemptionDisabled = nativecommon.CallerError("stakingd: redemption disabled")
	ErrZeroAmount         = nativecommon.CallerError("stakingd: amount must be positive")
)

type requestIDKey struct{}

// WithRequestID tags ctx so journal entries can be correlated with requests.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Service runs System operations with tracing, metrics, journaling and
// logging around each call.
type Service struct {
	sys     *System
	journal *Journal
	metrics *observability.LedgerMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewService wraps sys. A nil journal disables journaling; nil metrics and
// logger fall back to the process defaults.
func NewService(sys *System, journal *Journal, metrics *observability.LedgerMetrics, logger *slog.Logger) *Service {
	if metrics == nil {
		metrics = observability.Rewards()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sys:     sys,
		journal: journal,
		metrics: metrics,
		tracer:  telemetry.Tracer("stakeledger/services/stakingd"),
		logger:  logger.With("component", "service"),
	}
}

// System returns the wrapped engines.
func (s *Service) System() *System { return s.sys }

func (s *Service) run(ctx context.Context, op string, attrs []attribute.KeyValue, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "stakingd."+op, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	s.sys.mu.Lock()
	s.sys.syncHeight()
	err := fn(ctx)
	s.refreshGauges()
	s.sys.mu.Unlock()
	s.metrics.Observe(op, time.Since(start), err)

	args := []any{"operation", op}
	for _, attr := range attrs {
		args = append(args, string(attr.Key), attr.Value.Emit())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		class := nativecommon.Classify(err)
		args = append(args, "class", string(class), "error", err.Error())
		if class == nativecommon.ClassSolvency || class == nativecommon.ClassInternal {
			s.logger.Error("operation failed", args...)
		} else {
			s.logger.Warn("operation rejected", args...)
		}
		return err
	}
	s.logger.Info("operation completed", args...)
	return nil
}

// refreshGauges runs with the system lock held.
func (s *Service) refreshGauges() {
	global, err := s.sys.ledger.Snapshot()
	if err != nil {
		return
	}
	pool, err := s.sys.pool.Snapshot()
	if err != nil {
		return
	}
	s.metrics.SetLedgerTotals(global.RewardBalance, global.Undistributed, global.TotalShares, pool.TotalPrincipal)
}

func (s *Service) record(ctx context.Context, entry Entry) {
	if s.journal == nil {
		return
	}
	entry.RequestID = requestID(ctx)
	if _, err := s.journal.Record(ctx, entry); err != nil {
		s.logger.Error("journal write failed", "kind", entry.Kind, "error", err.Error())
	}
}

func accountAttr(addr ethcommon.Address) attribute.KeyValue {
	return attribute.String("account", addr.Hex())
}

// Deposit stakes amount of the principal asset for addr.
func (s *Service) Deposit(ctx context.Context, addr ethcommon.Address, amount *uint256.Int) (*staking.DepositReceipt, error) {
	var receipt *staking.DepositReceipt
	err := s.run(ctx, "deposit", []attribute.KeyValue{accountAttr(addr)}, func(ctx context.Context) error {
		var err error
		if receipt, err = s.sys.pool.Deposit(addr, amount); err != nil {
			return err
		}
		s.record(ctx, Entry{Kind: EntryDeposit, Account: addr.Hex(), Amount: receipt.Received.Dec(),
			Details: fmt.Sprintf("shares=%s", receipt.SharesMinted.Dec())})
		return nil
	})
	return receipt, err
}

// Withdraw burns shares, optionally claiming rewards in the same call.
func (s *Service) Withdraw(ctx context.Context, addr ethcommon.Address, shares *uint256.Int, claim bool) (*staking.WithdrawReceipt, error) {
	var receipt *staking.WithdrawReceipt
	err := s.run(ctx, "withdraw", []attribute.KeyValue{accountAttr(addr)}, func(ctx context.Context) error {
		var err error
		if receipt, err = s.sys.pool.Withdraw(addr, shares, claim); err != nil {
			return err
		}
		s.recordWithdraw(ctx, receipt)
		return nil
	})
	return receipt, err
}

// WithdrawAll burns every share held by addr.
func (s *Service) WithdrawAll(ctx context.Context, addr ethcommon.Address, claim bool) (*staking.WithdrawReceipt, error) {
	var receipt *staking.WithdrawReceipt
	err := s.run(ctx, "withdraw_all", []attribute.KeyValue{accountAttr(addr)}, func(ctx context.Context) error {
		var err error
		if receipt, err = s.sys.pool.WithdrawAll(addr, claim); err != nil {
			return err
		}
		s.recordWithdraw(ctx, receipt)
		return nil
	})
	return receipt, err
}

func (s *Service) recordWithdraw(ctx context.Context, receipt *staking.WithdrawReceipt) {
	s.record(ctx, Entry{Kind: EntryWithdraw, Account: receipt.Address.Hex(), Amount: receipt.Principal.Dec(),
		Details: fmt.Sprintf("shares=%s", receipt.SharesBurned.Dec())})
	if receipt.Claimed != nil && !receipt.Claimed.IsZero() {
		s.record(ctx, Entry{Kind: EntryClaim, Account: receipt.Address.Hex(), Amount: receipt.Claimed.Dec()})
	}
}

// Claim pays addr everything it is owed.
func (s *Service) Claim(ctx context.Context, addr ethcommon.Address) (*uint256.Int, error) {
	var paid *uint256.Int
	err := s.run(ctx, "claim", []attribute.KeyValue{accountAttr(addr)}, func(ctx context.Context) error {
		var err error
		if paid, err = s.sys.ledger.Claim(addr); err != nil {
			return err
		}
		if !paid.IsZero() {
			s.record(ctx, Entry{Kind: EntryClaim, Account: addr.Hex(), Amount: paid.Dec()})
		}
		return nil
	})
	return paid, err
}

// MassClaim pays every listed account, or every known holder when addrs is
// empty. Per-account failures are reported in the result.
func (s *Service) MassClaim(ctx context.Context, addrs []ethcommon.Address) (*rewards.MassClaimResult, error) {
	var result *rewards.MassClaimResult
	attrs := []attribute.KeyValue{attribute.Int("accounts", len(addrs))}
	err := s.run(ctx, "mass_claim", attrs, func(ctx context.Context) error {
		if len(addrs) == 0 {
			addrs = nil
		}
		var err error
		result, err = s.sys.ledger.MassClaim(addrs)
		if result != nil {
			for _, payout := range result.Payouts {
				s.record(ctx, Entry{Kind: EntryMassClaim, Account: payout.Address.Hex(), Amount: payout.Amount.Dec()})
			}
		}
		return err
	})
	return result, err
}

func (s *Service) collector(name string) (collector.Collector, error) {
	c, ok := s.sys.collectors[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollector, name)
	}
	return c, nil
}

// Receive transfers amount of the collector's fee asset from sender to the
// collector and books what actually arrived.
func (s *Service) Receive(ctx context.Context, name string, from ethcommon.Address, amount *uint256.Int) (*uint256.Int, error) {
	var received *uint256.Int
	attrs := []attribute.KeyValue{attribute.String("collector", name), accountAttr(from)}
	err := s.run(ctx, "collector_receive", attrs, func(ctx context.Context) error {
		c, err := s.collector(name)
		if err != nil {
			return err
		}
		if nativecommon.IsZero(amount) {
			return ErrZeroAmount
		}
		token := s.sys.tokens[s.sys.params.CollectedAsset(c.Name())]
		before, err := token.BalanceOf(c.Address())
		if err != nil {
			return err
		}
		if err := token.Transfer(from, c.Address(), amount); err != nil {
			return err
		}
		after, err := token.BalanceOf(c.Address())
		if err != nil {
			return err
		}
		received = new(uint256.Int)
		if after.Gt(before) {
			received.Sub(after, before)
		}
		if err := c.Receive(received); err != nil {
			return err
		}
		s.record(ctx, Entry{Kind: EntryReceive, Account: from.Hex(), Subject: c.Name(), Amount: received.Dec()})
		return nil
	})
	return received, err
}

// Trigger runs one collector. A result is returned alongside the error when
// a dividend swap settled but forwarding the proceeds failed.
func (s *Service) Trigger(ctx context.Context, name string) (*collector.TriggerResult, error) {
	var result *collector.TriggerResult
	err := s.run(ctx, "collector_trigger", []attribute.KeyValue{attribute.String("collector", name)}, func(ctx context.Context) error {
		c, err := s.collector(name)
		if err != nil {
			return err
		}
		result, err = c.Trigger()
		s.metrics.RecordTrigger(c.Name(), err)
		// A dividend swap can settle before the revenue deposit fails.
		if result != nil && !result.Skipped {
			details := fmt.Sprintf("input=%s swapped=%s", result.Input.Dec(), result.SwappedOut.Dec())
			if err != nil {
				details += " forward=failed"
			}
			s.record(ctx, Entry{Kind: EntryTrigger, Subject: c.Name(), Amount: result.Forwarded.Dec(), Details: details})
		}
		return err
	})
	return result, err
}

// Emit releases the accrued emission, paying the bounty to caller. A result
// is returned alongside emission.ErrBountyFailed.
func (s *Service) Emit(ctx context.Context, caller ethcommon.Address) (*emission.Result, error) {
	var result *emission.Result
	err := s.run(ctx, "emit", []attribute.KeyValue{accountAttr(caller)}, func(ctx context.Context) error {
		if s.sys.scheduler == nil {
			return ErrEmissionDisabled
		}
		var err error
		result, err = s.sys.scheduler.Emit(caller)
		if result != nil {
			s.record(ctx, Entry{Kind: EntryEmission, Account: caller.Hex(), Amount: result.Amount.Dec(),
				Details: fmt.Sprintf("bounty=%s reinvested=%s elapsed=%d", result.Bounty.Dec(), result.Reinvested.Dec(), result.Elapsed)})
		}
		return err
	})
	return result, err
}

// Redeem burns amount of the staking asset held by addr for its share of the
// redemption reserve.
func (s *Service) Redeem(ctx context.Context, addr ethcommon.Address, amount *uint256.Int) (*redeem.Receipt, error) {
	var receipt *redeem.Receipt
	err := s.run(ctx, "redeem", []attribute.KeyValue{accountAttr(addr)}, func(ctx context.Context) error {
		if s.sys.redeemer == nil {
			return ErrRedemptionDisabled
		}
		var err error
		if receipt, err = s.sys.redeemer.Redeem(addr, amount); err != nil {
			return err
		}
		paid := make([]string, 0, len(receipt.Payouts))
		for _, p := range receipt.Payouts {
			paid = append(paid, p.Symbol+"="+p.Received.Dec())
		}
		s.record(ctx, Entry{Kind: EntryRedeem, Account: addr.Hex(), Amount: receipt.Burned.Dec(),
			Details: fmt.Sprintf("supply=%s %s", receipt.SupplyBefore.Dec(), strings.Join(paid, " "))})
		return nil
	})
	return receipt, err
}

// RedeemQuote prices a redemption of amount without moving funds.
func (s *Service) RedeemQuote(amount *uint256.Int) (*redeem.Quote, error) {
	s.sys.mu.Lock()
	defer s.sys.mu.Unlock()
	if s.sys.redeemer == nil {
		return nil, ErrRedemptionDisabled
	}
	return s.sys.redeemer.Quote(amount)
}

// SetPaused pauses or resumes module.
func (s *Service) SetPaused(ctx context.Context, module string, paused bool) error {
	module = strings.ToLower(strings.TrimSpace(module))
	op, kind := "resume", EntryResume
	if paused {
		op, kind = "pause", EntryPause
	}
	return s.run(ctx, op, []attribute.KeyValue{attribute.String("module", module)}, func(ctx context.Context) error {
		if !nativecommon.IsKnownModule(module) {
			return fmt.Errorf("%w: %s", ErrUnknownModule, module)
		}
		if err := s.sys.state.SetPaused(module, paused); err != nil {
			return err
		}
		s.record(ctx, Entry{Kind: kind, Subject: module})
		return nil
	})
}

// AccountView is the combined position of one address.
type AccountView struct {
	Address      ethcommon.Address
	Shares       *uint256.Int
	StakedValue  *uint256.Int
	Deposited    *uint256.Int
	Withdrawn    *uint256.Int
	Withdrawable *uint256.Int
	Claimed      *uint256.Int
	Balances     map[string]*uint256.Int
}

// Account reads the position of addr.
func (s *Service) Account(addr ethcommon.Address) (*AccountView, error) {
	s.sys.mu.Lock()
	defer s.sys.mu.Unlock()
	stake, err := s.sys.pool.Account(addr)
	if err != nil {
		return nil, err
	}
	value, err := s.sys.pool.BalanceOf(addr)
	if err != nil {
		return nil, err
	}
	reward, err := s.sys.ledger.Account(addr)
	if err != nil {
		return nil, err
	}
	withdrawable, err := s.sys.ledger.Withdrawable(addr)
	if err != nil {
		return nil, err
	}
	view := &AccountView{
		Address:      addr,
		Shares:       stake.Shares,
		StakedValue:  value,
		Deposited:    stake.Deposited,
		Withdrawn:    stake.Withdrawn,
		Withdrawable: withdrawable,
		Claimed:      reward.Withdrawn,
		Balances:     make(map[string]*uint256.Int, len(s.sys.tokens)),
	}
	for _, symbol := range s.sys.symbols() {
		balance, err := s.sys.tokens[symbol].BalanceOf(addr)
		if err != nil {
			return nil, err
		}
		view.Balances[symbol] = balance
	}
	return view, nil
}

// Withdrawable reports the unclaimed reward of addr.
func (s *Service) Withdrawable(addr ethcommon.Address) (*uint256.Int, error) {
	s.sys.mu.Lock()
	defer s.sys.mu.Unlock()
	return s.sys.ledger.Withdrawable(addr)
}

// Stats aggregates pool, ledger and collector state.
type Stats struct {
	Pool          *staking.Global
	Ledger        *rewards.Global
	ValuePerShare *uint256.Int
	Collectors    []*collector.State
	Pauses        map[string]bool
}

// Stats snapshots the system.
func (s *Service) Stats() (*Stats, error) {
	s.sys.mu.Lock()
	defer s.sys.mu.Unlock()
	pool, err := s.sys.pool.Snapshot()
	if err != nil {
		return nil, err
	}
	ledger, err := s.sys.ledger.Snapshot()
	if err != nil {
		return nil, err
	}
	vps, err := s.sys.pool.ValuePerShare()
	if err != nil {
		return nil, err
	}
	stats := &Stats{Pool: pool, Ledger: ledger, ValuePerShare: vps, Pauses: s.sys.state.Pauses()}
	for _, name := range s.sys.names {
		st, err := s.sys.collectors[name].State()
		if err != nil {
			return nil, err
		}
		stats.Collectors = append(stats.Collectors, st)
	}
	return stats, nil
}

// EmissionStatus reports whether an emission is due.
func (s *Service) EmissionStatus() (*emission.Status, error) {
	s.sys.mu.Lock()
	defer s.sys.mu.Unlock()
	if s.sys.scheduler == nil {
		return nil, ErrEmissionDisabled
	}
	s.sys.syncHeight()
	return s.sys.scheduler.Status()
}

// Audit recomputes the ledger invariants.
func (s *Service) Audit() (*rewards.AuditReport, error) {
	s.sys.mu.Lock()
	defer s.sys.mu.Unlock()
	return s.sys.ledger.Audit()
}

// Journal lists journal entries, newest first.
func (s *Service) Journal(ctx context.Context, account string, limit int) ([]Entry, error) {
	if s.journal == nil {
		return nil, errors.New("stakingd: journal disabled")
	}
	return s.journal.List(ctx, account, limit)
}
