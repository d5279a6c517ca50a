package emission

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"stakeledger/core/events"
	"stakeledger/native/bank"
	nativecommon "stakeledger/native/common"
)

// EventTypeEmitted is emitted after every successful emission.
const EventTypeEmitted = "emission.emitted"

var (
	ErrNotInitialised = errors.New("emission: engine not initialised")
	// ErrNotStarted is returned before Initialize has set the schedule origin.
	ErrNotStarted = nativecommon.CallerError("emission: schedule not started")
	// ErrAlreadyStarted is returned by a second Initialize.
	ErrAlreadyStarted = nativecommon.CallerError("emission: schedule already started")
	// ErrNotReady is returned while the throttle interval has not elapsed.
	ErrNotReady = nativecommon.CallerError("emission: not ready")
	// ErrReserveDepleted is returned when the reserve holds nothing to emit.
	ErrReserveDepleted = nativecommon.CallerError("emission: reserve depleted")
	// ErrBountyFailed wraps a failed bounty payout after the pool was funded.
	ErrBountyFailed = nativecommon.CollaboratorError("emission: bounty transfer failed")
)

// Reinvestor is the staking pool entry point receiving emissions.
type Reinvestor interface {
	Reinvest(from ethcommon.Address, amount *uint256.Int) (*uint256.Int, error)
}

type emissionState interface {
	EmissionState() (*State, error)
	PutEmissionState(*State) error
}

// Scheduler releases reserve funds into the staking pool at a throttled
// rate. Emissions are pulled by any caller, who earns a bounty.
type Scheduler struct {
	params  Params
	reserve ethcommon.Address
	asset   bank.Asset
	pool    Reinvestor
	state   emissionState
	emitter events.Emitter
	pauses  nativecommon.PauseView
	guard   nativecommon.ReentrancyGuard
	nowFn   func() time.Time
	height  uint64
}

// NewScheduler constructs a scheduler paying asset out of reserve.
func NewScheduler(params Params, reserve ethcommon.Address, asset bank.Asset, pool Reinvestor) (*Scheduler, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	params.RatePerUnit = nativecommon.Clone(params.RatePerUnit)
	params.MaxPerEmission = nativecommon.Clone(params.MaxPerEmission)
	return &Scheduler{
		params:  params,
		reserve: reserve,
		asset:   asset,
		pool:    pool,
		emitter: events.NoopEmitter{},
		nowFn:   time.Now,
	}, nil
}

// SetState configures the persistence backend used by the scheduler.
func (s *Scheduler) SetState(state emissionState) { s.state = state }

// SetEmitter configures the event emitter used by the scheduler.
func (s *Scheduler) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		s.emitter = events.NoopEmitter{}
		return
	}
	s.emitter = emitter
}

// SetPauses wires the pause view consulted before emissions.
func (s *Scheduler) SetPauses(p nativecommon.PauseView) { s.pauses = p }

// SetNowFunc overrides the scheduler clock.
func (s *Scheduler) SetNowFunc(now func() time.Time) {
	if now == nil {
		s.nowFn = time.Now
		return
	}
	s.nowFn = now
}

// SetBlockHeight records the current block height for block-mode throttling.
func (s *Scheduler) SetBlockHeight(height uint64) { s.height = height }

// BlockHeight returns the last height recorded with SetBlockHeight.
func (s *Scheduler) BlockHeight() uint64 { return s.height }

// Params returns the schedule parameters.
func (s *Scheduler) Params() Params { return s.params }

// Reserve returns the funding address.
func (s *Scheduler) Reserve() ethcommon.Address { return s.reserve }

func (s *Scheduler) ready() error {
	if s == nil || s.state == nil || s.asset == nil || s.pool == nil {
		return ErrNotInitialised
	}
	return nil
}

func (s *Scheduler) load() (*State, error) {
	st, err := s.state.EmissionState()
	if err != nil {
		return nil, err
	}
	if st == nil {
		st = &State{}
	} else {
		st = st.Copy()
	}
	if st.TotalEmitted == nil {
		st.TotalEmitted = new(uint256.Int)
	}
	if st.TotalBounty == nil {
		st.TotalBounty = new(uint256.Int)
	}
	return st, nil
}

// Initialize sets the schedule origin. Elapsed time before the origin never
// accrues.
func (s *Scheduler) Initialize(at time.Time, height uint64) error {
	if err := s.ready(); err != nil {
		return err
	}
	st, err := s.load()
	if err != nil {
		return err
	}
	if st.Initialized {
		return ErrAlreadyStarted
	}
	st.Initialized = true
	st.LastTime = at.Unix()
	st.LastBlock = height
	return s.state.PutEmissionState(st)
}

func (s *Scheduler) elapsed(st *State, now time.Time) uint64 {
	if s.params.Mode == ThrottleBlock {
		if s.height <= st.LastBlock {
			return 0
		}
		return s.height - st.LastBlock
	}
	if now.Unix() <= st.LastTime {
		return 0
	}
	return uint64(now.Unix() - st.LastTime)
}

// quote returns the emission and bounty due for elapsed units.
func (s *Scheduler) quote(elapsed uint64) (*uint256.Int, *uint256.Int, *uint256.Int, error) {
	amount, overflow := new(uint256.Int).MulOverflow(s.params.RatePerUnit, uint256.NewInt(elapsed))
	if overflow {
		amount.SetAllOne()
	}
	if !s.params.MaxPerEmission.IsZero() {
		amount = nativecommon.Min(amount, s.params.MaxPerEmission)
	}
	reserve, err := s.asset.BalanceOf(s.reserve)
	if err != nil {
		return nil, nil, nil, err
	}
	amount = nativecommon.Min(amount, reserve)
	bounty, err := nativecommon.MulDiv(amount, uint256.NewInt(uint64(s.params.BountyPercent)), uint256.NewInt(100))
	if err != nil {
		return nil, nil, nil, err
	}
	return amount, bounty, reserve, nil
}

// Status reports the current schedule state.
func (s *Scheduler) Status() (*Status, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	st, err := s.load()
	if err != nil {
		return nil, err
	}
	status := &Status{
		Initialized: st.Initialized,
		Mode:        s.params.Mode,
		Interval:    s.params.Interval,
		LastTime:    st.LastTime,
		LastBlock:   st.LastBlock,
		Amount:      new(uint256.Int),
		Bounty:      new(uint256.Int),
	}
	if !st.Initialized {
		if status.Reserve, err = s.asset.BalanceOf(s.reserve); err != nil {
			return nil, err
		}
		return status, nil
	}
	status.Elapsed = s.elapsed(st, s.nowFn())
	status.Ready = status.Elapsed >= s.params.Interval
	amount, bounty, reserve, err := s.quote(status.Elapsed)
	if err != nil {
		return nil, err
	}
	status.Reserve = reserve
	if status.Ready {
		status.Amount = amount
		status.Bounty = bounty
	}
	return status, nil
}

// Emit releases the accrued emission: the bounty to caller and the rest to
// the pool as reinvested principal. The throttle advances only when the pool
// accepts the funds.
func (s *Scheduler) Emit(caller ethcommon.Address) (*Result, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(s.pauses, nativecommon.ModuleEmission); err != nil {
		return nil, err
	}
	release, err := s.guard.Enter()
	if err != nil {
		return nil, err
	}
	defer release()

	st, err := s.load()
	if err != nil {
		return nil, err
	}
	if !st.Initialized {
		return nil, ErrNotStarted
	}
	now := s.nowFn()
	elapsed := s.elapsed(st, now)
	if elapsed < s.params.Interval {
		return nil, fmt.Errorf("%w: %d of %d %s elapsed", ErrNotReady, elapsed, s.params.Interval, s.unit())
	}
	amount, bounty, _, err := s.quote(elapsed)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, ErrReserveDepleted
	}
	toPool := new(uint256.Int).Sub(amount, bounty)

	prev := st.Copy()
	st.LastTime = now.Unix()
	st.LastBlock = s.height
	if err := s.state.PutEmissionState(st); err != nil {
		return nil, err
	}
	if !toPool.IsZero() {
		if _, err := s.pool.Reinvest(s.reserve, toPool); err != nil {
			if rbErr := s.state.PutEmissionState(prev); rbErr != nil {
				return nil, errors.Join(err, rbErr)
			}
			return nil, fmt.Errorf("emission: reinvest: %w", err)
		}
	}
	result := &Result{
		Caller:     caller,
		Elapsed:    elapsed,
		Amount:     amount,
		Bounty:     bounty,
		Reinvested: toPool,
		Time:       st.LastTime,
		Block:      st.LastBlock,
	}
	var bountyErr error
	if !bounty.IsZero() {
		if err := s.asset.Transfer(s.reserve, caller, bounty); err != nil {
			bountyErr = fmt.Errorf("%w: %v", ErrBountyFailed, err)
			result.Bounty = new(uint256.Int)
			result.Amount = nativecommon.Clone(toPool)
		}
	}
	st.TotalEmitted = new(uint256.Int).Add(st.TotalEmitted, result.Amount)
	st.TotalBounty = new(uint256.Int).Add(st.TotalBounty, result.Bounty)
	st.Count++
	if err := s.state.PutEmissionState(st); err != nil {
		return nil, err
	}
	s.emitter.Emit(&events.Record{
		Type: EventTypeEmitted,
		Attributes: map[string]string{
			"caller":     caller.Hex(),
			"amount":     result.Amount.Dec(),
			"bounty":     result.Bounty.Dec(),
			"reinvested": toPool.Dec(),
			"elapsed":    strconv.FormatUint(elapsed, 10),
			"mode":       s.params.Mode.String(),
		},
	})
	return result, bountyErr
}

func (s *Scheduler) unit() string {
	if s.params.Mode == ThrottleBlock {
		return "blocks"
	}
	return "seconds"
}
