package collector

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"stakeledger/core/events"
	nativecommon "stakeledger/native/common"
)

// EventTypeTriggered is emitted after every trigger that processed funds.
const EventTypeTriggered = "collector.triggered"

var ErrNotInitialised = errors.New("collector: engine not initialised")

// Collector accumulates transfer fees and converts them into pool value.
type Collector interface {
	Name() string
	Kind() Kind
	Address() ethcommon.Address
	Receive(amount *uint256.Int) error
	Trigger() (*TriggerResult, error)
	State() (*State, error)
}

type collectorState interface {
	CollectorState(name string) (*State, bool, error)
	PutCollectorState(*State) error
}

// base holds the bookkeeping shared by every collector variant.
type base struct {
	name    string
	kind    Kind
	addr    ethcommon.Address
	state   collectorState
	emitter events.Emitter
	pauses  nativecommon.PauseView
	guard   nativecommon.ReentrancyGuard
	nowFn   func() time.Time
}

func newBase(name string, kind Kind, addr ethcommon.Address) base {
	return base{name: name, kind: kind, addr: addr, emitter: events.NoopEmitter{}, nowFn: time.Now}
}

// SetState configures the persistence backend used by the collector.
func (b *base) SetState(state collectorState) { b.state = state }

// SetEmitter configures the event emitter used by the collector.
func (b *base) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		b.emitter = events.NoopEmitter{}
		return
	}
	b.emitter = emitter
}

// SetPauses wires the pause view consulted before triggers.
func (b *base) SetPauses(p nativecommon.PauseView) { b.pauses = p }

// SetNowFunc overrides the collector clock.
func (b *base) SetNowFunc(now func() time.Time) {
	if now == nil {
		b.nowFn = time.Now
		return
	}
	b.nowFn = now
}

func (b *base) Name() string               { return b.name }
func (b *base) Kind() Kind                 { return b.kind }
func (b *base) Address() ethcommon.Address { return b.addr }

func (b *base) load() (*State, error) {
	if b.state == nil {
		return nil, ErrNotInitialised
	}
	st, ok, err := b.state.CollectorState(b.name)
	if err != nil {
		return nil, err
	}
	if !ok || st == nil {
		st = &State{}
	} else {
		st = st.Copy()
	}
	st.Name = b.name
	st.ensureDefaults()
	return st, nil
}

// State returns the collector bookkeeping.
func (b *base) State() (*State, error) { return b.load() }

// Receive records fees that have already landed on the collector address.
// It ignores pauses.
func (b *base) Receive(amount *uint256.Int) error {
	if nativecommon.IsZero(amount) {
		return nil
	}
	st, err := b.load()
	if err != nil {
		return err
	}
	st.TotalReceived = new(uint256.Int).Add(st.TotalReceived, amount)
	return b.state.PutCollectorState(st)
}

// begin runs the checks every trigger starts with.
func (b *base) begin() (func(), error) {
	if b.state == nil {
		return nil, ErrNotInitialised
	}
	if err := nativecommon.Guard(b.pauses, nativecommon.ModuleCollector); err != nil {
		return nil, err
	}
	return b.guard.Enter()
}

func (b *base) recordFailure(st *State, cause error) error {
	st.Failures++
	if err := b.state.PutCollectorState(st); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (b *base) finish(st *State, result *TriggerResult) error {
	st.Triggers++
	st.LastTrigger = b.nowFn().Unix()
	if err := b.state.PutCollectorState(st); err != nil {
		return err
	}
	b.emitter.Emit(&events.Record{
		Type: EventTypeTriggered,
		Attributes: map[string]string{
			"collector":  b.name,
			"kind":       string(b.kind),
			"input":      result.Input.Dec(),
			"swappedOut": result.SwappedOut.Dec(),
			"forwarded":  result.Forwarded.Dec(),
			"triggers":   strconv.FormatUint(st.Triggers, 10),
		},
	})
	return nil
}

func (b *base) result() *TriggerResult {
	return &TriggerResult{
		Collector:  b.name,
		Kind:       b.kind,
		Address:    b.addr,
		Input:      new(uint256.Int),
		SwappedOut: new(uint256.Int),
		Forwarded:  new(uint256.Int),
	}
}

func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
