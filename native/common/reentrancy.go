package common

import (
	"errors"
	"sync/atomic"
)

// ErrReentrantCall is returned when an engine entry point is invoked while
// another entry point of the same engine is still executing, typically from
// inside an asset transfer or swap callback.
var ErrReentrantCall = errors.New("reentrant call")

// ReentrancyGuard rejects nested entry into an engine. The zero value is
// ready to use.
type ReentrancyGuard struct {
	entered atomic.Bool
}

// Enter marks the engine busy. Callers must defer the returned release func.
func (g *ReentrancyGuard) Enter() (func(), error) {
	if g == nil {
		return func() {}, nil
	}
	if !g.entered.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall
	}
	return func() { g.entered.Store(false) }, nil
}

// Busy reports whether an entry point is currently executing.
func (g *ReentrancyGuard) Busy() bool {
	if g == nil {
		return false
	}
	return g.entered.Load()
}
