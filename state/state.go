// Package state implements the container admission state machine, a
// four-state single-slot register. It is not a queue and not a mutex: a
// request arriving while the slot is occupied is rejected immediately,
// never blocked.
package state

import (
	"fmt"
	"sync/atomic"
)

// State is the container admission state.
type State int32

const (
	// Pending is the initial state, before Prepare.
	Pending State = iota
	// Ready means the container can admit exactly one request.
	Ready
	// Reserved means a request has been admitted and is resolving its route.
	Reserved
	// Busy means the resolved handler is running.
	Busy
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Reserved:
		return "reserved"
	case Busy:
		return "busy"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// CanTransition reports whether moving between two states is legal:
// Pending→Ready (prepare), Ready→Reserved (admit), Reserved→Busy (run),
// and Reserved/Busy→Ready (release). It is a pure function so tests can
// drive the machine without a Gate.
func CanTransition(from, to State) bool {
	switch from {
	case Pending:
		return to == Ready
	case Ready:
		return to == Reserved
	case Reserved:
		return to == Busy || to == Ready
	case Busy:
		return to == Ready
	default:
		return false
	}
}

// Gate is the single-slot admission register. All transitions are
// compare-and-swap operations; a failed swap means the slot was not in
// the required state and the caller must fail fast.
type Gate struct {
	v atomic.Int32
}

// NewGate returns a Gate in Pending.
func NewGate() *Gate { return &Gate{} }

// Current returns the current state.
func (g *Gate) Current() State { return State(g.v.Load()) }

// Prepare transitions Pending to Ready. It reports false when the gate
// was already prepared (or is mid-request), making the one-time
// readiness transition idempotent-guarded.
func (g *Gate) Prepare() bool {
	return g.v.CompareAndSwap(int32(Pending), int32(Ready))
}

// Reserve admits one request, transitioning Ready to Reserved. A false
// return means the container cannot take the request right now; the
// state is left unchanged.
func (g *Gate) Reserve() bool {
	return g.v.CompareAndSwap(int32(Ready), int32(Reserved))
}

// Occupy transitions Reserved to Busy. Only the request that reserved
// the gate may call it.
func (g *Gate) Occupy() bool {
	return g.v.CompareAndSwap(int32(Reserved), int32(Busy))
}

// Release returns the gate to Ready from Reserved or Busy. It never
// touches a Pending gate, so calling it from a deferred cleanup is safe
// on every request exit path.
func (g *Gate) Release() {
	if g.v.CompareAndSwap(int32(Busy), int32(Ready)) {
		return
	}
	g.v.CompareAndSwap(int32(Reserved), int32(Ready))
}
