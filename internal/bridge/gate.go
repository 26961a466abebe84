package bridge

import "sync/atomic"

// gate is the per-request exactly-once finalization primitive. The only legal
// transition is pending→finalized; it is driven by whichever completion
// source wins the compare-and-swap. Losing attempts are silent no-ops.
type gate struct {
	finalized atomic.Bool
	outcome   string
	done      chan struct{}
}

func newGate() *gate {
	return &gate{done: make(chan struct{})}
}

// tryFinalize attempts the pending→finalized transition. The winner runs fn
// (the one user-visible finalization action) before the done channel closes,
// so anything observing Done sees fn's effects. Returns false for losers,
// which must not touch the response afterwards.
func (g *gate) tryFinalize(outcome string, fn func()) bool {
	if !g.finalized.CompareAndSwap(false, true) {
		return false
	}
	g.outcome = outcome
	if fn != nil {
		fn()
	}
	close(g.done)
	return true
}

// Done is closed once the request has been finalized.
func (g *gate) Done() <-chan struct{} { return g.done }

// Outcome reports the winning outcome. Valid only after Done is closed.
func (g *gate) Outcome() string { return g.outcome }
