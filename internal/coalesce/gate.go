// Package coalesce provides a single-slot request gate: at most one call is
// outstanding, and a burst of requests made while it runs collapses into at
// most one follow-up.
package coalesce

import "sync"

// Gate tracks an in-flight flag and a queued flag. The zero value is ready
// to use.
type Gate struct {
	mu       sync.Mutex
	inFlight bool
	queued   bool
}

// Enter claims the gate. It returns false when a call is already in flight;
// in that case queue=true records a follow-up request.
func (g *Gate) Enter(queue bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight {
		if queue {
			g.queued = true
		}
		return false
	}
	g.inFlight = true
	return true
}

// Release finishes the current call. When a follow-up was queued and
// followUp is true, the gate stays claimed, the queued flag is cleared, and
// Release returns true: the caller must run exactly one more call and then
// Release again. Otherwise the gate is freed and any queued request dropped.
func (g *Gate) Release(followUp bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.queued && followUp {
		g.queued = false
		return true
	}
	g.inFlight = false
	g.queued = false
	return false
}

// Busy reports whether a call is in flight.
func (g *Gate) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// Queued reports whether a follow-up is pending.
func (g *Gate) Queued() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.queued
}

// Do runs fn if the gate is free and reports whether it ran. Requests made
// while fn runs are dropped, not queued. The gate is released even if fn
// panics.
func (g *Gate) Do(fn func()) bool {
	if !g.Enter(false) {
		return false
	}
	defer g.Release(false)
	fn()
	return true
}
