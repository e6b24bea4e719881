package framevk

import (
	"sync"
	"sync/atomic"
)

// gate serialises frame phases against device swaps. A phase holds the lock
// for all of its GPU work. A swap raises halted before taking the lock, so a
// phase already running finishes first and every phase arriving afterwards
// is rejected instead of blocking the video thread.
type gate struct {
	halted atomic.Bool
	mu     sync.Mutex
}

// enter reports whether a phase may run. A true result must be paired with
// leave.
func (g *gate) enter() bool {
	if g.halted.Load() {
		return false
	}
	if !g.mu.TryLock() {
		return false
	}
	if g.halted.Load() {
		g.mu.Unlock()
		return false
	}
	return true
}

func (g *gate) leave() {
	g.mu.Unlock()
}

//Blocks until the running phase, if any, has left
func (g *gate) halt() {
	g.halted.Store(true)
	g.mu.Lock()
}

func (g *gate) resume() {
	g.halted.Store(false)
	g.mu.Unlock()
}

func (g *gate) isHalted() bool {
	return g.halted.Load()
}
