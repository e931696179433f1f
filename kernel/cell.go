package kernel

import (
	"runtime"
	"sync"
)

// spinBudget bounds how long Acquire waits before declaring the cell
// permanently held. Legitimate holders release within a few
// instructions; a holder that parked in a context switch never will.
const spinBudget = 1 << 14

// Cell is a run-time single-owner guard over shared kernel state.
//
// Scheduling discipline keeps at most one kernel flow runnable, so a
// cell is only ever held for a short straight-line critical section.
// Inspection tools (the monitor, tests) may probe from outside that
// discipline, which shows up as momentary contention; a cell that
// stays held past the spin budget can only mean a flow kept it across
// a context switch, and the flow switched in could never make
// progress. That is a kernel bug, not contention, so Acquire aborts
// instead of blocking forever.
type Cell struct {
	mu sync.Mutex
}

// Acquire takes exclusive access to the guarded state.
//
// Callers must Release before any operation that may context switch.
func (c *Cell) Acquire() {
	for i := 0; i < spinBudget; i++ {
		if c.mu.TryLock() {
			return
		}
		runtime.Gosched()
	}
	panic("kernel: exclusive cell held across a context switch")
}

// Release gives up exclusive access.
func (c *Cell) Release() {
	c.mu.Unlock()
}
