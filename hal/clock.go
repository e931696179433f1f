package hal

import (
	"sync/atomic"
	"time"
)

// Clock is the kernel timebase: a monotonic microsecond counter.
type Clock interface {
	NowMicros() uint64
}

// Monotonic measures microseconds since the clock was created.
type Monotonic struct {
	start time.Time
}

// NewMonotonic creates a clock that starts counting from zero now.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

func (m *Monotonic) NowMicros() uint64 {
	return uint64(time.Since(m.start) / time.Microsecond)
}

// Manual is a hand-stepped clock for deterministic runs and tests.
type Manual struct {
	now atomic.Uint64
}

// NewManual creates a manual clock set to us microseconds.
func NewManual(us uint64) *Manual {
	m := &Manual{}
	m.now.Store(us)
	return m
}

func (m *Manual) NowMicros() uint64 { return m.now.Load() }

// Set moves the clock to us microseconds.
func (m *Manual) Set(us uint64) { m.now.Store(us) }

// Advance moves the clock forward by dt microseconds and returns the new value.
func (m *Manual) Advance(dt uint64) uint64 { return m.now.Add(dt) }
