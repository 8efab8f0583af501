package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a wall clock for tests that starts at a fixed instant
// and advances by a fixed step on every reading.
//
// Two clocks created with the same start and step produce identical
// readings, so salts derived from them are reproducible.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	reads int64
}

// NewDeterministicClock creates a clock whose first reading is start.
func NewDeterministicClock(start time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{start: start, step: step}
}

// Now returns the next reading. Its signature matches time.Now.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.reads) * c.step)
	c.reads++
	return t
}

// Reads returns how many times Now has been called.
func (c *DeterministicClock) Reads() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Reset rewinds the clock so the next reading is start again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads = 0
}
