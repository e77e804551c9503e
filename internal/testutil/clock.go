package testutil

import "sync"

// DeterministicClock is a resettable logical clock that stamps trace
// records in tests. It satisfies driver.Sequencer.
//
// Resetting between scenario runs makes repeated runs produce identical
// sequence numbers.
//
// Thread-safety: safe for concurrent use.
type DeterministicClock struct {
	mu    sync.Mutex
	seq   int64
	start int64
}

// NewDeterministicClock creates a clock whose first Next returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// NewClockAt creates a clock whose first Next returns start+1.
func NewClockAt(start int64) *DeterministicClock {
	return &DeterministicClock{seq: start, start: start}
}

// Next increments and returns the sequence number.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the last issued number without advancing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock to its starting value.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = c.start
}
