package testutil

import (
	"sync"
	"time"
)

// Epoch is the wall time a DeterministicClock reports for tick zero.
var Epoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock is a resettable logical clock for traces and message
// timestamps. Safe for concurrent use.
type DeterministicClock struct {
	mu   sync.Mutex
	tick int64
}

// NewDeterministicClock returns a clock whose first Next is 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next advances the clock and returns the new tick.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick++
	return c.tick
}

// Current returns the tick without advancing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick
}

// Now advances the clock and returns Epoch plus that many minutes.
func (c *DeterministicClock) Now() time.Time {
	return Epoch.Add(time.Duration(c.Next()) * time.Minute)
}

// Reset rewinds to tick zero.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick = 0
}
