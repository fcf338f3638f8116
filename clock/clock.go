// Package clock supplies the time sources the world and the tick loop read
package clock

import (
	"sync"
	"time"
)

// Source is anything that reports the current time
type Source interface {
	Now() time.Time
}

// Wall reads the system clock
type Wall struct{}

// Now returns time.Now, monotonic reading included
func (Wall) Now() time.Time { return time.Now() }

// Manual only moves when told to; tests and replays drive it one tick at a time
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual creates a manual clock reading start
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set jumps to t, backwards included
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new reading
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}
