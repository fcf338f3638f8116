package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// PausableClock provides game time that freezes while paused
// Handlers stamp multi-tick progress with this time, so a paused game never advances timers
type PausableClock struct {
	mu sync.RWMutex

	real Source

	startReal time.Time
	startGame time.Time

	paused      atomic.Bool
	pausedAt    time.Time
	pausedTotal time.Duration
}

// NewPausableClock creates a running clock whose game epoch is the current real time
func NewPausableClock() *PausableClock {
	return NewPausableClockFrom(Wall{}, time.Time{})
}

// NewPausableClockFrom creates a clock over the given real source
// A zero gameEpoch starts game time at the source's current reading
func NewPausableClockFrom(real Source, gameEpoch time.Time) *PausableClock {
	now := real.Now()
	if gameEpoch.IsZero() {
		gameEpoch = now
	}
	return &PausableClock{
		real:      real,
		startReal: now,
		startGame: gameEpoch,
	}
}

// Now returns current game time
func (pc *PausableClock) Now() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.paused.Load() {
		return pc.startGame.Add(pc.pausedAt.Sub(pc.startReal) - pc.pausedTotal)
	}

	elapsed := pc.real.Now().Sub(pc.startReal) - pc.pausedTotal
	return pc.startGame.Add(elapsed)
}

// Pause stops game time advancement
func (pc *PausableClock) Pause() {
	if pc.paused.CompareAndSwap(false, true) {
		pc.mu.Lock()
		defer pc.mu.Unlock()
		pc.pausedAt = pc.real.Now()
	}
}

// Resume continues game time advancement
func (pc *PausableClock) Resume() {
	if pc.paused.CompareAndSwap(true, false) {
		pc.mu.Lock()
		defer pc.mu.Unlock()
		if !pc.pausedAt.IsZero() {
			pc.pausedTotal += pc.real.Now().Sub(pc.pausedAt)
			pc.pausedAt = time.Time{}
		}
	}
}

// Toggle flips the pause state and reports whether the clock is now paused
func (pc *PausableClock) Toggle() bool {
	if pc.IsPaused() {
		pc.Resume()
		return false
	}
	pc.Pause()
	return true
}

// IsPaused returns current pause state
func (pc *PausableClock) IsPaused() bool {
	return pc.paused.Load()
}

// TotalPauseDuration returns cumulative pause time including the current pause
func (pc *PausableClock) TotalPauseDuration() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	total := pc.pausedTotal
	if pc.paused.Load() && !pc.pausedAt.IsZero() {
		total += pc.real.Now().Sub(pc.pausedAt)
	}
	return total
}
