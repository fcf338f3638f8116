// Package scheduler drives deferred actions across simulation ticks.
//
// A Manager owns three lists of action values: active (slots being processed),
// queued (chained successors waiting for their predecessor) and toCancel (actions
// preempted this tick). Each Tick runs ingest, cancel, process/reap and compact in
// that fixed order on the caller's goroutine; nothing inside yields or locks.
package scheduler

import (
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/lixenwraith/vi-rts/action"
	"github.com/lixenwraith/vi-rts/status"
	"github.com/lixenwraith/vi-rts/world"
)

// DefaultCompactThreshold is the tombstone count above which active is compacted
const DefaultCompactThreshold = 16

// Dispatcher routes an action to its kind's handler entry points
// Process advances a.Phase by at most one step; Cancel undoes in-progress side effects
type Dispatcher interface {
	Process(w *world.World, a *action.Action)
	Cancel(w *world.World, a action.Action)
}

// Report summarizes one tick
type Report struct {
	Ingested  int
	Preempted int
	Cancelled int
	Finalized int
	Promoted  int
	Compacted bool
	Live      int
}

// Manager is the action scheduler
type Manager struct {
	active   []action.Action
	queued   []action.Action
	toCancel []action.Action

	// Tombstones in active since the last compaction, saturating
	completed uint32
	threshold uint32

	// Reusable queued slots and the number of live queued entries
	freeQueued []int
	liveQueued int

	dispatch Dispatcher
	log      *slog.Logger
	stats    counters
	report   Report
}

type counters struct {
	ticks       *atomic.Int64
	ingested    *atomic.Int64
	preempted   *atomic.Int64
	cancelled   *atomic.Int64
	finalized   *atomic.Int64
	promoted    *atomic.Int64
	compactions *atomic.Int64
	live        *atomic.Int64
}

// Option configures a Manager
type Option func(*Manager)

// WithCompactThreshold sets how many tombstones accumulate before compaction
func WithCompactThreshold(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.threshold = uint32(n)
		}
	}
}

// WithLogger sets the logger used for preemption and promotion traces
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithStatus publishes scheduler counters into reg
func WithStatus(reg *status.Registry) Option {
	return func(m *Manager) {
		if reg != nil {
			m.stats = newCounters(reg)
		}
	}
}

// New creates an empty scheduler dispatching to d
func New(d Dispatcher, opts ...Option) *Manager {
	m := &Manager{
		threshold: DefaultCompactThreshold,
		dispatch:  d,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.stats.ticks == nil {
		m.stats = newCounters(status.NewRegistry())
	}
	return m
}

func newCounters(reg *status.Registry) counters {
	sc := reg.Scope("scheduler")
	return counters{
		ticks:       sc.Counter("ticks"),
		ingested:    sc.Counter("ingested"),
		preempted:   sc.Counter("preempted"),
		cancelled:   sc.Counter("cancelled"),
		finalized:   sc.Counter("finalized"),
		promoted:    sc.Counter("promoted"),
		compactions: sc.Counter("compactions"),
		live:        sc.Counter("live"),
	}
}

// Active returns a copy of the active slots, tombstones included
func (m *Manager) Active() []action.Action {
	return append([]action.Action(nil), m.active...)
}

// Queued returns a copy of the queued successors, tombstones included
func (m *Manager) Queued() []action.Action {
	return append([]action.Action(nil), m.queued...)
}

// ToCancel returns a copy of the pending cancellation list
func (m *Manager) ToCancel() []action.Action {
	return append([]action.Action(nil), m.toCancel...)
}

// Completed returns the number of tombstones awaiting compaction
func (m *Manager) Completed() uint32 {
	return m.completed
}

// Live counts non-tombstone active entries
func (m *Manager) Live() int {
	n := 0
	for i := range m.active {
		if !m.active[i].IsCompleted() {
			n++
		}
	}
	return n
}

// ActiveFor returns the live active action occupying pawn
func (m *Manager) ActiveFor(pawn world.PawnID) (action.Action, bool) {
	for _, a := range m.active {
		if p, ok := a.Actor(); ok && p == pawn && !a.IsCompleted() {
			return a, true
		}
	}
	return action.Action{}, false
}

// Reset drops all state, leaving a freshly initialized scheduler with the same options
func (m *Manager) Reset() {
	m.active = m.active[:0]
	m.queued = m.queued[:0]
	m.toCancel = m.toCancel[:0]
	m.freeQueued = m.freeQueued[:0]
	m.liveQueued = 0
	m.completed = 0
}

func (m *Manager) bumpCompleted() {
	if m.completed < math.MaxUint32 {
		m.completed++
	}
}
