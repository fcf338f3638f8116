// Package engine drives the action scheduler on a fixed game-time tick
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/vi-rts/action"
	"github.com/lixenwraith/vi-rts/clock"
	"github.com/lixenwraith/vi-rts/save"
	"github.com/lixenwraith/vi-rts/scheduler"
	"github.com/lixenwraith/vi-rts/status"
	"github.com/lixenwraith/vi-rts/world"
)

// DefaultTickInterval is the game-time length of one tick
const DefaultTickInterval = 50 * time.Millisecond

// Planner is gameplay code run at the start of each tick
// It may read m but only ever pushes into buf
type Planner func(w *world.World, m *scheduler.Manager, buf *action.Buffer)

// Observer is called after every tick with the tick number and its report
// Observers run outside the simulation lock
type Observer func(tick uint64, r scheduler.Report)

// Simulation owns the world, the pending action buffer and the scheduler
// All mutation goes through the simulation lock so a view goroutine can read safely
type Simulation struct {
	mu       sync.Mutex
	world    *world.World
	buf      *action.Buffer
	mgr      *scheduler.Manager
	dispatch scheduler.Dispatcher
	clock    *clock.PausableClock

	tickInterval time.Duration
	tick         atomic.Uint64

	planners  []Planner
	observers []Observer
	schedOpts []scheduler.Option

	log       *slog.Logger
	statTicks *atomic.Int64
	statSaves *atomic.Int64
}

// Option configures a Simulation
type Option func(*Simulation)

// WithTickInterval sets the game-time tick length
func WithTickInterval(d time.Duration) Option {
	return func(s *Simulation) {
		if d > 0 {
			s.tickInterval = d
		}
	}
}

// WithLogger sets the logger, also handed to the scheduler
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStatus publishes engine and scheduler counters into reg
func WithStatus(reg *status.Registry) Option {
	return func(s *Simulation) {
		if reg == nil {
			return
		}
		eng := reg.Scope("engine")
		s.statTicks = eng.Counter("ticks")
		s.statSaves = eng.Counter("saves")
		s.schedOpts = append(s.schedOpts, scheduler.WithStatus(reg))
	}
}

// WithSchedulerOptions forwards options to every scheduler the simulation builds
func WithSchedulerOptions(opts ...scheduler.Option) Option {
	return func(s *Simulation) {
		s.schedOpts = append(s.schedOpts, opts...)
	}
}

// WithPlanner registers gameplay code run before each tick
func WithPlanner(p Planner) Option {
	return func(s *Simulation) {
		s.planners = append(s.planners, p)
	}
}

// WithObserver registers a per-tick observer
func WithObserver(o Observer) Option {
	return func(s *Simulation) {
		s.observers = append(s.observers, o)
	}
}

// New creates a simulation over w, dispatching actions to d
// clk must be the game clock w reads time from
func New(w *world.World, d scheduler.Dispatcher, clk *clock.PausableClock, opts ...Option) *Simulation {
	s := &Simulation{
		world:        w,
		buf:          action.NewBuffer(),
		dispatch:     d,
		clock:        clk,
		tickInterval: DefaultTickInterval,
		log:          slog.Default(),
		statTicks:    new(atomic.Int64),
		statSaves:    new(atomic.Int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mgr = s.newManager()
	return s
}

func (s *Simulation) newManager() *scheduler.Manager {
	opts := append([]scheduler.Option{scheduler.WithLogger(s.log)}, s.schedOpts...)
	return scheduler.New(s.dispatch, opts...)
}

// Step runs one tick: planners, then the scheduler pipeline
func (s *Simulation) Step() scheduler.Report {
	s.mu.Lock()
	for _, p := range s.planners {
		p(s.world, s.mgr, s.buf)
	}
	r := s.mgr.Tick(s.world, s.buf)
	n := s.tick.Add(1)
	s.mu.Unlock()

	s.statTicks.Add(1)
	for _, o := range s.observers {
		o(n, r)
	}
	return r
}

// Do runs fn with exclusive access to the world and the pending buffer
// Input handlers push orders through it; views read through it
func (s *Simulation) Do(fn func(w *world.World, buf *action.Buffer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.world, s.buf)
}

// Inspect runs fn with read access to the world and the scheduler
func (s *Simulation) Inspect(fn func(w *world.World, m *scheduler.Manager)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.world, s.mgr)
}

// Ticks returns the number of ticks run since start or the last restore
func (s *Simulation) Ticks() uint64 {
	return s.tick.Load()
}

// Pause freezes game time; Run stops ticking until Resume
func (s *Simulation) Pause() { s.clock.Pause() }

// Resume restarts game time
func (s *Simulation) Resume() { s.clock.Resume() }

// TogglePause flips the pause state and reports whether the simulation is now paused
func (s *Simulation) TogglePause() bool { return s.clock.Toggle() }

// Paused reports whether game time is frozen
func (s *Simulation) Paused() bool { return s.clock.IsPaused() }

// Run ticks on a fixed game-time interval until ctx is done
// Deadlines advance by whole intervals; falling more than two intervals behind resyncs instead of bursting
func (s *Simulation) Run(ctx context.Context) error {
	next := s.clock.Now().Add(s.tickInterval)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var sleep time.Duration
		if s.clock.IsPaused() {
			// Game time is frozen, so the deadline holds; poll slowly
			sleep = s.tickInterval * 2
		} else {
			now := s.clock.Now()
			if !now.Before(next) {
				s.Step()

				next = next.Add(s.tickInterval)
				if now.Sub(next) > s.tickInterval*2 {
					s.log.Debug("tick loop behind, resyncing", "behind", now.Sub(next))
					next = now.Add(s.tickInterval)
				}
			}
			sleep = max(next.Sub(s.clock.Now()), 0)
		}

		if sleep == 0 {
			continue
		}
		timer.Reset(sleep)
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Snapshot saves the scheduler image into slot
func (s *Simulation) Snapshot(ctx context.Context, store save.Store, slot string) error {
	s.mu.Lock()
	data, err := s.mgr.MarshalBinary()
	tick := s.tick.Load()
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	if err := store.Save(ctx, slot, save.Record{Tick: tick, Data: data}); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	s.statSaves.Add(1)
	s.log.Info("snapshot saved", "slot", slot, "tick", tick, "bytes", len(data))
	return nil
}

// Restore replaces the scheduler with the image saved in slot
// Every action the outgoing scheduler still owns is cancelled first and pending orders are dropped,
// so no hidden pawn, mine occupant or held resource outlives the actions being thrown away
// On any failure the simulation continues with a fresh scheduler and the error is returned
func (s *Simulation) Restore(ctx context.Context, store save.Store, slot string) error {
	rec, err := store.Load(ctx, slot)

	s.mu.Lock()
	dropped := s.discard()
	if err == nil {
		err = s.mgr.UnmarshalBinary(rec.Data)
	}
	if err == nil {
		s.tick.Store(rec.Tick)
	} else {
		s.mgr = s.newManager()
		s.tick.Store(0)
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("restore failed, starting fresh", "slot", slot, "dropped", dropped, "error", err)
		return fmt.Errorf("restore %q: %w", slot, err)
	}
	s.log.Info("snapshot restored", "slot", slot, "tick", rec.Tick, "dropped", dropped)
	return nil
}

// discard runs the cancel handler of every live action in the current scheduler,
// pending cancellations included, and empties the order buffer
// Caller holds s.mu
func (s *Simulation) discard() int {
	var n int
	for _, list := range [][]action.Action{s.mgr.ToCancel(), s.mgr.Active()} {
		for _, a := range list {
			if a.IsCompleted() {
				continue
			}
			s.dispatch.Cancel(s.world, a)
			n++
		}
	}
	s.buf.Drain()
	return n
}
