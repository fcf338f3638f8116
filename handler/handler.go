// Package handler implements the per-kind process/cancel/validate entry points the
// scheduler dispatches to. Handlers only touch the world through ids carried in the
// action payload; they never see scheduler state.
package handler

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/vi-rts/action"
	"github.com/lixenwraith/vi-rts/status"
	"github.com/lixenwraith/vi-rts/world"
)

// Handler is the entry-point triple for one action kind
// Process advances a.Phase at most one step per call
// Cancel must be idempotent and safe for an action that never left Initial
// Validate reports whether every id in the payload still resolves
type Handler struct {
	Process  func(w *world.World, a *action.Action)
	Cancel   func(w *world.World, a action.Action)
	Validate func(w *world.World, a action.Action) bool
}

// Tuning holds the gameplay constants handlers read
type Tuning struct {
	WalkSpeed      int32
	Reach          int32
	ChopInterval   time.Duration
	WoodYield      int
	MineDuration   time.Duration
	GoldYield      int32
	SpawnInterval  time.Duration
	SpawnRadius    int32
	AttackInterval time.Duration
	AttackDamage   int32
	MeatYield      int
}

// DefaultTuning returns the stock gameplay constants
func DefaultTuning() Tuning {
	return Tuning{
		WalkSpeed:      1,
		Reach:          1,
		ChopInterval:   500 * time.Millisecond,
		WoodYield:      2,
		MineDuration:   3 * time.Second,
		GoldYield:      3,
		SpawnInterval:  200 * time.Millisecond,
		SpawnRadius:    1,
		AttackInterval: 400 * time.Millisecond,
		AttackDamage:   1,
		MeatYield:      2,
	}
}

// Registry dispatches actions to their kind's handler
// It satisfies scheduler.Dispatcher
type Registry struct {
	table [action.KindCount]Handler
	log   *slog.Logger
	stale *atomic.Int64
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger for stale-reference traces
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithStatus publishes the stale-reference counter into reg
func WithStatus(reg *status.Registry) Option {
	return func(r *Registry) {
		if reg != nil {
			r.stale = reg.Counter("handler.stale")
		}
	}
}

// NewRegistry builds the dispatch table for every action kind
func NewRegistry(t Tuning, opts ...Option) *Registry {
	r := &Registry{
		log:   slog.Default(),
		stale: new(atomic.Int64),
	}
	r.table[action.KindMove] = moveHandler(t)
	r.table[action.KindCutTree] = cutTreeHandler(t)
	r.table[action.KindGrabResource] = grabHandler(t)
	r.table[action.KindSpawnResource] = spawnHandler(t)
	r.table[action.KindStartMining] = mineHandler(t)
	r.table[action.KindAttack] = attackHandler(t)
	r.table[action.KindDeposit] = depositHandler(t)

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup returns the handler for kind
// Tombstones have no handler: reaching one here means the scheduler dispatched a free slot
func (r *Registry) Lookup(kind action.Kind) Handler {
	if kind == action.KindCompleted {
		panic("handler: completed action dispatched")
	}
	if kind >= action.KindCount || r.table[kind].Process == nil {
		panic(fmt.Sprintf("handler: no handler for %v", kind))
	}
	return r.table[kind]
}

// Process validates a and runs its handler
// A stale reference resets visuals through Cancel and forces Finalized
func (r *Registry) Process(w *world.World, a *action.Action) {
	h := r.Lookup(a.Kind)
	if !h.Validate(w, *a) {
		h.Cancel(w, *a)
		a.Phase = action.Finalized
		r.stale.Add(1)
		r.log.Debug("stale action finalized", "action", *a)
		return
	}
	h.Process(w, a)
}

// Cancel runs the cancel handler for a
func (r *Registry) Cancel(w *world.World, a action.Action) {
	r.Lookup(a.Kind).Cancel(w, a)
}

// Validate reports whether a still resolves against w
func (r *Registry) Validate(w *world.World, a action.Action) bool {
	return r.Lookup(a.Kind).Validate(w, a)
}

// restAnim is the animation a pawn falls back to when its action ends
func restAnim(p *world.Pawn) world.Anim {
	if p.Carries {
		return world.AnimCarry
	}
	return world.AnimIdle
}

// settle puts the pawn back into its rest animation if it still exists
func settle(w *world.World, id world.PawnID) {
	if p, ok := w.Pawn(id); ok {
		p.Anim = restAnim(p)
	}
}

// elapsed reports whether d has passed since the stamp
func elapsed(w *world.World, stamp int64, d time.Duration) bool {
	return w.Now().UnixNano()-stamp >= int64(d)
}

func now(w *world.World) int64 {
	return w.Now().UnixNano()
}
