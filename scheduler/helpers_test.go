package scheduler

import (
	"testing"
	"time"

	"github.com/lixenwraith/vi-rts/action"
	"github.com/lixenwraith/vi-rts/clock"
	"github.com/lixenwraith/vi-rts/world"
)

// stepDispatcher advances every action one phase per Process call
// Move.To.X doubles as an identity tag so tests can count finalizations per action
type stepDispatcher struct {
	t *testing.T

	// instant finalizes on the first Process call
	instant bool
	// stale pawns fail validation and are forced to Finalized
	stale map[world.PawnID]bool

	processed []action.Action
	cancelled []action.Action
	finalized map[int32]int
}

func newStepDispatcher(t *testing.T) *stepDispatcher {
	return &stepDispatcher{t: t, stale: map[world.PawnID]bool{}, finalized: map[int32]int{}}
}

func (d *stepDispatcher) Process(_ *world.World, a *action.Action) {
	if a.IsCompleted() {
		d.t.Fatalf("tombstone dispatched to Process")
	}
	if a.Phase == action.Finalized {
		d.t.Fatalf("finalized action %v dispatched to Process", a)
	}
	d.processed = append(d.processed, *a)

	if pawn, ok := a.Actor(); ok && d.stale[pawn] {
		a.Phase = action.Finalized
		return
	}
	if d.instant {
		a.Phase = action.Finalized
		d.finalized[a.Move.To.X]++
		return
	}
	switch a.Phase {
	case action.Initial:
		a.Phase = action.Running
	case action.Running:
		a.Phase = action.Finalizing
	case action.Finalizing:
		a.Phase = action.Finalized
		d.finalized[a.Move.To.X]++
	}
}

func (d *stepDispatcher) Cancel(_ *world.World, a action.Action) {
	if a.IsCompleted() {
		d.t.Fatalf("tombstone dispatched to Cancel")
	}
	d.cancelled = append(d.cancelled, a)
}

func newTestWorld() *world.World {
	return world.New(200, 200, clock.NewManual(time.Unix(0, 0)), 1)
}

// tagged builds a move whose target X identifies it
func tagged(pawn world.PawnID, tag int32) action.Action {
	return action.NewMove(pawn, world.V2(tag, 0))
}

func liveActions(m *Manager) []action.Action {
	var out []action.Action
	for _, a := range m.Active() {
		if !a.IsCompleted() {
			out = append(out, a)
		}
	}
	return out
}
