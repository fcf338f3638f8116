package handler

import (
	"github.com/lixenwraith/vi-rts/action"
	"github.com/lixenwraith/vi-rts/world"
)

func grabHandler(t Tuning) Handler {
	return Handler{
		Validate: func(w *world.World, a action.Action) bool {
			return a.Grab.Pawn.Resolves(w) && a.Grab.Resource.Resolves(w)
		},
		Process: func(w *world.World, a *action.Action) {
			p, _ := w.Pawn(a.Grab.Pawn)
			r, _ := w.Resource(a.Grab.Resource)
			switch a.Phase {
			case action.Initial:
				contested := r.Held && r.Holder != a.Grab.Pawn
				busy := p.Carries && p.Carrying != a.Grab.Resource
				if contested || busy || p.Hidden || !world.Within(p.Pos, r.Pos, t.Reach) {
					a.Phase = action.Finalizing
					return
				}
				r.Held, r.Holder = true, a.Grab.Pawn
				p.Carries, p.Carrying = true, a.Grab.Resource
				p.Anim = world.AnimCarry
				a.Phase = action.Running

			case action.Running:
				r.Pos = p.Pos
				a.Phase = action.Finalizing

			case action.Finalizing:
				a.Phase = action.Finalized
			}
		},
		Cancel: func(w *world.World, a action.Action) {
			if r, ok := w.Resource(a.Grab.Resource); ok && r.Held && r.Holder == a.Grab.Pawn {
				r.Held = false
			}
			if p, ok := w.Pawn(a.Grab.Pawn); ok {
				if p.Carries && p.Carrying == a.Grab.Resource {
					p.Carries = false
				}
				p.Anim = restAnim(p)
			}
		},
	}
}
