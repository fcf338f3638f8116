package handler

import (
	"github.com/lixenwraith/vi-rts/action"
	"github.com/lixenwraith/vi-rts/world"
)

func moveHandler(t Tuning) Handler {
	return Handler{
		Validate: func(w *world.World, a action.Action) bool {
			return a.Move.Pawn.Resolves(w)
		},
		Process: func(w *world.World, a *action.Action) {
			p, _ := w.Pawn(a.Move.Pawn)
			switch a.Phase {
			case action.Initial:
				if !p.Carries {
					p.Anim = world.AnimWalk
				}
				a.Phase = action.Running

			case action.Running:
				to := world.Clamp(a.Move.To, w.Width, w.Height)
				p.Pos = world.StepToward(p.Pos, to, t.WalkSpeed)
				carry(w, p)
				if p.Pos == to {
					a.Phase = action.Finalizing
				}

			case action.Finalizing:
				p.Anim = restAnim(p)
				a.Phase = action.Finalized
			}
		},
		Cancel: func(w *world.World, a action.Action) {
			settle(w, a.Move.Pawn)
		},
	}
}

// carry keeps a held resource on top of its pawn
func carry(w *world.World, p *world.Pawn) {
	if !p.Carries {
		return
	}
	if r, ok := w.Resource(p.Carrying); ok {
		r.Pos = p.Pos
	}
}
