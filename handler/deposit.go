package handler

import (
	"github.com/lixenwraith/vi-rts/action"
	"github.com/lixenwraith/vi-rts/world"
)

func depositHandler(t Tuning) Handler {
	return Handler{
		Validate: func(w *world.World, a action.Action) bool {
			return a.Deposit.Pawn.Resolves(w) && a.Deposit.Stockpile.Resolves(w)
		},
		Process: func(w *world.World, a *action.Action) {
			p, _ := w.Pawn(a.Deposit.Pawn)
			s, _ := w.Structure(a.Deposit.Stockpile)
			switch a.Phase {
			case action.Initial:
				if !p.Carries || s.Kind != world.StructureStockpile || !world.Within(p.Pos, s.Pos, t.Reach) {
					a.Phase = action.Finalizing
					return
				}
				a.Phase = action.Running

			case action.Running:
				if r, ok := w.Resource(p.Carrying); ok && r.Held && r.Holder == a.Deposit.Pawn {
					s.Stock[r.Kind]++
					w.RemoveResource(p.Carrying)
				}
				p.Carries = false
				p.Anim = world.AnimIdle
				a.Phase = action.Finalizing

			case action.Finalizing:
				a.Phase = action.Finalized
			}
		},
		Cancel: func(w *world.World, a action.Action) {
			settle(w, a.Deposit.Pawn)
		},
	}
}
