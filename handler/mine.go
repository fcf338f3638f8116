package handler

import (
	"github.com/lixenwraith/vi-rts/action"
	"github.com/lixenwraith/vi-rts/world"
)

func mineHandler(t Tuning) Handler {
	return Handler{
		Validate: func(w *world.World, a action.Action) bool {
			return a.Mine.Pawn.Resolves(w) && a.Mine.Mine.Resolves(w)
		},
		Process: func(w *world.World, a *action.Action) {
			p, _ := w.Pawn(a.Mine.Pawn)
			s, _ := w.Structure(a.Mine.Mine)
			switch a.Phase {
			case action.Initial:
				if s.Kind != world.StructureGoldMine || s.Gold <= 0 || p.Carries || p.Hidden ||
					!world.Within(p.Pos, s.Pos, t.Reach) {
					a.Phase = action.Finalizing
					return
				}
				p.Hidden, p.InMine = true, a.Mine.Mine
				p.Anim = world.AnimMine
				s.Occupants++
				a.Mine.Entered = now(w)
				a.Phase = action.Running

			case action.Running:
				if elapsed(w, a.Mine.Entered, t.MineDuration) {
					a.Phase = action.Finalizing
				}

			case action.Finalizing:
				if p.Hidden && p.InMine == a.Mine.Mine {
					yield := min(t.GoldYield, s.Gold)
					s.Gold -= yield
					eject(w, a.Mine.Pawn, a.Mine.Mine)
					w.ScatterResources(s.Pos, world.ResourceGold, int(yield), t.SpawnRadius)
				}
				a.Phase = action.Finalized
			}
		},
		Cancel: func(w *world.World, a action.Action) {
			eject(w, a.Mine.Pawn, a.Mine.Mine)
		},
	}
}

// eject brings a pawn out of the mine it is hidden in
func eject(w *world.World, pawn world.PawnID, mine world.StructureID) {
	p, ok := w.Pawn(pawn)
	if !ok || !p.Hidden || p.InMine != mine {
		return
	}
	p.Hidden = false
	p.Anim = restAnim(p)
	if s, ok := w.Structure(mine); ok && s.Occupants > 0 {
		s.Occupants--
	}
}
