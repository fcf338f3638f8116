package handler

import (
	"github.com/lixenwraith/vi-rts/action"
	"github.com/lixenwraith/vi-rts/world"
)

func attackHandler(t Tuning) Handler {
	return Handler{
		Validate: func(w *world.World, a action.Action) bool {
			if !a.Attack.Pawn.Resolves(w) {
				return false
			}
			if a.Attack.Against == action.TargetSheep {
				return a.Attack.Prey().Resolves(w)
			}
			return a.Attack.Victim().Resolves(w)
		},
		Process: func(w *world.World, a *action.Action) {
			p, _ := w.Pawn(a.Attack.Pawn)
			pos, hp := target(w, a.Attack)
			switch a.Phase {
			case action.Initial:
				self := a.Attack.Against == action.TargetPawn && a.Attack.Victim() == a.Attack.Pawn
				if self || p.Hidden {
					a.Phase = action.Finalizing
					return
				}
				p.Anim = world.AnimAttack
				a.Attack.LastHit = now(w)
				a.Phase = action.Running

			case action.Running:
				if *hp <= 0 || !world.Within(p.Pos, pos, t.Reach) {
					a.Phase = action.Finalizing
					return
				}
				if !elapsed(w, a.Attack.LastHit, t.AttackInterval) {
					return
				}
				a.Attack.LastHit = now(w)
				*hp -= t.AttackDamage
				if *hp <= 0 {
					a.Phase = action.Finalizing
				}

			case action.Finalizing:
				if *hp <= 0 {
					kill(w, a.Attack, pos, t)
				}
				p.Anim = restAnim(p)
				a.Phase = action.Finalized
			}
		},
		Cancel: func(w *world.World, a action.Action) {
			settle(w, a.Attack.Pawn)
		},
	}
}

// target returns the attacked entity's position and a pointer to its health
// Only called after Validate, so the lookup always succeeds
func target(w *world.World, d action.AttackData) (world.Vec2, *int32) {
	if d.Against == action.TargetSheep {
		s, _ := w.SheepAt(d.Prey())
		return s.Pos, &s.HP
	}
	v, _ := w.Pawn(d.Victim())
	return v.Pos, &v.HP
}

func kill(w *world.World, d action.AttackData, pos world.Vec2, t Tuning) {
	if d.Against == action.TargetSheep {
		w.RemoveSheep(d.Prey())
		w.ScatterResources(pos, world.ResourceMeat, t.MeatYield, t.SpawnRadius)
		return
	}
	w.RemovePawn(d.Victim())
}
