package handler

import (
	"github.com/lixenwraith/vi-rts/action"
	"github.com/lixenwraith/vi-rts/world"
)

func cutTreeHandler(t Tuning) Handler {
	return Handler{
		Validate: func(w *world.World, a action.Action) bool {
			return a.CutTree.Pawn.Resolves(w) && a.CutTree.Tree.Resolves(w)
		},
		Process: func(w *world.World, a *action.Action) {
			p, _ := w.Pawn(a.CutTree.Pawn)
			tree, _ := w.Tree(a.CutTree.Tree)
			switch a.Phase {
			case action.Initial:
				if p.Hidden || !world.Within(p.Pos, tree.Pos, t.Reach) {
					a.Phase = action.Finalizing
					return
				}
				p.Anim = world.AnimChop
				a.CutTree.LastChop = now(w)
				a.Phase = action.Running

			case action.Running:
				if !elapsed(w, a.CutTree.LastChop, t.ChopInterval) {
					return
				}
				a.CutTree.LastChop = now(w)
				tree.Wood--
				if tree.Wood <= 0 {
					a.Phase = action.Finalizing
				}

			case action.Finalizing:
				// A refused chop reaches here with the tree still standing
				if tree.Wood <= 0 {
					w.RemoveTree(a.CutTree.Tree)
					w.ScatterResources(tree.Pos, world.ResourceWood, t.WoodYield, t.SpawnRadius)
				}
				p.Anim = restAnim(p)
				a.Phase = action.Finalized
			}
		},
		Cancel: func(w *world.World, a action.Action) {
			settle(w, a.CutTree.Pawn)
		},
	}
}
