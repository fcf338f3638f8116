package handler

import (
	"github.com/lixenwraith/vi-rts/action"
	"github.com/lixenwraith/vi-rts/world"
)

func spawnHandler(t Tuning) Handler {
	return Handler{
		Validate: func(w *world.World, a action.Action) bool {
			at := a.Spawn.At
			return at.X >= 0 && at.Y >= 0 && at.X < w.Width && at.Y < w.Height
		},
		Process: func(w *world.World, a *action.Action) {
			switch a.Phase {
			case action.Initial:
				a.Spawn.LastSpawn = now(w)
				a.Phase = action.Running

			case action.Running:
				if a.Spawn.Spawned >= a.Spawn.Count {
					a.Phase = action.Finalizing
					return
				}
				if !elapsed(w, a.Spawn.LastSpawn, t.SpawnInterval) {
					return
				}
				w.ScatterResources(a.Spawn.At, a.Spawn.Resource, 1, t.SpawnRadius)
				a.Spawn.Spawned++
				a.Spawn.LastSpawn = now(w)

			case action.Finalizing:
				a.Phase = action.Finalized
			}
		},
		// Resources already dropped stay on the map
		Cancel: func(*world.World, action.Action) {},
	}
}
