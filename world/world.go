package world

import (
	"math/rand/v2"
	"time"

	"github.com/lixenwraith/vi-rts/clock"
)

// World owns every entity array the action handlers read and write
// Entities are never reclaimed: removal clears Alive so stale indices fail to resolve
type World struct {
	Width, Height int32

	Pawns      []Pawn
	Trees      []Tree
	Resources  []Resource
	Structures []Structure
	Sheep      []Sheep

	Clock clock.Source
	rng   *rand.Rand
}

// New creates an empty world of the given size
func New(width, height int32, src clock.Source, seed uint64) *World {
	if src == nil {
		src = clock.Wall{}
	}
	return &World{
		Width:  width,
		Height: height,
		Clock:  src,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Now returns game time
func (w *World) Now() time.Time {
	return w.Clock.Now()
}

// Pawn returns the live pawn at id
func (w *World) Pawn(id PawnID) (*Pawn, bool) {
	if int(id) >= len(w.Pawns) || !w.Pawns[id].Alive {
		return nil, false
	}
	return &w.Pawns[id], true
}

// Tree returns the standing tree at id
func (w *World) Tree(id TreeID) (*Tree, bool) {
	if int(id) >= len(w.Trees) || !w.Trees[id].Alive {
		return nil, false
	}
	return &w.Trees[id], true
}

// Resource returns the live resource at id
func (w *World) Resource(id ResourceID) (*Resource, bool) {
	if int(id) >= len(w.Resources) || !w.Resources[id].Alive {
		return nil, false
	}
	return &w.Resources[id], true
}

// Structure returns the live structure at id
func (w *World) Structure(id StructureID) (*Structure, bool) {
	if int(id) >= len(w.Structures) || !w.Structures[id].Alive {
		return nil, false
	}
	return &w.Structures[id], true
}

// SheepAt returns the live sheep at id
func (w *World) SheepAt(id SheepID) (*Sheep, bool) {
	if int(id) >= len(w.Sheep) || !w.Sheep[id].Alive {
		return nil, false
	}
	return &w.Sheep[id], true
}

// AddPawn spawns a pawn with full health
func (w *World) AddPawn(pos Vec2, hp int32) PawnID {
	w.Pawns = append(w.Pawns, Pawn{Pos: pos, HP: hp, Alive: true})
	return PawnID(len(w.Pawns) - 1)
}

// AddTree plants a tree holding wood chops
func (w *World) AddTree(pos Vec2, wood int32) TreeID {
	w.Trees = append(w.Trees, Tree{Pos: pos, Wood: wood, Alive: true})
	return TreeID(len(w.Trees) - 1)
}

// AddResource drops a resource on the ground
func (w *World) AddResource(pos Vec2, kind ResourceKind) ResourceID {
	w.Resources = append(w.Resources, Resource{Pos: pos, Kind: kind, Alive: true})
	return ResourceID(len(w.Resources) - 1)
}

// AddStructure places a building
func (w *World) AddStructure(pos Vec2, kind StructureKind, gold int32) StructureID {
	w.Structures = append(w.Structures, Structure{Pos: pos, Kind: kind, Gold: gold, Alive: true})
	return StructureID(len(w.Structures) - 1)
}

// AddSheep spawns a sheep
func (w *World) AddSheep(pos Vec2, hp int32) SheepID {
	w.Sheep = append(w.Sheep, Sheep{Pos: pos, HP: hp, Alive: true})
	return SheepID(len(w.Sheep) - 1)
}

// RemovePawn kills a pawn and drops whatever it carries
func (w *World) RemovePawn(id PawnID) {
	p, ok := w.Pawn(id)
	if !ok {
		return
	}
	if p.Carries {
		if r, ok := w.Resource(p.Carrying); ok && r.Held && r.Holder == id {
			r.Held = false
			r.Pos = p.Pos
		}
	}
	if p.Hidden {
		if s, ok := w.Structure(p.InMine); ok && s.Occupants > 0 {
			s.Occupants--
		}
	}
	*p = Pawn{Pos: p.Pos}
}

// RemoveTree fells a tree
func (w *World) RemoveTree(id TreeID) {
	if t, ok := w.Tree(id); ok {
		t.Alive = false
	}
}

// RemoveResource consumes a resource
func (w *World) RemoveResource(id ResourceID) {
	if r, ok := w.Resource(id); ok {
		r.Alive = false
		r.Held = false
	}
}

// RemoveSheep kills a sheep
func (w *World) RemoveSheep(id SheepID) {
	if s, ok := w.SheepAt(id); ok {
		s.Alive = false
		s.HP = 0
	}
}

// ScatterResources drops n resources of kind around pos within radius, clamped to the map
func (w *World) ScatterResources(pos Vec2, kind ResourceKind, n int, radius int32) []ResourceID {
	ids := make([]ResourceID, 0, n)
	for range n {
		ids = append(ids, w.AddResource(w.jitter(pos, radius), kind))
	}
	return ids
}

func (w *World) jitter(pos Vec2, radius int32) Vec2 {
	if radius <= 0 {
		return pos
	}
	span := int(radius)*2 + 1
	off := Vec2{
		X: int32(w.rng.IntN(span)) - radius,
		Y: int32(w.rng.IntN(span)) - radius,
	}
	return Clamp(pos.Add(off), w.Width, w.Height)
}
