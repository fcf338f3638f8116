package world

import "github.com/lixenwraith/vi-rts/clock"

// Layout describes a generated map
type Layout struct {
	Width, Height int32
	Pawns         int
	Trees         int
	Mines         int
	Sheep         int

	PawnHP   int32
	SheepHP  int32
	TreeWood int32
	MineGold int32
}

// DefaultLayout is a small map used by the demo and tests
func DefaultLayout() Layout {
	return Layout{
		Width:    80,
		Height:   24,
		Pawns:    6,
		Trees:    20,
		Mines:    2,
		Sheep:    4,
		PawnHP:   10,
		SheepHP:  4,
		TreeWood: 3,
		MineGold: 12,
	}
}

// Generate builds a deterministic world: one stockpile at the center, the rest scattered
func Generate(seed uint64, l Layout, src clock.Source) *World {
	w := New(l.Width, l.Height, src, seed)
	center := V2(l.Width/2, l.Height/2)

	w.AddStructure(center, StructureStockpile, 0)
	for range l.Mines {
		w.AddStructure(w.randomPos(), StructureGoldMine, l.MineGold)
	}
	for range l.Trees {
		w.AddTree(w.randomPos(), l.TreeWood)
	}
	for range l.Pawns {
		w.AddPawn(w.jitter(center, 3), l.PawnHP)
	}
	for range l.Sheep {
		w.AddSheep(w.randomPos(), l.SheepHP)
	}
	return w
}

func (w *World) randomPos() Vec2 {
	return V2(int32(w.rng.IntN(int(w.Width))), int32(w.rng.IntN(int(w.Height))))
}
