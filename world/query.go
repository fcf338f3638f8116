package world

// NearestTree returns the closest standing tree to pos
func (w *World) NearestTree(pos Vec2) (TreeID, bool) {
	best, found := TreeID(0), false
	var bestD int64
	for i := range w.Trees {
		t := &w.Trees[i]
		if !t.Alive {
			continue
		}
		if d := DistSq(pos, t.Pos); !found || d < bestD {
			best, bestD, found = TreeID(i), d, true
		}
	}
	return best, found
}

// NearestLooseResource returns the closest resource lying on the ground
func (w *World) NearestLooseResource(pos Vec2) (ResourceID, bool) {
	best, found := ResourceID(0), false
	var bestD int64
	for i := range w.Resources {
		r := &w.Resources[i]
		if !r.Alive || r.Held {
			continue
		}
		if d := DistSq(pos, r.Pos); !found || d < bestD {
			best, bestD, found = ResourceID(i), d, true
		}
	}
	return best, found
}

// NearestStructure returns the closest live structure of kind
// Gold mines with no gold left are skipped
func (w *World) NearestStructure(pos Vec2, kind StructureKind) (StructureID, bool) {
	best, found := StructureID(0), false
	var bestD int64
	for i := range w.Structures {
		s := &w.Structures[i]
		if !s.Alive || s.Kind != kind {
			continue
		}
		if kind == StructureGoldMine && s.Gold <= 0 {
			continue
		}
		if d := DistSq(pos, s.Pos); !found || d < bestD {
			best, bestD, found = StructureID(i), d, true
		}
	}
	return best, found
}

// NearestSheep returns the closest live sheep
func (w *World) NearestSheep(pos Vec2) (SheepID, bool) {
	best, found := SheepID(0), false
	var bestD int64
	for i := range w.Sheep {
		s := &w.Sheep[i]
		if !s.Alive {
			continue
		}
		if d := DistSq(pos, s.Pos); !found || d < bestD {
			best, bestD, found = SheepID(i), d, true
		}
	}
	return best, found
}

// LivePawns returns ids of every live pawn in index order
func (w *World) LivePawns() []PawnID {
	ids := make([]PawnID, 0, len(w.Pawns))
	for i := range w.Pawns {
		if w.Pawns[i].Alive {
			ids = append(ids, PawnID(i))
		}
	}
	return ids
}

// TotalStock sums stockpiled resources of kind across all stockpiles
func (w *World) TotalStock(kind ResourceKind) int32 {
	var total int32
	for i := range w.Structures {
		s := &w.Structures[i]
		if s.Alive && s.Kind == StructureStockpile {
			total += s.Stock[kind]
		}
	}
	return total
}
