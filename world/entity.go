package world

// PawnID indexes World.Pawns
type PawnID uint32

// TreeID indexes World.Trees
type TreeID uint32

// ResourceID indexes World.Resources
type ResourceID uint32

// StructureID indexes World.Structures
type StructureID uint32

// SheepID indexes World.Sheep
type SheepID uint32

// Resolves reports whether the id still names a live pawn
func (id PawnID) Resolves(w *World) bool {
	_, ok := w.Pawn(id)
	return ok
}

// Resolves reports whether the id still names a standing tree
func (id TreeID) Resolves(w *World) bool {
	_, ok := w.Tree(id)
	return ok
}

// Resolves reports whether the id still names a live resource
func (id ResourceID) Resolves(w *World) bool {
	_, ok := w.Resource(id)
	return ok
}

// Resolves reports whether the id still names a live structure
func (id StructureID) Resolves(w *World) bool {
	_, ok := w.Structure(id)
	return ok
}

// Resolves reports whether the id still names a live sheep
func (id SheepID) Resolves(w *World) bool {
	_, ok := w.SheepAt(id)
	return ok
}

// Anim is the visual state a pawn shows
type Anim uint8

const (
	AnimIdle Anim = iota
	AnimWalk
	AnimChop
	AnimCarry
	AnimMine
	AnimAttack
)

var animNames = [...]string{"idle", "walk", "chop", "carry", "mine", "attack"}

func (a Anim) String() string {
	if int(a) < len(animNames) {
		return animNames[a]
	}
	return "unknown"
}

// ResourceKind identifies a pickup type
type ResourceKind uint8

const (
	ResourceWood ResourceKind = iota
	ResourceGold
	ResourceMeat

	ResourceKindCount
)

var resourceNames = [...]string{"wood", "gold", "meat"}

func (k ResourceKind) String() string {
	if int(k) < len(resourceNames) {
		return resourceNames[k]
	}
	return "unknown"
}

// StructureKind identifies a building type
type StructureKind uint8

const (
	StructureStockpile StructureKind = iota
	StructureGoldMine
)

// Pawn is a controllable unit
type Pawn struct {
	Pos   Vec2
	Anim  Anim
	HP    int32
	Alive bool

	// Carried resource, valid while Carries is set
	Carrying ResourceID
	Carries  bool

	// Mine the pawn is inside, valid while Hidden is set
	InMine StructureID
	Hidden bool
}

// Tree holds choppable wood
type Tree struct {
	Pos   Vec2
	Wood  int32
	Alive bool
}

// Resource is a pickup lying on the ground or carried by a pawn
type Resource struct {
	Pos    Vec2
	Kind   ResourceKind
	Holder PawnID
	Held   bool
	Alive  bool
}

// Structure is a stockpile or a gold mine
type Structure struct {
	Pos       Vec2
	Kind      StructureKind
	Gold      int32
	Occupants int32
	Stock     [ResourceKindCount]int32
	Alive     bool
}

// Sheep is huntable wildlife
type Sheep struct {
	Pos   Vec2
	HP    int32
	Alive bool
}
