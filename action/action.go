// Package action holds the plain-data description of deferred unit work: the tagged
// Action value, its lifecycle phase, the per-tick staging buffer, the pairwise
// conflict table and the fixed-size binary record codec.
package action

import (
	"fmt"

	"github.com/lixenwraith/vi-rts/world"
)

// Kind is the discriminant of the Action union
type Kind uint8

const (
	// KindCompleted is the empty variant, only ever paired with Finalized
	KindCompleted Kind = iota
	KindMove
	KindCutTree
	KindGrabResource
	KindSpawnResource
	KindStartMining
	KindAttack
	KindDeposit

	KindCount
)

var kindNames = [KindCount]string{
	"completed", "move", "cut_tree", "grab_resource", "spawn_resource", "start_mining", "attack", "deposit",
}

func (k Kind) String() string {
	if k < KindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Phase is the lifecycle step of an action, advanced at most once per tick by its handler
type Phase uint8

const (
	Initial Phase = iota
	Running
	Finalizing
	Finalized

	phaseCount
)

var phaseNames = [phaseCount]string{"initial", "running", "finalizing", "finalized"}

func (p Phase) String() string {
	if p < phaseCount {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Link references a successor action by index
// Inside a Buffer it indexes the buffer, inside the scheduler it indexes the queued list
// The zero value means no successor
type Link uint32

// NoLink is the end-of-chain sentinel
const NoLink Link = 0

// LinkTo builds a link to index i
func LinkTo(i int) Link {
	return Link(i + 1)
}

// Index returns the referenced index, false for NoLink
func (l Link) Index() (int, bool) {
	if l == NoLink {
		return 0, false
	}
	return int(l - 1), true
}

// TargetKind selects what an attack is aimed at
type TargetKind uint8

const (
	TargetPawn TargetKind = iota
	TargetSheep
)

// MoveData walks a pawn to a point
type MoveData struct {
	Pawn world.PawnID
	To   world.Vec2
}

// CutTreeData chops a tree down
type CutTreeData struct {
	Pawn     world.PawnID
	Tree     world.TreeID
	LastChop int64 // game time, unix nanos
}

// GrabData picks a resource up
type GrabData struct {
	Pawn     world.PawnID
	Resource world.ResourceID
}

// SpawnData drops Count resources at a point, one per spawn interval
type SpawnData struct {
	At        world.Vec2
	Resource  world.ResourceKind
	Count     uint16
	Spawned   uint16
	LastSpawn int64
}

// MineData sends a pawn into a gold mine
type MineData struct {
	Pawn    world.PawnID
	Mine    world.StructureID
	Entered int64
}

// AttackData strikes a pawn or a sheep until it dies or escapes
type AttackData struct {
	Pawn    world.PawnID
	Target  uint32
	Against TargetKind
	LastHit int64
}

// Victim returns the attacked pawn when Against is TargetPawn
func (d AttackData) Victim() world.PawnID {
	return world.PawnID(d.Target)
}

// Prey returns the attacked sheep when Against is TargetSheep
func (d AttackData) Prey() world.SheepID {
	return world.SheepID(d.Target)
}

// DepositData drops the carried resource into a stockpile
type DepositData struct {
	Pawn      world.PawnID
	Stockpile world.StructureID
}

// Action is one unit of deferred multi-tick work
// It is a comparable value: copying it between lists never shares state
// Only the payload field matching Kind is meaningful
type Action struct {
	Kind  Kind
	Phase Phase
	Next  Link

	Move    MoveData
	CutTree CutTreeData
	Grab    GrabData
	Spawn   SpawnData
	Mine    MineData
	Attack  AttackData
	Deposit DepositData
}

// Tombstone returns the free-slot marker
func Tombstone() Action {
	return Action{Kind: KindCompleted, Phase: Finalized}
}

// IsCompleted reports whether the action is a tombstone
func (a Action) IsCompleted() bool {
	return a.Kind == KindCompleted
}

// NewMove creates a walk order
func NewMove(pawn world.PawnID, to world.Vec2) Action {
	return Action{Kind: KindMove, Move: MoveData{Pawn: pawn, To: to}}
}

// NewCutTree creates a chop order
func NewCutTree(pawn world.PawnID, tree world.TreeID) Action {
	return Action{Kind: KindCutTree, CutTree: CutTreeData{Pawn: pawn, Tree: tree}}
}

// NewGrabResource creates a pickup order
func NewGrabResource(pawn world.PawnID, res world.ResourceID) Action {
	return Action{Kind: KindGrabResource, Grab: GrabData{Pawn: pawn, Resource: res}}
}

// NewSpawnResource creates a timed resource drop
func NewSpawnResource(at world.Vec2, kind world.ResourceKind, count uint16) Action {
	return Action{Kind: KindSpawnResource, Spawn: SpawnData{At: at, Resource: kind, Count: count}}
}

// NewStartMining creates a mining order
func NewStartMining(pawn world.PawnID, mine world.StructureID) Action {
	return Action{Kind: KindStartMining, Mine: MineData{Pawn: pawn, Mine: mine}}
}

// NewAttackPawn creates an attack order against another pawn
func NewAttackPawn(pawn, victim world.PawnID) Action {
	return Action{Kind: KindAttack, Attack: AttackData{Pawn: pawn, Target: uint32(victim), Against: TargetPawn}}
}

// NewHuntSheep creates an attack order against a sheep
func NewHuntSheep(pawn world.PawnID, prey world.SheepID) Action {
	return Action{Kind: KindAttack, Attack: AttackData{Pawn: pawn, Target: uint32(prey), Against: TargetSheep}}
}

// NewDeposit creates a stockpile delivery order
func NewDeposit(pawn world.PawnID, stockpile world.StructureID) Action {
	return Action{Kind: KindDeposit, Deposit: DepositData{Pawn: pawn, Stockpile: stockpile}}
}

// Actor returns the pawn this action occupies
func (a Action) Actor() (world.PawnID, bool) {
	switch a.Kind {
	case KindMove:
		return a.Move.Pawn, true
	case KindCutTree:
		return a.CutTree.Pawn, true
	case KindGrabResource:
		return a.Grab.Pawn, true
	case KindStartMining:
		return a.Mine.Pawn, true
	case KindAttack:
		return a.Attack.Pawn, true
	case KindDeposit:
		return a.Deposit.Pawn, true
	}
	return 0, false
}

func (a Action) String() string {
	if pawn, ok := a.Actor(); ok {
		return fmt.Sprintf("%s[pawn=%d %s]", a.Kind, pawn, a.Phase)
	}
	return fmt.Sprintf("%s[%s]", a.Kind, a.Phase)
}
