package handler

import (
	"testing"
	"time"

	"github.com/lixenwraith/vi-rts/action"
	"github.com/lixenwraith/vi-rts/clock"
	"github.com/lixenwraith/vi-rts/status"
	"github.com/lixenwraith/vi-rts/world"
)

type fixture struct {
	w     *world.World
	clock *clock.Manual
	reg   *Registry
	tune  Tuning
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mock := clock.NewManual(time.Unix(1000, 0))
	tune := DefaultTuning()
	return &fixture{
		w:     world.New(50, 50, mock, 7),
		clock: mock,
		reg:   NewRegistry(tune),
		tune:  tune,
	}
}

// run processes a until it finalizes or the step budget runs out, advancing time by dt per step
func (f *fixture) run(t *testing.T, a *action.Action, dt time.Duration, budget int) int {
	t.Helper()
	for i := 1; i <= budget; i++ {
		f.reg.Process(f.w, a)
		if a.Phase == action.Finalized {
			return i
		}
		f.clock.Advance(dt)
	}
	t.Fatalf("%v did not finalize within %d steps (phase %v)", a.Kind, budget, a.Phase)
	return 0
}

// refused steps a through a refused start: Initial goes to Finalizing, then Finalized
func (f *fixture) refused(t *testing.T, a *action.Action) {
	t.Helper()
	for _, want := range []action.Phase{action.Finalizing, action.Finalized} {
		f.reg.Process(f.w, a)
		if a.Phase != want {
			t.Fatalf("Expected refused %v to pass through %v, got %v", a.Kind, want, a.Phase)
		}
	}
}

func TestMove_WalksAndSettles(t *testing.T) {
	f := newFixture(t)
	pawn := f.w.AddPawn(world.V2(0, 0), 5)

	a := action.NewMove(pawn, world.V2(4, 0))
	f.reg.Process(f.w, &a)
	p, _ := f.w.Pawn(pawn)
	if a.Phase != action.Running || p.Anim != world.AnimWalk {
		t.Fatalf("Expected running walk after first step, got %v / %v", a.Phase, p.Anim)
	}

	f.run(t, &a, 0, 10)
	if p.Pos != world.V2(4, 0) || p.Anim != world.AnimIdle {
		t.Errorf("Expected pawn idle at target, got %v / %v", p.Pos, p.Anim)
	}
}

func TestMove_OnePhaseStepPerCall(t *testing.T) {
	f := newFixture(t)
	pawn := f.w.AddPawn(world.V2(0, 0), 5)
	a := action.NewMove(pawn, world.V2(1, 0))

	want := []action.Phase{action.Running, action.Finalizing, action.Finalized}
	for i, ph := range want {
		f.reg.Process(f.w, &a)
		if a.Phase != ph {
			t.Fatalf("Step %d: expected %v, got %v", i, ph, a.Phase)
		}
	}
}

func TestMove_CarriedResourceFollows(t *testing.T) {
	f := newFixture(t)
	pawn := f.w.AddPawn(world.V2(0, 0), 5)
	res := f.w.AddResource(world.V2(0, 0), world.ResourceWood)

	grab := action.NewGrabResource(pawn, res)
	f.run(t, &grab, 0, 5)

	move := action.NewMove(pawn, world.V2(3, 3))
	f.run(t, &move, 0, 10)

	r, _ := f.w.Resource(res)
	p, _ := f.w.Pawn(pawn)
	if r.Pos != world.V2(3, 3) {
		t.Errorf("Expected resource carried to (3,3), got %v", r.Pos)
	}
	if p.Anim != world.AnimCarry {
		t.Errorf("Expected carry animation at rest, got %v", p.Anim)
	}
}

func TestCutTree_FellsAndDropsWood(t *testing.T) {
	f := newFixture(t)
	pawn := f.w.AddPawn(world.V2(10, 10), 5)
	tree := f.w.AddTree(world.V2(10, 11), 3)

	a := action.NewCutTree(pawn, tree)
	f.run(t, &a, f.tune.ChopInterval, 20)

	if tree.Resolves(f.w) {
		t.Error("Expected tree felled")
	}
	wood := 0
	for _, r := range f.w.Resources {
		if r.Alive && r.Kind == world.ResourceWood {
			wood++
		}
	}
	if wood != f.tune.WoodYield {
		t.Errorf("Expected %d wood, got %d", f.tune.WoodYield, wood)
	}
}

func TestCutTree_WaitsForInterval(t *testing.T) {
	f := newFixture(t)
	pawn := f.w.AddPawn(world.V2(10, 10), 5)
	tree := f.w.AddTree(world.V2(10, 10), 2)

	a := action.NewCutTree(pawn, tree)
	f.reg.Process(f.w, &a)
	for i := 0; i < 5; i++ {
		f.reg.Process(f.w, &a)
	}
	tr, _ := f.w.Tree(tree)
	if tr.Wood != 2 {
		t.Errorf("Expected no chop before the interval, wood=%d", tr.Wood)
	}

	f.clock.Advance(f.tune.ChopInterval)
	f.reg.Process(f.w, &a)
	if tr.Wood != 1 {
		t.Errorf("Expected one chop after the interval, wood=%d", tr.Wood)
	}
}

func TestCutTree_OutOfReachIsRefused(t *testing.T) {
	f := newFixture(t)
	pawn := f.w.AddPawn(world.V2(0, 0), 5)
	tree := f.w.AddTree(world.V2(20, 20), 2)

	a := action.NewCutTree(pawn, tree)
	f.refused(t, &a)

	tr, ok := f.w.Tree(tree)
	if !ok || tr.Wood != 2 {
		t.Errorf("Expected unreachable tree untouched, ok=%v", ok)
	}
	if p, _ := f.w.Pawn(pawn); p.Anim != world.AnimIdle {
		t.Errorf("Expected idle pawn, got %v", p.Anim)
	}
	if len(f.w.Resources) != 0 {
		t.Errorf("Expected no wood dropped, got %d", len(f.w.Resources))
	}
}

func TestStaleReference_ForcesFinalizedAndResetsVisuals(t *testing.T) {
	f := newFixture(t)
	reg := status.NewRegistry()
	f.reg = NewRegistry(f.tune, WithStatus(reg))

	pawn := f.w.AddPawn(world.V2(5, 5), 5)
	tree := f.w.AddTree(world.V2(5, 5), 9)

	a := action.NewCutTree(pawn, tree)
	f.reg.Process(f.w, &a)
	f.reg.Process(f.w, &a)
	if a.Phase != action.Running {
		t.Fatalf("Expected running chop, got %v", a.Phase)
	}

	// Unrelated game logic removes the tree mid-action
	f.w.RemoveTree(tree)
	f.reg.Process(f.w, &a)

	p, _ := f.w.Pawn(pawn)
	if a.Phase != action.Finalized {
		t.Errorf("Expected forced finalization, got %v", a.Phase)
	}
	if p.Anim != world.AnimIdle {
		t.Errorf("Expected idle animation after stale finalization, got %v", p.Anim)
	}
	if got := reg.Counter("handler.stale").Load(); got != 1 {
		t.Errorf("Expected stale counter 1, got %d", got)
	}
}

func TestGrab_ContestedResource(t *testing.T) {
	f := newFixture(t)
	a1 := f.w.AddPawn(world.V2(1, 1), 5)
	a2 := f.w.AddPawn(world.V2(1, 1), 5)
	res := f.w.AddResource(world.V2(1, 1), world.ResourceGold)

	first := action.NewGrabResource(a1, res)
	f.reg.Process(f.w, &first)

	second := action.NewGrabResource(a2, res)
	f.refused(t, &second)
	if p, _ := f.w.Pawn(a2); p.Carries {
		t.Error("Loser must not carry anything")
	}
	if r, _ := f.w.Resource(res); !r.Held || r.Holder != a1 {
		t.Errorf("Expected first grabber to keep the resource, held=%v holder=%v", r.Held, r.Holder)
	}
}

func TestGrab_CancelReleasesIdempotently(t *testing.T) {
	f := newFixture(t)
	pawn := f.w.AddPawn(world.V2(1, 1), 5)
	res := f.w.AddResource(world.V2(1, 1), world.ResourceWood)

	a := action.NewGrabResource(pawn, res)
	f.reg.Process(f.w, &a)

	f.reg.Cancel(f.w, a)
	f.reg.Cancel(f.w, a)

	r, _ := f.w.Resource(res)
	p, _ := f.w.Pawn(pawn)
	if r.Held || p.Carries || p.Anim != world.AnimIdle {
		t.Errorf("Expected released resource and idle pawn, got held=%v carries=%v anim=%v", r.Held, p.Carries, p.Anim)
	}

	// Cancel before the action ever ran is also safe
	fresh := action.NewGrabResource(pawn, res)
	f.reg.Cancel(f.w, fresh)
}

func TestDeposit_StocksCarriedResource(t *testing.T) {
	f := newFixture(t)
	pile := f.w.AddStructure(world.V2(2, 2), world.StructureStockpile, 0)
	pawn := f.w.AddPawn(world.V2(2, 2), 5)
	res := f.w.AddResource(world.V2(2, 2), world.ResourceWood)

	grab := action.NewGrabResource(pawn, res)
	f.run(t, &grab, 0, 5)
	dep := action.NewDeposit(pawn, pile)
	f.run(t, &dep, 0, 5)

	if got := f.w.TotalStock(world.ResourceWood); got != 1 {
		t.Errorf("Expected 1 wood stocked, got %d", got)
	}
	if res.Resolves(f.w) {
		t.Error("Expected deposited resource consumed")
	}
	if p, _ := f.w.Pawn(pawn); p.Carries {
		t.Error("Expected empty hands after deposit")
	}
}

func TestDeposit_EmptyHandsIsRefused(t *testing.T) {
	f := newFixture(t)
	pile := f.w.AddStructure(world.V2(2, 2), world.StructureStockpile, 0)
	pawn := f.w.AddPawn(world.V2(2, 2), 5)

	dep := action.NewDeposit(pawn, pile)
	f.refused(t, &dep)
	if got := f.w.TotalStock(world.ResourceWood); got != 0 {
		t.Errorf("Expected nothing stocked, got %d", got)
	}
}

func TestSpawnResource_DropsCountOverTime(t *testing.T) {
	f := newFixture(t)
	a := action.NewSpawnResource(world.V2(25, 25), world.ResourceMeat, 3)

	f.run(t, &a, f.tune.SpawnInterval, 20)

	if len(f.w.Resources) != 3 {
		t.Errorf("Expected 3 resources spawned, got %d", len(f.w.Resources))
	}
	if a.Spawn.Spawned != 3 {
		t.Errorf("Expected spawned counter 3, got %d", a.Spawn.Spawned)
	}
}

func TestSpawnResource_OffMapIsStale(t *testing.T) {
	f := newFixture(t)
	a := action.NewSpawnResource(world.V2(-1, 5), world.ResourceWood, 2)
	f.reg.Process(f.w, &a)
	if a.Phase != action.Finalized || len(f.w.Resources) != 0 {
		t.Errorf("Expected off-map spawn to finalize without effect, got %v with %d resources", a.Phase, len(f.w.Resources))
	}
}

func TestStartMining_HidesThenYieldsGold(t *testing.T) {
	f := newFixture(t)
	mine := f.w.AddStructure(world.V2(8, 8), world.StructureGoldMine, 5)
	pawn := f.w.AddPawn(world.V2(8, 8), 5)

	a := action.NewStartMining(pawn, mine)
	f.reg.Process(f.w, &a)

	p, _ := f.w.Pawn(pawn)
	s, _ := f.w.Structure(mine)
	if !p.Hidden || s.Occupants != 1 {
		t.Fatalf("Expected pawn inside mine, hidden=%v occupants=%d", p.Hidden, s.Occupants)
	}

	f.run(t, &a, f.tune.MineDuration, 10)

	if p.Hidden || s.Occupants != 0 {
		t.Errorf("Expected pawn ejected, hidden=%v occupants=%d", p.Hidden, s.Occupants)
	}
	if s.Gold != 5-f.tune.GoldYield {
		t.Errorf("Expected mine gold %d, got %d", 5-f.tune.GoldYield, s.Gold)
	}
	if len(f.w.Resources) != int(f.tune.GoldYield) {
		t.Errorf("Expected %d gold dropped, got %d", f.tune.GoldYield, len(f.w.Resources))
	}
}

func TestStartMining_ExhaustedMineIsRefused(t *testing.T) {
	f := newFixture(t)
	mine := f.w.AddStructure(world.V2(8, 8), world.StructureGoldMine, 0)
	pawn := f.w.AddPawn(world.V2(8, 8), 5)

	a := action.NewStartMining(pawn, mine)
	f.refused(t, &a)

	p, _ := f.w.Pawn(pawn)
	s, _ := f.w.Structure(mine)
	if p.Hidden || s.Occupants != 0 || len(f.w.Resources) != 0 {
		t.Errorf("Expected no entry and no yield, hidden=%v occupants=%d resources=%d",
			p.Hidden, s.Occupants, len(f.w.Resources))
	}
}

func TestStartMining_CancelEjects(t *testing.T) {
	f := newFixture(t)
	mine := f.w.AddStructure(world.V2(8, 8), world.StructureGoldMine, 5)
	pawn := f.w.AddPawn(world.V2(8, 8), 5)

	a := action.NewStartMining(pawn, mine)
	f.reg.Process(f.w, &a)
	f.reg.Cancel(f.w, a)
	f.reg.Cancel(f.w, a)

	p, _ := f.w.Pawn(pawn)
	s, _ := f.w.Structure(mine)
	if p.Hidden || s.Occupants != 0 {
		t.Errorf("Expected single clean ejection, hidden=%v occupants=%d", p.Hidden, s.Occupants)
	}
}

func TestAttack_HuntSheepDropsMeat(t *testing.T) {
	f := newFixture(t)
	pawn := f.w.AddPawn(world.V2(3, 3), 5)
	sheep := f.w.AddSheep(world.V2(3, 4), 2)

	a := action.NewHuntSheep(pawn, sheep)
	f.run(t, &a, f.tune.AttackInterval, 20)

	if sheep.Resolves(f.w) {
		t.Error("Expected sheep killed")
	}
	if len(f.w.Resources) != f.tune.MeatYield {
		t.Errorf("Expected %d meat, got %d", f.tune.MeatYield, len(f.w.Resources))
	}
}

func TestAttack_TargetEscapes(t *testing.T) {
	f := newFixture(t)
	pawn := f.w.AddPawn(world.V2(3, 3), 5)
	victim := f.w.AddPawn(world.V2(3, 4), 5)

	a := action.NewAttackPawn(pawn, victim)
	f.reg.Process(f.w, &a)

	v, _ := f.w.Pawn(victim)
	v.Pos = world.V2(30, 30)
	f.run(t, &a, f.tune.AttackInterval, 5)

	if !victim.Resolves(f.w) || v.HP != 5 {
		t.Errorf("Expected escaped victim unharmed, hp=%d", v.HP)
	}
}

func TestAttack_SelfIsRejected(t *testing.T) {
	f := newFixture(t)
	pawn := f.w.AddPawn(world.V2(3, 3), 5)
	a := action.NewAttackPawn(pawn, pawn)
	f.refused(t, &a)
	if p, _ := f.w.Pawn(pawn); p.HP != 5 || p.Anim != world.AnimIdle {
		t.Errorf("Expected self attack to leave the pawn alone, hp=%d anim=%v", p.HP, p.Anim)
	}
}

func TestRegistry_TombstoneDispatchPanics(t *testing.T) {
	f := newFixture(t)
	defer func() {
		if recover() == nil {
			t.Error("Expected panic when a tombstone reaches the dispatcher")
		}
	}()
	tomb := action.Tombstone()
	f.reg.Process(f.w, &tomb)
}
