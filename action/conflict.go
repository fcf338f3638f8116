package action

// rule decides whether two actions of a registered kind pair can coexist
// Arguments arrive in registration order, so a rule only handles its own pair shape
type rule func(a, b Action) bool

var rules [KindCount][KindCount]rule

func init() {
	pawnExclusive := []Kind{KindMove, KindCutTree, KindStartMining, KindAttack}
	for _, a := range pawnExclusive {
		for _, b := range pawnExclusive {
			register(a, b, sameActor)
		}
	}

	register(KindGrabResource, KindGrabResource, samePawnOrResource)
	register(KindGrabResource, KindMove, sameActor)
	register(KindGrabResource, KindStartMining, sameActor)
	register(KindGrabResource, KindAttack, sameActor)

	register(KindDeposit, KindMove, sameActor)
	register(KindDeposit, KindGrabResource, sameActor)
	register(KindDeposit, KindDeposit, sameActor)
}

// register installs r for both argument orders
func register(a, b Kind, r rule) {
	rules[a][b] = r
	if a != b {
		rules[b][a] = func(x, y Action) bool { return r(y, x) }
	}
}

// Incompatible reports whether candidate cannot run while active is live
// Tombstones and unregistered pairs never conflict
func Incompatible(active, candidate Action) bool {
	if active.Kind >= KindCount || candidate.Kind >= KindCount {
		return false
	}
	r := rules[active.Kind][candidate.Kind]
	if r == nil {
		return false
	}
	return r(active, candidate)
}

func sameActor(a, b Action) bool {
	pa, okA := a.Actor()
	pb, okB := b.Actor()
	return okA && okB && pa == pb
}

func samePawnOrResource(a, b Action) bool {
	return a.Grab.Pawn == b.Grab.Pawn || a.Grab.Resource == b.Grab.Resource
}
