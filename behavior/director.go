// Package behavior is the gameplay code that hands out jobs to idle pawns
// It only ever pushes actions; the scheduler decides what runs
package behavior

import (
	"log/slog"
	"time"

	"github.com/lixenwraith/vi-rts/action"
	"github.com/lixenwraith/vi-rts/world"
)

// Job is a kind of work chain the director can hand out
type Job uint8

const (
	JobWoodcutting Job = iota
	JobHauling
	JobMining
	JobHunting
	jobCount
)

func (j Job) String() string {
	switch j {
	case JobWoodcutting:
		return "woodcutting"
	case JobHauling:
		return "hauling"
	case JobMining:
		return "mining"
	case JobHunting:
		return "hunting"
	default:
		return "unknown"
	}
}

// DefaultCooldown is the minimum game time between two orders to the same pawn
const DefaultCooldown = 2 * time.Second

// Orders reports the action a pawn is currently carrying out
// *scheduler.Manager satisfies it
type Orders interface {
	ActiveFor(pawn world.PawnID) (action.Action, bool)
}

// Director assigns work chains round-robin to pawns with no live action
type Director struct {
	cooldown time.Duration
	log      *slog.Logger

	ready  map[world.PawnID]time.Time
	rounds map[world.PawnID]int
	issued [jobCount]int
}

// Option configures a Director
type Option func(*Director)

// WithCooldown sets the per-pawn cooldown
func WithCooldown(d time.Duration) Option {
	return func(dr *Director) {
		if d > 0 {
			dr.cooldown = d
		}
	}
}

// WithLogger sets the logger for job assignment traces
func WithLogger(l *slog.Logger) Option {
	return func(dr *Director) {
		if l != nil {
			dr.log = l
		}
	}
}

// NewDirector creates a director
func NewDirector(opts ...Option) *Director {
	d := &Director{
		cooldown: DefaultCooldown,
		log:      slog.Default(),
		ready:    make(map[world.PawnID]time.Time),
		rounds:   make(map[world.PawnID]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Issued returns how many chains of job were pushed
func (d *Director) Issued(j Job) int {
	if j >= jobCount {
		return 0
	}
	return d.issued[j]
}

// Plan pushes one chain for every pawn without a live action whose cooldown has passed
// A chain stays live in orders from its first link until its last one finalizes,
// so pawns between two links or walking with a load are never re-tasked
func (d *Director) Plan(w *world.World, orders Orders, buf *action.Buffer) {
	now := w.Now()
	for _, id := range w.LivePawns() {
		p, _ := w.Pawn(id)
		if p.Hidden {
			continue
		}
		if _, busy := orders.ActiveFor(id); busy {
			continue
		}
		if now.Before(d.ready[id]) {
			continue
		}

		// A loaded pawn always heads home first
		if p.Carries {
			if d.haulHome(w, buf, id, p) {
				d.ready[id] = now.Add(d.cooldown)
			}
			continue
		}

		start := (int(id) + d.rounds[id]) % int(jobCount)
		for k := range int(jobCount) {
			j := Job((start + k) % int(jobCount))
			if d.assign(w, buf, j, id, p) {
				d.issued[j]++
				d.rounds[id]++
				d.ready[id] = now.Add(d.cooldown)
				d.log.Debug("job assigned", "pawn", id, "job", j)
				break
			}
		}
	}
}

func (d *Director) assign(w *world.World, buf *action.Buffer, j Job, id world.PawnID, p *world.Pawn) bool {
	switch j {
	case JobWoodcutting:
		tree, ok := w.NearestTree(p.Pos)
		if !ok {
			return false
		}
		t, _ := w.Tree(tree)
		buf.PushChain(action.NewMove(id, t.Pos), action.NewCutTree(id, tree))

	case JobHauling:
		res, ok := w.NearestLooseResource(p.Pos)
		if !ok {
			return false
		}
		pile, ok := w.NearestStructure(p.Pos, world.StructureStockpile)
		if !ok {
			return false
		}
		r, _ := w.Resource(res)
		s, _ := w.Structure(pile)
		buf.PushChain(
			action.NewMove(id, r.Pos),
			action.NewGrabResource(id, res),
			action.NewMove(id, s.Pos),
			action.NewDeposit(id, pile),
		)

	case JobMining:
		mine, ok := w.NearestStructure(p.Pos, world.StructureGoldMine)
		if !ok {
			return false
		}
		s, _ := w.Structure(mine)
		buf.PushChain(action.NewMove(id, s.Pos), action.NewStartMining(id, mine))

	case JobHunting:
		sheep, ok := w.NearestSheep(p.Pos)
		if !ok {
			return false
		}
		sh, _ := w.SheepAt(sheep)
		buf.PushChain(action.NewMove(id, sh.Pos), action.NewHuntSheep(id, sheep))

	default:
		return false
	}
	return true
}

func (d *Director) haulHome(w *world.World, buf *action.Buffer, id world.PawnID, p *world.Pawn) bool {
	pile, ok := w.NearestStructure(p.Pos, world.StructureStockpile)
	if !ok {
		return false
	}
	s, _ := w.Structure(pile)
	buf.PushChain(action.NewMove(id, s.Pos), action.NewDeposit(id, pile))
	d.issued[JobHauling]++
	return true
}
