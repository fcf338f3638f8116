package action

import (
	"encoding/binary"

	"github.com/lixenwraith/vi-rts/world"
)

const (
	// RecordWords is the fixed encoded size of one Action in 32-bit words
	RecordWords = 10
	// RecordSize is RecordWords in bytes
	RecordSize = RecordWords * 4

	headerWords = 3
)

// AppendRecord encodes a as one fixed-size little-endian record
// Layout: tag, phase, next, then the payload of the tagged kind, zero padded
func AppendRecord(dst []byte, a Action) []byte {
	var w [RecordWords]uint32
	w[0] = uint32(a.Kind)
	w[1] = uint32(a.Phase)
	w[2] = uint32(a.Next)

	p := w[headerWords:]
	switch a.Kind {
	case KindMove:
		p[0] = uint32(a.Move.Pawn)
		p[1] = uint32(a.Move.To.X)
		p[2] = uint32(a.Move.To.Y)
	case KindCutTree:
		p[0] = uint32(a.CutTree.Pawn)
		p[1] = uint32(a.CutTree.Tree)
		putInt64(p[2:], a.CutTree.LastChop)
	case KindGrabResource:
		p[0] = uint32(a.Grab.Pawn)
		p[1] = uint32(a.Grab.Resource)
	case KindSpawnResource:
		p[0] = uint32(a.Spawn.At.X)
		p[1] = uint32(a.Spawn.At.Y)
		p[2] = uint32(a.Spawn.Resource)
		p[3] = uint32(a.Spawn.Count) | uint32(a.Spawn.Spawned)<<16
		putInt64(p[4:], a.Spawn.LastSpawn)
	case KindStartMining:
		p[0] = uint32(a.Mine.Pawn)
		p[1] = uint32(a.Mine.Mine)
		putInt64(p[2:], a.Mine.Entered)
	case KindAttack:
		p[0] = uint32(a.Attack.Pawn)
		p[1] = a.Attack.Target
		p[2] = uint32(a.Attack.Against)
		putInt64(p[3:], a.Attack.LastHit)
	case KindDeposit:
		p[0] = uint32(a.Deposit.Pawn)
		p[1] = uint32(a.Deposit.Stockpile)
	}

	for _, v := range w {
		dst = binary.LittleEndian.AppendUint32(dst, v)
	}
	return dst
}

// DecodeRecord rebuilds an Action from a record produced by AppendRecord
// Unknown tags, unknown phases and short records decode to a tombstone
func DecodeRecord(rec []byte) Action {
	if len(rec) < RecordSize {
		return Tombstone()
	}
	var w [RecordWords]uint32
	for i := range w {
		w[i] = binary.LittleEndian.Uint32(rec[i*4:])
	}

	if w[0] == uint32(KindCompleted) || w[0] >= uint32(KindCount) || w[1] >= uint32(phaseCount) {
		return Tombstone()
	}

	a := Action{Kind: Kind(w[0]), Phase: Phase(w[1]), Next: Link(w[2])}
	p := w[headerWords:]
	switch a.Kind {
	case KindMove:
		a.Move = MoveData{Pawn: world.PawnID(p[0]), To: world.V2(int32(p[1]), int32(p[2]))}
	case KindCutTree:
		a.CutTree = CutTreeData{Pawn: world.PawnID(p[0]), Tree: world.TreeID(p[1]), LastChop: getInt64(p[2:])}
	case KindGrabResource:
		a.Grab = GrabData{Pawn: world.PawnID(p[0]), Resource: world.ResourceID(p[1])}
	case KindSpawnResource:
		kind := world.ResourceKind(p[2])
		if kind >= world.ResourceKindCount {
			return Tombstone()
		}
		a.Spawn = SpawnData{
			At:        world.V2(int32(p[0]), int32(p[1])),
			Resource:  kind,
			Count:     uint16(p[3]),
			Spawned:   uint16(p[3] >> 16),
			LastSpawn: getInt64(p[4:]),
		}
	case KindStartMining:
		a.Mine = MineData{Pawn: world.PawnID(p[0]), Mine: world.StructureID(p[1]), Entered: getInt64(p[2:])}
	case KindAttack:
		against := TargetKind(p[2])
		if against > TargetSheep {
			return Tombstone()
		}
		a.Attack = AttackData{Pawn: world.PawnID(p[0]), Target: p[1], Against: against, LastHit: getInt64(p[3:])}
	case KindDeposit:
		a.Deposit = DepositData{Pawn: world.PawnID(p[0]), Stockpile: world.StructureID(p[1])}
	}
	return a
}

func putInt64(dst []uint32, v int64) {
	dst[0] = uint32(uint64(v))
	dst[1] = uint32(uint64(v) >> 32)
}

func getInt64(src []uint32) int64 {
	return int64(uint64(src[0]) | uint64(src[1])<<32)
}
