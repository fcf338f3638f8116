package scheduler

import (
	"encoding/binary"
	"errors"
	"slices"
	"testing"

	"github.com/lixenwraith/vi-rts/action"
	"github.com/lixenwraith/vi-rts/world"
)

// populated returns a scheduler holding mixed kinds and phases in every list
func populated(t *testing.T) *Manager {
	t.Helper()
	d := newStepDispatcher(t)
	m := New(d)
	w, buf := newTestWorld(), action.NewBuffer()

	buf.PushChain(action.NewMove(1, world.V2(10, 10)), action.NewCutTree(1, 3), action.NewGrabResource(1, 4))
	buf.Push(action.NewSpawnResource(world.V2(5, 5), world.ResourceGold, 3))
	buf.Push(action.NewHuntSheep(2, 1))
	buf.Push(action.NewStartMining(3, 0))
	m.Tick(w, buf)
	m.Tick(w, buf)

	buf.Push(action.NewMove(3, world.V2(1, 1)))
	buf.Push(action.NewDeposit(5, 0))
	buf.Push(action.NewAttackPawn(4, 2))
	m.Ingest(buf)

	if len(m.ToCancel()) == 0 || len(m.Queued()) == 0 {
		t.Fatalf("Fixture should populate every list: to_cancel=%v queued=%v", m.ToCancel(), m.Queued())
	}
	return m
}

func TestPersistence_RoundTrip(t *testing.T) {
	src := populated(t)
	data, err := src.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(data)%4 != 0 {
		t.Fatalf("Expected word-aligned output, got %d bytes", len(data))
	}

	dst := New(newStepDispatcher(t))
	if err := dst.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}

	if !slices.Equal(src.Active(), dst.Active()) {
		t.Errorf("active mismatch:\n got  %v\n want %v", dst.Active(), src.Active())
	}
	if !slices.Equal(src.Queued(), dst.Queued()) {
		t.Errorf("queued mismatch:\n got  %v\n want %v", dst.Queued(), src.Queued())
	}
	if !slices.Equal(src.ToCancel(), dst.ToCancel()) {
		t.Errorf("to_cancel mismatch:\n got  %v\n want %v", dst.ToCancel(), src.ToCancel())
	}
	if src.Completed() != dst.Completed() {
		t.Errorf("completed = %d, want %d", dst.Completed(), src.Completed())
	}
}

func TestPersistence_RestoredSchedulerKeepsRunning(t *testing.T) {
	src := populated(t)
	data, _ := src.MarshalBinary()

	d := newStepDispatcher(t)
	dst := New(d)
	if err := dst.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}

	w, buf := newTestWorld(), action.NewBuffer()
	for i := 0; i < 20; i++ {
		dst.Tick(w, buf)
	}
	if dst.Live() != 0 || len(dst.Queued()) != 0 {
		t.Errorf("Expected restored chains to drain, live=%d queued=%v", dst.Live(), dst.Queued())
	}
}

func TestPersistence_EmptyScheduler(t *testing.T) {
	data, _ := New(newStepDispatcher(t)).MarshalBinary()
	if got := binary.LittleEndian.Uint32(data[4:]); int(got)*4 != len(data) {
		t.Errorf("Size field %d words does not match %d bytes", got, len(data))
	}
	if err := New(newStepDispatcher(t)).UnmarshalBinary(data); err != nil {
		t.Errorf("Expected empty scheduler to load, got %v", err)
	}
}

func TestPersistence_RejectsMalformed(t *testing.T) {
	good, _ := populated(t).MarshalBinary()

	badMagic := slices.Clone(good)
	binary.LittleEndian.PutUint32(badMagic, 0xDEADBEEF)

	badSize := slices.Clone(good)
	binary.LittleEndian.PutUint32(badSize[4:], uint32(len(good)/4+1))

	// Shorten the buffer and fix up the size so only the list count lies
	truncated := slices.Clone(good[:len(good)-action.RecordSize])
	binary.LittleEndian.PutUint32(truncated[4:], uint32(len(truncated)/4))

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"misaligned", good[:len(good)-1], ErrMisaligned},
		{"too short", good[:4], ErrTruncated},
		{"bad magic", badMagic, ErrBadMagic},
		{"size mismatch", badSize, ErrSizeMismatch},
		{"truncated list", truncated, ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(newStepDispatcher(t))
			buf := action.NewBuffer()
			buf.Push(tagged(1, 1))
			m.Ingest(buf)
			before := m.Active()

			err := m.UnmarshalBinary(tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			if !slices.Equal(before, m.Active()) {
				t.Error("Failed load must leave the scheduler untouched")
			}
		})
	}
}

func TestPersistence_CorruptLinkDropped(t *testing.T) {
	m := New(newStepDispatcher(t))
	head := tagged(1, 1)
	head.Next = action.LinkTo(40)
	m.active = []action.Action{head}

	data, _ := m.MarshalBinary()
	dst := New(newStepDispatcher(t))
	if err := dst.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if got := dst.Active()[0].Next; got != action.NoLink {
		t.Errorf("Expected out-of-range link cleared, got %v", got)
	}
}

func TestPersistence_UnknownKindDecodesToTombstone(t *testing.T) {
	m := New(newStepDispatcher(t))
	m.active = []action.Action{tagged(1, 1)}
	data, _ := m.MarshalBinary()

	// First record tag sits after magic, size and the active count
	binary.LittleEndian.PutUint32(data[12:], 250)

	dst := New(newStepDispatcher(t))
	if err := dst.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if !dst.Active()[0].IsCompleted() {
		t.Errorf("Expected tombstone for unknown kind, got %v", dst.Active()[0])
	}
}
