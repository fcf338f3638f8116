package scheduler

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/lixenwraith/vi-rts/action"
)

// Magic tags a serialized scheduler ("ACTM" little-endian)
const Magic uint32 = 0x4D544341

var (
	ErrMisaligned   = errors.New("scheduler: save data is not word aligned")
	ErrBadMagic     = errors.New("scheduler: bad magic")
	ErrSizeMismatch = errors.New("scheduler: recorded size does not match data")
	ErrTruncated    = errors.New("scheduler: save data truncated")
)

// MarshalBinary encodes the scheduler as a flat word-aligned buffer:
// magic, total size in words, active, queued, toCancel, completed counter
// Each list is a u32 element count followed by fixed-size action records
func (m *Manager) MarshalBinary() ([]byte, error) {
	words := 2 + 3 + (len(m.active)+len(m.queued)+len(m.toCancel))*action.RecordWords + 1
	buf := make([]byte, 0, words*4)

	buf = binary.LittleEndian.AppendUint32(buf, Magic)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(words))
	for _, list := range [][]action.Action{m.active, m.queued, m.toCancel} {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(list)))
		for _, a := range list {
			buf = action.AppendRecord(buf, a)
		}
	}
	buf = binary.LittleEndian.AppendUint32(buf, m.completed)
	return buf, nil
}

// UnmarshalBinary replaces the scheduler state with data produced by MarshalBinary
// On error the receiver is left untouched
func (m *Manager) UnmarshalBinary(data []byte) error {
	if len(data)%4 != 0 {
		return ErrMisaligned
	}
	if len(data) < 8 {
		return ErrTruncated
	}
	if got := binary.LittleEndian.Uint32(data); got != Magic {
		return fmt.Errorf("%w: %#08x", ErrBadMagic, got)
	}
	if words := binary.LittleEndian.Uint32(data[4:]); uint64(words)*4 != uint64(len(data)) {
		return fmt.Errorf("%w: header %d words, have %d", ErrSizeMismatch, words, len(data)/4)
	}

	r := reader{data: data, off: 8}
	active, err := r.list()
	if err != nil {
		return fmt.Errorf("active: %w", err)
	}
	queued, err := r.list()
	if err != nil {
		return fmt.Errorf("queued: %w", err)
	}
	toCancel, err := r.list()
	if err != nil {
		return fmt.Errorf("to_cancel: %w", err)
	}
	completed, err := r.word()
	if err != nil {
		return fmt.Errorf("completed: %w", err)
	}
	if r.off != len(data) {
		return fmt.Errorf("%w: %d trailing bytes", ErrSizeMismatch, len(data)-r.off)
	}

	// Links pointing outside queued are corrupt; drop the successor rather than fault later
	for _, list := range [][]action.Action{active, queued} {
		for i := range list {
			if j, ok := list[i].Next.Index(); ok && j >= len(queued) {
				list[i].Next = action.NoLink
			}
		}
	}

	m.active, m.queued, m.toCancel = active, queued, toCancel
	m.completed = completed
	m.freeQueued = m.freeQueued[:0]
	m.liveQueued = 0
	for i := range m.queued {
		if m.queued[i].IsCompleted() {
			m.freeQueued = append(m.freeQueued, i)
		} else {
			m.liveQueued++
		}
	}
	return nil
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) word() (uint32, error) {
	if r.off+4 > len(r.data) {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) list() ([]action.Action, error) {
	n, err := r.word()
	if err != nil {
		return nil, err
	}
	if uint64(n)*action.RecordSize > uint64(len(r.data)-r.off) {
		return nil, ErrTruncated
	}
	out := make([]action.Action, n)
	for i := range out {
		out[i] = action.DecodeRecord(r.data[r.off : r.off+action.RecordSize])
		r.off += action.RecordSize
	}
	return out, nil
}
