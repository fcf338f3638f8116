package scheduler

import (
	"slices"

	"github.com/lixenwraith/vi-rts/action"
	"github.com/lixenwraith/vi-rts/world"
)

// Tick runs one full pipeline: ingest, cancel, process/reap, compact
func (m *Manager) Tick(w *world.World, buf *action.Buffer) Report {
	m.report = Report{}

	m.Ingest(buf)
	m.FlushCancels(w)
	m.Process(w)
	m.Compact()

	m.report.Live = m.Live()
	m.stats.ticks.Add(1)
	m.stats.live.Store(int64(m.report.Live))
	return m.report
}

// Ingest drains buf into active
// Each head's successor chain moves into queued, then the head is conflict filtered and placed
func (m *Manager) Ingest(buf *action.Buffer) {
	drained := buf.Drain()
	for i := range drained {
		if drained[i].IsCompleted() {
			continue
		}
		head := drained[i]
		drained[i] = action.Tombstone()

		head.Next = m.enqueueChain(drained, head.Next)
		m.resolve(head)
		m.place(head)

		m.report.Ingested++
		m.stats.ingested.Add(1)
	}
}

// enqueueChain moves the buffered chain starting at link into queued
// Successors are tombstoned in the buffer as they move so a later pass never treats them as heads
func (m *Manager) enqueueChain(buf []action.Action, link action.Link) action.Link {
	head := action.NoLink
	prev := -1
	for {
		i, ok := link.Index()
		if !ok || i >= len(buf) || buf[i].IsCompleted() {
			break
		}
		a := buf[i]
		buf[i] = action.Tombstone()
		link, a.Next = a.Next, action.NoLink

		slot := m.queue(a)
		if prev < 0 {
			head = action.LinkTo(slot)
		} else {
			m.queued[prev].Next = action.LinkTo(slot)
		}
		prev = slot
	}
	return head
}

// queue stores a in a free queued slot and returns its index
func (m *Manager) queue(a action.Action) int {
	m.liveQueued++
	if n := len(m.freeQueued); n > 0 {
		slot := m.freeQueued[n-1]
		m.freeQueued = m.freeQueued[:n-1]
		m.queued[slot] = a
		return slot
	}
	m.queued = append(m.queued, a)
	return len(m.queued) - 1
}

// release tombstones a queued slot; queued is truncated once nothing live remains
func (m *Manager) release(slot int) {
	m.queued[slot] = action.Tombstone()
	m.liveQueued--
	if m.liveQueued <= 0 {
		m.liveQueued = 0
		m.queued = m.queued[:0]
		m.freeQueued = m.freeQueued[:0]
		return
	}
	m.freeQueued = append(m.freeQueued, slot)
}

// place puts a into the first tombstone slot of active, appending when none is free
func (m *Manager) place(a action.Action) {
	if m.completed > 0 {
		if i := slices.IndexFunc(m.active, action.Action.IsCompleted); i >= 0 {
			m.active[i] = a
			m.completed--
			return
		}
	}
	m.active = append(m.active, a)
}

// FlushCancels runs the cancel handler for every pending preempted action, then clears the list
func (m *Manager) FlushCancels(w *world.World) {
	for _, a := range m.toCancel {
		if a.IsCompleted() {
			continue
		}
		m.dispatch.Cancel(w, a)
		m.report.Cancelled++
		m.stats.cancelled.Add(1)
	}
	clear(m.toCancel)
	m.toCancel = m.toCancel[:0]
}

// Process advances every live active action in slot order and reaps those that finalize
// A successor promoted here is processed from the next tick
func (m *Manager) Process(w *world.World) {
	for i := 0; i < len(m.active); i++ {
		a := &m.active[i]
		if a.IsCompleted() {
			continue
		}
		// A finalized entry is never handed back to its handler, only reaped
		if a.Phase != action.Finalized {
			m.dispatch.Process(w, a)
		}
		if m.active[i].Phase == action.Finalized {
			m.reap(i)
		}
	}
}

// reap retires the finalized action in slot i
// Without a successor the slot becomes a tombstone; otherwise the successor takes the slot
func (m *Manager) reap(i int) {
	done := m.active[i]
	m.report.Finalized++
	m.stats.finalized.Add(1)

	// Vacate first so the successor's conflict check never preempts its own predecessor
	m.active[i] = action.Tombstone()

	j, ok := done.Next.Index()
	if !ok || j >= len(m.queued) || m.queued[j].IsCompleted() {
		m.bumpCompleted()
		return
	}

	next := m.queued[j]
	m.release(j)
	next.Phase = action.Initial
	m.resolve(next)
	m.active[i] = next

	m.report.Promoted++
	m.stats.promoted.Add(1)
	m.log.Debug("action promoted", "slot", i, "from", done.Kind, "to", next.Kind)
}

// Compact removes tombstones from active once enough have accumulated
// Relative order of live entries is preserved
func (m *Manager) Compact() {
	if m.completed <= m.threshold {
		return
	}
	m.active = slices.DeleteFunc(m.active, action.Action.IsCompleted)
	m.completed = 0
	m.report.Compacted = true
	m.stats.compactions.Add(1)
}
