package scheduler

import "github.com/lixenwraith/vi-rts/action"

// resolve preempts every live active action that cannot coexist with candidate
// The newer action always wins: the old one is copied into toCancel and its slot tombstoned
func (m *Manager) resolve(candidate action.Action) {
	for i := range m.active {
		old := m.active[i]
		if old.IsCompleted() || !action.Incompatible(old, candidate) {
			continue
		}

		m.toCancel = append(m.toCancel, old)
		m.active[i] = action.Tombstone()
		m.bumpCompleted()
		m.dropChain(old.Next)

		m.report.Preempted++
		m.stats.preempted.Add(1)
		m.log.Debug("action preempted", "slot", i, "old", old, "by", candidate)
	}
}

// dropChain tombstones the queued successors of a preempted action, which can never run
func (m *Manager) dropChain(link action.Link) {
	for range len(m.queued) {
		j, ok := link.Index()
		if !ok || j >= len(m.queued) || m.queued[j].IsCompleted() {
			return
		}
		link = m.queued[j].Next
		m.release(j)
	}
}
