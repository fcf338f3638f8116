package action

// Buffer stages actions created by gameplay code during a tick
// The scheduler drains it exactly once per tick
// Chained successors are stored after their predecessor and referenced by buffer Link
type Buffer struct {
	actions []Action
	spare   []Action
}

// NewBuffer creates an empty buffer
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Len reports how many actions are staged, successors included
func (b *Buffer) Len() int {
	return len(b.actions)
}

// Push appends a single action and returns its buffer link
// Any Next set by the caller is cleared; use Then or PushChain to chain
func (b *Buffer) Push(a Action) Link {
	a.Next = NoLink
	b.actions = append(b.actions, a)
	return LinkTo(len(b.actions) - 1)
}

// PushChain appends actions so that each runs after the previous one finalizes
// Returns the head link, NoLink for an empty chain
func (b *Buffer) PushChain(chain ...Action) Link {
	if len(chain) == 0 {
		return NoLink
	}
	head := b.Push(chain[0])
	prev := head
	for _, a := range chain[1:] {
		prev = b.Then(prev, a)
	}
	return head
}

// Then appends a to the end of the chain that contains prev
// A prev that does not name a staged action degrades to Push
func (b *Buffer) Then(prev Link, a Action) Link {
	i, ok := prev.Index()
	if !ok || i >= len(b.actions) {
		return b.Push(a)
	}
	// Walk to the tail, bounded by buffer length so a corrupt cycle cannot spin
	for range len(b.actions) {
		next, ok := b.actions[i].Next.Index()
		if !ok || next >= len(b.actions) {
			break
		}
		i = next
	}
	link := b.Push(a)
	b.actions[i].Next = link
	return link
}

// Drain returns staged actions in insertion order and empties the buffer
// The returned slice stays valid until the next Drain, which recycles its backing array
func (b *Buffer) Drain() []Action {
	drained := b.actions
	b.actions = b.spare[:0]
	b.spare = drained
	return drained
}
