// Package status holds the named counters published by the scheduler, the handlers and the engine
// Owners look a counter up once at construction and write the atomic directly from the tick loop
package status

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// Registry maps dotted counter names such as "scheduler.ticks" to shared atomics
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*atomic.Int64
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{counters: make(map[string]*atomic.Int64)}
}

// Counter returns the counter registered under name, creating it on first use
// The pointer is stable for the registry's lifetime
func (r *Registry) Counter(name string) *atomic.Int64 {
	r.mu.RLock()
	c := r.counters[name]
	r.mu.RUnlock()
	if c != nil {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c = r.counters[name]; c == nil {
		c = new(atomic.Int64)
		r.counters[name] = c
	}
	return c
}

// Scope returns the counters of one subsystem
func (r *Registry) Scope(subsystem string) Scope {
	return Scope{reg: r, prefix: subsystem + "."}
}

// Len returns the number of registered counters
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.counters)
}

// Each calls fn with every counter's current value in name order
func (r *Registry) Each(fn func(name string, v int64)) {
	r.mu.RLock()
	names := make([]string, 0, len(r.counters))
	for name := range r.counters {
		names = append(names, name)
	}
	r.mu.RUnlock()
	slices.Sort(names)

	for _, name := range names {
		fn(name, r.Counter(name).Load())
	}
}

// Snapshot copies every counter value, keyed by full name
func (r *Registry) Snapshot() map[string]int64 {
	out := make(map[string]int64, r.Len())
	r.Each(func(name string, v int64) { out[name] = v })
	return out
}

// Scope is a registry view that prefixes names with a subsystem
type Scope struct {
	reg    *Registry
	prefix string
}

// Counter returns the subsystem counter for name
func (s Scope) Counter(name string) *atomic.Int64 {
	return s.reg.Counter(s.prefix + name)
}

// Snapshot copies the subsystem's counters keyed by their short name
func (s Scope) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	s.reg.Each(func(name string, v int64) {
		if short, ok := strings.CutPrefix(name, s.prefix); ok {
			out[short] = v
		}
	})
	return out
}
