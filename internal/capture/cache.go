package capture

import (
	"sync"

	core "clipwsl/internal"
)

// Cache holds the last decoded snapshot. Stored snapshots are never
// modified, only replaced, and every value handed out is a copy.
type Cache struct {
	mu   sync.Mutex
	snap *core.Snapshot
}

// Lookup returns the cached snapshot if it was decoded at seq. Sequence
// number 0 never hits: some environments never advance it.
func (c *Cache) Lookup(seq uint32) (core.Snapshot, bool) {
	if seq == 0 {
		return core.Snapshot{}, false
	}
	c.mu.Lock()
	s := c.snap
	c.mu.Unlock()

	if s == nil || s.Seq != seq {
		return core.Snapshot{}, false
	}
	return s.Clone(), true
}

// Current returns the cached snapshot regardless of sequence number.
func (c *Cache) Current() (core.Snapshot, bool) {
	c.mu.Lock()
	s := c.snap
	c.mu.Unlock()

	if s == nil {
		return core.Snapshot{}, false
	}
	return s.Clone(), true
}

// Store replaces the cached snapshot with a copy of s.
func (c *Cache) Store(s core.Snapshot) {
	cp := s.Clone()
	c.mu.Lock()
	c.snap = &cp
	c.mu.Unlock()
}
