package optimistic

import "sync/atomic"

// Allocator issues client-local identifiers for entities that have not been
// persisted yet. Temp ids are negative so they can never collide with a
// server id, and IsTemp is a plain sign check.
type Allocator struct {
	next atomic.Int64
}

func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns a fresh temp id. Safe for concurrent use.
func (a *Allocator) Next() int64 {
	return -a.next.Add(1)
}

// IsTemp reports whether id is a client-local identifier that still needs
// reconciliation against the authoritative store.
func IsTemp(id int64) bool {
	return id < 0
}
