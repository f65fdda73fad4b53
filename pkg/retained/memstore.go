package retained

import "sync"

// MemStore is a host-side Store backed by process memory. It stands in for
// the RTC retention RAM when the core runs under simulation or tests. Its
// zero value mimics uninitialized retention memory: Load returns whatever
// garbage the snapshot holds until the first Commit.
type MemStore struct {
	mu sync.Mutex
	s  State
}

// NewMemStore returns a store pre-seeded with the given snapshot.
func NewMemStore(s State) *MemStore {
	return &MemStore{s: s}
}

// Load implements Store.
func (m *MemStore) Load() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s
}

// Commit implements Store.
func (m *MemStore) Commit(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
}

var _ Store = (*MemStore)(nil)
