package prefs

import (
	"sync"

	"liquidity-monitor/internal/interfaces"
)

var _ interfaces.PreferenceStore = (*MemoryStore)(nil)

// MemoryStore keeps preferences in process memory. Used when Redis is not
// configured and in tests.
type MemoryStore struct {
	mu       sync.Mutex
	pageSize int
	set      bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) GetPageSize() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pageSize, m.set
}

func (m *MemoryStore) SetPageSize(size int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageSize = size
	m.set = true
	return nil
}
