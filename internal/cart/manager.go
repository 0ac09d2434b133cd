package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager is the in-memory registry of session carts. Each cart is owned
// by exactly one session and lives only as long as the process; idle
// carts are reaped by Sweep.
type Manager struct {
	mu    sync.Mutex
	carts map[string]*entry
	now   func() time.Time
}

type entry struct {
	store      *Store
	lastAccess time.Time
}

// NewManager creates an empty cart registry.
func NewManager() *Manager {
	return &Manager{
		carts: make(map[string]*entry),
		now:   time.Now,
	}
}

// Create allocates a new empty cart and returns its id.
func (m *Manager) Create() (string, *Store) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	store := NewStore()
	m.carts[id] = &entry{store: store, lastAccess: m.now()}
	return id, store
}

// Get returns the cart for a session id, refreshing its idle clock.
func (m *Manager) Get(id string) (*Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.carts[id]
	if !ok {
		return nil, false
	}
	e.lastAccess = m.now()
	return e.store, true
}

// Delete discards a session cart. Deleting an unknown id is a no-op.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, id)
}

// Len returns the number of live carts.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.carts)
}

// Sweep drops carts idle for longer than maxIdle and returns the ids of
// the carts it removed.
func (m *Manager) Sweep(maxIdle time.Duration) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxIdle)
	var removed []string
	for id, e := range m.carts {
		if e.lastAccess.Before(cutoff) {
			delete(m.carts, id)
			removed = append(removed, id)
		}
	}
	return removed
}
