package cart

import (
	"testing"
	"time"
)

func TestManager_CreateAndGet(t *testing.T) {
	m := NewManager()

	id, store := m.Create()
	if id == "" {
		t.Fatal("expected non-empty cart id")
	}
	if store == nil {
		t.Fatal("expected a store")
	}

	got, ok := m.Get(id)
	if !ok || got != store {
		t.Errorf("expected Get to return the created store")
	}

	if _, ok := m.Get("unknown"); ok {
		t.Errorf("expected unknown id to miss")
	}
}

func TestManager_Delete(t *testing.T) {
	m := NewManager()
	id, _ := m.Create()

	m.Delete(id)
	if _, ok := m.Get(id); ok {
		t.Errorf("expected deleted cart to be gone")
	}

	// Deleting again is a no-op.
	m.Delete(id)
}

func TestManager_SweepReapsOnlyIdle(t *testing.T) {
	m := NewManager()

	now := time.Now()
	m.now = func() time.Time { return now }

	idleID, _ := m.Create()
	activeID, _ := m.Create()

	// Advance the clock past the idle window, then touch one cart.
	now = now.Add(2 * time.Hour)
	m.Get(activeID)

	removed := m.Sweep(time.Hour)
	if len(removed) != 1 || removed[0] != idleID {
		t.Fatalf("expected only the idle cart swept, got %v", removed)
	}

	if _, ok := m.Get(idleID); ok {
		t.Errorf("idle cart should be gone")
	}
	if _, ok := m.Get(activeID); !ok {
		t.Errorf("active cart should survive")
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 live cart, got %d", m.Len())
	}
}
