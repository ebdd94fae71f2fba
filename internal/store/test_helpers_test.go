package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/initiative/internal/combat"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// insertTestCombatant inserts a combatant with tracked HP and returns its id.
func insertTestCombatant(t *testing.T, s *Store, name string, initiative, hp int) int64 {
	t.Helper()
	id, err := s.InsertCombatant(context.Background(), combat.Draft{
		Name:       name,
		Initiative: initiative,
		MaxHP:      combat.Int(hp),
		ArmorClass: combat.Int(12),
	})
	if err != nil {
		t.Fatalf("InsertCombatant(%q) failed: %v", name, err)
	}
	return id
}

// findCombatant returns the loaded combatant with the given id.
func findCombatant(t *testing.T, s *Store, id int64) combat.Combatant {
	t.Helper()
	_, roster, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	idx, ok := combat.IndexOf(roster, id)
	if !ok {
		t.Fatalf("combatant %d not found", id)
	}
	return roster[idx]
}
