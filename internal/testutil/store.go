// Package testutil provides shared helpers for tests that need a real
// roster store.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/initiative/internal/store"
)

// OpenStore opens a fresh SQLite store in a per-test temp directory and
// closes it on cleanup.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()
	return OpenStoreAt(t, filepath.Join(t.TempDir(), "combat.db"))
}

// OpenStoreAt opens the store at path and closes it on cleanup. Used by
// tests that reopen the same database to simulate a restart.
func OpenStoreAt(t testing.TB, path string) *store.Store {
	t.Helper()
	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}
