package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/dwitter/internal/identity"
)

// createTestStore creates a new file-backed store for testing.
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

// createTestMeta derives a deterministic meta for seed.
func createTestMeta(t *testing.T, seed string) (identity.ID, *identity.Meta) {
	t.Helper()
	meta, id, err := identity.GenerateFromKey(seed, identity.DeriveKey(seed))
	if err != nil {
		t.Fatalf("GenerateFromKey(%q) failed: %v", seed, err)
	}
	return id, meta
}
