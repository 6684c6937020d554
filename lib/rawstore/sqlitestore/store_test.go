package sqlitestore

import (
	"path/filepath"
	"testing"

	"github.com/tabstore/tabstore/lib/rawstore"
	"github.com/tabstore/tabstore/lib/rawstore/storetest"
)

func TestSQLiteStore(t *testing.T) {
	storetest.RunStoreTests(t, "SQLiteStore", func(t *testing.T) rawstore.Store {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "store.db"))
		if err != nil {
			t.Fatalf("NewSQLiteStore failed: %v", err)
		}
		return s
	})
}

func TestSQLiteStorePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := s.Set("key", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if closer, ok := s.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	v, ok := reopened.Get("key")
	if !ok || v != "value" {
		t.Errorf("expected persisted value after reopen, got %q (found=%v)", v, ok)
	}
}
