package storetest

import (
	"fmt"
	"testing"

	"github.com/tabstore/tabstore/lib/rawstore"
)

// StoreFactory is a function that creates a fresh instance of a raw store
// implementation for each subtest.
type StoreFactory func(t *testing.T) rawstore.Store

// RunStoreTests runs the conformance suite for a raw store implementation.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory(t))
		})

		t.Run("Overwrite", func(t *testing.T) {
			testOverwrite(t, factory(t))
		})

		t.Run("Remove", func(t *testing.T) {
			testRemove(t, factory(t))
		})

		t.Run("Keys&Len", func(t *testing.T) {
			testKeysLen(t, factory(t))
		})

		t.Run("EmptyValue", func(t *testing.T) {
			testEmptyValue(t, factory(t))
		})
	})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, s rawstore.Store) {
	if _, ok := s.Get("missing"); ok {
		t.Errorf("expected missing key to not be found")
	}

	if err := s.Set("alpha", "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok := s.Get("alpha")
	if !ok {
		t.Fatalf("expected key to be found")
	}
	if v != "1" {
		t.Errorf("expected value %q, got %q", "1", v)
	}
}

func testOverwrite(t *testing.T, s rawstore.Store) {
	if err := s.Set("key", "old"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set("key", "new"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	v, ok := s.Get("key")
	if !ok || v != "new" {
		t.Errorf("expected overwritten value %q, got %q (found=%v)", "new", v, ok)
	}
	if n := s.Len(); n != 1 {
		t.Errorf("expected 1 entry after overwrite, got %d", n)
	}
}

func testRemove(t *testing.T, s rawstore.Store) {
	if err := s.Set("key", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	s.Remove("key")
	if _, ok := s.Get("key"); ok {
		t.Errorf("expected key to be gone after Remove")
	}

	// removing an absent key must be a silent no-op
	s.Remove("key")
	s.Remove("never-existed")
	if n := s.Len(); n != 0 {
		t.Errorf("expected empty store, got %d entries", n)
	}
}

func testKeysLen(t *testing.T, s rawstore.Store) {
	const count = 10
	for i := 0; i < count; i++ {
		if err := s.Set(fmt.Sprintf("key-%02d", i), fmt.Sprintf("value-%d", i)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if n := s.Len(); n != count {
		t.Errorf("expected %d entries, got %d", count, n)
	}

	keys := s.Keys()
	if len(keys) != count {
		t.Fatalf("expected %d keys, got %d", count, len(keys))
	}

	seen := make(map[string]bool, count)
	for _, k := range keys {
		if seen[k] {
			t.Errorf("duplicate key %q in enumeration", k)
		}
		seen[k] = true
	}
	for i := 0; i < count; i++ {
		if !seen[fmt.Sprintf("key-%02d", i)] {
			t.Errorf("key key-%02d missing from enumeration", i)
		}
	}
}

func testEmptyValue(t *testing.T, s rawstore.Store) {
	if err := s.Set("empty", ""); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok := s.Get("empty")
	if !ok {
		t.Fatalf("expected empty-valued key to be found")
	}
	if v != "" {
		t.Errorf("expected empty value, got %q", v)
	}
}
