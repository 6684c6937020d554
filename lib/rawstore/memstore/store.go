package memstore

import (
	"sync"

	"github.com/tabstore/tabstore/lib/rawstore"
)

// --------------------------------------------------------------------------
// Constants and Options
// --------------------------------------------------------------------------

// DefaultQuota is the assumed capacity of a browser-style key-value store.
const DefaultQuota = 5 * 1024 * 1024 // 5 MiB

// StoreOptions configures the memstore behavior during initialization.
type StoreOptions struct {
	Quota int // Capacity in bytes (0 = unlimited)
}

// DefaultOptions returns the default memstore options.
func DefaultOptions() *StoreOptions {
	return &StoreOptions{
		Quota: DefaultQuota,
	}
}

// --------------------------------------------------------------------------
// Store Implementation
// --------------------------------------------------------------------------

// storeImpl is an in-memory raw store with insertion-order enumeration and a
// byte quota accounted as len(key)+len(value) per entry.
type storeImpl struct {
	mu    sync.Mutex
	data  map[string]string
	order []string
	used  int
	quota int
}

// NewMemStore creates a new in-memory store instance with the specified
// options (optional).
func NewMemStore(opts *StoreOptions) rawstore.Store {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &storeImpl{
		data:  make(map[string]string),
		quota: opts.Quota,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see rawstore/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *storeImpl) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delta := len(key) + len(value)
	if old, ok := s.data[key]; ok {
		delta = len(value) - len(old)
	}

	if s.quota > 0 && s.used+delta > s.quota {
		return &rawstore.QuotaError{Used: s.used, Quota: s.quota}
	}

	if _, ok := s.data[key]; !ok {
		s.order = append(s.order, key)
	}
	s.data[key] = value
	s.used += delta
	return nil
}

func (s *storeImpl) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.data[key]
	if !ok {
		return
	}
	delete(s.data, key)
	s.used -= len(key) + len(old)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *storeImpl) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

func (s *storeImpl) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
