package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tabstore/tabstore/lib/rawstore"
)

// --------------------------------------------------------------------------
// Store Implementation
// --------------------------------------------------------------------------

// storeImpl persists entries as a single JSON object on disk. Every
// operation re-reads the file so concurrent processes observe each other's
// writes; the mutex only serializes access within one process.
type storeImpl struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed store at the given path. The parent
// directory is created if it does not exist. The file itself is created
// lazily on the first write.
func NewFileStore(path string) (rawstore.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &storeImpl{path: path}, nil
}

// Path returns the location of the backing file. The bus watcher uses this
// to observe external writes.
func (s *storeImpl) Path() string {
	return s.path
}

// load reads the backing file into a map. A missing file is an empty store.
func (s *storeImpl) load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]string{}
	}
	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return map[string]string{}
	}
	return entries
}

// flush writes the map back atomically (write to temp file, then rename).
func (s *storeImpl) flush(entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see rawstore/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.load()[key]
	return v, ok
}

func (s *storeImpl) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	entries[key] = value
	return s.flush(entries)
}

func (s *storeImpl) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	if _, ok := entries[key]; !ok {
		return
	}
	delete(entries, key)
	_ = s.flush(entries)
}

func (s *storeImpl) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	// JSON objects carry no order, so enumeration is sorted for stability
	sort.Strings(keys)
	return keys
}

func (s *storeImpl) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.load())
}
