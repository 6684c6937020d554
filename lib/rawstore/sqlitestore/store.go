package sqlitestore

import (
	"database/sql"

	"github.com/tabstore/tabstore/lib/rawstore"

	_ "modernc.org/sqlite"
)

// --------------------------------------------------------------------------
// Store Implementation
// --------------------------------------------------------------------------

// storeImpl keeps entries in a single sqlite table. Enumeration order is the
// rowid order, i.e. insertion order for keys that were never rewritten.
type storeImpl struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a sqlite-backed store at the given path.
// Pass ":memory:" for a throwaway in-memory database.
func NewSQLiteStore(path string) (rawstore.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// the raw store contract is synchronous, single-connection access
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &storeImpl{db: db}, nil
}

// Close releases the underlying database handle.
func (s *storeImpl) Close() error {
	return s.db.Close()
}

// --------------------------------------------------------------------------
// Interface Methods (docu see rawstore/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

func (s *storeImpl) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func (s *storeImpl) Remove(key string) {
	_, _ = s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
}

func (s *storeImpl) Keys() []string {
	rows, err := s.db.Query(`SELECT key FROM kv ORDER BY rowid`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return keys
		}
		keys = append(keys, k)
	}
	return keys
}

func (s *storeImpl) Len() int {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n); err != nil {
		return 0
	}
	return n
}
