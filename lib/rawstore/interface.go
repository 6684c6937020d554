package rawstore

import (
	"errors"
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// StoreFactory is a function type that creates a new raw store.
// This is used to abstract the creation of the backend from its consumers.
type StoreFactory func() Store

// Store is the contract for a raw string key-value backend.
// All operations are synchronous. Set may fail with a quota error when the
// backend enforces a capacity limit; all other operations never fail loudly.
type Store interface {
	// Get returns the raw value for a key. The boolean return value
	// indicates whether an entry for the key was found.
	Get(key string) (value string, loaded bool)
	// Set inserts or updates an entry. Returns a *QuotaError when the write
	// would exceed the backend's capacity.
	Set(key string, value string) (err error)
	// Remove deletes an entry. Removing an absent key is a no-op.
	Remove(key string)
	// Keys returns all stored keys in the backend's enumeration order.
	// No particular order is guaranteed across backends.
	Keys() (keys []string)
	// Len returns the number of stored entries.
	Len() (n int)
}

// ErrUnavailable signals an operation against a nil or unusable backend.
var ErrUnavailable = errors.New("storage backend unavailable")

// --------------------------------------------------------------------------
// Quota Error Type
// --------------------------------------------------------------------------

// QuotaError is returned by Set when a write would exceed the backend's
// capacity limit.
type QuotaError struct {
	Used  int // Bytes currently used
	Quota int // Configured capacity in bytes
}

// Error implements the error interface.
func (e *QuotaError) Error() string {
	return fmt.Sprintf("QuotaExceededError: %d bytes used of %d byte quota", e.Used, e.Quota)
}

// IsQuotaError reports whether err signals a capacity limit. Besides the
// typed *QuotaError this also matches foreign backends that signal capacity
// errors by name only.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var qe *QuotaError
	if errors.As(err, &qe) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota")
}
