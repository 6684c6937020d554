// Package memstore provides a process-local in-memory raw store.
//
// The store enumerates keys in insertion order and enforces an optional byte
// quota (default 5 MiB, matching the capacity commonly assumed for
// browser-style storage). A write that would exceed the quota fails with a
// rawstore.QuotaError and leaves the store unchanged.
//
// This backend is the default for tests and for callers that only need
// memory-backed persistence for the lifetime of the process.
package memstore
