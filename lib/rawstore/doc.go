// Package rawstore defines the interface for the raw string key-value
// backends underlying the storage manager.
//
// A raw store is a flat, synchronous mapping from string keys to string
// values with a finite capacity. It knows nothing about envelopes, prefixes,
// expiration or encryption - all of that lives in the manager package. This
// separation keeps the core testable against an in-memory fake and portable
// across hosts.
//
// Three backends are provided:
//
//   - memstore: process-local map with a configurable byte quota
//   - filestore: a single JSON file shared between processes
//   - sqlitestore: a sqlite table, for larger data sets
//
// The storetest package contains a conformance suite that every backend
// must pass.
package rawstore
