// Package sqlitestore provides a raw store backed by a sqlite database
// (modernc.org/sqlite, no cgo).
//
// Use it when the persisted data outgrows what a single rewritten JSON file
// handles comfortably. The backend fulfills the same synchronous contract as
// the other raw stores; transactional durability comes for free from sqlite.
package sqlitestore
