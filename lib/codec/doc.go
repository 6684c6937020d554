// Package codec provides the value serializer abstraction used by the
// storage manager.
//
// Two implementations are included: JSON (the default, human-readable on
// disk) and gob (compact binary, Go-only). A codec can be passed per
// operation via the manager's Options, so different keys in the same store
// may use different encodings.
package codec
