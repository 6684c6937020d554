// Package binding connects storage keys to reactive in-memory values.
//
// A Binding is the Go rendition of a state hook: it mirrors one key's
// current value, keeps the mirror consistent with the store through writes,
// re-reads and change notifications, and exposes an OnChange registration
// for the UI layer. Typed projections (List, Object, Flag, Counter, Group)
// add type-specific mutators on top without carrying state of their own.
//
// Write failures never desync the mirror: a failed persist leaves the
// previous value visible and records ErrWriteFailed, while an unavailable
// store degrades gracefully to memory-only behavior.
package binding
