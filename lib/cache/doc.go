// Package cache implements a stale-while-revalidate layer over a binding.
//
// A Cache pairs a persisted value with a fetch function. Readers always see
// the cached value immediately, even when it is past its freshness window
// or the most recent fetch failed; revalidation runs in the background and
// replaces the value on success. Two timers govern the lifecycle: the stale
// time, after which the data is flagged stale and revalidation triggers may
// fire, and the cache time, the underlying TTL after which the record is
// purged entirely.
//
// At most one fetch is in flight per cache instance. Late completions that
// arrive after Invalidate, Rebind or Close are discarded rather than
// applied to state they no longer belong to.
package cache
