package binding

import (
	"errors"
	"sync"
	"time"

	"github.com/tabstore/tabstore/lib/bus"
	"github.com/tabstore/tabstore/lib/manager"
)

// ErrWriteFailed is recorded as the binding's local error when a persist
// write fails. The in-memory mirror is left untouched in that case so the
// visible value never silently desyncs from the persisted one.
var ErrWriteFailed = errors.New("persist write failed")

// maxSweepInterval caps the background expiration sweep period.
const maxSweepInterval = 60 * time.Second

// --------------------------------------------------------------------------
// Binding Type
// --------------------------------------------------------------------------

// Binding binds one storage key to a reactive in-memory value. It reads
// through the manager on construction and key change, writes through it on
// Set, re-reads on change notifications, and runs a periodic expiration
// sweep while a TTL is configured.
//
// Each binding owns its own mirror of the key's current value; consistency
// with the store is maintained via explicit re-reads and bus events, never
// by sharing mutable state with other bindings.
type Binding[T any] struct {
	mgr  *manager.Manager
	def  T
	opts manager.Options

	mu       sync.Mutex
	key      string
	value    T
	err      error
	loaded   bool   // whether the last read found a persisted value
	lastRaw  string // raw stored text at last read, for change detection
	watchers map[uint64]func(T)
	nextID   uint64

	cancelBus   func()
	cancelWatch func()
	watcher     *bus.Watcher
	sweepStop   chan struct{}
	closed      bool
}

// Option configures a binding at construction time.
type Option[T any] func(*Binding[T])

// WithWatcher attaches the cross-process watcher. External writes to the
// shared store file then trigger a re-read, the way storage events from
// other tabs do.
func WithWatcher[T any](w *bus.Watcher) Option[T] {
	return func(b *Binding[T]) {
		b.watcher = w
	}
}

// New creates a binding for key. If the store holds no (unexpired) value,
// the mirror starts at def. Read errors are captured in the binding's local
// error state and also fall back to def.
func New[T any](mgr *manager.Manager, key string, def T, opts manager.Options, bopts ...Option[T]) *Binding[T] {
	b := &Binding[T]{
		mgr:      mgr,
		key:      key,
		def:      def,
		opts:     opts,
		watchers: make(map[uint64]func(T)),
	}
	for _, opt := range bopts {
		opt(b)
	}

	b.load()
	b.subscribe()
	if opts.TTL > 0 {
		b.startSweep()
	}
	return b
}

// --------------------------------------------------------------------------
// Initialization and Change Reception
// --------------------------------------------------------------------------

// load re-reads the value through the manager and replaces the mirror.
func (b *Binding[T]) load() {
	v, ok := manager.GetItem[T](b.mgr, b.currentKey(), b.opts)
	raw, _ := b.mgr.Raw(b.currentKey())

	b.mu.Lock()
	b.loaded = ok
	b.lastRaw = raw
	if ok {
		b.value = v
	} else {
		b.value = b.def
	}
	b.mu.Unlock()
}

// subscribe registers both delivery paths: the in-process bus (direct
// apply, no re-read) and the cross-process watcher (re-read, since raw
// bytes may need decoding).
func (b *Binding[T]) subscribe() {
	if busRef := b.mgr.Bus(); busRef != nil {
		b.cancelBus = busRef.Subscribe(b.currentKey(), func(evt bus.Event) {
			if v, ok := evt.NewValue.(T); ok {
				b.apply(v, true)
				return
			}
			// type mismatch: fall back to a full re-read
			b.Refresh()
		})
	}
	if b.watcher != nil {
		b.cancelWatch = b.watcher.Subscribe(func() {
			// only react if the raw value actually changed
			raw, _ := b.mgr.Raw(b.currentKey())
			b.mu.Lock()
			changed := raw != b.lastRaw
			b.mu.Unlock()
			if changed {
				b.Refresh()
			}
		})
	}
}

func (b *Binding[T]) unsubscribe() {
	if b.cancelBus != nil {
		b.cancelBus()
		b.cancelBus = nil
	}
	if b.cancelWatch != nil {
		b.cancelWatch()
		b.cancelWatch = nil
	}
}

// apply replaces the mirror and notifies watchers.
func (b *Binding[T]) apply(v T, loaded bool) {
	b.mu.Lock()
	b.value = v
	b.loaded = loaded
	if raw, ok := b.mgr.Raw(b.currentKeyLocked()); ok {
		b.lastRaw = raw
	} else {
		b.lastRaw = ""
	}
	fns := b.watcherList()
	b.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// watcherList must be called with the mutex held.
func (b *Binding[T]) watcherList() []func(T) {
	fns := make([]func(T), 0, len(b.watchers))
	for _, fn := range b.watchers {
		fns = append(fns, fn)
	}
	return fns
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Value returns the current in-memory mirror.
func (b *Binding[T]) Value() T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

// Err returns the binding's local error state, cleared by the next
// successful operation.
func (b *Binding[T]) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Loaded reports whether the last read found a persisted (unexpired) value
// rather than falling back to the default.
func (b *Binding[T]) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

// Key returns the currently bound key.
func (b *Binding[T]) Key() string {
	return b.currentKey()
}

// Manager returns the manager this binding reads and writes through.
func (b *Binding[T]) Manager() *manager.Manager {
	return b.mgr
}

func (b *Binding[T]) currentKey() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.key
}

// currentKeyLocked must be called with the mutex held.
func (b *Binding[T]) currentKeyLocked() string {
	return b.key
}

// OnChange registers a callback invoked with the new value after every
// mirror update. The returned function cancels the registration. This is
// the contract the UI binding layer consumes.
func (b *Binding[T]) OnChange(fn func(T)) (cancel func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.watchers[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.watchers, id)
		b.mu.Unlock()
	}
}

// --------------------------------------------------------------------------
// Mutations
// --------------------------------------------------------------------------

// Set writes v through the manager. A stored or unavailable result updates
// the mirror (unavailable degrades gracefully to memory-only state); a
// failed write leaves the mirror untouched and records ErrWriteFailed.
func (b *Binding[T]) Set(v T) {
	switch b.mgr.SetItem(b.currentKey(), v, b.opts) {
	case manager.WriteStored, manager.WriteUnavailable:
		b.mu.Lock()
		b.err = nil
		b.mu.Unlock()
		b.apply(v, true)
	case manager.WriteFailed:
		b.mu.Lock()
		b.err = ErrWriteFailed
		b.mu.Unlock()
	}
}

// Update resolves fn against the current mirror value and writes the
// result.
func (b *Binding[T]) Update(fn func(T) T) {
	b.Set(fn(b.Value()))
}

// Remove deletes the persisted value and resets the mirror to the default.
func (b *Binding[T]) Remove() {
	b.mgr.RemoveItem(b.currentKey())
	b.mu.Lock()
	b.err = nil
	b.mu.Unlock()
	b.apply(b.def, false)
}

// Refresh re-reads through the manager and replaces the mirror. Used after
// external change notifications.
func (b *Binding[T]) Refresh() {
	b.load()
	b.mu.Lock()
	v := b.value
	fns := b.watcherList()
	b.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

// --------------------------------------------------------------------------
// Metadata
// --------------------------------------------------------------------------

// Expired reports whether the persisted record is past its expiry
// timestamp.
func (b *Binding[T]) Expired() bool {
	md, ok := b.mgr.ItemMetadata(b.currentKey())
	if !ok || md.ExpiresAt == nil {
		return false
	}
	return b.mgr.Now().UnixMilli() > *md.ExpiresAt
}

// CreatedAt returns the record's creation time.
func (b *Binding[T]) CreatedAt() (time.Time, bool) {
	md, ok := b.mgr.ItemMetadata(b.currentKey())
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(md.CreatedAt), true
}

// ExpiresAt returns the record's expiry time; ok is false when the record
// has no TTL or does not exist.
func (b *Binding[T]) ExpiresAt() (time.Time, bool) {
	md, ok := b.mgr.ItemMetadata(b.currentKey())
	if !ok || md.ExpiresAt == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*md.ExpiresAt), true
}

// Remaining returns the clamped-non-negative time until expiry; ok is false
// when the record has no TTL or does not exist.
func (b *Binding[T]) Remaining() (time.Duration, bool) {
	expiresAt, ok := b.ExpiresAt()
	if !ok {
		return 0, false
	}
	d := expiresAt.Sub(b.mgr.Now())
	if d < 0 {
		d = 0
	}
	return d, true
}

// --------------------------------------------------------------------------
// Key Rebinding and Lifecycle
// --------------------------------------------------------------------------

// Rebind switches the binding to a new key and re-runs initialization,
// re-entering the same state machine as construction.
func (b *Binding[T]) Rebind(key string) {
	b.unsubscribe()
	b.mu.Lock()
	b.key = key
	b.mu.Unlock()
	b.load()
	b.subscribe()

	b.mu.Lock()
	v := b.value
	fns := b.watcherList()
	b.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

// startSweep runs the background expiration sweep: every min(ttl/10, 60s)
// the metadata is re-checked and, if expired, the item is removed and the
// mirror reset to the default.
func (b *Binding[T]) startSweep() {
	interval := b.opts.TTL / 10
	if interval > maxSweepInterval {
		interval = maxSweepInterval
	}
	if interval <= 0 {
		interval = time.Millisecond
	}

	b.sweepStop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-b.sweepStop:
				return
			case <-ticker.C:
				// re-check metadata each tick instead of trusting a
				// previously computed expiry
				md, ok := b.mgr.ItemMetadata(b.currentKey())
				if !ok || md.ExpiresAt == nil {
					continue
				}
				if b.mgr.Now().UnixMilli() > *md.ExpiresAt {
					b.mgr.RemoveItem(b.currentKey())
					b.apply(b.def, false)
				}
			}
		}
	}()
}

// Close tears down subscriptions and timers. The binding must not be used
// afterwards.
func (b *Binding[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.unsubscribe()
	if b.sweepStop != nil {
		close(b.sweepStop)
	}
}
