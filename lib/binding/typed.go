package binding

import (
	"github.com/tabstore/tabstore/lib/manager"
)

// Typed projections: thin behavioral wrappers over Binding adding
// type-specific mutators. They carry no state of their own.

// --------------------------------------------------------------------------
// List
// --------------------------------------------------------------------------

// List binds a slice-valued key.
type List[T any] struct {
	*Binding[[]T]
}

// NewList creates a list binding. A nil def starts as an empty slice.
func NewList[T any](mgr *manager.Manager, key string, def []T, opts manager.Options, bopts ...Option[[]T]) *List[T] {
	if def == nil {
		def = []T{}
	}
	return &List[T]{Binding: New(mgr, key, def, opts, bopts...)}
}

// Push appends items to the end of the list.
func (l *List[T]) Push(items ...T) {
	l.Update(func(cur []T) []T {
		return append(append([]T{}, cur...), items...)
	})
}

// Insert inserts an item at index i. Out-of-range indexes clamp to the
// nearest end.
func (l *List[T]) Insert(i int, item T) {
	l.Update(func(cur []T) []T {
		if i < 0 {
			i = 0
		}
		if i > len(cur) {
			i = len(cur)
		}
		next := make([]T, 0, len(cur)+1)
		next = append(next, cur[:i]...)
		next = append(next, item)
		next = append(next, cur[i:]...)
		return next
	})
}

// RemoveAt removes the item at index i. Out-of-range indexes are a no-op.
func (l *List[T]) RemoveAt(i int) {
	l.Update(func(cur []T) []T {
		if i < 0 || i >= len(cur) {
			return cur
		}
		next := make([]T, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		next = append(next, cur[i+1:]...)
		return next
	})
}

// UpdateAt replaces the item at index i. Out-of-range indexes are a no-op.
func (l *List[T]) UpdateAt(i int, item T) {
	l.Update(func(cur []T) []T {
		if i < 0 || i >= len(cur) {
			return cur
		}
		next := append([]T{}, cur...)
		next[i] = item
		return next
	})
}

// Filter keeps only the items for which keep returns true.
func (l *List[T]) Filter(keep func(T) bool) {
	l.Update(func(cur []T) []T {
		next := make([]T, 0, len(cur))
		for _, item := range cur {
			if keep(item) {
				next = append(next, item)
			}
		}
		return next
	})
}

// ClearAll resets the list to empty.
func (l *List[T]) ClearAll() {
	l.Set([]T{})
}

// --------------------------------------------------------------------------
// Object
// --------------------------------------------------------------------------

// Object binds a string-keyed map value.
type Object[V any] struct {
	*Binding[map[string]V]
}

// NewObject creates an object binding. A nil def starts as an empty map.
func NewObject[V any](mgr *manager.Manager, key string, def map[string]V, opts manager.Options, bopts ...Option[map[string]V]) *Object[V] {
	if def == nil {
		def = map[string]V{}
	}
	return &Object[V]{Binding: New(mgr, key, def, opts, bopts...)}
}

// SetField sets one field of the object.
func (o *Object[V]) SetField(field string, value V) {
	o.Update(func(cur map[string]V) map[string]V {
		next := copyMap(cur)
		next[field] = value
		return next
	})
}

// DeleteField removes one field of the object.
func (o *Object[V]) DeleteField(field string) {
	o.Update(func(cur map[string]V) map[string]V {
		next := copyMap(cur)
		delete(next, field)
		return next
	})
}

// Merge overlays fields onto the object.
func (o *Object[V]) Merge(fields map[string]V) {
	o.Update(func(cur map[string]V) map[string]V {
		next := copyMap(cur)
		for k, v := range fields {
			next[k] = v
		}
		return next
	})
}

func copyMap[V any](m map[string]V) map[string]V {
	next := make(map[string]V, len(m))
	for k, v := range m {
		next[k] = v
	}
	return next
}

// --------------------------------------------------------------------------
// Flag
// --------------------------------------------------------------------------

// Flag binds a boolean key.
type Flag struct {
	*Binding[bool]
}

// NewFlag creates a boolean binding.
func NewFlag(mgr *manager.Manager, key string, def bool, opts manager.Options, bopts ...Option[bool]) *Flag {
	return &Flag{Binding: New(mgr, key, def, opts, bopts...)}
}

// Toggle flips the flag.
func (f *Flag) Toggle() {
	f.Update(func(cur bool) bool { return !cur })
}

// SetOn sets the flag to true.
func (f *Flag) SetOn() { f.Set(true) }

// SetOff sets the flag to false.
func (f *Flag) SetOff() { f.Set(false) }

// --------------------------------------------------------------------------
// Counter
// --------------------------------------------------------------------------

// Counter binds a numeric key with optional min/max clamps.
type Counter struct {
	*Binding[int64]
	def int64
	min *int64
	max *int64
}

// CounterOption configures a counter.
type CounterOption func(*Counter)

// WithMin sets the counter's lower clamp.
func WithMin(min int64) CounterOption {
	return func(c *Counter) { c.min = &min }
}

// WithMax sets the counter's upper clamp.
func WithMax(max int64) CounterOption {
	return func(c *Counter) { c.max = &max }
}

// NewCounter creates a numeric binding.
func NewCounter(mgr *manager.Manager, key string, def int64, opts manager.Options, copts ...CounterOption) *Counter {
	c := &Counter{def: def}
	for _, opt := range copts {
		opt(c)
	}
	c.Binding = New(mgr, key, def, opts)
	return c
}

// Add adds delta to the counter, clamped to the configured bounds.
func (c *Counter) Add(delta int64) {
	c.Update(func(cur int64) int64 {
		return c.clamp(cur + delta)
	})
}

// Increment adds one.
func (c *Counter) Increment() { c.Add(1) }

// Decrement subtracts one.
func (c *Counter) Decrement() { c.Add(-1) }

// Reset sets the counter back to its default value.
func (c *Counter) Reset() {
	c.Set(c.clamp(c.def))
}

func (c *Counter) clamp(v int64) int64 {
	if c.min != nil && v < *c.min {
		v = *c.min
	}
	if c.max != nil && v > *c.max {
		v = *c.max
	}
	return v
}

// --------------------------------------------------------------------------
// Group
// --------------------------------------------------------------------------

// Group manages multiple same-typed bindings under one roof.
type Group[T any] struct {
	mgr      *manager.Manager
	def      T
	opts     manager.Options
	bindings map[string]*Binding[T]
}

// NewGroup creates a multi-key binding group over the given keys.
func NewGroup[T any](mgr *manager.Manager, keys []string, def T, opts manager.Options) *Group[T] {
	g := &Group[T]{
		mgr:      mgr,
		def:      def,
		opts:     opts,
		bindings: make(map[string]*Binding[T], len(keys)),
	}
	for _, key := range keys {
		g.bindings[key] = New(mgr, key, def, opts)
	}
	return g
}

// Binding returns the binding for one of the group's keys, or nil.
func (g *Group[T]) Binding(key string) *Binding[T] {
	return g.bindings[key]
}

// Values returns a snapshot of all current values keyed by binding key.
func (g *Group[T]) Values() map[string]T {
	out := make(map[string]T, len(g.bindings))
	for key, b := range g.bindings {
		out[key] = b.Value()
	}
	return out
}

// Set writes the value for one key. Unknown keys are a no-op.
func (g *Group[T]) Set(key string, v T) {
	if b, ok := g.bindings[key]; ok {
		b.Set(v)
	}
}

// SetAll writes the same value to every key in the group.
func (g *Group[T]) SetAll(v T) {
	for _, b := range g.bindings {
		b.Set(v)
	}
}

// RemoveAll removes every key in the group, resetting all mirrors.
func (g *Group[T]) RemoveAll() {
	for _, b := range g.bindings {
		b.Remove()
	}
}

// Close tears down all bindings in the group.
func (g *Group[T]) Close() {
	for _, b := range g.bindings {
		b.Close()
	}
}
