package manager

import (
	"time"

	"github.com/tabstore/tabstore/lib/bus"
	"github.com/tabstore/tabstore/lib/codec"
)

// --------------------------------------------------------------------------
// Per-Operation Options
// --------------------------------------------------------------------------

// Options configures a single manager operation. The zero value means: no
// expiry, default JSON codec, sync across processes, default schema version,
// no encryption. Options are passed per call and never stored.
type Options struct {
	// TTL is converted to an absolute expiry timestamp at write time.
	// Zero means the record never expires.
	TTL time.Duration
	// Codec overrides the default JSON value codec.
	Codec codec.Codec
	// SyncAcrossTabs controls whether a successful write is broadcast on the
	// bus. Nil defaults to true.
	SyncAcrossTabs *bool
	// Version overrides the manager's default schema version tag.
	Version string
	// AutoEncrypt enables symmetric encryption of the serialized envelope.
	// Requires SecretKey to be set as well.
	AutoEncrypt bool
	// SecretKey is the caller-supplied secret for AutoEncrypt.
	SecretKey string
}

// codecOrDefault returns the configured codec, falling back to JSON.
func (o Options) codecOrDefault() codec.Codec {
	if o.Codec != nil {
		return o.Codec
	}
	return codec.NewJSONCodec()
}

// sync reports whether the write should be broadcast (default true).
func (o Options) sync() bool {
	return o.SyncAcrossTabs == nil || *o.SyncAcrossTabs
}

// Bool is a convenience helper for the SyncAcrossTabs pointer field.
func Bool(v bool) *bool {
	return &v
}

// --------------------------------------------------------------------------
// Manager Construction Options
// --------------------------------------------------------------------------

// ManagerOption configures a Manager at construction time.
type ManagerOption func(*Manager)

// WithPrefix sets the namespace prefix. Stored keys become "<prefix><key>".
func WithPrefix(prefix string) ManagerOption {
	return func(m *Manager) {
		m.prefix = prefix
	}
}

// WithDefaultVersion sets the schema version tag written when a per-call
// Options.Version is empty.
func WithDefaultVersion(version string) ManagerOption {
	return func(m *Manager) {
		m.version = version
	}
}

// WithErrorHandler installs the error callback. The default handler logs a
// warning.
func WithErrorHandler(fn func(*Error)) ManagerOption {
	return func(m *Manager) {
		m.onError = fn
	}
}

// WithBus attaches the in-process change broadcast.
func WithBus(b *bus.Bus) ManagerOption {
	return func(m *Manager) {
		m.bus = b
	}
}

// WithClock overrides the time source. Used by tests to advance a fake
// clock past TTLs.
func WithClock(nowFn func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFn = nowFn
	}
}
