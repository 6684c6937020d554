package manager

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/tabstore/tabstore/lib/bus"
	"github.com/tabstore/tabstore/lib/codec"
	"github.com/tabstore/tabstore/lib/envelope"
	"github.com/tabstore/tabstore/lib/logging"
	"github.com/tabstore/tabstore/lib/rawstore"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// DefaultPrefix namespaces all keys written by a manager.
	DefaultPrefix = "tabstore:"
	// DefaultVersion is the schema version tag written when none is given.
	DefaultVersion = "1.0"
	// AssumedCapacity is the fixed capacity StorageInfo reports as Total.
	// It is an estimate, not an authoritative quota query.
	AssumedCapacity = 5 * 1024 * 1024
)

// --------------------------------------------------------------------------
// Write Results
// --------------------------------------------------------------------------

// WriteResult is the tri-state outcome of SetItem.
type WriteResult int

const (
	// WriteStored means the envelope was persisted.
	WriteStored WriteResult = iota
	// WriteFailed means a failure occurred during encode or write. The
	// store is unchanged and the classified error was routed through the
	// error callback.
	WriteFailed
	// WriteUnavailable means no raw store exists. This is not an error:
	// callers should treat the operation as logically succeeded with
	// nothing persisted, and keep their in-memory mirror updated.
	WriteUnavailable
)

func (r WriteResult) String() string {
	switch r {
	case WriteStored:
		return "stored"
	case WriteFailed:
		return "failed"
	case WriteUnavailable:
		return "unavailable"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Storage Manager
// --------------------------------------------------------------------------

// Manager wraps a raw store into the typed, versioned, expiring, optionally
// encrypted record layer. It holds no per-key state itself; all persisted
// state lives in the raw store. Construct one per logical namespace and keep
// it for the process lifetime.
type Manager struct {
	raw     rawstore.Store // nil = unavailable execution context
	prefix  string
	version string
	onError func(*Error)
	bus     *bus.Bus
	nowFn   func() time.Time
	log     logging.ILogger
}

// New creates a manager over the given raw store. A nil raw store models a
// host without storage; every operation then degrades gracefully.
func New(raw rawstore.Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		raw:     raw,
		prefix:  DefaultPrefix,
		version: DefaultVersion,
		nowFn:   time.Now,
		log:     logging.CreateLogger("manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.onError == nil {
		m.onError = func(err *Error) {
			m.log.Warningf("%v", err)
		}
	}
	return m
}

// Available reports whether an underlying raw store exists.
func (m *Manager) Available() bool {
	return m.raw != nil
}

// Bus returns the attached in-process broadcast, or nil.
func (m *Manager) Bus() *bus.Bus {
	return m.bus
}

// Now returns the manager's current time. Bindings derive staleness and
// remaining-TTL values from the same clock the manager stamps records with.
func (m *Manager) Now() time.Time {
	return m.nowFn()
}

// report classifies a failure, counts it and routes it through the callback.
func (m *Manager) report(code ErrCode, op, key string, err error) {
	metrics.GetOrCreateCounter(`tabstore_errors_total{code="` + code.String() + `"}`).Inc()
	m.onError(NewError(code, op, key, err))
}

func (m *Manager) storageKey(key string) string {
	return m.prefix + key
}

// --------------------------------------------------------------------------
// Write Path
// --------------------------------------------------------------------------

// SetItem builds an envelope around value and persists it under the
// prefixed key. On success the change is broadcast on the bus unless
// opts.SyncAcrossTabs is false. SetItem never panics; failures are routed
// through the error callback and reported as WriteFailed.
func (m *Manager) SetItem(key string, value any, opts Options) WriteResult {
	if m.raw == nil {
		return WriteUnavailable
	}

	text, err := m.encode(value, opts)
	if err != nil {
		m.report(ErrCSerialization, "set", key, err)
		return WriteFailed
	}

	// best-effort previous value for the broadcast payload
	var oldValue any
	broadcast := m.bus != nil && opts.sync()
	if broadcast {
		oldValue, _ = m.getAny(key, opts)
	}

	if err := m.raw.Set(m.storageKey(key), text); err != nil {
		if rawstore.IsQuotaError(err) {
			m.report(ErrCQuotaExceeded, "set", key, err)
		} else {
			m.report(ErrCSerialization, "set", key, err)
		}
		return WriteFailed
	}
	metrics.GetOrCreateCounter("tabstore_writes_total").Inc()

	if broadcast {
		m.bus.Publish(bus.Event{Key: key, NewValue: value, OldValue: oldValue})
	}
	return WriteStored
}

// encode serializes value into the stored text: codec -> envelope -> JSON,
// optionally passed through AES-GCM when AutoEncrypt is set.
func (m *Manager) encode(value any, opts Options) (string, error) {
	payload, err := encodeValue(opts.codecOrDefault(), value)
	if err != nil {
		return "", err
	}

	version := opts.Version
	if version == "" {
		version = m.version
	}

	data, err := envelope.New(payload, opts.TTL, version, m.nowFn()).Encode()
	if err != nil {
		return "", err
	}

	if opts.AutoEncrypt {
		if opts.SecretKey == "" {
			return "", errors.New("autoEncrypt requires a secretKey")
		}
		return encryptText(data, opts.SecretKey)
	}
	return string(data), nil
}

// encodeValue turns a payload into the envelope's raw JSON value. Binary
// codec output is wrapped as a base64 JSON string.
func encodeValue(c codec.Codec, value any) (json.RawMessage, error) {
	data, err := c.Marshal(value)
	if err != nil {
		return nil, err
	}
	if c.Binary() {
		return json.Marshal(data)
	}
	return data, nil
}

// decodeValue is the inverse of encodeValue.
func decodeValue(c codec.Codec, raw json.RawMessage, out any) error {
	if c.Binary() {
		var data []byte
		if err := json.Unmarshal(raw, &data); err != nil {
			return err
		}
		return c.Unmarshal(data, out)
	}
	return c.Unmarshal(raw, out)
}

// --------------------------------------------------------------------------
// Read Path
// --------------------------------------------------------------------------

// GetItem reads the envelope for key and decodes its payload into out
// (a non-nil pointer). It returns false when the key is absent, expired or
// undecodable. Expiration is enforced lazily here: an expired record is
// deleted as a side effect. GetItem never panics and never returns an
// error; decode failures are routed through the error callback.
func (m *Manager) GetItem(key string, out any, opts Options) bool {
	env, ok := m.getEnvelope(key, opts)
	if !ok {
		return false
	}
	if err := decodeValue(opts.codecOrDefault(), env.Value, out); err != nil {
		m.report(ErrCDeserialization, "get", key, err)
		return false
	}
	metrics.GetOrCreateCounter("tabstore_reads_total").Inc()
	return true
}

// GetItem is the generic form of Manager.GetItem. It returns the zero value
// of T when the item is absent.
func GetItem[T any](m *Manager, key string, opts Options) (T, bool) {
	var v T
	ok := m.GetItem(key, &v, opts)
	return v, ok
}

// getEnvelope reads, decrypts and parses the envelope for key, applying
// lazy expiration.
func (m *Manager) getEnvelope(key string, opts Options) (envelope.Envelope, bool) {
	if m.raw == nil {
		return envelope.Envelope{}, false
	}

	text, ok := m.raw.Get(m.storageKey(key))
	if !ok {
		return envelope.Envelope{}, false
	}

	data := []byte(text)
	if opts.AutoEncrypt && opts.SecretKey != "" {
		plain, err := decryptText(text, opts.SecretKey)
		if err != nil {
			m.report(ErrCDeserialization, "get", key, err)
			return envelope.Envelope{}, false
		}
		data = plain
	}

	env, err := envelope.Decode(data)
	if err != nil {
		m.report(ErrCDeserialization, "get", key, err)
		return envelope.Envelope{}, false
	}

	if env.Expired(m.nowFn()) {
		m.raw.Remove(m.storageKey(key))
		return envelope.Envelope{}, false
	}
	return env, true
}

// getAny decodes the current payload into an untyped value for the
// broadcast's best-effort old value. Binary codecs are skipped since they
// cannot decode into an unknown type.
func (m *Manager) getAny(key string, opts Options) (any, bool) {
	c := opts.codecOrDefault()
	if c.Binary() {
		return nil, false
	}
	env, ok := m.getEnvelope(key, opts)
	if !ok {
		return nil, false
	}
	var v any
	if err := c.Unmarshal(env.Value, &v); err != nil {
		return nil, false
	}
	return v, true
}

// HasItem reports whether GetItem would return a value, i.e. it respects
// expiration (and applies the same lazy deletion).
func (m *Manager) HasItem(key string, opts Options) bool {
	_, ok := m.getEnvelope(key, opts)
	return ok
}

// ItemMetadata reads the envelope's metadata without applying
// expiration-triggered deletion or encryption-aware decoding. For encrypted
// entries the result is best effort and implementation-defined.
func (m *Manager) ItemMetadata(key string) (envelope.Metadata, bool) {
	if m.raw == nil {
		return envelope.Metadata{}, false
	}
	text, ok := m.raw.Get(m.storageKey(key))
	if !ok {
		return envelope.Metadata{}, false
	}
	env, err := envelope.Decode([]byte(text))
	if err != nil {
		return envelope.Metadata{}, false
	}
	return env.Metadata(), true
}

// Raw returns the undecoded stored text for key. Bindings use this to
// detect whether an external change actually altered the raw value before
// paying for a full re-read.
func (m *Manager) Raw(key string) (string, bool) {
	if m.raw == nil {
		return "", false
	}
	return m.raw.Get(m.storageKey(key))
}

// --------------------------------------------------------------------------
// Maintenance Operations
// --------------------------------------------------------------------------

// RemoveItem deletes the entry for key. Failures are swallowed and reported
// as UNKNOWN_ERROR; removing an absent key is a no-op.
func (m *Manager) RemoveItem(key string) {
	if m.raw == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.report(ErrCUnknown, "remove", key, errors.New("remove panicked"))
		}
	}()
	m.raw.Remove(m.storageKey(key))
	metrics.GetOrCreateCounter("tabstore_removes_total").Inc()
}

// Clear deletes every entry under the manager's prefix. Entries outside the
// namespace are left alone.
func (m *Manager) Clear() {
	if m.raw == nil {
		return
	}
	for _, k := range m.raw.Keys() {
		if len(k) >= len(m.prefix) && k[:len(m.prefix)] == m.prefix {
			m.raw.Remove(k)
		}
	}
}

// AllKeys returns all stored keys under the prefix, prefix stripped, in the
// raw store's enumeration order.
func (m *Manager) AllKeys() []string {
	if m.raw == nil {
		return nil
	}
	var keys []string
	for _, k := range m.raw.Keys() {
		if len(k) >= len(m.prefix) && k[:len(m.prefix)] == m.prefix {
			keys = append(keys, k[len(m.prefix):])
		}
	}
	return keys
}

// StorageInfo is a usage estimate over the whole raw store.
type StorageInfo struct {
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
	Total     int `json:"total"`
}

// GetStorageInfo sums key and value lengths over all raw entries (not just
// the prefixed ones) against the fixed assumed capacity.
func (m *Manager) GetStorageInfo() StorageInfo {
	info := StorageInfo{Total: AssumedCapacity}
	if m.raw == nil {
		info.Remaining = info.Total
		return info
	}
	for _, k := range m.raw.Keys() {
		v, _ := m.raw.Get(k)
		info.Used += len(k) + len(v)
	}
	info.Remaining = info.Total - info.Used
	return info
}

// CleanupExpired deletes every prefixed entry that is expired or
// unparsable. Corrupt entries count as cleanup candidates, not data worth
// preserving. Returns the number of deleted entries.
func (m *Manager) CleanupExpired() int {
	if m.raw == nil {
		return 0
	}
	now := m.nowFn()
	count := 0
	for _, k := range m.raw.Keys() {
		if len(k) < len(m.prefix) || k[:len(m.prefix)] != m.prefix {
			continue
		}
		text, ok := m.raw.Get(k)
		if !ok {
			continue
		}
		env, err := envelope.Decode([]byte(text))
		if err != nil || env.Expired(now) {
			m.raw.Remove(k)
			count++
		}
	}
	if count > 0 {
		metrics.GetOrCreateCounter("tabstore_cleanup_removed_total").Add(count)
	}
	return count
}
