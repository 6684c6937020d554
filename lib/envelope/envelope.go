package envelope

import (
	"encoding/json"
	"time"
)

// --------------------------------------------------------------------------
// Envelope Type
// --------------------------------------------------------------------------

// Envelope is the persisted representation of a stored value. The payload is
// kept as raw JSON so the manager can apply the configured value codec
// independently of the envelope encoding.
//
// An envelope is immutable once written: a later write for the same key
// replaces the whole envelope, it never patches CreatedAt.
type Envelope struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt *int64          `json:"expiresAt"` // unix ms, nil = never expires
	CreatedAt int64           `json:"createdAt"` // unix ms, set at write time
	Version   string          `json:"version"`   // free-form schema tag
}

// Metadata is the envelope without its payload.
type Metadata struct {
	CreatedAt int64  `json:"createdAt"`
	ExpiresAt *int64 `json:"expiresAt"`
	Version   string `json:"version"`
}

// New builds an envelope around an already-encoded payload. A ttl of zero
// means the record never expires.
func New(value json.RawMessage, ttl time.Duration, version string, now time.Time) Envelope {
	env := Envelope{
		Value:     value,
		CreatedAt: now.UnixMilli(),
		Version:   version,
	}
	if ttl > 0 {
		expiresAt := now.Add(ttl).UnixMilli()
		env.ExpiresAt = &expiresAt
	}
	return env
}

// --------------------------------------------------------------------------
// Expiration
// --------------------------------------------------------------------------

// Expired reports whether the record is logically deleted at the given time.
// Records without an expiry timestamp never expire.
func (e Envelope) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.UnixMilli() > *e.ExpiresAt
}

// Remaining returns the clamped-non-negative time until expiry. The boolean
// return value is false when the record has no expiry timestamp.
func (e Envelope) Remaining(now time.Time) (time.Duration, bool) {
	if e.ExpiresAt == nil {
		return 0, false
	}
	d := time.Duration(*e.ExpiresAt-now.UnixMilli()) * time.Millisecond
	if d < 0 {
		d = 0
	}
	return d, true
}

// Metadata returns the envelope's metadata projection.
func (e Envelope) Metadata() Metadata {
	return Metadata{
		CreatedAt: e.CreatedAt,
		ExpiresAt: e.ExpiresAt,
		Version:   e.Version,
	}
}

// --------------------------------------------------------------------------
// Wire Format
// --------------------------------------------------------------------------

// Encode serializes the envelope to its JSON wire format:
//
//	{"value":<T>,"expiresAt":number|null,"createdAt":number,"version":string}
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses an envelope from its JSON wire format.
func Decode(data []byte) (Envelope, error) {
	var e Envelope
	err := json.Unmarshal(data, &e)
	return e, err
}
