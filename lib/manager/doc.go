// Package manager implements the storage manager: the core engine that
// turns a raw string store into a typed, versioned, expiring, optionally
// encrypted record layer.
//
// Policy decisions live here and nowhere else:
//
//   - Namespacing: every key is stored under a configurable prefix.
//   - Expiration: enforced lazily on read (and via CleanupExpired), never by
//     a background timer owned by this package. The resulting staleness
//     window is an accepted low-overhead trade-off, not a defect.
//   - Encryption: when enabled per operation, the whole serialized envelope
//     is passed through AES-256-GCM and only ciphertext is persisted.
//     Note that ItemMetadata does not decrypt, and CleanupExpired treats
//     ciphertext as unparsable - callers mixing encryption with those
//     operations must use a separate prefix.
//   - Error policy: no failure escapes the manager boundary. Everything is
//     classified (QUOTA_EXCEEDED, SERIALIZATION_ERROR, DESERIALIZATION_ERROR,
//     UNKNOWN_ERROR), routed through a single configurable callback, and a
//     safe fallback value is returned to the caller.
//
// The manager holds no per-key state. All persisted bytes are owned by the
// raw store; in-memory mirrors are owned by the bindings built on top.
package manager
