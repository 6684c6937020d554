// Package envelope defines the on-store record format: the user payload
// wrapped together with its creation timestamp, optional expiry timestamp
// and a schema version tag.
//
// The version tag is carried through for future migration logic only; no
// component interprets or enforces version compatibility.
package envelope
