package manager

import "fmt"

// --------------------------------------------------------------------------
// Error Codes
// --------------------------------------------------------------------------

type ErrCode int

const (
	ErrCQuotaExceeded   ErrCode = iota // write rejected by the backend's capacity limit
	ErrCSerialization                  // encode or encrypt failure
	ErrCDeserialization                // decode or decrypt failure
	ErrCUnknown                        // anything else, e.g. a delete failure
)

func (c ErrCode) String() string {
	switch c {
	case ErrCQuotaExceeded:
		return "QUOTA_EXCEEDED"
	case ErrCSerialization:
		return "SERIALIZATION_ERROR"
	case ErrCDeserialization:
		return "DESERIALIZATION_ERROR"
	case ErrCUnknown:
		return "UNKNOWN_ERROR"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the classified failure type routed through the manager's error
// callback. It never escapes the manager as a panic or a returned error;
// callers always receive a safe fallback value instead.
type Error struct {
	Code ErrCode // The classified error code
	Op   string  // The operation during which the failure occurred
	Key  string  // The logical (unprefixed) key, if any
	Err  error   // The underlying cause
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("StorageError (code %s): %s %q: %v", e.Code, e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("StorageError (code %s): %s: %v", e.Code, e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new storage error with the given code and cause.
func NewError(code ErrCode, op, key string, err error) *Error {
	return &Error{
		Code: code,
		Op:   op,
		Key:  key,
		Err:  err,
	}
}
