package codec

// Codec is the interface for all value (de)serializers. The storage manager
// applies a codec to the user payload before wrapping it in an envelope, so
// callers can swap the default JSON encoding per operation.
type Codec interface {
	// Marshal serializes a value into a byte slice.
	// It returns the serialized bytes and an error if any.
	Marshal(v any) ([]byte, error)
	// Unmarshal deserializes a byte slice into the value pointed to by v.
	// It returns an error if any.
	Unmarshal(data []byte, v any) error
	// Binary reports whether the encoded form is opaque bytes rather than
	// valid JSON. Binary output is embedded into envelopes as a base64
	// string instead of raw JSON.
	Binary() bool
}
