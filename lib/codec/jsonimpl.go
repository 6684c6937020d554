package codec

import (
	"encoding/json"
)

// NewJSONCodec creates a new codec using json encoding.
// This is the default codec of the storage manager.
func NewJSONCodec() Codec {
	return &jsonCodecImpl{}
}

// jsonCodecImpl implements the Codec interface using json encoding
type jsonCodecImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.Codec)
// --------------------------------------------------------------------------

func (c jsonCodecImpl) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c jsonCodecImpl) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (c jsonCodecImpl) Binary() bool {
	return false
}
