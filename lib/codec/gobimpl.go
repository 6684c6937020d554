package codec

import (
	"bytes"
	"encoding/gob"
)

// NewGOBCodec creates a new codec using gob encoding.
// Gob output is binary and is therefore embedded into envelopes as base64.
func NewGOBCodec() Codec {
	return &gobCodecImpl{}
}

// gobCodecImpl implements the Codec interface using gob encoding
type gobCodecImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.Codec)
// --------------------------------------------------------------------------

func (c gobCodecImpl) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c gobCodecImpl) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (c gobCodecImpl) Binary() bool {
	return true
}
