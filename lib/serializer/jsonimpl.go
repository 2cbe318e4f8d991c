package serializer

import (
	gojson "github.com/goccy/go-json"
)

// NewJSONSerializer creates a new serializer using json encoding.
//
// JSON is lossy with respect to Go types: all numbers deserialize as
// float64 and all objects as map[string]any. Use the gob serializer when
// typed round-trips matter.
func NewJSONSerializer() Serializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the Serializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.Serializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(v any) ([]byte, error) {
	return gojson.Marshal(v)
}

func (j jsonSerializerImpl) Deserialize(data []byte) (any, error) {
	var v any
	if err := gojson.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (j jsonSerializerImpl) Name() string {
	return "json"
}
