package serializer

import (
	"bytes"
	"encoding/gob"
	"time"
)

// envelope wraps the caller's value so that interface-typed payloads
// round-trip through gob.
type envelope struct {
	V any
}

func init() {
	// Pre-register the concrete types commonly stored through the facade.
	// gob transmits interface payloads by registered type name.
	for _, v := range []any{
		int(0), int8(0), int16(0), int32(0), int64(0),
		uint(0), uint8(0), uint16(0), uint32(0), uint64(0),
		float32(0), float64(0), complex64(0), complex128(0),
		false, "", []byte(nil), []any(nil), []string(nil),
		map[string]any(nil), map[string]string(nil),
		time.Time{},
	} {
		gob.Register(v)
	}
}

// Register makes a concrete type known to the gob serializer. Callers
// storing custom struct types through the facade must register them once
// before the first Serialize or Deserialize call.
func Register(v any) {
	gob.Register(v)
}

// NewGOBSerializer creates a new serializer using Go's binary gob format.
func NewGOBSerializer() Serializer {
	return &gobSerializerImpl{}
}

// gobSerializerImpl implements the Serializer interface using gob encoding
type gobSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.Serializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) Serialize(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(envelope{V: v}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g gobSerializerImpl) Deserialize(data []byte) (any, error) {
	var env envelope
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&env); err != nil {
		return nil, err
	}
	return env.V, nil
}

func (g gobSerializerImpl) Name() string {
	return "gob"
}
