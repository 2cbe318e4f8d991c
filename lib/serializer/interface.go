package serializer

// Serializer is the interface for all opaque value serializers.
type Serializer interface {
	// Serialize serializes a value into a byte array.
	// It returns the serialized byte array and an error if any.
	Serialize(v any) ([]byte, error)
	// Deserialize deserializes a byte array into a value.
	// It returns the reconstructed value and an error if any.
	Deserialize(data []byte) (any, error)
	// Name returns the stable name of the serializer.
	Name() string
}

// ByName returns a built-in serializer by its stable name.
func ByName(name string) (Serializer, bool) {
	switch name {
	case "gob":
		return NewGOBSerializer(), true
	case "json":
		return NewJSONSerializer(), true
	default:
		return nil, false
	}
}
