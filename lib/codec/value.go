package codec

import "reflect"

// --------------------------------------------------------------------------
// Value (tagged union over tensor and opaque)
// --------------------------------------------------------------------------

// ValueKind selects the variant a Value holds.
type ValueKind uint8

const (
	// KindOpaque marks a value serialized by the pluggable opaque
	// serializer.
	KindOpaque ValueKind = iota
	// KindTensor marks a native numeric array.
	KindTensor
)

func (k ValueKind) String() string {
	switch k {
	case KindOpaque:
		return "opaque"
	case KindTensor:
		return "tensor"
	default:
		return "unknown"
	}
}

// Value is the tagged union the codec operates on: either a Tensor or an
// arbitrary opaque Go value.
type Value struct {
	kind   ValueKind
	tensor *Tensor
	opaque any
}

// TensorValue wraps a tensor.
func TensorValue(t *Tensor) Value {
	return Value{kind: KindTensor, tensor: t}
}

// OpaqueValue wraps an arbitrary value for the opaque serializer.
func OpaqueValue(v any) Value {
	return Value{kind: KindOpaque, opaque: v}
}

// FromAny classifies an arbitrary value: tensors stay native, everything
// else becomes opaque. A Value passes through unchanged.
func FromAny(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case *Tensor:
		return TensorValue(x)
	case Tensor:
		return TensorValue(&x)
	default:
		return OpaqueValue(v)
	}
}

// Kind returns the variant this value holds.
func (v Value) Kind() ValueKind {
	return v.kind
}

// Tensor returns the tensor variant. The boolean reports whether the value
// is a tensor.
func (v Value) Tensor() (*Tensor, bool) {
	return v.tensor, v.kind == KindTensor
}

// Opaque returns the opaque variant. The boolean reports whether the value
// is opaque.
func (v Value) Opaque() (any, bool) {
	return v.opaque, v.kind == KindOpaque
}

// Any unwraps the value to its plain Go representation: the *Tensor for
// tensors, the opaque payload otherwise.
func (v Value) Any() any {
	if v.kind == KindTensor {
		return v.tensor
	}
	return v.opaque
}

// Equal compares two values: tensors bit-exactly, opaque payloads by deep
// equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindTensor {
		return v.tensor.Equal(o.tensor)
	}
	return reflect.DeepEqual(v.opaque, o.opaque)
}
