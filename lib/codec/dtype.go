package codec

import (
	"fmt"
	"strconv"
)

// --------------------------------------------------------------------------
// Element classes
// --------------------------------------------------------------------------

// Class identifies the numeric class of a tensor element.
type Class byte

const (
	ClassInt     Class = 'i' // signed integer
	ClassUint    Class = 'u' // unsigned integer
	ClassFloat   Class = 'f' // floating point
	ClassComplex Class = 'c' // complex
	ClassBool    Class = 'b' // boolean
)

func (c Class) supported() bool {
	switch c {
	case ClassInt, ClassUint, ClassFloat, ClassComplex, ClassBool:
		return true
	default:
		return false
	}
}

func (c Class) String() string {
	return string(byte(c))
}

// --------------------------------------------------------------------------
// DType
// --------------------------------------------------------------------------

// DType describes the element type of a tensor: a class and a byte width.
// Tensors are always little-endian on the wire; the dtype string format has
// room for a byte-order character but only "<" is ever produced or accepted.
type DType struct {
	Class Class
	Size  int // element width in bytes
}

// Common dtypes.
var (
	Int8       = DType{ClassInt, 1}
	Int16      = DType{ClassInt, 2}
	Int32      = DType{ClassInt, 4}
	Int64      = DType{ClassInt, 8}
	Uint8      = DType{ClassUint, 1}
	Uint16     = DType{ClassUint, 2}
	Uint32     = DType{ClassUint, 4}
	Uint64     = DType{ClassUint, 8}
	Float32    = DType{ClassFloat, 4}
	Float64    = DType{ClassFloat, 8}
	Complex64  = DType{ClassComplex, 8}
	Complex128 = DType{ClassComplex, 16}
	Bool       = DType{ClassBool, 1}
)

func validWidth(size int) bool {
	switch size {
	case 1, 2, 4, 8, 16:
		return true
	default:
		return false
	}
}

// String renders the wire form of the dtype, e.g. "<f4" for a little-endian
// 4-byte float.
func (d DType) String() string {
	return "<" + string(byte(d.Class)) + strconv.Itoa(d.Size)
}

// Valid reports whether the dtype has a supported class and element width.
func (d DType) Valid() bool {
	return d.Class.supported() && validWidth(d.Size)
}

// ParseDType parses the wire form of a dtype string.
// Unknown classes yield ErrUnsupportedType; anything structurally wrong
// yields ErrMalformedValue.
func ParseDType(s string) (DType, error) {
	if len(s) < 3 {
		return DType{}, fmt.Errorf("%w: dtype string %q too short", ErrMalformedValue, s)
	}
	if s[0] != '<' {
		return DType{}, fmt.Errorf("%w: dtype string %q has unsupported byte order", ErrMalformedValue, s)
	}

	class := Class(s[1])
	if !class.supported() {
		return DType{}, fmt.Errorf("%w: dtype class %q", ErrUnsupportedType, string(s[1]))
	}

	size, err := strconv.Atoi(s[2:])
	if err != nil || !validWidth(size) {
		return DType{}, fmt.Errorf("%w: dtype string %q has invalid width", ErrMalformedValue, s)
	}

	return DType{Class: class, Size: size}, nil
}
