package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDTypeString(t *testing.T) {
	assert.Equal(t, "<f4", Float32.String())
	assert.Equal(t, "<f8", Float64.String())
	assert.Equal(t, "<i8", Int64.String())
	assert.Equal(t, "<u1", Uint8.String())
	assert.Equal(t, "<c16", Complex128.String())
	assert.Equal(t, "<b1", Bool.String())
}

func TestParseDType(t *testing.T) {
	for _, dt := range []DType{
		Int8, Int16, Int32, Int64,
		Uint8, Uint16, Uint32, Uint64,
		Float32, Float64,
		Complex64, Complex128,
		Bool,
	} {
		parsed, err := ParseDType(dt.String())
		require.NoError(t, err, "dtype %s", dt)
		assert.Equal(t, dt, parsed)
	}
}

func TestParseDTypeErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"", ErrMalformedValue},
		{"<f", ErrMalformedValue},
		{">f8", ErrMalformedValue}, // big-endian tensors are never produced
		{"|b1", ErrMalformedValue},
		{"<f0", ErrMalformedValue},
		{"<f3", ErrMalformedValue},
		{"<fx", ErrMalformedValue},
		{"<x8", ErrUnsupportedType},
		{"<s4", ErrUnsupportedType},
	}

	for _, tt := range tests {
		_, err := ParseDType(tt.input)
		assert.ErrorIs(t, err, tt.want, "input %q", tt.input)
	}
}

func TestNewTensorValidation(t *testing.T) {
	_, err := NewTensor(Float32, []int{2}, make([]byte, 8))
	assert.NoError(t, err)

	_, err = NewTensor(Float32, []int{2}, make([]byte, 7))
	assert.ErrorIs(t, err, ErrMalformedValue)

	_, err = NewTensor(Float32, []int{-1}, nil)
	assert.ErrorIs(t, err, ErrMalformedValue)

	_, err = NewTensor(DType{Class: 'x', Size: 4}, []int{1}, make([]byte, 4))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

// A decoded shape whose element count wraps the multiplication must not be
// able to pass the length check with a tiny data buffer.
func TestNewTensorShapeOverflow(t *testing.T) {
	_, err := NewTensor(Uint8, []int{math.MaxInt, 2}, nil)
	assert.ErrorIs(t, err, ErrMalformedValue)

	_, err = NewTensor(Uint8, []int{math.MaxInt/2 + 1, 2}, nil)
	assert.ErrorIs(t, err, ErrMalformedValue)

	// the byte-size product can overflow even when the element count fits
	_, err = NewTensor(Complex128, []int{math.MaxInt/8 + 1}, nil)
	assert.ErrorIs(t, err, ErrMalformedValue)

	// a zero extent anywhere keeps the tensor empty and valid
	tensor, err := NewTensor(Uint8, []int{math.MaxInt, 0}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, tensor.Elems())
}

func TestTypedConstructorShapeMismatch(t *testing.T) {
	_, err := FromFloat32s([]float32{1, 2, 3}, 2, 2)
	assert.ErrorIs(t, err, ErrMalformedValue)
}

func TestAccessorDTypeMismatch(t *testing.T) {
	tensor, err := FromFloat32s([]float32{1, 2})
	require.NoError(t, err)

	_, err = tensor.Float64s()
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
