package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// --------------------------------------------------------------------------
// Tensor
// --------------------------------------------------------------------------

// Tensor is an n-dimensional numeric array with a fixed element dtype and
// shape over a contiguous little-endian byte buffer. A tensor owns its
// bytes: constructors and decode copy their inputs, so a Tensor never
// aliases caller or codec memory.
//
// An empty shape (ndim 0) describes a scalar holding exactly one element.
type Tensor struct {
	dtype DType
	shape []int
	data  []byte
}

// NewTensor builds a tensor from a dtype, shape and raw element bytes.
// The data length must equal the product of the shape extents times the
// element width; both shape and data are copied.
func NewTensor(dtype DType, shape []int, data []byte) (*Tensor, error) {
	if !dtype.Valid() {
		return nil, fmt.Errorf("%w: dtype %s", ErrUnsupportedType, dtype)
	}

	elems := 1
	for _, dim := range shape {
		if dim < 0 {
			return nil, fmt.Errorf("%w: negative dimension %d", ErrMalformedValue, dim)
		}
		// guard the product so decoded shapes cannot wrap it around
		if dim != 0 && elems > math.MaxInt/dim {
			return nil, fmt.Errorf("%w: shape %v element count overflows", ErrMalformedValue, shape)
		}
		elems *= dim
	}
	if elems > math.MaxInt/dtype.Size {
		return nil, fmt.Errorf("%w: shape %v byte size overflows", ErrMalformedValue, shape)
	}

	if want := elems * dtype.Size; len(data) != want {
		return nil, fmt.Errorf("%w: dtype %s with shape %v requires %d data bytes, got %d",
			ErrMalformedValue, dtype, shape, want, len(data))
	}

	shapeCopy := append([]int(nil), shape...)
	dataCopy := append([]byte(nil), data...)

	return &Tensor{dtype: dtype, shape: shapeCopy, data: dataCopy}, nil
}

// DType returns the element type.
func (t *Tensor) DType() DType {
	return t.dtype
}

// Shape returns a copy of the dimension extents. An empty shape means a
// scalar.
func (t *Tensor) Shape() []int {
	return append([]int(nil), t.shape...)
}

// NDim returns the number of dimensions.
func (t *Tensor) NDim() int {
	return len(t.shape)
}

// Elems returns the number of elements.
func (t *Tensor) Elems() int {
	elems := 1
	for _, dim := range t.shape {
		elems *= dim
	}
	return elems
}

// Data exposes the backing bytes. The slice must not be modified.
func (t *Tensor) Data() []byte {
	return t.data
}

// Equal reports bit-exact equality: same dtype, same shape, same bytes.
func (t *Tensor) Equal(o *Tensor) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.dtype != o.dtype || len(t.shape) != len(o.shape) {
		return false
	}
	for i := range t.shape {
		if t.shape[i] != o.shape[i] {
			return false
		}
	}
	return bytes.Equal(t.data, o.data)
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(%s, shape=%v)", t.dtype, t.shape)
}

// --------------------------------------------------------------------------
// Typed constructors
// --------------------------------------------------------------------------

// checkShape verifies that the optional shape matches the value count; an
// omitted shape defaults to a flat 1-d vector.
func checkShape(count int, shape []int) ([]int, error) {
	if len(shape) == 0 {
		return []int{count}, nil
	}
	elems := 1
	for _, dim := range shape {
		elems *= dim
	}
	if elems != count {
		return nil, fmt.Errorf("%w: shape %v does not hold %d values", ErrMalformedValue, shape, count)
	}
	return shape, nil
}

// FromFloat32s builds a float32 tensor. With no shape given the tensor is a
// flat vector.
func FromFloat32s(values []float32, shape ...int) (*Tensor, error) {
	shape, err := checkShape(len(values), shape)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, len(values)*4)
	for _, v := range values {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
	}
	return NewTensor(Float32, shape, data)
}

// FromFloat64s builds a float64 tensor.
func FromFloat64s(values []float64, shape ...int) (*Tensor, error) {
	shape, err := checkShape(len(values), shape)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, len(values)*8)
	for _, v := range values {
		data = binary.LittleEndian.AppendUint64(data, math.Float64bits(v))
	}
	return NewTensor(Float64, shape, data)
}

// FromInt32s builds an int32 tensor.
func FromInt32s(values []int32, shape ...int) (*Tensor, error) {
	shape, err := checkShape(len(values), shape)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, len(values)*4)
	for _, v := range values {
		data = binary.LittleEndian.AppendUint32(data, uint32(v))
	}
	return NewTensor(Int32, shape, data)
}

// FromInt64s builds an int64 tensor.
func FromInt64s(values []int64, shape ...int) (*Tensor, error) {
	shape, err := checkShape(len(values), shape)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, len(values)*8)
	for _, v := range values {
		data = binary.LittleEndian.AppendUint64(data, uint64(v))
	}
	return NewTensor(Int64, shape, data)
}

// FromUint64s builds a uint64 tensor.
func FromUint64s(values []uint64, shape ...int) (*Tensor, error) {
	shape, err := checkShape(len(values), shape)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, len(values)*8)
	for _, v := range values {
		data = binary.LittleEndian.AppendUint64(data, v)
	}
	return NewTensor(Uint64, shape, data)
}

// FromBools builds a bool tensor.
func FromBools(values []bool, shape ...int) (*Tensor, error) {
	shape, err := checkShape(len(values), shape)
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(values))
	for i, v := range values {
		if v {
			data[i] = 1
		}
	}
	return NewTensor(Bool, shape, data)
}

// FromComplex128s builds a complex128 tensor.
func FromComplex128s(values []complex128, shape ...int) (*Tensor, error) {
	shape, err := checkShape(len(values), shape)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, len(values)*16)
	for _, v := range values {
		data = binary.LittleEndian.AppendUint64(data, math.Float64bits(real(v)))
		data = binary.LittleEndian.AppendUint64(data, math.Float64bits(imag(v)))
	}
	return NewTensor(Complex128, shape, data)
}

// --------------------------------------------------------------------------
// Typed accessors
// --------------------------------------------------------------------------

func (t *Tensor) requireDType(want DType) error {
	if t.dtype != want {
		return fmt.Errorf("%w: tensor is %s, not %s", ErrUnsupportedType, t.dtype, want)
	}
	return nil
}

// Float32s decodes the elements of a float32 tensor.
func (t *Tensor) Float32s() ([]float32, error) {
	if err := t.requireDType(Float32); err != nil {
		return nil, err
	}
	values := make([]float32, t.Elems())
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(t.data[i*4:]))
	}
	return values, nil
}

// Float64s decodes the elements of a float64 tensor.
func (t *Tensor) Float64s() ([]float64, error) {
	if err := t.requireDType(Float64); err != nil {
		return nil, err
	}
	values := make([]float64, t.Elems())
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(t.data[i*8:]))
	}
	return values, nil
}

// Int32s decodes the elements of an int32 tensor.
func (t *Tensor) Int32s() ([]int32, error) {
	if err := t.requireDType(Int32); err != nil {
		return nil, err
	}
	values := make([]int32, t.Elems())
	for i := range values {
		values[i] = int32(binary.LittleEndian.Uint32(t.data[i*4:]))
	}
	return values, nil
}

// Int64s decodes the elements of an int64 tensor.
func (t *Tensor) Int64s() ([]int64, error) {
	if err := t.requireDType(Int64); err != nil {
		return nil, err
	}
	values := make([]int64, t.Elems())
	for i := range values {
		values[i] = int64(binary.LittleEndian.Uint64(t.data[i*8:]))
	}
	return values, nil
}

// Uint64s decodes the elements of a uint64 tensor.
func (t *Tensor) Uint64s() ([]uint64, error) {
	if err := t.requireDType(Uint64); err != nil {
		return nil, err
	}
	values := make([]uint64, t.Elems())
	for i := range values {
		values[i] = binary.LittleEndian.Uint64(t.data[i*8:])
	}
	return values, nil
}

// Bools decodes the elements of a bool tensor.
func (t *Tensor) Bools() ([]bool, error) {
	if err := t.requireDType(Bool); err != nil {
		return nil, err
	}
	values := make([]bool, t.Elems())
	for i := range values {
		values[i] = t.data[i] != 0
	}
	return values, nil
}

// Complex128s decodes the elements of a complex128 tensor.
func (t *Tensor) Complex128s() ([]complex128, error) {
	if err := t.requireDType(Complex128); err != nil {
		return nil, err
	}
	values := make([]complex128, t.Elems())
	for i := range values {
		re := math.Float64frombits(binary.LittleEndian.Uint64(t.data[i*16:]))
		im := math.Float64frombits(binary.LittleEndian.Uint64(t.data[i*16+8:]))
		values[i] = complex(re, im)
	}
	return values, nil
}
