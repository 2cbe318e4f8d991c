package codec

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharedbox/sharedbox/lib/serializer"
)

func mustTensor(tensor *Tensor, err error) *Tensor {
	if err != nil {
		panic(err)
	}
	return tensor
}

func TestTensorRoundTrip(t *testing.T) {
	scalar, err := NewTensor(Float64, nil, []byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F}) // 1.0
	require.NoError(t, err)

	tests := []struct {
		name   string
		tensor *Tensor
	}{
		{"scalar float64", scalar},
		{"1d float32", mustTensor(FromFloat32s([]float32{1.5, -2.25, 3.75}))},
		{"2d float32", mustTensor(FromFloat32s([]float32{1, 2, 3, 4, 5, 6}, 2, 3))},
		{"3d int64", mustTensor(FromInt64s([]int64{1, -2, 3, -4, 5, -6, 7, -8}, 2, 2, 2))},
		{"1d int32", mustTensor(FromInt32s([]int32{-1, 0, 1}))},
		{"1d uint64", mustTensor(FromUint64s([]uint64{0, 1, 1 << 63}))},
		{"2d bool", mustTensor(FromBools([]bool{true, false, false, true}, 2, 2))},
		{"1d complex128", mustTensor(FromComplex128s([]complex128{1 + 2i, -3 - 4i}))},
		{"empty 1d", mustTensor(FromFloat64s(nil))},
	}

	c := New(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := c.Encode(TensorValue(tt.tensor))
			require.NoError(t, err)
			require.Equal(t, byte(0x01), encoded[0], "tensor marker")

			decoded, err := c.Decode(encoded)
			require.NoError(t, err)

			got, ok := decoded.Tensor()
			require.True(t, ok, "expected a tensor back")
			assert.True(t, tt.tensor.Equal(got),
				"round-trip mismatch: sent %v, got %v", tt.tensor, got)
			assert.Empty(t, cmp.Diff(tt.tensor.Shape(), got.Shape()))
			assert.Equal(t, tt.tensor.DType(), got.DType())
		})
	}
}

func TestTensorAccessorsAfterRoundTrip(t *testing.T) {
	c := New(nil)

	original := mustTensor(FromFloat32s([]float32{1, 2, 3, 4, 5, 6}, 2, 3))

	encoded, err := c.Encode(TensorValue(original))
	require.NoError(t, err)
	decoded, err := c.Decode(encoded)
	require.NoError(t, err)

	got, ok := decoded.Tensor()
	require.True(t, ok)

	values, err := got.Float32s()
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff([]float32{1, 2, 3, 4, 5, 6}, values))
	assert.Equal(t, []int{2, 3}, got.Shape())

	// the decoded tensor owns its bytes: corrupting the wire buffer after
	// the fact must not reach it
	for i := range encoded {
		encoded[i] ^= 0xFF
	}
	assert.True(t, original.Equal(got))
}

func TestOpaqueRoundTrip(t *testing.T) {
	c := New(serializer.NewGOBSerializer())

	values := []any{
		"a string",
		int(42),
		float64(3.5),
		true,
		[]any{"nested", float64(1)},
		map[string]any{"k": "v"},
	}

	for _, value := range values {
		encoded, err := c.EncodeAny(value)
		require.NoError(t, err)
		require.Equal(t, byte(0x00), encoded[0], "opaque marker")

		decoded, err := c.Decode(encoded)
		require.NoError(t, err)

		got, ok := decoded.Opaque()
		require.True(t, ok, "expected an opaque value back")
		assert.Equal(t, value, got)
	}
}

func TestMarkerNeverExceedsOne(t *testing.T) {
	c := New(nil)

	tensorBytes, err := c.EncodeAny(mustTensor(FromInt64s([]int64{1})))
	require.NoError(t, err)
	opaqueBytes, err := c.EncodeAny("anything")
	require.NoError(t, err)

	assert.Equal(t, byte(0x01), tensorBytes[0])
	assert.Equal(t, byte(0x00), opaqueBytes[0])
}

// Legacy data predates the marker convention: any first byte other than
// 0x00/0x01 means the whole buffer, first byte included, is the serializer
// payload. JSON makes this deterministic because a serialized string starts
// with '"'.
func TestLegacyDecode(t *testing.T) {
	c := New(serializer.NewJSONSerializer())

	legacy := []byte(`"legacy payload"`)
	require.NotContains(t, []byte{0x00, 0x01}, legacy[0])

	decoded, err := c.Decode(legacy)
	require.NoError(t, err)

	got, ok := decoded.Opaque()
	require.True(t, ok)
	assert.Equal(t, "legacy payload", got)
}

// The explicit zero marker strips the leading byte before handing the rest
// to the serializer; the legacy path does not. Both variants must decode to
// the same value.
func TestMarkerStrippingVariants(t *testing.T) {
	c := New(serializer.NewJSONSerializer())

	payload := []byte(`{"n":1}`)

	withMarker := append([]byte{0x00}, payload...)
	fromMarked, err := c.Decode(withMarker)
	require.NoError(t, err)

	fromLegacy, err := c.Decode(payload)
	require.NoError(t, err)

	assert.True(t, fromMarked.Equal(fromLegacy))
}

func TestDecodeEmpty(t *testing.T) {
	c := New(nil)

	_, err := c.Decode(nil)
	assert.ErrorIs(t, err, ErrMalformedValue)

	_, err = c.Decode([]byte{})
	assert.ErrorIs(t, err, ErrMalformedValue)
}

func TestDecodeUnsupportedDType(t *testing.T) {
	// hand-assembled tensor frame with dtype class 'x'
	buf := []byte{0x01}
	buf = binary.LittleEndian.AppendUint32(buf, 3)
	buf = append(buf, "<x4"...)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = binary.LittleEndian.AppendUint64(buf, 0)

	c := New(nil)
	_, err := c.Decode(buf)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestDecodeTruncatedTensor(t *testing.T) {
	c := New(nil)

	encoded, err := c.Encode(TensorValue(mustTensor(FromFloat64s([]float64{1, 2, 3, 4}, 2, 2))))
	require.NoError(t, err)

	// every proper prefix (past the marker) must fail cleanly
	for cut := 1; cut < len(encoded); cut++ {
		_, err := c.Decode(encoded[:cut])
		if !errors.Is(err, ErrMalformedValue) {
			t.Fatalf("cut=%d: expected ErrMalformedValue, got %v", cut, err)
		}
	}
}

func TestDecodeShapeDataMismatch(t *testing.T) {
	// declared shape 2x2 float64 but only 8 data bytes
	buf := []byte{0x01}
	buf = binary.LittleEndian.AppendUint32(buf, 3)
	buf = append(buf, "<f8"...)
	buf = binary.LittleEndian.AppendUint32(buf, 2)
	buf = binary.LittleEndian.AppendUint64(buf, 2)
	buf = binary.LittleEndian.AppendUint64(buf, 2)
	buf = binary.LittleEndian.AppendUint64(buf, 8)
	buf = append(buf, make([]byte, 8)...)

	c := New(nil)
	_, err := c.Decode(buf)
	assert.ErrorIs(t, err, ErrMalformedValue)
}

func TestEncodeUnclassifiableValue(t *testing.T) {
	c := New(serializer.NewGOBSerializer())

	_, err := c.EncodeAny(func() {})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestFromAnyClassification(t *testing.T) {
	tensor := mustTensor(FromFloat32s([]float32{1}))

	assert.Equal(t, KindTensor, FromAny(tensor).Kind())
	assert.Equal(t, KindTensor, FromAny(*tensor).Kind())
	assert.Equal(t, KindOpaque, FromAny("string").Kind())
	assert.Equal(t, KindOpaque, FromAny([]float32{1, 2}).Kind())

	wrapped := OpaqueValue(7)
	assert.Equal(t, wrapped, FromAny(wrapped))
}
