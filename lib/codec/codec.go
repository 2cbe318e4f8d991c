package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/sharedbox/sharedbox/lib/serializer"
)

// Format markers. Encoding only ever produces these two; any other leading
// byte identifies pre-marker legacy data (see Decode).
const (
	markerOpaque byte = 0x00
	markerTensor byte = 0x01
)

// Codec encodes and decodes values for storage in a segment engine. It is
// pure: no I/O, no mutation of inputs, safe for concurrent use.
type Codec struct {
	ser serializer.Serializer
}

// New creates a codec that delegates non-tensor values to the given
// serializer. A nil serializer selects gob.
func New(ser serializer.Serializer) Codec {
	if ser == nil {
		ser = serializer.NewGOBSerializer()
	}
	return Codec{ser: ser}
}

// Serializer returns the opaque serializer this codec delegates to.
func (c Codec) Serializer() serializer.Serializer {
	return c.ser
}

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// Encode serializes a value to its wire form.
func (c Codec) Encode(v Value) ([]byte, error) {
	if t, ok := v.Tensor(); ok {
		if t == nil {
			return nil, fmt.Errorf("%w: nil tensor", ErrMalformedValue)
		}
		return encodeTensor(t), nil
	}

	opaque, _ := v.Opaque()
	payload, err := c.ser.Serialize(opaque)
	if err != nil {
		return nil, fmt.Errorf("%w: %s serializer: %v", ErrUnsupportedType, c.ser.Name(), err)
	}

	buf := make([]byte, 0, 1+len(payload))
	buf = append(buf, markerOpaque)
	return append(buf, payload...), nil
}

// EncodeAny classifies an arbitrary Go value and encodes it.
func (c Codec) EncodeAny(v any) ([]byte, error) {
	return c.Encode(FromAny(v))
}

// encodeTensor renders the self-describing tensor layout:
//
//	[dtype_len: u32][dtype_str][ndim: u32][shape: u64 each][data_len: u64][data]
//
// All integers little-endian; the element bytes are copied verbatim.
func encodeTensor(t *Tensor) []byte {
	dtypeStr := t.DType().String()
	data := t.Data()

	buf := make([]byte, 0, 1+4+len(dtypeStr)+4+8*t.NDim()+8+len(data))
	buf = append(buf, markerTensor)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(dtypeStr)))
	buf = append(buf, dtypeStr...)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(t.NDim()))
	for _, dim := range t.Shape() {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(dim))
	}

	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(data)))
	return append(buf, data...)
}

// --------------------------------------------------------------------------
// Decoding
// --------------------------------------------------------------------------

// Decode reconstructs a value from its wire form, dispatching on the first
// byte: 0x01 selects the tensor layout, 0x00 the opaque serializer with the
// marker stripped, and anything else the legacy path where the whole byte
// string, first byte included, is the serializer payload.
func (c Codec) Decode(data []byte) (Value, error) {
	if len(data) == 0 {
		return Value{}, fmt.Errorf("%w: empty data cannot be decoded", ErrMalformedValue)
	}

	switch data[0] {
	case markerTensor:
		t, err := decodeTensor(data[1:])
		if err != nil {
			return Value{}, err
		}
		return TensorValue(t), nil

	case markerOpaque:
		v, err := c.ser.Deserialize(data[1:])
		if err != nil {
			return Value{}, err
		}
		return OpaqueValue(v), nil

	default:
		// legacy data written before the marker convention: no byte is
		// stripped
		v, err := c.ser.Deserialize(data)
		if err != nil {
			return Value{}, err
		}
		return OpaqueValue(v), nil
	}
}

// tensorReader is a bounds-checked cursor over a tensor payload.
type tensorReader struct {
	buf []byte
	pos int
}

func (r *tensorReader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("%w: truncated tensor payload", ErrMalformedValue)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *tensorReader) uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *tensorReader) uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Upper bounds on header fields. Real dtype strings are a handful of bytes
// and tensors beyond 64 dimensions do not occur; anything larger is a
// corrupt buffer, rejected before any allocation is sized from it.
const (
	maxDTypeLen = 64
	maxNDim     = 64
)

func decodeTensor(payload []byte) (*Tensor, error) {
	r := &tensorReader{buf: payload}

	dtypeLen, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if dtypeLen > maxDTypeLen {
		return nil, fmt.Errorf("%w: dtype length %d", ErrMalformedValue, dtypeLen)
	}
	dtypeBytes, err := r.take(int(dtypeLen))
	if err != nil {
		return nil, err
	}
	dtype, err := ParseDType(string(dtypeBytes))
	if err != nil {
		return nil, err
	}

	ndim, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if ndim > maxNDim {
		return nil, fmt.Errorf("%w: %d dimensions", ErrMalformedValue, ndim)
	}

	shape := make([]int, ndim)
	for i := range shape {
		dim, err := r.uint64()
		if err != nil {
			return nil, err
		}
		shape[i] = int(dim)
	}

	dataLen, err := r.uint64()
	if err != nil {
		return nil, err
	}
	data, err := r.take(int(dataLen))
	if err != nil {
		return nil, err
	}

	// NewTensor validates data length against dtype and shape and copies the
	// bytes, so the returned tensor never aliases the decode buffer.
	return NewTensor(dtype, shape, data)
}
