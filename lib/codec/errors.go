package codec

import "errors"

var (
	// ErrMalformedValue indicates an encoded value that cannot be decoded:
	// an empty byte string, a truncated tensor payload, or a tensor whose
	// data length contradicts its dtype and shape.
	ErrMalformedValue = errors.New("malformed value")

	// ErrUnsupportedType indicates a dtype class outside the supported set
	// or a value the codec can neither classify as tensor nor serialize as
	// opaque.
	ErrUnsupportedType = errors.New("unsupported type")
)
