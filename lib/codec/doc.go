// Package codec implements the dual-format value codec used by the
// sharedbox dictionary facade.
//
// Every stored value is framed with a one-byte format marker:
//
//	offset 0: marker (0x00 = opaque, 0x01 = tensor, other = legacy opaque)
//	offset 1: format-specific payload
//
// Tensors (n-dimensional numeric arrays) are serialized natively: the
// payload is a self-describing little-endian layout of dtype string, shape
// and the raw contiguous element bytes, copied bit-exactly without any
// generic object marshaling. Every other value is handed to a pluggable
// serializer.Serializer and stored behind the opaque marker.
//
// Legacy data: values written before the marker convention carry no marker
// at all. Decode therefore treats any first byte other than 0x00 or 0x01 as
// legacy data and hands the entire byte string, first byte included, to the
// opaque serializer. For marker 0x00 the marker byte is stripped first.
// Encoding never produces a marker other than 0x00 or 0x01.
package codec
