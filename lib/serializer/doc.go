// Package serializer provides the pluggable opaque-value serializers used by
// the value codec for everything that is not a tensor.
//
// A Serializer turns an arbitrary Go value into bytes and back. The codec
// layer treats the produced bytes as opaque: it frames them with a one-byte
// format marker and otherwise passes them through unmodified, so the wire
// format and versioning of each serializer are entirely its own concern.
//
// Two implementations are provided:
//
//   - GOB (default): self-describing binary encoding via encoding/gob.
//     Values stored inside interfaces must have their concrete types
//     registered with Register; the common scalar, slice and map types are
//     pre-registered.
//
//   - JSON: text encoding via github.com/goccy/go-json. Round-tripped
//     values follow JSON's equality contract: numbers come back as float64
//     and objects as map[string]any.
//
// Serializers are selected by stable name through ByName, which is how the
// CLI's --serializer flag resolves its argument.
package serializer
