package dict

import (
	"fmt"
	"io"
	"reflect"

	"github.com/sharedbox/sharedbox/lib/codec"
	"github.com/sharedbox/sharedbox/lib/engine"
	"github.com/sharedbox/sharedbox/lib/engine/engines/shmseg"
	"github.com/sharedbox/sharedbox/lib/serializer"
)

// --------------------------------------------------------------------------
// Construction
// --------------------------------------------------------------------------

// Options configures a dictionary.
type Options struct {
	// Name identifies the shared segment.
	Name string

	// SizeBytes is the segment capacity. Zero means engine.DefaultSizeBytes.
	SizeBytes int

	// MaxKeys is the maximum number of distinct keys. Zero means
	// engine.DefaultMaxKeys.
	MaxKeys int

	// Attach selects attaching to an existing segment instead of creating a
	// new one.
	Attach bool

	// InitialData is an optional string-keyed mapping bulk-loaded at
	// construction. A load failure fails Open and destroys a freshly
	// created segment.
	InitialData any

	// Serializer handles non-tensor values. Nil selects gob.
	Serializer serializer.Serializer

	// Engine creates or attaches the backing engine. Nil selects the
	// in-process shmseg engine.
	Engine engine.Factory
}

// Dict is a mapping facade over one exclusively owned engine handle.
type Dict struct {
	name      string
	sizeBytes int
	maxKeys   int
	created   bool

	eng engine.Engine
	cod codec.Codec
	m   *opMetrics
}

// Open creates or attaches a dictionary according to opts.
func Open(opts Options) (*Dict, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("%w: segment name must not be empty", ErrInvalidArgument)
	}

	factory := opts.Engine
	if factory == nil {
		factory = shmseg.Open
	}

	cfg := engine.Config{
		Name:      opts.Name,
		SizeBytes: opts.SizeBytes,
		MaxKeys:   opts.MaxKeys,
		Attach:    opts.Attach,
	}.WithDefaults()

	eng, err := factory(cfg)
	if err != nil {
		return nil, err
	}

	d := &Dict{
		name:      cfg.Name,
		sizeBytes: cfg.SizeBytes,
		maxKeys:   cfg.MaxKeys,
		created:   !cfg.Attach,
		eng:       eng,
		cod:       codec.New(opts.Serializer),
		m:         newOpMetrics(cfg.Name),
	}

	if opts.InitialData != nil {
		if _, err := d.BulkLoad(opts.InitialData); err != nil {
			// a freshly created segment must not survive a failed init
			_ = eng.Close()
			if d.created {
				_ = eng.Unlink()
			}
			return nil, err
		}
	}

	return d, nil
}

// Name returns the segment name this dictionary is bound to.
func (d *Dict) Name() string { return d.name }

// Created reports whether this dictionary created the segment rather than
// attaching to an existing one.
func (d *Dict) Created() bool { return d.created }

// --------------------------------------------------------------------------
// Mapping operations
// --------------------------------------------------------------------------

// Len returns the number of entries in the segment.
func (d *Dict) Len() int {
	return d.eng.Size()
}

// Contains reports whether a key exists.
func (d *Dict) Contains(key string) bool {
	return d.eng.Contains(key)
}

// Get reads and decodes the value for a key. Absent keys yield
// ErrKeyNotFound.
func (d *Dict) Get(key string) (codec.Value, error) {
	d.m.gets.Inc()

	raw, ok := d.eng.Get(key)
	if !ok {
		return codec.Value{}, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}

	value, err := d.cod.Decode(raw)
	if err != nil {
		d.m.decodeFailures.Inc()
		return codec.Value{}, fmt.Errorf("decoding value for key %q: %w", key, err)
	}
	return value, nil
}

// Set encodes and stores a value under a key, overwriting any previous
// value.
func (d *Dict) Set(key string, value any) error {
	d.m.sets.Inc()

	encoded, err := d.cod.EncodeAny(value)
	if err != nil {
		return err
	}
	return d.eng.Set(key, encoded)
}

// Delete removes a key. Absent keys yield ErrKeyNotFound.
func (d *Dict) Delete(key string) error {
	d.m.deletes.Inc()

	if !d.eng.Erase(key) {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return nil
}

// GetOr reads the value for a key, falling back to def on any lookup or
// decode failure. A default fallback must never fail, so the error swallow
// is deliberately broad.
func (d *Dict) GetOr(key string, def any) codec.Value {
	value, err := d.Get(key)
	if err != nil {
		return codec.FromAny(def)
	}
	return value
}

// --------------------------------------------------------------------------
// Enumeration
// --------------------------------------------------------------------------

// Item is one key-value pair of the dictionary.
type Item struct {
	Key   string
	Value codec.Value
}

// Keys returns every key, each exactly once, in the engine's enumeration
// order (which is unspecified).
func (d *Dict) Keys() []string {
	return d.eng.Keys()
}

// Values eagerly reads and decodes every value. Cost is one engine lookup
// plus one decode per entry.
func (d *Dict) Values() ([]codec.Value, error) {
	keys := d.eng.Keys()
	values := make([]codec.Value, 0, len(keys))
	for _, key := range keys {
		value, err := d.Get(key)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

// Items eagerly materializes every key-value pair.
func (d *Dict) Items() ([]Item, error) {
	keys := d.eng.Keys()
	items := make([]Item, 0, len(keys))
	for _, key := range keys {
		value, err := d.Get(key)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{Key: key, Value: value})
	}
	return items, nil
}

// --------------------------------------------------------------------------
// Bulk initialization
// --------------------------------------------------------------------------

// BulkLoad stores every entry of a string-keyed mapping. It returns the
// number of entries written.
//
// The input must be a map with string keys (map[string]any, map[string]
// some-type, or an interface-keyed map holding only strings); anything else
// fails with ErrInvalidArgument before a single write. A failure after the
// key check yields a *PartialLoadError carrying the number of entries
// already written; those writes are not rolled back.
func (d *Dict) BulkLoad(data any) (int, error) {
	if data == nil {
		return 0, nil
	}

	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Map {
		return 0, fmt.Errorf("%w: initial data must be a mapping, got %T", ErrInvalidArgument, data)
	}

	// Validate all keys before the first write so a mixed-key mapping
	// leaves the segment untouched.
	keys := rv.MapKeys()
	for _, k := range keys {
		if k.Kind() == reflect.Interface {
			k = k.Elem()
		}
		if !k.IsValid() || k.Kind() != reflect.String {
			return 0, fmt.Errorf("%w: all keys must be strings", ErrInvalidArgument)
		}
	}

	written := 0
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() == reflect.Interface {
			k = k.Elem()
		}
		if err := d.Set(k.String(), iter.Value().Interface()); err != nil {
			return written, &PartialLoadError{Written: written, Err: err}
		}
		written++
	}

	return written, nil
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Close detaches from the segment without destroying it. Closing an
// already-closed dictionary is a no-op.
func (d *Dict) Close() error {
	if d.eng == nil {
		return nil
	}
	return d.eng.Close()
}

// Unlink permanently destroys the backing segment. The dictionary must be
// closed first; unlinking while open fails with ErrInvalidState instead of
// closing implicitly.
func (d *Dict) Unlink() error {
	if d.eng == nil {
		return nil
	}
	if !d.eng.IsClosed() {
		return fmt.Errorf("%w: cannot unlink an open dictionary, call Close first", ErrInvalidState)
	}
	return d.eng.Unlink()
}

// IsClosed reports whether the dictionary is detached: explicitly closed or
// never attached at all.
func (d *Dict) IsClosed() bool {
	return d.eng == nil || d.eng.IsClosed()
}

// --------------------------------------------------------------------------
// Snapshots
// --------------------------------------------------------------------------

// Snapshot persists the segment to w if the engine supports it.
func (d *Dict) Snapshot(w io.Writer) error {
	snap, ok := d.eng.(engine.Snapshotter)
	if !ok {
		return fmt.Errorf("%w: engine does not support snapshots", ErrInvalidState)
	}
	return snap.Save(w)
}

// Restore loads entries from a snapshot produced by Snapshot.
func (d *Dict) Restore(r io.Reader) error {
	snap, ok := d.eng.(engine.Snapshotter)
	if !ok {
		return fmt.Errorf("%w: engine does not support snapshots", ErrInvalidState)
	}
	return snap.Load(r)
}
