package engine

import (
	"errors"
	"io"
)

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// Default segment geometry. A freshly created segment holds up to
// DefaultMaxKeys distinct keys in DefaultSizeBytes of payload space.
const (
	DefaultSizeBytes = 128 * 1024 * 1024 // 128 MiB
	DefaultMaxKeys   = 128
)

// Config describes the segment an engine should create or attach to.
type Config struct {
	// Name identifies the segment. Two engines opened with the same name
	// operate on the same underlying data.
	Name string

	// SizeBytes is the payload capacity of the segment. Zero means
	// DefaultSizeBytes. Only consulted on creation; attaching uses the
	// geometry the segment was created with.
	SizeBytes int

	// MaxKeys is the maximum number of distinct keys. Zero means
	// DefaultMaxKeys. Only consulted on creation.
	MaxKeys int

	// Attach selects attaching to an existing segment instead of creating
	// a new one. The zero value creates.
	Attach bool
}

// WithDefaults returns a copy of the config with zero geometry fields
// replaced by the package defaults.
func (c Config) WithDefaults() Config {
	if c.SizeBytes <= 0 {
		c.SizeBytes = DefaultSizeBytes
	}
	if c.MaxKeys <= 0 {
		c.MaxKeys = DefaultMaxKeys
	}
	return c
}

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Factory is a function type that creates or attaches an engine for the
// given config. This is used to abstract engine construction from the
// dictionary facade.
type Factory func(cfg Config) (Engine, error)

// Engine is the interface every segment backend implements.
//
// All methods must be safe for concurrent use. Read methods on a closed
// handle report an empty segment; Set on a closed handle returns ErrClosed.
type Engine interface {
	// Size returns the number of keys currently stored in the segment.
	Size() int

	// Contains reports whether a key exists in the segment.
	Contains(key string) bool

	// Get retrieves the value for a key. The boolean return value indicates
	// whether the key was found. The returned slice is a copy and safe to
	// retain or modify.
	Get(key string) (value []byte, loaded bool)

	// Set inserts or updates a key-value pair. If the key already exists the
	// old value is overwritten. The engine stores a copy of value. Returns
	// ErrSegmentFull or ErrTooManyKeys when the segment cannot admit the
	// entry, ErrClosed on a closed handle.
	Set(key string, value []byte) error

	// Erase removes a key-value pair. The boolean return value indicates
	// whether the key existed.
	Erase(key string) bool

	// Keys returns every key currently stored, each exactly once, in an
	// unspecified order.
	Keys() []string

	// Close detaches this handle from the segment without destroying the
	// underlying data. Calling Close on an already-closed handle is a no-op.
	Close() error

	// Unlink permanently destroys the backing segment. It is only valid on a
	// closed handle and returns ErrStillOpen otherwise.
	Unlink() error

	// IsClosed reports whether this handle has been closed.
	IsClosed() bool
}

// Snapshotter is an optional interface for engines that can persist a
// segment. Callers check for support with a type assertion.
type Snapshotter interface {
	// Save writes a snapshot of the segment to w.
	Save(w io.Writer) error

	// Load restores entries from a snapshot produced by Save. Existing
	// entries with the same keys are overwritten.
	Load(r io.Reader) error
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrSegmentExists is returned when creating a segment whose name is
	// already in use.
	ErrSegmentExists = errors.New("segment already exists")

	// ErrSegmentNotFound is returned when attaching to a segment that does
	// not exist.
	ErrSegmentNotFound = errors.New("segment not found")

	// ErrSegmentFull is returned by Set when admitting the entry would
	// exceed the segment's byte capacity.
	ErrSegmentFull = errors.New("segment is full")

	// ErrTooManyKeys is returned by Set when the segment already holds its
	// maximum number of distinct keys.
	ErrTooManyKeys = errors.New("segment key limit reached")

	// ErrClosed is returned by write operations on a closed handle.
	ErrClosed = errors.New("segment handle is closed")

	// ErrStillOpen is returned by Unlink on a handle that has not been
	// closed yet.
	ErrStillOpen = errors.New("segment handle is still open")
)
