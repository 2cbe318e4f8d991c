package dict

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned by Get and Delete for absent keys.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidArgument is returned by BulkLoad for inputs that are not
	// string-keyed mappings.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is returned by Unlink while the dictionary is still
	// open.
	ErrInvalidState = errors.New("invalid state")
)

// PartialLoadError wraps a failure during BulkLoad after at least one entry
// was written. Written reports how many entries were stored before the
// failure; the engine state is not rolled back.
type PartialLoadError struct {
	Written int
	Err     error
}

func (e *PartialLoadError) Error() string {
	return fmt.Sprintf("failed to initialize dictionary after %d entries: %v", e.Written, e.Err)
}

func (e *PartialLoadError) Unwrap() error { return e.Err }
