package store

import (
	"errors"
	"fmt"
)

// Common persistence errors. Match with errors.Is; the typed errors below carry details.
var (
	// ErrIO is returned when a store path cannot be read or written.
	ErrIO = errors.New("store I/O failure")

	// ErrCorruptStore is returned when a store file exists but does not parse.
	// It is never swallowed: the caller decides between alerting and restoring a backup.
	ErrCorruptStore = errors.New("store file is corrupt")

	// ErrSchemaVersion is returned when data was written by a newer schema.
	ErrSchemaVersion = errors.New("unsupported store schema version")
)

// IOError wraps a filesystem failure with the operation and path involved.
type IOError struct {
	// Op is the operation that failed (e.g., "read", "rename").
	Op string

	// Path is the file or directory involved.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is matches ErrIO as well as the wrapped error.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// CorruptStoreError reports a store file that cannot be decoded.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("store: corrupt data: %v", e.Err)
	}
	return fmt.Sprintf("store: %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error {
	return e.Err
}

func (e *CorruptStoreError) Is(target error) bool {
	return target == ErrCorruptStore
}

// SchemaVersionError reports data written with a schema newer than this build understands.
type SchemaVersionError struct {
	Path      string
	Found     int
	Supported int
}

func (e *SchemaVersionError) Error() string {
	where := e.Path
	if where == "" {
		where = "data"
	}
	return fmt.Sprintf("store: %s has schema version %d, this build supports up to %d", where, e.Found, e.Supported)
}

func (e *SchemaVersionError) Is(target error) bool {
	return target == ErrSchemaVersion
}
