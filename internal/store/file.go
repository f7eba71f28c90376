// Package store is the persistence engine of the ledger.
//
// Each record collection (invoices, customer registrations) lives in its own
// JSON file inside the data directory:
//
//	{
//	  "schema_version": 1,
//	  "next_id": 4,
//	  "records": [ ... ]
//	}
//
// Every write rewrites the whole file through [WriteFileAtomic]; record
// counts stay in the hundreds to low thousands, so incremental writes are not
// worth their complexity. Unknown record fields survive a load/save cycle.
//
// A missing or empty file loads as an empty collection. A file that does not
// parse yields a [CorruptStoreError]; data from a newer schema yields a
// [SchemaVersionError]. Neither is ever repaired silently.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"notas/internal/logger"
)

// SchemaVersion is the newest collection format this build reads and writes.
const SchemaVersion = 1

const filePerm = 0o600

// Record is implemented by every type kept in a collection.
type Record interface {
	RecordID() int64
}

// Collection is the in-memory form of one store file.
type Collection[T Record] struct {
	SchemaVersion int   `json:"schema_version"`
	NextID        int64 `json:"next_id"`
	Records       []T   `json:"records"`
}

// NewCollection returns an empty collection whose first id will be 1.
func NewCollection[T Record]() *Collection[T] {
	return &Collection[T]{
		SchemaVersion: SchemaVersion,
		NextID:        1,
		Records:       []T{},
	}
}

// Allocate hands out the next identifier. Identifiers are never handed out twice,
// even after the record holding one is deleted.
func (c *Collection[T]) Allocate() int64 {
	id := c.NextID
	c.NextID++
	return id
}

// Index returns the position of the record with the given id, or -1.
func (c *Collection[T]) Index(id int64) int {
	return slices.IndexFunc(c.Records, func(r T) bool { return r.RecordID() == id })
}

func (c *Collection[T]) Len() int {
	return len(c.Records)
}

func (c *Collection[T]) sortByID() {
	slices.SortStableFunc(c.Records, func(a, b T) int {
		switch {
		case a.RecordID() < b.RecordID():
			return -1
		case a.RecordID() > b.RecordID():
			return 1
		}
		return 0
	})
}

// Decode parses store bytes. Empty input is an empty collection.
func Decode[T Record](data []byte) (*Collection[T], error) {
	return decode[T]("", data)
}

func decode[T Record](path string, data []byte) (*Collection[T], error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewCollection[T](), nil
	}

	var c Collection[T]
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, &CorruptStoreError{Path: path, Err: err}
	}

	if c.SchemaVersion > SchemaVersion {
		return nil, &SchemaVersionError{Path: path, Found: c.SchemaVersion, Supported: SchemaVersion}
	}
	if c.SchemaVersion < 0 {
		return nil, &CorruptStoreError{Path: path, Err: fmt.Errorf("negative schema version %d", c.SchemaVersion)}
	}
	c.SchemaVersion = SchemaVersion
	if c.Records == nil {
		c.Records = []T{}
	}

	seen := make(map[int64]struct{}, len(c.Records))
	var maxID int64
	for _, r := range c.Records {
		id := r.RecordID()
		if id <= 0 {
			return nil, &CorruptStoreError{Path: path, Err: fmt.Errorf("record with invalid id %d", id)}
		}
		if _, dup := seen[id]; dup {
			return nil, &CorruptStoreError{Path: path, Err: fmt.Errorf("duplicate record id %d", id)}
		}
		seen[id] = struct{}{}
		maxID = max(maxID, id)
	}
	if c.NextID <= maxID {
		c.NextID = maxID + 1
	}
	if c.NextID < 1 {
		c.NextID = 1
	}

	c.sortByID()
	return &c, nil
}

// Encode renders a collection in its on-disk form, records ordered by id.
func Encode[T Record](c *Collection[T]) ([]byte, error) {
	out := *c
	out.SchemaVersion = SchemaVersion
	out.Records = slices.Clone(c.Records)
	if out.Records == nil {
		out.Records = []T{}
	}
	out.sortByID()

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("store: encode collection: %w", err)
	}
	return append(data, '\n'), nil
}

// File is one collection file on disk. Its methods serialise access within
// the process; concurrent writers in other processes are not supported.
type File[T Record] struct {
	path string
	mu   sync.Mutex
	log  zerolog.Logger
}

// Open binds a File to path. Nothing is read until Load.
func Open[T Record](path string) *File[T] {
	return &File[T]{
		path: path,
		log:  logger.WithComponent("store"),
	}
}

func (f *File[T]) Path() string {
	return f.path
}

// Init writes an empty collection if the file does not exist yet and clears
// temporary files left by an interrupted write.
func (f *File[T]) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, stale := range removeStaleTemps(f.path) {
		f.log.Warn().Str("path", stale).Msg("Removed temporary file left by an interrupted write")
	}

	_, err := os.Stat(f.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return &IOError{Op: "stat", Path: f.path, Err: err}
	}

	f.log.Info().Str("path", f.path).Msg("Initializing empty store")
	return f.save(NewCollection[T]())
}

// Load reads and decodes the collection.
func (f *File[T]) Load() (*Collection[T], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// Save atomically replaces the file with c.
func (f *File[T]) Save(c *Collection[T]) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(c)
}

// Update loads the collection, applies fn and saves the result. When fn
// returns an error nothing is written and the error is returned unchanged.
func (f *File[T]) Update(fn func(c *Collection[T]) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, err := f.load()
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}
	return f.save(c)
}

// ReadRaw returns the file bytes exactly as stored. exists is false when the
// file is absent, in which case data is nil.
func (f *File[T]) ReadRaw() (data []byte, exists bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err = os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &IOError{Op: "read", Path: f.path, Err: err}
	}
	return data, true, nil
}

// WriteRaw atomically replaces the file with data, byte for byte. Data that
// does not decode as a collection of T is refused.
func (f *File[T]) WriteRaw(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, err := decode[T](f.path, data)
	if err != nil {
		return err
	}
	if err := WriteFileAtomic(f.path, data, filePerm); err != nil {
		return err
	}

	f.log.Info().
		Str("path", f.path).
		Int("records", c.Len()).
		Int("bytes", len(data)).
		Msg("Store replaced verbatim")
	return nil
}

func (f *File[T]) load() (*Collection[T], error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		f.log.Debug().Str("path", f.path).Msg("Store file absent, using empty collection")
		return NewCollection[T](), nil
	}
	if err != nil {
		return nil, &IOError{Op: "read", Path: f.path, Err: err}
	}

	c, err := decode[T](f.path, data)
	if err != nil {
		f.log.Error().Err(err).Str("path", f.path).Msg("Failed to decode store")
		return nil, err
	}

	f.log.Debug().
		Str("path", f.path).
		Int("records", c.Len()).
		Int64("next_id", c.NextID).
		Msg("Store loaded")
	return c, nil
}

func (f *File[T]) save(c *Collection[T]) error {
	data, err := Encode(c)
	if err != nil {
		return err
	}
	if err := WriteFileAtomic(f.path, data, filePerm); err != nil {
		return err
	}

	f.log.Debug().
		Str("path", f.path).
		Int("records", c.Len()).
		Int("bytes", len(data)).
		Msg("Store saved")
	return nil
}
