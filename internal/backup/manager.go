// Package backup snapshots the store into compressed archives and restores
// archives back over the live store.
package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"notas/internal/logger"
	"notas/internal/store"
	"notas/pkg/models"
)

const (
	archiveExt  = ".tar.gz"
	archivePerm = 0o600
)

// Manager creates, lists and restores backups of one store layout.
type Manager struct {
	layout    store.Layout
	backupDir string
	now       func() time.Time
	log       zerolog.Logger

	// replace writes restored bytes into place. Tests swap it to simulate
	// failures halfway through a restore.
	replace func(t target, data []byte) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the clock used for manifests and file names.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithBackupDir sets where backups are written and listed.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		if dir != "" {
			m.backupDir = dir
		}
	}
}

// NewManager creates a backup manager. Backups default to <data>/backups.
func NewManager(layout store.Layout, opts ...Option) *Manager {
	m := &Manager{
		layout:    layout,
		backupDir: filepath.Join(layout.DataDir, "backups"),
		now:       time.Now,
		log:       logger.WithComponent("backup"),
	}
	m.replace = func(t target, data []byte) error { return t.write(data) }
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BackupDir returns the directory backups are written to by default.
func (m *Manager) BackupDir() string {
	return m.backupDir
}

// target is one live file covered by backups.
type target struct {
	name     string
	role     Role
	path     string
	optional bool
	read     func() ([]byte, bool, error)
	write    func([]byte) error
}

func (m *Manager) targets() []target {
	invoices := m.layout.Invoices()
	customers := m.layout.Customers()
	configPath := m.layout.ConfigPath()

	return []target{
		{
			name:  store.InvoicesFile,
			role:  RoleInvoices,
			path:  invoices.Path(),
			read:  invoices.ReadRaw,
			write: invoices.WriteRaw,
		},
		{
			name:  store.CustomersFile,
			role:  RoleCustomers,
			path:  customers.Path(),
			read:  customers.ReadRaw,
			write: customers.WriteRaw,
		},
		{
			name:     store.ConfigFile,
			role:     RoleConfig,
			path:     configPath,
			optional: true,
			read: func() ([]byte, bool, error) {
				data, err := os.ReadFile(configPath)
				if errors.Is(err, os.ErrNotExist) {
					return nil, false, nil
				}
				if err != nil {
					return nil, false, &store.IOError{Op: "read", Path: configPath, Err: err}
				}
				return data, true, nil
			},
			write: func(data []byte) error {
				return store.WriteFileAtomic(configPath, data, archivePerm)
			},
		},
	}
}

func decodes(role Role, data []byte) error {
	switch role {
	case RoleInvoices:
		_, err := store.Decode[models.Invoice](data)
		return err
	case RoleCustomers:
		_, err := store.Decode[models.Customer](data)
		return err
	case RoleConfig:
		if !json.Valid(data) {
			return fmt.Errorf("config is not valid JSON")
		}
	}
	return nil
}

func emptyEncoding(role Role) ([]byte, error) {
	switch role {
	case RoleInvoices:
		return store.Encode(store.NewCollection[models.Invoice]())
	case RoleCustomers:
		return store.Encode(store.NewCollection[models.Customer]())
	}
	return nil, nil
}

// snapshot reads the live files. With strict set, files that do not decode
// abort the snapshot; otherwise they are archived as found.
func (m *Manager) snapshot(reason Reason, strict bool) (*Manifest, map[string][]byte, error) {
	manifest := &Manifest{
		ID:            uuid.NewString(),
		CreatedAt:     m.now().UTC(),
		Reason:        reason,
		SchemaVersion: store.SchemaVersion,
	}
	files := make(map[string][]byte)

	for _, t := range m.targets() {
		data, exists, err := t.read()
		if err != nil {
			return nil, nil, err
		}
		if !exists {
			if t.optional {
				continue
			}
			if data, err = emptyEncoding(t.role); err != nil {
				return nil, nil, err
			}
		}

		if err := decodes(t.role, data); err != nil {
			if strict {
				return nil, nil, err
			}
			m.log.Warn().Err(err).Str("path", t.path).Msg("Archiving undecodable file as found")
		}

		files[t.name] = data
		manifest.Files = append(manifest.Files, FileEntry{
			Name:   t.name,
			Role:   t.role,
			Size:   int64(len(data)),
			SHA256: checksum(data),
		})
	}
	return manifest, files, nil
}

// DefaultFileName returns backup_notas_YYYYMMDD_HHMMSS.tar.gz.
func DefaultFileName(now time.Time) string {
	return "backup_notas_" + stamp(now) + archiveExt
}

func (m *Manager) resolve(destination string, now time.Time) (string, error) {
	if destination == "" {
		return uniquePath(filepath.Join(m.backupDir, DefaultFileName(now))), nil
	}
	info, err := os.Stat(destination)
	switch {
	case err == nil && info.IsDir():
		return uniquePath(filepath.Join(destination, DefaultFileName(now))), nil
	case err == nil:
		return "", fmt.Errorf("%w: %s", ErrArchiveExists, destination)
	}
	return destination, nil
}

// uniquePath appends _2, _3, ... before the archive extension until path
// names no existing file.
func uniquePath(path string) string {
	if _, err := os.Lstat(path); err != nil {
		return path
	}
	base := strings.TrimSuffix(path, archiveExt)
	ext := path[len(base):]
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, ext)
		if _, err := os.Lstat(candidate); err != nil {
			return candidate
		}
	}
}

func (m *Manager) write(path string, reason Reason, strict bool) (*Manifest, error) {
	manifest, files, err := m.snapshot(reason, strict)
	if err != nil {
		return nil, err
	}

	data, err := encodeArchive(manifest, files)
	if err != nil {
		return nil, fmt.Errorf("encode archive: %w", err)
	}
	if err := store.WriteFileAtomic(path, data, archivePerm); err != nil {
		return nil, err
	}
	manifest.Path = path

	m.log.Info().
		Str("path", path).
		Str("backup_id", manifest.ID).
		Str("reason", string(reason)).
		Int("files", len(manifest.Files)).
		Int("bytes", len(data)).
		Msg("Backup written")
	return manifest, nil
}

// Backup writes an archive of the live store. An empty destination writes to
// the backup directory; a directory destination receives a generated name.
// Generated names never replace an existing archive and an explicit file
// destination that already exists is refused. Collections that were never
// written are archived as empty collections.
func (m *Manager) Backup(destination string) (*Manifest, error) {
	path, err := m.resolve(destination, m.now())
	if err != nil {
		return nil, err
	}
	return m.write(path, ReasonManual, true)
}

// Inspect reads and verifies an archive without touching the live store.
func (m *Manager) Inspect(archive string) (*Manifest, error) {
	manifest, entries, err := readArchive(archive)
	if err != nil {
		return nil, err
	}
	if err := verify(manifest, entries); err != nil {
		return nil, err
	}
	return manifest, nil
}

// RestoreResult describes a finished restore.
type RestoreResult struct {
	Manifest *Manifest `json:"manifest"`
	// Safeguard is the archive of the live store taken just before restoring.
	Safeguard *Manifest `json:"safeguard"`
}

// Restore replaces the live store with the content of archive. The archive
// is fully verified first; if verification fails nothing is changed. The
// live store is archived to the backup directory before any file is replaced,
// and files already replaced are put back if a later replacement fails.
// A live config file is kept when the archive carries none.
func (m *Manager) Restore(archive string) (*RestoreResult, error) {
	manifest, entries, err := readArchive(archive)
	if err != nil {
		return nil, err
	}
	if err := verify(manifest, entries); err != nil {
		m.log.Warn().Err(err).Str("path", archive).Msg("Restore refused")
		return nil, err
	}

	now := m.now()
	safeguardPath := uniquePath(filepath.Join(m.backupDir, "pre_restore_"+stamp(now)+archiveExt))
	safeguard, err := m.write(safeguardPath, ReasonPreRestore, false)
	if err != nil {
		return nil, fmt.Errorf("safeguard backup: %w", err)
	}

	var plan []liveFile
	for _, t := range m.targets() {
		if _, ok := manifest.File(t.role); !ok {
			continue
		}
		data, exists, err := t.read()
		if err != nil {
			return nil, err
		}
		plan = append(plan, liveFile{target: t, data: data, exists: exists})
	}

	for i, lf := range plan {
		entry, _ := manifest.File(lf.role)
		if err := m.replace(lf.target, entries[entry.Name]); err != nil {
			m.log.Error().Err(err).Str("path", lf.path).Msg("Restore failed, rolling back")
			m.rollback(plan[:i])
			return nil, err
		}
	}

	m.log.Info().
		Str("path", archive).
		Str("backup_id", manifest.ID).
		Str("safeguard", safeguard.Path).
		Msg("Store restored")
	return &RestoreResult{Manifest: manifest, Safeguard: safeguard}, nil
}

// liveFile is a target together with the bytes it held before a restore.
type liveFile struct {
	target
	data   []byte
	exists bool
}

// rollback puts back the previous content of files already replaced. Failures
// are logged; the safeguard archive still holds the previous state.
func (m *Manager) rollback(replaced []liveFile) {
	for _, lf := range replaced {
		var err error
		if lf.exists {
			err = store.WriteFileAtomic(lf.path, lf.data, archivePerm)
		} else if rmErr := os.Remove(lf.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = &store.IOError{Op: "remove", Path: lf.path, Err: rmErr}
		}
		if err != nil {
			m.log.Error().Err(err).Str("path", lf.path).Msg("Rollback failed")
			continue
		}
		m.log.Warn().Str("path", lf.path).Msg("Rolled back")
	}
}

// List returns the archives in the backup directory, newest first. Files
// that cannot be read as archives are skipped.
func (m *Manager) List() ([]Manifest, error) {
	entries, err := os.ReadDir(m.backupDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &store.IOError{Op: "read dir", Path: m.backupDir, Err: err}
	}

	var manifests []Manifest
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), archiveExt) {
			continue
		}
		path := filepath.Join(m.backupDir, e.Name())
		manifest, _, err := readArchive(path)
		if err != nil {
			m.log.Warn().Err(err).Str("path", path).Msg("Skipping unreadable archive")
			continue
		}
		manifests = append(manifests, *manifest)
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Path, a.Path)
	})
	return manifests, nil
}
