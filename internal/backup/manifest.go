package backup

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidArchive is returned when a file is not a readable backup archive
// or its content does not match its manifest.
var ErrInvalidArchive = errors.New("invalid backup archive")

// ErrArchiveExists is returned when an explicit backup destination names an
// existing file.
var ErrArchiveExists = errors.New("backup archive already exists")

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArchive, fmt.Sprintf(format, args...))
}

// Role tells restore where an archived file belongs.
type Role string

const (
	RoleInvoices  Role = "invoices"
	RoleCustomers Role = "customers"
	RoleConfig    Role = "config"
)

// Reason records why an archive was taken.
type Reason string

const (
	ReasonManual     Reason = "manual"
	ReasonPreRestore Reason = "pre_restore"
)

const manifestName = "manifest.json"

// FileEntry describes one archived file.
type FileEntry struct {
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// Manifest is stored as the first entry of every archive.
type Manifest struct {
	ID            string      `json:"id"`
	CreatedAt     time.Time   `json:"created_at"`
	Reason        Reason      `json:"reason"`
	SchemaVersion int         `json:"schema_version"`
	Files         []FileEntry `json:"files"`

	// Path is where the archive was found or written. It is not archived.
	Path string `json:"path,omitempty"`
}

// File returns the entry with the given role.
func (m *Manifest) File(role Role) (FileEntry, bool) {
	for _, f := range m.Files {
		if f.Role == role {
			return f, true
		}
	}
	return FileEntry{}, false
}

// TotalSize is the sum of the archived file sizes.
func (m *Manifest) TotalSize() int64 {
	var total int64
	for _, f := range m.Files {
		total += f.Size
	}
	return total
}
