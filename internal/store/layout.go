package store

import (
	"fmt"
	"os"
	"path/filepath"

	"notas/pkg/models"
)

// File names inside the data directory.
const (
	InvoicesFile  = "notas.json"
	CustomersFile = "cadastros.json"
	ConfigFile    = "config.json"
)

// Layout locates the store files of one ledger. It is passed explicitly to
// every component that touches disk.
type Layout struct {
	DataDir string
}

func (l Layout) InvoicesPath() string {
	return filepath.Join(l.DataDir, InvoicesFile)
}

func (l Layout) CustomersPath() string {
	return filepath.Join(l.DataDir, CustomersFile)
}

// ConfigPath is the presentation layer's settings file. The store never
// interprets it; backup and restore copy it verbatim.
func (l Layout) ConfigPath() string {
	return filepath.Join(l.DataDir, ConfigFile)
}

// Invoices opens the invoice collection file.
func (l Layout) Invoices() *File[models.Invoice] {
	return Open[models.Invoice](l.InvoicesPath())
}

// Customers opens the registration collection file.
func (l Layout) Customers() *File[models.Customer] {
	return Open[models.Customer](l.CustomersPath())
}

// Bootstrap creates the data directory and an empty, valid file for each
// collection that does not exist yet.
func (l Layout) Bootstrap() error {
	if l.DataDir == "" {
		return fmt.Errorf("store: data directory is not configured")
	}
	if err := os.MkdirAll(l.DataDir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: l.DataDir, Err: err}
	}
	if err := l.Invoices().Init(); err != nil {
		return err
	}
	return l.Customers().Init()
}
