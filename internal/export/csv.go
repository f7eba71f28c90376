// Package export writes invoice entries to CSV files for spreadsheets and
// accountants.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"notas/internal/logger"
	"notas/internal/store"
	"notas/pkg/models"
)

// Header is the fixed column order of every export.
var Header = []string{
	"id",
	"number",
	"issue_date",
	"client_name",
	"gross_amount",
	"tax_amount",
	"net_amount",
	"status",
	"notes",
}

const (
	// KindAll names exports of the whole store.
	KindAll = "todas"
	// KindSelected names exports of a user selection.
	KindSelected = "selecionadas"

	filePerm = 0o644
)

// Result describes a finished export.
type Result struct {
	Path    string `json:"path"`
	Records int    `json:"records"`
	Bytes   int    `json:"bytes"`
}

type options struct {
	kind string
	now  func() time.Time
}

// Option configures ToFile.
type Option func(*options)

// WithKind sets the kind used in generated file names.
func WithKind(kind string) Option {
	return func(o *options) {
		o.kind = kind
	}
}

// WithClock replaces the clock used for generated file names.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// CSV writes a header row and one row per record, in the given order.
func CSV(records []models.Invoice, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, inv := range records {
		if err := cw.Write(row(inv)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(inv models.Invoice) []string {
	return []string{
		strconv.FormatInt(inv.ID, 10),
		inv.Number,
		inv.IssueDate.String(),
		inv.ClientName,
		inv.GrossAmount.StringFixed(2),
		inv.TaxAmount.StringFixed(2),
		inv.NetAmount.StringFixed(2),
		string(inv.Status),
		inv.Notes,
	}
}

// DefaultFileName returns notas_<kind>_YYYYMMDD_HHMMSS.csv.
func DefaultFileName(kind string, now time.Time) string {
	if kind == "" {
		kind = KindAll
	}
	return fmt.Sprintf("notas_%s_%s.csv", kind, now.Format("20060102_150405"))
}

// ResolvePath turns a user destination into the final file path. A directory
// receives the default file name and a name without .csv gets it appended.
func ResolvePath(destination, kind string, now time.Time) string {
	if destination == "" {
		return DefaultFileName(kind, now)
	}
	if info, err := os.Stat(destination); err == nil && info.IsDir() {
		return filepath.Join(destination, DefaultFileName(kind, now))
	}
	if !strings.EqualFold(filepath.Ext(destination), ".csv") {
		return destination + ".csv"
	}
	return destination
}

// ToFile writes records as CSV to destination. The file is written
// atomically; on failure no partial file is left behind.
func ToFile(records []models.Invoice, destination string, opts ...Option) (Result, error) {
	log := logger.WithComponent("export")

	o := options{kind: KindAll, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	path := ResolvePath(destination, o.kind, o.now())

	var buf bytes.Buffer
	if err := CSV(records, &buf); err != nil {
		return Result{}, fmt.Errorf("encode csv: %w", err)
	}

	if err := store.WriteFileAtomic(path, buf.Bytes(), filePerm); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to write export")
		return Result{}, err
	}

	log.Info().
		Str("path", path).
		Int("records", len(records)).
		Int("bytes", buf.Len()).
		Msg("Export written")

	return Result{Path: path, Records: len(records), Bytes: buf.Len()}, nil
}
