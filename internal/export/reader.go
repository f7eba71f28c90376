package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"notas/internal/logger"
	"notas/internal/schema"
)

// RowError reports a CSV row that could not be turned into a draft.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// Reader reads invoice drafts from CSV files in the export column layout.
// Columns are located by header name, so files edited in a spreadsheet
// with reordered or extra columns are still accepted. The id column is
// ignored: imported rows always receive new ids.
type Reader struct {
	log zerolog.Logger
}

// NewReader creates a CSV reader.
func NewReader() *Reader {
	return &Reader{
		log: logger.WithComponent("import"),
	}
}

var requiredColumns = []string{"number", "issue_date", "client_name", "gross_amount", "tax_amount"}

// Read parses r. Rows that lack columns are reported in the returned row
// errors and skipped; a missing or incomplete header fails the whole read.
func (cr *Reader) Read(r io.Reader) ([]schema.InvoiceDraft, []RowError, error) {
	const op = "ReadCSV"

	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%s: file is empty", op)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to read header: %w", op, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, nil, fmt.Errorf("%s: missing column %q", op, name)
		}
	}

	var (
		drafts    []schema.InvoiceDraft
		rowErrors []RowError
	)
	rowNum := 1
	for {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			return nil, nil, fmt.Errorf("%s: row %d: %w", op, rowNum, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}

		draft, err := parseRow(row, columns)
		if err != nil {
			cr.log.Warn().
				Err(err).
				Int("row", rowNum).
				Msg("Skipping CSV row")
			rowErrors = append(rowErrors, RowError{Row: rowNum, Err: err})
			continue
		}
		drafts = append(drafts, draft)
	}

	cr.log.Info().
		Int("total_rows", rowNum-1).
		Int("parsed_rows", len(drafts)).
		Int("skipped_rows", len(rowErrors)).
		Msg("CSV read")

	return drafts, rowErrors, nil
}

func parseRow(row []string, columns map[string]int) (schema.InvoiceDraft, error) {
	get := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for _, name := range requiredColumns {
		if i := columns[name]; i >= len(row) {
			return schema.InvoiceDraft{}, fmt.Errorf("insufficient columns: %d", len(row))
		}
	}

	draft := schema.InvoiceDraft{
		Number:      get("number"),
		IssueDate:   get("issue_date"),
		ClientName:  get("client_name"),
		GrossAmount: get("gross_amount"),
		TaxAmount:   get("tax_amount"),
		NetAmount:   get("net_amount"),
		Status:      get("status"),
		Notes:       get("notes"),
	}
	if s := get("customer_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return schema.InvoiceDraft{}, fmt.Errorf("invalid customer_id %q", s)
		}
		draft.CustomerID = id
	}
	return draft, nil
}
