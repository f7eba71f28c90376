package models

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an invoice entry.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusIssued    Status = "issued"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every accepted status in display order.
func Statuses() []Status {
	return []Status{StatusDraft, StatusIssued, StatusCancelled}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusIssued, StatusCancelled:
		return true
	}
	return false
}

type Invoice struct {
	// Core identifiers
	ID     int64  // Store-assigned identifier, never reused
	Number string // Invoice number as printed on the external document

	// Parties
	ClientName string // Free-text client name
	CustomerID int64  // Advisory link to a Customer registration (0 = none)

	// Dates
	IssueDate civil.Date // Date the document was issued

	// Amounts (decimal to keep cents exact; net = gross - tax is checked on write)
	GrossAmount decimal.Decimal
	TaxAmount   decimal.Decimal
	NetAmount   decimal.Decimal

	// Status
	Status Status

	// Optional metadata
	Notes     string
	CreatedAt time.Time // Set by the repository on add
	UpdatedAt time.Time // Refreshed by the repository on every edit

	// Extra keeps fields read from disk that this version does not know about.
	Extra Extras
}

// RecordID implements store.Record.
func (i Invoice) RecordID() int64 {
	return i.ID
}

// invoiceWire is the on-disk shape of an Invoice.
type invoiceWire struct {
	ID          int64     `json:"id"`
	Number      string    `json:"number"`
	IssueDate   string    `json:"issue_date"`
	ClientName  string    `json:"client_name"`
	CustomerID  int64     `json:"customer_id,omitempty"`
	GrossAmount string    `json:"gross_amount"`
	TaxAmount   string    `json:"tax_amount"`
	NetAmount   string    `json:"net_amount"`
	Status      Status    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var invoiceKeys = []string{
	"id", "number", "issue_date", "client_name", "customer_id",
	"gross_amount", "tax_amount", "net_amount", "status", "notes",
	"created_at", "updated_at",
}

// MarshalJSON writes amounts with two decimal places and appends unknown fields.
func (i Invoice) MarshalJSON() ([]byte, error) {
	w := invoiceWire{
		ID:          i.ID,
		Number:      i.Number,
		ClientName:  i.ClientName,
		CustomerID:  i.CustomerID,
		GrossAmount: i.GrossAmount.StringFixed(2),
		TaxAmount:   i.TaxAmount.StringFixed(2),
		NetAmount:   i.NetAmount.StringFixed(2),
		Status:      i.Status,
		Notes:       i.Notes,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	if !i.IssueDate.IsZero() {
		w.IssueDate = i.IssueDate.String()
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return appendExtras(data, i.Extra)
}

// UnmarshalJSON reads the on-disk shape and keeps unknown fields in Extra.
func (i *Invoice) UnmarshalJSON(data []byte) error {
	var w invoiceWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := Invoice{
		ID:         w.ID,
		Number:     w.Number,
		ClientName: w.ClientName,
		CustomerID: w.CustomerID,
		Status:     w.Status,
		Notes:      w.Notes,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}

	if w.IssueDate != "" {
		d, err := civil.ParseDate(w.IssueDate)
		if err != nil {
			return fmt.Errorf("invoice %d: issue_date: %w", w.ID, err)
		}
		out.IssueDate = d
	}

	var err error
	if out.GrossAmount, err = parseStoredAmount(w.GrossAmount); err != nil {
		return fmt.Errorf("invoice %d: gross_amount: %w", w.ID, err)
	}
	if out.TaxAmount, err = parseStoredAmount(w.TaxAmount); err != nil {
		return fmt.Errorf("invoice %d: tax_amount: %w", w.ID, err)
	}
	if out.NetAmount, err = parseStoredAmount(w.NetAmount); err != nil {
		return fmt.Errorf("invoice %d: net_amount: %w", w.ID, err)
	}

	if out.Extra, err = splitExtras(data, invoiceKeys); err != nil {
		return err
	}

	*i = out
	return nil
}

func parseStoredAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
