package repository

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"cloud.google.com/go/civil"

	"notas/internal/schema"
	"notas/pkg/models"
)

// SortKey selects the ordering of List results.
type SortKey string

const (
	SortByID     SortKey = "id"
	SortByDate   SortKey = "date"
	SortByAmount SortKey = "amount"
	SortByClient SortKey = "client"
	SortByNumber SortKey = "number"
)

// SortKeys lists the accepted sort keys.
func SortKeys() []SortKey {
	return []SortKey{SortByID, SortByDate, SortByAmount, SortByClient, SortByNumber}
}

// InvoiceFilter narrows and orders a List call. Zero values disable a criterion.
type InvoiceFilter struct {
	From       civil.Date
	To         civil.Date
	Status     models.Status
	Client     string
	CustomerID int64
	IDs        []int64
	Term       string

	SortBy     SortKey
	Descending bool
}

func (f InvoiceFilter) validate() error {
	switch f.SortBy {
	case "", SortByID, SortByDate, SortByAmount, SortByClient, SortByNumber:
	default:
		return schema.NewValidationError("sort_by", string(f.SortBy),
			fmt.Sprintf("must be one of %v", SortKeys()))
	}
	if f.Status != "" && !f.Status.Valid() {
		return schema.NewValidationError("status", string(f.Status), "must be one of draft, issued, cancelled")
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return schema.NewValidationError("to", f.To.String(), "must not be before from")
	}
	return nil
}

func (f InvoiceFilter) match(inv models.Invoice) bool {
	if !f.From.IsZero() && inv.IssueDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && inv.IssueDate.After(f.To) {
		return false
	}
	if f.Status != "" && inv.Status != f.Status {
		return false
	}
	if f.Client != "" && !containsFold(inv.ClientName, f.Client) {
		return false
	}
	if f.CustomerID > 0 && inv.CustomerID != f.CustomerID {
		return false
	}
	if len(f.IDs) > 0 && !slices.Contains(f.IDs, inv.ID) {
		return false
	}
	if f.Term != "" && !matchTerm(inv, f.Term) {
		return false
	}
	return true
}

// matchTerm searches the visible fields of an invoice, including dates in
// both formats and amounts with either decimal separator.
func matchTerm(inv models.Invoice, term string) bool {
	term = strings.TrimSpace(term)
	fields := []string{
		inv.Number,
		inv.ClientName,
		inv.Notes,
		string(inv.Status),
		inv.IssueDate.String(),
		schema.FormatDateBR(inv.IssueDate),
	}
	for _, amount := range []string{
		inv.GrossAmount.StringFixed(2),
		inv.TaxAmount.StringFixed(2),
		inv.NetAmount.StringFixed(2),
	} {
		fields = append(fields, amount, strings.Replace(amount, ".", ",", 1))
	}
	for _, field := range fields {
		if containsFold(field, term) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func sortInvoices(records []models.Invoice, key SortKey, descending bool) {
	primary := func(a, b models.Invoice) int {
		switch key {
		case SortByDate:
			return compareDates(a.IssueDate, b.IssueDate)
		case SortByAmount:
			return a.GrossAmount.Cmp(b.GrossAmount)
		case SortByClient:
			return cmp.Compare(strings.ToLower(a.ClientName), strings.ToLower(b.ClientName))
		case SortByNumber:
			return cmp.Compare(a.Number, b.Number)
		}
		return 0
	}

	slices.SortFunc(records, func(a, b models.Invoice) int {
		c := primary(a, b)
		if key == "" || key == SortByID {
			c = cmp.Compare(a.ID, b.ID)
			if descending {
				c = -c
			}
			return c
		}
		if descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func compareDates(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// CustomerFilter narrows a customer List call.
type CustomerFilter struct {
	Term string
}

func (f CustomerFilter) match(c models.Customer) bool {
	if f.Term == "" {
		return true
	}
	term := strings.TrimSpace(f.Term)
	for _, field := range []string{c.Name, c.TaxID, schema.Digits(c.TaxID), c.Phone, c.Email, c.Address} {
		if field != "" && containsFold(field, term) {
			return true
		}
	}
	return false
}
