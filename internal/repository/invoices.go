package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"notas/internal/logger"
	"notas/internal/schema"
	"notas/internal/store"
	"notas/pkg/models"
)

// InvoicePatch holds the fields to change in an Update. Nil fields are left
// untouched. Identity and creation time are not patchable.
type InvoicePatch struct {
	Number      *string
	IssueDate   *string
	ClientName  *string
	CustomerID  *int64
	GrossAmount *string
	TaxAmount   *string
	NetAmount   *string
	Status      *string
	Notes       *string
}

// ParseInvoicePatch decodes a JSON object into a patch. Amounts may be JSON
// numbers or strings. Keys that are not patchable, such as id and created_at,
// are ignored.
func ParseInvoicePatch(data []byte) (InvoicePatch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return InvoicePatch{}, fmt.Errorf("invalid patch: %w", err)
	}

	var patch InvoicePatch
	for key, value := range raw {
		var target **string
		switch key {
		case "number":
			target = &patch.Number
		case "issue_date":
			target = &patch.IssueDate
		case "client_name":
			target = &patch.ClientName
		case "gross_amount":
			target = &patch.GrossAmount
		case "tax_amount":
			target = &patch.TaxAmount
		case "net_amount":
			target = &patch.NetAmount
		case "status":
			target = &patch.Status
		case "notes":
			target = &patch.Notes
		case "customer_id":
			var id int64
			if err := json.Unmarshal(value, &id); err != nil {
				return InvoicePatch{}, schema.NewValidationError("customer_id", string(value), "must be an integer")
			}
			patch.CustomerID = &id
			continue
		default:
			continue
		}

		s, err := scalarString(value)
		if err != nil {
			return InvoicePatch{}, schema.NewValidationError(key, string(value), "must be a string or number")
		}
		*target = &s
	}
	return patch, nil
}

func scalarString(value json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(value, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

func (p InvoicePatch) apply(d schema.InvoiceDraft) schema.InvoiceDraft {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&d.Number, p.Number)
	set(&d.IssueDate, p.IssueDate)
	set(&d.ClientName, p.ClientName)
	set(&d.Status, p.Status)
	set(&d.Notes, p.Notes)

	// A changed gross or tax without an explicit net recomputes net.
	if (p.GrossAmount != nil || p.TaxAmount != nil) && p.NetAmount == nil {
		d.NetAmount = ""
	}
	set(&d.GrossAmount, p.GrossAmount)
	set(&d.TaxAmount, p.TaxAmount)
	set(&d.NetAmount, p.NetAmount)

	if p.CustomerID != nil {
		d.CustomerID = *p.CustomerID
	}
	return d
}

// InvoiceRepository manages invoice entries in a store file.
type InvoiceRepository struct {
	file *store.File[models.Invoice]
	opts options
	log  zerolog.Logger
}

// NewInvoiceRepository creates a repository over the given store file.
func NewInvoiceRepository(file *store.File[models.Invoice], opts ...Option) *InvoiceRepository {
	return &InvoiceRepository{
		file: file,
		opts: newOptions(opts),
		log:  logger.WithComponent("repository"),
	}
}

// Add validates a draft, assigns it a fresh id and timestamps and stores it.
func (r *InvoiceRepository) Add(draft schema.InvoiceDraft) (models.Invoice, error) {
	inv, err := schema.ValidateInvoice(draft)
	if err != nil {
		return models.Invoice{}, err
	}

	err = r.file.Update(func(c *store.Collection[models.Invoice]) error {
		now := r.opts.now()
		inv.ID = c.Allocate()
		inv.CreatedAt = now
		inv.UpdatedAt = now
		c.Records = append(c.Records, inv)
		return nil
	})
	if err != nil {
		return models.Invoice{}, err
	}

	r.log.Info().
		Int64("invoice_id", inv.ID).
		Str("number", inv.Number).
		Str("gross_amount", inv.GrossAmount.StringFixed(2)).
		Msg("Invoice added")
	return inv, nil
}

// Get returns the invoice with the given id.
func (r *InvoiceRepository) Get(id int64) (models.Invoice, error) {
	c, err := r.file.Load()
	if err != nil {
		return models.Invoice{}, err
	}
	i := c.Index(id)
	if i < 0 {
		return models.Invoice{}, &NotFoundError{Kind: "invoice", ID: id}
	}
	return c.Records[i], nil
}

// List returns the invoices matching filter in the requested order. Ties are
// always broken by ascending id.
func (r *InvoiceRepository) List(filter InvoiceFilter) ([]models.Invoice, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	c, err := r.file.Load()
	if err != nil {
		return nil, err
	}

	result := make([]models.Invoice, 0, c.Len())
	for _, inv := range c.Records {
		if filter.match(inv) {
			result = append(result, inv)
		}
	}
	sortInvoices(result, filter.SortBy, filter.Descending)

	r.log.Debug().
		Int("matched", len(result)).
		Int("total", c.Len()).
		Str("sort_by", string(filter.SortBy)).
		Msg("Invoices listed")
	return result, nil
}

// Update merges patch into the stored invoice, validates the merged result
// and stores it. The id, created_at and unknown fields are preserved.
func (r *InvoiceRepository) Update(id int64, patch InvoicePatch) (models.Invoice, error) {
	var updated models.Invoice

	err := r.file.Update(func(c *store.Collection[models.Invoice]) error {
		i := c.Index(id)
		if i < 0 {
			return &NotFoundError{Kind: "invoice", ID: id}
		}
		current := c.Records[i]

		merged, err := schema.ValidateInvoice(patch.apply(schema.InvoiceDraftFrom(current)))
		if err != nil {
			return err
		}

		merged.ID = current.ID
		merged.CreatedAt = current.CreatedAt
		merged.UpdatedAt = touch(r.opts.now, current.CreatedAt)
		merged.Extra = current.Extra.Clone()
		c.Records[i] = merged
		updated = merged
		return nil
	})
	if err != nil {
		return models.Invoice{}, err
	}

	r.log.Info().Int64("invoice_id", id).Msg("Invoice updated")
	return updated, nil
}

// Delete removes the invoice with the given id.
func (r *InvoiceRepository) Delete(id int64) error {
	err := r.file.Update(func(c *store.Collection[models.Invoice]) error {
		i := c.Index(id)
		if i < 0 {
			return &NotFoundError{Kind: "invoice", ID: id}
		}
		c.Records = append(c.Records[:i], c.Records[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Info().Int64("invoice_id", id).Msg("Invoice deleted")
	return nil
}

// DeleteAll removes every invoice and returns how many were removed. The id
// counter is kept so removed ids are never handed out again.
func (r *InvoiceRepository) DeleteAll() (int, error) {
	var removed int
	err := r.file.Update(func(c *store.Collection[models.Invoice]) error {
		removed = c.Len()
		c.Records = []models.Invoice{}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.log.Info().Int("removed", removed).Msg("All invoices deleted")
	return removed, nil
}

// Count returns the number of stored invoices.
func (r *InvoiceRepository) Count() (int, error) {
	c, err := r.file.Load()
	if err != nil {
		return 0, err
	}
	return c.Len(), nil
}

// Last returns the most recently added invoice.
func (r *InvoiceRepository) Last() (models.Invoice, bool, error) {
	c, err := r.file.Load()
	if err != nil {
		return models.Invoice{}, false, err
	}
	if c.Len() == 0 {
		return models.Invoice{}, false, nil
	}
	return c.Records[c.Len()-1], true, nil
}

// ParseIDs parses a comma separated id list such as "1,2,5".
func ParseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, schema.NewValidationError("ids", part, "must be a positive integer")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
