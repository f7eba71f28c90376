package schema

import (
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notas/pkg/models"
)

func validDraft() InvoiceDraft {
	return InvoiceDraft{
		Number:      "NF-001",
		IssueDate:   "2024-05-01",
		ClientName:  "ACME",
		GrossAmount: "100.00",
		TaxAmount:   "15.00",
		NetAmount:   "85.00",
	}
}

func TestValidateInvoice(t *testing.T) {
	inv, err := ValidateInvoice(validDraft())
	require.NoError(t, err)

	assert.Equal(t, "NF-001", inv.Number)
	assert.Equal(t, civil.Date{Year: 2024, Month: 5, Day: 1}, inv.IssueDate)
	assert.Equal(t, "100.00", inv.GrossAmount.StringFixed(2))
	assert.Equal(t, "85.00", inv.NetAmount.StringFixed(2))
	assert.Equal(t, models.StatusDraft, inv.Status)
	assert.Zero(t, inv.ID)
}

func TestValidateInvoice_ComputesBlankNet(t *testing.T) {
	d := validDraft()
	d.NetAmount = ""
	d.GrossAmount = "1.000,00"
	d.TaxAmount = "R$ 120,50"

	inv, err := ValidateInvoice(d)
	require.NoError(t, err)
	assert.Equal(t, "879.50", inv.NetAmount.StringFixed(2))
}

func TestValidateInvoice_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*InvoiceDraft)
		field  string
	}{
		{"missing number", func(d *InvoiceDraft) { d.Number = "  " }, "number"},
		{"bad date", func(d *InvoiceDraft) { d.IssueDate = "2024-02-30" }, "issue_date"},
		{"missing client", func(d *InvoiceDraft) { d.ClientName = "" }, "client_name"},
		{"negative gross", func(d *InvoiceDraft) { d.GrossAmount = "-1" }, "gross_amount"},
		{"unparseable tax", func(d *InvoiceDraft) { d.TaxAmount = "ten" }, "tax_amount"},
		{"tax above gross", func(d *InvoiceDraft) { d.TaxAmount = "150"; d.NetAmount = "" }, "tax_amount"},
		{"net mismatch", func(d *InvoiceDraft) { d.NetAmount = "50.00" }, "net_amount"},
		{"unknown status", func(d *InvoiceDraft) { d.Status = "paid" }, "status"},
		{"negative customer", func(d *InvoiceDraft) { d.CustomerID = -3 }, "customer_id"},
		{"first failing field wins", func(d *InvoiceDraft) { d.Number = ""; d.Status = "paid" }, "number"},
		{"net mismatch before bad status", func(d *InvoiceDraft) { d.NetAmount = "50"; d.Status = "bogus" }, "net_amount"},
		{"tax above gross before bad customer", func(d *InvoiceDraft) { d.TaxAmount = "150"; d.NetAmount = ""; d.CustomerID = -1 }, "tax_amount"},
		{"number before net mismatch", func(d *InvoiceDraft) { d.Number = ""; d.NetAmount = "50" }, "number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.modify(&d)

			_, err := ValidateInvoice(d)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.NotEmpty(t, verr.Reason)
		})
	}
}

func TestValidateInvoice_AmbiguousAmountReason(t *testing.T) {
	d := validDraft()
	d.GrossAmount = "100.004"

	_, err := ValidateInvoice(d)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "gross_amount", verr.Field)
	assert.Contains(t, verr.Reason, "ambiguous")
}

func TestValidateInvoice_NetWithinTolerance(t *testing.T) {
	d := validDraft()
	d.NetAmount = "85.01"

	inv, err := ValidateInvoice(d)
	require.NoError(t, err)
	assert.Equal(t, "85.01", inv.NetAmount.StringFixed(2))
}

func TestValidateInvoice_StatusNormalized(t *testing.T) {
	d := validDraft()
	d.Status = " Issued "

	inv, err := ValidateInvoice(d)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIssued, inv.Status)
}

func TestInvoiceDraftFrom_RoundTrip(t *testing.T) {
	inv, err := ValidateInvoice(validDraft())
	require.NoError(t, err)

	again, err := ValidateInvoice(InvoiceDraftFrom(inv))
	require.NoError(t, err)
	assert.Equal(t, inv.Number, again.Number)
	assert.Equal(t, inv.IssueDate, again.IssueDate)
	assert.True(t, inv.NetAmount.Equal(again.NetAmount))
}

func TestValidateCustomer(t *testing.T) {
	c, err := ValidateCustomer(CustomerDraft{
		Name:  " Padaria Central ",
		TaxID: "12345678000195",
		Phone: "11987654321",
		Email: "Contato@Padaria.com.br",
	})
	require.NoError(t, err)

	assert.Equal(t, "Padaria Central", c.Name)
	assert.Equal(t, "12.345.678/0001-95", c.TaxID)
	assert.Equal(t, "(11) 98765-4321", c.Phone)
	assert.Equal(t, "contato@padaria.com.br", c.Email)
}

func TestValidateCustomer_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		draft CustomerDraft
		field string
	}{
		{"missing name", CustomerDraft{}, "name"},
		{"short cnpj", CustomerDraft{Name: "X", TaxID: "1234"}, "tax_id"},
		{"short phone", CustomerDraft{Name: "X", Phone: "12345"}, "phone"},
		{"bad email", CustomerDraft{Name: "X", Email: "not-an-email"}, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateCustomer(tt.draft)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
