// Package schema describes the shape of invoice and customer records as they
// are entered by a user and turns raw drafts into validated models.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"notas/internal/logger"
	"notas/pkg/models"
)

// AmountTolerance is the largest accepted gap between net_amount and
// gross_amount - tax_amount.
var AmountTolerance = decimal.New(1, -2)

// InvoiceDraft holds invoice input as typed by a user. Fields are validated
// in declaration order and the first failure is reported.
type InvoiceDraft struct {
	Number      string `json:"number" validate:"required,max=60"`
	IssueDate   string `json:"issue_date" validate:"required,date"`
	ClientName  string `json:"client_name" validate:"required,max=200"`
	GrossAmount string `json:"gross_amount" validate:"required,amount"`
	TaxAmount   string `json:"tax_amount" validate:"required,amount"`
	NetAmount   string `json:"net_amount" validate:"omitempty,amount"`
	Status      string `json:"status" validate:"omitempty,status"`
	CustomerID  int64  `json:"customer_id" validate:"gte=0"`
	Notes       string `json:"notes" validate:"max=2000"`
}

// CustomerDraft holds customer input as typed by a user.
type CustomerDraft struct {
	Name    string `json:"name" validate:"required,max=200"`
	TaxID   string `json:"tax_id" validate:"omitempty,cnpj"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"max=500"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := jsonName(fld)
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "date", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "amount", func(fl validator.FieldLevel) bool {
		amount, err := ParseAmount(fl.Field().String())
		return err == nil && !amount.IsNegative()
	})
	mustRegister(v, "status", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})
	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		n := len(Digits(fl.Field().String()))
		return n == 10 || n == 11
	})
	mustRegister(v, "cnpj", func(fl validator.FieldLevel) bool {
		return len(Digits(fl.Field().String())) == 14
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("schema: register %s validation: %v", tag, err))
	}
}

var reasons = map[string]string{
	"required": "is required",
	"date":     "must be a date in YYYY-MM-DD or DD/MM/YYYY format",
	"amount":   "must be a non-negative amount such as 1234.56 or 1.234,56",
	"status":   "must be one of draft, issued, cancelled",
	"phone":    "must have 10 or 11 digits",
	"cnpj":     "must have 14 digits",
	"email":    "must be a valid e-mail address",
	"gte":      "must not be negative",
}

// firstError converts validator output into a ValidationError for the first
// failing field.
func firstError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	reason, ok := reasons[fe.Tag()]
	if !ok && fe.Tag() == "max" {
		reason = fmt.Sprintf("must be at most %s characters", fe.Param())
	} else if !ok {
		reason = fmt.Sprintf("failed %s check", fe.Tag())
	}
	if fe.Tag() == "amount" {
		if _, perr := ParseAmount(fmt.Sprint(fe.Value())); errors.Is(perr, ErrAmbiguousAmount) {
			reason = "is ambiguous: write 1234 or 1.234,00"
		}
	}
	return NewValidationError(fe.Field(), fe.Value(), reason)
}

// checkAmounts applies the rules that relate gross, tax and net. Amounts that
// do not parse are left to the field checks.
func checkAmounts(d InvoiceDraft) *ValidationError {
	gross, err := ParseAmount(d.GrossAmount)
	if err != nil {
		return nil
	}
	tax, err := ParseAmount(d.TaxAmount)
	if err != nil {
		return nil
	}
	if tax.GreaterThan(gross) {
		return NewValidationError("tax_amount", d.TaxAmount, "must not exceed gross_amount")
	}
	if d.NetAmount == "" {
		return nil
	}
	net, err := ParseAmount(d.NetAmount)
	if err != nil {
		return nil
	}
	expected := gross.Sub(tax)
	if net.Sub(expected).Abs().GreaterThan(AmountTolerance) {
		return NewValidationError("net_amount", d.NetAmount,
			fmt.Sprintf("must equal gross_amount - tax_amount (%s)", expected.StringFixed(2)))
	}
	return nil
}

var invoiceFieldOrder = fieldOrder(reflect.TypeOf(InvoiceDraft{}))

func fieldOrder(t reflect.Type) map[string]int {
	order := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		order[jsonName(t.Field(i))] = i
	}
	return order
}

// precedes reports whether a names an invoice field declared before the
// field of other. Any error beats no error.
func precedes(a *ValidationError, other error) bool {
	var verr *ValidationError
	if !errors.As(other, &verr) {
		return other == nil
	}
	return invoiceFieldOrder[a.Field] < invoiceFieldOrder[verr.Field]
}

func jsonName(fld reflect.StructField) string {
	return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
}

// Normalize trims surrounding whitespace from every text field.
func (d InvoiceDraft) Normalize() InvoiceDraft {
	d.Number = strings.TrimSpace(d.Number)
	d.IssueDate = strings.TrimSpace(d.IssueDate)
	d.ClientName = strings.TrimSpace(d.ClientName)
	d.GrossAmount = strings.TrimSpace(d.GrossAmount)
	d.TaxAmount = strings.TrimSpace(d.TaxAmount)
	d.NetAmount = strings.TrimSpace(d.NetAmount)
	d.Status = strings.ToLower(strings.TrimSpace(d.Status))
	d.Notes = strings.TrimSpace(d.Notes)
	return d
}

// ValidateInvoice checks a draft and converts it into an invoice without
// identity or timestamps. A blank net_amount is computed as gross - tax and a
// blank status defaults to draft.
func ValidateInvoice(draft InvoiceDraft) (models.Invoice, error) {
	log := logger.WithComponent("schema")
	d := draft.Normalize()

	var verr error
	if err := validate.Struct(d); err != nil {
		verr = firstError(err)
	}
	if amountErr := checkAmounts(d); amountErr != nil && precedes(amountErr, verr) {
		verr = amountErr
	}
	if verr != nil {
		log.Debug().Err(verr).Msg("Invoice draft rejected")
		return models.Invoice{}, verr
	}

	// The checks above guarantee these parse.
	issueDate, _ := ParseDate(d.IssueDate)
	gross, _ := ParseAmount(d.GrossAmount)
	tax, _ := ParseAmount(d.TaxAmount)

	net := gross.Sub(tax)
	if d.NetAmount != "" {
		net, _ = ParseAmount(d.NetAmount)
	}

	status := models.StatusDraft
	if d.Status != "" {
		status = models.Status(d.Status)
	}

	return models.Invoice{
		Number:      d.Number,
		ClientName:  d.ClientName,
		CustomerID:  d.CustomerID,
		IssueDate:   issueDate,
		GrossAmount: gross,
		TaxAmount:   tax,
		NetAmount:   net,
		Status:      status,
		Notes:       d.Notes,
	}, nil
}

// InvoiceDraftFrom renders a stored invoice back into draft form so that a
// partial update can be merged and validated as a whole.
func InvoiceDraftFrom(inv models.Invoice) InvoiceDraft {
	return InvoiceDraft{
		Number:      inv.Number,
		IssueDate:   inv.IssueDate.String(),
		ClientName:  inv.ClientName,
		GrossAmount: inv.GrossAmount.StringFixed(2),
		TaxAmount:   inv.TaxAmount.StringFixed(2),
		NetAmount:   inv.NetAmount.StringFixed(2),
		Status:      string(inv.Status),
		CustomerID:  inv.CustomerID,
		Notes:       inv.Notes,
	}
}

// Normalize trims surrounding whitespace from every text field.
func (d CustomerDraft) Normalize() CustomerDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.TaxID = strings.TrimSpace(d.TaxID)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Address = strings.TrimSpace(d.Address)
	return d
}

// ValidateCustomer checks a draft and converts it into a customer without
// identity or timestamps. Phone and CNPJ are stored in their formatted form.
func ValidateCustomer(draft CustomerDraft) (models.Customer, error) {
	log := logger.WithComponent("schema")
	d := draft.Normalize()

	if err := validate.Struct(d); err != nil {
		verr := firstError(err)
		log.Debug().Err(verr).Msg("Customer draft rejected")
		return models.Customer{}, verr
	}

	return models.Customer{
		Name:    d.Name,
		TaxID:   FormatCNPJ(d.TaxID),
		Phone:   FormatPhone(d.Phone),
		Email:   d.Email,
		Address: d.Address,
	}, nil
}

// CustomerDraftFrom renders a stored customer back into draft form.
func CustomerDraftFrom(c models.Customer) CustomerDraft {
	return CustomerDraft{
		Name:    c.Name,
		TaxID:   c.TaxID,
		Phone:   c.Phone,
		Email:   c.Email,
		Address: c.Address,
	}
}
