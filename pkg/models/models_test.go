package models

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoice_JSONShape(t *testing.T) {
	inv := Invoice{
		ID:          3,
		Number:      "NF-003",
		ClientName:  "ACME",
		IssueDate:   civil.Date{Year: 2024, Month: 5, Day: 1},
		GrossAmount: decimal.RequireFromString("100"),
		TaxAmount:   decimal.RequireFromString("15.5"),
		NetAmount:   decimal.RequireFromString("84.5"),
		Status:      StatusIssued,
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(inv)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 3,
		"number": "NF-003",
		"issue_date": "2024-05-01",
		"client_name": "ACME",
		"gross_amount": "100.00",
		"tax_amount": "15.50",
		"net_amount": "84.50",
		"status": "issued",
		"created_at": "2024-05-01T12:00:00Z",
		"updated_at": "2024-05-02T12:00:00Z"
	}`, string(data))
}

func TestInvoice_UnknownFieldsSurvive(t *testing.T) {
	input := `{"id":1,"number":"NF-1","issue_date":"2024-01-02","client_name":"X",` +
		`"gross_amount":"10.00","tax_amount":"1.00","net_amount":"9.00","status":"draft",` +
		`"created_at":"2024-01-02T00:00:00Z","updated_at":"2024-01-02T00:00:00Z",` +
		`"payment":{"method":"pix","paid":true},"tags":["a","b"]}`

	var inv Invoice
	require.NoError(t, json.Unmarshal([]byte(input), &inv))
	assert.Equal(t, []string{"payment", "tags"}, inv.Extra.Keys())

	out, err := json.Marshal(inv)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))
}

func TestInvoice_UnmarshalRejectsBadValues(t *testing.T) {
	for name, input := range map[string]string{
		"date":   `{"id":1,"issue_date":"01/02/2024"}`,
		"amount": `{"id":1,"gross_amount":"dez"}`,
	} {
		t.Run(name, func(t *testing.T) {
			var inv Invoice
			assert.Error(t, json.Unmarshal([]byte(input), &inv))
		})
	}
}

func TestCustomer_RoundTrip(t *testing.T) {
	input := `{"id":2,"name":"Padaria","phone":"(11) 3456-7890",` +
		`"created_at":"2024-01-02T00:00:00Z","updated_at":"2024-01-03T00:00:00Z","legacy_code":42}`

	var c Customer
	require.NoError(t, json.Unmarshal([]byte(input), &c))
	assert.Equal(t, "Padaria", c.Name)
	assert.Empty(t, c.Email)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))
}

func TestExtras_Clone(t *testing.T) {
	var empty Extras
	assert.Nil(t, empty.Clone())

	orig := Extras{"a": json.RawMessage(`1`)}
	clone := orig.Clone()
	clone["a"][0] = '2'
	assert.Equal(t, "1", string(orig["a"]))
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range Statuses() {
		assert.True(t, s.Valid())
	}
	assert.False(t, Status("paid").Valid())
	assert.False(t, Status("").Valid())
}
