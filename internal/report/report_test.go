package report

import (
	"bytes"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notas/internal/schema"
	"notas/pkg/models"
)

func invoice(id int64, date civil.Date, client string, gross, tax string, status models.Status) models.Invoice {
	g := decimal.RequireFromString(gross)
	t := decimal.RequireFromString(tax)
	return models.Invoice{
		ID:          id,
		Number:      "NF-" + client,
		ClientName:  client,
		IssueDate:   date,
		GrossAmount: g,
		TaxAmount:   t,
		NetAmount:   g.Sub(t),
		Status:      status,
	}
}

func TestSummarize_Totals(t *testing.T) {
	records := []models.Invoice{
		invoice(1, civil.Date{Year: 2024, Month: 1, Day: 10}, "A", "100", "10", models.StatusDraft),
		invoice(2, civil.Date{Year: 2024, Month: 2, Day: 10}, "B", "200", "20", models.StatusIssued),
	}

	r := Summarize(records, GroupNone)
	assert.Equal(t, 2, r.Count)
	assert.Equal(t, "300.00", r.TotalGross.StringFixed(2))
	assert.Equal(t, "30.00", r.TotalTax.StringFixed(2))
	assert.Equal(t, "270.00", r.TotalNet.StringFixed(2))
	assert.Empty(t, r.Groups)
}

func TestSummarize_Empty(t *testing.T) {
	r := Summarize(nil, GroupMonth)
	assert.Zero(t, r.Count)
	assert.True(t, r.TotalGross.IsZero())
	assert.True(t, r.TotalNet.IsZero())
	assert.Empty(t, r.Groups)
}

func TestSummarize_Groups(t *testing.T) {
	records := []models.Invoice{
		invoice(1, civil.Date{Year: 2024, Month: 2, Day: 1}, "Mercado", "50", "5", models.StatusIssued),
		invoice(2, civil.Date{Year: 2024, Month: 1, Day: 31}, "ACME", "100", "10", models.StatusDraft),
		invoice(3, civil.Date{Year: 2024, Month: 2, Day: 28}, "ACME", "25.50", "0", models.StatusIssued),
	}

	tests := []struct {
		by    GroupBy
		keys  []string
		count []int
	}{
		{GroupStatus, []string{"draft", "issued"}, []int{1, 2}},
		{GroupClient, []string{"ACME", "Mercado"}, []int{2, 1}},
		{GroupMonth, []string{"2024-01", "2024-02"}, []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(string(tt.by), func(t *testing.T) {
			r := Summarize(records, tt.by)
			require.Len(t, r.Groups, len(tt.keys))
			for i, g := range r.Groups {
				assert.Equal(t, tt.keys[i], g.Key)
				assert.Equal(t, tt.count[i], g.Count)
			}
			assert.Equal(t, "175.50", r.TotalGross.StringFixed(2))
		})
	}

	byClient := Summarize(records, GroupClient)
	assert.Equal(t, "125.50", byClient.Groups[0].TotalGross.StringFixed(2))
	assert.Equal(t, "115.50", byClient.Groups[0].TotalNet.StringFixed(2))
}

func TestParseGroupBy(t *testing.T) {
	g, err := ParseGroupBy(" Month ")
	require.NoError(t, err)
	assert.Equal(t, GroupMonth, g)

	g, err = ParseGroupBy("")
	require.NoError(t, err)
	assert.Equal(t, GroupNone, g)

	_, err = ParseGroupBy("weekday")
	assert.True(t, errors.Is(err, schema.ErrValidation))
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", FormatBRL(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "R$ 0,00", FormatBRL(decimal.Zero))
	assert.Equal(t, "R$ 10,50", FormatBRL(decimal.RequireFromString("10.5")))
	assert.Equal(t, "R$ -1.000,00", FormatBRL(decimal.RequireFromString("-1000")))
	assert.Equal(t, "R$ 123.456.789.012.345.678,91",
		FormatBRL(decimal.RequireFromString("123456789012345678.91")))
}

func TestSummarize_ClientGroupsCollated(t *testing.T) {
	date := civil.Date{Year: 2024, Month: 5, Day: 1}
	records := []models.Invoice{
		invoice(1, date, "Beta", "10", "0", models.StatusIssued),
		invoice(2, date, "Álvaro", "10", "0", models.StatusIssued),
		invoice(3, date, "alfa", "10", "0", models.StatusIssued),
	}

	r := Summarize(records, GroupClient)
	var keys []string
	for _, g := range r.Groups {
		keys = append(keys, g.Key)
	}
	assert.Equal(t, []string{"alfa", "Álvaro", "Beta"}, keys)
}

func TestRender(t *testing.T) {
	records := []models.Invoice{
		invoice(1, civil.Date{Year: 2024, Month: 5, Day: 1}, "Companhia Brasileira de Distribuição Ltda", "1234.56", "34.56", models.StatusIssued),
	}
	r := Summarize(records, GroupStatus)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "Relatório de notas", records, r))
	out := buf.String()

	assert.Contains(t, out, "Relatório de notas")
	assert.Contains(t, out, "01/05/2024")
	assert.Contains(t, out, "Companhia Brasileira de Dis...")
	assert.NotContains(t, out, "Distribuição Ltda")
	assert.Contains(t, out, "R$ 1.234,56")
	assert.Contains(t, out, "Valor líquido:  R$ 1.200,00")
	assert.Contains(t, out, "Por situação:")
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "Vazio", nil, Summarize(nil, GroupNone)))

	assert.Contains(t, buf.String(), "Total de notas: 0")
	assert.NotContains(t, buf.String(), "Cliente")
}
