package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notas/internal/schema"
)

func TestReader_ReadsExportBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(sample(), &buf))

	drafts, rowErrors, err := NewReader().Read(&buf)
	require.NoError(t, err)
	assert.Empty(t, rowErrors)
	require.Len(t, drafts, 2)

	assert.Equal(t, "Silva, Souza & Cia", drafts[0].ClientName)
	assert.Equal(t, "linha 1\n\"linha 2\"", drafts[0].Notes)
	assert.Equal(t, "1234.50", drafts[1].GrossAmount)

	for _, d := range drafts {
		_, err := schema.ValidateInvoice(d)
		assert.NoError(t, err)
	}
}

func TestReader_ReorderedColumnsAndShortRows(t *testing.T) {
	input := "valor,client_name,number,tax_amount,gross_amount,issue_date\n" +
		"x,Padaria,NF-9,\"1,50\",\"10,00\",01/05/2024\n" +
		"x,Curta\n" +
		"\n"

	drafts, rowErrors, err := NewReader().Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Padaria", drafts[0].ClientName)
	assert.Equal(t, "10,00", drafts[0].GrossAmount)
	assert.Equal(t, "01/05/2024", drafts[0].IssueDate)

	require.Len(t, rowErrors, 1)
	assert.Equal(t, 3, rowErrors[0].Row)
}

func TestReader_BadHeader(t *testing.T) {
	_, _, err := NewReader().Read(strings.NewReader("number,client_name\nNF-1,ACME\n"))
	assert.ErrorContains(t, err, "issue_date")

	_, _, err = NewReader().Read(strings.NewReader(""))
	assert.ErrorContains(t, err, "empty")
}
