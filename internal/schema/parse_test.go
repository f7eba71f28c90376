package schema

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1234.56", "1234.56"},
		{"1234,56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"R$ 1.234,56", "1234.56"},
		{"R$1234,5", "1234.5"},
		{"1.234.567", "1234567"},
		{"1234.000", "1234"},
		{"1.234.567,89", "1234567.89"},
		{"100", "100"},
		{"0,005", "0.01"},
		{"-10,00", "-10"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "12a", "R$", "1,2,3.4.5x"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseAmount(input)
			assert.Error(t, err)
		})
	}
}

func TestParseAmount_AmbiguousDot(t *testing.T) {
	for _, input := range []string{"1.234", "100.004", "R$ 2.500"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseAmount(input)
			require.ErrorIs(t, err, ErrAmbiguousAmount)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  civil.Date
	}{
		{"2024-05-01", civil.Date{Year: 2024, Month: 5, Day: 1}},
		{"01/05/2024", civil.Date{Year: 2024, Month: 5, Day: 1}},
		{"1/5/2024", civil.Date{Year: 2024, Month: 5, Day: 1}},
		{" 31-12-2023 ", civil.Date{Year: 2023, Month: 12, Day: 31}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, input := range []string{"", "2024-13-01", "31/02/2024", "yesterday"} {
		_, err := ParseDate(input)
		assert.Error(t, err, input)
	}
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "01/05/2024", FormatDateBR(civil.Date{Year: 2024, Month: 5, Day: 1}))
	assert.Equal(t, "(11) 98765-4321", FormatPhone("11987654321"))
	assert.Equal(t, "(11) 3456-7890", FormatPhone("11 3456 7890"))
	assert.Equal(t, "123", FormatPhone("123"))
	assert.Equal(t, "12.345.678/0001-95", FormatCNPJ("12345678000195"))
	assert.Equal(t, "12.345.678/0001-95", FormatCNPJ("12.345.678/0001-95"))
}
