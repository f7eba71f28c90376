package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

var amountChars = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// ErrAmbiguousAmount is returned for amounts such as "1.234" that read as
// either a thousands group or three decimal places.
var ErrAmbiguousAmount = errors.New("ambiguous amount")

// ParseAmount parses a monetary value as typed by a user. Both Brazilian
// ("1.234,56", "1234,56") and international ("1,234.56", "1234.56") notations
// are accepted, with an optional "R$" prefix. A lone dot that could be a
// thousands group ("1.234", "100.004") is rejected with ErrAmbiguousAmount.
// The result is rounded to cents.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(amountStr)
	cleaned = strings.TrimPrefix(cleaned, "R$")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "\u00a0", "")

	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	isNegative := strings.HasPrefix(cleaned, "-")
	cleaned = strings.TrimPrefix(cleaned, "-")

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Whichever separator comes last is the decimal one.
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	case lastDot >= 0:
		// "1.234.567" uses the dot as a thousands separator.
		switch {
		case strings.Count(cleaned, ".") > 1:
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		case len(cleaned)-lastDot-1 == 3 && lastDot <= 3:
			return decimal.Zero, fmt.Errorf("%w: %s: write 1234 or 1.234,00", ErrAmbiguousAmount, amountStr)
		}
	}

	if isNegative {
		cleaned = "-" + cleaned
	}
	if !amountChars.MatchString(cleaned) {
		return decimal.Zero, fmt.Errorf("unable to parse amount: %s", amountStr)
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse amount: %s: %w", amountStr, err)
	}
	return amount.Round(2), nil
}

var dateFormats = []string{
	"02/01/2006", // DD/MM/YYYY
	"2/1/2006",   // D/M/YYYY
	"02-01-2006", // DD-MM-YYYY
}

// ParseDate parses an ISO date (YYYY-MM-DD) or a Brazilian one (DD/MM/YYYY).
func ParseDate(dateStr string) (civil.Date, error) {
	cleaned := strings.TrimSpace(dateStr)
	if cleaned == "" {
		return civil.Date{}, fmt.Errorf("empty date string")
	}

	if d, err := civil.ParseDate(cleaned); err == nil {
		return d, nil
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, cleaned); err == nil {
			return civil.DateOf(t), nil
		}
	}

	return civil.Date{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// FormatDateBR renders a date as DD/MM/YYYY.
func FormatDateBR(d civil.Date) string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

var nonDigits = regexp.MustCompile(`\D`)

// Digits strips every non-digit character.
func Digits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// FormatPhone renders 10 or 11 digit phone numbers as (00) 0000-0000 or (00) 00000-0000.
func FormatPhone(phone string) string {
	d := Digits(phone)
	switch len(d) {
	case 11:
		return fmt.Sprintf("(%s) %s-%s", d[:2], d[2:7], d[7:])
	case 10:
		return fmt.Sprintf("(%s) %s-%s", d[:2], d[2:6], d[6:])
	}
	return phone
}

// FormatCNPJ renders a 14 digit CNPJ as 00.000.000/0000-00.
func FormatCNPJ(cnpj string) string {
	d := Digits(cnpj)
	if len(d) != 14 {
		return cnpj
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s", d[:2], d[2:5], d[5:8], d[8:12], d[12:])
}
