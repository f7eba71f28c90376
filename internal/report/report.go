// Package report aggregates invoice entries into totals for display.
package report

import (
	"fmt"
	"io"
	"math/big"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"notas/internal/schema"
	"notas/pkg/models"
)

// GroupBy selects how a report is broken down.
type GroupBy string

const (
	GroupNone   GroupBy = ""
	GroupStatus GroupBy = "status"
	GroupClient GroupBy = "client"
	GroupMonth  GroupBy = "month"
)

// ParseGroupBy validates a user supplied grouping.
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(strings.TrimSpace(s))); g {
	case GroupNone, GroupStatus, GroupClient, GroupMonth:
		return g, nil
	}
	return GroupNone, schema.NewValidationError("group_by", s, "must be one of status, client, month")
}

// Totals are the sums over a set of invoices.
type Totals struct {
	Count      int             `json:"count"`
	TotalGross decimal.Decimal `json:"total_gross"`
	TotalTax   decimal.Decimal `json:"total_tax"`
	TotalNet   decimal.Decimal `json:"total_net"`
}

func (t *Totals) add(inv models.Invoice) {
	t.Count++
	t.TotalGross = t.TotalGross.Add(inv.GrossAmount)
	t.TotalTax = t.TotalTax.Add(inv.TaxAmount)
	t.TotalNet = t.TotalNet.Add(inv.NetAmount)
}

// Group holds the totals of the invoices sharing one key.
type Group struct {
	Key string `json:"key"`
	Totals
}

// Report is the result of Summarize.
type Report struct {
	GroupBy GroupBy `json:"group_by,omitempty"`
	Totals
	Groups []Group `json:"groups,omitempty"`
}

func groupKey(inv models.Invoice, by GroupBy) string {
	switch by {
	case GroupStatus:
		return string(inv.Status)
	case GroupClient:
		return inv.ClientName
	case GroupMonth:
		return fmt.Sprintf("%04d-%02d", inv.IssueDate.Year, int(inv.IssueDate.Month))
	}
	return ""
}

// Summarize computes totals over records and, when by is set, per group.
// Groups are sorted by key; client names follow Portuguese collation, case
// and accents ignored. The input is not modified.
func Summarize(records []models.Invoice, by GroupBy) Report {
	r := Report{GroupBy: by}
	groups := make(map[string]*Group)

	for _, inv := range records {
		r.add(inv)
		if by == GroupNone {
			continue
		}
		key := groupKey(inv, by)
		g, ok := groups[key]
		if !ok {
			g = &Group{Key: key}
			groups[key] = g
		}
		g.add(inv)
	}

	for _, g := range groups {
		r.Groups = append(r.Groups, *g)
	}
	compare := strings.Compare
	if by == GroupClient {
		col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase, collate.IgnoreDiacritics)
		compare = func(a, b string) int {
			if c := col.CompareString(a, b); c != 0 {
				return c
			}
			return strings.Compare(a, b)
		}
	}
	slices.SortFunc(r.Groups, func(a, b Group) int {
		return compare(a.Key, b.Key)
	})
	return r
}

// FormatBRL renders an amount as Brazilian currency, e.g. R$ 1.234,56.
// Digits are taken from the decimal itself, so large amounts stay exact.
func FormatBRL(d decimal.Decimal) string {
	d = d.Round(2)
	whole, cents, _ := strings.Cut(d.Abs().StringFixed(2), ".")
	n, _ := new(big.Int).SetString(whole, 10)
	grouped := strings.ReplaceAll(humanize.BigComma(n), ",", ".")

	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return "R$ " + sign + grouped + "," + cents
}

const clientWidth = 30

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// Render writes a text report: one line per invoice with date, number,
// client and gross value, followed by totals and group lines.
func Render(w io.Writer, title string, records []models.Invoice, r Report) error {
	var b strings.Builder

	line := strings.Repeat("=", 80)
	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, title)
	fmt.Fprintln(&b, line)

	if len(records) > 0 {
		fmt.Fprintf(&b, "%-10s  %-14s  %-30s  %18s\n", "Data", "Número", "Cliente", "Valor")
		fmt.Fprintln(&b, strings.Repeat("-", 80))
		for _, inv := range records {
			fmt.Fprintf(&b, "%-10s  %-14s  %-30s  %18s\n",
				schema.FormatDateBR(inv.IssueDate),
				truncate(inv.Number, 14),
				truncate(inv.ClientName, clientWidth),
				FormatBRL(inv.GrossAmount))
		}
		fmt.Fprintln(&b, strings.Repeat("-", 80))
	}

	fmt.Fprintf(&b, "Total de notas: %d\n", r.Count)
	fmt.Fprintf(&b, "Valor bruto:    %s\n", FormatBRL(r.TotalGross))
	fmt.Fprintf(&b, "Impostos:       %s\n", FormatBRL(r.TotalTax))
	fmt.Fprintf(&b, "Valor líquido:  %s\n", FormatBRL(r.TotalNet))

	if len(r.Groups) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "Por %s:\n", groupLabel(r.GroupBy))
		for _, g := range r.Groups {
			fmt.Fprintf(&b, "  %-30s  %4d  %18s  %18s\n",
				truncate(g.Key, clientWidth), g.Count, FormatBRL(g.TotalGross), FormatBRL(g.TotalNet))
		}
	}
	fmt.Fprintln(&b, line)

	_, err := io.WriteString(w, b.String())
	return err
}

func groupLabel(by GroupBy) string {
	switch by {
	case GroupStatus:
		return "situação"
	case GroupClient:
		return "cliente"
	case GroupMonth:
		return "mês"
	}
	return string(by)
}
