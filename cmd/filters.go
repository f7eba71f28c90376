package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"notas/internal/repository"
	"notas/internal/schema"
	"notas/pkg/models"
)

// addFilterFlags registers the invoice selection flags shared by list,
// export and report.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "Only invoices issued on or after this date (YYYY-MM-DD or DD/MM/YYYY)")
	cmd.Flags().String("to", "", "Only invoices issued on or before this date")
	cmd.Flags().String("status", "", "Only invoices with this status (draft, issued, cancelled)")
	cmd.Flags().String("client", "", "Only invoices whose client name contains this text")
	cmd.Flags().Int64("customer-id", 0, "Only invoices linked to this customer id")
	cmd.Flags().String("ids", "", "Only these invoice ids, comma separated")
	cmd.Flags().StringP("search", "s", "", "Search term matched against number, client, notes, dates and amounts")
	cmd.Flags().String("sort", "id", "Sort key: id, date, amount, client or number")
	cmd.Flags().Bool("desc", false, "Sort in descending order")
}

// invoiceFilterFromFlags builds a repository filter from the selection flags.
func invoiceFilterFromFlags(cmd *cobra.Command) (repository.InvoiceFilter, error) {
	var filter repository.InvoiceFilter

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	status, _ := cmd.Flags().GetString("status")
	ids, _ := cmd.Flags().GetString("ids")
	sortBy, _ := cmd.Flags().GetString("sort")

	if from != "" {
		d, err := schema.ParseDate(from)
		if err != nil {
			return filter, schema.NewValidationError("from", from, "must be a date in YYYY-MM-DD or DD/MM/YYYY format")
		}
		filter.From = d
	}
	if to != "" {
		d, err := schema.ParseDate(to)
		if err != nil {
			return filter, schema.NewValidationError("to", to, "must be a date in YYYY-MM-DD or DD/MM/YYYY format")
		}
		filter.To = d
	}
	if ids != "" {
		parsed, err := repository.ParseIDs(ids)
		if err != nil {
			return filter, err
		}
		filter.IDs = parsed
	}

	filter.Status = models.Status(strings.ToLower(strings.TrimSpace(status)))
	filter.Client, _ = cmd.Flags().GetString("client")
	filter.CustomerID, _ = cmd.Flags().GetInt64("customer-id")
	filter.Term, _ = cmd.Flags().GetString("search")
	filter.SortBy = repository.SortKey(strings.ToLower(sortBy))
	filter.Descending, _ = cmd.Flags().GetBool("desc")
	return filter, nil
}
