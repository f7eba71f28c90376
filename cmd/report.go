package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"notas/internal/logger"
	"notas/internal/report"
	"notas/internal/repository"
	"notas/internal/schema"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print totals of gross, tax and net amounts",
	Long: `Print the invoices matching the selection flags followed by their count
and the totals of gross, tax and net amounts. --group-by adds subtotals per
status, client or month.`,
	Example: `  notas report --from 01/01/2024 --to 31/12/2024
  notas report --group-by month --status issued
  notas report --group-by client --json`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

type reportOutput struct {
	Report   report.Report `json:"report"`
	Invoices int           `json:"invoices"`
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("group-by", "", "Subtotals per status, client or month")
	reportCmd.Flags().Bool("summary", false, "Print only the totals, not one line per invoice")
	addFilterFlags(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("report")

	groupFlag, _ := cmd.Flags().GetString("group-by")
	groupBy, err := report.ParseGroupBy(groupFlag)
	if err != nil {
		return handleStoreError(err, log)
	}

	filter, err := invoiceFilterFromFlags(cmd)
	if err != nil {
		return handleStoreError(err, log)
	}
	if !cmd.Flags().Changed("sort") {
		filter.SortBy = repository.SortByDate
	}

	invoices, err := invoiceRepository().List(filter)
	if err != nil {
		return handleStoreError(err, log)
	}

	summary := report.Summarize(invoices, groupBy)

	log.Info().
		Int("count", summary.Count).
		Str("total_gross", summary.TotalGross.StringFixed(2)).
		Str("group_by", string(groupBy)).
		Msg("Report computed")

	if jsonOutput {
		return printJSON(cmd, reportOutput{Report: summary, Invoices: len(invoices)})
	}

	title := "Relatório de notas"
	switch {
	case !filter.From.IsZero() && !filter.To.IsZero():
		title = fmt.Sprintf("%s de %s a %s", title, schema.FormatDateBR(filter.From), schema.FormatDateBR(filter.To))
	case !filter.From.IsZero():
		title = fmt.Sprintf("%s a partir de %s", title, schema.FormatDateBR(filter.From))
	case !filter.To.IsZero():
		title = fmt.Sprintf("%s até %s", title, schema.FormatDateBR(filter.To))
	}

	lines := invoices
	if summaryOnly, _ := cmd.Flags().GetBool("summary"); summaryOnly {
		lines = nil
	}
	return report.Render(cmd.OutOrStdout(), title, lines, summary)
}
