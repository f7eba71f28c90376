package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"notas/internal/export"
	"notas/internal/logger"
	"notas/internal/repository"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export invoices to a CSV file",
	Long: `Export invoices to a CSV file with the columns
id, number, issue_date, client_name, gross_amount, tax_amount, net_amount,
status and notes. Amounts use a dot and two decimals, dates YYYY-MM-DD.

Without --output the file is written to $NOTAS_EXPORT_DIR (default: the
current directory) as notas_<todas|selecionadas>_YYYYMMDD_HHMMSS.csv. An
output path without the .csv extension gets it appended.`,
	Example: `  # Export every invoice
  notas export --all

  # Export a selection to a given file
  notas export --ids 1,4,7 -o selecao.csv

  # Export the issued invoices of 2024 sorted by date
  notas export --status issued --from 2024-01-01 --to 2024-12-31 --sort date`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "Output file or directory")
	exportCmd.Flags().Bool("all", false, "Export every invoice, ignoring other selection flags")
	addFilterFlags(exportCmd)
	exportCmd.MarkFlagsMutuallyExclusive("all", "ids")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")

	filter, err := invoiceFilterFromFlags(cmd)
	if err != nil {
		return handleStoreError(err, log)
	}

	kind := export.KindAll
	if all, _ := cmd.Flags().GetBool("all"); all {
		filter = repository.InvoiceFilter{SortBy: filter.SortBy, Descending: filter.Descending}
	} else if len(filter.IDs) > 0 {
		kind = export.KindSelected
	}

	invoices, err := invoiceRepository().List(filter)
	if err != nil {
		return handleStoreError(err, log)
	}

	destination, _ := cmd.Flags().GetString("output")
	if destination == "" {
		destination = appConfig.ExportDir
	}

	result, err := export.ToFile(invoices, destination, export.WithKind(kind))
	if err != nil {
		return handleStoreError(err, log)
	}

	if jsonOutput {
		return printJSON(cmd, result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s nota(s) exportada(s) para %s (%s)\n",
		humanize.Comma(int64(result.Records)), result.Path, humanize.Bytes(uint64(result.Bytes)))
	return nil
}
