package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"notas/internal/export"
	"notas/internal/logger"
	"notas/internal/schema"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Add invoices from a CSV file in the export layout",
	Long: `Add invoices from a CSV file with the same columns written by
'notas export'. Columns are matched by header name and may come in any
order; number, issue_date, client_name, gross_amount and tax_amount are
required. Every row is validated like 'notas invoice add' and receives a
new id; the id column of the file is ignored.

Rows that fail validation are reported and skipped. With --dry-run the
file is only checked.`,
	Example: `  notas import notas_todas_20240501_140309.csv
  notas import planilha.csv --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

type importOutput struct {
	Added   []int64  `json:"added"`
	Skipped []string `json:"skipped"`
	DryRun  bool     `json:"dry_run"`
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Bool("dry-run", false, "Validate the file without adding anything")
}

func runImport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("import")
	path := args[0]
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	f, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("Failed to open CSV file")
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close CSV file")
		}
	}()

	drafts, rowErrors, err := export.NewReader().Read(f)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("Failed to read CSV file")
		return err
	}

	output := importOutput{Added: []int64{}, Skipped: []string{}, DryRun: dryRun}
	for _, rowErr := range rowErrors {
		output.Skipped = append(output.Skipped, rowErr.Error())
	}

	repo := invoiceRepository()
	for i, draft := range drafts {
		if dryRun {
			if _, err := schema.ValidateInvoice(draft); err != nil {
				output.Skipped = append(output.Skipped, fmt.Sprintf("entry %d (%s): %v", i+1, draft.Number, err))
			}
			continue
		}
		inv, err := repo.Add(draft)
		if err != nil {
			output.Skipped = append(output.Skipped, fmt.Sprintf("entry %d (%s): %v", i+1, draft.Number, err))
			continue
		}
		output.Added = append(output.Added, inv.ID)
	}

	log.Info().
		Str("file", path).
		Int("added", len(output.Added)).
		Int("skipped", len(output.Skipped)).
		Bool("dry_run", dryRun).
		Msg("Import finished")

	if jsonOutput {
		return printJSON(cmd, output)
	}

	out := cmd.OutOrStdout()
	for _, s := range output.Skipped {
		fmt.Fprintf(out, "Ignorada: %s\n", s)
	}
	if dryRun {
		fmt.Fprintf(out, "%s linha(s) válida(s) de %s.\n",
			humanize.Comma(int64(len(drafts)-len(output.Skipped)+len(rowErrors))),
			humanize.Comma(int64(len(drafts)+len(rowErrors))))
		return nil
	}
	fmt.Fprintf(out, "%s nota(s) importada(s), %s ignorada(s).\n",
		humanize.Comma(int64(len(output.Added))), humanize.Comma(int64(len(output.Skipped))))
	return nil
}
