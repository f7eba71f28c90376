package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"notas/internal/logger"
	"notas/internal/report"
	"notas/internal/repository"
	"notas/internal/schema"
	"notas/pkg/models"
)

var invoiceCmd = &cobra.Command{
	Use:     "invoice",
	Aliases: []string{"nota", "notas"},
	Short:   "Add, list, edit and delete invoice entries",
	Long: `Manage the invoice entries of the ledger.

Amounts accept both Brazilian and international notation (1.234,56 or
1,234.56, with or without "R$") and dates accept YYYY-MM-DD or DD/MM/YYYY.
When the net amount is left out it is computed as gross minus tax; when it
is given it must match gross minus tax within one cent.`,
	Example: `  # Register an invoice
  notas invoice add --number NF-001 --date 01/05/2024 --client ACME --gross "1.000,00" --tax 150

  # List issued invoices of May, largest first
  notas invoice list --status issued --from 2024-05-01 --to 2024-05-31 --sort amount --desc

  # Mark an invoice as issued
  notas invoice edit 3 --status issued`,
}

var invoiceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new invoice",
	Args:  cobra.NoArgs,
	RunE:  runInvoiceAdd,
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices, optionally filtered and sorted",
	Args:  cobra.NoArgs,
	RunE:  runInvoiceList,
}

var invoiceShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceShow,
}

var invoiceLastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the most recently registered invoice",
	Args:  cobra.NoArgs,
	RunE:  runInvoiceLast,
}

var invoiceEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of an invoice",
	Long: `Change fields of an invoice. Only the flags given are changed. A JSON
patch can be given with --patch; its id and created_at keys are ignored.`,
	Example: `  notas invoice edit 3 --gross 1200 --tax 180
  notas invoice edit 3 --patch '{"status":"cancelled","notes":"devolvida"}'`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoiceEdit,
}

var invoiceDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceDelete,
}

var invoiceDeleteAllCmd = &cobra.Command{
	Use:   "delete-all",
	Short: "Delete every invoice (ids are not reused)",
	Args:  cobra.NoArgs,
	RunE:  runInvoiceDeleteAll,
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceAddCmd, invoiceListCmd, invoiceShowCmd, invoiceLastCmd,
		invoiceEditCmd, invoiceDeleteCmd, invoiceDeleteAllCmd)

	for _, c := range []*cobra.Command{invoiceAddCmd, invoiceEditCmd} {
		c.Flags().String("number", "", "Invoice number")
		c.Flags().String("date", "", "Issue date (YYYY-MM-DD or DD/MM/YYYY)")
		c.Flags().String("client", "", "Client name")
		c.Flags().String("customer", "", "Registered customer name; fills --client and links the invoice")
		c.Flags().Int64("customer-id", 0, "Registered customer id")
		c.Flags().String("gross", "", "Gross amount")
		c.Flags().String("tax", "", "Tax amount")
		c.Flags().String("net", "", "Net amount (default: gross - tax)")
		c.Flags().String("status", "", "Status: draft, issued or cancelled")
		c.Flags().String("notes", "", "Free text notes")
	}
	invoiceEditCmd.Flags().String("patch", "", "JSON object with the fields to change")

	addFilterFlags(invoiceListCmd)

	invoiceDeleteAllCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

// resolveCustomer links an invoice to a registered customer given by name.
func resolveCustomer(cmd *cobra.Command) (*models.Customer, error) {
	name, _ := cmd.Flags().GetString("customer")
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	customer, ok, err := customerRepository().FindByName(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, schema.NewValidationError("customer", name, "is not registered; add it with 'notas customer add'")
	}
	return &customer, nil
}

func runInvoiceAdd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	draft := schema.InvoiceDraft{}
	draft.Number, _ = cmd.Flags().GetString("number")
	draft.IssueDate, _ = cmd.Flags().GetString("date")
	draft.ClientName, _ = cmd.Flags().GetString("client")
	draft.CustomerID, _ = cmd.Flags().GetInt64("customer-id")
	draft.GrossAmount, _ = cmd.Flags().GetString("gross")
	draft.TaxAmount, _ = cmd.Flags().GetString("tax")
	draft.NetAmount, _ = cmd.Flags().GetString("net")
	draft.Status, _ = cmd.Flags().GetString("status")
	draft.Notes, _ = cmd.Flags().GetString("notes")

	customer, err := resolveCustomer(cmd)
	if err != nil {
		return handleStoreError(err, log)
	}
	if customer != nil {
		draft.CustomerID = customer.ID
		if strings.TrimSpace(draft.ClientName) == "" {
			draft.ClientName = customer.Name
		}
	}

	inv, err := invoiceRepository().Add(draft)
	if err != nil {
		return handleStoreError(err, log)
	}

	if jsonOutput {
		return printJSON(cmd, inv)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Nota #%d adicionada: %s, %s, %s\n",
		inv.ID, inv.Number, inv.ClientName, report.FormatBRL(inv.GrossAmount))
	return nil
}

func runInvoiceList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	filter, err := invoiceFilterFromFlags(cmd)
	if err != nil {
		return handleStoreError(err, log)
	}

	invoices, err := invoiceRepository().List(filter)
	if err != nil {
		return handleStoreError(err, log)
	}

	if jsonOutput {
		return printJSON(cmd, invoices)
	}

	out := cmd.OutOrStdout()
	if len(invoices) == 0 {
		fmt.Fprintln(out, "Nenhuma nota encontrada.")
		return nil
	}

	fmt.Fprintf(out, "%5s  %-10s  %-14s  %-30s  %16s  %-9s\n", "ID", "Data", "Número", "Cliente", "Valor bruto", "Situação")
	fmt.Fprintln(out, strings.Repeat("-", 94))
	for _, inv := range invoices {
		fmt.Fprintf(out, "%5d  %-10s  %-14s  %-30s  %16s  %-9s\n",
			inv.ID,
			schema.FormatDateBR(inv.IssueDate),
			inv.Number,
			inv.ClientName,
			report.FormatBRL(inv.GrossAmount),
			inv.Status)
	}
	fmt.Fprintln(out, strings.Repeat("-", 94))
	fmt.Fprintf(out, "%s nota(s)\n", humanize.Comma(int64(len(invoices))))
	return nil
}

func printInvoice(cmd *cobra.Command, inv models.Invoice) error {
	if jsonOutput {
		return printJSON(cmd, inv)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "Nota #%d\n", inv.ID)
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "Número:         %s\n", inv.Number)
	fmt.Fprintf(out, "Emissão:        %s\n", schema.FormatDateBR(inv.IssueDate))
	fmt.Fprintf(out, "Cliente:        %s\n", inv.ClientName)
	if inv.CustomerID > 0 {
		fmt.Fprintf(out, "Cadastro:       #%d\n", inv.CustomerID)
	}
	fmt.Fprintf(out, "Valor bruto:    %s\n", report.FormatBRL(inv.GrossAmount))
	fmt.Fprintf(out, "Impostos:       %s\n", report.FormatBRL(inv.TaxAmount))
	fmt.Fprintf(out, "Valor líquido:  %s\n", report.FormatBRL(inv.NetAmount))
	fmt.Fprintf(out, "Situação:       %s\n", inv.Status)
	if inv.Notes != "" {
		fmt.Fprintf(out, "Observações:    %s\n", inv.Notes)
	}
	fmt.Fprintf(out, "Criada:         %s (%s)\n", inv.CreatedAt.Local().Format("02/01/2006 15:04"), humanize.Time(inv.CreatedAt))
	fmt.Fprintf(out, "Atualizada:     %s (%s)\n", inv.UpdatedAt.Local().Format("02/01/2006 15:04"), humanize.Time(inv.UpdatedAt))
	return nil
}

func runInvoiceShow(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	id, err := parseID(args[0])
	if err != nil {
		return handleStoreError(err, log)
	}
	inv, err := invoiceRepository().Get(id)
	if err != nil {
		return handleStoreError(err, log)
	}
	return printInvoice(cmd, inv)
}

func runInvoiceLast(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	inv, ok, err := invoiceRepository().Last()
	if err != nil {
		return handleStoreError(err, log)
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Nenhuma nota cadastrada.")
		return nil
	}
	return printInvoice(cmd, inv)
}

func runInvoiceEdit(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	id, err := parseID(args[0])
	if err != nil {
		return handleStoreError(err, log)
	}

	var patch repository.InvoicePatch
	if raw, _ := cmd.Flags().GetString("patch"); raw != "" {
		if strings.HasPrefix(raw, "@") {
			data, err := os.ReadFile(strings.TrimPrefix(raw, "@"))
			if err != nil {
				return fmt.Errorf("failed to read patch file: %w", err)
			}
			raw = string(data)
		}
		if patch, err = repository.ParseInvoicePatch([]byte(raw)); err != nil {
			return handleStoreError(err, log)
		}
	}

	for flag, field := range map[string]**string{
		"number": &patch.Number,
		"date":   &patch.IssueDate,
		"client": &patch.ClientName,
		"gross":  &patch.GrossAmount,
		"tax":    &patch.TaxAmount,
		"net":    &patch.NetAmount,
		"status": &patch.Status,
		"notes":  &patch.Notes,
	} {
		if v := changedString(cmd, flag); v != nil {
			*field = v
		}
	}
	if cmd.Flags().Changed("customer-id") {
		customerID, _ := cmd.Flags().GetInt64("customer-id")
		patch.CustomerID = &customerID
	}

	customer, err := resolveCustomer(cmd)
	if err != nil {
		return handleStoreError(err, log)
	}
	if customer != nil {
		patch.CustomerID = &customer.ID
		if patch.ClientName == nil {
			patch.ClientName = &customer.Name
		}
	}

	inv, err := invoiceRepository().Update(id, patch)
	if err != nil {
		return handleStoreError(err, log)
	}

	if jsonOutput {
		return printJSON(cmd, inv)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Nota #%d atualizada.\n", inv.ID)
	return nil
}

func runInvoiceDelete(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	id, err := parseID(args[0])
	if err != nil {
		return handleStoreError(err, log)
	}
	if err := invoiceRepository().Delete(id); err != nil {
		return handleStoreError(err, log)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Nota #%d excluída.\n", id)
	return nil
}

func runInvoiceDeleteAll(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")
	repo := invoiceRepository()

	count, err := repo.Count()
	if err != nil {
		return handleStoreError(err, log)
	}
	if count == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nenhuma nota para excluir.")
		return nil
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes && !confirm(cmd, fmt.Sprintf("Excluir todas as %s notas? Esta ação não pode ser desfeita.", humanize.Comma(int64(count)))) {
		fmt.Fprintln(cmd.OutOrStdout(), "Operação cancelada.")
		return nil
	}

	removed, err := repo.DeleteAll()
	if err != nil {
		return handleStoreError(err, log)
	}

	log.Info().Int("removed", removed).Msg("Invoices cleared from CLI")
	fmt.Fprintf(cmd.OutOrStdout(), "%s nota(s) excluída(s).\n", humanize.Comma(int64(removed)))
	return nil
}
