package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"notas/internal/backup"
	"notas/internal/repository"
	"notas/internal/schema"
)

func invoiceRepository() *repository.InvoiceRepository {
	return repository.NewInvoiceRepository(appConfig.Layout().Invoices())
}

func customerRepository() *repository.CustomerRepository {
	return repository.NewCustomerRepository(appConfig.Layout().Customers())
}

func backupManager() *backup.Manager {
	return backup.NewManager(appConfig.Layout(), backup.WithBackupDir(appConfig.BackupDir))
}

// printJSON writes v as indented JSON to the command output.
func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// confirm asks a yes/no question on the command input.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [s/N]: ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}

// parseID parses a positional record id.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, schema.NewValidationError("id", arg, "must be a positive integer")
	}
	return id, nil
}

// changedString returns a pointer to the flag value when the flag was given.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}
