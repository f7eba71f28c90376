package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"notas/internal/logger"
	"notas/internal/repository"
	"notas/internal/schema"
	"notas/pkg/models"
)

var customerCmd = &cobra.Command{
	Use:     "customer",
	Aliases: []string{"cadastro", "cliente"},
	Short:   "Manage registered customers",
	Long: `Manage the customer registry. Names are unique regardless of case.
CNPJ must have 14 digits and phone numbers 10 or 11 digits; both are stored
in their usual display format.`,
	Example: `  notas customer add --name "Padaria Central" --cnpj 12345678000195 --phone 11987654321
  notas customer list --search padaria`,
}

var customerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a customer",
	Args:  cobra.NoArgs,
	RunE:  runCustomerAdd,
}

var customerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List customers sorted by name",
	Args:  cobra.NoArgs,
	RunE:  runCustomerList,
}

var customerShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one customer",
	Args:  cobra.ExactArgs(1),
	RunE:  runCustomerShow,
}

var customerEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a customer",
	Args:  cobra.ExactArgs(1),
	RunE:  runCustomerEdit,
}

var customerDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one customer",
	Args:  cobra.ExactArgs(1),
	RunE:  runCustomerDelete,
}

var customerDeleteAllCmd = &cobra.Command{
	Use:   "delete-all",
	Short: "Delete every customer",
	Args:  cobra.NoArgs,
	RunE:  runCustomerDeleteAll,
}

func init() {
	rootCmd.AddCommand(customerCmd)
	customerCmd.AddCommand(customerAddCmd, customerListCmd, customerShowCmd,
		customerEditCmd, customerDeleteCmd, customerDeleteAllCmd)

	for _, c := range []*cobra.Command{customerAddCmd, customerEditCmd} {
		c.Flags().String("name", "", "Customer name")
		c.Flags().String("cnpj", "", "CNPJ (14 digits)")
		c.Flags().String("phone", "", "Phone number with area code")
		c.Flags().String("email", "", "E-mail address")
		c.Flags().String("address", "", "Postal address")
	}

	customerListCmd.Flags().StringP("search", "s", "", "Search term matched against name, CNPJ, phone, e-mail and address")
	customerDeleteAllCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

func runCustomerAdd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("customer")

	draft := schema.CustomerDraft{}
	draft.Name, _ = cmd.Flags().GetString("name")
	draft.TaxID, _ = cmd.Flags().GetString("cnpj")
	draft.Phone, _ = cmd.Flags().GetString("phone")
	draft.Email, _ = cmd.Flags().GetString("email")
	draft.Address, _ = cmd.Flags().GetString("address")

	customer, err := customerRepository().Add(draft)
	if err != nil {
		return handleStoreError(err, log)
	}

	if jsonOutput {
		return printJSON(cmd, customer)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cadastro #%d adicionado: %s\n", customer.ID, customer.Name)
	return nil
}

func runCustomerList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("customer")

	term, _ := cmd.Flags().GetString("search")
	customers, err := customerRepository().List(repository.CustomerFilter{Term: term})
	if err != nil {
		return handleStoreError(err, log)
	}

	if jsonOutput {
		return printJSON(cmd, customers)
	}

	out := cmd.OutOrStdout()
	if len(customers) == 0 {
		fmt.Fprintln(out, "Nenhum cadastro encontrado.")
		return nil
	}

	fmt.Fprintf(out, "%5s  %-30s  %-18s  %-15s  %s\n", "ID", "Nome", "CNPJ", "Telefone", "E-mail")
	fmt.Fprintln(out, strings.Repeat("-", 100))
	for _, c := range customers {
		fmt.Fprintf(out, "%5d  %-30s  %-18s  %-15s  %s\n", c.ID, c.Name, c.TaxID, c.Phone, c.Email)
	}
	fmt.Fprintln(out, strings.Repeat("-", 100))
	fmt.Fprintf(out, "%s cadastro(s)\n", humanize.Comma(int64(len(customers))))
	return nil
}

func printCustomer(cmd *cobra.Command, c models.Customer) error {
	if jsonOutput {
		return printJSON(cmd, c)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "Cadastro #%d\n", c.ID)
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "Nome:      %s\n", c.Name)
	fmt.Fprintf(out, "CNPJ:      %s\n", c.TaxID)
	fmt.Fprintf(out, "Telefone:  %s\n", c.Phone)
	fmt.Fprintf(out, "E-mail:    %s\n", c.Email)
	fmt.Fprintf(out, "Endereço:  %s\n", c.Address)
	fmt.Fprintf(out, "Criado:    %s\n", humanize.Time(c.CreatedAt))
	return nil
}

func runCustomerShow(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("customer")

	id, err := parseID(args[0])
	if err != nil {
		return handleStoreError(err, log)
	}
	c, err := customerRepository().Get(id)
	if err != nil {
		return handleStoreError(err, log)
	}
	return printCustomer(cmd, c)
}

func runCustomerEdit(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("customer")

	id, err := parseID(args[0])
	if err != nil {
		return handleStoreError(err, log)
	}

	patch := repository.CustomerPatch{
		Name:    changedString(cmd, "name"),
		TaxID:   changedString(cmd, "cnpj"),
		Phone:   changedString(cmd, "phone"),
		Email:   changedString(cmd, "email"),
		Address: changedString(cmd, "address"),
	}

	c, err := customerRepository().Update(id, patch)
	if err != nil {
		return handleStoreError(err, log)
	}

	if jsonOutput {
		return printJSON(cmd, c)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cadastro #%d atualizado.\n", c.ID)
	return nil
}

func runCustomerDelete(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("customer")

	id, err := parseID(args[0])
	if err != nil {
		return handleStoreError(err, log)
	}
	if err := customerRepository().Delete(id); err != nil {
		return handleStoreError(err, log)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cadastro #%d excluído.\n", id)
	return nil
}

func runCustomerDeleteAll(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("customer")
	repo := customerRepository()

	count, err := repo.Count()
	if err != nil {
		return handleStoreError(err, log)
	}
	if count == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nenhum cadastro para excluir.")
		return nil
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes && !confirm(cmd, fmt.Sprintf("Excluir todos os %s cadastros?", humanize.Comma(int64(count)))) {
		fmt.Fprintln(cmd.OutOrStdout(), "Operação cancelada.")
		return nil
	}

	removed, err := repo.DeleteAll()
	if err != nil {
		return handleStoreError(err, log)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s cadastro(s) excluído(s).\n", humanize.Comma(int64(removed)))
	return nil
}
