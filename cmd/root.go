package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"notas/internal/config"
	"notas/internal/logger"
)

var version = "1.0.0"

var (
	appConfig  *config.Config
	dataDir    string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "notas",
	Short: "Notas - local ledger for issued invoices and customers",
	Long: `Notas keeps a local ledger of issued invoices (notas fiscais) and of the
customers they were issued to. Records live in plain JSON files inside the
data directory and every write replaces a file atomically, so the ledger
is never left half written.

Besides adding, editing and listing records, notas exports invoices to CSV,
prints totals reports, and takes and restores compressed backups of the
whole data directory.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("root")

		if dataDir != "" {
			appConfig.SetDataDir(dataDir)
		}

		layout := appConfig.Layout()
		if err := layout.Bootstrap(); err != nil {
			return handleStoreError(err, log)
		}

		log.Debug().
			Str("data_dir", layout.DataDir).
			Str("backup_dir", appConfig.BackupDir).
			Msg("Store ready")
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Notas CLI executed")

		fmt.Fprintln(cmd.OutOrStdout(), "Bem-vindo ao Notas!")
		fmt.Fprintln(cmd.OutOrStdout(), "Use --help para ver os comandos disponíveis.")
	},
}

// Execute runs the root command with the given configuration.
func Execute(cfg *config.Config) {
	log := logger.WithComponent("cmd")
	appConfig = cfg

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default: $CONTROLE_NOTAS_DATA_DIR or ./data)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}
