package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"notas/internal/logger"
	"notas/internal/settings"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change display settings (config.json)",
	Long: `Show or change the display settings kept in config.json inside the data
directory: theme, mode (dark or light), window_size, window_position and
window_maximized. Unknown keys in the file are kept as they are.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show every setting",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Example: `  notas config set mode light
  notas config set window_size 1024x768`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("settings")

	s, err := settings.Load(appConfig.Layout().ConfigPath())
	if err != nil {
		return handleStoreError(err, log)
	}

	if jsonOutput {
		return printJSON(cmd, s)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Arquivo: %s\n", appConfig.Layout().ConfigPath())
	for _, key := range settings.Keys() {
		value, _ := s.Get(key)
		fmt.Fprintf(out, "  %-17s %s\n", key, value)
	}
	for _, key := range settings.ExtraKeys(s) {
		fmt.Fprintf(out, "  %-17s %s\n", key, s.Extra[key])
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("settings")
	path := appConfig.Layout().ConfigPath()

	s, err := settings.Load(path)
	if err != nil {
		return handleStoreError(err, log)
	}
	if err := s.Set(args[0], args[1]); err != nil {
		return handleStoreError(err, log)
	}
	if err := settings.Save(path, s); err != nil {
		return handleStoreError(err, log)
	}

	value, _ := s.Get(args[0])
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], value)
	return nil
}
