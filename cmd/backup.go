package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"notas/internal/backup"
	"notas/internal/logger"
)

var backupCmd = &cobra.Command{
	Use:   "backup [destination]",
	Short: "Write a compressed backup of the data directory",
	Long: `Write a gzip-compressed tar archive holding a manifest and the invoice,
customer and settings files exactly as stored.

Without a destination the archive goes to $NOTAS_BACKUP_DIR (default:
<data-dir>/backups) as backup_notas_YYYYMMDD_HHMMSS.tar.gz. A directory
destination receives the same generated name, with _2, _3, ... added when that
name is taken. Any other path is used as is and must not exist yet.`,
	Example: `  notas backup
  notas backup /media/pendrive
  notas backup list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackup,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the archives in the backup directory, newest first",
	Args:  cobra.NoArgs,
	RunE:  runBackupList,
}

var backupInspectCmd = &cobra.Command{
	Use:   "inspect <archive>",
	Short: "Verify an archive without restoring it",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupInspect,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <archive>",
	Short: "Replace the data directory with the content of a backup",
	Long: `Replace the invoice and customer files (and the settings file, when
the archive has one) with the content of a backup archive.

The archive is verified first: manifest, schema version, checksums and the
format of every file. Nothing is changed when verification fails. Before any
file is replaced, the current data is saved as pre_restore_YYYYMMDD_HHMMSS.tar.gz
in the backup directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(backupCmd, restoreCmd)
	backupCmd.AddCommand(backupListCmd, backupInspectCmd)

	restoreCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

func printManifest(cmd *cobra.Command, m *backup.Manifest) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Arquivo:  %s\n", m.Path)
	fmt.Fprintf(out, "ID:       %s\n", m.ID)
	fmt.Fprintf(out, "Criado:   %s (%s)\n", m.CreatedAt.Local().Format("02/01/2006 15:04:05"), humanize.Time(m.CreatedAt))
	fmt.Fprintf(out, "Motivo:   %s\n", m.Reason)
	for _, f := range m.Files {
		fmt.Fprintf(out, "  %-16s %10s  sha256:%s\n", f.Name, humanize.Bytes(uint64(f.Size)), f.SHA256[:12])
	}
}

func runBackup(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("backup")

	destination := ""
	if len(args) == 1 {
		destination = args[0]
	}

	manifest, err := backupManager().Backup(destination)
	if err != nil {
		return handleStoreError(err, log)
	}

	if jsonOutput {
		return printJSON(cmd, manifest)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Backup criado: %s (%s de dados)\n",
		manifest.Path, humanize.Bytes(uint64(manifest.TotalSize())))
	return nil
}

func runBackupList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("backup")
	manager := backupManager()

	manifests, err := manager.List()
	if err != nil {
		return handleStoreError(err, log)
	}

	if jsonOutput {
		return printJSON(cmd, manifests)
	}

	out := cmd.OutOrStdout()
	if len(manifests) == 0 {
		fmt.Fprintf(out, "Nenhum backup em %s.\n", manager.BackupDir())
		return nil
	}

	fmt.Fprintf(out, "%-44s  %-19s  %-12s  %10s\n", "Arquivo", "Criado", "Motivo", "Tamanho")
	fmt.Fprintln(out, strings.Repeat("-", 92))
	for _, m := range manifests {
		fmt.Fprintf(out, "%-44s  %-19s  %-12s  %10s\n",
			filepath.Base(m.Path),
			m.CreatedAt.Local().Format("02/01/2006 15:04:05"),
			m.Reason,
			humanize.Bytes(uint64(m.TotalSize())))
	}
	return nil
}

func runBackupInspect(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("backup")

	manifest, err := backupManager().Inspect(args[0])
	if err != nil {
		return handleStoreError(err, log)
	}

	if jsonOutput {
		return printJSON(cmd, manifest)
	}
	printManifest(cmd, manifest)
	fmt.Fprintln(cmd.OutOrStdout(), "Arquivo válido.")
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("restore")
	manager := backupManager()
	archive := args[0]

	manifest, err := manager.Inspect(archive)
	if err != nil {
		return handleStoreError(err, log)
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		if !jsonOutput {
			printManifest(cmd, manifest)
		}
		if !confirm(cmd, "Substituir os dados atuais por este backup?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Operação cancelada.")
			return nil
		}
	}

	result, err := manager.Restore(archive)
	if err != nil {
		return handleStoreError(err, log)
	}

	if jsonOutput {
		return printJSON(cmd, result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Backup restaurado de %s.\n", result.Manifest.Path)
	fmt.Fprintf(cmd.OutOrStdout(), "Os dados anteriores foram salvos em %s.\n", result.Safeguard.Path)
	return nil
}
