package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notas/internal/config"
)

// resetFlags puts every flag of the command tree back to its default so
// that consecutive executions in one test do not leak values.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	appConfig = &config.Config{
		DataDir:   filepath.Join(dir, "data"),
		BackupDir: filepath.Join(dir, "backups"),
		ExportDir: dir,
	}
	t.Cleanup(func() { resetFlags(rootCmd) })
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_InvoiceLifecycle(t *testing.T) {
	dir := setupCLI(t)

	_, err := run(t, "customer", "add", "--name", "Padaria Central", "--cnpj", "12345678000195")
	require.NoError(t, err)

	out, err := run(t, "invoice", "add",
		"--number", "NF-1", "--date", "01/05/2024", "--customer", "padaria central",
		"--gross", "1.000,00", "--tax", "150")
	require.NoError(t, err)
	assert.Contains(t, out, "Nota #1 adicionada")

	_, err = run(t, "invoice", "add",
		"--number", "NF-2", "--date", "2024-05-02", "--client", "ACME",
		"--gross", "100", "--tax", "15", "--net", "50")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid net_amount")

	out, err = run(t, "invoice", "list", "--json")
	require.NoError(t, err)
	var listed []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Padaria Central", listed[0]["client_name"])
	assert.Equal(t, float64(1), listed[0]["customer_id"])
	assert.Equal(t, "850.00", listed[0]["net_amount"])

	out, err = run(t, "invoice", "edit", "1", "--status", "issued")
	require.NoError(t, err)
	assert.Contains(t, out, "atualizada")

	out, err = run(t, "report", "--group-by", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "R$ 1.000,00")
	assert.Contains(t, out, "issued")

	out, err = run(t, "export", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "exportada")
	matches, err := filepath.Glob(filepath.Join(dir, "notas_todas_*.csv"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	_, err = run(t, "invoice", "show", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCLI_BackupAndRestore(t *testing.T) {
	dir := setupCLI(t)

	_, err := run(t, "invoice", "add",
		"--number", "NF-1", "--date", "2024-05-01", "--client", "ACME", "--gross", "300", "--tax", "30")
	require.NoError(t, err)

	archive := filepath.Join(dir, "copia.tar.gz")
	out, err := run(t, "backup", archive)
	require.NoError(t, err)
	assert.Contains(t, out, "Backup criado")

	out, err = run(t, "invoice", "delete-all", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "1 nota(s)")

	out, err = run(t, "restore", archive, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Backup restaurado")

	out, err = run(t, "invoice", "list", "--json")
	require.NoError(t, err)
	var listed []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Len(t, listed, 1)

	out, err = run(t, "backup", "list", "--json")
	require.NoError(t, err)
	var manifests []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &manifests))
	require.Len(t, manifests, 1)
	assert.Equal(t, "pre_restore", manifests[0]["reason"])
}

func TestCLI_RestoreWithoutConfirmationCancels(t *testing.T) {
	dir := setupCLI(t)

	archive := filepath.Join(dir, "vazio.tar.gz")
	_, err := run(t, "backup", archive)
	require.NoError(t, err)

	out, err := run(t, "restore", archive)
	require.NoError(t, err)
	assert.Contains(t, out, "cancelada")

	entries, err := os.ReadDir(appConfig.BackupDir)
	if err == nil {
		assert.Empty(t, entries)
	}
}

func TestCLI_ConfigSet(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "config", "set", "window_size", "1024x768")
	require.NoError(t, err)
	assert.Contains(t, out, "window_size = 1024x768")

	out, err = run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "1024x768")
	assert.Contains(t, out, "darkly")

	_, err = run(t, "config", "set", "mode", "sepia")
	require.Error(t, err)
}
