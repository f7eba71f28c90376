package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONTROLE_NOTAS_DATA_DIR", "")
	t.Setenv("NOTAS_BACKUP_DIR", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, filepath.Join("data", "backups"), cfg.BackupDir)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, filepath.Join("data", "notas.json"), cfg.Layout().InvoicesPath())
}

func TestLoad_FromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONTROLE_NOTAS_DATA_DIR", dir)
	t.Setenv("NOTAS_BACKUP_DIR", "/srv/backups")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "/srv/backups", cfg.BackupDir)
	assert.Equal(t, "json", cfg.GetLoggerConfig().Format)
}

func TestSetDataDir(t *testing.T) {
	t.Run("derived backup dir follows", func(t *testing.T) {
		cfg := &Config{DataDir: "data", BackupDir: filepath.Join("data", "backups")}
		cfg.SetDataDir("/tmp/ledger")
		assert.Equal(t, filepath.Join("/tmp/ledger", "backups"), cfg.BackupDir)
	})

	t.Run("explicit backup dir is kept", func(t *testing.T) {
		cfg := &Config{DataDir: "data", BackupDir: "/srv/backups"}
		cfg.SetDataDir("/tmp/ledger")
		assert.Equal(t, "/srv/backups", cfg.BackupDir)
	})
}
