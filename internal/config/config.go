package config

import (
	"fmt"
	"os"
	"path/filepath"

	"notas/internal/logger"
	"notas/internal/store"
)

type Config struct {
	// Storage Configuration
	DataDir   string // directory holding notas.json, cadastros.json and config.json
	BackupDir string // where backup archives are written by default
	ExportDir string // where CSV exports go when no destination is given

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		DataDir:       getEnv("CONTROLE_NOTAS_DATA_DIR", "data"),
		BackupDir:     getEnv("NOTAS_BACKUP_DIR", ""),
		ExportDir:     getEnv("NOTAS_EXPORT_DIR", "."),
		LogLevel:      getEnv("LOG_LEVEL", "warn"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stderr"),
	}

	config.SetDataDir(config.DataDir)

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// SetDataDir points the config at another store directory. A backup
// directory that was derived from the old data directory follows it.
func (c *Config) SetDataDir(dir string) {
	derived := c.BackupDir == "" || c.BackupDir == filepath.Join(c.DataDir, "backups")
	c.DataDir = dir
	if derived {
		c.BackupDir = filepath.Join(dir, "backups")
	}
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("CONTROLE_NOTAS_DATA_DIR must not be empty")
	}
	if c.BackupDir == "" {
		return fmt.Errorf("NOTAS_BACKUP_DIR must not be empty")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// Layout returns the store file layout for the configured data directory.
func (c *Config) Layout() store.Layout {
	return store.Layout{DataDir: c.DataDir}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
