package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_FileOutput(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	path := filepath.Join(t.TempDir(), "logs", "notas.log")
	require.NoError(t, Setup(LogConfig{Level: "info", Format: "json", Output: path}))

	log := WithComponent("test")
	log.Info().Str("key", "value").Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestSetup_InvalidLevel(t *testing.T) {
	err := Setup(LogConfig{Level: "loud", Output: "stderr"})
	assert.Error(t, err)
}
