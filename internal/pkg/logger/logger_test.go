package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesToLogDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(LogOption{Format: "json", LogDir: dir, Level: "debug"}))

	Infof("[LoggerTest] hello %d", 42)
	Sync()

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[LoggerTest] hello 42")
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := Init(LogOption{Level: "verbose"})
	assert.Error(t, err)
}
