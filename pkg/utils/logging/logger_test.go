package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	chdir(t, t.TempDir())

	var console bytes.Buffer
	logger, err := InitLogger("test", Options{Console: &console})
	require.NoError(t, err)

	logger.Debug("hidden from console")
	logger.Info("shown everywhere")
	require.NoError(t, logger.Sync())

	assert.Contains(t, console.String(), "shown everywhere")
	assert.NotContains(t, console.String(), "hidden from console")

	files, err := filepath.Glob(filepath.Join(LogsDir, "test_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hidden from console"`)
	assert.Contains(t, string(data), `"env":"test"`)
}

func TestInitLogger_Verbose(t *testing.T) {
	chdir(t, t.TempDir())

	var console bytes.Buffer
	logger, err := InitLogger("dev", Options{Verbose: true, Console: &console})
	require.NoError(t, err)

	logger.Debug("debug line")
	assert.Contains(t, console.String(), "debug line")
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
