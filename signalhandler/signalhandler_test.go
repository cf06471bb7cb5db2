package signalhandler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratchFileCleanup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scratch.tiff")
	require.NoError(t, os.WriteFile(path, []byte("temp"), 0644))

	RegisterScratchFile(path)
	removeScratchFiles()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestUnregisteredScratchFileSurvives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keep.tiff")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0644))

	RegisterScratchFile(path)
	UnregisterScratchFile(path)
	removeScratchFiles()

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestGetOptimalProcs(t *testing.T) {
	assert.GreaterOrEqual(t, GetOptimalProcs(), 1)
}
