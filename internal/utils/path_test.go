package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	_, err := ResolvePath("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	abs, err := ResolvePath("./state")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	got, err := ResolvePath("~/.devicesync")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".devicesync"), got)
}

func TestEnsureParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "state.db")
	require.NoError(t, EnsureParent(path))
	assert.DirExists(t, filepath.Dir(path))

	// existing directories are fine
	assert.NoError(t, EnsureParent(path))
}
