package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	path, err := ExpandPath("~/.config/specchat")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config/specchat"), path)

	path, err = ExpandPath("/tmp/x")
	require.NoError(t, err)
	require.Equal(t, "/tmp/x", path)
}

func TestCreateParentDirectory(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a", "b", "chats.db")
	require.NoError(t, CreateParentDirectory(path))

	ok, err := DirectoryExists(filepath.Join(root, "a", "b"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Exists(path)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, os.WriteFile(path, nil, 0644))
	ok, err = Exists(path)
	require.NoError(t, err)
	require.True(t, ok)
}
