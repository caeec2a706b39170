package backend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLocal(t *testing.T) {
	t.Run("git repository", func(t *testing.T) {
		dir := t.TempDir()
		_, err := git.PlainInit(dir, false)
		require.NoError(t, err)

		typ, ok := DetectLocal(dir)
		require.True(t, ok)
		assert.Equal(t, Git, typ)
	})

	t.Run("mercurial checkout", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, ".hg"), 0o750))

		typ, ok := DetectLocal(dir)
		require.True(t, ok)
		assert.Equal(t, Mercurial, typ)
	})

	t.Run("subversion checkout", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, ".svn"), 0o750))

		typ, ok := DetectLocal(dir)
		require.True(t, ok)
		assert.Equal(t, Subversion, typ)
	})

	t.Run("bare subversion repository", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "locks"), 0o750))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "db"), 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "db", "uuid"), []byte("x\n"), 0o600))

		typ, ok := DetectLocal(dir)
		require.True(t, ok)
		assert.Equal(t, Subversion, typ)
	})

	t.Run("plain directory not detected", func(t *testing.T) {
		_, ok := DetectLocal(t.TempDir())
		assert.False(t, ok)
	})
}
