package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	t.Run("accepts the supported set", func(t *testing.T) {
		for _, s := range []string{"subversion", "git", "mercurial"} {
			typ, err := ParseType(s)
			require.NoError(t, err)
			assert.Equal(t, Type(s), typ)
		}
	})

	t.Run("rejects anything else", func(t *testing.T) {
		for _, s := range []string{"darcs", "cvs", "", "Git", "SVN"} {
			_, err := ParseType(s)
			require.Error(t, err, "type %q", s)
			assert.ErrorIs(t, err, ErrUnsupportedBackend)
		}
	})
}

func TestNewDescriptor(t *testing.T) {
	t.Run("subversion path becomes file URL", func(t *testing.T) {
		d := NewDescriptor(Subversion, "/srv/repo")
		assert.Equal(t, "file:///srv/repo", d.URL)
	})

	t.Run("subversion http URL passes through", func(t *testing.T) {
		d := NewDescriptor(Subversion, "http://host/repo")
		assert.Equal(t, "http://host/repo", d.URL)
	})

	t.Run("file URL not rewritten twice", func(t *testing.T) {
		d := NewDescriptor(Subversion, "file:///srv/repo")
		assert.Equal(t, "file:///srv/repo", d.URL)
	})

	t.Run("git and mercurial paths untouched", func(t *testing.T) {
		assert.Equal(t, "/work/proj", NewDescriptor(Git, "/work/proj").URL)
		assert.Equal(t, "/work/proj", NewDescriptor(Mercurial, "/work/proj").URL)
	})
}

func TestDescriptor_LocalPath(t *testing.T) {
	assert.Equal(t, "/srv/repo", Descriptor{Type: Subversion, URL: "file:///srv/repo"}.LocalPath())
	assert.Equal(t, "/work/proj", Descriptor{Type: Git, URL: "/work/proj"}.LocalPath())
}
