package backend

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	executorpkg "github.com/pepper-scm/diffcheck/pkg/executor"
)

// setupExternalTestRepo creates a temp git repo with the git CLI for tests
// that exercise the real native client.
func setupExternalTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	runGit(t, dir, "init")
	runGit(t, dir, "checkout", "-B", "master")
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "test")
	runGit(t, dir, "config", "commit.gpgsign", "false")

	for i, content := range []string{"one\n", "one\ntwo\n", "one\ntwo\nthree\n"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte(content), 0o600))
		runGit(t, dir, "add", "file.txt")
		runGit(t, dir, "commit", "-m", "commit "+string(rune('0'+i)))
	}

	return dir
}

// runGit runs a git command in the given directory and fails the test on error.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(out))
	return string(out)
}

func TestEnumerator_Revisions_GitExternal(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := setupExternalTestRepo(t)
	e := &Enumerator{Runner: &executorpkg.Exec{}}

	revs, err := e.Revisions(context.Background(), Descriptor{Type: Git, URL: dir})
	require.NoError(t, err)
	require.Len(t, revs, 3, "three commits expected")

	hash := regexp.MustCompile(`^[0-9a-f]{40}$`)
	for _, rev := range revs {
		assert.Regexp(t, hash, rev)
	}

	// re-running produces the identical ordered list
	again, err := e.Revisions(context.Background(), Descriptor{Type: Git, URL: dir})
	require.NoError(t, err)
	assert.Equal(t, revs, again)
}
