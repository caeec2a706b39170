package backend

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// DetectLocal inspects a local path and reports which backend's metadata it
// carries. Used to cross-check the probe's answer against what is actually
// on disk; remote URLs and plain directories come back as not detected.
func DetectLocal(path string) (Type, bool) {
	// go-git understands worktrees, where .git is a redirect file rather
	// than a directory
	if _, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{EnableDotGitCommonDir: true}); err == nil {
		return Git, true
	}

	if isDir(filepath.Join(path, ".hg")) {
		return Mercurial, true
	}
	if isDir(filepath.Join(path, ".svn")) {
		return Subversion, true
	}
	// a server-side subversion repository has no .svn but carries the
	// repository layout itself
	if isDir(filepath.Join(path, "locks")) && fileExists(filepath.Join(path, "db", "uuid")) {
		return Subversion, true
	}

	return "", false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
