package reference

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pepper-scm/diffcheck/pkg/backend"
	"github.com/pepper-scm/diffcheck/pkg/executor"
)

// runnerMock records requests and answers them in order. Stdin content is
// read eagerly so assertions can see what was piped.
type runnerMock struct {
	results []executor.Result
	errs    []error
	calls   []executor.Request
	stdins  []string
}

func (m *runnerMock) Run(_ context.Context, req executor.Request) (executor.Result, error) {
	i := len(m.calls)
	m.calls = append(m.calls, req)
	if req.Stdin != nil {
		data, _ := io.ReadAll(req.Stdin)
		m.stdins = append(m.stdins, string(data))
	} else {
		m.stdins = append(m.stdins, "")
	}
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	var res executor.Result
	if i < len(m.results) {
		res = m.results[i]
	}
	return res, err
}

func TestGenerator_Diffstat(t *testing.T) {
	t.Run("git pipes the diff into the formatter", func(t *testing.T) {
		runner := &runnerMock{results: []executor.Result{
			{Stdout: "diff --git a/foo.c b/foo.c\n+new line\n"},
			{Stdout: "INSERTED,DELETED,MODIFIED,FILENAME\n1,0,0,foo.c\n"},
		}}
		g := &Generator{Runner: runner}

		out, err := g.Diffstat(context.Background(), backend.Descriptor{Type: backend.Git, URL: "/work/proj"}, "deadbeef")
		require.NoError(t, err)
		assert.Equal(t, "INSERTED,DELETED,MODIFIED,FILENAME\n1,0,0,foo.c\n", out)

		require.Len(t, runner.calls, 2)
		assert.Equal(t, "git", runner.calls[0].Name)
		assert.Equal(t, []string{"diff-tree", "-U", "--no-renames", "--root", "deadbeef"}, runner.calls[0].Args)
		assert.Equal(t, "/work/proj", runner.calls[0].Dir)

		assert.Equal(t, "diffstat", runner.calls[1].Name)
		assert.Equal(t, []string{"-t", "-p1"}, runner.calls[1].Args)
		assert.Empty(t, runner.calls[1].Dir)
		assert.Equal(t, "diff --git a/foo.c b/foo.c\n+new line\n", runner.stdins[1])
	})

	t.Run("subversion passes the url and strips nothing", func(t *testing.T) {
		runner := &runnerMock{results: []executor.Result{{Stdout: "Index: foo.c\n"}, {}}}
		g := &Generator{Runner: runner}

		_, err := g.Diffstat(context.Background(), backend.Descriptor{Type: backend.Subversion, URL: "file:///srv/repo"}, "42")
		require.NoError(t, err)

		require.Len(t, runner.calls, 2)
		assert.Equal(t, []string{"diff", "-c", "42", "file:///srv/repo"}, runner.calls[0].Args)
		assert.Empty(t, runner.calls[0].Dir, "url-addressed backend needs no working directory")
		assert.Equal(t, []string{"-t", "-p0"}, runner.calls[1].Args)
	})

	t.Run("custom formatter command", func(t *testing.T) {
		runner := &runnerMock{results: []executor.Result{{}, {}}}
		g := &Generator{DiffstatCommand: "/usr/local/bin/diffstat", Runner: runner}

		_, err := g.Diffstat(context.Background(), backend.Descriptor{Type: backend.Mercurial, URL: "/work/hg"}, "abc")
		require.NoError(t, err)
		assert.Equal(t, "/usr/local/bin/diffstat", runner.calls[1].Name)
	})

	t.Run("failing native diff is a hard error", func(t *testing.T) {
		runner := &runnerMock{
			results: []executor.Result{{Stderr: "fatal: bad object"}},
			errs:    []error{&executor.ExitError{Name: "git", Code: 128, Stderr: "fatal: bad object"}},
		}
		g := &Generator{Runner: runner}

		_, err := g.Diffstat(context.Background(), backend.Descriptor{Type: backend.Git, URL: "/work/proj"}, "badbad")
		require.Error(t, err)
		var exitErr *executor.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 128, exitErr.Code)
		assert.Len(t, runner.calls, 1, "formatter never runs")
	})

	t.Run("failing formatter is a hard error", func(t *testing.T) {
		runner := &runnerMock{
			results: []executor.Result{{Stdout: "some diff"}, {}},
			errs:    []error{nil, &executor.ExitError{Name: "diffstat", Code: 2}},
		}
		g := &Generator{Runner: runner}

		_, err := g.Diffstat(context.Background(), backend.Descriptor{Type: backend.Git, URL: "/work/proj"}, "deadbeef")
		require.Error(t, err)
		var exitErr *executor.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("unsupported backend type", func(t *testing.T) {
		g := &Generator{Runner: &runnerMock{}}
		_, err := g.Diffstat(context.Background(), backend.Descriptor{Type: "bazaar"}, "1")
		assert.ErrorIs(t, err, backend.ErrUnsupportedBackend)
	})
}
