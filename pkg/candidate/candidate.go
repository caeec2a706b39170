// Package candidate drives the statistics tool under test. The tool is an
// opaque subprocess that executes a small Lua control script against a
// repository; this package generates the scripts and parses their output.
package candidate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pepper-scm/diffcheck/pkg/backend"
	"github.com/pepper-scm/diffcheck/pkg/executor"
)

// DefaultCommand is the tool binary resolved from PATH when no explicit
// path is given on the command line.
const DefaultCommand = "pepper"

// ErrProbeFailed indicates the initial type/url discovery run failed, which
// aborts the whole run.
var ErrProbeFailed = errors.New("repository probe failed")

// probeScript asks the target repository for its backend type and canonical
// url, printed as two lines.
const probeScript = `local repo = pepper.report.repository()
print(repo:type())
print(repo:url())
`

// diffstatScriptTpl prints one revision's diffstat in csv form: a header
// line, then added,removed,0,filename per file. The modified column is
// always literal 0, the tool does not report a modified-lines metric.
const diffstatScriptTpl = `local repo = pepper.report.repository()
local stat = repo:revision(%q):diffstat()
print("INSERTED,DELETED,MODIFIED,FILENAME")
for i, file in ipairs(stat:files()) do
	print(string.format("%%d,%%d,0,%%s", stat:lines_added(file), stat:lines_removed(file), file))
end
`

// Tool invokes the tool under test. Caching is always disabled so every run
// recomputes from the repository.
type Tool struct {
	Command string // binary name or path, empty means DefaultCommand
	Runner  executor.CommandRunner
}

func (t *Tool) command() string {
	if t.Command != "" {
		return t.Command
	}
	return DefaultCommand
}

// Probe discovers the repository's backend type and canonical url. The
// script must exit zero and print at least two lines; anything else wraps
// ErrProbeFailed. An unrecognized backend type surfaces
// backend.ErrUnsupportedBackend.
func (t *Tool) Probe(ctx context.Context, repo string) (backend.Descriptor, error) {
	res, err := t.runScript(ctx, probeScript, repo)
	if err != nil {
		return backend.Descriptor{}, fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}

	lines := strings.Split(strings.ReplaceAll(res.Stdout, "\r\n", "\n"), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) == "" || strings.TrimSpace(lines[1]) == "" {
		return backend.Descriptor{}, fmt.Errorf("%w: expected two output lines (type, url), got %q", ErrProbeFailed, res.Stdout)
	}

	typ, err := backend.ParseType(strings.TrimSpace(lines[0]))
	if err != nil {
		return backend.Descriptor{}, fmt.Errorf("probe: %w", err)
	}

	return backend.NewDescriptor(typ, strings.TrimSpace(lines[1])), nil
}

// Diffstat computes the candidate diffstat text for a single revision. The
// output is returned verbatim, byte comparison happens elsewhere.
func (t *Tool) Diffstat(ctx context.Context, repo, rev string) (string, error) {
	res, err := t.runScript(ctx, fmt.Sprintf(diffstatScriptTpl, rev), repo)
	if err != nil {
		return "", fmt.Errorf("candidate diffstat for %s: %w", rev, err)
	}
	return res.Stdout, nil
}

// runScript writes the script to a temp file and runs the tool on it. The
// tool's cli is <command> --no-cache <script> <repository>.
func (t *Tool) runScript(ctx context.Context, script, repo string) (executor.Result, error) {
	f, err := os.CreateTemp("", "diffcheck-*.lua")
	if err != nil {
		return executor.Result{}, fmt.Errorf("create script file: %w", err)
	}
	defer os.Remove(f.Name()) //nolint:errcheck // best effort cleanup

	if _, err := f.WriteString(script); err != nil {
		f.Close() //nolint:errcheck,gosec // write error takes precedence
		return executor.Result{}, fmt.Errorf("write script file: %w", err)
	}
	if err := f.Close(); err != nil {
		return executor.Result{}, fmt.Errorf("close script file: %w", err)
	}

	return t.Runner.Run(ctx, executor.Request{Name: t.command(), Args: []string{"--no-cache", f.Name(), repo}})
}
