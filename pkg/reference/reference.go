// Package reference produces the ground-truth diffstat: the backend's
// native diff for a revision, piped through the external diffstat utility
// in tabular mode.
package reference

import (
	"context"
	"fmt"
	"strings"

	"github.com/pepper-scm/diffcheck/pkg/backend"
	"github.com/pepper-scm/diffcheck/pkg/executor"
)

// DefaultDiffstatCommand is the formatter binary resolved from PATH unless
// overridden in the config.
const DefaultDiffstatCommand = "diffstat"

// Generator runs the two-stage reference pipeline. Both stages must exit
// zero; a non-zero exit anywhere is a hard failure, never treated as empty
// output.
type Generator struct {
	DiffstatCommand string // formatter binary, empty means DefaultDiffstatCommand
	Runner          executor.CommandRunner
}

func (g *Generator) command() string {
	if g.DiffstatCommand != "" {
		return g.DiffstatCommand
	}
	return DefaultDiffstatCommand
}

// Diffstat computes the reference diffstat text for a single revision. The
// native diff runs first, addressed per the backend's spec; its stdout is
// fed to the formatter with -t (tabular) and the backend's path strip
// level.
func (g *Generator) Diffstat(ctx context.Context, desc backend.Descriptor, rev string) (string, error) {
	spec, err := backend.SpecFor(desc.Type)
	if err != nil {
		return "", err
	}

	cmd := spec.DiffCommand(rev, desc.URL)
	req := executor.Request{Name: cmd.Name, Args: cmd.Args}
	if !spec.PassURL {
		req.Dir = desc.LocalPath()
	}

	diff, err := g.Runner.Run(ctx, req)
	if err != nil {
		return "", fmt.Errorf("native diff for %s: %w", rev, err)
	}

	stat, err := g.Runner.Run(ctx, executor.Request{
		Name:  g.command(),
		Args:  []string{"-t", fmt.Sprintf("-p%d", spec.StripLevel)},
		Stdin: strings.NewReader(diff.Stdout),
	})
	if err != nil {
		return "", fmt.Errorf("format diffstat for %s: %w", rev, err)
	}

	return stat.Stdout, nil
}
