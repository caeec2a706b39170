package backend

import (
	"context"
	"fmt"

	"github.com/pepper-scm/diffcheck/pkg/executor"
)

// Enumerator lists a repository's revisions with the backend's native
// client. Results come back in log-listing order, no resort.
type Enumerator struct {
	Runner executor.CommandRunner
	Debugf func(format string, args ...any) // optional, reports dropped log lines
}

// Revisions runs the backend's log command and extracts the ordered
// revision id list. URL-addressed backends get the URL substituted into the
// command; checkout-addressed backends run in the repository's local path.
// An empty list is valid: repositories without revisions enumerate cleanly.
func (e *Enumerator) Revisions(ctx context.Context, desc Descriptor) ([]string, error) {
	spec, err := SpecFor(desc.Type)
	if err != nil {
		return nil, err
	}

	cmd := spec.LogCommand(desc.URL)
	req := executor.Request{Name: cmd.Name, Args: cmd.Args}
	if !spec.PassURL {
		req.Dir = desc.LocalPath()
	}

	res, err := e.Runner.Run(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}

	revs, dropped := spec.ExtractRevisions(res.Stdout)
	if dropped > 0 && e.Debugf != nil {
		e.Debugf("log parsing: skipped %d non-revision line(s)", dropped)
	}
	return revs, nil
}
