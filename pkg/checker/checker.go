// Package checker runs the per-revision comparison loop: candidate diffstat
// against reference diffstat, byte for byte, with mismatch artifacts
// persisted for offline inspection.
package checker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/pepper-scm/diffcheck/pkg/backend"
)

// CandidateSource computes a revision's diffstat with the tool under test.
type CandidateSource interface {
	Diffstat(ctx context.Context, repo, rev string) (string, error)
}

// ReferenceSource computes a revision's diffstat from the native client.
type ReferenceSource interface {
	Diffstat(ctx context.Context, desc backend.Descriptor, rev string) (string, error)
}

// Logger receives progress updates and diagnostics during a run.
type Logger interface {
	Progress(done, total int)
	Done()
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

// Config describes one checking run.
type Config struct {
	Repository  string             // repository argument passed to the tool under test
	Descriptor  backend.Descriptor // probed type and canonical url
	ArtifactDir string             // mismatch artifact directory, empty means the working directory
}

// Result is one revision's comparison outcome.
type Result struct {
	Revision  string
	Candidate string
	Reference string
	Matches   bool
}

// Summary aggregates a completed run.
type Summary struct {
	Compared   int
	Mismatches int
}

// Runner drives the sequential comparison loop. Comparisons are strictly
// ordered and independent; a mismatch never stops the run, a subprocess
// failure does.
type Runner struct {
	Candidate CandidateSource
	Reference ReferenceSource
	Log       Logger
}

// Check compares every revision in order. Both diffstat texts are treated
// as opaque bytes: any difference, including pure reordering or whitespace,
// counts as a mismatch. Artifacts and a warning are produced per mismatch;
// the progress indicator advances after every revision either way.
func (r *Runner) Check(ctx context.Context, cfg Config, revs []string) (Summary, error) {
	var sum Summary
	defer r.Log.Done()

	for i, rev := range revs {
		res, err := r.compare(ctx, cfg, rev)
		if err != nil {
			return sum, err
		}
		sum.Compared++

		if !res.Matches {
			sum.Mismatches++
			if err := r.report(cfg, res); err != nil {
				return sum, err
			}
		}
		r.Log.Progress(i+1, len(revs))
	}

	return sum, nil
}

func (r *Runner) compare(ctx context.Context, cfg Config, rev string) (Result, error) {
	candidate, err := r.Candidate.Diffstat(ctx, cfg.Repository, rev)
	if err != nil {
		return Result{}, err
	}
	reference, err := r.Reference.Diffstat(ctx, cfg.Descriptor, rev)
	if err != nil {
		return Result{}, err
	}
	return Result{Revision: rev, Candidate: candidate, Reference: reference, Matches: candidate == reference}, nil
}

// report persists both sides of a divergent comparison and warns. The debug
// trace carries a unified diff of the two texts so the divergence is
// visible without opening the files.
func (r *Runner) report(cfg Config, res Result) error {
	candidatePath := filepath.Join(cfg.ArtifactDir, "candidate_"+res.Revision)
	referencePath := filepath.Join(cfg.ArtifactDir, "reference_"+res.Revision)

	if err := os.WriteFile(candidatePath, []byte(res.Candidate), 0o600); err != nil {
		return fmt.Errorf("write candidate artifact: %w", err)
	}
	if err := os.WriteFile(referencePath, []byte(res.Reference), 0o600); err != nil {
		return fmt.Errorf("write reference artifact: %w", err)
	}

	r.Log.Warnf("diffstat mismatch for revision %s, see %s and %s", res.Revision, candidatePath, referencePath)

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(res.Candidate),
		B:        difflib.SplitLines(res.Reference),
		FromFile: "candidate",
		ToFile:   "reference",
		Context:  3,
	})
	if err == nil && diff != "" {
		r.Log.Debugf("revision %s divergence:\n%s", res.Revision, diff)
	}

	return nil
}
