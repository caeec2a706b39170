// Package main provides diffcheck - cross-validation of a statistics tool's
// diffstat output against the native VCS clients.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/go-pkgz/notify"
	"github.com/jessevdk/go-flags"

	"github.com/pepper-scm/diffcheck/pkg/backend"
	"github.com/pepper-scm/diffcheck/pkg/candidate"
	"github.com/pepper-scm/diffcheck/pkg/checker"
	"github.com/pepper-scm/diffcheck/pkg/config"
	"github.com/pepper-scm/diffcheck/pkg/executor"
	"github.com/pepper-scm/diffcheck/pkg/progress"
	"github.com/pepper-scm/diffcheck/pkg/reference"
)

// opts holds all command-line options.
type opts struct {
	ArtifactDir string `long:"artifact-dir" description:"directory for mismatch artifacts (default: current directory)"`
	Debug       bool   `short:"d" long:"debug" description:"enable debug logging"`
	NoColor     bool   `long:"no-color" description:"disable color output"`
	Version     bool   `short:"v" long:"version" description:"print version and exit"`

	Repository string `positional-arg-name:"repository" description:"repository path or url"`
	Tool       string `positional-arg-name:"tool-path" description:"tool under test (optional, resolved from PATH if omitted)"`
}

var revision = "unknown"

func main() {
	var o opts
	parser := flags.NewParser(&o, flags.Default)
	parser.Usage = "[OPTIONS] repository [tool-path]"

	args, err := parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if o.Version {
		fmt.Printf("diffcheck %s\n", revision)
		os.Exit(0)
	}

	// handle positional arguments
	if len(args) > 0 {
		o.Repository = args[0]
	}
	if len(args) > 1 {
		o.Tool = args[1]
	}
	if o.Repository == "" {
		fmt.Fprintln(os.Stderr, "error: repository argument required")
		os.Exit(1)
	}

	// setup context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, o); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o opts) error {
	cfg, err := config.Load("") // empty string uses default location
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// create colors from config (all colors guaranteed populated via fallback)
	colors := progress.NewColors(progress.ColorConfig{
		Info:     cfg.Colors.Info,
		Warn:     cfg.Colors.Warn,
		Error:    cfg.Colors.Error,
		Debug:    cfg.Colors.Debug,
		Progress: cfg.Colors.Progress,
	})
	log := progress.NewLogger(progress.Config{Debug: o.Debug, NoColor: o.NoColor}, colors)

	toolCmd := resolveToolCommand(o, cfg)
	if _, err := exec.LookPath(toolCmd); err != nil {
		return fmt.Errorf("tool under test %q not found: %w", toolCmd, err)
	}
	diffstatCmd := cfg.DiffstatCommand
	if diffstatCmd == "" {
		diffstatCmd = reference.DefaultDiffstatCommand
	}
	if _, err := exec.LookPath(diffstatCmd); err != nil {
		return fmt.Errorf("diffstat formatter %q not found: %w", diffstatCmd, err)
	}

	runner := &executor.Exec{Debugf: log.Debugf}
	tool := &candidate.Tool{Command: toolCmd, Runner: runner}

	desc, err := tool.Probe(ctx, o.Repository)
	if err != nil {
		return fmt.Errorf("probe repository: %w", err)
	}
	log.Infof("repository: %s (%s)", desc.URL, desc.Type)

	// cross-check the probed type against on-disk metadata for local repos
	if detected, ok := backend.DetectLocal(desc.LocalPath()); ok && detected != desc.Type {
		log.Warnf("probe reports %s but %s looks like a %s repository", desc.Type, desc.LocalPath(), detected)
	}

	enum := &backend.Enumerator{Runner: runner, Debugf: log.Debugf}
	revs, err := enum.Revisions(ctx, desc)
	if err != nil {
		return fmt.Errorf("enumerate revisions: %w", err)
	}
	if len(revs) == 0 {
		log.Infof("no revisions to check")
		return nil
	}
	log.Infof("checking %d revision(s)", len(revs))

	artifactDir := o.ArtifactDir
	if artifactDir == "" {
		artifactDir = cfg.ArtifactDir
	}
	if artifactDir != "" {
		if err := os.MkdirAll(artifactDir, 0o750); err != nil {
			return fmt.Errorf("create artifact dir: %w", err)
		}
	}

	chk := &checker.Runner{
		Candidate: tool,
		Reference: &reference.Generator{DiffstatCommand: diffstatCmd, Runner: runner},
		Log:       log,
	}
	sum, err := chk.Check(ctx, checker.Config{Repository: o.Repository, Descriptor: desc, ArtifactDir: artifactDir}, revs)
	if err != nil {
		return fmt.Errorf("check revisions: %w", err)
	}

	// mismatches are findings, not failures: report and exit zero
	log.Infof("checked %d revision(s), %d mismatch(es), took %s", sum.Compared, sum.Mismatches, log.Elapsed())

	if cfg.NotifyDest != "" {
		msg := fmt.Sprintf("diffcheck %s: %d revision(s) checked, %d mismatch(es)", desc.URL, sum.Compared, sum.Mismatches)
		if err := notify.Send(ctx, nil, cfg.NotifyDest, msg); err != nil {
			log.Warnf("send notification: %v", err)
		}
	}

	return nil
}

// resolveToolCommand picks the tool binary: cli positional wins, then
// config, then the default resolved from PATH.
func resolveToolCommand(o opts, cfg *config.Config) string {
	if o.Tool != "" {
		return o.Tool
	}
	if cfg.ToolCommand != "" {
		return cfg.ToolCommand
	}
	return candidate.DefaultCommand
}
