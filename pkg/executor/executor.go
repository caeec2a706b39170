// Package executor runs external commands with captured output and explicit
// working directories.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Request describes a single command invocation.
type Request struct {
	Name  string
	Args  []string
	Dir   string    // working directory, empty inherits the caller's
	Stdin io.Reader // optional stdin, nil means no input
}

// Result holds the fully drained output of a completed command.
type Result struct {
	Stdout string
	Stderr string
}

// CommandRunner abstracts command execution for testing.
type CommandRunner interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// ExitError reports a command that started but exited non-zero. The stderr
// capture is carried along so callers can surface the client's own message.
type ExitError struct {
	Name   string
	Args   []string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Name, e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Exec is the default CommandRunner using os/exec. The zero value is ready
// to use; set Debugf to trace every invocation.
type Exec struct {
	Debugf func(format string, args ...any)
}

// Run starts the command, drains stdout and stderr completely and waits for
// exit. A non-zero exit status becomes an *ExitError with the forwarded
// code. Context cancellation kills the entire process group and returns the
// context's error.
func (x *Exec) Run(ctx context.Context, req Request) (Result, error) {
	// check context before starting to avoid spawning a process that will
	// be immediately killed
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context already canceled: %w", err)
	}

	// use exec.Command (not CommandContext) because cancellation must kill
	// the entire process group, not just the direct child
	cmd := exec.Command(req.Name, req.Args...) //nolint:noctx // cancellation handled via process group kill
	cmd.Dir = req.Dir
	if req.Stdin != nil {
		cmd.Stdin = req.Stdin
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	setupProcessGroup(cmd)

	if x.Debugf != nil {
		if req.Dir != "" {
			x.Debugf("exec: %s %s (in %s)", req.Name, strings.Join(req.Args, " "), req.Dir)
		} else {
			x.Debugf("exec: %s %s", req.Name, strings.Join(req.Args, " "))
		}
	}

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start %s: %w", req.Name, err)
	}

	cleanup := newProcessGroupCleanup(cmd, ctx.Done())
	waitErr := cleanup.Wait()

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if waitErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%s interrupted: %w", req.Name, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return res, &ExitError{Name: req.Name, Args: req.Args, Code: exitErr.ExitCode(), Stderr: res.Stderr}
		}
		return res, fmt.Errorf("run %s: %w", req.Name, waitErr)
	}

	return res, nil
}
