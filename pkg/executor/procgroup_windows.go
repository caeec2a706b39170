//go:build windows

package executor

import (
	"fmt"
	"os/exec"
	"sync"
)

// processGroupCleanup manages process lifecycle on Windows. Unix process
// groups are unavailable there, so only the direct child is killed.
type processGroupCleanup struct {
	cmd  *exec.Cmd
	done chan struct{}
	once sync.Once
	err  error
}

// setupProcessGroup is a no-op on Windows.
func setupProcessGroup(_ *exec.Cmd) {
}

// newProcessGroupCleanup creates a cleanup handler for an already started
// command. The caller must eventually call Wait.
func newProcessGroupCleanup(cmd *exec.Cmd, cancelCh <-chan struct{}) *processGroupCleanup {
	pg := &processGroupCleanup{
		cmd:  cmd,
		done: make(chan struct{}),
	}
	go pg.watchForCancel(cancelCh)
	return pg
}

// watchForCancel kills the process when the cancel channel fires.
func (pg *processGroupCleanup) watchForCancel(cancelCh <-chan struct{}) {
	select {
	case <-cancelCh:
		if process := pg.cmd.Process; process != nil {
			_ = process.Kill()
		}
	case <-pg.done:
	}
}

// Wait waits for the command to complete. Safe to call multiple times;
// subsequent calls return the cached result.
func (pg *processGroupCleanup) Wait() error {
	pg.once.Do(func() {
		pg.err = pg.cmd.Wait()
		close(pg.done)
		if pg.err != nil {
			pg.err = fmt.Errorf("command wait: %w", pg.err)
		}
	})
	return pg.err
}
