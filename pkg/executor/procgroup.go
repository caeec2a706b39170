//go:build !windows

package executor

import (
	"fmt"
	"log"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// termGracePeriod is the pause between SIGTERM and SIGKILL.
const termGracePeriod = 100 * time.Millisecond

// processGroupCleanup manages process group lifecycle for shutdown. When the
// cancel channel fires, the whole process tree is killed, not just the
// direct child - native clients like svn may spawn helpers of their own.
type processGroupCleanup struct {
	cmd  *exec.Cmd
	done chan struct{}
	once sync.Once
	err  error
}

// setupProcessGroup puts the command into its own process group so all
// descendants can be killed together. Must be called before cmd.Start().
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
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

// watchForCancel kills the process group when the cancel channel fires,
// or exits quietly once the process completes on its own.
func (pg *processGroupCleanup) watchForCancel(cancelCh <-chan struct{}) {
	select {
	case <-cancelCh:
		pg.killProcessGroup()
	case <-pg.done:
	}
}

// killProcessGroup sends SIGTERM to the group, waits briefly, then SIGKILLs
// whatever is still alive.
func (pg *processGroupCleanup) killProcessGroup() {
	process := pg.cmd.Process
	if process == nil {
		return
	}

	pid := process.Pid
	if pid <= 0 {
		log.Printf("[executor] invalid PID %d, skipping process group kill", pid)
		return
	}

	pgid := -pid

	if err := syscall.Kill(pgid, syscall.SIGTERM); err != nil && err != syscall.ESRCH {
		log.Printf("[executor] SIGTERM failed for pgid %d: %v", pgid, err)
	}

	time.Sleep(termGracePeriod)

	// always attempt the kill, even if SIGTERM failed
	if err := syscall.Kill(pgid, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		log.Printf("[executor] SIGKILL failed for pgid %d: %v", pgid, err)
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
