package orchestrator

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
)

// Scheduler is a handle to the orchestrator's scheduler daemon running as
// a detached subprocess.
type Scheduler struct {
	mu      sync.Mutex
	cmd     *exec.Cmd
	stopped bool
}

// StartScheduler launches the scheduler daemon described by spec. The
// process runs in its own process group and is not bound to a context;
// it keeps running until Stop is called.
func StartScheduler(spec CmdSpec) (*Scheduler, error) {
	cmd := exec.Command(spec.Executable, spec.Args...) //nolint:gosec
	setupCommand(cmd)
	cmd.Env = spec.Env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Reap the process when it exits so it never lingers as a zombie.
	go func() {
		_ = cmd.Wait()
	}()

	return &Scheduler{cmd: cmd}, nil
}

// Stop signals the scheduler's process group to terminate. It does not
// wait for the shutdown to finish and never fails the verification run;
// a scheduler that ignores the signal is reported, not fatal.
// Stop is safe to call more than once.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true

	return killProcessGroup(s.cmd, syscall.SIGTERM)
}
