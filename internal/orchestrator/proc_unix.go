//go:build !windows

package orchestrator

import (
	"os"
	"os/exec"
	"syscall"
)

// setupCommand configures Unix-specific command attributes. Subprocesses
// get their own process group so the scheduler's children can be signaled
// together.
func setupCommand(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}
}

// killProcessGroup signals the command's process group on Unix systems.
func killProcessGroup(cmd *exec.Cmd, sig os.Signal) error {
	if cmd != nil && cmd.Process != nil {
		return syscall.Kill(-cmd.Process.Pid, sig.(syscall.Signal))
	}
	return nil
}
