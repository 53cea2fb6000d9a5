//go:build windows

package orchestrator

import (
	"os"
	"os/exec"
)

// setupCommand configures Windows-specific command attributes.
// Windows doesn't support process groups in the same way as Unix,
// so no special configuration is needed.
func setupCommand(_ *exec.Cmd) {}

// killProcessGroup terminates the command's process on Windows systems.
// Child processes spawned by the scheduler are not tracked.
func killProcessGroup(cmd *exec.Cmd, _ os.Signal) error {
	if cmd != nil && cmd.Process != nil {
		return cmd.Process.Kill()
	}
	return nil
}
