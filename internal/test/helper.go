// Package test provides fixtures for exercising the harness against a
// stub orchestrator CLI instead of a real scheduler installation.
package test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/dagu-org/flowprobe/internal/config"
	"github.com/dagu-org/flowprobe/internal/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Helper wires a test to a stub orchestrator CLI. The stub logs every
// invocation and answers task-state queries from per-task state files,
// so tests can script a run without a scheduler installation.
type Helper struct {
	Context context.Context
	Config  *config.Config

	// CallLog is appended to by the stub, one invocation per line.
	CallLog string

	stateDir string
}

// Setup creates a stub orchestrator executable and a config pointing at
// it, with polling tuned for fast tests.
func Setup(t *testing.T) Helper {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub orchestrator is a shell script")
	}

	dir := filepath.Join(os.TempDir(), "flowprobe-test-"+uuid.New().String())
	require.NoError(t, os.MkdirAll(dir, 0750))
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	h := Helper{
		CallLog:  filepath.Join(dir, "calls.log"),
		stateDir: filepath.Join(dir, "states"),
	}
	require.NoError(t, os.MkdirAll(h.stateDir, 0750))

	stub := filepath.Join(dir, "stub-orchestrator")
	require.NoError(t, os.WriteFile(stub, []byte(h.stubScript()), 0700)) //nolint:gosec

	h.Config = &config.Config{
		Global: config.Global{WorkspaceDir: dir},
		Orchestrator: config.Orchestrator{
			Executable: stub,
			Verbs: config.Verbs{
				InitDB:    "initdb",
				Unpause:   "unpause",
				Trigger:   "trigger_dag",
				TaskState: "task_state",
				Scheduler: "scheduler",
			},
		},
		Tuning: config.Tuning{
			JobHeartbeatSec:           1,
			SchedulerHeartbeatSec:     1,
			RunDurationSec:            -1,
			MinFileProcessIntervalSec: 1,
			PrintStatsIntervalSec:     30,
		},
		Polling: config.Polling{
			Interval:     10 * time.Millisecond,
			StallTimeout: 100 * time.Millisecond,
		},
	}
	require.NoError(t, h.Config.Validate())

	h.Context = logger.WithLogger(context.Background(),
		logger.NewLogger(logger.WithDebug(), logger.WithWriter(os.Stderr)))

	return h
}

// SetState writes the state the stub reports for a task. Tasks without a
// state file report "none".
func (h Helper) SetState(t *testing.T, task, state string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(h.stateDir, task), []byte(state+"\n"), 0600))
}

// stubScript mimics the orchestrator CLI: task_state prints log noise
// before the state, scheduler blocks until signaled, and every other verb
// succeeds quietly.
func (h Helper) stubScript() string {
	return fmt.Sprintf(`#!/bin/sh
echo "$@" >> %q
case "$1" in
task_state)
	task="$3"
	echo "[stub] INFO - filling up the bag"
	if [ -f %q/"$task" ]; then
		cat %q/"$task"
	else
		echo none
	fi
	;;
scheduler)
	sleep 600
	;;
esac
exit 0
`, h.CallLog, h.stateDir, h.stateDir)
}
