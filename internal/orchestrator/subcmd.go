// Package orchestrator drives the workflow scheduler under test through
// its command-line interface. All interaction happens via subprocesses;
// the orchestrator's own APIs are never imported.
package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dagu-org/flowprobe/internal/config"
)

// CmdSpec describes one orchestrator CLI invocation.
type CmdSpec struct {
	Executable string
	Args       []string
	Env        []string
}

// SubCmdBuilder centralizes CLI command argument construction.
// Every spec it produces carries the provisioned environment, never the
// harness process environment.
type SubCmdBuilder struct {
	executable string
	verbs      config.Verbs
	env        []string
}

// NewSubCmdBuilder returns a builder for the configured executable.
// env is the full environment for every subprocess, typically produced
// by workspace provisioning.
func NewSubCmdBuilder(cfg *config.Config, env []string) *SubCmdBuilder {
	return &SubCmdBuilder{
		executable: cfg.Orchestrator.Executable,
		verbs:      cfg.Orchestrator.Verbs,
		env:        env,
	}
}

// InitDB creates a metadata database initialization command spec.
func (b *SubCmdBuilder) InitDB() CmdSpec {
	return b.spec(b.verbs.InitDB)
}

// Unpause creates a command spec that enables scheduling for a workflow.
func (b *SubCmdBuilder) Unpause(workflow string) CmdSpec {
	return b.spec(b.verbs.Unpause, workflow)
}

// Trigger creates a command spec that requests one run of a workflow.
func (b *SubCmdBuilder) Trigger(workflow, runID, executionDate string) CmdSpec {
	return b.spec(b.verbs.Trigger, workflow, "-r", runID, "-e", executionDate)
}

// TaskState creates a command spec that queries the state of one task
// instance within a run.
func (b *SubCmdBuilder) TaskState(workflow, task, executionDate string) CmdSpec {
	return b.spec(b.verbs.TaskState, workflow, task, executionDate)
}

// Scheduler creates a command spec for the long-running scheduler daemon.
func (b *SubCmdBuilder) Scheduler() CmdSpec {
	return b.spec(b.verbs.Scheduler)
}

func (b *SubCmdBuilder) spec(verb string, args ...string) CmdSpec {
	return CmdSpec{
		Executable: b.executable,
		Args:       append([]string{verb}, args...),
		Env:        b.env,
	}
}

// Run executes the command and waits for it to complete, returning the
// captured stdout. If the command fails, stdout/stderr output is included
// in the error for debugging.
func Run(ctx context.Context, spec CmdSpec) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, spec.Executable, spec.Args...) //nolint:gosec
	setupCommand(cmd)
	cmd.Env = spec.Env
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		parts := []string{fmt.Sprintf("command %s %s failed: %v",
			spec.Executable, strings.Join(spec.Args, " "), err)}
		if stdout.Len() > 0 {
			parts = append(parts, fmt.Sprintf("stdout: %s", strings.TrimSpace(stdout.String())))
		}
		if stderr.Len() > 0 {
			parts = append(parts, fmt.Sprintf("stderr: %s", strings.TrimSpace(stderr.String())))
		}
		return stdout.String(), fmt.Errorf("%s", strings.Join(parts, "\n"))
	}

	return stdout.String(), nil
}

// ParseTaskState extracts the task state from a task-state query's stdout.
// The CLI prints log noise before the result, so only the final
// whitespace-separated token counts. Nothing else about the output format
// is assumed.
func ParseTaskState(output string) (string, error) {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return "", fmt.Errorf("task state output contained no tokens")
	}
	return strings.ToLower(fields[len(fields)-1]), nil
}
