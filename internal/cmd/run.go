package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dagu-org/flowprobe/internal/fileutil"
	"github.com/dagu-org/flowprobe/internal/scenario"
	"github.com/dagu-org/flowprobe/internal/verifier"
	"github.com/spf13/cobra"
)

// Run returns the command that executes one verification scenario.
func Run() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "run [flags] /path/to/scenario.yaml",
			Short: "Run a verification scenario against the orchestrator",
			Long: `Provision an isolated orchestrator home, start the scheduler daemon,
trigger the scenario's workflow, and poll task states until every task
succeeds, a task fails, or no task makes progress within the budget.`,
			Args: cobra.ExactArgs(1),
		},
		[]commandLineFlag{intervalFlag, stallTimeoutFlag, workspaceFlag},
		runVerification,
	)
}

func runVerification(ctx *Context, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	if err := applyOverrides(ctx); err != nil {
		return err
	}

	// Stop cleanly on Ctrl-C; the deferred teardown still runs.
	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return verifier.New(ctx.Config, sc).Run(runCtx)
}

// applyOverrides folds command line flags into the loaded configuration.
func applyOverrides(ctx *Context) error {
	cfg := ctx.Config

	if v, err := ctx.StringParam("interval"); err == nil && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", v, err)
		}
		cfg.Polling.Interval = d
	}
	if v, err := ctx.StringParam("stall-timeout"); err == nil && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid stall-timeout %q: %w", v, err)
		}
		cfg.Polling.StallTimeout = d
	}
	if v, err := ctx.StringParam("workspace"); err == nil && v != "" {
		dir, err := fileutil.ResolvePath(v)
		if err != nil {
			return fmt.Errorf("invalid workspace %q: %w", v, err)
		}
		cfg.Global.WorkspaceDir = dir
	}

	return cfg.Validate()
}
