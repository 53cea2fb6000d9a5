// Package verifier runs one end-to-end verification: provision a home,
// prepare the orchestrator, trigger the workflow, and poll task states
// until the run completes or fails.
package verifier

import (
	"context"
	"fmt"

	"github.com/dagu-org/flowprobe/internal/config"
	"github.com/dagu-org/flowprobe/internal/logger"
	"github.com/dagu-org/flowprobe/internal/orchestrator"
	"github.com/dagu-org/flowprobe/internal/poller"
	"github.com/dagu-org/flowprobe/internal/scenario"
	"github.com/dagu-org/flowprobe/internal/workspace"
)

// Verifier drives one scenario against the configured orchestrator.
type Verifier struct {
	cfg *config.Config
	sc  *scenario.Scenario

	// artifactCheck runs for each task that completes. Left nil, task
	// completion alone counts as success.
	artifactCheck poller.SuccessFunc
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithArtifactCheck sets a per-task check invoked after the task reaches
// the terminal state. A check failure fails the whole run.
func WithArtifactCheck(fn poller.SuccessFunc) Option {
	return func(v *Verifier) { v.artifactCheck = fn }
}

// New returns a verifier for the scenario.
func New(cfg *config.Config, sc *scenario.Scenario, opts ...Option) *Verifier {
	v := &Verifier{cfg: cfg, sc: sc}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run executes the verification. It blocks until every task in the
// scenario's roster completes, a task fails, the run stalls, or ctx is
// canceled. The provisioned home and the scheduler daemon are torn down
// before Run returns.
func (v *Verifier) Run(ctx context.Context) error {
	logger.Info(ctx, "Starting verification",
		"workflow", v.sc.Workflow, "runId", v.sc.RunID, "tasks", len(v.sc.Tasks))

	ws, err := workspace.Provision(ctx, v.cfg, v.sc)
	if err != nil {
		return fmt.Errorf("failed to provision workspace: %w", err)
	}
	defer ws.Cleanup(ctx)

	client := orchestrator.NewClient(orchestrator.NewSubCmdBuilder(v.cfg, ws.Env()))

	if err := client.InitDB(ctx); err != nil {
		return err
	}
	if err := client.Unpause(ctx, v.sc.Workflow); err != nil {
		return err
	}

	sched, err := client.StartScheduler(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			logger.Warn(ctx, "Failed to stop scheduler", "err", err)
		}
	}()

	if err := client.Trigger(ctx, v.sc.Workflow, v.sc.RunID, v.sc.ExecutionDate); err != nil {
		return err
	}

	state := func(ctx context.Context, task string) (poller.TaskState, error) {
		s, err := client.TaskState(ctx, v.sc.Workflow, task, v.sc.ExecutionDate)
		if err != nil {
			return "", err
		}
		return poller.TaskState(s), nil
	}

	opts := []poller.Option{}
	if v.artifactCheck != nil {
		opts = append(opts, poller.WithOnSuccess(v.artifactCheck))
	}

	if err := poller.New(v.sc.Tasks, state, v.cfg.Polling, opts...).Wait(ctx); err != nil {
		return err
	}

	logger.Info(ctx, "Verification passed", "workflow", v.sc.Workflow, "runId", v.sc.RunID)
	return nil
}
