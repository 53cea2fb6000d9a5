package orchestrator

import (
	"context"
	"fmt"

	"github.com/dagu-org/flowprobe/internal/logger"
)

// Client performs the orchestrator operations the harness needs,
// delegating every one to the CLI.
type Client struct {
	builder *SubCmdBuilder
}

// NewClient returns a client that invokes commands built by b.
func NewClient(b *SubCmdBuilder) *Client {
	return &Client{builder: b}
}

// InitDB initializes the orchestrator's metadata database.
func (c *Client) InitDB(ctx context.Context) error {
	logger.Info(ctx, "Initializing orchestrator metadata database")
	if _, err := Run(ctx, c.builder.InitDB()); err != nil {
		return fmt.Errorf("failed to initialize metadata database: %w", err)
	}
	return nil
}

// Unpause enables scheduling for the workflow.
func (c *Client) Unpause(ctx context.Context, workflow string) error {
	logger.Info(ctx, "Unpausing workflow", "workflow", workflow)
	if _, err := Run(ctx, c.builder.Unpause(workflow)); err != nil {
		return fmt.Errorf("failed to unpause workflow %s: %w", workflow, err)
	}
	return nil
}

// Trigger requests one run of the workflow.
func (c *Client) Trigger(ctx context.Context, workflow, runID, executionDate string) error {
	logger.Info(ctx, "Triggering workflow run",
		"workflow", workflow, "runId", runID, "executionDate", executionDate)
	if _, err := Run(ctx, c.builder.Trigger(workflow, runID, executionDate)); err != nil {
		return fmt.Errorf("failed to trigger workflow %s: %w", workflow, err)
	}
	return nil
}

// TaskState queries and parses the state of one task instance.
func (c *Client) TaskState(ctx context.Context, workflow, task, executionDate string) (string, error) {
	output, err := Run(ctx, c.builder.TaskState(workflow, task, executionDate))
	if err != nil {
		return "", fmt.Errorf("failed to query state of task %s: %w", task, err)
	}
	state, err := ParseTaskState(output)
	if err != nil {
		return "", fmt.Errorf("failed to parse state of task %s: %w", task, err)
	}
	logger.Debug(ctx, "Queried task state", "task", task, "state", state)
	return state, nil
}

// StartScheduler launches the scheduler daemon.
func (c *Client) StartScheduler(ctx context.Context) (*Scheduler, error) {
	logger.Info(ctx, "Starting scheduler daemon")
	return StartScheduler(c.builder.Scheduler())
}
