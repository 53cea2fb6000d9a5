package poller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dagu-org/flowprobe/internal/backoff"
	"github.com/dagu-org/flowprobe/internal/config"
	"github.com/dagu-org/flowprobe/internal/logger"
)

// StateFunc queries the current state of one task instance.
type StateFunc func(ctx context.Context, task string) (TaskState, error)

// SuccessFunc runs once for each task that reaches the terminal state,
// before the task leaves the pending set.
type SuccessFunc func(ctx context.Context, task string) error

// Poller polls task states until the run completes, fails, or stalls.
type Poller struct {
	roster    []string
	state     StateFunc
	polling   config.Polling
	onSuccess SuccessFunc
	sleep     func(ctx context.Context, d time.Duration) error
}

// Option configures a Poller.
type Option func(*Poller)

// WithOnSuccess sets a hook invoked for each task that completes.
func WithOnSuccess(fn SuccessFunc) Option {
	return func(p *Poller) { p.onSuccess = fn }
}

// WithSleep replaces the interval sleep. Tests use this to run the loop
// without waiting on a real clock.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Poller) { p.sleep = fn }
}

// New returns a poller over the given task roster.
func New(roster []string, state StateFunc, polling config.Polling, opts ...Option) *Poller {
	p := &Poller{
		roster:  roster,
		state:   state,
		polling: polling,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait blocks until every task in the roster completes. It returns an
// error when a task reaches a state that is neither terminal nor pending,
// when a state query fails, or when no task completes within the stall
// budget. The budget resets every time the pending set shrinks.
func (p *Poller) Wait(ctx context.Context) error {
	pending := NewPendingSet(p.roster)

	// One retry per polling pass; the retry count resets on progress, so
	// the budget bounds the no-progress window, not the whole run.
	retrier := backoff.NewRetrier(&backoff.ConstantBackoffPolicy{
		Interval:   p.polling.Interval,
		MaxRetries: p.polling.Attempts() - 1,
	})

	for {
		prev := pending.Clone()
		for _, task := range prev.Names() {
			state, err := p.state(ctx, task)
			if err != nil {
				return err
			}

			switch {
			case state.Terminal():
				logger.Info(ctx, "Task completed", "task", task)
				if p.onSuccess != nil {
					if err := p.onSuccess(ctx, task); err != nil {
						return fmt.Errorf("task %s completed but verification failed: %w", task, err)
					}
				}
				pending.Remove(task)
			case state.Pending():
				logger.Debug(ctx, "Task pending", "task", task, "state", state)
			default:
				return fmt.Errorf("task %s entered unexpected state %q", task, state)
			}
		}

		switch NextAction(prev, pending) {
		case ActionDone:
			logger.Info(ctx, "All tasks completed", "tasks", len(p.roster))
			return nil
		case ActionProgress:
			retrier.Reset()
		case ActionNoProgress:
		}

		interval, err := retrier.Next(nil)
		if errors.Is(err, backoff.ErrRetriesExhausted) {
			return fmt.Errorf("workflow stalled: no task completed within %s, still pending: %s",
				p.polling.StallTimeout, strings.Join(pending.Names(), ", "))
		}
		if err != nil {
			return err
		}
		if err := p.sleep(ctx, interval); err != nil {
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
