// Package poller watches task states of a triggered workflow run until
// every task completes, a task fails, or the run stalls.
package poller

import (
	"sort"

	"github.com/samber/lo"
)

// TaskState is a task instance state as reported by the orchestrator CLI,
// normalized to lower case.
type TaskState string

const (
	// StateSuccess is the only terminal state the harness accepts.
	StateSuccess TaskState = "success"

	// Pending states: the task has not finished yet and polling continues.
	StateQueued    TaskState = "queued"
	StateScheduled TaskState = "scheduled"
	StateRunning   TaskState = "running"
	// StateNone is reported before the scheduler has created the task
	// instance. It counts as pending; right after triggering, every task
	// is in this state.
	StateNone TaskState = "none"
)

// Terminal reports whether the state means the task completed successfully.
func (s TaskState) Terminal() bool {
	return s == StateSuccess
}

// Pending reports whether the state means the task may still complete.
// Any state that is neither terminal nor pending fails the run.
func (s TaskState) Pending() bool {
	switch s {
	case StateQueued, StateScheduled, StateRunning, StateNone:
		return true
	default:
		return false
	}
}

// PendingSet is the set of tasks that have not completed yet.
type PendingSet struct {
	tasks map[string]struct{}
}

// NewPendingSet returns a pending set containing every task in the roster.
func NewPendingSet(roster []string) PendingSet {
	tasks := make(map[string]struct{}, len(roster))
	for _, task := range roster {
		tasks[task] = struct{}{}
	}
	return PendingSet{tasks: tasks}
}

// Remove drops a completed task from the set.
func (s PendingSet) Remove(task string) {
	delete(s.tasks, task)
}

// Contains reports whether the task is still pending.
func (s PendingSet) Contains(task string) bool {
	_, ok := s.tasks[task]
	return ok
}

// Len returns the number of pending tasks.
func (s PendingSet) Len() int {
	return len(s.tasks)
}

// Names returns the pending task names in sorted order.
func (s PendingSet) Names() []string {
	names := lo.Keys(s.tasks)
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the set.
func (s PendingSet) Clone() PendingSet {
	tasks := make(map[string]struct{}, len(s.tasks))
	for task := range s.tasks {
		tasks[task] = struct{}{}
	}
	return PendingSet{tasks: tasks}
}

// Action is the decision taken after one polling pass.
type Action int

const (
	// ActionDone means every task completed; polling stops.
	ActionDone Action = iota
	// ActionProgress means at least one task completed this pass; the
	// stall budget resets.
	ActionProgress
	// ActionNoProgress means the pending set did not shrink; the stall
	// budget keeps counting down.
	ActionNoProgress
)

// NextAction decides how the polling loop proceeds given the pending set
// before and after one pass. It is pure so the progress policy can be
// tested without a clock.
func NextAction(prev, cur PendingSet) Action {
	switch {
	case cur.Len() == 0:
		return ActionDone
	case cur.Len() < prev.Len():
		return ActionProgress
	default:
		return ActionNoProgress
	}
}
