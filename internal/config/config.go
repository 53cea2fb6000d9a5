package config

import (
	"fmt"
	"time"
)

// Config holds the harness configuration for one verification run.
type Config struct {
	Global       Global       `mapstructure:"global"`
	Orchestrator Orchestrator `mapstructure:"orchestrator"`
	Tuning       Tuning       `mapstructure:"tuning"`
	Polling      Polling      `mapstructure:"polling"`

	// Paths holds resolved file locations, not read from the config file.
	Paths Paths `mapstructure:"-"`

	// Warnings collected during configuration loading.
	Warnings []string `mapstructure:"-"`
}

// Global contains settings that apply to the whole process.
type Global struct {
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"logFormat"`

	// WorkspaceDir overrides where per-run orchestrator homes are created.
	// When empty, a temporary directory is used.
	WorkspaceDir string `mapstructure:"workspaceDir"`
}

// Orchestrator describes the external workflow scheduler under test.
// The verb names default to the Airflow 1.x CLI; they are configurable so
// the same harness can drive other orchestrators with compatible CLIs.
type Orchestrator struct {
	Executable string `mapstructure:"executable"`
	Verbs      Verbs  `mapstructure:"verbs"`

	// DotenvFile is an optional env file merged into the environment of
	// every orchestrator subprocess.
	DotenvFile string `mapstructure:"dotenvFile"`
}

// Verbs are the CLI subcommands for the five operations the harness performs.
type Verbs struct {
	InitDB    string `mapstructure:"initDB"`
	Unpause   string `mapstructure:"unpause"`
	Trigger   string `mapstructure:"trigger"`
	TaskState string `mapstructure:"taskState"`
	Scheduler string `mapstructure:"scheduler"`
}

// Tuning holds the scheduler tuning values written into the orchestrator
// environment. The defaults are deliberately aggressive so the scheduler
// picks up DAG files and heartbeats quickly during verification runs.
type Tuning struct {
	// JobHeartbeatSec is the job heartbeat interval in seconds.
	JobHeartbeatSec int `mapstructure:"jobHeartbeatSec"`
	// SchedulerHeartbeatSec is the scheduler heartbeat interval in seconds.
	SchedulerHeartbeatSec int `mapstructure:"schedulerHeartbeatSec"`
	// RunDurationSec limits how long the scheduler runs; -1 means forever.
	RunDurationSec int `mapstructure:"runDurationSec"`
	// MinFileProcessIntervalSec is the minimum interval between DAG file parses.
	MinFileProcessIntervalSec int `mapstructure:"minFileProcessIntervalSec"`
	// PrintStatsIntervalSec is the interval between scheduler stats reports.
	PrintStatsIntervalSec int `mapstructure:"printStatsIntervalSec"`
}

// Polling controls the task-state polling loop.
type Polling struct {
	// Interval between polling passes when no task changed state.
	Interval time.Duration `mapstructure:"interval"`
	// StallTimeout is the maximum duration to tolerate no task state change.
	// The budget resets whenever a task leaves the pending set.
	StallTimeout time.Duration `mapstructure:"stallTimeout"`
}

// Paths holds resolved locations discovered at load time.
type Paths struct {
	ConfigFileUsed string
}

// Attempts returns the number of polling passes allowed within one
// no-progress window.
func (p Polling) Attempts() int {
	return int(p.StallTimeout/p.Interval) + 1
}

// Validate checks the configuration for values the harness cannot run with.
func (c *Config) Validate() error {
	if c.Orchestrator.Executable == "" {
		return fmt.Errorf("orchestrator executable must not be empty")
	}
	if c.Polling.Interval <= 0 {
		return fmt.Errorf("polling interval must be positive, got %s", c.Polling.Interval)
	}
	if c.Polling.StallTimeout < c.Polling.Interval {
		return fmt.Errorf("polling stall timeout %s must not be shorter than the interval %s",
			c.Polling.StallTimeout, c.Polling.Interval)
	}
	return nil
}
