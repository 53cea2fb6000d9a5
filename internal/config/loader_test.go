package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dagu-org/flowprobe/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Point XDG config home at an empty dir so a developer's config file
	// cannot leak into the test.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "airflow", cfg.Orchestrator.Executable)
	assert.Equal(t, "initdb", cfg.Orchestrator.Verbs.InitDB)
	assert.Equal(t, "unpause", cfg.Orchestrator.Verbs.Unpause)
	assert.Equal(t, "trigger_dag", cfg.Orchestrator.Verbs.Trigger)
	assert.Equal(t, "task_state", cfg.Orchestrator.Verbs.TaskState)
	assert.Equal(t, "scheduler", cfg.Orchestrator.Verbs.Scheduler)

	assert.Equal(t, 1, cfg.Tuning.JobHeartbeatSec)
	assert.Equal(t, 1, cfg.Tuning.SchedulerHeartbeatSec)
	assert.Equal(t, -1, cfg.Tuning.RunDurationSec)
	assert.Equal(t, 1, cfg.Tuning.MinFileProcessIntervalSec)
	assert.Equal(t, 30, cfg.Tuning.PrintStatsIntervalSec)

	assert.Equal(t, 10*time.Second, cfg.Polling.Interval)
	assert.Equal(t, 60*time.Second, cfg.Polling.StallTimeout)
	assert.Equal(t, 7, cfg.Polling.Attempts())
}

func TestLoadConfigFile(t *testing.T) {
	tmp := t.TempDir()
	configFile := filepath.Join(tmp, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
orchestrator:
  executable: /opt/airflow/bin/airflow
polling:
  interval: 100ms
  stallTimeout: 1s
`), 0600))

	cfg, err := config.Load(config.WithConfigFile(configFile))
	require.NoError(t, err)

	assert.Equal(t, "/opt/airflow/bin/airflow", cfg.Orchestrator.Executable)
	assert.Equal(t, 100*time.Millisecond, cfg.Polling.Interval)
	assert.Equal(t, time.Second, cfg.Polling.StallTimeout)
	assert.Equal(t, configFile, cfg.Paths.ConfigFileUsed)

	// Unset values keep their defaults.
	assert.Equal(t, "task_state", cfg.Orchestrator.Verbs.TaskState)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("FLOWPROBE_ORCHESTRATOR_EXECUTABLE", "/usr/local/bin/airflow")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/airflow", cfg.Orchestrator.Executable)
}

func TestLoadInvalid(t *testing.T) {
	t.Run("TimeoutShorterThanInterval", func(t *testing.T) {
		tmp := t.TempDir()
		configFile := filepath.Join(tmp, "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte(`
polling:
  interval: 10s
  stallTimeout: 1s
`), 0600))

		_, err := config.Load(config.WithConfigFile(configFile))
		assert.ErrorContains(t, err, "stall timeout")
	})

	t.Run("MissingConfigFile", func(t *testing.T) {
		_, err := config.Load(config.WithConfigFile("/no/such/config.yaml"))
		assert.Error(t, err)
	})
}
