package workspace_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dagu-org/flowprobe/internal/config"
	"github.com/dagu-org/flowprobe/internal/scenario"
	"github.com/dagu-org/flowprobe/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTuning() config.Tuning {
	return config.Tuning{
		JobHeartbeatSec:           1,
		SchedulerHeartbeatSec:     1,
		RunDurationSec:            -1,
		MinFileProcessIntervalSec: 1,
		PrintStatsIntervalSec:     30,
	}
}

func loadScenario(t *testing.T, dir, yaml string) *scenario.Scenario {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))
	sc, err := scenario.Load(path)
	require.NoError(t, err)
	return sc
}

func TestProvision(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipeline.py"), []byte("# dag"), 0600))

	sc := loadScenario(t, dir, `
workflow: wf
executionDate: "2024-01-01T00:00:00Z"
tasks: [a, b]
assets:
  - src: pipeline.py
    dest: dags/pipeline.py
`)
	cfg := &config.Config{
		Global: config.Global{WorkspaceDir: t.TempDir()},
		Tuning: testTuning(),
	}

	ws, err := workspace.Provision(ctx, cfg, sc)
	require.NoError(t, err)
	defer ws.Cleanup(ctx)

	assert.DirExists(t, ws.DagsDir)
	assert.DirExists(t, ws.LogsDir)
	assert.FileExists(t, filepath.Join(ws.DagsDir, "pipeline.py"))

	env := ws.Scope().ToMap()
	assert.Equal(t, ws.Home, env["HOME"])
	assert.Equal(t, ws.Home, env["AIRFLOW_HOME"])
	assert.Equal(t, ws.DagsDir, env["AIRFLOW__CORE__DAGS_FOLDER"])
	assert.Equal(t, ws.LogsDir, env["AIRFLOW__CORE__BASE_LOG_FOLDER"])
	assert.Equal(t, "sqlite:///"+filepath.Join(ws.Home, "airflow.db"),
		env["AIRFLOW__CORE__SQL_ALCHEMY_CONN"])

	assert.Equal(t, "1", env["AIRFLOW__SCHEDULER__JOB_HEARTBEAT_SEC"])
	assert.Equal(t, "1", env["AIRFLOW__SCHEDULER__SCHEDULER_HEARTBEAT_SEC"])
	assert.Equal(t, "-1", env["AIRFLOW__SCHEDULER__RUN_DURATION"])
	assert.Equal(t, "1", env["AIRFLOW__SCHEDULER__MIN_FILE_PROCESS_INTERVAL"])
	assert.Equal(t, "30", env["AIRFLOW__SCHEDULER__PRINT_STATS_INTERVAL"])
}

func TestProvisionLeavesProcessEnvUntouched(t *testing.T) {
	ctx := context.Background()

	sc := loadScenario(t, t.TempDir(), `
workflow: wf
executionDate: "2024-01-01T00:00:00Z"
tasks: [a]
`)
	cfg := &config.Config{Tuning: testTuning()}

	before := os.Getenv("AIRFLOW_HOME")

	ws, err := workspace.Provision(ctx, cfg, sc)
	require.NoError(t, err)
	defer ws.Cleanup(ctx)

	assert.Equal(t, before, os.Getenv("AIRFLOW_HOME"))
	_, ok := ws.Scope().Get("AIRFLOW_HOME")
	assert.True(t, ok)
}

func TestProvisionInheritsProcessEnv(t *testing.T) {
	ctx := context.Background()
	t.Setenv("FLOWPROBE_TEST_INHERITED", "yes")

	sc := loadScenario(t, t.TempDir(), `
workflow: wf
executionDate: "2024-01-01T00:00:00Z"
tasks: [a]
`)

	ws, err := workspace.Provision(ctx, &config.Config{Tuning: testTuning()}, sc)
	require.NoError(t, err)
	defer ws.Cleanup(ctx)

	v, ok := ws.Scope().Get("FLOWPROBE_TEST_INHERITED")
	assert.True(t, ok)
	assert.Equal(t, "yes", v)
}

func TestProvisionDotenvOverlay(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	dotenv := filepath.Join(dir, "extra.env")
	require.NoError(t, os.WriteFile(dotenv, []byte("EXTRA_KEY=extra-value\n"), 0600))

	sc := loadScenario(t, dir, `
workflow: wf
executionDate: "2024-01-01T00:00:00Z"
tasks: [a]
`)
	cfg := &config.Config{
		Orchestrator: config.Orchestrator{DotenvFile: dotenv},
		Tuning:       testTuning(),
	}

	ws, err := workspace.Provision(ctx, cfg, sc)
	require.NoError(t, err)
	defer ws.Cleanup(ctx)

	v, ok := ws.Scope().Get("EXTRA_KEY")
	assert.True(t, ok)
	assert.Equal(t, "extra-value", v)

	// Env slice carries the overlay too.
	assert.Contains(t, ws.Env(), "EXTRA_KEY=extra-value")
}

func TestProvisionStagesDirectoryAssets(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "rows.csv"), []byte("a,b\n"), 0600))

	sc := loadScenario(t, dir, `
workflow: wf
executionDate: "2024-01-01T00:00:00Z"
tasks: [a]
assets:
  - src: data
    dest: taxi/data
`)

	ws, err := workspace.Provision(ctx, &config.Config{Tuning: testTuning()}, sc)
	require.NoError(t, err)
	defer ws.Cleanup(ctx)

	assert.FileExists(t, filepath.Join(ws.Home, "taxi", "data", "rows.csv"))
}

func TestProvisionMissingAsset(t *testing.T) {
	ctx := context.Background()

	sc := loadScenario(t, t.TempDir(), `
workflow: wf
executionDate: "2024-01-01T00:00:00Z"
tasks: [a]
assets:
  - src: nope.py
    dest: dags/nope.py
`)

	_, err := workspace.Provision(ctx, &config.Config{Tuning: testTuning()}, sc)
	assert.ErrorContains(t, err, "nope.py")
}

func TestEnvScope(t *testing.T) {
	t.Parallel()

	scope := workspace.NewEnvScope(false)
	scope.Set("K", "v1", workspace.EnvSourceProvision)
	scope.Set("K", "v2", workspace.EnvSourceDotEnv)

	v, ok := scope.Get("K")
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	_, ok = scope.Get("MISSING")
	assert.False(t, ok)

	assert.Equal(t, []string{"K=v2"}, scope.ToSlice())
}
