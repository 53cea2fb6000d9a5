package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dagu-org/flowprobe/internal/config"
	"github.com/dagu-org/flowprobe/internal/fileutil"
	"github.com/dagu-org/flowprobe/internal/logger"
	"github.com/dagu-org/flowprobe/internal/scenario"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Environment keys understood by the Airflow 1.x CLI. The scheduler reads
// its tuning from AIRFLOW__<SECTION>__<KEY> variables.
const (
	envHome          = "HOME"
	envAirflowHome   = "AIRFLOW_HOME"
	envDagsFolder    = "AIRFLOW__CORE__DAGS_FOLDER"
	envBaseLogFolder = "AIRFLOW__CORE__BASE_LOG_FOLDER"
	envSQLConn       = "AIRFLOW__CORE__SQL_ALCHEMY_CONN"

	envJobHeartbeat        = "AIRFLOW__SCHEDULER__JOB_HEARTBEAT_SEC"
	envSchedulerHeartbeat  = "AIRFLOW__SCHEDULER__SCHEDULER_HEARTBEAT_SEC"
	envRunDuration         = "AIRFLOW__SCHEDULER__RUN_DURATION"
	envMinFileProcInterval = "AIRFLOW__SCHEDULER__MIN_FILE_PROCESS_INTERVAL"
	envPrintStatsInterval  = "AIRFLOW__SCHEDULER__PRINT_STATS_INTERVAL"
)

// Workspace is a provisioned per-run orchestrator home.
type Workspace struct {
	// Home is the orchestrator home directory for this run.
	Home string
	// DagsDir is where workflow definition files are staged.
	DagsDir string
	// LogsDir is where the orchestrator writes task logs.
	LogsDir string

	scope *EnvScope
}

// Provision creates a fresh orchestrator home, stages the scenario's
// assets into it, and builds the subprocess environment. The metadata
// database is a SQLite file inside the home, so each run starts from a
// clean slate.
func Provision(ctx context.Context, cfg *config.Config, sc *scenario.Scenario) (*Workspace, error) {
	home, err := makeHome(cfg, sc)
	if err != nil {
		return nil, err
	}

	ws := &Workspace{
		Home:    home,
		DagsDir: filepath.Join(home, "dags"),
		LogsDir: filepath.Join(home, "logs"),
	}
	for _, dir := range []string{ws.DagsDir, ws.LogsDir} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := ws.stageAssets(ctx, sc); err != nil {
		return nil, err
	}
	if err := ws.buildEnv(cfg); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Provisioned orchestrator home", "home", ws.Home)
	return ws, nil
}

// Env returns the complete subprocess environment as KEY=value strings.
func (w *Workspace) Env() []string {
	return w.scope.ToSlice()
}

// Scope returns the underlying environment scope.
func (w *Workspace) Scope() *EnvScope {
	return w.scope
}

// Cleanup removes the provisioned home. Failures are logged, not
// returned; cleanup runs on paths the run is already done with.
func (w *Workspace) Cleanup(ctx context.Context) {
	if err := os.RemoveAll(w.Home); err != nil {
		logger.Warn(ctx, "Failed to remove orchestrator home", "home", w.Home, "err", err)
	}
}

func makeHome(cfg *config.Config, sc *scenario.Scenario) (string, error) {
	if dir := cfg.Global.WorkspaceDir; dir != "" {
		home := filepath.Join(dir, sc.Workflow+"-"+uuid.New().String())
		if err := os.MkdirAll(home, 0750); err != nil {
			return "", fmt.Errorf("failed to create orchestrator home: %w", err)
		}
		return home, nil
	}

	home, err := os.MkdirTemp("", "flowprobe-"+sc.Workflow+"-")
	if err != nil {
		return "", fmt.Errorf("failed to create orchestrator home: %w", err)
	}
	return home, nil
}

func (w *Workspace) stageAssets(ctx context.Context, sc *scenario.Scenario) error {
	for _, a := range sc.Assets {
		src := sc.AssetSource(a)
		dest := filepath.Join(w.Home, a.Dest)

		logger.Debug(ctx, "Staging asset", "src", src, "dest", dest)
		var err error
		if fileutil.IsDir(src) {
			err = fileutil.CopyDir(src, dest)
		} else {
			err = fileutil.CopyFile(src, dest)
		}
		if err != nil {
			return fmt.Errorf("failed to stage asset %s: %w", a.Src, err)
		}
	}
	return nil
}

func (w *Workspace) buildEnv(cfg *config.Config) error {
	scope := NewEnvScope(true)

	scope.Set(envHome, w.Home, EnvSourceProvision)
	scope.Set(envAirflowHome, w.Home, EnvSourceProvision)
	scope.Set(envDagsFolder, w.DagsDir, EnvSourceProvision)
	scope.Set(envBaseLogFolder, w.LogsDir, EnvSourceProvision)
	scope.Set(envSQLConn, "sqlite:///"+filepath.Join(w.Home, "airflow.db"), EnvSourceProvision)

	tuning := cfg.Tuning
	scope.Set(envJobHeartbeat, strconv.Itoa(tuning.JobHeartbeatSec), EnvSourceProvision)
	scope.Set(envSchedulerHeartbeat, strconv.Itoa(tuning.SchedulerHeartbeatSec), EnvSourceProvision)
	scope.Set(envRunDuration, strconv.Itoa(tuning.RunDurationSec), EnvSourceProvision)
	scope.Set(envMinFileProcInterval, strconv.Itoa(tuning.MinFileProcessIntervalSec), EnvSourceProvision)
	scope.Set(envPrintStatsInterval, strconv.Itoa(tuning.PrintStatsIntervalSec), EnvSourceProvision)

	if file := cfg.Orchestrator.DotenvFile; file != "" {
		vars, err := godotenv.Read(file)
		if err != nil {
			return fmt.Errorf("failed to read env file %s: %w", file, err)
		}
		for k, v := range vars {
			scope.Set(k, v, EnvSourceDotEnv)
		}
	}

	w.scope = scope
	return nil
}
