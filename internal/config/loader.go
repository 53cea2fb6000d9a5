package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/dagu-org/flowprobe/internal/build"
	"github.com/dagu-org/flowprobe/internal/fileutil"
	"github.com/spf13/viper"
)

// ConfigLoader reads and merges configuration from defaults, an optional
// config file, and FLOWPROBE_-prefixed environment variables.
type ConfigLoader struct {
	v          *viper.Viper
	configFile string
	warnings   []string
}

// ConfigLoaderOption defines a functional option for configuring a ConfigLoader.
type ConfigLoaderOption func(*ConfigLoader)

// WithConfigFile returns a ConfigLoaderOption that sets the configuration file path.
func WithConfigFile(configFile string) ConfigLoaderOption {
	return func(l *ConfigLoader) {
		l.configFile = configFile
	}
}

// Load reads the harness configuration.
func Load(opts ...ConfigLoaderOption) (*Config, error) {
	loader := &ConfigLoader{v: viper.New()}
	for _, opt := range opts {
		opt(loader)
	}

	cfg, err := loader.load()
	if err != nil {
		return nil, err
	}
	cfg.Warnings = loader.warnings

	return cfg, nil
}

func (l *ConfigLoader) load() (*Config, error) {
	l.setDefaults()

	l.v.SetEnvPrefix(strings.ToUpper(build.Slug))
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if err := l.readConfigFile(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Paths.ConfigFileUsed = l.v.ConfigFileUsed()

	if cfg.Global.WorkspaceDir != "" {
		dir, err := fileutil.ResolvePath(cfg.Global.WorkspaceDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve workspace dir: %w", err)
		}
		cfg.Global.WorkspaceDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (l *ConfigLoader) setDefaults() {
	// Orchestrator defaults target the Airflow 1.x CLI.
	l.v.SetDefault("orchestrator.executable", "airflow")
	l.v.SetDefault("orchestrator.verbs.initDB", "initdb")
	l.v.SetDefault("orchestrator.verbs.unpause", "unpause")
	l.v.SetDefault("orchestrator.verbs.trigger", "trigger_dag")
	l.v.SetDefault("orchestrator.verbs.taskState", "task_state")
	l.v.SetDefault("orchestrator.verbs.scheduler", "scheduler")

	// Tuning values trade production-realistic timing for fast feedback.
	l.v.SetDefault("tuning.jobHeartbeatSec", 1)
	l.v.SetDefault("tuning.schedulerHeartbeatSec", 1)
	l.v.SetDefault("tuning.runDurationSec", -1)
	l.v.SetDefault("tuning.minFileProcessIntervalSec", 1)
	l.v.SetDefault("tuning.printStatsIntervalSec", 30)

	l.v.SetDefault("polling.interval", "10s")
	l.v.SetDefault("polling.stallTimeout", "60s")

	l.v.SetDefault("global.logFormat", "text")
}

func (l *ConfigLoader) readConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
		if err := l.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
		return nil
	}

	// Default location: $XDG_CONFIG_HOME/flowprobe/config.yaml
	l.v.AddConfigPath(filepath.Join(xdg.ConfigHome, build.Slug))
	l.v.SetConfigName("config")
	l.v.SetConfigType("yaml")

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		l.warnings = append(l.warnings, fmt.Sprintf("failed to read config file: %v", err))
	}
	return nil
}
