// Package scenario defines the YAML description of one verification run:
// which workflow to trigger, which tasks it must contain, and which files
// must be staged into the orchestrator home before the run.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
)

// Scenario describes one end-to-end verification run.
type Scenario struct {
	// Workflow is the DAG id registered with the orchestrator.
	Workflow string `yaml:"workflow"`

	// RunID identifies the triggered run. Generated when empty.
	RunID string `yaml:"runID"`

	// ExecutionDate is the logical execution timestamp (RFC 3339 with
	// offset). It must fall between the workflow's start date and now,
	// or the orchestrator will never schedule the run.
	ExecutionDate string `yaml:"executionDate"`

	// Tasks is the ordered roster of task names the workflow is expected
	// to contain. Task states outside this roster are never queried.
	Tasks []string `yaml:"tasks"`

	// Assets are files and directories copied into the orchestrator home
	// during provisioning.
	Assets []Asset `yaml:"assets"`

	baseDir string
}

// Asset is a file or directory staged into the provisioned home.
type Asset struct {
	// Src is the source path, relative to the scenario file.
	Src string `yaml:"src"`
	// Dest is the destination path, relative to the orchestrator home.
	Dest string `yaml:"dest"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scenario path %s: %w", path, err)
	}

	sc, err := LoadYAML(data)
	if err != nil {
		return nil, fmt.Errorf("invalid scenario file %s: %w", path, err)
	}
	sc.baseDir = filepath.Dir(absPath)

	return sc, nil
}

// LoadYAML parses and validates a scenario from YAML bytes.
// Relative asset sources resolve against the current working directory
// unless the scenario was loaded from a file.
func LoadYAML(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	if err := sc.validate(); err != nil {
		return nil, err
	}

	if sc.RunID == "" {
		sc.RunID = "manual_" + uuid.New().String()
	}

	return &sc, nil
}

// AssetSource resolves an asset source path against the scenario file location.
func (s *Scenario) AssetSource(a Asset) string {
	if filepath.IsAbs(a.Src) || s.baseDir == "" {
		return a.Src
	}
	return filepath.Join(s.baseDir, a.Src)
}

func (s *Scenario) validate() error {
	if s.Workflow == "" {
		return fmt.Errorf("workflow must not be empty")
	}
	if len(s.Tasks) == 0 {
		return fmt.Errorf("task roster must not be empty")
	}

	seen := make(map[string]struct{}, len(s.Tasks))
	for _, task := range s.Tasks {
		if task == "" {
			return fmt.Errorf("task names must not be empty")
		}
		if _, ok := seen[task]; ok {
			return fmt.Errorf("duplicate task name %q", task)
		}
		seen[task] = struct{}{}
	}

	if s.ExecutionDate == "" {
		return fmt.Errorf("executionDate must not be empty")
	}
	if _, err := time.Parse(time.RFC3339, s.ExecutionDate); err != nil {
		return fmt.Errorf("invalid executionDate %q: %w", s.ExecutionDate, err)
	}

	for _, a := range s.Assets {
		if a.Src == "" || a.Dest == "" {
			return fmt.Errorf("asset src and dest must not be empty")
		}
		if filepath.IsAbs(a.Dest) {
			return fmt.Errorf("asset dest %q must be relative to the orchestrator home", a.Dest)
		}
		if strings.HasPrefix(filepath.Clean(a.Dest), "..") {
			return fmt.Errorf("asset dest %q must not escape the orchestrator home", a.Dest)
		}
	}

	return nil
}
