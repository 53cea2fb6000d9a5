package cmd_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dagu-org/flowprobe/internal/build"
	"github.com/dagu-org/flowprobe/internal/cmd"
	"github.com/dagu-org/flowprobe/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRunFixture turns the stub orchestrator fixture into a config file
// and scenario file the run command can consume.
func writeRunFixture(t *testing.T, h test.Helper) (configFile, scenarioFile string) {
	t.Helper()
	dir := t.TempDir()

	configFile = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, fmt.Appendf(nil, `
orchestrator:
  executable: %s
polling:
  interval: 10ms
  stallTimeout: 100ms
global:
  workspaceDir: %s
`, h.Config.Orchestrator.Executable, dir), 0600))

	scenarioFile = filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(scenarioFile, []byte(`
workflow: wf
executionDate: "2019-02-01T01:01:01+01:01"
tasks: [extract, train]
`), 0600))

	return configFile, scenarioFile
}

func TestRunCommand(t *testing.T) {
	h := test.Setup(t)
	configFile, scenarioFile := writeRunFixture(t, h)

	h.SetState(t, "extract", "success")
	h.SetState(t, "train", "success")

	root := cmd.Run()
	root.SetArgs([]string{"--config", configFile, "--quiet", scenarioFile})
	require.NoError(t, root.Execute())

	calls, err := os.ReadFile(h.CallLog)
	require.NoError(t, err)
	assert.Contains(t, string(calls), "trigger_dag wf")
}

func TestRunCommandFailingTask(t *testing.T) {
	h := test.Setup(t)
	configFile, scenarioFile := writeRunFixture(t, h)

	h.SetState(t, "extract", "success")
	h.SetState(t, "train", "failed")

	root := cmd.Run()
	root.SetArgs([]string{"--config", configFile, "--quiet", scenarioFile})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "train")
}

func TestRunCommandRequiresScenarioArg(t *testing.T) {
	root := cmd.Run()
	root.SetArgs([]string{})
	root.SetErr(new(bytes.Buffer))
	assert.Error(t, root.Execute())
}

func TestRunCommandInvalidIntervalOverride(t *testing.T) {
	h := test.Setup(t)
	configFile, scenarioFile := writeRunFixture(t, h)

	root := cmd.Run()
	root.SetArgs([]string{"--config", configFile, "--quiet", "--interval", "soon", scenarioFile})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := cmd.Version()
	root.SetOut(&out)
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), build.Version)
}
