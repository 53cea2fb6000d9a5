package main

import (
	"os"

	"github.com/dagu-org/flowprobe/internal/build"
	"github.com/dagu-org/flowprobe/internal/cmd"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   build.Slug,
	Short: "Flowprobe verifies pipelines end-to-end under an external workflow orchestrator",
	Long: `Flowprobe drives an external workflow orchestrator through its command-line
interface to verify that a predefined pipeline executes end-to-end.

It provisions an isolated orchestrator home, starts the scheduler daemon,
triggers one run of the target workflow, and polls task states until every
task succeeds, a task fails, or no task makes progress within the budget.
`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var version = "dev"

func init() {
	build.Version = version

	rootCmd.AddCommand(cmd.Run())
	rootCmd.AddCommand(cmd.Version())
}
