package cmd

import (
	"github.com/dagu-org/flowprobe/internal/build"
	"github.com/spf13/cobra"
)

// Version returns the command that prints the binary version.
func Version() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the binary version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(build.Version)
		},
	}
}
