package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type commandLineFlag struct {
	name, shorthand, defaultValue, usage string
	required                             bool
	isBool                               bool
}

var (
	configFlag = commandLineFlag{
		name:      "config",
		shorthand: "c",
		usage:     "config file (default is $XDG_CONFIG_HOME/flowprobe/config.yaml)",
	}
	quietFlag = commandLineFlag{
		name:      "quiet",
		shorthand: "q",
		usage:     "suppress log output",
		isBool:    true,
	}
	intervalFlag = commandLineFlag{
		name:  "interval",
		usage: "override the polling interval (e.g. 10s)",
	}
	stallTimeoutFlag = commandLineFlag{
		name:  "stall-timeout",
		usage: "override the no-progress budget (e.g. 60s)",
	}
	workspaceFlag = commandLineFlag{
		name:      "workspace",
		shorthand: "w",
		usage:     "directory for per-run orchestrator homes (default is a temp dir)",
	}
)

func initFlags(cmd *cobra.Command, addFlags ...commandLineFlag) {
	addFlags = append(addFlags, configFlag, quietFlag)
	for _, flag := range addFlags {
		if flag.isBool {
			cmd.Flags().BoolP(flag.name, flag.shorthand, false, flag.usage)
		} else {
			cmd.Flags().StringP(flag.name, flag.shorthand, flag.defaultValue, flag.usage)
		}
		if flag.required {
			if err := cmd.MarkFlagRequired(flag.name); err != nil {
				fmt.Printf("failed to mark flag %s as required: %v\n", flag.name, err)
			}
		}
	}
}

func bindFlags(cmd *cobra.Command, addFlags ...commandLineFlag) {
	flags := append([]commandLineFlag{configFlag}, addFlags...)
	for _, flag := range flags {
		if err := viper.BindPFlag(flag.name, cmd.Flags().Lookup(flag.name)); err != nil {
			fmt.Printf("failed to bind flag %s: %v\n", flag.name, err)
		}
	}
}
