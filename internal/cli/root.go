package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the statetree command tree.
func NewRootCmd(outW, errW io.Writer) *cobra.Command {
	e := &env{outW: outW, errW: errW, flags: &globalFlags{}}

	cmd := &cobra.Command{
		Use:   "statetree",
		Short: "statetree - build and inspect module trees declared in HCL",
		Long: `statetree loads a store declared in HCL files, builds its module tree
and lets you inspect, export, watch or publish it.

Definitions are read from PATH (an .hcl file or a directory) or from
STATETREE_DEFINITIONS when PATH is omitted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(outW)
	cmd.SetErr(errW)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := cmd.PersistentFlags()
	flags.StringVar(&e.flags.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&e.flags.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.StringSliceVar(&e.flags.lua, "lua", nil, "Lua handler scripts or directories of scripts.")

	cmd.AddCommand(
		inspectCmd(e),
		exportCmd(e),
		watchCmd(e),
		publishCmd(e),
	)
	return cmd
}
