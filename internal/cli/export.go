package cli

import (
	"github.com/spf13/cobra"
)

func exportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "export [PATH]",
		Short: "Write the definitions back out as a single canonical HCL file",
		Args:  pathArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.loadApp(cmd, args, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Export()
		},
	}
}
