package cli

import (
	"github.com/spf13/cobra"
	"github.com/vk/statetree/internal/app"
	"github.com/vk/statetree/internal/modpath"
)

func inspectCmd(e *env) *cobra.Command {
	var module string
	var output string

	c := &cobra.Command{
		Use:   "inspect [PATH]",
		Short: "Print the module tree and its getter, mutation and action tables",
		Args:  pathArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := modpath.Parse(module)
			if err != nil {
				return usageError(err)
			}
			switch output {
			case app.FormatText, app.FormatJSON, app.FormatYAML:
			default:
				return &ExitError{Code: 2, Message: "invalid output: must be 'text', 'json' or 'yaml'"}
			}

			a, err := e.loadApp(cmd, args, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Inspect(app.InspectOptions{Module: path, Format: output})
		},
	}

	c.Flags().StringVarP(&module, "module", "m", "", "Only show the module at this path, e.g. cart/items")
	c.Flags().StringVarP(&output, "output", "o", app.FormatText, "Output format: text, json or yaml")
	return c
}
