package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vk/statetree/internal/app"
)

func watchCmd(e *env) *cobra.Command {
	var debounce time.Duration

	c := &cobra.Command{
		Use:   "watch [PATH]",
		Short: "Load the definitions and hot-reload them on change until interrupted",
		Args:  pathArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.loadApp(cmd, args, func(cfg *app.Config) {
				if cmd.Flags().Changed("debounce") {
					cfg.Debounce = debounce
				}
			})
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.Watch(ctx, nil)
		},
	}

	c.Flags().DurationVar(&debounce, "debounce", 0, "Wait this long after the last change before reloading (default 200ms)")
	return c
}
