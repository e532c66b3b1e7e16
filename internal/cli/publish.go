package cli

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
	"github.com/vk/statetree/internal/app"
	"github.com/vk/statetree/internal/publish"
)

func publishCmd(e *env) *cobra.Command {
	var url, event string
	var opts app.PublishOptions

	c := &cobra.Command{
		Use:   "publish [PATH]",
		Short: "Send a snapshot of the module tree to a socket.io endpoint",
		Args:  pathArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.loadApp(cmd, args, func(cfg *app.Config) {
				if url != "" {
					cfg.PublishURL = url
				}
				if event != "" {
					cfg.PublishEvent = event
				}
			})
			if err != nil {
				return err
			}
			defer a.Close()

			reply, err := a.Publish(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if reply == nil {
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(reply)
		},
	}

	flags := c.Flags()
	flags.StringVar(&url, "url", "", "Endpoint URL, e.g. http://localhost:3000 (overrides STATETREE_PUBLISH_URL)")
	flags.StringVar(&event, "event", "", "Event name (default \""+publish.DefaultEvent+"\")")
	flags.StringVar(&opts.Namespace, "namespace", "/", "socket.io namespace")
	flags.StringVar(&opts.ReplyEvent, "reply-event", "", "Wait for this event and print its payload")
	flags.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "Give up after this long")
	flags.BoolVar(&opts.InsecureSkipVerify, "insecure", false, "Skip TLS certificate verification")
	return c
}
