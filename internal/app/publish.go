package app

import (
	"context"
	"errors"
	"time"

	"github.com/vk/statetree/internal/publish"
)

// PublishOptions overrides parts of the configured publish target.
type PublishOptions struct {
	Namespace          string
	ReplyEvent         string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Publish sends a snapshot of the loaded tree to the configured socket.io
// endpoint and returns the reply, if one was requested.
func (a *App) Publish(ctx context.Context, opts PublishOptions) (any, error) {
	ctx = a.withLogger(ctx)
	c, _, err := a.loaded()
	if err != nil {
		return nil, err
	}
	if a.config.PublishURL == "" {
		return nil, errors.New("no publish url configured")
	}

	return publish.Publish(ctx, publish.Options{
		URL:                a.config.PublishURL,
		Namespace:          opts.Namespace,
		Event:              a.config.PublishEvent,
		ReplyEvent:         opts.ReplyEvent,
		Timeout:            opts.Timeout,
		InsecureSkipVerify: opts.InsecureSkipVerify,
	}, c.Snapshot())
}
