// Package publish sends a one-shot snapshot of a collection to a socket.io
// endpoint.
package publish

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/statetree/internal/collection"
	"github.com/vk/statetree/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	// DefaultEvent is the event name used when none is configured.
	DefaultEvent = "statetree:snapshot"
	// DefaultTimeout bounds connecting and waiting for a reply.
	DefaultTimeout = 10 * time.Second
)

// ErrInvalidURL is returned for endpoints that are not http(s) or ws(s) URLs.
var ErrInvalidURL = errors.New("invalid publish url")

// Options configures a single publish.
type Options struct {
	URL       string
	Namespace string
	Event     string
	// ReplyEvent, when set, is awaited after emitting; the call fails if it
	// does not arrive before Timeout.
	ReplyEvent         string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

type endpoint struct {
	base string
	path string
}

// parseEndpoint splits a URL into the manager base URL and the socket.io
// path.
func parseEndpoint(raw string) (endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return endpoint{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return endpoint{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return endpoint{}, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, raw)
	}

	ep := endpoint{base: fmt.Sprintf("%s://%s", u.Scheme, u.Host), path: u.Path}
	if ep.path == "" || ep.path == "/" {
		ep.path = "/socket.io/"
	}
	return ep, nil
}

func (o Options) withDefaults() Options {
	if o.Event == "" {
		o.Event = DefaultEvent
	}
	if o.Namespace == "" {
		o.Namespace = "/"
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// payload flattens a snapshot into plain maps and slices, which is what the
// socket.io encoder expects.
func payload(snap collection.Snapshot) (map[string]any, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return out, nil
}

type opResult struct {
	reply any
	err   error
}

// Publish connects, emits snap as a single event and disconnects. It returns
// the reply payload when opts.ReplyEvent is set.
func Publish(ctx context.Context, opts Options, snap collection.Snapshot) (any, error) {
	opts = opts.withDefaults()
	logger := ctxlog.FromContext(ctx).With("url", opts.URL, "event", opts.Event)

	ep, err := parseEndpoint(opts.URL)
	if err != nil {
		return nil, err
	}
	data, err := payload(snap)
	if err != nil {
		return nil, err
	}

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(ep.path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	opCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	done := make(chan opResult, 1)
	finish := func(res opResult) {
		select {
		case done <- res:
		default:
		}
	}
	manager := socket.NewManager(ep.base, sockOpts)
	io := manager.Socket(opts.Namespace, sockOpts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	if opts.ReplyEvent != "" {
		io.Once(types.EventName(opts.ReplyEvent), func(args ...any) {
			var reply any
			if len(args) > 0 {
				reply = args[0]
			}
			finish(opResult{reply: reply})
		})
	}

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected, publishing snapshot.", "sid", io.Id())
		io.Emit(opts.Event, data)
		if opts.ReplyEvent == "" {
			finish(opResult{})
		}
	})

	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("unknown error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", errs[0])
			}
		}
		finish(opResult{err: fmt.Errorf("socket.io connection failed: %w", err)})
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return nil, fmt.Errorf("publish cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("timed out after %v publishing snapshot", opts.Timeout)
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		logger.Info("Snapshot published.")
		return res.reply, nil
	}
}
