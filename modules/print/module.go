package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/vk/statetree/internal/ctxlog"
	"github.com/vk/statetree/internal/module"
	"github.com/vk/statetree/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed lines; nil means os.Stdout.
	Out io.Writer
}

// Print returns an action that writes the payload to w, one key per line
// when it is a mapping.
func Print(w io.Writer) module.Action {
	return func(ctx context.Context, _ *module.ActionContext, payload any) (any, error) {
		ctxlog.FromContext(ctx).Info("Printing payload.")

		m, ok := payload.(map[string]any)
		if !ok {
			if payload == nil {
				_, err := fmt.Fprintln(w, "      (null)")
				return nil, err
			}
			_, err := fmt.Fprintf(w, "      %v\n", payload)
			return nil, err
		}

		// Sort keys for consistent output
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "      %s = %q\n", k, fmt.Sprint(m[k])); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
}

// Register registers the handler with the registry.
func (m *Module) Register(r *registry.Registry) {
	w := m.Out
	if w == nil {
		w = os.Stdout
	}
	r.RegisterAction("Print", Print(w))
}
