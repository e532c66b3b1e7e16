package env_vars

import (
	"os"
	"slices"
	"strings"

	"github.com/vk/statetree/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// NewEnvironment builds a state holding the process environment under
// "vars", read at the moment the module instance is created.
func NewEnvironment() map[string]any {
	vars := make(map[string]any)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			vars[pair[0]] = pair[1]
		}
	}
	return map[string]any{"vars": vars}
}

// VarNames returns the sorted names of the captured variables.
func VarNames(state, _, _, _ map[string]any) any {
	vars, _ := state["vars"].(map[string]any)
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Register registers the handlers with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStateFactory("NewEnvironment", NewEnvironment)
	r.RegisterGetter("VarNames", VarNames)
}
