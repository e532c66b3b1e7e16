package testutil

import (
	"testing"

	"github.com/vk/statetree/internal/collection"
	"github.com/vk/statetree/internal/registry"
)

// RunStoreTest loads a single definition file through the full app. With no
// modules given, NoOpModule is registered so handler names resolve.
func RunStoreTest(t *testing.T, storeHCL string, modules ...registry.Module) (*HarnessResult, *collection.Snapshot) {
	t.Helper()

	if len(modules) == 0 {
		modules = []registry.Module{&NoOpModule{}}
	}
	result := RunIntegrationTest(t, map[string]string{DefinitionsDir + "/store.hcl": storeHCL}, modules...)

	if result.Err != nil || result.App == nil || result.App.Collection() == nil {
		return result, nil
	}
	snap := result.App.Collection().Snapshot()
	return result, &snap
}
