package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/statetree/internal/app"
	"github.com/vk/statetree/internal/registry"
)

// Fixture directories inside the harness root. Test files are given relative
// to the root, e.g. "definitions/store.hcl" or "lua/cart.lua".
const (
	DefinitionsDir = "definitions"
	LuaDir         = "lua"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output    *app.SafeBuffer
	LogOutput string
	Err       error
	App       *app.App
	Root      string
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, modules...)
}

// RunIntegrationTestWithContext writes files to a temporary root, builds an
// App over them and loads the definitions. Startup and load errors are
// returned in the result rather than failing the test.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, DefinitionsDir), 0o755))

	hasLua := false
	for name, content := range files {
		WriteFile(t, root, name, content)
		if strings.HasPrefix(filepath.ToSlash(name), LuaDir+"/") {
			hasLua = true
		}
	}

	cfg := app.Config{
		DefinitionPath: filepath.Join(root, DefinitionsDir),
		LogLevel:       "debug",
		LogFormat:      "text",
	}
	if hasLua {
		cfg.LuaScripts = []string{filepath.Join(root, LuaDir)}
	}
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	out := &app.SafeBuffer{}
	logBuffer := &app.SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("STATETREE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	testApp, err := app.NewApp(ctx, out, logBuffer, appConfig, modules...)
	if err != nil {
		return &HarnessResult{Output: out, LogOutput: logBuffer.String(), Err: err, Root: root}
	}
	t.Cleanup(testApp.Close)

	loadErr := testApp.Load(ctx)
	return &HarnessResult{
		Output:    out,
		LogOutput: logBuffer.String(),
		Err:       loadErr,
		App:       testApp,
		Root:      root,
	}
}

// WriteFile writes content to root/name, creating parent directories.
func WriteFile(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
