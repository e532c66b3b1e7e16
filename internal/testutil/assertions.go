package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertModuleRegistered checks the log output within a HarnessResult to
// confirm that the module at path (e.g. "cart/items") was built.
func AssertModuleRegistered(t *testing.T, result *HarnessResult, path string) {
	t.Helper()

	expectedLogSubstring := fmt.Sprintf(`msg="Registering module." path=%s `, path)

	require.True(t,
		strings.Contains(result.LogOutput, expectedLogSubstring),
		"expected log output for module %q was not found in logs", path,
	)
}
