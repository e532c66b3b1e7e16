package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/statetree/internal/testutil"
)

// Test for: config merges
func TestCLI_MergesHCL_FromDirectoryPath(t *testing.T) {
	// --- Arrange ---
	// The store lives in one file, an extra top-level module in another.
	files := map[string]string{
		"definitions/a.hcl": `
store {
  module "cart" {
    namespaced = true
    mutations = {
      add = "NoOp"
    }
  }
}
`,
		"definitions/b.hcl": `
module "profile" {
  state = { name = "anon" }
}
`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, &testutil.NoOpModule{})

	// --- Assert ---
	require.NoError(t, result.Err)
	testutil.AssertModuleRegistered(t, result, "cart")
	testutil.AssertModuleRegistered(t, result, "profile")

	var keys []string
	for _, child := range result.App.Collection().Snapshot().Root.Children {
		keys = append(keys, child.Key)
	}
	assert.Equal(t, []string{"cart", "profile"}, keys)
}

// Test for: a second store block is rejected
func TestCLI_RejectsSecondStoreBlock(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"definitions/a.hcl": "store {\n}\n",
		"definitions/b.hcl": "store {\n}\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, &testutil.NoOpModule{})

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "Duplicate store block")
}
