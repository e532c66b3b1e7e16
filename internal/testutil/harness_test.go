package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/statetree/internal/module"
)

func TestRunStoreTest_NestedModules(t *testing.T) {
	// --- Arrange ---
	storeHCL := `
store {
  state_factory = "Empty"

  module "a" {
    namespaced = true
    mutations = {
      inc = "NoOp"
    }

    module "b" {
      getters = {
        count = "NoOp"
      }
    }
  }
}
`

	// --- Act ---
	result, snap := RunStoreTest(t, storeHCL)

	// --- Assert ---
	require.NoError(t, result.Err)
	require.NotNil(t, snap)
	AssertModuleRegistered(t, result, "a")
	AssertModuleRegistered(t, result, "a/b")

	require.Len(t, snap.Root.Children, 1)
	a := snap.Root.Children[0]
	assert.Equal(t, "a/", a.Namespace)
	assert.Equal(t, []string{"inc"}, a.Mutations)
	require.Len(t, a.Children, 1)
	assert.Equal(t, []string{"count"}, a.Children[0].Getters)
}

func TestRunIntegrationTest_SimpleModuleAndLua(t *testing.T) {
	// --- Arrange ---
	calls := 0
	simple := &SimpleModule{
		Mutations: map[string]module.Mutation{
			"Touch": func(map[string]any, any) { calls++ },
		},
	}
	files := map[string]string{
		"definitions/store.hcl": `
store {
  state = { n = 1 }
  getters = {
    double = "Double"
  }
  mutations = {
    touch = "Touch"
  }
}
`,
		"lua/double.lua": `
return {
  getters = {
    Double = function(state) return state.n * 2 end,
  },
}
`,
	}

	// --- Act ---
	result := RunIntegrationTest(t, files, simple)

	// --- Assert ---
	require.NoError(t, result.Err)
	root := result.App.Collection().Root()

	var doubled any
	root.ForEachGetter(func(_ string, g module.Getter) { doubled = g(root.State(), nil, root.State(), nil) })
	assert.Equal(t, float64(2), doubled)

	root.ForEachMutation(func(_ string, m module.Mutation) { m(root.State(), nil) })
	assert.Equal(t, 1, calls)
}

func TestRunIntegrationTest_LoadError(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"definitions/store.hcl": `store { getters = { x = "Unknown" } }`,
	}

	// --- Act ---
	result := RunIntegrationTest(t, files, &NoOpModule{})

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), `getter "Unknown"`)
}
