package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/statetree/internal/ctxlog"
	"github.com/vk/statetree/internal/module"
	"github.com/vk/statetree/internal/testutil"
)

// Test for: a Lua action committing a Lua mutation of the same script
func TestLuaHandlers_ActionCommitsMutation(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"lua/counter.lua": `
return {
  mutations = {
    Inc = function(state, payload) state.n = state.n + (payload or 1) end,
  },
  actions = {
    IncTwice = function(ctx, payload)
      ctx.commit("inc", payload)
      ctx.commit("inc", payload)
      return "done"
    end,
  },
  factories = {
    Counter = function() return { n = 0 } end,
  },
}
`,
		"definitions/store.hcl": `
store {
  module "counter" {
    state_factory = "Counter"
    mutations = {
      inc = "Inc"
    }
    actions = {
      incTwice = "IncTwice"
    }
  }
}
`,
	}
	result := testutil.RunIntegrationTest(t, files, &testutil.NoOpModule{})
	require.NoError(t, result.Err)

	node, ok := result.App.Collection().Get([]string{"counter"})
	require.True(t, ok)

	mutations := map[string]module.Mutation{}
	node.ForEachMutation(func(key string, m module.Mutation) { mutations[key] = m })
	var action module.Action
	node.ForEachAction(func(_ string, a module.Action) { action = a })
	require.NotNil(t, action)

	ac := &module.ActionContext{
		State: node.State(),
		Commit: func(name string, payload any) {
			mutations[name](node.State(), payload)
		},
	}

	// --- Act ---
	res, err := action(ctxlog.Discard(context.Background()), ac, float64(2))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "done", res)
	assert.Equal(t, float64(4), node.State()["n"])
}
