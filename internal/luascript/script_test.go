package luascript

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/statetree/internal/ctxlog"
	"github.com/vk/statetree/internal/module"
	"github.com/vk/statetree/internal/registry"
)

const counterScript = `
local function inc(state, payload)
  state.n = state.n + (payload or 1)
end

return {
  getters = {
    Double = function(state) return state.n * 2 end,
    Broken = function(state) error("boom") end,
  },
  mutations = {
    Inc = inc,
    Push = function(state, payload)
      table.insert(state.items, payload)
    end,
    Reset = function(state)
      state.n = 0
      state.items = {}
      state.extra = nil
    end,
  },
  actions = {
    IncTwice = function(ctx, payload)
      ctx.commit("Inc", payload)
      ctx.commit("Inc", payload)
      return "done"
    end,
    Ask = function(ctx, payload)
      return ctx.dispatch("Other", payload)
    end,
    Fail = function(ctx) error("nope") end,
  },
  factories = {
    Counter = function() return { n = 0, items = {} } end,
  },
}
`

func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func loadCounter(t *testing.T) (*Script, *registry.Registry) {
	t.Helper()
	path := writeScript(t, t.TempDir(), "counter.lua", counterScript)
	s, err := Load(ctxlog.Discard(context.Background()), path)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, registry.New(s)
}

func TestScript_Register(t *testing.T) {
	_, reg := loadCounter(t)

	getters, mutations, actions, factories := reg.Counts()

	assert.Equal(t, []int{2, 3, 3, 1}, []int{getters, mutations, actions, factories})
}

func TestScript_FactoryAndMutations(t *testing.T) {
	// --- Arrange ---
	_, reg := loadCounter(t)
	factory, ok := reg.StateFactory("Counter")
	require.True(t, ok)
	inc, _ := reg.Mutation("Inc")
	push, _ := reg.Mutation("Push")
	reset, _ := reg.Mutation("Reset")
	double, _ := reg.Getter("Double")

	// --- Act ---
	state := factory()
	inc(state, nil)
	inc(state, 4.0)
	push(state, "apple")

	// --- Assert ---
	assert.Equal(t, map[string]any{"n": float64(5), "items": []any{"apple"}}, state)
	assert.Equal(t, float64(10), double(state, nil, nil, nil))

	// The same map is updated in place and keeps list shape when emptied.
	state["extra"] = true
	reset(state, nil)
	assert.Equal(t, map[string]any{"n": float64(0), "items": []any{}}, state)
}

func TestScript_FactoryReturnsIndependentMaps(t *testing.T) {
	_, reg := loadCounter(t)
	factory, _ := reg.StateFactory("Counter")

	a, b := factory(), factory()
	a["n"] = 9.0

	assert.Equal(t, float64(0), b["n"])
}

func TestScript_GetterErrorYieldsNil(t *testing.T) {
	_, reg := loadCounter(t)
	broken, _ := reg.Getter("Broken")

	assert.Nil(t, broken(map[string]any{}, nil, nil, nil))
}

func TestScript_ActionCommitsThroughContext(t *testing.T) {
	// --- Arrange ---
	_, reg := loadCounter(t)
	incTwice, _ := reg.Action("IncTwice")
	inc, _ := reg.Mutation("Inc")
	state := map[string]any{"n": 1.0}
	ac := &module.ActionContext{
		State:  state,
		Commit: func(_ string, payload any) { inc(state, payload) },
	}

	// --- Act ---
	res, err := incTwice(context.Background(), ac, 2.0)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "done", res)
	assert.Equal(t, float64(5), state["n"])
}

func TestScript_ActionDispatch(t *testing.T) {
	_, reg := loadCounter(t)
	ask, _ := reg.Action("Ask")
	ac := &module.ActionContext{
		Dispatch: func(_ context.Context, typ string, payload any) (any, error) {
			return map[string]any{"type": typ, "payload": payload}, nil
		},
	}

	res, err := ask(context.Background(), ac, "hi")

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "Other", "payload": "hi"}, res)
}

func TestScript_ActionErrors(t *testing.T) {
	_, reg := loadCounter(t)

	fail, _ := reg.Action("Fail")
	_, err := fail(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")

	incTwice, _ := reg.Action("IncTwice")
	_, err = incTwice(context.Background(), &module.ActionContext{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit")
}

func TestScript_ConcurrentCalls(t *testing.T) {
	_, reg := loadCounter(t)
	double, _ := reg.Getter("Double")

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := double(map[string]any{"n": float64(i)}, nil, nil, nil)
			assert.Equal(t, float64(2*i), got)
		}()
	}
	wg.Wait()
}

func TestScript_Close(t *testing.T) {
	s, reg := loadCounter(t)
	fail, _ := reg.Action("Fail")

	s.Close()
	_, err := fail(context.Background(), nil, nil)

	require.ErrorIs(t, err, ErrClosed)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{name: "syntax error", src: "return {"},
		{name: "returns nothing", src: "local x = 1"},
		{name: "section is not a table", src: "return { getters = 1 }"},
		{name: "handler is not a function", src: "return { mutations = { Inc = 1 } }"},
		{name: "runtime error", src: "error('bad')"},
		{name: "no os library", src: "os.exit(1)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeScript(t, t.TempDir(), "bad.lua", tc.src)

			_, err := Load(ctxlog.Discard(context.Background()), path)

			require.Error(t, err)
		})
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.lua", `return { getters = { A = function() return 1 end } }`)
	writeScript(t, dir, "b.lua", `return { getters = { B = function() return 2 end } }`)
	writeScript(t, dir, "ignored.txt", `garbage`)

	scripts, err := LoadAll(ctxlog.Discard(context.Background()), dir)
	require.NoError(t, err)
	for _, s := range scripts {
		t.Cleanup(s.Close)
	}

	require.Len(t, scripts, 2)
	assert.Equal(t, filepath.Join(dir, "a.lua"), scripts[0].Name())
	reg := registry.New(scripts[0], scripts[1])
	b, ok := reg.Getter("B")
	require.True(t, ok)
	assert.Equal(t, float64(2), b(nil, nil, nil, nil))
}

func TestScript_MutationWithIntegerKeysKeepsMapShape(t *testing.T) {
	// --- Arrange ---
	path := writeScript(t, t.TempDir(), "slots.lua", `
return {
  mutations = {
    Fill = function(state, v) state[1] = v end,
  },
  factories = {
    Slots = function() return { "first" } end,
  },
}
`)
	s, err := Load(ctxlog.Discard(context.Background()), path)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	reg := registry.New(s)
	fill, ok := reg.Mutation("Fill")
	require.True(t, ok)
	slots, ok := reg.StateFactory("Slots")
	require.True(t, ok)
	state := map[string]any{}

	// --- Act ---
	fill(state, "apple")

	// --- Assert ---
	assert.Equal(t, map[string]any{"1": "apple"}, state)
	assert.Equal(t, map[string]any{"1": "first"}, slots())
}
