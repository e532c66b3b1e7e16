package collection

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/statetree/internal/ctxlog"
	"github.com/vk/statetree/internal/module"
)

func testContext() context.Context {
	return ctxlog.Discard(context.Background())
}

func noopGetter(_, _, _, _ map[string]any) any { return nil }

func noopMutation(map[string]any, any) {}

func noopAction(context.Context, *module.ActionContext, any) (any, error) { return nil, nil }

// shopDefinition builds:
//
//	root
//	├── cart (namespaced)
//	│   └── items
//	└── user
func shopDefinition() *module.RawDefinition {
	items := &module.RawDefinition{
		State:   module.StateFactory(func() map[string]any { return map[string]any{"list": []any{}} }),
		Getters: module.NewTable[module.Getter]().Set("count", noopGetter),
	}
	cart := &module.RawDefinition{
		Namespaced: true,
		Mutations:  module.NewTable[module.Mutation]().Set("add", noopMutation),
		Modules:    module.NewTable[*module.RawDefinition]().Set("items", items),
	}
	user := &module.RawDefinition{
		State:   module.StaticState(map[string]any{"name": "ada"}),
		Actions: module.NewTable[module.Action]().Set("login", noopAction),
	}
	return &module.RawDefinition{
		State:   module.StaticState(map[string]any{"version": 1}),
		Modules: module.NewTable[*module.RawDefinition]().Set("cart", cart).Set("user", user),
	}
}

func newShop(t *testing.T) *Collection {
	t.Helper()
	c, err := New(testContext(), shopDefinition())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNew_BuildsNestedTree(t *testing.T) {
	c := newShop(t)

	var rootKeys []string
	c.Root().ForEachChild(func(key string, _ *module.Node) { rootKeys = append(rootKeys, key) })
	assert.Equal(t, []string{"cart", "user"}, rootKeys)

	items, ok := c.Get([]string{"cart", "items"})
	require.True(t, ok)
	assert.Equal(t, c.ID(), items.Runtime())
	assert.Contains(t, items.State(), "list")

	root, ok := c.Get(nil)
	require.True(t, ok)
	assert.Same(t, c.Root(), root)
}

func TestNew_PropagatesInvalidState(t *testing.T) {
	raw := &module.RawDefinition{
		Modules: module.NewTable[*module.RawDefinition]().Set("broken", &module.RawDefinition{
			State: module.StateFactory(nil),
		}),
	}

	c, err := New(testContext(), raw)

	require.Error(t, err)
	assert.Nil(t, c)
	assert.True(t, errors.Is(err, module.ErrInvalidStateDefinition))
	assert.Contains(t, err.Error(), `"broken"`)
}

func TestLookup_ResolvesRuntimeUntilClosed(t *testing.T) {
	c, err := New(testContext(), &module.RawDefinition{})
	require.NoError(t, err)

	got, ok := Lookup(c.Root().Runtime())
	require.True(t, ok)
	assert.Same(t, c, got)

	c.Close()
	_, ok = Lookup(c.ID())
	assert.False(t, ok)
}

func TestNamespace(t *testing.T) {
	c := newShop(t)

	cases := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"cart"}, "cart/"},
		{[]string{"cart", "items"}, "cart/"},
		{[]string{"user"}, ""},
	}
	for _, tc := range cases {
		got, ok := c.Namespace(tc.path)
		require.True(t, ok, "path %v", tc.path)
		assert.Equal(t, tc.want, got, "path %v", tc.path)
	}

	_, ok := c.Namespace([]string{"missing"})
	assert.False(t, ok)
}

func TestRegister_AttachesSubtree(t *testing.T) {
	c := newShop(t)
	ctx := testContext()

	err := c.Register(ctx, []string{"cart", "promo"}, &module.RawDefinition{
		Namespaced: true,
		Modules:    module.NewTable[*module.RawDefinition]().Set("codes", &module.RawDefinition{}),
	})
	require.NoError(t, err)

	assert.True(t, c.IsRegistered([]string{"cart", "promo", "codes"}))
	ns, ok := c.Namespace([]string{"cart", "promo", "codes"})
	require.True(t, ok)
	assert.Equal(t, "cart/promo/", ns)
}

func TestRegister_Errors(t *testing.T) {
	c := newShop(t)
	ctx := testContext()

	err := c.Register(ctx, nil, &module.RawDefinition{})
	assert.ErrorIs(t, err, ErrEmptyPath)

	err = c.Register(ctx, []string{"nope", "child"}, &module.RawDefinition{})
	assert.ErrorIs(t, err, ErrParentNotFound)

	err = c.Register(ctx, []string{"bad"}, &module.RawDefinition{State: module.StateFactory(nil)})
	assert.ErrorIs(t, err, module.ErrInvalidStateDefinition)
	assert.False(t, c.IsRegistered([]string{"bad"}), "failed registration must not attach anything")
}

func TestRegister_FailedNestedLeavesExistingModule(t *testing.T) {
	c := newShop(t)
	before, _ := c.Get([]string{"user"})

	err := c.Register(testContext(), []string{"user"}, &module.RawDefinition{
		Modules: module.NewTable[*module.RawDefinition]().Set("x", &module.RawDefinition{State: module.StateFactory(nil)}),
	})

	require.Error(t, err)
	after, ok := c.Get([]string{"user"})
	require.True(t, ok)
	assert.Same(t, before, after)
}

func TestUnregister(t *testing.T) {
	c := newShop(t)
	ctx := testContext()
	require.NoError(t, c.Register(ctx, []string{"extra"}, &module.RawDefinition{
		Modules: module.NewTable[*module.RawDefinition]().Set("inner", &module.RawDefinition{}),
	}))

	// Static modules cannot be removed.
	err := c.Unregister(ctx, []string{"cart"})
	assert.ErrorIs(t, err, ErrNotDynamic)
	assert.True(t, c.IsRegistered([]string{"cart"}))

	// Missing modules are ignored.
	assert.NoError(t, c.Unregister(ctx, []string{"ghost"}))
	assert.NoError(t, c.Unregister(ctx, []string{"ghost", "deeper"}))

	// Nested dynamic modules can be removed on their own.
	require.NoError(t, c.Unregister(ctx, []string{"extra", "inner"}))
	assert.False(t, c.IsRegistered([]string{"extra", "inner"}))

	require.NoError(t, c.Unregister(ctx, []string{"extra"}))
	assert.False(t, c.IsRegistered([]string{"extra"}))

	assert.ErrorIs(t, c.Unregister(ctx, nil), ErrEmptyPath)
}

func TestUnregister_ReplacedStaticModuleBecomesDynamic(t *testing.T) {
	c := newShop(t)
	ctx := testContext()

	require.NoError(t, c.Register(ctx, []string{"user"}, &module.RawDefinition{}))

	assert.NoError(t, c.Unregister(ctx, []string{"user"}))
	assert.False(t, c.IsRegistered([]string{"user"}))
}

func TestUpdate_HotSwapsDefinitions(t *testing.T) {
	c := newShop(t)
	ctx := testContext()
	items, _ := c.Get([]string{"cart", "items"})
	items.State()["list"] = []any{"apple"}

	next := &module.RawDefinition{
		Modules: module.NewTable[*module.RawDefinition]().Set("cart", &module.RawDefinition{
			Namespaced: false,
			Mutations:  module.NewTable[module.Mutation]().Set("clear", noopMutation),
			Modules: module.NewTable[*module.RawDefinition]().Set("items", &module.RawDefinition{
				Getters: module.NewTable[module.Getter]().Set("first", noopGetter),
			}),
		}),
	}

	require.NoError(t, c.Update(ctx, next))

	cart, _ := c.Get([]string{"cart"})
	assert.False(t, cart.Namespaced())
	assert.Equal(t, []string{"clear"}, cart.Raw().Mutations.Keys())

	itemsAfter, _ := c.Get([]string{"cart", "items"})
	assert.Same(t, items, itemsAfter)
	assert.Equal(t, []any{"apple"}, itemsAfter.State()["list"])
	assert.Equal(t, []string{"first"}, itemsAfter.Raw().Getters.Keys())

	user, _ := c.Get([]string{"user"})
	assert.Equal(t, []string{"login"}, user.Raw().Actions.Keys(), "modules absent from the update keep their definition")
}

func TestUpdate_UnknownNestedModuleRequiresReload(t *testing.T) {
	c := newShop(t)

	next := &module.RawDefinition{
		Namespaced: true,
		Modules: module.NewTable[*module.RawDefinition]().
			Set("cart", &module.RawDefinition{Namespaced: false}).
			Set("wishlist", &module.RawDefinition{}),
	}

	err := c.Update(testContext(), next)

	require.ErrorIs(t, err, ErrReloadRequired)
	assert.False(t, c.Root().Namespaced(), "rejected update must not touch the root")
	cart, _ := c.Get([]string{"cart"})
	assert.True(t, cart.Namespaced(), "rejected update must not touch existing modules")
}

func TestSnapshot_FullTree(t *testing.T) {
	// --- Arrange ---
	c := newShop(t)
	require.NoError(t, c.Register(testContext(), []string{"user", "extra"}, &module.RawDefinition{}))

	want := NodeSnapshot{
		Path:  []string{},
		State: map[string]any{"version": 1},
		Children: []NodeSnapshot{
			{
				Key:        "cart",
				Path:       []string{"cart"},
				Namespace:  "cart/",
				Namespaced: true,
				State:      map[string]any{},
				Mutations:  []string{"add"},
				Children: []NodeSnapshot{
					{
						Key:       "items",
						Path:      []string{"cart", "items"},
						Namespace: "cart/",
						State:     map[string]any{"list": []any{}},
						Getters:   []string{"count"},
					},
				},
			},
			{
				Key:     "user",
				Path:    []string{"user"},
				State:   map[string]any{"name": "ada"},
				Actions: []string{"login"},
				Children: []NodeSnapshot{
					{
						Key:     "extra",
						Path:    []string{"user", "extra"},
						Dynamic: true,
						State:   map[string]any{},
					},
				},
			},
		},
	}

	// --- Act ---
	snap := c.Snapshot()

	// --- Assert ---
	assert.Equal(t, c.ID().String(), snap.Runtime)
	if diff := cmp.Diff(want, snap.Root, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshot_StateIsCopied(t *testing.T) {
	// --- Arrange ---
	c := newShop(t)
	snap := c.Snapshot()

	// --- Act ---
	snap.Root.State["version"] = 2

	// --- Assert ---
	assert.Equal(t, 1, c.Root().State()["version"])
}
