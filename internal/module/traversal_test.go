package module

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// visit records a traversal as "key=funcPointer" pairs so function values can
// be compared.
type visit struct {
	Key string
	Ptr uintptr
}

func ptrOf(fn any) uintptr {
	return reflect.ValueOf(fn).Pointer()
}

func TestTraversal_NestedScenario(t *testing.T) {
	// --- Arrange ---
	inc := Mutation(func(state map[string]any, _ any) { state["n"] = state["n"].(int) + 1 })
	count := Getter(func(state, _, _, _ map[string]any) any { return state["n"] })

	root := newTestNode(t)
	nodeA, err := New(&RawDefinition{
		Namespaced: true,
		Mutations:  NewTable[Mutation]().Set("inc", inc),
	}, NilRuntime)
	require.NoError(t, err)
	nodeB, err := New(&RawDefinition{
		Getters: NewTable[Getter]().Set("count", count),
	}, NilRuntime)
	require.NoError(t, err)
	root.AddChild("a", nodeA)
	nodeA.AddChild("b", nodeB)

	// --- Act ---
	var rootChildren, aChildren []string
	var rootChildNodes, aChildNodes []*Node
	root.ForEachChild(func(key string, child *Node) {
		rootChildren = append(rootChildren, key)
		rootChildNodes = append(rootChildNodes, child)
	})
	nodeA.ForEachChild(func(key string, child *Node) {
		aChildren = append(aChildren, key)
		aChildNodes = append(aChildNodes, child)
	})
	var mutations, getters []visit
	nodeA.ForEachMutation(func(key string, fn Mutation) { mutations = append(mutations, visit{key, ptrOf(fn)}) })
	nodeB.ForEachGetter(func(key string, fn Getter) { getters = append(getters, visit{key, ptrOf(fn)}) })

	// --- Assert ---
	assert.Equal(t, []string{"a"}, rootChildren)
	require.Len(t, rootChildNodes, 1)
	assert.Same(t, nodeA, rootChildNodes[0])
	assert.Equal(t, []string{"b"}, aChildren)
	require.Len(t, aChildNodes, 1)
	assert.Same(t, nodeB, aChildNodes[0])
	if diff := cmp.Diff([]visit{{"inc", ptrOf(inc)}}, mutations); diff != "" {
		t.Errorf("mutations mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]visit{{"count", ptrOf(count)}}, getters); diff != "" {
		t.Errorf("getters mismatch (-want +got):\n%s", diff)
	}
}

func TestTraversal_AbsentTablesNeverVisit(t *testing.T) {
	n := newTestNode(t)

	n.ForEachGetter(func(string, Getter) { t.Fatal("getter visited") })
	n.ForEachAction(func(string, Action) { t.Fatal("action visited") })
	n.ForEachMutation(func(string, Mutation) { t.Fatal("mutation visited") })
	n.ForEachChild(func(string, *Node) { t.Fatal("child visited") })
}

func TestTraversal_DefinitionOrder(t *testing.T) {
	keys := []string{"zulu", "alpha", "mike", "bravo", "yankee"}
	getters := NewTable[Getter]()
	actions := NewTable[Action]()
	for _, k := range keys {
		getters.Set(k, noopGetter)
		actions.Set(k, noopAction)
	}
	n, err := New(&RawDefinition{Getters: getters, Actions: actions}, NilRuntime)
	require.NoError(t, err)
	for _, k := range keys {
		n.AddChild(k, newTestNode(t))
	}

	var gotGetters, gotActions, gotChildren []string
	n.ForEachGetter(func(k string, _ Getter) { gotGetters = append(gotGetters, k) })
	n.ForEachAction(func(k string, _ Action) { gotActions = append(gotActions, k) })
	n.ForEachChild(func(k string, _ *Node) { gotChildren = append(gotChildren, k) })

	assert.Equal(t, keys, gotGetters)
	assert.Equal(t, keys, gotActions)
	assert.Equal(t, keys, gotChildren)
}

func TestTraversal_ChildrenIsNotRecursive(t *testing.T) {
	root := newTestNode(t)
	mid := newTestNode(t)
	mid.AddChild("leaf", newTestNode(t))
	root.AddChild("mid", mid)

	var seen []string
	root.ForEachChild(func(k string, _ *Node) { seen = append(seen, k) })

	assert.Equal(t, []string{"mid"}, seen)
}

func TestTraversal_FollowsUpdatedDefinition(t *testing.T) {
	n, err := New(&RawDefinition{Mutations: NewTable[Mutation]().Set("old", noopMutation)}, NilRuntime)
	require.NoError(t, err)

	n.Update(&RawDefinition{Mutations: NewTable[Mutation]().Set("new", noopMutation)})

	var seen []string
	n.ForEachMutation(func(k string, _ Mutation) { seen = append(seen, k) })
	assert.Equal(t, []string{"new"}, seen)
}
