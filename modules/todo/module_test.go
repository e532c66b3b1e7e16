package todo

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/statetree/internal/module"
	"github.com/vk/statetree/internal/registry"
)

func TestTodoMutations(t *testing.T) {
	// --- Arrange ---
	state := NewTodoList()

	// --- Act ---
	AddTodo(state, "write tests")
	AddTodo(state, "  ")
	AddTodo(state, "ship it")
	AddTodo(state, "celebrate")
	ToggleTodo(state, 1)
	ToggleTodo(state, float64(3))
	RemoveTodo(state, 2)

	// --- Assert ---
	want := map[string]any{
		"items": []any{
			map[string]any{"id": float64(1), "text": "write tests", "done": true},
			map[string]any{"id": float64(3), "text": "celebrate", "done": true},
		},
		"next_id": float64(4),
	}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, DoneCount(state, nil, nil, nil))

	ToggleTodo(state, 3)
	ClearCompleted(state, nil)
	assert.Equal(t, []string{"celebrate"}, Remaining(state, nil, nil, nil))
}

func TestNewTodoList_Independent(t *testing.T) {
	a, b := NewTodoList(), NewTodoList()
	AddTodo(a, "x")

	assert.Empty(t, b["items"])
}

func TestAddTodos(t *testing.T) {
	// --- Arrange ---
	state := NewTodoList()
	ac := &module.ActionContext{
		State:  state,
		Commit: func(_ string, payload any) { AddTodo(state, payload) },
	}

	// --- Act ---
	n, err := AddTodos(context.Background(), ac, []any{"a", "b"})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b"}, Remaining(state, nil, nil, nil))

	_, err = AddTodos(context.Background(), ac, "a")
	require.ErrorIs(t, err, ErrInvalidPayload)

	n, err = AddTodos(context.Background(), ac, []any{"c", 1})
	require.ErrorIs(t, err, ErrInvalidPayload)
	assert.Equal(t, 1, n)
}

func TestRegister(t *testing.T) {
	r := registry.New(&Module{})

	getters, mutations, actions, factories := r.Counts()

	assert.Equal(t, []int{2, 4, 1, 1}, []int{getters, mutations, actions, factories})
}
