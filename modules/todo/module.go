package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/statetree/internal/module"
	"github.com/vk/statetree/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// ErrInvalidPayload is returned by actions given a payload of the wrong shape.
var ErrInvalidPayload = errors.New("invalid todo payload")

// Item fields as stored in state.
const (
	fieldID   = "id"
	fieldText = "text"
	fieldDone = "done"
)

// NewTodoList builds the state of an empty list.
func NewTodoList() map[string]any {
	return map[string]any{"items": []any{}, "next_id": float64(1)}
}

// AddTodo appends an item. The payload is the item text; blank text is
// ignored.
func AddTodo(state map[string]any, payload any) {
	text, _ := payload.(string)
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	id, _ := state["next_id"].(float64)
	if id == 0 {
		id = 1
	}
	state["items"] = append(items(state), map[string]any{fieldID: id, fieldText: text, fieldDone: false})
	state["next_id"] = id + 1
}

// ToggleTodo flips the done flag of the item with the payload id.
func ToggleTodo(state map[string]any, payload any) {
	for _, item := range items(state) {
		if m, ok := item.(map[string]any); ok && sameID(m[fieldID], payload) {
			done, _ := m[fieldDone].(bool)
			m[fieldDone] = !done
		}
	}
}

// RemoveTodo drops the item with the payload id.
func RemoveTodo(state map[string]any, payload any) {
	state["items"] = filter(items(state), func(m map[string]any) bool { return !sameID(m[fieldID], payload) })
}

// ClearCompleted drops every done item.
func ClearCompleted(state map[string]any, _ any) {
	state["items"] = filter(items(state), func(m map[string]any) bool {
		done, _ := m[fieldDone].(bool)
		return !done
	})
}

// DoneCount returns the number of done items.
func DoneCount(state, _, _, _ map[string]any) any {
	n := 0
	for _, item := range items(state) {
		if m, ok := item.(map[string]any); ok && m[fieldDone] == true {
			n++
		}
	}
	return n
}

// Remaining returns the texts of the items still open.
func Remaining(state, _, _, _ map[string]any) any {
	out := []string{}
	for _, item := range items(state) {
		if m, ok := item.(map[string]any); ok && m[fieldDone] != true {
			text, _ := m[fieldText].(string)
			out = append(out, text)
		}
	}
	return out
}

// AddTodos commits AddTodo for each text of a list payload and returns how
// many were committed.
func AddTodos(ctx context.Context, ac *module.ActionContext, payload any) (any, error) {
	texts, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: want a list of texts, got %T", ErrInvalidPayload, payload)
	}
	n := 0
	for _, t := range texts {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		text, ok := t.(string)
		if !ok {
			return n, fmt.Errorf("%w: item %d is %T, not a string", ErrInvalidPayload, n, t)
		}
		ac.Commit("AddTodo", text)
		n++
	}
	return n, nil
}

func items(state map[string]any) []any {
	list, _ := state["items"].([]any)
	return list
}

func filter(list []any, keep func(map[string]any) bool) []any {
	out := make([]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok && !keep(m) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func sameID(id, payload any) bool {
	a, ok := id.(float64)
	if !ok {
		return false
	}
	switch p := payload.(type) {
	case float64:
		return a == p
	case int:
		return a == float64(p)
	case int64:
		return a == float64(p)
	default:
		return false
	}
}

// Register registers the todo handlers with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStateFactory("NewTodoList", NewTodoList)
	r.RegisterMutation("AddTodo", AddTodo)
	r.RegisterMutation("ToggleTodo", ToggleTodo)
	r.RegisterMutation("RemoveTodo", RemoveTodo)
	r.RegisterMutation("ClearCompleted", ClearCompleted)
	r.RegisterGetter("DoneCount", DoneCount)
	r.RegisterGetter("Remaining", Remaining)
	r.RegisterAction("AddTodos", AddTodos)
}
