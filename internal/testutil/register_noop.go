package testutil

import (
	"context"

	"github.com/vk/statetree/internal/module"
	"github.com/vk/statetree/internal/registry"
)

// NoOpModule registers one handler of each kind, all named "NoOp", plus an
// "Empty" state factory. It is useful for definitions that only need to pass
// registry validation.
type NoOpModule struct{}

// Register implements the registry.Module interface.
func (m *NoOpModule) Register(r *registry.Registry) {
	r.RegisterGetter("NoOp", func(_, _, _, _ map[string]any) any { return nil })
	r.RegisterMutation("NoOp", func(map[string]any, any) {})
	r.RegisterAction("NoOp", func(context.Context, *module.ActionContext, any) (any, error) { return nil, nil })
	r.RegisterStateFactory("Empty", func() map[string]any { return map[string]any{} })
}
