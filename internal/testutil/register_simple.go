package testutil

import (
	"github.com/vk/statetree/internal/module"
	"github.com/vk/statetree/internal/registry"
)

// SimpleModule is a test helper for easily creating a mock module from
// handler maps.
type SimpleModule struct {
	Getters   map[string]module.Getter
	Mutations map[string]module.Mutation
	Actions   map[string]module.Action
	Factories map[string]registry.StateFactory
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	for name, fn := range m.Getters {
		r.RegisterGetter(name, fn)
	}
	for name, fn := range m.Mutations {
		r.RegisterMutation(name, fn)
	}
	for name, fn := range m.Actions {
		r.RegisterAction(name, fn)
	}
	for name, fn := range m.Factories {
		r.RegisterStateFactory(name, fn)
	}
}
