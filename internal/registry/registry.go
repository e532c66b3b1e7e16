package registry

import (
	"fmt"
	"log/slog"

	"github.com/vk/statetree/internal/module"
)

// Module is the interface that all handler packages must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// StateFactory builds a fresh state map for one module instance.
type StateFactory func() map[string]any

// Registry holds all the named behavior functions for a single application
// instance.
type Registry struct {
	getters   map[string]module.Getter
	mutations map[string]module.Mutation
	actions   map[string]module.Action
	factories map[string]StateFactory
}

// New creates and initializes a new Registry instance, registering the given
// modules in order.
func New(modules ...Module) *Registry {
	r := &Registry{
		getters:   make(map[string]module.Getter),
		mutations: make(map[string]module.Mutation),
		actions:   make(map[string]module.Action),
		factories: make(map[string]StateFactory),
	}
	r.Install(modules...)
	return r
}

// Install registers every module with the registry.
func (r *Registry) Install(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// RegisterGetter registers a Go function under a getter name.
func (r *Registry) RegisterGetter(name string, fn module.Getter) {
	if _, exists := r.getters[name]; exists {
		panic(fmt.Sprintf("getter with name '%s' already registered", name))
	}
	slog.Debug("Registering getter.", "name", name)
	r.getters[name] = fn
}

// RegisterMutation registers a Go function under a mutation name.
func (r *Registry) RegisterMutation(name string, fn module.Mutation) {
	if _, exists := r.mutations[name]; exists {
		panic(fmt.Sprintf("mutation with name '%s' already registered", name))
	}
	slog.Debug("Registering mutation.", "name", name)
	r.mutations[name] = fn
}

// RegisterAction registers a Go function under an action name.
func (r *Registry) RegisterAction(name string, fn module.Action) {
	if _, exists := r.actions[name]; exists {
		panic(fmt.Sprintf("action with name '%s' already registered", name))
	}
	slog.Debug("Registering action.", "name", name)
	r.actions[name] = fn
}

// RegisterStateFactory registers a state constructor under a name.
func (r *Registry) RegisterStateFactory(name string, fn StateFactory) {
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("state factory with name '%s' already registered", name))
	}
	slog.Debug("Registering state factory.", "name", name)
	r.factories[name] = fn
}

// Getter returns the getter registered under name.
func (r *Registry) Getter(name string) (module.Getter, bool) {
	fn, ok := r.getters[name]
	return fn, ok
}

// Mutation returns the mutation registered under name.
func (r *Registry) Mutation(name string) (module.Mutation, bool) {
	fn, ok := r.mutations[name]
	return fn, ok
}

// Action returns the action registered under name.
func (r *Registry) Action(name string) (module.Action, bool) {
	fn, ok := r.actions[name]
	return fn, ok
}

// StateFactory returns the state factory registered under name.
func (r *Registry) StateFactory(name string) (StateFactory, bool) {
	fn, ok := r.factories[name]
	return fn, ok
}

// Counts returns how many handlers of each kind are registered.
func (r *Registry) Counts() (getters, mutations, actions, factories int) {
	return len(r.getters), len(r.mutations), len(r.actions), len(r.factories)
}
