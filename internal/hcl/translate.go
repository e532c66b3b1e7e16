package hcl

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/statetree/internal/ctxlog"
	"github.com/vk/statetree/internal/module"
	"github.com/vk/statetree/internal/registry"
)

// Resolve binds a parsed definition tree to the handlers in reg. Every
// handler name is checked first and all missing ones are reported together.
func Resolve(ctx context.Context, def *Definition, reg *registry.Registry) (*module.RawDefinition, error) {
	if err := reg.Validate(collectRefs(def, nil)); err != nil {
		return nil, err
	}

	raw, err := translateDefinition(def, reg)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Resolved definition against registry.", "modules", countModules(def))
	return raw, nil
}

// collectRefs lists every handler name the tree uses, depth first.
func collectRefs(def *Definition, path []string) []registry.Ref {
	where := describe(path)
	var refs []registry.Ref
	if def.StateFactory != "" {
		refs = append(refs, registry.Ref{Kind: registry.KindStateFactory, Name: def.StateFactory, Where: where})
	}
	for _, b := range def.Getters {
		refs = append(refs, registry.Ref{Kind: registry.KindGetter, Name: b.Handler, Where: fmt.Sprintf("%s, getter %q", where, b.Key)})
	}
	for _, b := range def.Mutations {
		refs = append(refs, registry.Ref{Kind: registry.KindMutation, Name: b.Handler, Where: fmt.Sprintf("%s, mutation %q", where, b.Key)})
	}
	for _, b := range def.Actions {
		refs = append(refs, registry.Ref{Kind: registry.KindAction, Name: b.Handler, Where: fmt.Sprintf("%s, action %q", where, b.Key)})
	}
	for _, m := range def.Modules {
		refs = append(refs, collectRefs(m, append(path[:len(path):len(path)], m.Key))...)
	}
	return refs
}

func describe(path []string) string {
	if len(path) == 0 {
		return "store"
	}
	return fmt.Sprintf("module %q", strings.Join(path, "/"))
}

// translateDefinition converts a validated definition into the core model.
// Tables are only allocated for sections that declare entries.
func translateDefinition(def *Definition, reg *registry.Registry) (*module.RawDefinition, error) {
	raw := &module.RawDefinition{Namespaced: def.Namespaced}

	state, err := translateState(def, reg)
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", def.Key, err)
	}
	raw.State = state

	if len(def.Getters) > 0 {
		raw.Getters = module.NewTable[module.Getter]()
		for _, b := range def.Getters {
			fn, _ := reg.Getter(b.Handler)
			raw.Getters.Set(b.Key, fn)
		}
	}
	if len(def.Mutations) > 0 {
		raw.Mutations = module.NewTable[module.Mutation]()
		for _, b := range def.Mutations {
			fn, _ := reg.Mutation(b.Handler)
			raw.Mutations.Set(b.Key, fn)
		}
	}
	if len(def.Actions) > 0 {
		raw.Actions = module.NewTable[module.Action]()
		for _, b := range def.Actions {
			fn, _ := reg.Action(b.Handler)
			raw.Actions.Set(b.Key, fn)
		}
	}
	if len(def.Modules) > 0 {
		raw.Modules = module.NewTable[*module.RawDefinition]()
		for _, m := range def.Modules {
			child, err := translateDefinition(m, reg)
			if err != nil {
				return nil, err
			}
			raw.Modules.Set(m.Key, child)
		}
	}

	return raw, nil
}

func translateState(def *Definition, reg *registry.Registry) (module.StateSource, error) {
	if def.StateFactory != "" {
		fn, _ := reg.StateFactory(def.StateFactory)
		return module.StateFactory(fn), nil
	}
	if def.State.IsNull() {
		return module.StateSource{}, nil
	}

	// Convert once up front so a bad literal fails the load, not a later
	// registration.
	m, err := stateMap(def.State)
	if err != nil {
		return module.StateSource{}, err
	}
	if !def.FreshState {
		return module.StaticState(m), nil
	}

	literal := def.State
	return module.StateFactory(func() map[string]any {
		fresh, _ := stateMap(literal)
		return fresh
	}), nil
}
