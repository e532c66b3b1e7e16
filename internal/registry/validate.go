package registry

import (
	"fmt"
	"strings"
)

// Kind names the handler table a reference points into.
type Kind string

const (
	KindGetter       Kind = "getter"
	KindMutation     Kind = "mutation"
	KindAction       Kind = "action"
	KindStateFactory Kind = "state factory"
)

// Ref is a handler name used by a definition.
type Ref struct {
	Kind Kind
	Name string
	// Where describes the use site, e.g. `module "cart", getter "total"`.
	Where string
}

// Has reports whether the handler a reference points to is registered.
func (r *Registry) Has(ref Ref) bool {
	switch ref.Kind {
	case KindGetter:
		_, ok := r.getters[ref.Name]
		return ok
	case KindMutation:
		_, ok := r.mutations[ref.Name]
		return ok
	case KindAction:
		_, ok := r.actions[ref.Name]
		return ok
	case KindStateFactory:
		_, ok := r.factories[ref.Name]
		return ok
	}
	return false
}

// Validate performs a strict check that every referenced handler exists and
// reports all missing ones at once.
func (r *Registry) Validate(refs []Ref) error {
	var errs []string
	for _, ref := range refs {
		if !r.Has(ref) {
			errs = append(errs, fmt.Sprintf("%s: %s %q is not registered", ref.Where, ref.Kind, ref.Name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}
