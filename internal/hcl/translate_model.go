package hcl

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Binding ties an entry key to a registered handler name.
type Binding struct {
	Key     string
	Handler string
}

// Definition is the named, format-agnostic form of one module definition.
type Definition struct {
	// Key is the module's key under its parent; empty for the store.
	Key string

	Namespaced bool

	// State is the literal state value, cty.NilVal when not written.
	State cty.Value
	// StateFactory names a registered state factory.
	StateFactory string
	// FreshState turns the literal State into a per-instance factory.
	FreshState bool

	Getters   []Binding
	Mutations []Binding
	Actions   []Binding

	Modules []*Definition

	// DeclRange is where the block was declared.
	DeclRange hcl.Range
}

// Module returns the direct child module with the given key.
func (d *Definition) Module(key string) (*Definition, bool) {
	for _, m := range d.Modules {
		if m.Key == key {
			return m, true
		}
	}
	return nil, false
}
