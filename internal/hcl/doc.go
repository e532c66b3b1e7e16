// Package hcl loads store definitions written in HCL and turns them into
// module.RawDefinition trees.
//
// Loading happens in two stages. Parse reads one or more files into a
// Definition: a plain description that still refers to behavior by handler
// name. Resolve then validates every name against a registry.Registry and
// produces the RawDefinition the module tree is built from. Keeping the named
// form around lets Export write a definition back out as canonical HCL.
//
// A definition file looks like this:
//
//	store {
//	  state = { version = 1 }
//
//	  module "counter" {
//	    namespaced    = true
//	    state_factory = "CounterState"
//	    getters       = { double = "CounterDouble" }
//	    mutations     = { increment = "CounterIncrement" }
//	  }
//	}
//
// Entries of getters, mutations and actions, and nested module blocks, keep
// the order they are written in. Top-level module blocks may also live in
// separate files; they are appended to the store's modules in file order.
package hcl
