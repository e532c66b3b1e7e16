package module

import "fmt"

// Node is one module in the tree.
type Node struct {
	Children

	runtime RuntimeID
	raw     *RawDefinition
	state   map[string]any
}

// New builds a node from raw. The node keeps raw itself: Namespaced reads
// through to it and Update writes into it, so nodes built from the same
// definition see each other's updates. A nil raw is an empty definition.
func New(raw *RawDefinition, runtime RuntimeID) (*Node, error) {
	if raw == nil {
		raw = &RawDefinition{}
	}

	state, err := raw.State.resolve()
	if err != nil {
		return nil, fmt.Errorf("building module: %w", err)
	}

	return &Node{
		runtime: runtime,
		raw:     raw,
		state:   state,
	}, nil
}

// Namespaced reports whether the node's entries are addressed with a path
// prefix.
func (n *Node) Namespaced() bool {
	return n.raw.Namespaced
}

// State returns the node's state map. It is never nil.
func (n *Node) State() map[string]any {
	return n.state
}

// Raw returns the node's current definition.
func (n *Node) Raw() *RawDefinition {
	return n.raw
}

// Runtime returns the identifier of the owning container.
func (n *Node) Runtime() RuntimeID {
	return n.runtime
}

// Update swaps in a new definition without touching state or children.
//
// Namespaced is always overwritten. Getters, mutations and actions are only
// replaced when raw supplies a non-empty table for them; otherwise the
// current ones stay. There is no way to clear a table through Update.
func (n *Node) Update(raw *RawDefinition) {
	if raw == nil {
		n.raw.Namespaced = false
		return
	}

	n.raw.Namespaced = raw.Namespaced
	if raw.Actions.Len() > 0 {
		n.raw.Actions = raw.Actions
	}
	if raw.Mutations.Len() > 0 {
		n.raw.Mutations = raw.Mutations
	}
	if raw.Getters.Len() > 0 {
		n.raw.Getters = raw.Getters
	}
}
