package collection

import (
	"slices"

	"github.com/vk/statetree/internal/module"
)

// Entry is one getter, mutation or action as seen from the container: its
// namespace-qualified type and where it was defined.
type Entry struct {
	Type      string       `json:"type"`
	Key       string       `json:"key"`
	Namespace string       `json:"namespace"`
	Path      []string     `json:"path"`
	Node      *module.Node `json:"-"`
}

// NamespaceEntry maps a namespace prefix to the namespaced module that owns it.
type NamespaceEntry struct {
	Namespace string   `json:"namespace"`
	Path      []string `json:"path"`
}

// Tables is the flattened view of a tree, in traversal order: a node's own
// entries come before its children's, children in insertion order.
type Tables struct {
	// Getters holds one entry per type. When two modules define the same
	// type, the one visited later wins and the loser moves to Overridden.
	Getters    []Entry `json:"getters"`
	Overridden []Entry `json:"overridden,omitempty"`

	// Mutations and Actions keep every entry; several modules may answer
	// the same type.
	Mutations []Entry `json:"mutations"`
	Actions   []Entry `json:"actions"`

	// Namespaces lists namespaced modules. A namespace claimed twice keeps
	// the later module, like getters.
	Namespaces []NamespaceEntry `json:"namespaces"`
}

// Tables walks the tree and builds the flattened listings. Nothing is
// invoked.
func (c *Collection) Tables() *Tables {
	c.mu.RLock()
	defer c.mu.RUnlock()

	w := &tableWalker{
		getters:    module.NewTable[Entry](),
		namespaces: module.NewTable[NamespaceEntry](),
		out:        &Tables{},
	}
	w.walk(nil, "", c.root)

	for _, e := range w.getters.All() {
		w.out.Getters = append(w.out.Getters, e)
	}
	for _, ns := range w.namespaces.All() {
		w.out.Namespaces = append(w.out.Namespaces, ns)
	}
	return w.out
}

type tableWalker struct {
	getters    *module.Table[Entry]
	namespaces *module.Table[NamespaceEntry]
	out        *Tables
}

func (w *tableWalker) walk(path []string, namespace string, node *module.Node) {
	if node.Namespaced() {
		w.namespaces.Delete(namespace)
		w.namespaces.Set(namespace, NamespaceEntry{Namespace: namespace, Path: path})
	}

	entry := func(key string) Entry {
		return Entry{
			Type:      namespace + key,
			Key:       key,
			Namespace: namespace,
			Path:      path,
			Node:      node,
		}
	}

	node.ForEachMutation(func(key string, _ module.Mutation) {
		w.out.Mutations = append(w.out.Mutations, entry(key))
	})
	node.ForEachAction(func(key string, _ module.Action) {
		w.out.Actions = append(w.out.Actions, entry(key))
	})
	node.ForEachGetter(func(key string, _ module.Getter) {
		e := entry(key)
		if prev, ok := w.getters.Get(e.Type); ok {
			w.out.Overridden = append(w.out.Overridden, prev)
			w.getters.Delete(e.Type)
		}
		w.getters.Set(e.Type, e)
	})

	node.ForEachChild(func(key string, child *module.Node) {
		childNamespace := namespace
		if child.Namespaced() {
			childNamespace += key + "/"
		}
		w.walk(append(slices.Clone(path), key), childNamespace, child)
	})
}
