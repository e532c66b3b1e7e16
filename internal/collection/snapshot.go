package collection

import (
	"maps"
	"slices"

	"github.com/vk/statetree/internal/module"
)

// Snapshot is a serializable description of a tree.
type Snapshot struct {
	Runtime string       `json:"runtime"`
	Root    NodeSnapshot `json:"root"`
}

// NodeSnapshot describes one node. State is a shallow copy.
type NodeSnapshot struct {
	Key        string         `json:"key"`
	Path       []string       `json:"path"`
	Namespace  string         `json:"namespace"`
	Namespaced bool           `json:"namespaced"`
	Dynamic    bool           `json:"dynamic"`
	State      map[string]any `json:"state"`
	Getters    []string       `json:"getters,omitempty"`
	Mutations  []string       `json:"mutations,omitempty"`
	Actions    []string       `json:"actions,omitempty"`
	Children   []NodeSnapshot `json:"children,omitempty"`
}

// Snapshot captures the current tree.
func (c *Collection) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		Runtime: c.id.String(),
		Root:    c.snapshotNode("", []string{}, "", c.root),
	}
}

func (c *Collection) snapshotNode(key string, path []string, namespace string, node *module.Node) NodeSnapshot {
	snap := NodeSnapshot{
		Key:        key,
		Path:       path,
		Namespace:  namespace,
		Namespaced: node.Namespaced(),
		Dynamic:    c.isDynamic(path),
		State:      maps.Clone(node.State()),
		Getters:    node.Raw().Getters.Keys(),
		Mutations:  node.Raw().Mutations.Keys(),
		Actions:    node.Raw().Actions.Keys(),
	}
	node.ForEachChild(func(childKey string, child *module.Node) {
		childNamespace := namespace
		if child.Namespaced() {
			childNamespace += childKey + "/"
		}
		snap.Children = append(snap.Children,
			c.snapshotNode(childKey, append(slices.Clone(path), childKey), childNamespace, child))
	})
	return snap
}
