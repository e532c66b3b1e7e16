package module

// ForEachChild visits the direct children in insertion order. It does not
// recurse.
func (n *Node) ForEachChild(visit func(key string, child *Node)) {
	n.table.Range(visit)
}

// ForEachGetter visits the node's getters in definition order. It does
// nothing when the definition has no getters.
func (n *Node) ForEachGetter(visit func(key string, fn Getter)) {
	n.raw.Getters.Range(visit)
}

// ForEachAction visits the node's actions in definition order.
func (n *Node) ForEachAction(visit func(key string, fn Action)) {
	n.raw.Actions.Range(visit)
}

// ForEachMutation visits the node's mutations in definition order.
func (n *Node) ForEachMutation(visit func(key string, fn Mutation)) {
	n.raw.Mutations.Range(visit)
}
