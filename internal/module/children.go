package module

// Children is the keyed registry of a node's direct children. The zero value
// is ready to use. Keys are plain strings; none are reserved.
type Children struct {
	table Table[*Node]
}

// AddChild stores child under key, replacing any previous child silently.
// Whatever hung below a replaced child is dropped with it.
func (c *Children) AddChild(key string, child *Node) {
	c.table.Set(key, child)
}

// RemoveChild drops the child under key. Missing keys are ignored.
func (c *Children) RemoveChild(key string) {
	c.table.Delete(key)
}

// GetChild returns the child under key and whether it exists.
func (c *Children) GetChild(key string) (*Node, bool) {
	return c.table.Get(key)
}

// HasChild reports whether a child is stored under key.
func (c *Children) HasChild(key string) bool {
	return c.table.Has(key)
}

// ChildCount returns the number of direct children.
func (c *Children) ChildCount() int {
	return c.table.Len()
}
