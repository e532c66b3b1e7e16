package collection

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/vk/statetree/internal/ctxlog"
	"github.com/vk/statetree/internal/module"
)

// Collection owns a module tree built from a root definition.
type Collection struct {
	mu      sync.RWMutex
	id      module.RuntimeID
	root    *module.Node
	dynamic map[string]struct{}
}

// New builds the whole tree for raw, including every nested definition in
// raw.Modules, and registers the collection for Lookup.
func New(ctx context.Context, raw *module.RawDefinition) (*Collection, error) {
	logger := ctxlog.FromContext(ctx)

	c := &Collection{
		id:      module.NewRuntimeID(),
		dynamic: make(map[string]struct{}),
	}

	root, err := c.build(ctx, nil, raw)
	if err != nil {
		return nil, err
	}
	c.root = root
	instances.Store(c.id, c)

	logger.Debug("Module collection created.", "runtime", c.id.String())
	return c, nil
}

// ID returns the runtime identifier stored in every node of the tree.
func (c *Collection) ID() module.RuntimeID {
	return c.id
}

// Close removes the collection from the Lookup registry.
func (c *Collection) Close() {
	instances.Delete(c.id)
}

// Root returns the root node.
func (c *Collection) Root() *module.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.root
}

// Get resolves path to a node. An empty path is the root.
func (c *Collection) Get(path []string) (*module.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.get(path)
}

// IsRegistered reports whether a module exists at path.
func (c *Collection) IsRegistered(path []string) bool {
	if len(path) == 0 {
		return true
	}
	_, ok := c.Get(path)
	return ok
}

// Namespace returns the prefix for entries of the module at path: the key of
// every namespaced module along the path, each followed by "/".
func (c *Collection) Namespace(path []string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.namespace(path)
}

// Register builds raw and its nested modules and attaches the result at
// path, replacing any module already there. Modules registered this way can
// later be removed with Unregister.
func (c *Collection) Register(ctx context.Context, path []string, raw *module.RawDefinition) error {
	if len(path) == 0 {
		return ErrEmptyPath
	}
	logger := ctxlog.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	parentPath, key := path[:len(path)-1], path[len(path)-1]
	parent, ok := c.get(parentPath)
	if !ok {
		return fmt.Errorf("registering %q: %w", joinPath(path), ErrParentNotFound)
	}

	node, err := c.build(ctx, slices.Clone(path), raw)
	if err != nil {
		return err
	}

	c.forgetDynamic(path)
	c.markDynamic(path, node)
	parent.AddChild(key, node)

	logger.Debug("Module registered.", "path", joinPath(path), "namespaced", node.Namespaced())
	return nil
}

// Unregister removes the dynamically registered module at path together with
// its subtree. A path that does not resolve is ignored.
func (c *Collection) Unregister(ctx context.Context, path []string) error {
	if len(path) == 0 {
		return ErrEmptyPath
	}
	logger := ctxlog.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	parent, ok := c.get(path[:len(path)-1])
	if !ok {
		return nil
	}
	key := path[len(path)-1]
	if !parent.HasChild(key) {
		return nil
	}
	if _, ok := c.dynamic[dynamicKey(path)]; !ok {
		return fmt.Errorf("unregistering %q: %w", joinPath(path), ErrNotDynamic)
	}

	parent.RemoveChild(key)
	c.forgetDynamic(path)

	logger.Debug("Module unregistered.", "path", joinPath(path))
	return nil
}

// Update hot-swaps the definitions of the whole tree with raw, walking
// raw.Modules in parallel with the existing children. State and children are
// kept. If raw names a nested module that does not exist, nothing is changed
// and ErrReloadRequired is returned.
func (c *Collection) Update(ctx context.Context, raw *module.RawDefinition) error {
	logger := ctxlog.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := checkUpdate(nil, c.root, raw); err != nil {
		logger.Warn("Hot update rejected.", "error", err)
		return err
	}
	applyUpdate(c.root, raw)

	logger.Debug("Module tree updated in place.")
	return nil
}

// build creates the node for raw and, depth first, its nested modules. The
// subtree is only returned once every level succeeded.
func (c *Collection) build(ctx context.Context, path []string, raw *module.RawDefinition) (*module.Node, error) {
	logger := ctxlog.FromContext(ctx)

	node, err := module.New(raw, c.id)
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", joinPath(path), err)
	}
	logger.Debug("Registering module.", "path", joinPath(path), "namespaced", node.Namespaced())

	if raw == nil {
		return node, nil
	}
	for key, childRaw := range raw.Modules.All() {
		child, err := c.build(ctx, append(slices.Clone(path), key), childRaw)
		if err != nil {
			return nil, err
		}
		node.AddChild(key, child)
	}
	return node, nil
}

func (c *Collection) get(path []string) (*module.Node, bool) {
	node := c.root
	for _, key := range path {
		child, ok := node.GetChild(key)
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

func (c *Collection) namespace(path []string) (string, bool) {
	var b strings.Builder
	node := c.root
	for _, key := range path {
		child, ok := node.GetChild(key)
		if !ok {
			return "", false
		}
		if child.Namespaced() {
			b.WriteString(key)
			b.WriteByte('/')
		}
		node = child
	}
	return b.String(), true
}

func (c *Collection) markDynamic(path []string, node *module.Node) {
	c.dynamic[dynamicKey(path)] = struct{}{}
	node.ForEachChild(func(key string, child *module.Node) {
		c.markDynamic(append(slices.Clone(path), key), child)
	})
}

func (c *Collection) forgetDynamic(path []string) {
	prefix := dynamicKey(path)
	for k := range c.dynamic {
		if k == prefix || strings.HasPrefix(k, prefix+pathSep) {
			delete(c.dynamic, k)
		}
	}
}

func (c *Collection) isDynamic(path []string) bool {
	_, ok := c.dynamic[dynamicKey(path)]
	return ok
}

func checkUpdate(path []string, target *module.Node, raw *module.RawDefinition) error {
	if raw == nil {
		return nil
	}
	for key, childRaw := range raw.Modules.All() {
		childPath := append(slices.Clone(path), key)
		child, ok := target.GetChild(key)
		if !ok {
			return fmt.Errorf("updating %q: %w", joinPath(childPath), ErrReloadRequired)
		}
		if err := checkUpdate(childPath, child, childRaw); err != nil {
			return err
		}
	}
	return nil
}

func applyUpdate(target *module.Node, raw *module.RawDefinition) {
	target.Update(raw)
	if raw == nil {
		return
	}
	for key, childRaw := range raw.Modules.All() {
		child, _ := target.GetChild(key)
		applyUpdate(child, childRaw)
	}
}

// pathSep separates keys in dynamic bookkeeping. Child keys are arbitrary
// strings, so "/" cannot be used.
const pathSep = "\x00"

func dynamicKey(path []string) string {
	return strings.Join(path, pathSep)
}

func joinPath(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}
	return strings.Join(path, "/")
}
