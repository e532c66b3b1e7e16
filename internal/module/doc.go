// Package module implements the hierarchical module tree that backs a
// centralized state container.
//
// A Node is built from an author-supplied RawDefinition: it resolves the
// definition's state exactly once, keeps the definition around for later
// traversal, and owns a registry of child nodes keyed by string. The package
// provides structure and traversal only. Turning a path into a tree walk,
// building namespaced lookup tables, and deciding when to hot-reload all
// belong to the caller (see internal/collection).
//
// # Ordering
//
// Every iteration entry point (ForEachChild, ForEachGetter, ForEachAction,
// ForEachMutation) visits entries in insertion order. Callers that resolve
// key conflicts with last-writer-wins rely on this, so tables are never
// sorted.
//
// # Concurrency
//
// Nothing in this package locks. Structural changes (AddChild, RemoveChild,
// Update) must be serialized by the owner of the tree relative to any reads.
package module
