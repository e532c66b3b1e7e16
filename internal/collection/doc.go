// Package collection is the registration engine that turns nested raw
// definitions into a module.Node tree and keeps it in sync.
//
// A Collection owns one tree. It resolves paths ([]string of child keys) into
// nodes, computes the namespace prefix of a path, registers and unregisters
// modules at runtime, hot-swaps definitions with Update, and flattens the tree
// into namespace-qualified getter, mutation and action listings using the
// traversal primitives of package module.
//
// Unlike the tree itself, a Collection is safe for concurrent use: every
// method holds the collection's lock for the whole mutate-or-read sequence.
//
// Each Collection gets a module.RuntimeID at construction. Nodes store only
// that identifier; Lookup resolves it back to the live Collection until Close
// is called.
package collection
