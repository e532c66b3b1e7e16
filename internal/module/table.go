package module

import (
	"iter"
	"slices"
)

// Table is a string-keyed map that remembers insertion order.
//
// Overwriting an existing key keeps its position; deleting a key and adding
// it again moves it to the end. A nil *Table behaves as an empty table for
// all read operations.
type Table[V any] struct {
	keys   []string
	values map[string]V
}

// NewTable returns an empty table.
func NewTable[V any]() *Table[V] {
	return &Table[V]{values: make(map[string]V)}
}

// Set inserts or replaces the value stored under key and returns the table
// so definitions can be written as chains.
func (t *Table[V]) Set(key string, value V) *Table[V] {
	if t.values == nil {
		t.values = make(map[string]V)
	}
	if _, exists := t.values[key]; !exists {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
	return t
}

// Get returns the value stored under key.
func (t *Table[V]) Get(key string) (V, bool) {
	if t == nil {
		var zero V
		return zero, false
	}
	v, ok := t.values[key]
	return v, ok
}

// Has reports whether key is present.
func (t *Table[V]) Has(key string) bool {
	if t == nil {
		return false
	}
	_, ok := t.values[key]
	return ok
}

// Delete removes key. Deleting a missing key is a no-op.
func (t *Table[V]) Delete(key string) {
	if t == nil {
		return
	}
	if _, ok := t.values[key]; !ok {
		return
	}
	delete(t.values, key)
	if i := slices.Index(t.keys, key); i >= 0 {
		t.keys = slices.Delete(t.keys, i, i+1)
	}
}

// Len returns the number of entries.
func (t *Table[V]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Keys returns a copy of the keys in insertion order.
func (t *Table[V]) Keys() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.keys)
}

// All iterates over the entries in insertion order. The key set is captured
// when iteration starts; keys deleted during iteration are skipped.
func (t *Table[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if t == nil {
			return
		}
		for _, key := range slices.Clone(t.keys) {
			v, ok := t.values[key]
			if !ok {
				continue
			}
			if !yield(key, v) {
				return
			}
		}
	}
}

// Range calls fn for every entry in insertion order.
func (t *Table[V]) Range(fn func(key string, value V)) {
	for key, v := range t.All() {
		fn(key, v)
	}
}
