package collection

import (
	"sync"

	"github.com/vk/statetree/internal/module"
)

// instances maps live runtime identifiers to their collections.
var instances sync.Map

// Lookup returns the collection that issued id, if it is still open.
func Lookup(id module.RuntimeID) (*Collection, bool) {
	v, ok := instances.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Collection), true
}
