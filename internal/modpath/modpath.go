// Package modpath converts between slash separated module paths such as
// "cart/items" and the []string form used by the collection.
package modpath

import (
	"errors"
	"fmt"
	"strings"
)

// Separator joins module keys in a path string.
const Separator = "/"

// ErrInvalidPath is returned for paths that cannot name a module.
var ErrInvalidPath = errors.New("invalid module path")

// isValidSegment checks for undesirable but technically valid keys.
func isValidSegment(key string) bool {
	return key != "" && key != "." && key != ".."
}

// Parse splits a path string into module keys. The empty string is the root
// and yields an empty path.
func Parse(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}

	segments := strings.Split(raw, Separator)
	for i, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("%w %q: empty segment at position %d", ErrInvalidPath, raw, i)
		}
		if !isValidSegment(seg) {
			return nil, fmt.Errorf("%w %q: invalid segment %q", ErrInvalidPath, raw, seg)
		}
	}
	return segments, nil
}

// String is the inverse of Parse.
func String(path []string) string {
	return strings.Join(path, Separator)
}
