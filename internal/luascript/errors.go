package luascript

import "errors"

var (
	// ErrClosed is returned when calling into a closed script.
	ErrClosed = errors.New("lua script is closed")

	// ErrInvalidScript is returned when a script does not evaluate to a
	// table of handler sections.
	ErrInvalidScript = errors.New("invalid lua script")
)
