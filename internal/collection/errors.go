package collection

import "errors"

var (
	// ErrEmptyPath is returned when an operation needs a non-root path.
	ErrEmptyPath = errors.New("module path must not be empty")

	// ErrParentNotFound is returned by Register when the parent path does not
	// resolve to a module.
	ErrParentNotFound = errors.New("parent module not found")

	// ErrNotDynamic is returned by Unregister for modules that were part of
	// the definition the collection was created with.
	ErrNotDynamic = errors.New("module was not registered dynamically")

	// ErrReloadRequired is returned by Update when the new definition adds a
	// nested module that does not exist yet. Hot update cannot create
	// modules; the collection has to be rebuilt.
	ErrReloadRequired = errors.New("new nested module requires a full reload")
)
