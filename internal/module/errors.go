package module

import "errors"

// ErrInvalidStateDefinition is returned by New when a definition declares its
// state as a factory but provides nothing to call.
var ErrInvalidStateDefinition = errors.New("invalid state definition")
