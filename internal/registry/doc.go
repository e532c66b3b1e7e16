// Package registry provides the central "glue" between declarative store
// definitions and Go code.
//
// Definitions (HCL files) refer to behavior by name: a getter is declared as
// `double = "DoubleCount"`. The Registry maps those names to the compiled Go
// functions (or Lua-backed ones, see internal/luascript) that implement them.
// Handler packages implement Module and register their functions at startup;
// the loader then validates every name a definition uses against the
// registry, so a typo fails the load instead of surfacing later.
package registry
