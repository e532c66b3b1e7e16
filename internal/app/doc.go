// Package app wires the statetree components together: it builds the handler
// registry, loads definitions into a collection and exposes the operations
// the CLI offers (inspect, export, watch, publish). It is decoupled from any
// specific entrypoint.
package app
