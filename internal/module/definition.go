package module

import (
	"context"

	"github.com/google/uuid"
)

// Getter derives a value from a module's local state and getters and from the
// root state and getters of the container.
type Getter func(state, getters, rootState, rootGetters map[string]any) any

// Mutation changes state synchronously.
type Mutation func(state map[string]any, payload any)

// Action performs arbitrary work and commits mutations through its context.
type Action func(ctx context.Context, ac *ActionContext, payload any) (any, error)

// ActionContext is what an Action receives about the module it belongs to.
// The container that invokes actions fills it in; this package only carries
// the shape.
type ActionContext struct {
	State       map[string]any
	Getters     map[string]any
	RootState   map[string]any
	RootGetters map[string]any

	Commit   func(mutation string, payload any)
	Dispatch func(ctx context.Context, action string, payload any) (any, error)
}

// RuntimeID identifies the container instance that owns a node. A node only
// stores it; resolving it to a container is up to whoever issued it.
type RuntimeID uuid.UUID

// NilRuntime is the zero RuntimeID, used for nodes built outside a container.
var NilRuntime RuntimeID

// NewRuntimeID returns a fresh random identifier.
func NewRuntimeID() RuntimeID {
	return RuntimeID(uuid.New())
}

func (id RuntimeID) String() string {
	return uuid.UUID(id).String()
}

// RawDefinition is the author-supplied description of one module, independent
// of where it ends up in the tree. Nil tables mean "not defined".
type RawDefinition struct {
	Namespaced bool
	State      StateSource

	Getters   *Table[Getter]
	Mutations *Table[Mutation]
	Actions   *Table[Action]

	// Modules holds nested definitions keyed by child name. Nodes never read
	// it; the registration engine walks it to build the tree.
	Modules *Table[*RawDefinition]
}

type stateKind uint8

const (
	stateAbsent stateKind = iota
	stateStatic
	stateFactory
)

// StateSource is either a plain mapping shared by every node built from the
// definition, or a factory called once per node.
type StateSource struct {
	kind    stateKind
	static  map[string]any
	factory func() map[string]any
}

// StaticState declares m as the state. Every node built from the definition
// holds the same map.
func StaticState(m map[string]any) StateSource {
	return StateSource{kind: stateStatic, static: m}
}

// StateFactory declares fn as the state constructor. Each node calls it once,
// so sibling nodes built from one definition get independent state.
func StateFactory(fn func() map[string]any) StateSource {
	return StateSource{kind: stateFactory, factory: fn}
}

// IsFactory reports whether the state is produced by a factory.
func (s StateSource) IsFactory() bool {
	return s.kind == stateFactory
}

// IsZero reports whether no state was declared.
func (s StateSource) IsZero() bool {
	return s.kind == stateAbsent
}

// resolve produces the concrete state for one node. Absent or nil state
// becomes a fresh empty map.
func (s StateSource) resolve() (map[string]any, error) {
	var state map[string]any
	switch s.kind {
	case stateFactory:
		if s.factory == nil {
			return nil, ErrInvalidStateDefinition
		}
		state = s.factory()
	case stateStatic:
		state = s.static
	}
	if state == nil {
		state = make(map[string]any)
	}
	return state, nil
}
