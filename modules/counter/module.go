package counter

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/vk/statetree/internal/module"
	"github.com/vk/statetree/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// ErrNotANumber is returned when a payload cannot be used as a step.
var ErrNotANumber = errors.New("payload is not a number")

// NewCounter builds the state of one counter.
func NewCounter() map[string]any {
	return map[string]any{"count": float64(0)}
}

// Increment adds the payload, or 1 when there is none.
func Increment(state map[string]any, payload any) {
	step, err := stepOf(payload)
	if err != nil {
		return
	}
	state["count"] = count(state) + step
}

// Decrement subtracts the payload, or 1 when there is none.
func Decrement(state map[string]any, payload any) {
	step, err := stepOf(payload)
	if err != nil {
		return
	}
	state["count"] = count(state) - step
}

// Reset sets the count back to zero.
func Reset(state map[string]any, _ any) {
	state["count"] = float64(0)
}

// Doubled returns twice the count.
func Doubled(state, _, _, _ map[string]any) any {
	return count(state) * 2
}

// IsPositive reports whether the count is above zero.
func IsPositive(state, _, _, _ map[string]any) any {
	return count(state) > 0
}

// IncrementIfOdd commits an increment only when the current count is odd.
func IncrementIfOdd(_ context.Context, ac *module.ActionContext, payload any) (any, error) {
	if _, err := stepOf(payload); err != nil {
		return nil, err
	}
	if math.Mod(count(ac.State), 2) == 0 {
		return false, nil
	}
	ac.Commit("Increment", payload)
	return true, nil
}

// IncrementAsync waits for ctx to allow it, then commits an increment.
func IncrementAsync(ctx context.Context, ac *module.ActionContext, payload any) (any, error) {
	if _, err := stepOf(payload); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ac.Commit("Increment", payload)
	return count(ac.State), nil
}

func count(state map[string]any) float64 {
	n, _ := toFloat(state["count"])
	return n
}

func stepOf(payload any) (float64, error) {
	if payload == nil {
		return 1, nil
	}
	n, ok := toFloat(payload)
	if !ok {
		return 0, fmt.Errorf("%w: %v (%T)", ErrNotANumber, payload, payload)
	}
	return n, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

// Register registers the counter handlers with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStateFactory("NewCounter", NewCounter)
	r.RegisterMutation("Increment", Increment)
	r.RegisterMutation("Decrement", Decrement)
	r.RegisterMutation("Reset", Reset)
	r.RegisterGetter("Doubled", Doubled)
	r.RegisterGetter("IsPositive", IsPositive)
	r.RegisterAction("IncrementIfOdd", IncrementIfOdd)
	r.RegisterAction("IncrementAsync", IncrementAsync)
}
