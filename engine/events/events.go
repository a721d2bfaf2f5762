// Package events implements single-pass event handler dispatch.
// Event handlers produce additional effects but do not recurse.
package events

import (
	"fmt"

	"github.com/nathoo/glyphcore/engine/rules"
	"github.com/nathoo/glyphcore/engine/state"
	"github.com/nathoo/glyphcore/types"
)

// Dispatch runs event handlers against the emitted events. Single pass,
// no recursion. Returns additional effects produced by matching handlers.
func Dispatch(events []types.Event, s *types.State, defs *state.Defs) []types.Effect {
	var result []types.Effect

	for _, event := range events {
		for _, handler := range defs.Handlers {
			if handler.EventType != event.Type {
				continue
			}
			if !matches(handler.Match, event.Data) {
				continue
			}
			if !rules.EvalAllConditions(handler.Conditions, s, defs) {
				continue
			}
			result = append(result, handler.Effects...)
		}
	}

	return result
}

// matches reports whether every field in want equals the event's field.
// Values are compared by their printed form so Lua numbers match Go ints.
func matches(want, data map[string]any) bool {
	for k, v := range want {
		got, ok := data[k]
		if !ok || fmt.Sprint(got) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}
