// Package rules evaluates the unlock conditions that gate glyph types and
// content event handlers.
package rules

import (
	"github.com/nathoo/glyphcore/engine/state"
	"github.com/nathoo/glyphcore/types"
)

// EvalCondition evaluates a single condition against the current state.
// Unknown condition types are false.
func EvalCondition(c types.Condition, s *types.State, defs *state.Defs) bool {
	switch c.Type {
	case "flag_set":
		flag, _ := c.Params["flag"].(string)
		return state.GetFlag(s, flag)

	case "flag_not":
		flag, _ := c.Params["flag"].(string)
		return !state.GetFlag(s, flag)

	case "flag_is":
		flag, _ := c.Params["flag"].(string)
		value, _ := c.Params["value"].(bool)
		return state.GetFlag(s, flag) == value

	case "counter_gt":
		counter, _ := c.Params["counter"].(string)
		value := toInt(c.Params["value"])
		return state.GetCounter(s, counter) > value

	case "counter_lt":
		counter, _ := c.Params["counter"].(string)
		value := toInt(c.Params["value"])
		return state.GetCounter(s, counter) < value

	case "value_gt":
		name, _ := c.Params["value_name"].(string)
		v, ok := state.GetValue(s, name)
		return ok && v > toFloat(c.Params["value"])

	case "value_lt":
		name, _ := c.Params["value_name"].(string)
		v, ok := state.GetValue(s, name)
		return ok && v < toFloat(c.Params["value"])

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, s, defs)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, s *types.State, defs *state.Defs) bool {
	for _, c := range conditions {
		if !EvalCondition(c, s, defs) {
			return false
		}
	}
	return true
}

// toInt converts an any value to int, handling float64 from JSON/Lua.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
