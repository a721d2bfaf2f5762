// Package effects implements centralized state mutation via the Apply function.
// Every effect type is one atomic operation. No logic in effects.
package effects

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/glyphcore/engine/ids"
	"github.com/nathoo/glyphcore/engine/state"
	"github.com/nathoo/glyphcore/types"
)

// Context carries the command context needed for template interpolation.
type Context struct {
	Verb   string
	Object string
	Glyph  *types.Glyph // glyph the command acted on, if any
}

// Apply applies a list of effects to the save state, mutating it.
// Returns events emitted and output text collected.
func Apply(s *types.State, defs *state.Defs, effects []types.Effect, ctx Context) ([]types.Event, []string) {
	var events []types.Event
	var output []string

	for _, eff := range effects {
		switch eff.Type {
		case "say":
			text, _ := eff.Params["text"].(string)
			output = append(output, interpolate(text, s, ctx))

		case "set_flag":
			flag, _ := eff.Params["flag"].(string)
			value, _ := eff.Params["value"].(bool)
			s.Flags[flag] = value
			events = append(events, types.Event{
				Type: "flag_changed",
				Data: map[string]any{"flag": flag, "value": value},
			})

		case "inc_counter":
			counter, _ := eff.Params["counter"].(string)
			amount := toInt(eff.Params["amount"])
			s.Counters[counter] += amount

		case "set_counter":
			counter, _ := eff.Params["counter"].(string)
			value := toInt(eff.Params["value"])
			s.Counters[counter] = value

		case "set_value":
			name, _ := eff.Params["name"].(string)
			s.Values[name] = toFloat(eff.Params["value"])

		case "set_level":
			s.Level = types.LevelInfo{
				Actual: toInt(eff.Params["actual"]),
				Raw:    toInt(eff.Params["raw"]),
			}

		case "set_best_level":
			s.BestGlyphLevel = toInt(eff.Params["level"])

		case "set_pending":
			pending, _ := eff.Params["glyphs"].([]types.Glyph)
			s.Pending = pending

		case "insert_glyph":
			g, ok := eff.Params["glyph"].(types.Glyph)
			if !ok {
				continue
			}
			coll := types.CollectionInventory
			if c, _ := eff.Params["collection"].(string); c == string(types.CollectionActive) {
				coll = types.CollectionActive
			}
			g = ids.Insert(s, coll, g)
			events = append(events, types.Event{
				Type: "glyph_kept",
				Data: map[string]any{"id": g.ID, "type": g.Type, "level": g.Level, "collection": string(coll)},
			})

		case "equip_glyph":
			id := toUint(eff.Params["id"])
			if ids.Move(s, id, types.CollectionActive) {
				events = append(events, types.Event{
					Type: "glyph_equipped",
					Data: map[string]any{"id": id},
				})
			}

		case "unequip_glyph":
			id := toUint(eff.Params["id"])
			if ids.Move(s, id, types.CollectionInventory) {
				events = append(events, types.Event{
					Type: "glyph_unequipped",
					Data: map[string]any{"id": id},
				})
			}

		case "delete_glyph":
			id := toUint(eff.Params["id"])
			if ids.Remove(s, id) {
				events = append(events, types.Event{
					Type: "glyph_deleted",
					Data: map[string]any{"id": id},
				})
			}

		case "reseed":
			state.Reseed(s, uint32(toUint(eff.Params["seed"])))

		case "emit_event":
			event, _ := eff.Params["event"].(string)
			events = append(events, types.Event{
				Type: event,
				Data: map[string]any{},
			})

		case "stop":
			return events, output

		default:
			// Unknown effect type: ignored.
		}
	}

	return events, output
}

// interpolate replaces template variables in text.
func interpolate(text string, s *types.State, ctx Context) string {
	r := strings.NewReplacer(
		"{verb}", ctx.Verb,
		"{object}", ctx.Object,
		"{turn}", strconv.Itoa(s.TurnCount),
		"{best}", strconv.Itoa(s.BestGlyphLevel),
		"{active}", strconv.Itoa(len(s.Active)),
		"{inventory}", strconv.Itoa(len(s.Inventory)),
	)
	text = r.Replace(text)

	if ctx.Glyph != nil && strings.Contains(text, "{glyph.") {
		g := ctx.Glyph
		r := strings.NewReplacer(
			"{glyph.id}", strconv.FormatUint(g.ID, 10),
			"{glyph.type}", g.Type,
			"{glyph.level}", strconv.Itoa(g.Level),
			"{glyph.strength}", fmt.Sprintf("%.2f", g.Strength),
		)
		text = r.Replace(text)
	}
	return text
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	case uint64:
		return int(n)
	default:
		return 0
	}
}

func toUint(v any) uint64 {
	switch n := v.(type) {
	case uint64:
		return n
	case int:
		if n < 0 {
			return 0
		}
		return uint64(n)
	case float64:
		if n < 0 {
			return 0
		}
		return uint64(n)
	case uint32:
		return uint64(n)
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
