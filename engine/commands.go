package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/glyphcore/engine/generate"
	"github.com/nathoo/glyphcore/engine/ids"
	"github.com/nathoo/glyphcore/engine/numeric"
	"github.com/nathoo/glyphcore/engine/random"
	"github.com/nathoo/glyphcore/engine/state"
	"github.com/nathoo/glyphcore/types"
)

// MaxChoices caps the number of glyphs one draw may offer.
const MaxChoices = 8

// outcome is what a command handler hands back to Step.
type outcome struct {
	effects []types.Effect
	output  []string
	glyphs  []types.Glyph
	glyph   *types.Glyph
}

func say(lines ...string) outcome {
	return outcome{output: lines}
}

// run dispatches a parsed command. ok is false for unknown verbs.
func (e *Engine) run(intent types.Intent) (outcome, bool) {
	switch intent.Verb {
	case "draw":
		return e.cmdDraw(intent, types.StreamPrimary), true
	case "preview":
		return e.cmdDraw(intent, types.StreamPreview), true
	case "milestone":
		return e.cmdMilestone(intent), true
	case "starter":
		return e.cmdFixed(generate.FixedStarter, generate.FixedParams{Type: intent.Object}), true
	case "tribute":
		return e.cmdTribute(intent), true
	case "cursed":
		return e.cmdFixed(generate.FixedCursed, generate.FixedParams{}), true
	case "cosmetic":
		return e.cmdCosmetic(), true
	case "keep":
		return e.cmdKeep(intent), true
	case "equip":
		return e.cmdEquip(intent), true
	case "unequip":
		return e.cmdUnequip(intent), true
	case "delete":
		return e.cmdDelete(intent), true
	case "list":
		return e.cmdList(), true
	case "show":
		return e.cmdShow(intent), true
	case "types":
		return e.cmdTypes(), true
	case "unlock", "lock":
		return e.cmdFlag(intent), true
	case "set":
		return e.cmdSet(intent), true
	case "level":
		return e.cmdLevel(intent), true
	case "best":
		return e.cmdBest(intent), true
	case "seed":
		return e.cmdSeed(intent), true
	default:
		return outcome{}, false
	}
}

// offer makes glyphs the pending choices.
func offer(glyphs []types.Glyph, output []string) outcome {
	return outcome{
		effects: []types.Effect{
			{Type: "set_pending", Params: map[string]any{"glyphs": glyphs}},
		},
		output: output,
		glyphs: glyphs,
	}
}

func (e *Engine) cmdDraw(intent types.Intent, kind types.StreamKind) outcome {
	n := 1
	if intent.Object != "" {
		v, err := strconv.Atoi(intent.Object)
		if err != nil || v < 1 {
			return say("Draw how many?")
		}
		n = min(v, MaxChoices)
	}

	batch, err := e.Gen.Choices(kind, n, e.State.Level)
	if err != nil {
		return e.generationFailed(intent.Verb, err)
	}

	var out []string
	if batch.Fake {
		out = append(out, "Preview (nothing is committed):")
	} else if n == 1 {
		out = append(out, "You draw a glyph:")
	} else {
		out = append(out, fmt.Sprintf("You draw %d glyphs:", n))
	}
	for i, g := range batch.Glyphs {
		out = append(out, fmt.Sprintf("  %d) %s", i+1, e.Describe(g)))
	}
	if batch.Fake {
		return outcome{output: out, glyphs: batch.Glyphs}
	}
	if n > 1 {
		out = append(out, "Use 'keep <n>' to keep one.")
	} else {
		out = append(out, "Use 'keep' to keep it.")
	}
	return offer(batch.Glyphs, out)
}

func (e *Engine) cmdMilestone(intent types.Intent) outcome {
	level := e.State.Level.Actual
	if intent.Object != "" {
		v, err := strconv.Atoi(intent.Object)
		if err != nil {
			return say("Milestone at which level?")
		}
		level = v
	}
	g := e.Gen.DrawMilestone(level)
	return offer([]types.Glyph{g}, []string{"A milestone glyph forms:", "  " + e.Describe(g)})
}

func (e *Engine) cmdFixed(kind generate.FixedKind, p generate.FixedParams) outcome {
	if kind == generate.FixedStarter && p.Type == "" {
		return say("Starter glyph of which type?")
	}
	g, err := e.Gen.DrawFixed(kind, p)
	if err != nil {
		return e.generationFailed(string(kind), err)
	}
	return offer([]types.Glyph{g}, []string{"A " + string(kind) + " glyph forms:", "  " + e.Describe(g)})
}

func (e *Engine) cmdTribute(intent types.Intent) outcome {
	if intent.Object == "" {
		return say("Tribute how much?")
	}
	amount, err := numeric.Parse(intent.Object)
	if err != nil {
		return say(fmt.Sprintf("%q is not an amount.", intent.Object))
	}
	e.logger.Debug("tribute offered", "amount", amount.String(), "log10", amount.Log10())
	return e.cmdFixed(generate.FixedTribute, generate.FixedParams{Tribute: amount})
}

func (e *Engine) cmdCosmetic() outcome {
	g, err := e.Gen.DrawCosmetic()
	if err != nil {
		return e.generationFailed("cosmetic", err)
	}
	return offer([]types.Glyph{g}, []string{"A " + g.Cosmetic + " glyph hums into being:", "  " + e.Describe(g)})
}

func (e *Engine) generationFailed(verb string, err error) outcome {
	e.logger.Warn("generation failed", "verb", verb, "err", err)
	switch {
	case errors.Is(err, generate.ErrNoTypes):
		return say("No glyph types are unlocked.")
	case errors.Is(err, generate.ErrUnknownType):
		return say("There is no such glyph type.")
	case errors.Is(err, random.ErrStale):
		return say("The stream moved on underneath this draw; nothing was committed.")
	default:
		return say(fmt.Sprintf("Generation failed: %v.", err))
	}
}

func (e *Engine) cmdKeep(intent types.Intent) outcome {
	pending := e.State.Pending
	if len(pending) == 0 {
		return say("There is nothing to keep. Draw first.")
	}
	i := 1
	if intent.Object != "" {
		v, err := strconv.Atoi(intent.Object)
		if err != nil || v < 1 || v > len(pending) {
			return say(fmt.Sprintf("Choose 1-%d.", len(pending)))
		}
		i = v
	}

	g := pending[i-1]
	effs := []types.Effect{
		{Type: "insert_glyph", Params: map[string]any{"glyph": g, "collection": string(types.CollectionInventory)}},
		{Type: "set_pending", Params: map[string]any{"glyphs": []types.Glyph(nil)}},
	}
	if g.Cosmetic == "" && g.Level > e.State.BestGlyphLevel {
		effs = append(effs, types.Effect{Type: "set_best_level", Params: map[string]any{"level": g.Level}})
	}

	kept := g
	kept.ID = ids.NextID(e.State.Active, e.State.Inventory)
	return outcome{
		effects: effs,
		output:  []string{fmt.Sprintf("You keep glyph #%d.", kept.ID)},
		glyph:   &kept,
	}
}

func parseID(s string) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 10, 64)
	return id, err == nil && id > 0
}

func (e *Engine) cmdEquip(intent types.Intent) outcome {
	id, ok := parseID(intent.Object)
	if !ok {
		return say("Equip which glyph?")
	}
	g, coll, found := state.FindGlyph(e.State, id)
	if !found {
		return say(fmt.Sprintf("No glyph #%d.", id))
	}
	if coll == types.CollectionActive {
		return say(fmt.Sprintf("Glyph #%d is already equipped.", id))
	}
	if slots := e.Defs.Balance.ActiveSlots; len(e.State.Active) >= slots {
		return say(fmt.Sprintf("All %d active slots are full.", slots))
	}
	return outcome{
		effects: []types.Effect{{Type: "equip_glyph", Params: map[string]any{"id": id}}},
		output:  []string{fmt.Sprintf("You equip glyph #%d.", id)},
		glyph:   &g,
	}
}

func (e *Engine) cmdUnequip(intent types.Intent) outcome {
	id, ok := parseID(intent.Object)
	if !ok {
		return say("Unequip which glyph?")
	}
	g, coll, found := state.FindGlyph(e.State, id)
	if !found || coll != types.CollectionActive {
		return say(fmt.Sprintf("Glyph #%d is not equipped.", id))
	}
	return outcome{
		effects: []types.Effect{{Type: "unequip_glyph", Params: map[string]any{"id": id}}},
		output:  []string{fmt.Sprintf("You unequip glyph #%d.", id)},
		glyph:   &g,
	}
}

func (e *Engine) cmdDelete(intent types.Intent) outcome {
	id, ok := parseID(intent.Object)
	if !ok {
		return say("Delete which glyph?")
	}
	g, _, found := state.FindGlyph(e.State, id)
	if !found {
		return say(fmt.Sprintf("No glyph #%d.", id))
	}
	return outcome{
		effects: []types.Effect{{Type: "delete_glyph", Params: map[string]any{"id": id}}},
		output:  []string{fmt.Sprintf("Glyph #%d is gone.", id)},
		glyph:   &g,
	}
}

func (e *Engine) cmdList() outcome {
	s := e.State
	out := []string{fmt.Sprintf("Active (%d/%d):", len(s.Active), e.Defs.Balance.ActiveSlots)}
	for _, g := range s.Active {
		out = append(out, "  "+e.Describe(g))
	}
	out = append(out, fmt.Sprintf("Inventory (%d):", len(s.Inventory)))
	for _, g := range s.Inventory {
		out = append(out, "  "+e.Describe(g))
	}
	if len(s.Pending) > 0 {
		out = append(out, fmt.Sprintf("%d pending choice(s); use 'keep'.", len(s.Pending)))
	}
	return say(out...)
}

func (e *Engine) cmdShow(intent types.Intent) outcome {
	var g types.Glyph
	if intent.Object == "" {
		if len(e.State.Pending) == 0 {
			return say("Show which glyph?")
		}
		g = e.State.Pending[0]
	} else {
		id, ok := parseID(intent.Object)
		if !ok {
			return say("Show which glyph?")
		}
		var found bool
		g, _, found = state.FindGlyph(e.State, id)
		if !found {
			return say(fmt.Sprintf("No glyph #%d.", id))
		}
	}
	return say(e.Details(g)...)
}

func (e *Engine) cmdTypes() outcome {
	available := e.Gen.AvailableTypes()
	open := make(map[string]bool, len(available))
	for _, id := range available {
		open[id] = true
	}
	var locked []string
	for _, t := range e.Defs.Catalog.Types() {
		if t.Random && !open[t.ID] {
			locked = append(locked, t.ID)
		}
	}
	out := []string{"Available: " + joinOrNone(available)}
	if len(locked) > 0 {
		out = append(out, "Locked: "+joinOrNone(locked))
	}
	return say(out...)
}

func joinOrNone(list []string) string {
	if len(list) == 0 {
		return "none"
	}
	return strings.Join(list, ", ")
}

func (e *Engine) cmdFlag(intent types.Intent) outcome {
	if intent.Object == "" {
		return say(strings.ToUpper(intent.Verb[:1]) + intent.Verb[1:] + " what?")
	}
	value := intent.Verb == "unlock"
	verb := "set"
	if !value {
		verb = "cleared"
	}
	return outcome{
		effects: []types.Effect{{Type: "set_flag", Params: map[string]any{"flag": intent.Object, "value": value}}},
		output:  []string{fmt.Sprintf("Flag %s %s.", intent.Object, verb)},
	}
}

func (e *Engine) cmdSet(intent types.Intent) outcome {
	v, err := strconv.ParseFloat(intent.Target, 64)
	if intent.Object == "" || err != nil {
		return say("Set what to what? (set <name> <number>)")
	}
	return outcome{
		effects: []types.Effect{{Type: "set_value", Params: map[string]any{"name": intent.Object, "value": v}}},
		output:  []string{fmt.Sprintf("%s = %g", intent.Object, v)},
	}
}

func (e *Engine) cmdLevel(intent types.Intent) outcome {
	if intent.Object == "" {
		return say(fmt.Sprintf("Glyph level %d (raw %d).", e.State.Level.Actual, e.State.Level.Raw))
	}
	actual, err := strconv.Atoi(intent.Object)
	if err != nil || actual < 0 {
		return say("Level must be a whole number.")
	}
	raw := actual
	if intent.Target != "" {
		if raw, err = strconv.Atoi(intent.Target); err != nil || raw < 0 {
			return say("Raw level must be a whole number.")
		}
	}
	return outcome{
		effects: []types.Effect{{Type: "set_level", Params: map[string]any{"actual": actual, "raw": raw}}},
		output:  []string{fmt.Sprintf("Glyph level set to %d (raw %d).", actual, raw)},
	}
}

func (e *Engine) cmdBest(intent types.Intent) outcome {
	if intent.Object == "" {
		return say(fmt.Sprintf("Best glyph level: %d.", e.State.BestGlyphLevel))
	}
	v, err := strconv.Atoi(intent.Object)
	if err != nil || v < 0 {
		return say("Best level must be a whole number.")
	}
	return outcome{
		effects: []types.Effect{{Type: "set_best_level", Params: map[string]any{"level": v}}},
		output:  []string{fmt.Sprintf("Best glyph level set to %d.", v)},
	}
}

func (e *Engine) cmdSeed(intent types.Intent) outcome {
	if intent.Object != "" {
		v, err := strconv.ParseUint(intent.Object, 0, 32)
		if err != nil {
			return say("Seed must be a 32-bit number.")
		}
		return outcome{
			effects: []types.Effect{{Type: "reseed", Params: map[string]any{"seed": uint64(v)}}},
			output:  []string{fmt.Sprintf("Streams reseeded from %#x.", v)},
		}
	}
	preview, _ := e.Streams.Peek(types.StreamPreview)
	return say(
		"Primary:   "+formatStream(e.State.Primary),
		"Secondary: "+formatStream(e.State.Secondary),
		"Preview:   "+formatStream(preview),
	)
}

func formatStream(st types.RandomState) string {
	if st.SecondGaussian == random.NoGaussian {
		return fmt.Sprintf("seed %#08x, no cached gaussian", st.Seed)
	}
	return fmt.Sprintf("seed %#08x, cached gaussian %.6f", st.Seed, st.SecondGaussian)
}
