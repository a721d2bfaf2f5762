package engine

import (
	"fmt"
	"strings"

	"github.com/nathoo/glyphcore/engine/generate"
	"github.com/nathoo/glyphcore/types"
)

// Describe formats a glyph on one line.
func (e *Engine) Describe(g types.Glyph) string {
	var b strings.Builder
	if g.ID != 0 {
		fmt.Fprintf(&b, "#%d ", g.ID)
	}
	fmt.Fprintf(&b, "%s, level %d", g.Type, g.Level)
	if g.RawLevel != g.Level {
		fmt.Fprintf(&b, " (raw %d)", g.RawLevel)
	}
	fmt.Fprintf(&b, ", strength %.3f (%.1f%% rarity)", g.Strength, e.Gen.Curve().StrengthToRarity(g.Strength))
	fmt.Fprintf(&b, ", %d effect(s)", len(e.EffectNames(g.Effects)))
	if g.Cosmetic != "" {
		fmt.Fprintf(&b, " [%s]", g.Cosmetic)
	}
	return b.String()
}

// Details formats a glyph with its effect descriptions and fingerprint.
func (e *Engine) Details(g types.Glyph) []string {
	out := []string{e.Describe(g)}
	for _, eff := range e.Defs.Catalog.Describe(g.Effects) {
		line := "  - " + eff.ID
		if eff.Description != "" {
			line += ": " + eff.Description
		}
		out = append(out, line)
	}
	out = append(out, "  fingerprint "+generate.Fingerprint(g))
	return out
}

// EffectNames lists the effect ids in m, ascending by bit.
func (e *Engine) EffectNames(m types.Bitmask) []string {
	var names []string
	for _, eff := range e.Defs.Catalog.Describe(m) {
		names = append(names, eff.ID)
	}
	return names
}
