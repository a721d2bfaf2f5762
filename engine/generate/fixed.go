package generate

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/zeebo/blake3"

	"github.com/nathoo/glyphcore/engine/numeric"
	"github.com/nathoo/glyphcore/types"
)

// FixedKind selects a deterministic glyph recipe.
type FixedKind string

const (
	FixedStarter FixedKind = "starter"
	FixedTribute FixedKind = "tribute"
	FixedCursed  FixedKind = "cursed"
)

// FixedParams carries the inputs of the fixed kinds that take any.
type FixedParams struct {
	Type    string         // starter: glyph type
	Tribute numeric.Big // tribute: currency amount; below 1 counts as 1
}

// DrawMilestone builds the milestone glyph for level. Its effect count is
// the number of milestone thresholds at or below level, so a higher level
// never loses effects.
func (g *Generator) DrawMilestone(level int) types.Glyph {
	b := g.defs.Balance
	return g.DrawMilestoneWithStrength(level, g.curve.RarityToStrength(b.MilestoneRarity))
}

// DrawMilestoneWithStrength is DrawMilestone with an explicit strength.
func (g *Generator) DrawMilestoneWithStrength(level int, strength float64) types.Glyph {
	b := g.defs.Balance
	k := 0
	for _, threshold := range b.MilestoneThresholds {
		if threshold <= level {
			k++
		}
	}
	return types.Glyph{
		Type:     b.MilestoneType,
		Strength: strength,
		Level:    level,
		RawLevel: level,
		Effects:  g.defs.Catalog.FirstEffects(b.MilestoneType, k),
	}
}

// DrawFixed builds one of the deterministic glyph kinds. No stream is read.
func (g *Generator) DrawFixed(kind FixedKind, p FixedParams) (types.Glyph, error) {
	b := g.defs.Balance
	cat := g.defs.Catalog

	switch kind {
	case FixedStarter:
		if _, ok := cat.Type(p.Type); !ok {
			return types.Glyph{}, fmt.Errorf("%w: %q", ErrUnknownType, p.Type)
		}
		effects := cat.EffectsForType(p.Type, true)
		if b.StarterExtraEffect != "" {
			extra, err := cat.Mask(b.StarterExtraEffect)
			if err != nil {
				return types.Glyph{}, err
			}
			effects |= extra
		}
		level := max(g.s.BestGlyphLevel, b.StarterMinLevel)
		return types.Glyph{
			Type:     p.Type,
			Strength: b.StarterStrength,
			Level:    level,
			RawLevel: level,
			Effects:  effects,
		}, nil

	case FixedTribute:
		if _, ok := cat.Type(b.TributeType); !ok {
			return types.Glyph{}, fmt.Errorf("%w: %q", ErrUnknownType, b.TributeType)
		}
		return types.Glyph{
			Type:     b.TributeType,
			Strength: g.curve.RarityToStrength(p.Tribute.ClampMin(1).Log10() / b.TributeScale),
			Level:    1,
			RawLevel: 1,
			Effects:  cat.EffectsForType(b.TributeType, true),
		}, nil

	case FixedCursed:
		if _, ok := cat.Type(b.CursedType); !ok {
			return types.Glyph{}, fmt.Errorf("%w: %q", ErrUnknownType, b.CursedType)
		}
		return types.Glyph{
			Type:     b.CursedType,
			Strength: g.curve.RarityToStrength(b.CursedRarity),
			Level:    b.CursedLevel,
			RawLevel: b.CursedLevel,
			Effects:  cat.EffectsForType(b.CursedType, true),
		}, nil

	default:
		return types.Glyph{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

var fingerprintKey = [32]byte{
	'g', 'l', 'y', 'p', 'h', 'c', 'o', 'r', 'e', '.', 'g', 'l', 'y', 'p', 'h', '.',
	'f', 'i', 'n', 'g', 'e', 'r', 'p', 'r', 'i', 'n', 't', 0, 0, 0, 0, 0,
}

// Fingerprint returns a short keyed BLAKE3 digest of the generated fields
// of g. The id is excluded, so the same draw fingerprints the same before
// and after insertion.
func Fingerprint(g types.Glyph) string {
	buf := make([]byte, 0, 64+len(g.Type)+len(g.Cosmetic))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(g.Type)))
	buf = append(buf, g.Type...)
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(g.Strength))
	buf = binary.BigEndian.AppendUint64(buf, uint64(int64(g.Level)))
	buf = binary.BigEndian.AppendUint64(buf, uint64(int64(g.RawLevel)))
	buf = binary.BigEndian.AppendUint64(buf, uint64(g.Effects))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(g.Cosmetic)))
	buf = append(buf, g.Cosmetic...)

	h, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("generate: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	h.Write(buf)
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}
