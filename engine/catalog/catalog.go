// Package catalog holds the glyph type list and the effect bitmask catalog.
//
// Every effect owns one bit of a 64-bit mask. Bits are unique across the
// catalog and stable across catalog versions, since saved glyphs store
// only the mask.
package catalog

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"

	"github.com/nathoo/glyphcore/types"
)

// MaxBits is the number of effect bits a glyph mask can hold.
const MaxBits = 64

var (
	ErrDuplicateType   = errors.New("catalog: duplicate type")
	ErrDuplicateEffect = errors.New("catalog: duplicate effect")
	ErrDuplicateBit    = errors.New("catalog: bit already assigned")
	ErrBitRange        = errors.New("catalog: bit out of range")
	ErrUnknownType     = errors.New("catalog: unknown type")
	ErrUnknownEffect   = errors.New("catalog: unknown effect")
)

// Catalog is an immutable, validated set of glyph types and effects.
type Catalog struct {
	version string
	types   []types.TypeDef
	typeIdx map[string]int
	effects []types.EffectDef // ascending by bit
	byID    map[string]int
	byType  map[string][]types.EffectDef
}

// New validates the definitions and builds a catalog. Types keep their
// declaration order. All problems are reported together.
func New(version string, typeDefs []types.TypeDef, effectDefs []types.EffectDef) (*Catalog, error) {
	c := &Catalog{
		version: version,
		typeIdx: make(map[string]int, len(typeDefs)),
		byID:    make(map[string]int, len(effectDefs)),
		byType:  make(map[string][]types.EffectDef),
	}
	var errs []error

	for _, t := range typeDefs {
		if _, dup := c.typeIdx[t.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateType, t.ID))
			continue
		}
		c.typeIdx[t.ID] = len(c.types)
		c.types = append(c.types, t)
	}

	owner := make(map[uint]string, len(effectDefs))
	seen := make(map[string]bool, len(effectDefs))
	for _, e := range effectDefs {
		if seen[e.ID] {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateEffect, e.ID))
			continue
		}
		seen[e.ID] = true
		if e.Bit >= MaxBits {
			errs = append(errs, fmt.Errorf("%w: effect %q has bit %d", ErrBitRange, e.ID, e.Bit))
			continue
		}
		if prev, ok := owner[e.Bit]; ok {
			errs = append(errs, fmt.Errorf("%w: bit %d held by %q and %q", ErrDuplicateBit, e.Bit, prev, e.ID))
			continue
		}
		owner[e.Bit] = e.ID
		for _, typ := range e.Types {
			if _, ok := c.typeIdx[typ]; !ok {
				errs = append(errs, fmt.Errorf("%w: effect %q names type %q", ErrUnknownType, e.ID, typ))
			}
		}
		c.effects = append(c.effects, e)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	sort.Slice(c.effects, func(i, j int) bool { return c.effects[i].Bit < c.effects[j].Bit })
	for i, e := range c.effects {
		c.byID[e.ID] = i
		for _, typ := range e.Types {
			c.byType[typ] = append(c.byType[typ], e)
		}
	}
	return c, nil
}

// Version returns the catalog version string.
func (c *Catalog) Version() string { return c.version }

// Types returns the type definitions in declaration order.
func (c *Catalog) Types() []types.TypeDef { return c.types }

// Type looks up a type by id.
func (c *Catalog) Type(id string) (types.TypeDef, bool) {
	i, ok := c.typeIdx[id]
	if !ok {
		return types.TypeDef{}, false
	}
	return c.types[i], true
}

// Effects returns every effect in ascending bit order.
func (c *Catalog) Effects() []types.EffectDef { return c.effects }

// Effect looks up an effect by id.
func (c *Catalog) Effect(id string) (types.EffectDef, bool) {
	i, ok := c.byID[id]
	if !ok {
		return types.EffectDef{}, false
	}
	return c.effects[i], true
}

// EffectsFor returns the effects applicable to typ in ascending bit order.
func (c *Catalog) EffectsFor(typ string) []types.EffectDef {
	return c.byType[typ]
}

// EffectsForType returns the mask of effects a random glyph of typ may
// carry. Without full, the highest-bit applicable effect is left out.
func (c *Catalog) EffectsForType(typ string, full bool) types.Bitmask {
	list := c.byType[typ]
	if !full && len(list) > 0 {
		list = list[:len(list)-1]
	}
	return maskOf(list)
}

// FirstEffects returns the mask of the first n applicable effects of typ
// by ascending bit. n beyond the list length selects them all.
func (c *Catalog) FirstEffects(typ string, n int) types.Bitmask {
	list := c.byType[typ]
	if n < 0 {
		n = 0
	}
	if n < len(list) {
		list = list[:n]
	}
	return maskOf(list)
}

// Mask builds a mask from effect ids.
func (c *Catalog) Mask(ids ...string) (types.Bitmask, error) {
	var m types.Bitmask
	for _, id := range ids {
		e, ok := c.Effect(id)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownEffect, id)
		}
		m |= 1 << e.Bit
	}
	return m, nil
}

// Describe returns the effects whose bits are set in m, ascending by bit.
// Bits with no catalog entry are skipped.
func (c *Catalog) Describe(m types.Bitmask) []types.EffectDef {
	var out []types.EffectDef
	for _, e := range c.effects {
		if Has(m, e.Bit) {
			out = append(out, e)
		}
	}
	return out
}

func maskOf(list []types.EffectDef) types.Bitmask {
	var m types.Bitmask
	for _, e := range list {
		m |= 1 << e.Bit
	}
	return m
}

// Has reports whether bit is set in m.
func Has(m types.Bitmask, bit uint) bool {
	return bit < MaxBits && m&(1<<bit) != 0
}

// Count returns the number of effects in m.
func Count(m types.Bitmask) int {
	return bits.OnesCount64(uint64(m))
}

// Bits lists the set bits of m in ascending order.
func Bits(m types.Bitmask) []uint {
	var out []uint
	for v := uint64(m); v != 0; v &= v - 1 {
		out = append(out, uint(bits.TrailingZeros64(v)))
	}
	return out
}
