// Package generate produces glyphs: random draws from the primary,
// preview and secondary streams, and the deterministic milestone, starter,
// tribute and cursed kinds.
//
// Every generation call acquires at most one engine per stream and
// finalizes it exactly once, after all draws succeed. A failed draw
// leaves the persisted streams untouched.
package generate

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/nathoo/glyphcore/engine/curve"
	"github.com/nathoo/glyphcore/engine/random"
	"github.com/nathoo/glyphcore/engine/rules"
	"github.com/nathoo/glyphcore/engine/state"
	"github.com/nathoo/glyphcore/types"
)

var (
	// ErrNoTypes reports a random draw with no unlocked drawable type.
	ErrNoTypes = errors.New("generate: no glyph types available")

	// ErrUnknownType reports a type id missing from the catalog.
	ErrUnknownType = errors.New("generate: unknown glyph type")

	// ErrUnknownKind reports an unrecognised fixed glyph kind.
	ErrUnknownKind = errors.New("generate: unknown fixed kind")
)

// Source is the sample source a random draw consumes.
type Source interface {
	Intn(n int) int
}

// Generator draws glyphs against one save state.
type Generator struct {
	defs    *state.Defs
	s       *types.State
	streams *random.Manager
	curve   curve.Balance
	logger  *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger for generation debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a generator. streams must serve the same state s.
func New(defs *state.Defs, s *types.State, streams *random.Manager, opts ...Option) *Generator {
	g := &Generator{
		defs:    defs,
		s:       s,
		streams: streams,
		curve:   curve.FromDef(defs.Balance),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Curve returns the rarity/strength curve in use.
func (g *Generator) Curve() curve.Balance { return g.curve }

// AvailableTypes lists the drawable types whose unlock conditions hold
// right now, in declaration order.
func (g *Generator) AvailableTypes() []string {
	var out []string
	for _, t := range g.defs.Catalog.Types() {
		if t.Random && rules.EvalAllConditions(t.Requires, g.s, g.defs) {
			out = append(out, t.ID)
		}
	}
	return out
}

// RarityScore returns the current rarity score: the base plus every bonus
// source, times every multiplier source.
func (g *Generator) RarityScore() float64 {
	b := g.defs.Balance
	score := b.RarityBase
	for _, name := range b.RarityBonuses {
		score += state.ValueOr(g.s, name, 0)
	}
	for _, name := range b.RarityMultipliers {
		score *= state.ValueOr(g.s, name, 1)
	}
	return score
}

// Strength returns the strength of a random glyph drawn now.
func (g *Generator) Strength() float64 {
	return g.curve.RarityToStrength(g.RarityScore())
}

// extraEffect reports whether random glyphs may carry their type's
// highest-index effect.
func (g *Generator) extraEffect() bool {
	flag := g.defs.Balance.ExtraEffectFlag
	return flag != "" && state.GetFlag(g.s, flag)
}

// DrawRandom draws one glyph from src at lvl. It consumes exactly one
// uniform sample, for the type.
func (g *Generator) DrawRandom(src Source, lvl types.LevelInfo) (types.Glyph, error) {
	available := g.AvailableTypes()
	if len(available) == 0 {
		return types.Glyph{}, ErrNoTypes
	}
	return g.CreateGlyph(lvl, available[src.Intn(len(available))])
}

// CreateGlyph builds a random-kind glyph of an explicit type without
// drawing.
func (g *Generator) CreateGlyph(lvl types.LevelInfo, typ string) (types.Glyph, error) {
	if _, ok := g.defs.Catalog.Type(typ); !ok {
		return types.Glyph{}, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	return types.Glyph{
		Type:     typ,
		Strength: g.Strength(),
		Level:    lvl.Actual,
		RawLevel: lvl.Raw,
		Effects:  g.defs.Catalog.EffectsForType(typ, g.extraEffect()),
	}, nil
}

// Batch is one set of choices drawn from a single engine.
type Batch struct {
	Glyphs []types.Glyph
	// Fake is set when the engine drew from the preview stream. Fake
	// glyphs are for display only and must not be kept.
	Fake bool
}

// Generate draws one glyph from kind's stream and commits the stream.
func (g *Generator) Generate(kind types.StreamKind, lvl types.LevelInfo) (types.Glyph, error) {
	batch, err := g.Choices(kind, 1, lvl)
	if err != nil {
		return types.Glyph{}, err
	}
	return batch.Glyphs[0], nil
}

// Choices draws n glyphs from one engine over kind's stream and commits
// the stream once.
func (g *Generator) Choices(kind types.StreamKind, n int, lvl types.LevelInfo) (Batch, error) {
	if n < 1 {
		n = 1
	}
	rng, err := g.streams.Acquire(kind)
	if err != nil {
		return Batch{}, err
	}
	batch := Batch{Glyphs: make([]types.Glyph, 0, n), Fake: rng.IsFake()}
	for i := 0; i < n; i++ {
		glyph, err := g.DrawRandom(rng, lvl)
		if err != nil {
			return Batch{}, err
		}
		batch.Glyphs = append(batch.Glyphs, glyph)
	}
	if err := rng.Finalize(); err != nil {
		return Batch{}, err
	}
	g.logger.Debug("glyphs generated", "stream", rng.Kind(), "fake", batch.Fake, "count", n, "seed", rng.State().Seed)
	return batch, nil
}

// DrawCosmetic draws a glyph from the secondary stream at a reduced level
// and tags it with the cosmetic tag. The primary stream is not touched.
func (g *Generator) DrawCosmetic() (types.Glyph, error) {
	b := g.defs.Balance
	rng, err := g.streams.Acquire(types.StreamSecondary)
	if err != nil {
		return types.Glyph{}, err
	}
	lvl := types.LevelInfo{
		Actual: int(math.Floor(float64(g.s.BestGlyphLevel) * b.CosmeticLevelFactor)),
		Raw:    1,
	}
	glyph, err := g.DrawRandom(rng, lvl)
	if err != nil {
		return types.Glyph{}, err
	}
	if err := rng.Finalize(); err != nil {
		return types.Glyph{}, err
	}
	glyph.Cosmetic = b.CosmeticTag
	g.logger.Debug("cosmetic glyph generated", "type", glyph.Type, "level", glyph.Level)
	return glyph, nil
}
