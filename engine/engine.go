// Package engine provides the Step() orchestrator that wires together
// parsing, generation, effects, and events into a single turn.
package engine

import (
	"log/slog"

	"github.com/nathoo/glyphcore/engine/effects"
	"github.com/nathoo/glyphcore/engine/events"
	"github.com/nathoo/glyphcore/engine/generate"
	"github.com/nathoo/glyphcore/engine/parser"
	"github.com/nathoo/glyphcore/engine/random"
	"github.com/nathoo/glyphcore/engine/state"
	"github.com/nathoo/glyphcore/types"
)

// Engine holds the content definitions, the save state, and the stream
// manager and generator bound to that state.
type Engine struct {
	Defs    *state.Defs
	State   *types.State
	Streams *random.Manager
	Gen     *generate.Generator

	logger *slog.Logger
}

type options struct {
	logger      *slog.Logger
	seed        uint32
	hasSeed     bool
	previewSeed uint32
	hasPreview  bool
	mirror      random.Slots
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the logger passed down to the stream manager and generator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithSeed seeds the persisted streams instead of using the clock.
func WithSeed(seed uint32) Option {
	return func(o *options) { o.seed, o.hasSeed = seed, true }
}

// WithPreviewSeed fixes the preview stream's starting seed.
func WithPreviewSeed(seed uint32) Option {
	return func(o *options) { o.previewSeed, o.hasPreview = seed, true }
}

// WithMirror writes every stream commit to mirror as well as to the save
// state, e.g. a database. A failed mirror write fails the commit.
func WithMirror(mirror random.Slots) Option {
	return func(o *options) { o.mirror = mirror }
}

// New creates a new engine with a fresh save state.
func New(defs *state.Defs, opts ...Option) *Engine {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	s := state.NewState(defs)
	if o.hasSeed {
		state.Reseed(s, o.seed)
	}

	managerOpts := []random.Option{random.WithLogger(o.logger)}
	if o.hasPreview {
		managerOpts = append(managerOpts, random.WithPreviewSeed(o.previewSeed))
	}
	slots := state.Slots(s)
	if o.mirror != nil {
		slots = random.Tee(slots, o.mirror)
	}
	streams := random.NewManager(slots, managerOpts...)

	return &Engine{
		Defs:    defs,
		State:   s,
		Streams: streams,
		Gen:     generate.New(defs, s, streams, generate.WithLogger(o.logger)),
		logger:  o.logger,
	}
}

// Restore replaces the save state in place, keeping the stream manager and
// generator bound to it. The preview stream is not part of a save and
// carries on.
func (e *Engine) Restore(s *types.State) {
	*e.State = *s
	if e.State.Flags == nil {
		e.State.Flags = map[string]bool{}
	}
	if e.State.Counters == nil {
		e.State.Counters = map[string]int{}
	}
	if e.State.Values == nil {
		e.State.Values = map[string]float64{}
	}
}

// Step processes one command and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	// 1. Parse input.
	intent := parser.Parse(input)

	// 2. Log the command.
	e.State.CommandLog = append(e.State.CommandLog, input)

	// 3. Empty input.
	if intent.Verb == "" {
		result.Output = append(result.Output, "What do you want to do?")
		return result
	}

	// 4. Run the command.
	out, ok := e.run(intent)
	if !ok {
		result.Output = append(result.Output, "I don't know how to \""+intent.Verb+"\". Type /help for commands.")
		return result
	}
	result.Output = append(result.Output, out.output...)
	result.Glyphs = out.glyphs

	// 5. Apply effects.
	ctx := effects.Context{Verb: intent.Verb, Object: intent.Object, Glyph: out.glyph}
	evts, output := effects.Apply(e.State, e.Defs, out.effects, ctx)
	result.Effects = append(result.Effects, out.effects...)
	result.Events = append(result.Events, evts...)
	result.Output = append(result.Output, output...)

	// 6. Dispatch events (single pass).
	eventEffs := events.Dispatch(evts, e.State, e.Defs)

	// 7. Apply event effects (events NOT re-dispatched).
	if len(eventEffs) > 0 {
		evts2, output2 := effects.Apply(e.State, e.Defs, eventEffs, ctx)
		result.Effects = append(result.Effects, eventEffs...)
		result.Events = append(result.Events, evts2...)
		result.Output = append(result.Output, output2...)
	}

	// 8. Increment turn count.
	e.State.TurnCount++

	e.logger.Debug("step", "verb", intent.Verb, "turn", e.State.TurnCount,
		"effects", len(result.Effects), "events", len(result.Events))
	return result
}
