// Package random implements the glyph randomness engine and the manager of
// its persisted streams.
//
// An Engine works on a private copy of one stream's (seed, cached gaussian)
// pair. Draws never touch the persisted store; Finalize writes the pair back
// in a single call. Dropping an engine without finalizing discards its draws.
package random

import (
	"errors"
	"fmt"
	"math"

	"github.com/nathoo/glyphcore/types"
)

// NoGaussian is the reserved "empty" value of the cached second gaussian.
// It is part of the persisted format and must not change.
const NoGaussian = 1e6

// uniformScale is 2^-32. Applied to the signed reading of the state word
// and offset by one half, it maps the word onto [0, 1).
const uniformScale = 2.3283064365386963e-10

var (
	// ErrUnimplemented is returned (or panicked with) when a detached engine
	// is asked to do something only a slot-bound engine can do.
	ErrUnimplemented = errors.New("random: operation not implemented for a detached engine")

	// ErrInvalidState reports a cached gaussian that is neither NoGaussian
	// nor a finite number.
	ErrInvalidState = errors.New("random: cached gaussian is neither empty nor finite")

	// ErrStale reports a finalize from an engine whose stream was committed
	// by another engine after this one was acquired.
	ErrStale = errors.New("random: stream committed by another engine since acquire")

	// ErrUnknownStream reports a stream kind the manager does not serve.
	ErrUnknownStream = errors.New("random: unknown stream")
)

// Slot is the strategy record binding an engine to its persisted pair.
type Slot struct {
	Read  func() (types.RandomState, error)
	Write func(types.RandomState) error
}

// Engine is a xorshift32 generator with a cached polar Box-Muller sample.
type Engine struct {
	kind           types.StreamKind
	seed           uint32
	secondGaussian float64
	slot           *Slot
}

// NormalizeSeed replaces 0, the xorshift fixed point, with 1. Every seed
// an engine starts from passes through it.
func NormalizeSeed(seed uint32) uint32 {
	if seed == 0 {
		return 1
	}
	return seed
}

// New returns a detached engine over st. It draws like any other engine
// but cannot be finalized; use it for inspection and replays.
func New(st types.RandomState) *Engine {
	return &Engine{seed: NormalizeSeed(st.Seed), secondGaussian: st.SecondGaussian}
}

// Bind reads the current pair through slot and returns an engine that
// finalizes back into it.
func Bind(kind types.StreamKind, slot Slot) (*Engine, error) {
	if slot.Read == nil || slot.Write == nil {
		return nil, fmt.Errorf("bind %s: %w", kind, ErrUnimplemented)
	}
	st, err := slot.Read()
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", kind, err)
	}
	return &Engine{
		kind:           kind,
		seed:           NormalizeSeed(st.Seed),
		secondGaussian: st.SecondGaussian,
		slot:           &slot,
	}, nil
}

// next advances the state word by one xorshift32 step.
func next(x uint32) uint32 {
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	return x
}

// Uniform returns a sample in [0, 1).
func (e *Engine) Uniform() float64 {
	e.seed = next(e.seed)
	// The explicit conversion rounds the product so no platform fuses the
	// multiply and add; persisted seeds depend on the exact value.
	return float64(float64(int32(e.seed))*uniformScale) + 0.5
}

// Intn returns an index in [0, n) drawn from one uniform sample.
// n <= 0 returns 0 without drawing.
func (e *Engine) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(e.Uniform() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Normal returns a standard-normal sample. Samples come in pairs: the
// second of each pair is cached and returned by the next call without
// advancing the uniform stream.
func (e *Engine) Normal() (float64, error) {
	if e.secondGaussian != NoGaussian {
		g := e.secondGaussian
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return 0, ErrInvalidState
		}
		e.secondGaussian = NoGaussian
		return g, nil
	}
	var u, v, s float64
	for {
		u = e.Uniform()*2 - 1
		v = e.Uniform()*2 - 1
		s = float64(u*u) + float64(v*v)
		if s < 1 && s != 0 {
			break
		}
	}
	f := math.Sqrt(-2 * fdlibmLog(s) / s)
	e.secondGaussian = v * f
	return u * f, nil
}

// Finalize writes the engine's pair back to its slot. Calling it again
// without drawing in between writes the same pair.
func (e *Engine) Finalize() error {
	if e.slot == nil {
		return ErrUnimplemented
	}
	if err := e.slot.Write(e.State()); err != nil {
		return fmt.Errorf("finalize %s: %w", e.kind, err)
	}
	return nil
}

// IsFake reports whether the engine draws from the preview stream, whose
// results must never reach gameplay. It panics on a detached engine.
func (e *Engine) IsFake() bool {
	if e.slot == nil {
		panic(ErrUnimplemented)
	}
	return e.kind == types.StreamPreview
}

// Kind returns the stream the engine was bound to, or "" when detached.
func (e *Engine) Kind() types.StreamKind {
	return e.kind
}

// State returns the engine's current pair.
func (e *Engine) State() types.RandomState {
	return types.RandomState{Seed: e.seed, SecondGaussian: e.secondGaussian}
}
