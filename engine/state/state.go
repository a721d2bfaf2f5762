// Package state manages the mutable save state and the immutable content
// definitions the generator reads.
package state

import (
	"fmt"
	"time"

	"github.com/nathoo/glyphcore/engine/catalog"
	"github.com/nathoo/glyphcore/engine/random"
	"github.com/nathoo/glyphcore/types"
)

// Defs holds the immutable content definitions loaded from Lua.
type Defs struct {
	Content  types.ContentDef
	Catalog  *catalog.Catalog
	Balance  types.BalanceDef
	Handlers []types.EventHandler
}

// NewState creates a fresh save state. Both persisted streams are seeded
// from the clock; use Reseed for reproducible runs.
func NewState(defs *Defs) *types.State {
	s := &types.State{
		Flags:      map[string]bool{},
		Counters:   map[string]int{},
		Values:     map[string]float64{},
		Level:      types.LevelInfo{Actual: 1, Raw: 1},
		Active:     []types.Glyph{},
		Inventory:  []types.Glyph{},
		CommandLog: []string{},
	}
	Reseed(s, uint32(time.Now().UnixNano()%(1<<32)))
	return s
}

// Reseed resets both persisted streams from seed. The secondary stream is
// offset so the two never walk the same sequence. Zero is the xorshift
// fixed point and is replaced by 1.
func Reseed(s *types.State, seed uint32) {
	seed = random.NormalizeSeed(seed)
	s.Primary = types.RandomState{Seed: seed, SecondGaussian: random.NoGaussian}
	s.Secondary = types.RandomState{Seed: random.NormalizeSeed(seed ^ 0x9e3779b9), SecondGaussian: random.NoGaussian}
}

// GetFlag returns the value of a flag. Unset flags return false.
func GetFlag(s *types.State, name string) bool {
	return s.Flags[name]
}

// GetCounter returns the value of a counter. Unset counters return 0.
func GetCounter(s *types.State, name string) int {
	return s.Counters[name]
}

// GetValue returns a real-valued source and whether it was set.
func GetValue(s *types.State, name string) (float64, bool) {
	v, ok := s.Values[name]
	return v, ok
}

// ValueOr returns a real-valued source, or def when unset.
func ValueOr(s *types.State, name string, def float64) float64 {
	if v, ok := s.Values[name]; ok {
		return v
	}
	return def
}

// Collection returns the glyphs of the named collection.
func Collection(s *types.State, c types.Collection) []types.Glyph {
	switch c {
	case types.CollectionActive:
		return s.Active
	case types.CollectionInventory:
		return s.Inventory
	default:
		return nil
	}
}

// FindGlyph locates a glyph by id in either live collection.
func FindGlyph(s *types.State, id uint64) (types.Glyph, types.Collection, bool) {
	for _, g := range s.Active {
		if g.ID == id {
			return g, types.CollectionActive, true
		}
	}
	for _, g := range s.Inventory {
		if g.ID == id {
			return g, types.CollectionInventory, true
		}
	}
	return types.Glyph{}, "", false
}

// Slots exposes the persisted stream pairs of s to a random.Manager.
// The preview stream is never persisted and is not served here.
func Slots(s *types.State) random.Slots {
	return stateSlots{s: s}
}

type stateSlots struct {
	s *types.State
}

func (ss stateSlots) ReadSlot(kind types.StreamKind) (types.RandomState, error) {
	switch kind {
	case types.StreamPrimary:
		return ss.s.Primary, nil
	case types.StreamSecondary:
		return ss.s.Secondary, nil
	default:
		return types.RandomState{}, fmt.Errorf("read slot %q: %w", kind, random.ErrUnknownStream)
	}
}

func (ss stateSlots) WriteSlot(kind types.StreamKind, st types.RandomState) error {
	switch kind {
	case types.StreamPrimary:
		ss.s.Primary = st
	case types.StreamSecondary:
		ss.s.Secondary = st
	default:
		return fmt.Errorf("write slot %q: %w", kind, random.ErrUnknownStream)
	}
	return nil
}
