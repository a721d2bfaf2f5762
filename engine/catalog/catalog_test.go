package catalog

import (
	"errors"
	"testing"

	"github.com/nathoo/glyphcore/types"
)

func fiveEffectCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New("test",
		[]types.TypeDef{{ID: "power", Random: true}, {ID: "time", Random: true}},
		[]types.EffectDef{
			{ID: "p4", Bit: 4, Types: []string{"power"}},
			{ID: "p0", Bit: 0, Types: []string{"power"}},
			{ID: "p2", Bit: 2, Types: []string{"power"}},
			{ID: "p1", Bit: 1, Types: []string{"power"}},
			{ID: "p3", Bit: 3, Types: []string{"power"}},
			{ID: "t5", Bit: 5, Types: []string{"time"}},
		})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestEffectsForType_FiveEntries(t *testing.T) {
	c := fiveEffectCatalog(t)

	if got := c.EffectsForType("power", false); got != 0b01111 {
		t.Errorf("restricted mask = %#b, want 0b01111", got)
	}
	if got := c.EffectsForType("power", true); got != 0b11111 {
		t.Errorf("full mask = %#b, want 0b11111", got)
	}
}

func TestEffectsForType_SingleAndEmpty(t *testing.T) {
	c := fiveEffectCatalog(t)

	if got := c.EffectsForType("time", false); got != 0 {
		t.Errorf("single-entry restricted mask = %#b, want 0", got)
	}
	if got := c.EffectsForType("time", true); got != 1<<5 {
		t.Errorf("single-entry full mask = %#b, want bit 5", got)
	}
	if got := c.EffectsForType("nothing", true); got != 0 {
		t.Errorf("unknown type mask = %#b, want 0", got)
	}
}

func TestEffectsFor_AscendingBits(t *testing.T) {
	c := fiveEffectCatalog(t)
	list := c.EffectsFor("power")
	if len(list) != 5 {
		t.Fatalf("expected 5 effects, got %d", len(list))
	}
	for i, e := range list {
		if e.Bit != uint(i) {
			t.Errorf("entry %d has bit %d", i, e.Bit)
		}
	}
}

func TestFirstEffects(t *testing.T) {
	c := fiveEffectCatalog(t)
	tests := []struct {
		n    int
		want types.Bitmask
	}{
		{-1, 0},
		{0, 0},
		{1, 0b1},
		{3, 0b111},
		{5, 0b11111},
		{9, 0b11111},
	}
	for _, tt := range tests {
		if got := c.FirstEffects("power", tt.n); got != tt.want {
			t.Errorf("FirstEffects(%d) = %#b, want %#b", tt.n, got, tt.want)
		}
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		types   []types.TypeDef
		effects []types.EffectDef
		want    error
	}{
		{
			name:  "duplicate type",
			types: []types.TypeDef{{ID: "a"}, {ID: "a"}},
			want:  ErrDuplicateType,
		},
		{
			name:    "duplicate effect",
			types:   []types.TypeDef{{ID: "a"}},
			effects: []types.EffectDef{{ID: "x", Bit: 0}, {ID: "x", Bit: 1}},
			want:    ErrDuplicateEffect,
		},
		{
			name:    "shared bit",
			types:   []types.TypeDef{{ID: "a"}},
			effects: []types.EffectDef{{ID: "x", Bit: 3}, {ID: "y", Bit: 3}},
			want:    ErrDuplicateBit,
		},
		{
			name:    "bit too large",
			types:   []types.TypeDef{{ID: "a"}},
			effects: []types.EffectDef{{ID: "x", Bit: 64}},
			want:    ErrBitRange,
		},
		{
			name:    "unknown type",
			types:   []types.TypeDef{{ID: "a"}},
			effects: []types.EffectDef{{ID: "x", Bit: 0, Types: []string{"b"}}},
			want:    ErrUnknownType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("v", tt.types, tt.effects)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNew_ReportsAllProblems(t *testing.T) {
	_, err := New("v",
		[]types.TypeDef{{ID: "a"}, {ID: "a"}},
		[]types.EffectDef{{ID: "x", Bit: 70}, {ID: "y", Bit: 1, Types: []string{"zz"}}})
	for _, want := range []error{ErrDuplicateType, ErrBitRange, ErrUnknownType} {
		if !errors.Is(err, want) {
			t.Errorf("expected %v in %v", want, err)
		}
	}
}

func TestMask(t *testing.T) {
	c := fiveEffectCatalog(t)
	m, err := c.Mask("p0", "p3", "t5")
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	if m != 0b101001 {
		t.Errorf("mask = %#b", m)
	}
	if _, err := c.Mask("nope"); !errors.Is(err, ErrUnknownEffect) {
		t.Errorf("expected ErrUnknownEffect, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	c := fiveEffectCatalog(t)
	got := c.Describe(0b100110 | 1<<40)
	want := []string{"p1", "p2", "t5"}
	if len(got) != len(want) {
		t.Fatalf("got %d effects, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("effect %d = %q, want %q", i, got[i].ID, want[i])
		}
	}
}

func TestBitHelpers(t *testing.T) {
	var m types.Bitmask = 1<<0 | 1<<7 | 1<<63
	if !Has(m, 63) || Has(m, 1) || Has(m, 64) {
		t.Error("Has gave wrong answer")
	}
	if Count(m) != 3 {
		t.Errorf("Count = %d, want 3", Count(m))
	}
	b := Bits(m)
	if len(b) != 3 || b[0] != 0 || b[1] != 7 || b[2] != 63 {
		t.Errorf("Bits = %v", b)
	}
}

func TestStandard(t *testing.T) {
	c := Standard()

	tt, ok := c.Type("reality")
	if !ok || !tt.Random || len(tt.Requires) != 2 {
		t.Errorf("reality type = %+v", tt)
	}
	for _, id := range []string{"cursed", "tribute"} {
		if typ, ok := c.Type(id); !ok || typ.Random {
			t.Errorf("%s should exist and not be drawable", id)
		}
	}
	if _, ok := c.Effect("timespeed"); !ok {
		t.Error("standard catalog should carry timespeed")
	}
	// Every drawable basic type has at least two effects so a restricted
	// draw still carries something.
	for _, typ := range c.Types() {
		if typ.Random && len(c.EffectsFor(typ.ID)) < 2 {
			t.Errorf("type %q has %d effects", typ.ID, len(c.EffectsFor(typ.ID)))
		}
	}
}
