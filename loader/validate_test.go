package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/nathoo/glyphcore/engine/state"
	"github.com/nathoo/glyphcore/types"
)

// validCompiled returns minimal valid compiled content for testing.
func validCompiled() *compiled {
	return &compiled{
		content: types.ContentDef{Title: "Test", Version: "t-1"},
		balance: state.DefaultBalance(),
		types: []types.TypeDef{
			{ID: "power", Random: true},
			{ID: "time", Random: true},
			{ID: "reality", Random: true},
			{ID: "cursed"},
			{ID: "tribute"},
		},
		effects: []types.EffectDef{
			{ID: "powerpow", Bit: 0, Types: []string{"power"}},
			{ID: "timespeed", Bit: 1, Types: []string{"time"}},
			{ID: "realityglyphlevel", Bit: 2, Types: []string{"reality"}},
			{ID: "cursedEP", Bit: 3, Types: []string{"cursed"}},
			{ID: "tributegain", Bit: 4, Types: []string{"tribute"}},
		},
	}
}

func assertContains(t *testing.T, list []string, substr string) {
	t.Helper()
	for _, s := range list {
		if strings.Contains(s, substr) {
			return
		}
	}
	t.Errorf("expected an entry containing %q, got %v", substr, list)
}

func TestBuild_Valid(t *testing.T) {
	defs, warnings, err := build(validCompiled())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if defs.Catalog.Version() != "t-1" {
		t.Errorf("catalog version = %q", defs.Catalog.Version())
	}
}

func TestBuild_EmptyTitleAndVersion(t *testing.T) {
	c := validCompiled()
	c.content = types.ContentDef{}

	_, _, err := build(c)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	assertContains(t, ve.Errors, "Title")
	assertContains(t, ve.Errors, "Version")
}

func TestBuild_CatalogErrorsAggregated(t *testing.T) {
	c := validCompiled()
	c.effects = append(c.effects,
		types.EffectDef{ID: "powerpow", Bit: 9, Types: []string{"power"}},
		types.EffectDef{ID: "dup", Bit: 0, Types: []string{"power"}},
		types.EffectDef{ID: "wide", Bit: 70, Types: []string{"power"}},
	)

	_, _, err := build(c)
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Errors) != 3 {
		t.Errorf("expected 3 errors, got %v", ve.Errors)
	}
	assertContains(t, ve.Errors, "duplicate effect")
	assertContains(t, ve.Errors, "bit already assigned")
	assertContains(t, ve.Errors, "bit out of range")
}

func TestBuild_BalanceChecks(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.BalanceDef)
		want   string
	}{
		{"negative slope", func(b *types.BalanceDef) { b.StrengthPerRarity = -1 }, "strength_per_rarity"},
		{"cosmetic factor", func(b *types.BalanceDef) { b.CosmeticLevelFactor = 1.5 }, "cosmetic_level_factor"},
		{"tribute scale", func(b *types.BalanceDef) { b.TributeScale = -3 }, "tribute_scale"},
		{"slots", func(b *types.BalanceDef) { b.ActiveSlots = -1 }, "active_slots"},
		{"thresholds", func(b *types.BalanceDef) { b.MilestoneThresholds = []int{0, 20, 10} }, "milestone_thresholds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCompiled()
			tt.mutate(&c.balance)
			_, _, err := build(c)
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			assertContains(t, ve.Errors, tt.want)
		})
	}
}

func TestBuild_UnknownConditionAndEffect(t *testing.T) {
	c := validCompiled()
	c.types[0].Requires = []types.Condition{{Type: "not", Inner: &types.Condition{Type: "in_room"}}}
	c.handlers = []types.EventHandler{{
		EventType:  "glyph_kept",
		Conditions: []types.Condition{{Type: "has_item"}},
		Effects:    []types.Effect{{Type: "give_item"}},
	}}

	_, _, err := build(c)
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	assertContains(t, ve.Errors, `"in_room"`)
	assertContains(t, ve.Errors, `"has_item"`)
	assertContains(t, ve.Errors, `"give_item"`)
}

func TestBuild_Warnings(t *testing.T) {
	c := validCompiled()
	c.types = append(c.types, types.TypeDef{ID: "empty", Random: true},
		types.TypeDef{ID: "locked", Requires: []types.Condition{{Type: "flag_set", Params: map[string]any{"flag": "x"}}}})
	c.balance.MilestoneType = "nowhere"
	c.balance.StarterExtraEffect = "missing"
	c.handlers = []types.EventHandler{{
		EventType: "custom",
		Effects:   []types.Effect{{Type: "say", Params: map[string]any{"text": "x"}}},
	}}

	defs, warnings, err := build(c)
	if err != nil {
		t.Fatalf("warnings must not fail the build: %v", err)
	}
	if defs == nil {
		t.Fatal("expected defs")
	}
	assertContains(t, warnings, `"empty" can be drawn but has no effects`)
	assertContains(t, warnings, `"locked" has unlock conditions`)
	assertContains(t, warnings, "milestone_type")
	assertContains(t, warnings, "starter_extra_effect")
	assertContains(t, warnings, `"custom" will never run`)
}
