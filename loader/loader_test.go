package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/nathoo/glyphcore/engine/catalog"
	"github.com/nathoo/glyphcore/engine/state"
	"github.com/nathoo/glyphcore/types"
)

func TestLoad_MinimalContent(t *testing.T) {
	defs, err := Load("testdata/minimal")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if defs.Content.Title != "Minimal Glyphs" {
		t.Errorf("Title = %q, want %q", defs.Content.Title, "Minimal Glyphs")
	}
	if defs.Catalog.Version() != "min-1" {
		t.Errorf("catalog version = %q", defs.Catalog.Version())
	}
	if got := defs.Catalog.EffectsForType("power", true); got != 1 {
		t.Errorf("power mask = %b, want 1", got)
	}
	if defs.Balance.ActiveSlots != 3 || defs.Balance.StrengthPerRarity != 0.025 {
		t.Errorf("balance defaults not applied: %+v", defs.Balance)
	}
}

func TestLoad_FullContent(t *testing.T) {
	defs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if defs.Content.Author != "Tester" || defs.Content.Intro != "Welcome." {
		t.Errorf("content = %+v", defs.Content)
	}

	// Balance overrides and defaults.
	b := defs.Balance
	if b.StrengthPerRarity != 0.05 || b.RarityCap != 500 || b.ActiveSlots != 5 {
		t.Errorf("balance overrides lost: %+v", b)
	}
	if b.RarityBonuses == nil || len(b.RarityBonuses) != 0 {
		t.Errorf("empty rarity_bonuses should disable bonuses, got %v", b.RarityBonuses)
	}
	if len(b.RarityMultipliers) != 1 || b.RarityMultipliers[0] != "rarity_mult" {
		t.Errorf("rarity multipliers = %v", b.RarityMultipliers)
	}
	if len(b.MilestoneThresholds) != 3 || b.MilestoneThresholds[2] != 20 {
		t.Errorf("thresholds = %v", b.MilestoneThresholds)
	}

	// Types keep declaration order.
	var ids []string
	for _, typ := range defs.Catalog.Types() {
		ids = append(ids, typ.ID)
	}
	if strings.Join(ids, ",") != "power,time,reality,cursed,tribute" {
		t.Errorf("types = %v", ids)
	}
	reality, _ := defs.Catalog.Type("reality")
	if len(reality.Requires) != 2 || reality.Requires[1].Type != "not" || reality.Requires[1].Inner.Type != "counter_lt" {
		t.Errorf("reality requires = %+v", reality.Requires)
	}
	cursed, _ := defs.Catalog.Type("cursed")
	if cursed.Random {
		t.Error("cursed should not be random")
	}

	// Effects.
	if got := defs.Catalog.EffectsForType("time", true); got != 0b110000 {
		t.Errorf("time mask = %b", got)
	}
	if got := defs.Catalog.EffectsForType("tribute", true); !catalog.Has(got, 63) {
		t.Errorf("tribute mask = %b", got)
	}
	eff, ok := defs.Catalog.Effect("timespeed")
	if !ok || eff.Description != "Faster" {
		t.Errorf("timespeed = %+v", eff)
	}

	// Handlers.
	if len(defs.Handlers) != 2 {
		t.Fatalf("expected 2 handlers, got %d", len(defs.Handlers))
	}
	h := defs.Handlers[0]
	if h.EventType != "glyph_kept" || h.Match["type"] != "cursed" {
		t.Errorf("handler = %+v", h)
	}
	if len(h.Conditions) != 1 || h.Conditions[0].Type != "flag_not" {
		t.Errorf("handler conditions = %+v", h.Conditions)
	}
	if len(h.Effects) != 3 || h.Effects[2].Type != "emit_event" || h.Effects[2].Params["event"] != "curse_noticed" {
		t.Errorf("handler effects = %+v", h.Effects)
	}
	if v := defs.Handlers[1].Effects[1].Params["value"]; v != 0.5 {
		t.Errorf("set_value value = %v", v)
	}
}

func TestLoad_StandardContentMatchesBuiltin(t *testing.T) {
	defs, err := Load("../content/standard")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	std := catalog.Standard()

	if defs.Catalog.Version() != std.Version() {
		t.Errorf("version = %q, want %q", defs.Catalog.Version(), std.Version())
	}
	if len(defs.Catalog.Effects()) != len(std.Effects()) {
		t.Fatalf("effects = %d, want %d", len(defs.Catalog.Effects()), len(std.Effects()))
	}
	for i, e := range std.Effects() {
		got := defs.Catalog.Effects()[i]
		if got.ID != e.ID || got.Bit != e.Bit || got.Description != e.Description {
			t.Errorf("effect %d = %+v, want %+v", i, got, e)
		}
	}
	for _, typ := range std.Types() {
		if defs.Catalog.EffectsForType(typ.ID, true) != std.EffectsForType(typ.ID, true) {
			t.Errorf("type %q mask differs", typ.ID)
		}
	}

	want := state.DefaultBalance()
	got := defs.Balance
	if got.StrengthPerRarity != want.StrengthPerRarity || got.CursedLevel != want.CursedLevel ||
		got.TributeScale != want.TributeScale || got.StarterExtraEffect != want.StarterExtraEffect {
		t.Errorf("balance = %+v", got)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	_, err := Load("testdata/bad_refs")
	if err == nil {
		t.Fatal("expected validation error")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	for _, want := range []string{
		"Content.Title",
		"cosmetic_level_factor",
		"milestone_thresholds",
		`unknown condition type "has_item"`,
		`unknown effect type "teleport"`,
		"duplicate type",
		"bit already assigned",
		"bit out of range",
		"unknown type",
	} {
		assertContains(t, ve.Errors, want)
	}
}

func TestLoad_MissingBit(t *testing.T) {
	_, err := Load("testdata/bad_bit")
	if err == nil || !strings.Contains(err.Error(), "bit is required") {
		t.Errorf("expected missing bit error, got %v", err)
	}
}

func TestLoad_NoContentDefinition(t *testing.T) {
	_, err := Load("testdata/no_content")
	if err == nil || !strings.Contains(err.Error(), "no Content{}") {
		t.Errorf("expected missing Content error, got %v", err)
	}
}

func TestLoad_NoLuaFiles(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "no .lua files") {
		t.Errorf("expected no .lua files error, got %v", err)
	}
}

func TestLoad_MissingDir(t *testing.T) {
	if _, err := Load("testdata/does_not_exist"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"types.lua", "effects.lua", "content.lua", "handlers.lua"})
	want := []string{"content.lua", "effects.lua", "handlers.lua", "types.lua"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestLoadedDefsDriveGeneration(t *testing.T) {
	defs, err := Load("testdata/full")
	if err != nil {
		t.Fatal(err)
	}
	s := state.NewState(defs)
	if len(s.Active) != 0 || s.Level != (types.LevelInfo{Actual: 1, Raw: 1}) {
		t.Errorf("fresh state = %+v", s)
	}
}
