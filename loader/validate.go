package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nathoo/glyphcore/engine/catalog"
	"github.com/nathoo/glyphcore/engine/state"
	"github.com/nathoo/glyphcore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known effect types.
var validEffectTypes = map[string]bool{
	"say":            true,
	"set_flag":       true,
	"inc_counter":    true,
	"set_counter":    true,
	"set_value":      true,
	"set_best_level": true,
	"emit_event":     true,
	"stop":           true,
}

// Known condition types.
var validConditionTypes = map[string]bool{
	"flag_set":   true,
	"flag_not":   true,
	"flag_is":    true,
	"counter_gt": true,
	"counter_lt": true,
	"value_gt":   true,
	"value_lt":   true,
	"not":        true,
}

// Events the engine dispatches to handlers.
var builtinEvents = map[string]bool{
	"flag_changed":     true,
	"glyph_kept":       true,
	"glyph_equipped":   true,
	"glyph_unequipped": true,
	"glyph_deleted":    true,
}

// build validates the compiled content and assembles the Defs. Warnings are
// returned even when validation fails.
func build(c *compiled) (*state.Defs, []string, error) {
	ve := &ValidationError{}
	validate(c, ve)

	cat, err := catalog.New(c.content.Version, c.types, c.effects)
	if err != nil {
		ve.Errors = append(ve.Errors, splitErrors(err)...)
	}

	if len(ve.Errors) > 0 {
		return nil, ve.Warnings, ve
	}
	validateCatalog(cat, c.balance, ve)

	return &state.Defs{
		Content:  c.content,
		Catalog:  cat,
		Balance:  c.balance,
		Handlers: c.handlers,
	}, ve.Warnings, nil
}

// splitErrors flattens an errors.Join aggregate into one line per error.
func splitErrors(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

// validate checks the compiled content for consistency that does not need
// the catalog.
func validate(c *compiled, ve *ValidationError) {
	if c.content.Title == "" {
		ve.Errors = append(ve.Errors, "Content.Title is required")
	}
	if c.content.Version == "" {
		ve.Errors = append(ve.Errors, "Content.Version is required")
	}

	b := c.balance
	if b.StrengthPerRarity < 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"Balance.strength_per_rarity must not be negative, got %v", b.StrengthPerRarity))
	}
	if b.CosmeticLevelFactor < 0 || b.CosmeticLevelFactor > 1 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"Balance.cosmetic_level_factor must be in [0, 1], got %v", b.CosmeticLevelFactor))
	}
	if b.TributeScale < 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"Balance.tribute_scale must be positive, got %v", b.TributeScale))
	}
	if b.ActiveSlots < 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"Balance.active_slots must not be negative, got %d", b.ActiveSlots))
	}
	for i := 1; i < len(b.MilestoneThresholds); i++ {
		if b.MilestoneThresholds[i] < b.MilestoneThresholds[i-1] {
			ve.Errors = append(ve.Errors, "Balance.milestone_thresholds must be ascending")
			break
		}
	}

	for _, t := range c.types {
		validateConditions(t.Requires, ve)
		if len(t.Requires) > 0 && !t.Random {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"glyph type %q has unlock conditions but is never drawn at random", t.ID))
		}
	}

	for _, h := range c.handlers {
		validateConditions(h.Conditions, ve)
		validateEffects(h.Effects, ve)
		if !builtinEvents[h.EventType] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"handler for %q will never run: handler effects are not re-dispatched", h.EventType))
		}
	}
}

// validateCatalog checks balance references against the built catalog.
// A dangling reference only disables the fixed kind that uses it.
func validateCatalog(cat *catalog.Catalog, b types.BalanceDef, ve *ValidationError) {
	for _, ref := range []struct{ field, id string }{
		{"milestone_type", b.MilestoneType},
		{"cursed_type", b.CursedType},
		{"tribute_type", b.TributeType},
	} {
		if _, ok := cat.Type(ref.id); !ok {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"Balance.%s references undefined glyph type %q", ref.field, ref.id))
		}
	}
	if _, ok := cat.Effect(b.StarterExtraEffect); !ok {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"Balance.starter_extra_effect references undefined effect %q", b.StarterExtraEffect))
	}

	for _, t := range cat.Types() {
		if t.Random && len(cat.EffectsFor(t.ID)) == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"glyph type %q can be drawn but has no effects", t.ID))
		}
	}
}

func validateConditions(conditions []types.Condition, ve *ValidationError) {
	for _, cond := range conditions {
		if !validConditionTypes[cond.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"unknown condition type %q", cond.Type))
		}
		if cond.Type == "not" && cond.Inner != nil {
			validateConditions([]types.Condition{*cond.Inner}, ve)
		}
	}
}

func validateEffects(effects []types.Effect, ve *ValidationError) {
	for _, eff := range effects {
		if !validEffectTypes[eff.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"unknown effect type %q", eff.Type))
		}
	}
}
