// Package loader loads Lua content (glyph types, the effect catalog, balance
// data and event handlers) into Go structs at load time. The Lua VM is
// discarded after loading; zero Lua at runtime.
package loader

import (
	"fmt"
	"sort"

	"github.com/nathoo/glyphcore/engine/state"
	"github.com/nathoo/glyphcore/types"
	lua "github.com/yuin/gopher-lua"
)

// rawType holds a glyph type table before compilation.
type rawType struct {
	id    string
	table *lua.LTable
}

// rawEffect holds an effect table before compilation.
type rawEffect struct {
	id    string
	table *lua.LTable
}

// rawHandler holds an event handler before compilation.
type rawHandler struct {
	eventType string
	table     *lua.LTable
}

// compiled is the Go form of the collected content, before validation and
// catalog construction.
type compiled struct {
	content  types.ContentDef
	balance  types.BalanceDef
	types    []types.TypeDef
	effects  []types.EffectDef
	handlers []types.EventHandler
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the array part of a table field as strings. A present
// but empty table yields an empty, non-nil slice.
func getStrings(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	out := []string{}
	for i := 1; i <= arr.MaxN(); i++ {
		if s, ok := arr.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// getInts returns the array part of a table field as ints.
func getInts(tbl *lua.LTable, key string) []int {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	out := []int{}
	for i := 1; i <= arr.MaxN(); i++ {
		if n, ok := arr.RawGetInt(i).(lua.LNumber); ok {
			out = append(out, int(n))
		}
	}
	return out
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Sequential integer keys starting at 1 make an array.
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// tableToAnyMap converts a Lua table to a map[string]any.
func tableToAnyMap(tbl *lua.LTable) map[string]any {
	if tbl == nil {
		return nil
	}
	m := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			m[string(ks)] = toGoValue(v)
		}
	})
	return m
}

// compile converts all collected Lua data into Go definitions.
func compile(coll *collector) (*compiled, error) {
	c := &compiled{}

	if coll.content == nil {
		return nil, fmt.Errorf("no Content{} definition found")
	}
	c.content = compileContent(coll.content)

	if coll.balance != nil {
		c.balance = compileBalance(coll.balance)
	}
	c.balance = state.FillBalance(c.balance)

	for _, raw := range coll.types {
		c.types = append(c.types, compileType(raw))
	}

	for _, raw := range coll.effects {
		eff, err := compileEffectDef(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling effect %s: %w", raw.id, err)
		}
		c.effects = append(c.effects, eff)
	}

	for _, raw := range coll.handlers {
		handler, err := compileHandler(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling handler: %w", err)
		}
		c.handlers = append(c.handlers, handler)
	}

	return c, nil
}

func compileContent(tbl *lua.LTable) types.ContentDef {
	return types.ContentDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Intro:   getString(tbl, "intro"),
	}
}

// compileBalance reads the balance table. Missing fields stay zero and are
// filled from the defaults afterwards.
func compileBalance(tbl *lua.LTable) types.BalanceDef {
	return types.BalanceDef{
		StrengthBase:      getNumber(tbl, "strength_base"),
		StrengthPerRarity: getNumber(tbl, "strength_per_rarity"),
		RarityCap:         getNumber(tbl, "rarity_cap"),

		RarityBase:        getNumber(tbl, "rarity_base"),
		RarityBonuses:     getStrings(tbl, "rarity_bonuses"),
		RarityMultipliers: getStrings(tbl, "rarity_multipliers"),

		ExtraEffectFlag: getString(tbl, "extra_effect_flag"),

		MilestoneType:       getString(tbl, "milestone_type"),
		MilestoneThresholds: getInts(tbl, "milestone_thresholds"),
		MilestoneRarity:     getNumber(tbl, "milestone_rarity"),

		CosmeticLevelFactor: getNumber(tbl, "cosmetic_level_factor"),
		CosmeticTag:         getString(tbl, "cosmetic_tag"),

		StarterStrength:    getNumber(tbl, "starter_strength"),
		StarterMinLevel:    getInt(tbl, "starter_min_level"),
		StarterExtraEffect: getString(tbl, "starter_extra_effect"),

		CursedType:   getString(tbl, "cursed_type"),
		CursedLevel:  getInt(tbl, "cursed_level"),
		CursedRarity: getNumber(tbl, "cursed_rarity"),

		TributeType:  getString(tbl, "tribute_type"),
		TributeScale: getNumber(tbl, "tribute_scale"),

		ActiveSlots: getInt(tbl, "active_slots"),
	}
}

func compileType(raw rawType) types.TypeDef {
	def := types.TypeDef{
		ID:     raw.id,
		Random: getBool(raw.table, "random", false),
		Color:  getString(raw.table, "color"),
	}
	if reqTbl := getTable(raw.table, "requires"); reqTbl != nil {
		def.Requires = compileConditions(reqTbl)
	}
	return def
}

func compileEffectDef(raw rawEffect) (types.EffectDef, error) {
	bit, ok := raw.table.RawGetString("bit").(lua.LNumber)
	if !ok {
		return types.EffectDef{}, fmt.Errorf("bit is required")
	}
	if bit < 0 || float64(bit) != float64(int(bit)) {
		return types.EffectDef{}, fmt.Errorf("bit must be a non-negative integer, got %v", bit)
	}
	return types.EffectDef{
		ID:          raw.id,
		Bit:         uint(bit),
		Types:       getStrings(raw.table, "types"),
		Description: getString(raw.table, "description"),
	}, nil
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	for i := 1; i <= tbl.MaxN(); i++ {
		if condTbl, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			conditions = append(conditions, compileCondition(condTbl))
		}
	}
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")

	if condType == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			return types.Condition{
				Type:   "not",
				Negate: true,
				Inner:  &inner,
			}
		}
	}

	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			key := string(ks)
			if key != "type" {
				params[key] = toGoValue(v)
			}
		}
	})

	return types.Condition{
		Type:   condType,
		Params: params,
	}
}

func compileEffects(tbl *lua.LTable) []types.Effect {
	var effects []types.Effect
	for i := 1; i <= tbl.MaxN(); i++ {
		if effTbl, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			effects = append(effects, compileEffect(effTbl))
		}
	}
	return effects
}

func compileEffect(tbl *lua.LTable) types.Effect {
	effType := getString(tbl, "type")
	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			key := string(ks)
			if key != "type" {
				params[key] = toGoValue(v)
			}
		}
	})
	return types.Effect{
		Type:   effType,
		Params: params,
	}
}

func compileHandler(raw rawHandler) (types.EventHandler, error) {
	handler := types.EventHandler{
		EventType: raw.eventType,
		Match:     tableToAnyMap(getTable(raw.table, "match")),
	}
	if condTbl := getTable(raw.table, "conditions"); condTbl != nil {
		handler.Conditions = compileConditions(condTbl)
	}
	if effTbl := getTable(raw.table, "effects"); effTbl != nil {
		handler.Effects = compileEffects(effTbl)
	}
	if len(handler.Effects) == 0 {
		return handler, fmt.Errorf("handler for %q has no effects", raw.eventType)
	}
	return handler, nil
}

// sortedLuaFiles returns .lua files with content.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var contentFile string
	var others []string
	for _, f := range files {
		if f == "content.lua" {
			contentFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if contentFile != "" {
		return append([]string{contentFile}, others...)
	}
	return others
}
