package catalog

import "github.com/nathoo/glyphcore/types"

// Standard flag names gating the extended types.
const (
	FlagEffarig    = "effarig_unlocked"
	FlagFabric15   = "fabric15"
	FlagEffarigPet = "effarig_pet6"
)

func flagSet(name string) types.Condition {
	return types.Condition{Type: "flag_set", Params: map[string]any{"flag": name}}
}

// StandardTypes returns the builtin type list in draw order.
func StandardTypes() []types.TypeDef {
	return []types.TypeDef{
		{ID: "power", Random: true, Color: "#22aa48"},
		{ID: "infinity", Random: true, Color: "#b67f33"},
		{ID: "replication", Random: true, Color: "#03a9f4"},
		{ID: "time", Random: true, Color: "#b241e3"},
		{ID: "dilation", Random: true, Color: "#64dd17"},
		{ID: "effarig", Random: true, Color: "#e21717",
			Requires: []types.Condition{flagSet(FlagEffarig)}},
		{ID: "reality", Random: true, Color: "#ffffff",
			Requires: []types.Condition{flagSet(FlagFabric15), flagSet(FlagEffarigPet)}},
		{ID: "cursed", Color: "#5151ec"},
		{ID: "tribute", Color: "#feaec9"},
	}
}

// StandardEffects returns the builtin effect catalog.
func StandardEffects() []types.EffectDef {
	return []types.EffectDef{
		{ID: "powerpow", Bit: 0, Types: []string{"power"}, Description: "Dimension multipliers raised to a power"},
		{ID: "powermult", Bit: 1, Types: []string{"power"}, Description: "Dimension multipliers increased"},
		{ID: "powerdimboost", Bit: 2, Types: []string{"power"}, Description: "Dimension boosts stronger"},
		{ID: "powerbuy10", Bit: 3, Types: []string{"power"}, Description: "Bulk purchase bonus increased"},

		{ID: "infinitypow", Bit: 4, Types: []string{"infinity"}, Description: "Infinity dimensions raised to a power"},
		{ID: "infinityrate", Bit: 5, Types: []string{"infinity"}, Description: "Infinity power conversion improved"},
		{ID: "infinityipgain", Bit: 6, Types: []string{"infinity"}, Description: "Infinity point gain multiplied"},
		{ID: "infinityinfmult", Bit: 7, Types: []string{"infinity"}, Description: "Infinity count gain multiplied"},

		{ID: "replicationspeed", Bit: 8, Types: []string{"replication"}, Description: "Replication speed multiplied"},
		{ID: "replicationpow", Bit: 9, Types: []string{"replication"}, Description: "Replicanti multiplier raised to a power"},
		{ID: "replicationdtgain", Bit: 10, Types: []string{"replication"}, Description: "Dilated time gain per replicanti"},
		{ID: "replicationglyphlevel", Bit: 11, Types: []string{"replication"}, Description: "Replicanti factor for glyph level"},

		{ID: "timepow", Bit: 12, Types: []string{"time"}, Description: "Time dimensions raised to a power"},
		{ID: "timespeed", Bit: 13, Types: []string{"time"}, Description: "Game speed multiplied"},
		{ID: "timeeternity", Bit: 14, Types: []string{"time"}, Description: "Eternity gain multiplied"},
		{ID: "timeEP", Bit: 15, Types: []string{"time"}, Description: "Eternity point gain multiplied"},

		{ID: "dilationdilationMult", Bit: 16, Types: []string{"dilation"}, Description: "Dilated time gain multiplied"},
		{ID: "dilationgalaxyThreshold", Bit: 17, Types: []string{"dilation"}, Description: "Tachyon galaxy threshold reduced"},
		{ID: "dilationTTgen", Bit: 18, Types: []string{"dilation"}, Description: "Time theorems generated over time"},
		{ID: "dilationpow", Bit: 19, Types: []string{"dilation"}, Description: "Dimensions raised to a power while dilated"},

		{ID: "effarigrm", Bit: 20, Types: []string{"effarig"}, Description: "Reality machine gain multiplied"},
		{ID: "effarigglyph", Bit: 21, Types: []string{"effarig"}, Description: "Instability threshold raised"},
		{ID: "effarigblackhole", Bit: 22, Types: []string{"effarig"}, Description: "Game speed from black holes raised"},
		{ID: "effarigachievement", Bit: 23, Types: []string{"effarig"}, Description: "Achievement multiplier raised"},
		{ID: "effarigforgotten", Bit: 24, Types: []string{"effarig"}, Description: "Buy-ten bonus raised"},
		{ID: "effarigdimensions", Bit: 25, Types: []string{"effarig"}, Description: "All dimensions raised to a power"},
		{ID: "effarigantimatter", Bit: 26, Types: []string{"effarig"}, Description: "Antimatter production raised"},

		{ID: "realityglyphlevel", Bit: 27, Types: []string{"reality"}, Description: "Glyph level increased"},
		{ID: "realitygalaxies", Bit: 28, Types: []string{"reality"}, Description: "All galaxies stronger"},
		{ID: "realityrow1pow", Bit: 29, Types: []string{"reality"}, Description: "First row multipliers raised"},
		{ID: "realityDTglyph", Bit: 30, Types: []string{"reality"}, Description: "Dilated time factor for glyph level"},

		{ID: "cursedgalaxies", Bit: 31, Types: []string{"cursed"}, Description: "All galaxies weaker"},
		{ID: "curseddimensions", Bit: 32, Types: []string{"cursed"}, Description: "All dimensions raised to a smaller power"},
		{ID: "cursedtickspeed", Bit: 33, Types: []string{"cursed"}, Description: "Tickspeed upgrades weaker"},
		{ID: "cursedEP", Bit: 34, Types: []string{"cursed"}, Description: "Eternity point gain divided"},

		{ID: "tributegain", Bit: 35, Types: []string{"tribute"}, Description: "Currency gain multiplied"},
		{ID: "tributememory", Bit: 36, Types: []string{"tribute"}, Description: "Memory gain multiplied"},
	}
}

// Standard returns the builtin catalog. It panics if the builtin data is
// inconsistent, which the package tests rule out.
func Standard() *Catalog {
	c, err := New("standard-1", StandardTypes(), StandardEffects())
	if err != nil {
		panic(err)
	}
	return c
}
