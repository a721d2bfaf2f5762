package state

import "github.com/nathoo/glyphcore/types"

// DefaultBalance returns the standard balance data.
func DefaultBalance() types.BalanceDef {
	return types.BalanceDef{
		StrengthBase:      1,
		StrengthPerRarity: 0.025,

		RarityBase:        100,
		RarityBonuses:     []string{"rarity_bonus"},
		RarityMultipliers: []string{"rarity_mult"},

		ExtraEffectFlag: "extra_effect",

		MilestoneType:       "reality",
		MilestoneThresholds: []int{0, 9000, 15000, 25000},
		MilestoneRarity:     100,

		CosmeticLevelFactor: 0.8,
		CosmeticTag:         "music",

		StarterStrength:    3.5,
		StarterMinLevel:    5000,
		StarterExtraEffect: "timespeed",

		CursedType:   "cursed",
		CursedLevel:  6666,
		CursedRarity: 100,

		TributeType:  "tribute",
		TributeScale: 1e6,

		ActiveSlots: 3,
	}
}

// FillBalance returns b with every zero field replaced by its default.
func FillBalance(b types.BalanceDef) types.BalanceDef {
	d := DefaultBalance()
	if b.StrengthBase == 0 {
		b.StrengthBase = d.StrengthBase
	}
	if b.StrengthPerRarity == 0 {
		b.StrengthPerRarity = d.StrengthPerRarity
	}
	if b.RarityBase == 0 {
		b.RarityBase = d.RarityBase
	}
	if b.RarityBonuses == nil {
		b.RarityBonuses = d.RarityBonuses
	}
	if b.RarityMultipliers == nil {
		b.RarityMultipliers = d.RarityMultipliers
	}
	if b.ExtraEffectFlag == "" {
		b.ExtraEffectFlag = d.ExtraEffectFlag
	}
	if b.MilestoneType == "" {
		b.MilestoneType = d.MilestoneType
	}
	if b.MilestoneThresholds == nil {
		b.MilestoneThresholds = d.MilestoneThresholds
	}
	if b.MilestoneRarity == 0 {
		b.MilestoneRarity = d.MilestoneRarity
	}
	if b.CosmeticLevelFactor == 0 {
		b.CosmeticLevelFactor = d.CosmeticLevelFactor
	}
	if b.CosmeticTag == "" {
		b.CosmeticTag = d.CosmeticTag
	}
	if b.StarterStrength == 0 {
		b.StarterStrength = d.StarterStrength
	}
	if b.StarterMinLevel == 0 {
		b.StarterMinLevel = d.StarterMinLevel
	}
	if b.StarterExtraEffect == "" {
		b.StarterExtraEffect = d.StarterExtraEffect
	}
	if b.CursedType == "" {
		b.CursedType = d.CursedType
	}
	if b.CursedLevel == 0 {
		b.CursedLevel = d.CursedLevel
	}
	if b.CursedRarity == 0 {
		b.CursedRarity = d.CursedRarity
	}
	if b.TributeType == "" {
		b.TributeType = d.TributeType
	}
	if b.TributeScale == 0 {
		b.TributeScale = d.TributeScale
	}
	if b.ActiveSlots == 0 {
		b.ActiveSlots = d.ActiveSlots
	}
	return b
}
