// Package curve converts rarity scores to glyph strength and shapes
// gaussian samples into the bell curve used by strength rolls.
package curve

import (
	"math"

	"github.com/nathoo/glyphcore/types"
)

// Defaults for Balance fields left at zero.
const (
	DefaultStrengthBase      = 1
	DefaultStrengthPerRarity = 0.025
)

// Balance is the curve's slice of the balance data.
type Balance struct {
	StrengthBase      float64
	StrengthPerRarity float64
	RarityCap         float64
}

// DefaultBalance returns 1 + 2.5 strength per 100 rarity, uncapped.
func DefaultBalance() Balance {
	return Balance{
		StrengthBase:      DefaultStrengthBase,
		StrengthPerRarity: DefaultStrengthPerRarity,
		RarityCap:         math.MaxFloat64,
	}
}

// FromDef extracts the curve parameters from def, applying defaults to
// zero fields.
func FromDef(def types.BalanceDef) Balance {
	b := DefaultBalance()
	if def.StrengthBase != 0 {
		b.StrengthBase = def.StrengthBase
	}
	if def.StrengthPerRarity != 0 {
		b.StrengthPerRarity = def.StrengthPerRarity
	}
	if def.RarityCap > 0 {
		b.RarityCap = def.RarityCap
	}
	return b
}

// RarityToStrength maps a rarity score to strength. NaN and negative
// scores count as 0; scores above the cap, +Inf included, count as the cap.
func (b Balance) RarityToStrength(score float64) float64 {
	return b.StrengthBase + b.clamp(score)*b.StrengthPerRarity
}

// StrengthToRarity is the display inverse of RarityToStrength.
func (b Balance) StrengthToRarity(strength float64) float64 {
	if b.StrengthPerRarity == 0 {
		return 0
	}
	return (strength - b.StrengthBase) / b.StrengthPerRarity
}

func (b Balance) clamp(score float64) float64 {
	switch {
	case math.IsNaN(score) || score < 0:
		return 0
	case score > b.RarityCap:
		return b.RarityCap
	default:
		return score
	}
}

// Coefficients of the cubic in sqrt(|g|+1) approximating (|g|+1)^0.65.
const (
	bellA = -0.111749606737
	bellB = 0.900603878243551
	bellC = 0.229108274476697
	bellD = -0.017962545983249
)

// BellCurve maps a gaussian sample onto a right-skewed factor >= ~1.
func BellCurve(g float64) float64 {
	y := math.Sqrt(math.Abs(g) + 1)
	// Each product is rounded before the add so the result does not
	// depend on FMA availability.
	t := float64(y*bellD) + bellC
	t = float64(y*t) + bellB
	return float64(y*t) + bellA
}

// Normaler is the source of standard-normal samples.
type Normaler interface {
	Normal() (float64, error)
}

// GaussianBellCurve draws one normal sample and applies BellCurve.
func GaussianBellCurve(n Normaler) (float64, error) {
	g, err := n.Normal()
	if err != nil {
		return 0, err
	}
	return BellCurve(g), nil
}
