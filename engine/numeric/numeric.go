// Package numeric provides the currency numbers the generator reads.
//
// Currency can exceed float64 range, so the generator only ever asks for
// a base-10 logarithm.
package numeric

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ErrParse reports text that is not a decimal number.
var ErrParse = errors.New("numeric: invalid number")

// precision is the mantissa size of Big values, in bits.
const precision = 128

// Big is an arbitrary-magnitude currency amount backed by math/big. The
// zero value is 0.
type Big struct {
	f *big.Float
}

// Parse reads a decimal or scientific literal such as "1e500000", or a
// power such as "10^400".
func Parse(s string) (Big, error) {
	s = strings.TrimSpace(s)
	if base, exp, ok := strings.Cut(s, "^"); ok {
		b, err := Parse(base)
		if err != nil {
			return Big{}, err
		}
		n, err := strconv.ParseUint(strings.TrimSpace(exp), 10, 32)
		if err != nil {
			return Big{}, fmt.Errorf("%w: %q", ErrParse, s)
		}
		return b.Pow(uint(n)), nil
	}
	f, _, err := big.ParseFloat(s, 10, precision, big.ToNearestEven)
	if err != nil {
		return Big{}, fmt.Errorf("%w: %q", ErrParse, s)
	}
	return Big{f: f}, nil
}

func (b Big) val() *big.Float {
	if b.f == nil {
		return new(big.Float).SetPrec(precision)
	}
	return b.f
}

// Log10 returns log10 of b. Non-positive values return -Inf.
func (b Big) Log10() float64 {
	v := b.val()
	if v.Sign() <= 0 {
		return math.Inf(-1)
	}
	if v.IsInf() {
		return math.Inf(1)
	}
	mant := new(big.Float)
	exp := v.MantExp(mant)
	m, _ := mant.Float64()
	return math.Log10(m) + float64(exp)*math.Log10(2)
}

// Pow returns b raised to a non-negative integer power.
func (b Big) Pow(n uint) Big {
	result := new(big.Float).SetPrec(precision).SetInt64(1)
	base := new(big.Float).SetPrec(precision).Set(b.val())
	for n > 0 {
		if n&1 == 1 {
			result.Mul(result, base)
		}
		base.Mul(base, base)
		n >>= 1
	}
	return Big{f: result}
}

// ClampMin returns b, or lo when b is smaller.
func (b Big) ClampMin(lo float64) Big {
	floor := new(big.Float).SetPrec(precision).SetFloat64(lo)
	if b.val().Cmp(floor) < 0 {
		return Big{f: floor}
	}
	return b
}

// String formats b in scientific notation.
func (b Big) String() string {
	return b.val().Text('g', 6)
}
