package random

import "math"

// Coefficients of the fdlibm e_log.c approximation.
const (
	ln2Hi = 6.93147180369123816490e-01 // 0x3fe62e42 fee00000
	ln2Lo = 1.90821492927058770002e-10 // 0x3dea39ef 35793c76
	two54 = 1.80143985094819840000e+16 // 0x43500000 00000000
	lg1   = 6.666666666666735130e-01   // 0x3fe55555 55555593
	lg2   = 3.999999999940941908e-01   // 0x3fd99999 9997fa04
	lg3   = 2.857142874366239149e-01   // 0x3fd24924 94229359
	lg4   = 2.222219843214978396e-01   // 0x3fcc71c5 1d8e78af
	lg5   = 1.818357216161805012e-01   // 0x3fc74664 96cb03de
	lg6   = 1.531383769920937332e-01   // 0x3fc39a09 d078c69f
	lg7   = 1.479819860511658591e-01   // 0x3fc2f112 df3e5244
)

// fdlibmLog is the natural logarithm as computed by fdlibm's e_log.c.
// math.Log may differ from it in the last bit, and the gaussian stream
// must match other implementations bit for bit. Every product is rounded
// explicitly so no platform fuses it into a multiply-add.
func fdlibmLog(x float64) float64 {
	bits := math.Float64bits(x)
	hx := int32(bits >> 32)
	lx := uint32(bits)

	var k int32
	if hx < 0x00100000 {
		if uint32(hx&0x7fffffff)|lx == 0 {
			return math.Inf(-1)
		}
		if hx < 0 {
			return math.NaN()
		}
		// Subnormal: scale up.
		k -= 54
		x *= two54
		hx = int32(math.Float64bits(x) >> 32)
	}
	if hx >= 0x7ff00000 {
		return x + x
	}
	k += (hx >> 20) - 1023
	hx &= 0x000fffff
	i := (hx + 0x95f64) & 0x100000
	// Normalize x or x/2 into [sqrt(2)/2, sqrt(2)).
	lo := math.Float64bits(x) & 0xffffffff
	x = math.Float64frombits(uint64(uint32(hx|(i^0x3ff00000)))<<32 | lo)
	k += i >> 20
	f := x - 1.0
	dk := float64(k)

	if (0x000fffff & (2 + hx)) < 3 { // |f| < 2^-20
		if f == 0 {
			if k == 0 {
				return 0
			}
			return float64(dk*ln2Hi) + float64(dk*ln2Lo)
		}
		r := float64(float64(f*f) * (0.5 - float64(0.33333333333333333*f)))
		if k == 0 {
			return f - r
		}
		return float64(dk*ln2Hi) - ((r - float64(dk*ln2Lo)) - f)
	}

	s := f / (2.0 + f)
	z := float64(s * s)
	i = hx - 0x6147a
	w := float64(z * z)
	j := 0x6b851 - hx
	t1 := float64(w * (lg2 + float64(w*(lg4+float64(w*lg6)))))
	t2 := float64(z * (lg1 + float64(w*(lg3+float64(w*(lg5+float64(w*lg7)))))))
	i |= j
	r := t2 + t1
	if i > 0 {
		hfsq := float64(float64(0.5*f) * f)
		if k == 0 {
			return f - (hfsq - float64(s*(hfsq+r)))
		}
		return float64(dk*ln2Hi) - ((hfsq - (float64(s*(hfsq+r)) + float64(dk*ln2Lo))) - f)
	}
	if k == 0 {
		return f - float64(s*(f-r))
	}
	return float64(dk*ln2Hi) - ((float64(s*(f-r)) - float64(dk*ln2Lo)) - f)
}
