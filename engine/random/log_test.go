package random

import (
	"math"
	"testing"
)

func TestFdlibmLog_BitExact(t *testing.T) {
	tests := []struct {
		x    uint64
		want uint64
	}{
		{0x3fe6c2153e00d1a2, 0xbfd5cfe207ddd216}, // 0.7111917696952796
		{0x3fe2d91b4369c451, 0xbfe0f03b88056170}, // 0.5890022579825517
		{0x3fd92b176af6d496, 0xbfeddd913606f438}, // 0.39325509496422606
		{0x3fe1448bcfae2b23, 0xbfe3bd9a343b6c9c}, // 0.5396174484497788
		{0x3fe23d6f3e37b4f2, 0xbfe1fce343a64daa}, // 0.5699993338763802
		{0x3fee561521d1934e, 0xbfab56393417a333}, // 0.948008123447474
		{0x000012688b70e62b, 0xc0864e69394d9508}, // 1e-310, subnormal
		{0x3fe0000000000000, 0xbfe62e42fefa39ef}, // 0.5
		{0x7e37e43c8800759c, 0x4085963447f87fb5}, // 1e300
		{0x3ff0000000000000, 0x0000000000000000}, // 1
	}
	for _, tt := range tests {
		x := math.Float64frombits(tt.x)
		if got := math.Float64bits(fdlibmLog(x)); got != tt.want {
			t.Errorf("log(%v) = %#x (%v), want %#x (%v)",
				x, got, math.Float64frombits(got), tt.want, math.Float64frombits(tt.want))
		}
	}
}

func TestFdlibmLog_Special(t *testing.T) {
	if got := fdlibmLog(0); !math.IsInf(got, -1) {
		t.Errorf("log(0) = %v, want -Inf", got)
	}
	if got := fdlibmLog(math.Copysign(0, -1)); !math.IsInf(got, -1) {
		t.Errorf("log(-0) = %v, want -Inf", got)
	}
	if got := fdlibmLog(-1); !math.IsNaN(got) {
		t.Errorf("log(-1) = %v, want NaN", got)
	}
	if got := fdlibmLog(math.Inf(1)); !math.IsInf(got, 1) {
		t.Errorf("log(+Inf) = %v, want +Inf", got)
	}
	if got := fdlibmLog(math.NaN()); !math.IsNaN(got) {
		t.Errorf("log(NaN) = %v, want NaN", got)
	}
	if got := fdlibmLog(math.E); math.Abs(got-1) > 1e-15 {
		t.Errorf("log(e) = %v, want 1", got)
	}
}
