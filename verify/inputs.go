package verify

import (
	"math"
	"math/rand/v2"
)

// Ramp returns n values float32(i)/12 widened to float64, the array the
// original benchmarks format.
func Ramp(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(float32(float32(i) / 12))
	}
	return values
}

// RandomBits returns n doubles with uniformly random bit patterns,
// including NaNs, infinities and subnormals. The same seed yields the same
// values.
func RandomBits(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Float64frombits(rng.Uint64())
	}
	return values
}

// Specials returns the edge values every formatter must get right.
func Specials() []float64 {
	return []float64{
		0,
		math.Copysign(0, -1),
		math.NaN(),
		math.Inf(1),
		math.Inf(-1),
		math.SmallestNonzeroFloat64,
		-math.SmallestNonzeroFloat64,
		math.Float64frombits(0x000FFFFFFFFFFFFF), // largest subnormal
		math.Float64frombits(0x0010000000000000), // smallest normal
		math.MaxFloat64,
		-math.MaxFloat64,
		1,
		-1,
		0.1,
		0.3,
		1.0 / 3,
		2.0 / 3,
		math.Pi,
		math.E,
		1e-3,
		1e-4,
		9.999999999999999e-4,
		1e7,
		9999999,
		1e15,
		1e16,
		1e22,
		1e23,
		5e-324,
		9007199254740993,
		1 << 53,
		1 << 63,
		123456789012345680,
		2.2250738585072014e-308,
		1.7976931348623157e308,
		float64(float32(0.1)),
		float64(math.MaxFloat32),
		float64(math.SmallestNonzeroFloat32),
	}
}

// PowersOfTen returns 10^e for every representable exponent.
func PowersOfTen() []float64 {
	values := make([]float64, 0, 632)
	for e := -323; e <= 308; e++ {
		values = append(values, math.Pow10(e))
	}
	return values
}
