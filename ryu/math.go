package ryu

import "math/bits"

// pow5Bits returns ceil(log2(5^e)) for e > 0, and 1 for e == 0.
// Valid for 0 <= e <= 3528.
func pow5Bits(e int32) int32 {
	return int32((uint32(e)*1217359)>>19) + 1
}

// log10Pow2 returns floor(log10(2^e)) for 0 <= e <= 1650.
func log10Pow2(e int32) uint32 {
	return (uint32(e) * 78913) >> 18
}

// log10Pow5 returns floor(log10(5^e)) for 0 <= e <= 2620.
func log10Pow5(e int32) uint32 {
	return (uint32(e) * 732923) >> 20
}

func pow5Factor(v uint64) uint32 {
	var count uint32
	for v != 0 {
		q := v / 5
		if v-5*q != 0 {
			break
		}
		v = q
		count++
	}
	return count
}

func multipleOfPowerOf5(v uint64, p uint32) bool {
	return pow5Factor(v) >= p
}

func multipleOfPowerOf2(v uint64, p uint32) bool {
	return v&(1<<p-1) == 0
}

func shiftRight128(lo, hi uint64, dist uint32) uint64 {
	if dist >= 64 {
		return hi >> (dist - 64)
	}
	return hi<<(64-dist) | lo>>dist
}

// mulShift64 computes (m * mul) >> j where mul is a 128-bit {low, high} pair.
// m is at most 55 bits and j is at least 64.
func mulShift64(m uint64, mul *[2]uint64, j int32) uint64 {
	hi1, lo1 := bits.Mul64(m, mul[1])
	hi0, _ := bits.Mul64(m, mul[0])
	sum, carry := bits.Add64(hi0, lo1, 0)
	hi1 += carry
	return shiftRight128(sum, hi1, uint32(j-64))
}

func mulShiftAll64(m uint64, mul *[2]uint64, j int32, mmShift uint64) (vr, vp, vm uint64) {
	vp = mulShift64(4*m+2, mul, j)
	vm = mulShift64(4*m-1-mmShift, mul, j)
	vr = mulShift64(4*m, mul, j)
	return vr, vp, vm
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
