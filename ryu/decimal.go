package ryu

import (
	"math"
	"strconv"
)

const (
	mantissaBits = 52
	exponentBits = 11
	bias         = 1023
)

// Class distinguishes finite values from the special IEEE-754 values.
type Class uint8

const (
	Zero Class = iota
	Finite
	Infinity
	NaN
)

func (c Class) String() string {
	switch c {
	case Zero:
		return "zero"
	case Finite:
		return "finite"
	case Infinity:
		return "infinity"
	case NaN:
		return "nan"
	}
	return "class(" + strconv.Itoa(int(c)) + ")"
}

// Decimal is the shortest decimal representation of a float64.
// For finite values the number is (-1)^Negative * Mantissa * 10^Exponent
// and Mantissa has no trailing zero digits. Zero and Infinity keep the sign,
// NaN never carries one.
type Decimal struct {
	Mantissa uint64
	Exponent int32
	Negative bool
	Class    Class
}

// Digits returns the number of significant decimal digits. Zero has one
// digit, Infinity and NaN have none.
func (d Decimal) Digits() int {
	switch d.Class {
	case Zero:
		return 1
	case Finite:
		return decimalLength(d.Mantissa)
	}
	return 0
}

// SciExponent returns the exponent of the value written as d.ddd * 10^E.
func (d Decimal) SciExponent() int {
	if d.Class != Finite {
		return 0
	}
	return int(d.Exponent) + decimalLength(d.Mantissa) - 1
}

// AppendDigits appends the significant digits without sign or decimal point.
func (d Decimal) AppendDigits(dst []byte) []byte {
	switch d.Class {
	case Zero:
		return append(dst, '0')
	case Finite:
		return strconv.AppendUint(dst, d.Mantissa, 10)
	}
	return dst
}

func decimalLength(v uint64) int {
	n := 1
	for v >= 10 {
		v /= 10
		n++
	}
	return n
}

// Shortest returns the decimal with the fewest significant digits that
// parses back to exactly f under round-to-nearest-even. When several
// candidates have that many digits, the one closest to f wins, ties going
// to the even digit.
func Shortest(f float64) Decimal {
	b := math.Float64bits(f)
	negative := b>>63 != 0
	ieeeMantissa := b & (1<<mantissaBits - 1)
	ieeeExponent := uint32(b>>mantissaBits) & (1<<exponentBits - 1)

	if ieeeExponent == 1<<exponentBits-1 {
		if ieeeMantissa != 0 {
			return Decimal{Class: NaN}
		}
		return Decimal{Class: Infinity, Negative: negative}
	}
	if ieeeExponent == 0 && ieeeMantissa == 0 {
		return Decimal{Class: Zero, Negative: negative}
	}

	d := d2d(ieeeMantissa, ieeeExponent)
	d.Negative = negative
	return d
}

func d2d(ieeeMantissa uint64, ieeeExponent uint32) Decimal {
	var e2 int32
	var m2 uint64
	if ieeeExponent == 0 {
		e2 = 1 - bias - mantissaBits - 2
		m2 = ieeeMantissa
	} else {
		e2 = int32(ieeeExponent) - bias - mantissaBits - 2
		m2 = 1<<mantissaBits | ieeeMantissa
	}
	acceptBounds := m2&1 == 0

	// The interval of valid representations is (mm, mp) around mv, scaled by 4.
	mv := 4 * m2
	mmShift := boolToUint64(ieeeMantissa != 0 || ieeeExponent <= 1)

	var (
		vr, vp, vm        uint64
		e10               int32
		vmIsTrailingZeros bool
		vrIsTrailingZeros bool
	)
	if e2 >= 0 {
		q := log10Pow2(e2)
		if e2 > 3 {
			q--
		}
		e10 = int32(q)
		k := pow5InvBitCount + pow5Bits(int32(q)) - 1
		i := -e2 + int32(q) + k
		vr, vp, vm = mulShiftAll64(m2, &pow5InvSplit[q], i, mmShift)
		if q <= 21 {
			// At most one of mp, mv and mm can be a multiple of 5.
			switch {
			case mv%5 == 0:
				vrIsTrailingZeros = multipleOfPowerOf5(mv, q)
			case acceptBounds:
				vmIsTrailingZeros = multipleOfPowerOf5(mv-1-mmShift, q)
			default:
				vp -= boolToUint64(multipleOfPowerOf5(mv+2, q))
			}
		}
	} else {
		q := log10Pow5(-e2)
		if -e2 > 1 {
			q--
		}
		e10 = int32(q) + e2
		i := -e2 - int32(q)
		k := pow5Bits(i) - pow5BitCount
		j := int32(q) - k
		vr, vp, vm = mulShiftAll64(m2, &pow5Split[i], j, mmShift)
		switch {
		case q <= 1:
			// mv = 4*m2 always has at least two trailing zero bits.
			vrIsTrailingZeros = true
			if acceptBounds {
				vmIsTrailingZeros = mmShift == 1
			} else {
				vp--
			}
		case q < 63:
			vrIsTrailingZeros = multipleOfPowerOf2(mv, q)
		}
	}

	var (
		removed          int32
		lastRemovedDigit uint64
		output           uint64
	)
	if vmIsTrailingZeros || vrIsTrailingZeros {
		for {
			vpDiv10 := vp / 10
			vmDiv10 := vm / 10
			if vpDiv10 <= vmDiv10 {
				break
			}
			vmMod10 := vm - 10*vmDiv10
			vrDiv10 := vr / 10
			vrMod10 := vr - 10*vrDiv10
			vmIsTrailingZeros = vmIsTrailingZeros && vmMod10 == 0
			vrIsTrailingZeros = vrIsTrailingZeros && lastRemovedDigit == 0
			lastRemovedDigit = vrMod10
			vr, vp, vm = vrDiv10, vpDiv10, vmDiv10
			removed++
		}
		if vmIsTrailingZeros {
			for {
				vmDiv10 := vm / 10
				if vm-10*vmDiv10 != 0 {
					break
				}
				vpDiv10 := vp / 10
				vrDiv10 := vr / 10
				vrMod10 := vr - 10*vrDiv10
				vrIsTrailingZeros = vrIsTrailingZeros && lastRemovedDigit == 0
				lastRemovedDigit = vrMod10
				vr, vp, vm = vrDiv10, vpDiv10, vmDiv10
				removed++
			}
		}
		if vrIsTrailingZeros && lastRemovedDigit == 5 && vr%2 == 0 {
			// Exactly halfway: round to even.
			lastRemovedDigit = 4
		}
		roundUp := (vr == vm && (!acceptBounds || !vmIsTrailingZeros)) || lastRemovedDigit >= 5
		output = vr + boolToUint64(roundUp)
	} else {
		roundUp := false
		vpDiv100 := vp / 100
		vmDiv100 := vm / 100
		if vpDiv100 > vmDiv100 {
			vrDiv100 := vr / 100
			roundUp = vr-100*vrDiv100 >= 50
			vr, vp, vm = vrDiv100, vpDiv100, vmDiv100
			removed += 2
		}
		for {
			vpDiv10 := vp / 10
			vmDiv10 := vm / 10
			if vpDiv10 <= vmDiv10 {
				break
			}
			vrDiv10 := vr / 10
			roundUp = vr-10*vrDiv10 >= 5
			vr, vp, vm = vrDiv10, vpDiv10, vmDiv10
			removed++
		}
		output = vr + boolToUint64(vr == vm || roundUp)
	}

	exp := e10 + removed
	for output != 0 && output%10 == 0 {
		output /= 10
		exp++
	}

	return Decimal{
		Mantissa: output,
		Exponent: exp,
		Class:    Finite,
	}
}
