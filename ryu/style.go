package ryu

import (
	"math"
	"strconv"
	"strings"
)

// Style controls how a Decimal is laid out as text.
//
// A finite value is written in plain notation when its scientific exponent
// E (value = d.ddd * 10^E) lies in [MinPlainExp, MaxPlainExp], and in
// scientific notation otherwise.
type Style struct {
	Name string

	MinPlainExp int
	MaxPlainExp int

	// ExpMarker separates significand and exponent in scientific notation.
	ExpMarker byte

	// ForceFraction writes "1.0E8" instead of "1E8" for single digit significands.
	ForceFraction bool

	// IntegerFraction writes "100.0" instead of "100" for integral plain values.
	IntegerFraction bool

	NaN    string
	PosInf string
	NegInf string
}

var (
	// Standard is the default layout: plain notation for 1e-3 <= |v| < 1e7,
	// scientific with an upper case marker and a mandatory fraction digit
	// elsewhere.
	Standard = Style{
		Name:            "standard",
		MinPlainExp:     -3,
		MaxPlainExp:     6,
		ExpMarker:       'E',
		ForceFraction:   true,
		IntegerFraction: true,
		NaN:             "NaN",
		PosInf:          "Infinity",
		NegInf:          "-Infinity",
	}

	// Compact keeps plain notation up to 16 integer digits and down to
	// five leading fractional zeros, then switches to "1e16" or "1.5e-7".
	Compact = Style{
		Name:            "compact",
		MinPlainExp:     -5,
		MaxPlainExp:     15,
		ExpMarker:       'e',
		IntegerFraction: true,
		NaN:             "NaN",
		PosInf:          "inf",
		NegInf:          "-inf",
	}

	// Plain never uses scientific notation and prints integral values
	// without a fraction.
	Plain = Style{
		Name:        "plain",
		MinPlainExp: math.MinInt,
		MaxPlainExp: math.MaxInt,
		ExpMarker:   'e',
		NaN:         "NaN",
		PosInf:      "inf",
		NegInf:      "-inf",
	}
)

// Styles lists the built-in styles.
func Styles() []Style {
	return []Style{Standard, Compact, Plain}
}

// StyleByName looks up a built-in style, ignoring case.
func StyleByName(name string) (Style, bool) {
	for _, s := range Styles() {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Style{}, false
}

// Valid reports whether the style can produce parseable ASCII output.
func (s Style) Valid() bool {
	if s.MinPlainExp > s.MaxPlainExp {
		return false
	}
	if s.ExpMarker != 'e' && s.ExpMarker != 'E' {
		return false
	}
	return isASCII(s.NaN) && isASCII(s.PosInf) && isASCII(s.NegInf) &&
		s.NaN != "" && s.PosInf != "" && s.NegInf != ""
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// AppendFloat appends the shortest round-trip text of f.
func (s Style) AppendFloat(dst []byte, f float64) []byte {
	return s.Append(dst, Shortest(f))
}

// Format returns the shortest round-trip text of f.
func (s Style) Format(f float64) string {
	var buf [32]byte
	return string(s.AppendFloat(buf[:0], f))
}

// Append appends the text of d.
func (s Style) Append(dst []byte, d Decimal) []byte {
	switch d.Class {
	case NaN:
		return append(dst, s.NaN...)
	case Infinity:
		if d.Negative {
			return append(dst, s.NegInf...)
		}
		return append(dst, s.PosInf...)
	}

	if d.Negative {
		dst = append(dst, '-')
	}

	var scratch [20]byte
	digits := d.AppendDigits(scratch[:0])
	sciExp := d.SciExponent()

	if sciExp < s.MinPlainExp || sciExp > s.MaxPlainExp {
		return s.appendScientific(dst, digits, sciExp)
	}
	return s.appendPlain(dst, digits, sciExp)
}

func (s Style) appendPlain(dst, digits []byte, sciExp int) []byte {
	n := len(digits)

	if sciExp < 0 {
		dst = append(dst, '0', '.')
		for i := 0; i < -sciExp-1; i++ {
			dst = append(dst, '0')
		}
		return append(dst, digits...)
	}

	intLen := sciExp + 1
	if intLen >= n {
		dst = append(dst, digits...)
		for i := n; i < intLen; i++ {
			dst = append(dst, '0')
		}
		if s.IntegerFraction {
			dst = append(dst, '.', '0')
		}
		return dst
	}

	dst = append(dst, digits[:intLen]...)
	dst = append(dst, '.')
	return append(dst, digits[intLen:]...)
}

func (s Style) appendScientific(dst, digits []byte, sciExp int) []byte {
	dst = append(dst, digits[0])
	if len(digits) > 1 {
		dst = append(dst, '.')
		dst = append(dst, digits[1:]...)
	} else if s.ForceFraction {
		dst = append(dst, '.', '0')
	}
	dst = append(dst, s.ExpMarker)
	return strconv.AppendInt(dst, int64(sciExp), 10)
}

// Format returns the Standard text of f.
func Format(f float64) string {
	return Standard.Format(f)
}

// AppendFloat appends the Standard text of f.
func AppendFloat(dst []byte, f float64) []byte {
	return Standard.AppendFloat(dst, f)
}
