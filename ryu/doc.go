// Package ryu converts float64 values to their shortest round-trip decimal
// text.
//
// Shortest produces the digit sequence and exponent using the Ryu algorithm:
// the binary interval of values that round to the input is scaled by a
// 128-bit approximation of a power of five, and digits are removed until
// the interval endpoints agree. The result has the fewest significant
// digits that parse back to the exact same float64, and among those the
// one closest to the input.
//
// A Style turns the Decimal into text. Three styles are built in:
//
//	Standard  0.123, 3.141592653589793, 1.0E8, Infinity
//	Compact   0.123, 1e16, 1.5e-7, inf
//	Plain     0.123, 100000000, 1, inf
//
// All functions are pure and safe for concurrent use. The multiplier tables
// are computed once at package initialization.
package ryu
