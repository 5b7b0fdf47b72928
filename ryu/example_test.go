package ryu_test

import (
	"fmt"
	"math"

	"github.com/wippyai/ffifmt/ryu"
)

func ExampleShortest() {
	d := ryu.Shortest(0.3)
	fmt.Println(d.Mantissa, d.Exponent)
	// Output: 3 -1
}

func ExampleStyle_Format() {
	for _, s := range ryu.Styles() {
		fmt.Println(s.Name, s.Format(1e8), s.Format(math.Pi), s.Format(math.Inf(-1)))
	}
	// Output:
	// standard 1.0E8 3.141592653589793 -Infinity
	// compact 100000000.0 3.141592653589793 -inf
	// plain 100000000 3.141592653589793 -inf
}
