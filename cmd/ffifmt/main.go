// Command ffifmt formats doubles through any of the formatter bindings and
// verifies their output.
//
//	ffifmt format 3.14 1e8 nan
//	ffifmt array --ramp 24 --binding wasm
//	ffifmt verify --count 1000000 --binding cabi
//	ffifmt wit
//	ffifmt interactive
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := execute(newRootCommand(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
