// Command libffifmt is built with -buildmode=c-shared to produce the
// native formatter library:
//
//	go build -buildmode=c-shared -o libffifmt.so ./cmd/libffifmt
//
// The generated libffifmt.h declares the exported symbols. See package
// cabi for their contract.
package main

/*
#include <stddef.h>
*/
import "C"

import (
	"unsafe"

	"github.com/wippyai/ffifmt/cabi"
)

//export ffifmtInit
func ffifmtInit(style C.int, separator C.char, flags C.uint) C.int {
	return C.int(cabi.InitCode(int(style), byte(separator), uint32(flags)))
}

//export ffifmtShutdown
func ffifmtShutdown() C.int {
	return C.int(cabi.Shutdown())
}

//export ffifmtLive
func ffifmtLive() C.int {
	return C.int(cabi.Live())
}

//export formatScalar
func formatScalar(value C.double) *C.char {
	return (*C.char)(cabi.FormatScalar(cabi.ProfileDefault, float64(value)))
}

//export formatArray
func formatArray(values *C.double, n C.size_t) *C.char {
	return (*C.char)(cabi.FormatArray(cabi.ProfileDefault, unsafe.Pointer(values), int(n)))
}

//export release
func release(ptr *C.char) {
	cabi.Release(unsafe.Pointer(ptr))
}

//export doubleToStringRyu
func doubleToStringRyu(value C.double) *C.char {
	return (*C.char)(cabi.FormatScalar(cabi.ProfileRyu, float64(value)))
}

//export doubleToStringRust
func doubleToStringRust(value C.double) *C.char {
	return (*C.char)(cabi.FormatScalar(cabi.ProfileRust, float64(value)))
}

//export doubleArrayToStringRyu
func doubleArrayToStringRyu(values *C.double, n C.size_t) *C.char {
	return (*C.char)(cabi.FormatArray(cabi.ProfileRyuArray, unsafe.Pointer(values), int(n)))
}

//export freeString
func freeString(ptr *C.char) {
	cabi.Release(unsafe.Pointer(ptr))
}

func main() {}
