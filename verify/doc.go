// Package verify checks formatter output against strconv, the reference
// shortest round-trip formatter of the standard library.
//
// A value passes when its text parses back to the same bits and its digits
// equal the shortest digits strconv produces. Join additionally checks the
// array layout of any ffifmt.Caller, so the same checks run against every
// binding.
package verify
