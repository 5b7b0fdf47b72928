// Package cabi implements the C ABI of the formatter.
//
// The exported symbols live in cmd/libffifmt, which is built with
// -buildmode=c-shared and forwards every call here:
//
//	int   ffifmtInit(int style, char separator, unsigned flags);
//	int   ffifmtShutdown(void);
//	char *formatScalar(double value);
//	char *formatArray(const double *values, size_t len);
//	void  release(char *ptr);
//
// Compatibility symbols keep the names and layouts of the library this one
// replaces:
//
//	char *doubleToStringRyu(double value);              // Compact
//	char *doubleToStringRust(double value);             // Plain
//	char *doubleArrayToStringRyu(const double *, size_t); // Compact, separator after every element
//	void  freeString(char *ptr);
//
// Nothing is installed when the library loads. Every format symbol returns
// NULL until ffifmtInit succeeds. Returned strings are allocated with
// malloc and must be passed to release (or freeString) exactly once.
// With FlagTrack every buffer is recorded, a release of an address the
// library did not return is logged and ignored, and ffifmtShutdown
// returns the number of buffers still live.
//
// Without cgo the package builds but Init reports errors.KindUnsupported.
package cabi
