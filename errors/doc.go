// Package errors provides structured error types for the ffifmt module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the symbol involved, a field path, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseHost, errors.KindOutOfBounds).
//		Symbol("ffifmt.format_array").
//		Detail("input view [%d, %d) exceeds memory", ptr, end).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownBuffer(errors.PhaseHost, addr)
//	err := errors.NotInitialized(errors.PhaseBoundary, "C ABI")
//
// Formatting itself never fails. These errors only describe boundary
// infrastructure: foreign memory, guest allocators, configuration and loading.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
