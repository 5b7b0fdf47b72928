// Package ffifmt formats float64 values as their shortest round-trip
// decimal text and hands the result across a foreign function boundary.
//
// # Architecture Overview
//
//	ffifmt/          Root package with Caller, Memory and Allocator interfaces
//	├── ryu/         Shortest round-trip digit generation and text styles
//	├── boundary/    Adapter, owned buffers, allocation ledger
//	├── cabi/        C ABI exports backed by the C heap (cgo)
//	├── wasmhost/    Host module for WebAssembly guests on wazero
//	├── wasm/        Core module encoder for in-code guests
//	├── config/      YAML/JSONC configuration and logger setup
//	├── verify/      Round-trip and join checks against strconv
//	├── errors/      Structured error types
//	└── cmd/         ffifmt CLI and the libffifmt shared library
//
// # Ownership
//
// Every formatted result is a buffer owned by the caller. The caller
// releases it exactly once through the binding that produced it:
//
//	buf := adapter.FormatArray(values)
//	defer buf.Release()
//
// Or, to copy and release in one step:
//
//	text := boundary.Consume(adapter.FormatScalar(math.Pi))
//
// Input arrays are only read during the call and never retained.
//
// # Bindings
//
// All bindings share one boundary.Adapter and produce identical text:
//
//	go     boundary.Local, in-process
//	cabi   formatScalar / formatArray / release exported from libffifmt
//	wasm   ffifmt.format_scalar / format_array / release host imports
//
// Each implements Caller so they can be driven and compared uniformly.
package ffifmt
