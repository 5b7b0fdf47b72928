// Package wasm encodes WebAssembly core modules.
//
// It covers the subset of the binary format a host needs to emit small
// guest modules in code: function types, function and memory imports,
// memories, globals, exports, code bodies and data segments. Compilation
// and validation are left to the runtime that loads the result.
//
// # Building a module
//
//	m := &wasm.Module{}
//	t := m.AddType(wasm.FuncType{Params: []wasm.ValType{wasm.ValI32}, Results: []wasm.ValType{wasm.ValI32}})
//	m.Funcs = append(m.Funcs, t)
//	m.Exports = append(m.Exports, wasm.Export{Name: "id", Kind: wasm.KindFunc, Idx: 0})
//	m.Code = append(m.Code, wasm.FuncBody{
//	    Code: wasm.EncodeInstructions([]wasm.Instruction{
//	        {Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: 0}},
//	        {Opcode: wasm.OpEnd},
//	    }),
//	})
//	bin := m.Encode()
//
// # LEB128
//
// WriteLEB128u and WriteLEB128s encode the variable-length integers used
// throughout the format; ReadLEB128u and ReadLEB128s decode them.
package wasm
