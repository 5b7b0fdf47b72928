package wasmhost

import "github.com/wippyai/ffifmt/wasm"

// LoopbackHeapBase is where the loopback guest's bump allocator starts.
const LoopbackHeapBase = 1024

// LoopbackModule returns a minimal core module that exercises the host
// module from inside a guest. It exports:
//
//	memory                              linear memory of minPages pages
//	alloc(size, align i32) -> i32       bump allocator, grows memory on demand
//	free(ptr, size, align i32)          reclaims the most recent allocation
//	format_scalar(f64) -> i32           forwards to the host import
//	format_array(ptr, len i32) -> i32   forwards to the host import
//	release(ptr i32)                    forwards to the host import
//
// The host imports are taken from hostModule.
func LoopbackModule(hostModule string, minPages uint32) []byte {
	return loopback(hostModule, minPages).Encode()
}

var (
	scalarType  = wasm.FuncType{Params: []wasm.ValType{wasm.ValF64}, Results: []wasm.ValType{wasm.ValI32}}
	arrayType   = wasm.FuncType{Params: []wasm.ValType{wasm.ValI32, wasm.ValI32}, Results: []wasm.ValType{wasm.ValI32}}
	releaseType = wasm.FuncType{Params: []wasm.ValType{wasm.ValI32}}
	freeType    = wasm.FuncType{Params: []wasm.ValType{wasm.ValI32, wasm.ValI32, wasm.ValI32}}
)

func loopback(hostModule string, minPages uint32) *wasm.Module {
	m := &wasm.Module{
		Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: uint64(minPages)}}},
		Globals: []wasm.Global{{
			Type: wasm.GlobalType{ValType: wasm.ValI32, Mutable: true},
			Init: wasm.ConstI32(LoopbackHeapBase),
		}},
	}

	hostScalar := m.ImportFunc(hostModule, FuncFormatScalar, scalarType)
	hostArray := m.ImportFunc(hostModule, FuncFormatArray, arrayType)
	hostRelease := m.ImportFunc(hostModule, FuncRelease, releaseType)

	alloc := m.AddFunc(arrayType, wasm.FuncBody{
		Locals: []wasm.LocalEntry{{Count: 1, ValType: wasm.ValI32}},
		Code:   loopbackAlloc(),
	})
	free := m.AddFunc(freeType, wasm.FuncBody{Code: loopbackFree()})
	scalar := m.AddFunc(scalarType, forward(hostScalar, 1))
	array := m.AddFunc(arrayType, forward(hostArray, 2))
	release := m.AddFunc(releaseType, forward(hostRelease, 1))

	m.Export("memory", wasm.KindMemory, 0)
	m.Export(simpleAlloc, wasm.KindFunc, alloc)
	m.Export(simpleFree, wasm.KindFunc, free)
	m.Export(FuncFormatScalar, wasm.KindFunc, scalar)
	m.Export(FuncFormatArray, wasm.KindFunc, array)
	m.Export(FuncRelease, wasm.KindFunc, release)
	return m
}

func op(code byte) wasm.Instruction {
	return wasm.Instruction{Opcode: code}
}

func localGet(idx uint32) wasm.Instruction {
	return wasm.Instruction{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: idx}}
}

func localSet(idx uint32) wasm.Instruction {
	return wasm.Instruction{Opcode: wasm.OpLocalSet, Imm: wasm.LocalImm{LocalIdx: idx}}
}

func i32Const(v int32) wasm.Instruction {
	return wasm.Instruction{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: v}}
}

func block(code byte) wasm.Instruction {
	return wasm.Instruction{Opcode: code, Imm: wasm.BlockImm{Type: wasm.BlockTypeVoid}}
}

func branch(code byte, label uint32) wasm.Instruction {
	return wasm.Instruction{Opcode: code, Imm: wasm.BranchImm{LabelIdx: label}}
}

var (
	heapGet = wasm.Instruction{Opcode: wasm.OpGlobalGet, Imm: wasm.GlobalImm{}}
	heapSet = wasm.Instruction{Opcode: wasm.OpGlobalSet, Imm: wasm.GlobalImm{}}
)

// forward passes its params straight to the imported function fn.
func forward(fn uint32, params uint32) wasm.FuncBody {
	instrs := make([]wasm.Instruction, 0, params+2)
	for i := range params {
		instrs = append(instrs, localGet(i))
	}
	instrs = append(instrs, wasm.Instruction{Opcode: wasm.OpCall, Imm: wasm.CallImm{FuncIdx: fn}}, op(wasm.OpEnd))
	return wasm.FuncBody{Code: wasm.EncodeInstructions(instrs)}
}

// loopbackAlloc is the body of alloc(size, align) with one i32 local (ptr):
//
//	ptr = (heap + align - 1) & -align
//	while ptr+size > memory.size << 16 { if memory.grow(1) == -1 { unreachable } }
//	heap = ptr + size
//	return ptr
func loopbackAlloc() []byte {
	const size, align, ptr = 0, 1, 2

	return wasm.EncodeInstructions([]wasm.Instruction{
		heapGet, localGet(align), op(wasm.OpI32Add), i32Const(1), op(wasm.OpI32Sub),
		i32Const(0), localGet(align), op(wasm.OpI32Sub),
		op(wasm.OpI32And), localSet(ptr),

		block(wasm.OpBlock), block(wasm.OpLoop),
		localGet(ptr), localGet(size), op(wasm.OpI32Add),
		op(wasm.OpMemorySize), i32Const(16), op(wasm.OpI32Shl),
		op(wasm.OpI32LeU), branch(wasm.OpBrIf, 1),
		i32Const(1), op(wasm.OpMemoryGrow), i32Const(-1), op(wasm.OpI32Eq),
		block(wasm.OpIf), op(wasm.OpUnreachable), op(wasm.OpEnd),
		branch(wasm.OpBr, 0),
		op(wasm.OpEnd), op(wasm.OpEnd),

		localGet(ptr), localGet(size), op(wasm.OpI32Add), heapSet,
		localGet(ptr),
		op(wasm.OpEnd),
	})
}

// loopbackFree is the body of free(ptr, size, align). Only the block at the
// top of the heap is reclaimed, which covers the strictly nested
// allocations a format call makes.
//
//	if ptr+size == heap { heap = ptr }
func loopbackFree() []byte {
	const ptr, size = 0, 1

	return wasm.EncodeInstructions([]wasm.Instruction{
		localGet(ptr), localGet(size), op(wasm.OpI32Add), heapGet, op(wasm.OpI32Eq),
		block(wasm.OpIf), localGet(ptr), heapSet, op(wasm.OpEnd),
		op(wasm.OpEnd),
	})
}
