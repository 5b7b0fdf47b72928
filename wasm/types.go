package wasm

// Module is a WebAssembly core module ready to be encoded.
type Module struct {
	Types          []FuncType
	Imports        []Import
	Funcs          []uint32 // Type indices for declared functions
	Memories       []MemoryType
	Globals        []Global
	Exports        []Export
	Start          *uint32
	Code           []FuncBody
	Data           []DataSegment
	CustomSections []CustomSection
}

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// ValType represents a WebAssembly value type.
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	default:
		return "unknown"
	}
}

// Import is an imported function, memory or global.
type Import struct {
	Desc   ImportDesc
	Module string
	Name   string
}

// ImportDesc describes an imported item. Kind is KindFunc, KindMemory or
// KindGlobal.
type ImportDesc struct {
	Memory  *MemoryType
	Global  *GlobalType
	TypeIdx uint32
	Kind    byte
}

// MemoryType describes a linear memory in 64 KiB pages.
type MemoryType struct {
	Limits Limits
}

// Limits describes size constraints for memories.
type Limits struct {
	Max *uint64
	Min uint64
}

// GlobalType describes a global variable's type and mutability.
type GlobalType struct {
	ValType ValType
	Mutable bool
}

// Global is a global variable with its constant init expression.
type Global struct {
	Type GlobalType
	Init []byte // Raw init expression bytes including end
}

// Export describes an exported item.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// FuncBody is a function's local declarations and bytecode.
type FuncBody struct {
	Locals []LocalEntry
	Code   []byte // Raw code bytes including end opcode
}

// LocalEntry is a group of local variables with the same type.
type LocalEntry struct {
	Count   uint32
	ValType ValType
}

// DataSegment is an active data segment for memory 0.
type DataSegment struct {
	Offset []byte // Raw offset expression bytes including end
	Init   []byte
}

// CustomSection holds a named custom section's data.
type CustomSection struct {
	Name string
	Data []byte
}

// NumImportedFuncs returns the number of imported functions
func (m *Module) NumImportedFuncs() int {
	count := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == KindFunc {
			count++
		}
	}
	return count
}

// AddType adds a function type and returns its index, reusing existing if equal
func (m *Module) AddType(ft FuncType) uint32 {
	for i, t := range m.Types {
		if typesEqual(t, ft) {
			return uint32(i)
		}
	}
	idx := uint32(len(m.Types))
	m.Types = append(m.Types, ft)
	return idx
}

// ImportFunc appends a function import and returns its function index.
// Imports must be added before any function is defined.
func (m *Module) ImportFunc(module, name string, ft FuncType) uint32 {
	idx := uint32(m.NumImportedFuncs())
	m.Imports = append(m.Imports, Import{
		Module: module,
		Name:   name,
		Desc:   ImportDesc{Kind: KindFunc, TypeIdx: m.AddType(ft)},
	})
	return idx
}

// AddFunc defines a function and returns its index in the function space.
func (m *Module) AddFunc(ft FuncType, body FuncBody) uint32 {
	idx := uint32(m.NumImportedFuncs() + len(m.Funcs))
	m.Funcs = append(m.Funcs, m.AddType(ft))
	m.Code = append(m.Code, body)
	return idx
}

// Export adds an export entry.
func (m *Module) Export(name string, kind byte, idx uint32) {
	m.Exports = append(m.Exports, Export{Name: name, Kind: kind, Idx: idx})
}

func typesEqual(a, b FuncType) bool {
	if len(a.Params) != len(b.Params) || len(a.Results) != len(b.Results) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	for i := range a.Results {
		if a.Results[i] != b.Results[i] {
			return false
		}
	}
	return true
}
