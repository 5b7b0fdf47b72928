package wasmhost

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/ffifmt/boundary"
	"github.com/wippyai/ffifmt/errors"
)

// DefaultModuleName is the import module guests use for the host functions.
const DefaultModuleName = "ffifmt"

// Host function names.
const (
	FuncFormatScalar = "format_scalar"
	FuncFormatArray  = "format_array"
	FuncRelease      = "release"
)

// Config holds configuration for the host runtime.
type Config struct {
	// ModuleName is the import module name. Defaults to DefaultModuleName.
	ModuleName string

	// MemoryLimitPages caps every guest memory (64 KiB pages). 0 keeps the
	// wazero default.
	MemoryLimitPages uint32

	// Interpreter selects the wazero interpreter instead of the compiler.
	Interpreter bool
}

// Host owns a wazero runtime with the formatter registered as a host
// module. Nothing is registered until New is called.
//
// Host is safe for concurrent use. Guests are not.
type Host struct {
	runtime wazero.Runtime
	adapter *boundary.Adapter
	module  api.Module
	guests  map[api.Module]*guestState
	name    string
	mu      sync.RWMutex
	nextID  atomic.Uint64
	closed  atomic.Bool
}

// guestState is the per-guest view the host functions work against.
type guestState struct {
	mem    *guestMemory
	alloc  *guestAllocator
	ledger *boundary.Ledger
}

func newGuestState(mod api.Module) (*guestState, error) {
	mem := mod.Memory()
	if mem == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "memory export of module", mod.Name())
	}
	alloc, err := newGuestAllocator(mod)
	if err != nil {
		return nil, err
	}
	return &guestState{
		mem:    &guestMemory{mem: mem},
		alloc:  alloc,
		ledger: boundary.NewLedger(),
	}, nil
}

// New creates the runtime and instantiates the host module.
func New(ctx context.Context, adapter *boundary.Adapter, cfg Config) (*Host, error) {
	if adapter == nil {
		return nil, errors.InvalidInput(errors.PhaseRuntime, "nil adapter")
	}
	if cfg.ModuleName == "" {
		cfg.ModuleName = DefaultModuleName
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.Interpreter {
		runtimeCfg = wazero.NewRuntimeConfigInterpreter()
	}
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	h := &Host{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		adapter: adapter,
		guests:  make(map[api.Module]*guestState),
		name:    cfg.ModuleName,
	}

	i32, f64 := api.ValueTypeI32, api.ValueTypeF64
	builder := h.runtime.NewHostModuleBuilder(cfg.ModuleName)
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.formatScalar), []api.ValueType{f64}, []api.ValueType{i32}).
		WithParameterNames("value").
		Export(FuncFormatScalar)
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.formatArray), []api.ValueType{i32, i32}, []api.ValueType{i32}).
		WithParameterNames("ptr", "len").
		Export(FuncFormatArray)
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.release), []api.ValueType{i32}, nil).
		WithParameterNames("ptr").
		Export(FuncRelease)

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		_ = h.runtime.Close(ctx)
		return nil, errors.Registration(cfg.ModuleName, "*", err)
	}
	h.module = mod

	Logger().Debug("host module registered",
		zap.String("module", cfg.ModuleName),
		zap.String("style", adapter.Style().Name),
		zap.Uint32("memory_limit_pages", cfg.MemoryLimitPages))

	return h, nil
}

// ModuleName returns the import module name guests link against.
func (h *Host) ModuleName() string {
	return h.name
}

// Adapter returns the adapter the host functions format with.
func (h *Host) Adapter() *boundary.Adapter {
	return h.adapter
}

// Runtime returns the underlying wazero runtime. Modules instantiated
// directly in it trap when they call the host functions.
func (h *Host) Runtime() wazero.Runtime {
	return h.runtime
}

// Instantiate compiles and instantiates a guest module that may import
// the host functions.
func (h *Host) Instantiate(ctx context.Context, wasm []byte) (*Guest, error) {
	if h.closed.Load() {
		return nil, errors.NotInitialized(errors.PhaseRuntime, "host")
	}

	compiled, err := h.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile guest module", err)
	}

	name := fmt.Sprintf("guest-%d", h.nextID.Add(1))
	mod, err := h.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	state, err := newGuestState(mod)
	if err != nil {
		_ = mod.Close(ctx)
		return nil, err
	}

	h.mu.Lock()
	h.guests[mod] = state
	h.mu.Unlock()

	return newGuest(h, mod, state), nil
}

// Close closes the runtime and every guest instantiated in it.
func (h *Host) Close(ctx context.Context) error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}

	h.mu.Lock()
	for mod, state := range h.guests {
		if leaked := state.ledger.Close(); len(leaked) > 0 {
			Logger().Warn("guest closed with live buffers",
				zap.String("module", mod.Name()),
				zap.Int("count", len(leaked)))
		}
	}
	clear(h.guests)
	h.mu.Unlock()

	return h.runtime.Close(ctx)
}

func (h *Host) forget(mod api.Module) {
	h.mu.Lock()
	delete(h.guests, mod)
	h.mu.Unlock()
}

// guest returns the state for the calling module. Only modules created by
// Instantiate can receive buffers; anything else instantiated in the
// runtime traps.
func (h *Host) guest(mod api.Module, symbol string) *guestState {
	h.mu.RLock()
	state, ok := h.guests[mod]
	h.mu.RUnlock()
	if !ok {
		panic(errors.New(errors.PhaseHost, errors.KindNotInitialized).
			Symbol(h.name + "." + symbol).
			Detail("caller %q was not instantiated by this host", mod.Name()).
			Build())
	}
	return state
}

// Host functions report failures by panicking with *errors.Error, which
// wazero turns into a trap for the calling guest.

func (h *Host) formatScalar(ctx context.Context, mod api.Module, stack []uint64) {
	state := h.guest(mod, FuncFormatScalar)
	v := api.DecodeF64(stack[0])

	scratch := boundary.Scratch()
	*scratch = h.adapter.AppendScalar((*scratch)[:0], v)
	ptr := h.export(ctx, state, FuncFormatScalar, *scratch)
	boundary.PutScratch(scratch)

	stack[0] = api.EncodeU32(ptr)
}

func (h *Host) formatArray(ctx context.Context, mod api.Module, stack []uint64) {
	state := h.guest(mod, FuncFormatArray)
	ptr := api.DecodeU32(stack[0])
	n := api.DecodeU32(stack[1])

	scratch := boundary.Scratch()
	if n == 0 {
		*scratch = h.adapter.AppendArray((*scratch)[:0], nil)
	} else {
		size := uint64(n) * 8
		if size > math.MaxUint32 {
			boundary.PutScratch(scratch)
			panic(errors.New(errors.PhaseHost, errors.KindOverflow).
				Symbol(h.name + "." + FuncFormatArray).
				Value(n).
				Detail("%d doubles exceed 32-bit memory", n).
				Build())
		}
		// The view is only valid until the guest allocates, so format first.
		view, err := state.mem.Read(ptr, uint32(size))
		if err != nil {
			boundary.PutScratch(scratch)
			panic(errors.New(errors.PhaseHost, errors.KindOutOfBounds).
				Symbol(h.name + "." + FuncFormatArray).
				Path("values").
				Cause(err).
				Detail("input array at %d with %d elements", ptr, n).
				Build())
		}
		*scratch = h.adapter.AppendLittleEndian((*scratch)[:0], view)
	}
	out := h.export(ctx, state, FuncFormatArray, *scratch)
	boundary.PutScratch(scratch)

	stack[0] = api.EncodeU32(out)
}

func (h *Host) release(ctx context.Context, mod api.Module, stack []uint64) {
	ptr := api.DecodeU32(stack[0])
	if ptr == 0 {
		return
	}
	state := h.guest(mod, FuncRelease)

	size, ok := state.ledger.Release(uint64(ptr))
	if !ok {
		err := errors.UnknownBuffer(errors.PhaseHost, uint64(ptr))
		err.Symbol = h.name + "." + FuncRelease
		panic(err)
	}
	state.alloc.bind(ctx).Free(ptr, uint32(size), 1)
}

// export copies text plus a NUL terminator into guest memory allocated by
// the guest and records it until release.
func (h *Host) export(ctx context.Context, state *guestState, symbol string, text []byte) uint32 {
	if uint64(len(text))+1 > math.MaxUint32 {
		panic(errors.Overflow(errors.PhaseHost, len(text), "guest string length"))
	}
	size := uint32(len(text) + 1)
	alloc := state.alloc.bind(ctx)

	ptr, err := alloc.Alloc(size, 1)
	if err != nil {
		panic(errors.New(errors.PhaseHost, errors.KindAllocation).
			Symbol(h.name + "." + symbol).
			Cause(err).
			Detail("result of %d bytes", size).
			Build())
	}

	if err := state.mem.Write(ptr, text); err != nil {
		alloc.Free(ptr, size, 1)
		panic(errors.Wrap(errors.PhaseHost, errors.KindOutOfBounds, err, "write result"))
	}
	if err := state.mem.WriteU8(ptr+size-1, 0); err != nil {
		alloc.Free(ptr, size, 1)
		panic(errors.Wrap(errors.PhaseHost, errors.KindOutOfBounds, err, "write terminator"))
	}
	if err := state.ledger.Track(uint64(ptr), uint64(size)); err != nil {
		alloc.Free(ptr, size, 1)
		panic(err)
	}
	return ptr
}
