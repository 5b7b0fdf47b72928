package wasmhost

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/ffifmt"
	"github.com/wippyai/ffifmt/errors"
)

// Guest allocator exports, in discovery order.
const (
	CabiRealloc = "cabi_realloc"
	CabiFree    = "cabi_free"

	legacyRealloc = "canonical_abi_realloc"
	legacyAlloc   = "allocate"
	simpleAlloc   = "alloc"
	legacyDealloc = "deallocate"
	simpleFree    = "free"
)

// guestAllocator calls the guest's exported allocator.
//
// A realloc-style export takes (old_ptr, old_size, align, new_size) and
// also frees when new_size is 0. Simple exports take (size[, align]) and
// pair with a free export taking (ptr[, size[, align]]).
type guestAllocator struct {
	allocFn     api.Function
	freeFn      api.Function
	stackBuf    []uint64
	stackMutex  sync.Mutex
	allocParams int
	freeParams  int
	realloc     bool
}

func newGuestAllocator(mod api.Module) (*guestAllocator, error) {
	defs := mod.ExportedFunctionDefinitions()

	a := &guestAllocator{stackBuf: make([]uint64, 4)}

	for _, name := range []string{CabiRealloc, legacyRealloc, legacyAlloc, simpleAlloc} {
		def := defs[name]
		if def == nil {
			continue
		}
		a.allocFn = mod.ExportedFunction(name)
		a.allocParams = len(def.ParamTypes())
		a.realloc = a.allocParams == 4
		break
	}
	if a.allocFn == nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
			Symbol(mod.Name()).
			Detail("guest exports no allocator (%s, %s or %s)", CabiRealloc, legacyAlloc, simpleAlloc).
			Build()
	}
	if a.allocParams < 1 || a.allocParams == 3 || a.allocParams > 4 {
		return nil, errors.New(errors.PhaseLoad, errors.KindUnsupported).
			Symbol(a.allocFn.Definition().Name()).
			Detail("allocator takes %d parameters", a.allocParams).
			Build()
	}

	for _, name := range []string{CabiFree, legacyDealloc, simpleFree} {
		def := defs[name]
		if def == nil {
			continue
		}
		a.freeFn = mod.ExportedFunction(name)
		a.freeParams = len(def.ParamTypes())
		break
	}
	if a.freeFn == nil && !a.realloc {
		Logger().Debug("guest has no free export, buffers are never reclaimed",
			zap.String("module", mod.Name()))
	}

	return a, nil
}

// bind returns an ffifmt.Allocator that calls the guest with ctx.
func (a *guestAllocator) bind(ctx context.Context) ffifmt.Allocator {
	return boundAllocator{a: a, ctx: ctx}
}

type boundAllocator struct {
	a   *guestAllocator
	ctx context.Context
}

func (b boundAllocator) Alloc(size, align uint32) (uint32, error) {
	return b.a.alloc(b.ctx, size, align)
}

func (b boundAllocator) Free(ptr, size, align uint32) {
	b.a.free(b.ctx, ptr, size, align)
}

func (a *guestAllocator) alloc(ctx context.Context, size, align uint32) (uint32, error) {
	a.stackMutex.Lock()
	defer a.stackMutex.Unlock()

	var n int
	switch {
	case a.realloc:
		a.stackBuf[0] = 0
		a.stackBuf[1] = 0
		a.stackBuf[2] = uint64(align)
		a.stackBuf[3] = uint64(size)
		n = 4
	case a.allocParams == 2:
		a.stackBuf[0] = uint64(size)
		a.stackBuf[1] = uint64(align)
		n = 2
	default:
		a.stackBuf[0] = uint64(size)
		n = 1
	}

	if err := a.allocFn.CallWithStack(ctx, a.stackBuf[:n]); err != nil {
		return 0, errors.New(errors.PhaseHost, errors.KindAllocation).
			Symbol(a.allocFn.Definition().Name()).
			Detail("allocate %d bytes (align %d)", size, align).
			Cause(err).
			Build()
	}
	ptr := uint32(a.stackBuf[0])
	if ptr == 0 {
		return 0, errors.AllocationFailed(errors.PhaseHost, size, align)
	}
	return ptr, nil
}

func (a *guestAllocator) free(ctx context.Context, ptr, size, align uint32) {
	if ptr == 0 {
		return
	}

	a.stackMutex.Lock()
	defer a.stackMutex.Unlock()

	fn := a.freeFn
	var n int
	switch {
	case fn != nil:
		a.stackBuf[0] = uint64(ptr)
		a.stackBuf[1] = uint64(size)
		a.stackBuf[2] = uint64(align)
		n = min(a.freeParams, 3)
	case a.realloc:
		fn = a.allocFn
		a.stackBuf[0] = uint64(ptr)
		a.stackBuf[1] = uint64(size)
		a.stackBuf[2] = uint64(align)
		a.stackBuf[3] = 0
		n = 4
	default:
		return
	}

	if err := fn.CallWithStack(ctx, a.stackBuf[:n]); err != nil {
		Logger().Warn("free: guest deallocation failed",
			zap.String("symbol", fn.Definition().Name()),
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}
