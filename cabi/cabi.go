//go:build cgo

package cabi

/*
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"math"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/ffifmt"
	"github.com/wippyai/ffifmt/boundary"
	"github.com/wippyai/ffifmt/errors"
)

// Supported reports whether the C binding is compiled in.
const Supported = true

var (
	current atomic.Pointer[state]
	retired retiredLedgers
)

// Init installs the library state. It must be called once before any
// format symbol returns a buffer.
func Init(o Options) error {
	s, err := newState(o)
	if err != nil {
		return err
	}
	if !current.CompareAndSwap(nil, s) {
		return errAlreadyInitialized()
	}
	Logger().Debug("initialized",
		zap.String("style", o.Style.Name),
		zap.Uint8("separator", o.Separator),
		zap.Bool("trailing_separator", o.TrailingSeparator),
		zap.Bool("track", o.Track))
	return nil
}

// Shutdown uninstalls the library state and returns the number of tracked
// buffers still live. Buffers handed out before Shutdown stay valid and
// may still be released, also after a later Init. Buffers handed out
// without tracking cannot be told apart from foreign pointers once a
// tracking state is installed, so release them before re-initializing
// with FlagTrack.
func Shutdown() int {
	s := current.Swap(nil)
	if s == nil || s.ledger == nil {
		return 0
	}
	leaked := s.ledger.Close()
	if len(leaked) > 0 {
		retired.add(s.ledger)
	}
	return len(leaked)
}

// Initialized reports whether Init has installed state.
func Initialized() bool {
	return current.Load() != nil
}

// CurrentOptions returns the options passed to Init.
func CurrentOptions() (Options, bool) {
	s := current.Load()
	if s == nil {
		return Options{}, false
	}
	return s.opts, true
}

// FormatScalar returns a malloc'd NUL-terminated string, or nil before
// Init or for an unknown profile.
func FormatScalar(p Profile, v float64) unsafe.Pointer {
	s := current.Load()
	if s == nil {
		return nil
	}
	a := s.adapter(p)
	if a == nil {
		return nil
	}

	scratch := boundary.Scratch()
	*scratch = a.AppendScalar((*scratch)[:0], v)
	out := s.export(*scratch)
	boundary.PutScratch(scratch)
	return out
}

// FormatArray formats n doubles starting at values. The array is only
// read during the call. A nil values with n > 0, or a negative n, returns
// nil.
func FormatArray(p Profile, values unsafe.Pointer, n int) unsafe.Pointer {
	s := current.Load()
	if s == nil {
		return nil
	}
	a := s.adapter(p)
	if a == nil || n < 0 || (n > 0 && values == nil) {
		return nil
	}

	var view []float64
	if n > 0 {
		view = unsafe.Slice((*float64)(values), n)
	}

	scratch := boundary.Scratch()
	*scratch = a.AppendArray((*scratch)[:0], view)
	out := s.export(*scratch)
	boundary.PutScratch(scratch)
	return out
}

// export copies text plus a NUL terminator into C memory.
func (s *state) export(text []byte) unsafe.Pointer {
	size := len(text) + 1
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		panic(errors.AllocationFailed(errors.PhaseBoundary, clampU32(size), 1))
	}
	dst := unsafe.Slice((*byte)(ptr), size)
	copy(dst, text)
	dst[size-1] = 0

	if s.ledger != nil {
		if err := s.ledger.Track(uint64(uintptr(ptr)), uint64(size)); err != nil {
			C.free(ptr)
			panic(err)
		}
	}
	return ptr
}

// Release frees a buffer returned by FormatScalar or FormatArray. nil is
// a no-op. With tracking enabled an address the library did not hand out
// is logged and left alone.
func Release(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	addr := uint64(uintptr(ptr))
	s := current.Load()
	tracked := s != nil && s.ledger != nil
	if tracked {
		if _, ok := s.ledger.Release(addr); ok {
			C.free(ptr)
			return
		}
	}
	if retired.release(addr) {
		C.free(ptr)
		return
	}
	if tracked {
		Logger().Warn("release of unknown buffer",
			zap.Uintptr("addr", uintptr(ptr)))
		return
	}
	C.free(ptr)
}

// Live returns the number of tracked buffers not yet released. It is 0
// when tracking is off.
func Live() int {
	s := current.Load()
	if s == nil || s.ledger == nil {
		return 0
	}
	return s.ledger.Live()
}

// Draining returns the number of tracked buffers handed out before the
// last Shutdown and not yet released.
func Draining() int {
	return retired.live()
}

// Ledger returns the tracking ledger, or nil.
func Ledger() *boundary.Ledger {
	s := current.Load()
	if s == nil {
		return nil
	}
	return s.ledger
}

// GoString copies a NUL-terminated C string.
func GoString(ptr unsafe.Pointer) string {
	if ptr == nil {
		return ""
	}
	return C.GoString((*C.char)(ptr))
}

func clampU32(n int) uint32 {
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}

var _ ffifmt.Caller = (*Caller)(nil)

// Caller drives the exported functions the way a foreign program does.
// Array input is copied into C memory first, so the formatter only ever
// sees foreign-owned memory.
type Caller struct {
	profile Profile
}

// NewCaller returns a Caller for profile. Init must have been called.
func NewCaller(p Profile) (*Caller, error) {
	if p < 0 || p >= profileCount {
		return nil, errors.New(errors.PhaseBoundary, errors.KindInvalidInput).
			Value(int(p)).
			Detail("unknown profile %d", int(p)).
			Build()
	}
	if !Initialized() {
		return nil, errNotInitialized()
	}
	return &Caller{profile: p}, nil
}

// Profile returns the profile the caller formats with.
func (c *Caller) Profile() Profile {
	return c.profile
}

// FormatScalar implements ffifmt.Caller.
func (c *Caller) FormatScalar(ctx context.Context, v float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.take(FormatScalar(c.profile, v))
}

// FormatArray implements ffifmt.Caller.
func (c *Caller) FormatArray(ctx context.Context, values []float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(values) == 0 {
		return c.take(FormatArray(c.profile, nil, 0))
	}

	size := len(values) * 8
	arena := C.malloc(C.size_t(size))
	if arena == nil {
		return "", errors.AllocationFailed(errors.PhaseBoundary, clampU32(size), 8)
	}
	defer C.free(arena)
	copy(unsafe.Slice((*float64)(arena), len(values)), values)

	return c.take(FormatArray(c.profile, arena, len(values)))
}

func (c *Caller) take(ptr unsafe.Pointer) (string, error) {
	if ptr == nil {
		return "", errNotInitialized()
	}
	text := GoString(ptr)
	Release(ptr)
	return text, nil
}

// Close implements ffifmt.Caller. The library stays initialized.
func (c *Caller) Close(context.Context) error {
	return nil
}
