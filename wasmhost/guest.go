package wasmhost

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/ffifmt"
	"github.com/wippyai/ffifmt/boundary"
	"github.com/wippyai/ffifmt/errors"
)

var _ ffifmt.Caller = (*Guest)(nil)

// Guest is a module instance linked against the host functions.
//
// Its Caller methods drive the guest the way a foreign program would: the
// input array is written into guest memory, the guest's format_scalar or
// format_array export is called, the returned string is copied out, and
// the guest's release export hands the buffer back. The guest must
// re-export the host functions under their own names, as LoopbackModule
// does.
//
// Guest is NOT safe for concurrent use.
type Guest struct {
	host         *Host
	mod          api.Module
	state        *guestState
	formatScalar api.Function
	formatArray  api.Function
	release      api.Function
}

func newGuest(h *Host, mod api.Module, state *guestState) *Guest {
	return &Guest{
		host:         h,
		mod:          mod,
		state:        state,
		formatScalar: mod.ExportedFunction(FuncFormatScalar),
		formatArray:  mod.ExportedFunction(FuncFormatArray),
		release:      mod.ExportedFunction(FuncRelease),
	}
}

// Module returns the underlying module instance.
func (g *Guest) Module() api.Module {
	return g.mod
}

// Memory returns the guest's linear memory.
func (g *Guest) Memory() ffifmt.Memory {
	return g.state.mem
}

// Allocator returns the guest's exported allocator bound to ctx.
func (g *Guest) Allocator(ctx context.Context) ffifmt.Allocator {
	return g.state.alloc.bind(ctx)
}

// Ledger returns the buffers the host has handed to this guest.
func (g *Guest) Ledger() *boundary.Ledger {
	return g.state.ledger
}

// Live returns the number of buffers the guest has not released.
func (g *Guest) Live() int {
	return g.state.ledger.Live()
}

func (g *Guest) export(name string, fn api.Function) (api.Function, error) {
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "guest export", name)
	}
	return fn, nil
}

// FormatScalar implements ffifmt.Caller.
func (g *Guest) FormatScalar(ctx context.Context, v float64) (string, error) {
	fn, err := g.export(FuncFormatScalar, g.formatScalar)
	if err != nil {
		return "", err
	}
	results, err := fn.Call(ctx, api.EncodeF64(v))
	if err != nil {
		return "", errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err, "call "+FuncFormatScalar)
	}
	return g.take(ctx, api.DecodeU32(results[0]))
}

// FormatArray implements ffifmt.Caller.
func (g *Guest) FormatArray(ctx context.Context, values []float64) (string, error) {
	fn, err := g.export(FuncFormatArray, g.formatArray)
	if err != nil {
		return "", err
	}

	var in, size uint32
	if len(values) > 0 {
		if uint64(len(values))*8 > math.MaxUint32 {
			return "", errors.Overflow(errors.PhaseRuntime, len(values), "guest array length")
		}
		size = uint32(len(values) * 8)

		alloc := g.state.alloc.bind(ctx)
		in, err = alloc.Alloc(size, 8)
		if err != nil {
			return "", err
		}
		defer alloc.Free(in, size, 8)

		raw := make([]byte, 0, size)
		for _, v := range values {
			raw = binary.LittleEndian.AppendUint64(raw, math.Float64bits(v))
		}
		if err := g.state.mem.Write(in, raw); err != nil {
			return "", err
		}
	}

	results, err := fn.Call(ctx, api.EncodeU32(in), api.EncodeU32(uint32(len(values))))
	if err != nil {
		return "", errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err, "call "+FuncFormatArray)
	}
	return g.take(ctx, api.DecodeU32(results[0]))
}

// take copies the string at ptr and releases it through the guest.
func (g *Guest) take(ctx context.Context, ptr uint32) (string, error) {
	text, readErr := readCString(g.state.mem, ptr)

	fn, err := g.export(FuncRelease, g.release)
	if err != nil {
		return "", err
	}
	if _, err := fn.Call(ctx, api.EncodeU32(ptr)); err != nil {
		return "", errors.Wrap(errors.PhaseRuntime, errors.KindUnknownBuffer, err, "call "+FuncRelease)
	}
	if readErr != nil {
		return "", readErr
	}
	return text, nil
}

// Close closes the module instance. It reports buffers the guest never
// released.
func (g *Guest) Close(ctx context.Context) error {
	g.host.forget(g.mod)
	leaked := g.state.ledger.Close()

	if err := g.mod.Close(ctx); err != nil {
		return errors.Wrap(errors.PhaseRuntime, errors.KindInstantiation, err, "close guest")
	}
	if len(leaked) > 0 {
		return errors.New(errors.PhaseRuntime, errors.KindLeaked).
			Symbol(g.mod.Name()).
			Value(len(leaked)).
			Detail("%d buffers were never released", len(leaked)).
			Build()
	}
	return nil
}
