package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/ffifmt"
	"github.com/wippyai/ffifmt/boundary"
	"github.com/wippyai/ffifmt/cabi"
	"github.com/wippyai/ffifmt/wasmhost"
)

// closingCaller runs extra cleanup after the wrapped caller closes.
type closingCaller struct {
	ffifmt.Caller
	cleanup func(ctx context.Context) error
}

func (c closingCaller) Close(ctx context.Context) error {
	err := c.Caller.Close(ctx)
	if cerr := c.cleanup(ctx); err == nil {
		err = cerr
	}
	return err
}

// open returns a Caller for the selected binding. The caller must be
// closed.
func (a *app) open(ctx context.Context) (ffifmt.Caller, error) {
	switch a.binding {
	case bindingCABI:
		return a.openCABI()
	case bindingWasm:
		return a.openWasm(ctx)
	default:
		return a.openGo()
	}
}

func (a *app) openGo() (ffifmt.Caller, error) {
	var ledger *boundary.Ledger
	if a.cfg.TrackAllocations {
		ledger = boundary.NewLedger()
	}
	adapter, err := a.cfg.Adapter(ledger)
	if err != nil {
		return nil, err
	}
	return boundary.NewLocal(adapter), nil
}

func (a *app) openCABI() (ffifmt.Caller, error) {
	if err := cabi.Init(a.cfg.CABIOptions()); err != nil {
		return nil, err
	}
	c, err := cabi.NewCaller(cabi.ProfileDefault)
	if err != nil {
		cabi.Shutdown()
		return nil, err
	}
	return closingCaller{Caller: c, cleanup: func(context.Context) error {
		if live := cabi.Shutdown(); live > 0 {
			a.logger.Warn("C buffers still live at shutdown", zap.Int("count", live))
		}
		return nil
	}}, nil
}

func (a *app) openWasm(ctx context.Context) (ffifmt.Caller, error) {
	adapter, err := a.cfg.Adapter(nil)
	if err != nil {
		return nil, err
	}
	host, err := wasmhost.New(ctx, adapter, a.cfg.WasmConfig())
	if err != nil {
		return nil, err
	}
	guest, err := host.Instantiate(ctx, wasmhost.LoopbackModule(host.ModuleName(), a.cfg.Wasm.GuestPages))
	if err != nil {
		_ = host.Close(ctx)
		return nil, err
	}
	return closingCaller{Caller: guest, cleanup: host.Close}, nil
}
