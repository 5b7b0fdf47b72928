package testbed

import (
	"context"
	"testing"

	"github.com/wippyai/ffifmt"
	"github.com/wippyai/ffifmt/boundary"
	"github.com/wippyai/ffifmt/cabi"
	"github.com/wippyai/ffifmt/ryu"
	"github.com/wippyai/ffifmt/wasmhost"
)

// layout is one configuration every binding is opened with.
type layout struct {
	style    ryu.Style
	sep      byte
	trailing bool
}

var standard = layout{style: ryu.Standard, sep: ' '}

func (l layout) options() []boundary.Option {
	return []boundary.Option{
		boundary.WithStyle(l.style),
		boundary.WithSeparator(l.sep),
		boundary.WithTrailingSeparator(l.trailing),
	}
}

// binding is a named Caller plus what it can report about buffer ownership.
type binding struct {
	caller ffifmt.Caller
	live   func() int
	name   string
}

// openBindings opens the Go, wasm and (with cgo) C bindings for l. They are
// closed when the test ends.
func openBindings(t testing.TB, l layout) []binding {
	t.Helper()
	ctx := context.Background()

	ledger := boundary.NewLedger()
	local, err := boundary.New(append(l.options(), boundary.WithLedger(ledger))...)
	if err != nil {
		t.Fatalf("go adapter: %v", err)
	}
	bindings := []binding{{name: "go", caller: boundary.NewLocal(local), live: ledger.Live}}

	adapter, err := boundary.New(l.options()...)
	if err != nil {
		t.Fatalf("wasm adapter: %v", err)
	}
	host, err := wasmhost.New(ctx, adapter, wasmhost.Config{})
	if err != nil {
		t.Fatalf("wasm host: %v", err)
	}
	t.Cleanup(func() { _ = host.Close(ctx) })
	guest, err := host.Instantiate(ctx, wasmhost.LoopbackModule(wasmhost.DefaultModuleName, 2))
	if err != nil {
		t.Fatalf("instantiate loopback: %v", err)
	}
	bindings = append(bindings, binding{name: "wasm", caller: guest, live: guest.Live})

	if cabi.Supported {
		if err := cabi.Init(cabi.Options{Style: l.style, Separator: l.sep, TrailingSeparator: l.trailing, Track: true}); err != nil {
			t.Fatalf("cabi init: %v", err)
		}
		t.Cleanup(func() { cabi.Shutdown() })
		c, err := cabi.NewCaller(cabi.ProfileDefault)
		if err != nil {
			t.Fatalf("cabi caller: %v", err)
		}
		bindings = append(bindings, binding{name: "cabi", caller: c, live: cabi.Live})
	}

	t.Cleanup(func() {
		for _, b := range bindings {
			if err := b.caller.Close(ctx); err != nil {
				t.Errorf("%s: close: %v", b.name, err)
			}
		}
	})
	return bindings
}
