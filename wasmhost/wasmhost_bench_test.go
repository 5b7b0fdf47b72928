package wasmhost

import (
	"context"
	"testing"

	"github.com/wippyai/ffifmt/boundary"
)

func benchGuest(b *testing.B) *Guest {
	b.Helper()
	ctx := context.Background()
	adapter, err := boundary.New()
	if err != nil {
		b.Fatal(err)
	}
	h, err := New(ctx, adapter, Config{})
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = h.Close(ctx) })

	g, err := h.Instantiate(ctx, LoopbackModule(DefaultModuleName, 1))
	if err != nil {
		b.Fatal(err)
	}
	return g
}

func BenchmarkGuest_FormatScalar(b *testing.B) {
	ctx := context.Background()
	g := benchGuest(b)
	b.ReportAllocs()
	for b.Loop() {
		if _, err := g.FormatScalar(ctx, 0.3); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGuest_FormatArray1024(b *testing.B) {
	ctx := context.Background()
	g := benchGuest(b)
	values := make([]float64, 1024)
	for i := range values {
		values[i] = float64(float32(float32(i) / 12))
	}
	b.SetBytes(int64(len(values) * 8))
	b.ReportAllocs()
	for b.Loop() {
		if _, err := g.FormatArray(ctx, values); err != nil {
			b.Fatal(err)
		}
	}
}
