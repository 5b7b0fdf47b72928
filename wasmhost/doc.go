// Package wasmhost exposes the formatter to WebAssembly guests through a
// wazero host module.
//
// A guest imports three functions from the "ffifmt" module:
//
//	format_scalar(value f64) -> ptr i32
//	format_array(ptr i32, len i32) -> ptr i32
//	release(ptr i32)
//
// Results are NUL-terminated ASCII strings allocated inside the guest's
// own linear memory with the allocator the guest exports (cabi_realloc,
// canonical_abi_realloc, allocate or alloc). Every returned pointer must be
// passed back to release exactly once; the host frees it through the
// guest's free export (cabi_free, deallocate or free) or through realloc
// with a zero size.
//
// format_array reads len little-endian doubles starting at ptr. The input
// is formatted before the result is allocated, because allocation may
// grow guest memory and invalidate the view.
//
// Host functions trap the calling guest on failure: an out-of-range input
// array, a failed allocation, or a release of a pointer the host did not
// hand out.
//
// # Usage
//
//	adapter, _ := boundary.New()
//	host, err := wasmhost.New(ctx, adapter, wasmhost.Config{})
//	if err != nil {
//		return err
//	}
//	defer host.Close(ctx)
//
//	guest, err := host.Instantiate(ctx, wasmhost.LoopbackModule(wasmhost.DefaultModuleName, 1))
//	if err != nil {
//		return err
//	}
//	text, err := guest.FormatArray(ctx, []float64{1, 2.5})
//
// The component-model view of the same interface is in WIT.
package wasmhost
