// Package boundary adapts the ryu formatter to a foreign-call boundary.
//
// An Adapter formats a scalar or an array into a Buffer. The Buffer is
// NUL-terminated and owned by exactly one caller, who releases it once:
//
//	a, _ := boundary.New(boundary.WithStyle(ryu.Compact))
//	buf := a.FormatArray([]float64{1, 2.5, math.Inf(1)})
//	fmt.Println(buf.String()) // 1.0 2.5 inf
//	buf.Release()
//
// Array elements are joined by a single separator byte with no trailing
// separator unless WithTrailingSeparator is set. An empty array yields an
// empty string.
//
// AppendScalar and AppendArray expose the same output without ownership so
// that bindings can write straight into memory they allocate themselves,
// such as the C heap or a WebAssembly guest's linear memory. Those bindings
// hand out raw addresses and record them in a Ledger, which observes every
// allocation and release and reports what was never released.
package boundary
