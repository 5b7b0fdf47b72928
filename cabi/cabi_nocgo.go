//go:build !cgo

package cabi

import (
	"context"
	"unsafe"

	"github.com/wippyai/ffifmt"
	"github.com/wippyai/ffifmt/boundary"
	"github.com/wippyai/ffifmt/errors"
)

// Supported reports whether the C binding is compiled in.
const Supported = false

func errUnsupported() error {
	return errors.Unsupported(errors.PhaseRuntime, "C binding without cgo")
}

// Init always fails without cgo.
func Init(o Options) error {
	if _, err := newState(o); err != nil {
		return err
	}
	return errUnsupported()
}

func Shutdown() int                                           { return 0 }
func Initialized() bool                                       { return false }
func CurrentOptions() (Options, bool)                         { return Options{}, false }
func FormatScalar(Profile, float64) unsafe.Pointer            { return nil }
func FormatArray(Profile, unsafe.Pointer, int) unsafe.Pointer { return nil }
func Release(unsafe.Pointer)                                  {}
func Live() int                                               { return 0 }
func Draining() int                                           { return 0 }
func Ledger() *boundary.Ledger                                { return nil }
func GoString(unsafe.Pointer) string                          { return "" }

var _ ffifmt.Caller = (*Caller)(nil)

// Caller is unavailable without cgo.
type Caller struct {
	profile Profile
}

func NewCaller(Profile) (*Caller, error) {
	return nil, errUnsupported()
}

func (c *Caller) Profile() Profile {
	return c.profile
}

func (c *Caller) FormatScalar(context.Context, float64) (string, error) {
	return "", errUnsupported()
}

func (c *Caller) FormatArray(context.Context, []float64) (string, error) {
	return "", errUnsupported()
}

func (c *Caller) Close(context.Context) error {
	return nil
}
