package boundary

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/wippyai/ffifmt/errors"
	"github.com/wippyai/ffifmt/ryu"
)

// DefaultSeparator joins array elements.
const DefaultSeparator = ' '

// Adapter turns formatter results into buffers that cross the boundary.
// It is immutable after New and safe for concurrent use.
type Adapter struct {
	style    ryu.Style
	ledger   *Ledger
	nextID   atomic.Uint64
	sep      byte
	trailing bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithStyle sets the text layout. The default is ryu.Standard.
func WithStyle(s ryu.Style) Option {
	return func(a *Adapter) {
		a.style = s
	}
}

// WithSeparator sets the byte placed between array elements.
func WithSeparator(sep byte) Option {
	return func(a *Adapter) {
		a.sep = sep
	}
}

// WithTrailingSeparator also writes the separator after the last element
// of a non-empty array.
func WithTrailingSeparator(on bool) Option {
	return func(a *Adapter) {
		a.trailing = on
	}
}

// WithLedger records every Buffer until it is released.
func WithLedger(l *Ledger) Option {
	return func(a *Adapter) {
		a.ledger = l
	}
}

// New creates an adapter.
func New(opts ...Option) (*Adapter, error) {
	a := &Adapter{
		style: ryu.Standard,
		sep:   DefaultSeparator,
	}
	for _, opt := range opts {
		opt(a)
	}

	if !a.style.Valid() {
		return nil, errors.New(errors.PhaseBoundary, errors.KindInvalidInput).
			Path("style").
			Detail("style %q cannot produce parseable text", a.style.Name).
			Build()
	}
	if !ValidSeparator(a.sep) {
		return nil, errors.New(errors.PhaseBoundary, errors.KindInvalidInput).
			Path("separator").
			Value(a.sep).
			Detail("separator %q would be ambiguous in formatted output", a.sep).
			Build()
	}
	return a, nil
}

// ValidSeparator reports whether sep can never appear inside a formatted
// value. Digits, letters, signs, the decimal point and control bytes other
// than tab and newline are rejected.
func ValidSeparator(sep byte) bool {
	switch {
	case sep == '\t' || sep == '\n':
		return true
	case sep < 0x20 || sep > 0x7e:
		return false
	case sep >= '0' && sep <= '9':
		return false
	case sep >= 'a' && sep <= 'z', sep >= 'A' && sep <= 'Z':
		return false
	case sep == '.' || sep == '-' || sep == '+':
		return false
	}
	return true
}

// Style returns the text layout.
func (a *Adapter) Style() ryu.Style {
	return a.style
}

// Separator returns the array element separator.
func (a *Adapter) Separator() byte {
	return a.sep
}

// TrailingSeparator reports whether arrays end with a separator.
func (a *Adapter) TrailingSeparator() bool {
	return a.trailing
}

// Ledger returns the ledger passed to WithLedger, or nil.
func (a *Adapter) Ledger() *Ledger {
	return a.ledger
}

// AppendScalar appends the text of v.
func (a *Adapter) AppendScalar(dst []byte, v float64) []byte {
	return a.style.AppendFloat(dst, v)
}

// AppendArray appends the text of every value in order, joined by the
// separator. An empty slice appends nothing. values is only read during
// the call.
func (a *Adapter) AppendArray(dst []byte, values []float64) []byte {
	for i, v := range values {
		if i > 0 {
			dst = append(dst, a.sep)
		}
		dst = a.style.AppendFloat(dst, v)
	}
	return a.finishArray(dst, len(values))
}

// AppendLittleEndian formats a foreign array of IEEE-754 doubles laid out
// as consecutive little-endian 8-byte values. Trailing bytes that do not
// form a whole value are ignored. raw is only read during the call.
func (a *Adapter) AppendLittleEndian(dst, raw []byte) []byte {
	n := len(raw) / 8
	for i := 0; i < n; i++ {
		if i > 0 {
			dst = append(dst, a.sep)
		}
		v := math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		dst = a.style.AppendFloat(dst, v)
	}
	return a.finishArray(dst, n)
}

func (a *Adapter) finishArray(dst []byte, n int) []byte {
	if a.trailing && n > 0 {
		dst = append(dst, a.sep)
	}
	return dst
}

// FormatScalar formats v into a new Buffer owned by the caller.
func (a *Adapter) FormatScalar(v float64) *Buffer {
	b := a.newBuffer()
	*b.data = a.AppendScalar(*b.data, v)
	return b.seal()
}

// FormatArray formats values into a new Buffer owned by the caller.
func (a *Adapter) FormatArray(values []float64) *Buffer {
	b := a.newBuffer()
	*b.data = a.AppendArray(*b.data, values)
	return b.seal()
}

func (a *Adapter) newBuffer() *Buffer {
	return newBuffer(a.nextID.Add(1), a.ledger)
}
