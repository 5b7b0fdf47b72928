package cabi

import (
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/wippyai/ffifmt/boundary"
	"github.com/wippyai/ffifmt/errors"
	"github.com/wippyai/ffifmt/ryu"
)

// Style codes accepted by ffifmtInit.
const (
	StyleStandard = 0
	StyleCompact  = 1
	StylePlain    = 2
)

// Flags accepted by ffifmtInit.
const (
	FlagTrack uint32 = 1 << iota
	FlagTrailingSeparator

	knownFlags = FlagTrack | FlagTrailingSeparator
)

// Result codes returned by ffifmtInit.
const (
	OK                    = 0
	ErrAlreadyInitialized = -1
	ErrInvalidArgument    = -2
	ErrUnsupported        = -3
)

// Profile selects which layout an exported symbol formats with.
type Profile int

const (
	// ProfileDefault is the layout configured by Init.
	ProfileDefault Profile = iota
	// ProfileRyu is the Compact layout of doubleToStringRyu.
	ProfileRyu
	// ProfileRust is the Plain layout of doubleToStringRust.
	ProfileRust
	// ProfileRyuArray is the Compact layout with a separator after every
	// element, as doubleArrayToStringRyu produces.
	ProfileRyuArray

	profileCount
)

func (p Profile) String() string {
	switch p {
	case ProfileDefault:
		return "default"
	case ProfileRyu:
		return "ryu"
	case ProfileRust:
		return "rust"
	case ProfileRyuArray:
		return "ryu-array"
	default:
		return "unknown"
	}
}

// Options configures the library at Init.
type Options struct {
	Style             ryu.Style
	Separator         byte
	TrailingSeparator bool
	// Track records every buffer in a ledger. Releasing an address the
	// library did not hand out is then logged and ignored instead of
	// freed, and Shutdown reports buffers still live.
	Track bool
}

// DefaultOptions returns the Standard layout joined by single spaces.
func DefaultOptions() Options {
	return Options{
		Style:     ryu.Standard,
		Separator: boundary.DefaultSeparator,
	}
}

// StyleFromCode maps a style code to its layout.
func StyleFromCode(code int) (ryu.Style, bool) {
	switch code {
	case StyleStandard:
		return ryu.Standard, true
	case StyleCompact:
		return ryu.Compact, true
	case StylePlain:
		return ryu.Plain, true
	}
	return ryu.Style{}, false
}

// OptionsFromCodes builds Options from the C arguments of ffifmtInit.
func OptionsFromCodes(style int, separator byte, flags uint32) (Options, error) {
	s, ok := StyleFromCode(style)
	if !ok {
		return Options{}, errors.New(errors.PhaseBoundary, errors.KindInvalidInput).
			Path("style").
			Value(style).
			Detail("unknown style code %d", style).
			Build()
	}
	if flags&^knownFlags != 0 {
		return Options{}, errors.New(errors.PhaseBoundary, errors.KindInvalidInput).
			Path("flags").
			Value(flags).
			Detail("unknown flag bits 0x%x", flags&^knownFlags).
			Build()
	}
	return Options{
		Style:             s,
		Separator:         separator,
		TrailingSeparator: flags&FlagTrailingSeparator != 0,
		Track:             flags&FlagTrack != 0,
	}, nil
}

// Flags returns the ffifmtInit flag bits for o.
func (o Options) Flags() uint32 {
	var f uint32
	if o.Track {
		f |= FlagTrack
	}
	if o.TrailingSeparator {
		f |= FlagTrailingSeparator
	}
	return f
}

// InitCode is the body of ffifmtInit: it decodes the arguments, calls
// Init and maps the outcome to a result code.
func InitCode(style int, separator byte, flags uint32) int {
	o, err := OptionsFromCodes(style, separator, flags)
	if err != nil {
		Logger().Warn("ffifmtInit: invalid argument", zap.Error(err))
		return ErrInvalidArgument
	}
	if err := Init(o); err != nil {
		var e *errors.Error
		if stderrors.As(err, &e) {
			switch e.Kind {
			case errors.KindRegistration:
				return ErrAlreadyInitialized
			case errors.KindUnsupported:
				return ErrUnsupported
			}
		}
		Logger().Warn("ffifmtInit: rejected", zap.Error(err))
		return ErrInvalidArgument
	}
	return OK
}
