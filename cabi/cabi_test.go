//go:build cgo

package cabi

import (
	"context"
	"math"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/ffifmt/boundary"
	"github.com/wippyai/ffifmt/errors"
	"github.com/wippyai/ffifmt/ryu"
)

func initTest(t *testing.T, o Options) {
	t.Helper()
	require.NoError(t, Init(o))
	t.Cleanup(func() { Shutdown() })
}

func take(t *testing.T, ptr unsafe.Pointer) string {
	t.Helper()
	require.NotNil(t, ptr)
	s := GoString(ptr)
	Release(ptr)
	return s
}

func TestBeforeInit(t *testing.T) {
	require.False(t, Initialized())
	assert.Nil(t, FormatScalar(ProfileDefault, 1))
	assert.Nil(t, FormatArray(ProfileDefault, nil, 0))

	_, err := NewCaller(ProfileDefault)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindNotInitialized})
}

func TestInit_Twice(t *testing.T) {
	initTest(t, DefaultOptions())
	err := Init(DefaultOptions())
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindRegistration})

	assert.Equal(t, ErrAlreadyInitialized, InitCode(StyleStandard, ' ', 0))
}

func TestInitCode(t *testing.T) {
	assert.Equal(t, ErrInvalidArgument, InitCode(7, ' ', 0))
	assert.Equal(t, ErrInvalidArgument, InitCode(StyleStandard, '5', 0))
	assert.Equal(t, ErrInvalidArgument, InitCode(StyleStandard, ' ', 0x80))
	assert.False(t, Initialized())

	require.Equal(t, OK, InitCode(StylePlain, ',', FlagTrack|FlagTrailingSeparator))
	defer Shutdown()

	o, ok := CurrentOptions()
	require.True(t, ok)
	assert.Equal(t, ryu.Plain.Name, o.Style.Name)
	assert.Equal(t, byte(','), o.Separator)
	assert.True(t, o.Track)
	assert.True(t, o.TrailingSeparator)
	assert.Equal(t, FlagTrack|FlagTrailingSeparator, o.Flags())
}

func TestFormatScalar(t *testing.T) {
	initTest(t, DefaultOptions())

	tests := []struct {
		in   float64
		want string
	}{
		{math.Pi, "3.141592653589793"},
		{0, "0.0"},
		{math.Copysign(0, -1), "-0.0"},
		{1e8, "1.0E8"},
		{math.NaN(), "NaN"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, take(t, FormatScalar(ProfileDefault, tt.in)), "formatScalar(%v)", tt.in)
	}
}

func TestProfiles(t *testing.T) {
	initTest(t, DefaultOptions())

	assert.Equal(t, "1e16", take(t, FormatScalar(ProfileRyu, 1e16)))
	assert.Equal(t, "inf", take(t, FormatScalar(ProfileRyu, math.Inf(1))))
	assert.Equal(t, "100", take(t, FormatScalar(ProfileRust, 100)))
	assert.Equal(t, "10000000000000000", take(t, FormatScalar(ProfileRust, 1e16)))

	values := []float64{1, 2.5, 3}
	assert.Equal(t, "1.0 2.5 3.0 ", take(t, FormatArray(ProfileRyuArray, unsafe.Pointer(&values[0]), len(values))))
	assert.Nil(t, FormatScalar(profileCount, 1))
	assert.Nil(t, FormatScalar(-1, 1))
}

func TestFormatArray(t *testing.T) {
	initTest(t, DefaultOptions())

	values := []float64{0.5, -1, 1e-7, math.NaN()}
	got := take(t, FormatArray(ProfileDefault, unsafe.Pointer(&values[0]), len(values)))
	assert.Equal(t, "0.5 -1.0 1.0E-7 NaN", got)

	assert.Equal(t, "", take(t, FormatArray(ProfileDefault, nil, 0)))
	assert.Nil(t, FormatArray(ProfileDefault, nil, 3))
	assert.Nil(t, FormatArray(ProfileDefault, unsafe.Pointer(&values[0]), -1))
}

func TestTracking(t *testing.T) {
	o := DefaultOptions()
	o.Track = true
	require.NoError(t, Init(o))

	obs := &pairObserver{live: map[uint64]bool{}}
	Ledger().Subscribe(obs)

	a := FormatScalar(ProfileDefault, 1)
	b := FormatScalar(ProfileRust, 2)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, 2, Live())

	Release(a)
	assert.Equal(t, 1, Live())

	// A second release of a is ignored rather than freed again.
	Release(a)
	assert.Equal(t, 1, Live())
	Release(nil)

	assert.Equal(t, 1, Shutdown())
	assert.False(t, Initialized())
	assert.Equal(t, 2, obs.allocated)
	assert.Equal(t, 1, obs.released)

	// Buffers outlive Shutdown.
	assert.Equal(t, 1, Draining())
	assert.Equal(t, "2", GoString(b))
	Release(b)
	assert.Equal(t, 0, Draining())
	assert.Equal(t, 2, obs.released)
}

func TestTracking_ReleaseAcrossReinit(t *testing.T) {
	o := DefaultOptions()
	o.Track = true
	require.NoError(t, Init(o))

	old := FormatScalar(ProfileDefault, 0.5)
	require.NotNil(t, old)
	oldLedger := Ledger()
	require.Equal(t, 1, Shutdown())

	initTest(t, o)
	fresh := FormatScalar(ProfileDefault, 1.5)
	require.NotNil(t, fresh)
	assert.Equal(t, 1, Live())
	assert.Equal(t, 1, Draining())

	assert.Equal(t, "0.5", GoString(old))
	Release(old)
	assert.Equal(t, 0, Draining())
	assert.Equal(t, 0, oldLedger.Live())
	assert.Equal(t, 1, Live())

	// Already drained: ignored rather than freed twice.
	Release(old)
	assert.Equal(t, 1, Live())

	assert.Equal(t, "1.5", take(t, fresh))
	assert.Equal(t, 0, Live())
}

type pairObserver struct {
	live      map[uint64]bool
	allocated int
	released  int
}

func (o *pairObserver) OnBufferEvent(e boundary.Event) {
	switch e.Type {
	case boundary.EventAllocated:
		o.live[e.Addr] = true
		o.allocated++
	case boundary.EventReleased:
		if o.live[e.Addr] {
			delete(o.live, e.Addr)
			o.released++
		}
	}
}

func TestCaller(t *testing.T) {
	initTest(t, DefaultOptions())
	ctx := context.Background()

	c, err := NewCaller(ProfileDefault)
	require.NoError(t, err)
	assert.Equal(t, ProfileDefault, c.Profile())

	s, err := c.FormatScalar(ctx, 123.456)
	require.NoError(t, err)
	assert.Equal(t, "123.456", s)

	values := make([]float64, 1000)
	for i := range values {
		values[i] = float64(float32(float32(i) / 12))
	}
	joined, err := c.FormatArray(ctx, values)
	require.NoError(t, err)
	parts := strings.Split(joined, " ")
	require.Len(t, parts, len(values))
	for i, v := range values {
		assert.Equal(t, ryu.Format(v), parts[i])
	}

	empty, err := c.FormatArray(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.FormatScalar(canceled, 1)
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, c.Close(ctx))

	_, err = NewCaller(profileCount)
	assert.Error(t, err)
}

func TestCaller_AfterShutdown(t *testing.T) {
	require.NoError(t, Init(DefaultOptions()))
	c, err := NewCaller(ProfileRyu)
	require.NoError(t, err)
	Shutdown()

	_, err = c.FormatScalar(context.Background(), 1)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindNotInitialized})
}

func TestOptionsFromCodes(t *testing.T) {
	o, err := OptionsFromCodes(StyleCompact, '\t', FlagTrailingSeparator)
	require.NoError(t, err)
	assert.Equal(t, ryu.Compact.Name, o.Style.Name)
	assert.Equal(t, byte('\t'), o.Separator)
	assert.True(t, o.TrailingSeparator)
	assert.False(t, o.Track)

	_, err = OptionsFromCodes(-1, ' ', 0)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseBoundary, Kind: errors.KindInvalidInput})
	_, err = OptionsFromCodes(StyleStandard, ' ', 1<<5)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseBoundary, Kind: errors.KindInvalidInput})
}

func TestProfileString(t *testing.T) {
	assert.Equal(t, "default", ProfileDefault.String())
	assert.Equal(t, "ryu", ProfileRyu.String())
	assert.Equal(t, "rust", ProfileRust.String())
	assert.Equal(t, "ryu-array", ProfileRyuArray.String())
	assert.Equal(t, "unknown", Profile(42).String())
}
