package verify

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/ffifmt/boundary"
	"github.com/wippyai/ffifmt/errors"
	"github.com/wippyai/ffifmt/ryu"
)

func TestReference(t *testing.T) {
	tests := []struct {
		in     float64
		digits string
		exp    int
	}{
		{1, "1", 0},
		{100, "1", 2},
		{0.001, "1", -3},
		{123.456, "123456", -3},
		{-2.5, "25", -1},
		{5e-324, "5", -324},
		{math.MaxFloat64, "17976931348623157", 292},
	}
	for _, tt := range tests {
		digits, exp := Reference(tt.in)
		assert.Equal(t, tt.digits, digits, "digits of %v", tt.in)
		assert.Equal(t, tt.exp, exp, "exponent of %v", tt.in)
	}
}

func TestCheck_AllStyles(t *testing.T) {
	inputs := append(Specials(), PowersOfTen()...)
	for _, style := range ryu.Styles() {
		t.Run(style.Name, func(t *testing.T) {
			r := Values(style, inputs)
			assert.True(t, r.OK(), "%s: %v", r, r.Failures)
			assert.Equal(t, len(inputs), r.Checked)
		})
	}
}

func TestCheck_RandomBits(t *testing.T) {
	n := 100_000
	if testing.Short() {
		n = 10_000
	}
	r := Values(ryu.Standard, RandomBits(n, 42))
	assert.True(t, r.OK(), "%s: %v", r, r.Failures)
}

func TestCheck_DetectsUnparseableText(t *testing.T) {
	style := ryu.Standard
	style.ExpMarker = 'x'

	f := Check(style, 1e8)
	require.NotNil(t, f)
	assert.Equal(t, "1.0x8", f.Got)
	assert.Equal(t, "text does not parse", f.Reason)

	assert.Nil(t, Check(style, 12.5))
	assert.Nil(t, Check(style, math.Inf(-1)))
}

func TestReport(t *testing.T) {
	r := Report{MaxFailures: 2}
	for i := 0; i < 5; i++ {
		r.add(&Failure{Value: float64(i), Got: "x", Reason: "bad"})
	}
	r.add(nil)

	assert.False(t, r.OK())
	assert.Equal(t, 6, r.Checked)
	assert.Equal(t, 5, r.Failed)
	assert.Len(t, r.Failures, 2)
	assert.Equal(t, "5 of 6 values failed", r.String())

	var total Report
	total.Merge(r)
	total.Merge(Report{Checked: 3})
	assert.Equal(t, 9, total.Checked)
	assert.Equal(t, 5, total.Failed)
	assert.Len(t, total.Failures, 2)

	assert.Equal(t, "3 values ok", Report{Checked: 3}.String())
}

func TestFailureString(t *testing.T) {
	f := Failure{Value: 1, Got: "2.0", Want: "1.0", Reason: "mismatch"}
	assert.Equal(t, `0x3ff0000000000000: mismatch (got "2.0", want "1.0")`, f.String())

	f.Want = ""
	assert.Equal(t, `0x3ff0000000000000: mismatch (got "2.0")`, f.String())
}

func TestRamp(t *testing.T) {
	values := Ramp(13)
	require.Len(t, values, 13)
	assert.Equal(t, 0.0, values[0])
	assert.Equal(t, 1.0, values[12])
	assert.Equal(t, float64(float32(1)/12), values[1])
	assert.Equal(t, "0.0833333358168602", ryu.Format(values[1]))
}

func TestRandomBits_Deterministic(t *testing.T) {
	a := RandomBits(64, 7)
	b := RandomBits(64, 7)
	c := RandomBits(64, 8)
	for i := range a {
		assert.Equal(t, math.Float64bits(a[i]), math.Float64bits(b[i]))
	}
	assert.NotEqual(t, math.Float64bits(a[0]), math.Float64bits(c[0]))
}

func TestJoin(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		opts  []boundary.Option
		style ryu.Style
		sep   byte
		trail bool
	}{
		{"standard", nil, ryu.Standard, ' ', false},
		{"compact trailing", []boundary.Option{boundary.WithStyle(ryu.Compact), boundary.WithTrailingSeparator(true)}, ryu.Compact, ' ', true},
		{"plain newline", []boundary.Option{boundary.WithStyle(ryu.Plain), boundary.WithSeparator('\n')}, ryu.Plain, '\n', false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := boundary.New(tt.opts...)
			require.NoError(t, err)
			c := boundary.NewLocal(a)

			opts := JoinOptions{Style: tt.style, Separator: tt.sep, Trailing: tt.trail, Stride: 7}
			r, err := Join(ctx, c, append(Ramp(100), Specials()...), opts)
			require.NoError(t, err)
			assert.True(t, r.OK(), "%s: %v", r, r.Failures)
			assert.Equal(t, 100+len(Specials()), r.Checked)

			r, err = Join(ctx, c, nil, opts)
			require.NoError(t, err)
			assert.Zero(t, r.Checked)
		})
	}
}

type skewedCaller struct {
	*boundary.Local
}

func (c skewedCaller) FormatArray(ctx context.Context, values []float64) (string, error) {
	s, err := c.Local.FormatArray(ctx, values)
	return strings.Replace(s, "1.0", "1.00", 1), err
}

func TestJoin_DetectsMismatch(t *testing.T) {
	ctx := context.Background()
	a, err := boundary.New()
	require.NoError(t, err)

	r, err := Join(ctx, skewedCaller{boundary.NewLocal(a)}, []float64{0.5, 1, 2}, JoinOptions{Style: ryu.Standard, Separator: ' '})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, "1.00", r.Failures[0].Got)

	_, err = Join(ctx, boundary.NewLocal(a), []float64{1, 2}, JoinOptions{Style: ryu.Standard, Separator: ','})
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseFormat, Kind: errors.KindInvalidData})

	_, err = Join(ctx, boundary.NewLocal(a), []float64{1, 2}, JoinOptions{Style: ryu.Standard, Separator: ' ', Trailing: true})
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseFormat, Kind: errors.KindInvalidData})
}
