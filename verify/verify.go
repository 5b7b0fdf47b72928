package verify

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/ffifmt"
	"github.com/wippyai/ffifmt/errors"
	"github.com/wippyai/ffifmt/ryu"
)

// Failure describes one value whose text is wrong.
type Failure struct {
	Value  float64
	Got    string
	Want   string
	Reason string
}

func (f Failure) String() string {
	bits := math.Float64bits(f.Value)
	if f.Want == "" {
		return fmt.Sprintf("0x%016x: %s (got %q)", bits, f.Reason, f.Got)
	}
	return fmt.Sprintf("0x%016x: %s (got %q, want %q)", bits, f.Reason, f.Got, f.Want)
}

// Report collects the outcome of a verification run.
type Report struct {
	Failures []Failure
	Checked  int
	// MaxFailures bounds the failures kept; the count in Failed still
	// includes the dropped ones. 0 keeps everything.
	MaxFailures int
	Failed      int
}

// OK reports whether every checked value passed.
func (r Report) OK() bool {
	return r.Failed == 0
}

func (r *Report) add(f *Failure) {
	r.Checked++
	if f == nil {
		return
	}
	r.Failed++
	if r.MaxFailures == 0 || len(r.Failures) < r.MaxFailures {
		r.Failures = append(r.Failures, *f)
	}
}

// Merge adds the counts and failures of o to r.
func (r *Report) Merge(o Report) {
	r.Checked += o.Checked
	r.Failed += o.Failed
	for _, f := range o.Failures {
		if r.MaxFailures != 0 && len(r.Failures) >= r.MaxFailures {
			break
		}
		r.Failures = append(r.Failures, f)
	}
}

func (r Report) String() string {
	if r.OK() {
		return fmt.Sprintf("%d values ok", r.Checked)
	}
	return fmt.Sprintf("%d of %d values failed", r.Failed, r.Checked)
}

// Reference returns the shortest round-trip digits and decimal exponent of
// |v| as computed by strconv, with trailing zeros removed.
func Reference(v float64) (digits string, exponent int) {
	s := strconv.FormatFloat(math.Abs(v), 'e', -1, 64)
	sig, exp, _ := strings.Cut(s, "e")
	digits = strings.Replace(sig, ".", "", 1)
	exponent, _ = strconv.Atoi(exp)
	exponent -= len(digits) - 1

	for len(digits) > 1 && digits[len(digits)-1] == '0' {
		digits = digits[:len(digits)-1]
		exponent++
	}
	return digits, exponent
}

// Check verifies one value against the reference formatter: the digits
// must match the shortest round-trip digits, and the text must parse back
// to the same bits (or to a NaN).
func Check(style ryu.Style, v float64) *Failure {
	text := style.Format(v)

	switch {
	case math.IsNaN(v):
		if text != style.NaN {
			return &Failure{Value: v, Got: text, Want: style.NaN, Reason: "NaN literal"}
		}
		return nil
	case math.IsInf(v, 1):
		if text != style.PosInf {
			return &Failure{Value: v, Got: text, Want: style.PosInf, Reason: "infinity literal"}
		}
		return nil
	case math.IsInf(v, -1):
		if text != style.NegInf {
			return &Failure{Value: v, Got: text, Want: style.NegInf, Reason: "infinity literal"}
		}
		return nil
	}

	parsed, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return &Failure{Value: v, Got: text, Reason: "text does not parse"}
	}
	if math.Float64bits(parsed) != math.Float64bits(v) {
		return &Failure{Value: v, Got: text, Want: strconv.FormatFloat(v, 'g', -1, 64), Reason: "round trip changed the value"}
	}
	if v == 0 {
		return nil
	}

	d := ryu.Shortest(v)
	digits, exp := Reference(v)
	got := string(d.AppendDigits(nil))
	if got != digits || int(d.Exponent) != exp {
		return &Failure{
			Value:  v,
			Got:    fmt.Sprintf("%se%d", got, d.Exponent),
			Want:   fmt.Sprintf("%se%d", digits, exp),
			Reason: "digits are not the shortest round trip",
		}
	}
	return nil
}

// Values checks every value in order.
func Values(style ryu.Style, values []float64) Report {
	var r Report
	for _, v := range values {
		r.add(Check(style, v))
	}
	return r
}

// JoinOptions describes the array layout a Caller produces.
type JoinOptions struct {
	Style     ryu.Style
	Separator byte
	Trailing  bool
	// Stride selects every Stride-th element for a FormatScalar
	// comparison. 0 or 1 compares every element.
	Stride      int
	MaxFailures int
}

// Join formats values through c in one FormatArray call and checks that
// the result splits into exactly one element per value, that every
// element passes Check, and that sampled elements match FormatScalar.
func Join(ctx context.Context, c ffifmt.Caller, values []float64, opts JoinOptions) (Report, error) {
	r := Report{MaxFailures: opts.MaxFailures}

	joined, err := c.FormatArray(ctx, values)
	if err != nil {
		return r, err
	}

	text := []byte(joined)
	if opts.Trailing && len(values) > 0 {
		if len(text) == 0 || text[len(text)-1] != opts.Separator {
			return r, errors.New(errors.PhaseFormat, errors.KindInvalidData).
				Detail("joined output lacks the trailing separator").
				Build()
		}
		text = text[:len(text)-1]
	}

	var parts [][]byte
	if len(text) > 0 || len(values) > 0 {
		parts = bytes.Split(text, []byte{opts.Separator})
	}
	if len(parts) != len(values) {
		return r, errors.New(errors.PhaseFormat, errors.KindInvalidData).
			Value(len(parts)).
			Detail("joined output has %d elements for %d values", len(parts), len(values)).
			Build()
	}

	stride := max(opts.Stride, 1)
	for i, v := range values {
		part := string(parts[i])
		if want := opts.Style.Format(v); part != want {
			r.add(&Failure{Value: v, Got: part, Want: want, Reason: fmt.Sprintf("element %d differs from the formatter", i)})
			continue
		}
		if i%stride == 0 {
			scalar, err := c.FormatScalar(ctx, v)
			if err != nil {
				return r, err
			}
			if scalar != part {
				r.add(&Failure{Value: v, Got: part, Want: scalar, Reason: fmt.Sprintf("element %d differs from format_scalar", i)})
				continue
			}
		}
		r.add(Check(opts.Style, v))
	}
	return r, nil
}
