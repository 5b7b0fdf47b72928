package ryu

import (
	"math"
	"math/rand/v2"
	"strconv"
	"testing"
)

func TestStyle_Layout(t *testing.T) {
	negZero := math.Copysign(0, -1)

	tests := []struct {
		style Style
		in    float64
		want  string
	}{
		{Standard, 0, "0.0"},
		{Standard, negZero, "-0.0"},
		{Standard, 1, "1.0"},
		{Standard, -1, "-1.0"},
		{Standard, 100, "100.0"},
		{Standard, 0.123, "0.123"},
		{Standard, math.Pi, "3.141592653589793"},
		{Standard, 0.001, "0.001"},
		{Standard, 0.0001, "1.0E-4"},
		{Standard, 1.5e-7, "1.5E-7"},
		{Standard, 1234567, "1234567.0"},
		{Standard, 9999999, "9999999.0"},
		{Standard, 1e7, "1.0E7"},
		{Standard, 1e8, "1.0E8"},
		{Standard, 123456789, "1.23456789E8"},
		{Standard, math.MaxFloat64, "1.7976931348623157E308"},
		{Standard, math.SmallestNonzeroFloat64, "5.0E-324"},
		{Standard, math.NaN(), "NaN"},
		{Standard, math.Inf(1), "Infinity"},
		{Standard, math.Inf(-1), "-Infinity"},

		{Compact, 0, "0.0"},
		{Compact, negZero, "-0.0"},
		{Compact, 1, "1.0"},
		{Compact, 123.456, "123.456"},
		{Compact, 1e15, "1000000000000000.0"},
		{Compact, 1e16, "1e16"},
		{Compact, 1.2345e20, "1.2345e20"},
		{Compact, 1e-5, "0.00001"},
		{Compact, 1e-6, "1e-6"},
		{Compact, 1.5e-7, "1.5e-7"},
		{Compact, math.Pi, "3.141592653589793"},
		{Compact, math.MaxFloat64, "1.7976931348623157e308"},
		{Compact, math.SmallestNonzeroFloat64, "5e-324"},
		{Compact, math.NaN(), "NaN"},
		{Compact, math.Inf(1), "inf"},
		{Compact, math.Inf(-1), "-inf"},

		{Plain, 0, "0"},
		{Plain, negZero, "-0"},
		{Plain, 1, "1"},
		{Plain, 100, "100"},
		{Plain, 0.5, "0.5"},
		{Plain, 1e8, "100000000"},
		{Plain, 1.5e20, "150000000000000000000"},
		{Plain, 1e-7, "0.0000001"},
		{Plain, -12.25, "-12.25"},
		{Plain, math.Pi, "3.141592653589793"},
		{Plain, math.NaN(), "NaN"},
		{Plain, math.Inf(1), "inf"},
		{Plain, math.Inf(-1), "-inf"},
	}

	for _, tt := range tests {
		t.Run(tt.style.Name+"/"+tt.want, func(t *testing.T) {
			if got := tt.style.Format(tt.in); got != tt.want {
				t.Errorf("%s.Format(%v) = %q, want %q", tt.style.Name, tt.in, got, tt.want)
			}
		})
	}
}

func TestStyle_NaNIgnoresSign(t *testing.T) {
	for _, s := range Styles() {
		if got := s.Format(math.Copysign(math.NaN(), -1)); got != s.NaN {
			t.Errorf("%s: negative NaN = %q, want %q", s.Name, got, s.NaN)
		}
	}
}

func TestStyle_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	values := []float64{0, 1, -1, math.Pi, math.E, math.MaxFloat64, -math.MaxFloat64,
		math.SmallestNonzeroFloat64, 2.2250738585072014e-308, 1e23, 0.1, 0.2, 0.3}
	for i := 0; i < 20000; i++ {
		f := math.Float64frombits(r.Uint64())
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		values = append(values, f)
	}

	for _, s := range Styles() {
		t.Run(s.Name, func(t *testing.T) {
			for _, f := range values {
				text := s.Format(f)
				back, err := strconv.ParseFloat(text, 64)
				if err != nil {
					t.Fatalf("ParseFloat(%q): %v", text, err)
				}
				if math.Float64bits(back) != math.Float64bits(f) {
					t.Fatalf("%s round trip %b -> %q -> %b", s.Name, f, text, back)
				}
			}
		})
	}
}

func TestStyle_SpecialsParse(t *testing.T) {
	for _, s := range Styles() {
		for _, f := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
			text := s.Format(f)
			back, err := strconv.ParseFloat(text, 64)
			if err != nil {
				t.Fatalf("%s: ParseFloat(%q): %v", s.Name, text, err)
			}
			if math.IsNaN(f) != math.IsNaN(back) || (!math.IsNaN(f) && f != back) {
				t.Errorf("%s: %q parsed to %v, want %v", s.Name, text, back, f)
			}
		}
	}
}

func TestStyle_ASCIIOnly(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for _, s := range Styles() {
		for i := 0; i < 2000; i++ {
			text := s.AppendFloat(nil, math.Float64frombits(r.Uint64()))
			for _, c := range text {
				if c > 0x7e || c < 0x20 {
					t.Fatalf("%s produced non-ASCII byte %#x in %q", s.Name, c, text)
				}
			}
		}
	}
}

func TestStyle_AppendPreservesPrefix(t *testing.T) {
	dst := []byte("x=")
	dst = Standard.AppendFloat(dst, 2.5)
	if string(dst) != "x=2.5" {
		t.Errorf("AppendFloat = %q, want %q", dst, "x=2.5")
	}
}

func TestStyleByName(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"standard", "standard", true},
		{"Compact", "compact", true},
		{"PLAIN", "plain", true},
		{"java", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		s, ok := StyleByName(tt.name)
		if ok != tt.ok || s.Name != tt.want {
			t.Errorf("StyleByName(%q) = %q, %v; want %q, %v", tt.name, s.Name, ok, tt.want, tt.ok)
		}
	}
}

func TestStyle_Valid(t *testing.T) {
	for _, s := range Styles() {
		if !s.Valid() {
			t.Errorf("%s should be valid", s.Name)
		}
	}

	bad := Standard
	bad.ExpMarker = 'x'
	if bad.Valid() {
		t.Error("unexpected exponent marker should be invalid")
	}

	bad = Compact
	bad.NaN = ""
	if bad.Valid() {
		t.Error("empty NaN literal should be invalid")
	}

	bad = Compact
	bad.MinPlainExp, bad.MaxPlainExp = 3, 1
	if bad.Valid() {
		t.Error("inverted plain window should be invalid")
	}
}

func TestPackageDefaults(t *testing.T) {
	if got := Format(1e8); got != "1.0E8" {
		t.Errorf("Format(1e8) = %q", got)
	}
	if got := string(AppendFloat(nil, 0.123)); got != "0.123" {
		t.Errorf("AppendFloat(0.123) = %q", got)
	}
}
