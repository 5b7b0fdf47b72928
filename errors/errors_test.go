package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseHost,
				Kind:   KindOutOfBounds,
				Path:   []string{"format_array", "values"},
				Symbol: "ffifmt.format_array",
				Detail: "input view exceeds memory",
			},
			contains: []string{"[host]", "out_of_bounds", "format_array.values", "symbol ffifmt.format_array", " - input view"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseBoundary,
				Kind:  KindUnknownBuffer,
			},
			contains: []string{"[boundary]", "unknown_buffer"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRuntime,
				Kind:   KindAllocation,
				Detail: "guest memory full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[runtime]", "allocation", ": guest memory full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !containsSubstring(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseLoad,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseHost,
		Kind:  KindUnknownBuffer,
		Path:  []string{"release"},
	}

	if !err.Is(&Error{Phase: PhaseHost, Kind: KindUnknownBuffer}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseBoundary, Kind: KindUnknownBuffer}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseHost, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseHost, Kind: KindUnknownBuffer}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}

	var as *Error
	if !errors.As(Wrap(PhaseConfig, KindInvalidData, err, "outer"), &as) {
		t.Fatal("errors.As should find *Error")
	}
	if as.Phase != PhaseConfig {
		t.Errorf("As returned outer phase %v, want %v", as.Phase, PhaseConfig)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseHost, KindAllocation).
		Path("format_scalar", "result").
		Symbol("cabi_realloc").
		Value(42).
		Cause(cause).
		Detail("requested %d bytes", 24).
		Build()

	if err.Phase != PhaseHost {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseHost)
	}
	if err.Kind != KindAllocation {
		t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
	}
	if len(err.Path) != 2 || err.Path[0] != "format_scalar" || err.Path[1] != "result" {
		t.Errorf("Path = %v, want [format_scalar result]", err.Path)
	}
	if err.Symbol != "cabi_realloc" {
		t.Errorf("Symbol = %v, want 'cabi_realloc'", err.Symbol)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "requested 24 bytes" {
		t.Errorf("Detail = %v, want 'requested 24 bytes'", err.Detail)
	}
}

func TestBuilder_DetailWithoutArgs(t *testing.T) {
	msg := "100% literal"
	err := New(PhaseFormat, KindInvalidInput).Detail("%s", msg).Build()
	if err.Detail != msg {
		t.Errorf("Detail = %q, want %q", err.Detail, msg)
	}

	err = New(PhaseFormat, KindInvalidInput).Detail("no verbs").Build()
	if err.Detail != "no verbs" {
		t.Errorf("Detail = %q, want verbatim message", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("AllocationFailed", func(t *testing.T) {
		err := AllocationFailed(PhaseHost, 1024, 8)
		if err.Kind != KindAllocation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
		}
		if !containsSubstring(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain size", err.Detail)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseHost, 65530, 16, 65536)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != uint64(65530) {
			t.Errorf("Value = %v, want 65530", err.Value)
		}
		if !containsSubstring(err.Detail, "[65530, 65546)") {
			t.Errorf("Detail = %v, should contain range", err.Detail)
		}
	})

	t.Run("UnknownBuffer", func(t *testing.T) {
		err := UnknownBuffer(PhaseBoundary, 0x1000)
		if err.Kind != KindUnknownBuffer {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownBuffer)
		}
		if !containsSubstring(err.Detail, "0x1000") {
			t.Errorf("Detail = %v, should contain address", err.Detail)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseHost, uint64(1)<<33, "i32 length")
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseBoundary, "C ABI requires cgo")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("NotInitialized", func(t *testing.T) {
		err := NotInitialized(PhaseBoundary, "C ABI")
		if err.Detail != "C ABI not initialized" {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseLoad, "export", "memory")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
		if err.Detail != `export "memory" not found` {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("Registration", func(t *testing.T) {
		err := Registration("ffifmt", "release", errors.New("dup"))
		if err.Symbol != "ffifmt.release" {
			t.Errorf("Symbol = %q", err.Symbol)
		}
		if err.Phase != PhaseHost {
			t.Errorf("Phase = %v, want %v", err.Phase, PhaseHost)
		}
	})

	t.Run("ParseFailed", func(t *testing.T) {
		err := ParseFailed("WIT type", errors.New("bad"))
		if err.Phase != PhaseParse || err.Kind != KindInvalidData {
			t.Errorf("got [%v] %v", err.Phase, err.Kind)
		}
	})
}

func containsSubstring(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && containsSubstringHelper(s, substr)))
}

func containsSubstringHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
