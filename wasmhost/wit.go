package wasmhost

import (
	"fmt"
	"regexp"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/ffifmt/errors"
)

// WIT describes the formatter interface for component-model callers.
// Strings returned through the core-module ABI are released with the
// release import; component callers rely on post-return instead.
const WIT = `package wippyai:ffifmt@0.1.0;

interface formatter {
    /// Shortest round-trip text of a double.
    format-scalar: func(value: f64) -> string;

    /// Space-joined shortest round-trip text of each double, in order.
    format-array: func(values: list<f64>) -> string;
}

world ffifmt {
    export formatter;
}
`

// Signature is a parsed WIT function signature.
type Signature struct {
	Name    string
	Params  []Param
	Results []wit.Type
}

// Param is a named WIT function parameter.
type Param struct {
	Name string
	Type wit.Type
}

// CoreName returns the core-module export name of the function.
func (s Signature) CoreName() string {
	return strings.ReplaceAll(s.Name, "-", "_")
}

// String renders the signature in WIT syntax.
func (s Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteString(": func(")
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(TypeString(p.Type))
	}
	b.WriteByte(')')
	if len(s.Results) == 1 {
		b.WriteString(" -> ")
		b.WriteString(TypeString(s.Results[0]))
	}
	return b.String()
}

var funcPattern = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;]+))?`)

// Signatures parses the function signatures declared in WIT.
func Signatures() ([]Signature, error) {
	return ParseSignatures(WIT)
}

// ParseSignatures extracts function signatures from WIT text, in order of
// declaration. Pattern: name: func(params) -> result;
func ParseSignatures(witText string) ([]Signature, error) {
	var sigs []Signature

	for _, match := range funcPattern.FindAllStringSubmatch(witText, -1) {
		sig := Signature{Name: match[1]}

		if paramsStr := strings.TrimSpace(match[2]); paramsStr != "" {
			for _, p := range splitParams(paramsStr) {
				name, typStr, ok := strings.Cut(p, ":")
				if !ok {
					return nil, errors.InvalidData(errors.PhaseParse, []string{sig.Name}, "parameter without type: "+p)
				}
				t, err := ParseType(typStr)
				if err != nil {
					return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "parse param type "+typStr)
				}
				sig.Params = append(sig.Params, Param{Name: strings.TrimSpace(name), Type: t})
			}
		}

		if resultStr := strings.TrimSpace(match[3]); resultStr != "" && resultStr != "()" {
			t, err := ParseType(resultStr)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "parse result type "+resultStr)
			}
			sig.Results = []wit.Type{t}
		}

		sigs = append(sigs, sig)
	}

	if len(sigs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseParse, "no functions found in WIT text")
	}
	return sigs, nil
}

// splitParams splits a parameter list, handling nested angle brackets.
func splitParams(s string) []string {
	var result []string
	var current strings.Builder
	depth := 0

	for _, ch := range s {
		switch ch {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				if str := strings.TrimSpace(current.String()); str != "" {
					result = append(result, str)
				}
				current.Reset()
				continue
			}
		}
		current.WriteRune(ch)
	}

	if str := strings.TrimSpace(current.String()); str != "" {
		result = append(result, str)
	}
	return result
}

// ParseType parses a WIT primitive type or list<T>.
func ParseType(s string) (wit.Type, error) {
	s = strings.TrimSpace(s)
	if inner, ok := strings.CutPrefix(s, "list<"); ok {
		inner, ok = strings.CutSuffix(inner, ">")
		if !ok {
			return nil, errors.ParseFailed("WIT type "+s, fmt.Errorf("unterminated list"))
		}
		elem, err := ParseType(inner)
		if err != nil {
			return nil, err
		}
		return &wit.TypeDef{Kind: &wit.List{Type: elem}}, nil
	}
	t, err := wit.ParseType(s)
	if err != nil {
		return nil, errors.ParseFailed("WIT type "+s, err)
	}
	return t, nil
}

// TypeString renders a type in WIT syntax.
func TypeString(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		if l, ok := v.Kind.(*wit.List); ok {
			return "list<" + TypeString(l.Type) + ">"
		}
		return "typedef"
	default:
		return fmt.Sprintf("%T", t)
	}
}
