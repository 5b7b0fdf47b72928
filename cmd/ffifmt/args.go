package main

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// execute runs root with args. Negative numbers such as -1.5 or -inf are
// passed through as values instead of being parsed as shorthand flags.
func execute(root *cobra.Command, args []string) error {
	root.SetArgs(numericArgs(root, args))
	return root.Execute()
}

// numericArgs moves the positional arguments of the target command behind
// "--" when any of them is a negative number. Flags keep their order and
// their values. Arguments already behind "--" are left alone.
func numericArgs(root *cobra.Command, args []string) []string {
	cmd, _, err := root.Find(args)
	if err != nil || cmd == root {
		return args
	}
	path := make(map[string]bool)
	for c := cmd; c != nil && c != root; c = c.Parent() {
		path[c.Name()] = true
	}

	var head, values []string
	negative := false
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			values = append(values, args[i+1:]...)
			i = len(args)
		case isNumber(arg):
			values = append(values, arg)
			negative = negative || strings.HasPrefix(arg, "-")
		case len(arg) > 1 && arg[0] == '-':
			head = append(head, arg)
			if i+1 < len(args) && takesValue(cmd, arg) {
				i++
				head = append(head, args[i])
			}
		case path[arg] && len(values) == 0:
			head = append(head, arg)
		default:
			values = append(values, arg)
		}
	}
	if !negative {
		return args
	}
	out := make([]string, 0, len(head)+1+len(values))
	out = append(out, head...)
	out = append(out, "--")
	return append(out, values...)
}

// isNumber reports whether arg is a list of doubles as parseValues reads it.
func isNumber(arg string) bool {
	fields := strings.FieldsFunc(arg, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if _, err := strconv.ParseFloat(f, 64); err != nil {
			return false
		}
	}
	return true
}

// takesValue reports whether flag arg consumes the following argument.
func takesValue(cmd *cobra.Command, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	var f *pflag.Flag
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		if f = cmd.Flags().Lookup(name); f == nil {
			f = cmd.InheritedFlags().Lookup(name)
		}
	} else if len(arg) == 2 {
		if f = cmd.Flags().ShorthandLookup(arg[1:]); f == nil {
			f = cmd.InheritedFlags().ShorthandLookup(arg[1:])
		}
	}
	return f != nil && f.NoOptDefVal == ""
}
