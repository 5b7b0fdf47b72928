package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/wippyai/ffifmt/errors"
	"github.com/wippyai/ffifmt/verify"
)

func newFormatCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "format <value>...",
		Short: "Format each value on its own line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseValues(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			c, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			out := cmd.OutOrStdout()
			for _, v := range values {
				s, err := c.FormatScalar(ctx, v)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}
}

func newArrayCommand(a *app) *cobra.Command {
	var ramp int

	cmd := &cobra.Command{
		Use:   "array [value]...",
		Short: "Format values as one joined array",
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseValues(args)
			if err != nil {
				return err
			}
			if ramp < 0 {
				return errors.InvalidInput(errors.PhaseParse, "--ramp must not be negative")
			}
			values = append(values, verify.Ramp(ramp)...)

			ctx := cmd.Context()
			c, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			s, err := c.FormatArray(ctx, values)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().IntVar(&ramp, "ramp", 0, "append N ramp values float32(i)/12")
	return cmd
}

// parseValues parses doubles separated by whitespace or commas. Go float
// syntax is accepted, including inf and nan.
func parseValues(args []string) ([]float64, error) {
	var values []float64
	for _, arg := range args {
		fields := strings.FieldsFunc(arg, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
					Value(f).
					Cause(err).
					Detail("%q is not a number", f).
					Build()
			}
			values = append(values, v)
		}
	}
	return values, nil
}
