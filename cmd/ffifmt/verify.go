package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/ffifmt/errors"
	"github.com/wippyai/ffifmt/verify"
)

func newVerifyCommand(a *app) *cobra.Command {
	var (
		count       int
		seed        uint64
		ramp        int
		stride      int
		maxFailures int
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check output against strconv and the binding's array layout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 0 || ramp < 0 {
				return errors.InvalidInput(errors.PhaseParse, "--count and --ramp must not be negative")
			}
			style := a.formatStyle()
			out := cmd.OutOrStdout()

			values := append(verify.Specials(), verify.PowersOfTen()...)
			values = append(values, verify.RandomBits(count, seed)...)
			scalars := verify.Values(style, values)
			fmt.Fprintf(out, "scalars: %s\n", scalars)

			ctx := cmd.Context()
			c, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			joined, err := verify.Join(ctx, c, verify.Ramp(ramp), verify.JoinOptions{
				Style:       style,
				Separator:   a.cfg.Separator[0],
				Trailing:    a.cfg.TrailingSeparator,
				Stride:      stride,
				MaxFailures: maxFailures,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s array: %s\n", a.binding, joined)

			total := verify.Report{MaxFailures: maxFailures}
			total.Merge(scalars)
			total.Merge(joined)
			for _, f := range total.Failures {
				fmt.Fprintf(out, "  %s\n", f)
			}
			if !total.OK() {
				return errors.New(errors.PhaseFormat, errors.KindInvalidData).
					Value(total.Failed).
					Detail("%d values failed verification", total.Failed).
					Build()
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&count, "count", 100_000, "random bit patterns to check")
	flags.Uint64Var(&seed, "seed", 1, "seed for the random bit patterns")
	flags.IntVar(&ramp, "ramp", 10_000, "ramp length formatted through the binding")
	flags.IntVar(&stride, "stride", 97, "compare every Nth array element with format_scalar")
	flags.IntVar(&maxFailures, "max-failures", 20, "failures to print")
	return cmd
}
