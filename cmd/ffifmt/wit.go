package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/ffifmt/wasmhost"
)

func newWitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wit",
		Short: "Print the WIT interface and the core-module imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sigs, err := wasmhost.Signatures()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, wasmhost.WIT)
			fmt.Fprintf(out, "\n// core imports from %q:\n", wasmhost.DefaultModuleName)
			for _, sig := range sigs {
				fmt.Fprintf(out, "//   %-14s %s\n", sig.CoreName(), sig)
			}
			fmt.Fprintf(out, "//   %-14s release: func(ptr: u32)\n", wasmhost.FuncRelease)
			return nil
		},
	}
}
