package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jshufro/abi-selector-index/lib"
)

func newSelectorCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "selector <signature>",
		Short:   "Print the function selector and event topic of a signature",
		Example: `  abi-selector-index selector "transfer(address,uint256)"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, sig, err := lib.SignatureSelector(lib.KindFunction, args[0])
			if err != nil {
				return usageError{err}
			}
			ev, _, err := lib.SignatureSelector(lib.KindEvent, args[0])
			if err != nil {
				return usageError{err}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "signature: %s\n", sig)
			fmt.Fprintf(out, "function:  %s\n", fn.Hex())
			fmt.Fprintf(out, "event:     %s\n", ev.Hex())
			return nil
		},
	}
}
