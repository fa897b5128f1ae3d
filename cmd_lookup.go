package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/jshufro/abi-selector-index/lib"
)

func newLookupCmd() *cobra.Command {
	var calldata bool

	cmd := &cobra.Command{
		Use:   "lookup <selector>",
		Short: "List the contracts recorded for a selector in the output directory",
		Long: `Prints contract.signature for every member of the selector's group.
A 4 byte selector is looked up among functions, a 32 byte one among events.
With --calldata the argument is transaction input data and its first 4 bytes are used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := newStore(cfg)
			if err != nil {
				return usageError{err}
			}
			r := lib.NewResolver(st, layout(cfg))

			var members []*lib.Member
			if calldata {
				data, err := hexutil.Decode(args[0])
				if err != nil {
					return usageError{fmt.Errorf("invalid calldata: %w", err)}
				}
				members, err = r.ResolveCalldata(data)
				if err != nil {
					return err
				}
			} else {
				sel, err := lib.ParseSelectorHex(args[0])
				if err != nil {
					return usageError{err}
				}
				members, err = r.Resolve(sel)
				if err != nil {
					return err
				}
			}

			if len(members) == 0 {
				return fmt.Errorf("no entries recorded for %s", args[0])
			}
			out := cmd.OutOrStdout()
			for _, m := range members {
				sig, err := m.Signature()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s.%s\n", m.ContractName, sig)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&calldata, "calldata", false, "treat the argument as call input data")
	return cmd
}
