package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jshufro/abi-selector-index/internal/source"
	"github.com/jshufro/abi-selector-index/lib"
)

func newValidateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [abi-dir]",
		Short: "Check ABI files for structural problems without writing an index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir := cfg.ABIDir
			if len(args) == 1 {
				dir = args[0]
			}

			findings, stats, files, err := validateDir(cmd.Context(), dir, strict)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range findings {
				fmt.Fprintln(out, f.String())
			}
			fmt.Fprintf(out, "files: %d, functions: %d, events: %d, errors: %d\n",
				files, stats.Functions, stats.Events, stats.Errors)
			if len(findings) > 0 {
				return fmt.Errorf("%d problem(s) found", len(findings))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "also require the ABI to load with go-ethereum")
	return cmd
}

func validateDir(ctx context.Context, dir string, strict bool) ([]lib.Finding, lib.Stats, int, error) {
	var stats lib.Stats

	files, err := source.List(ctx, dir)
	if err != nil {
		return nil, stats, 0, err
	}

	var findings []lib.Finding
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, stats, 0, err
		}
		found := lib.Validate(f.Name, data, strict)
		findings = append(findings, found...)
		if len(found) > 0 {
			continue
		}
		if c, err := lib.ParseContract(lib.ContractName(f.Name), data); err == nil {
			stats.Add(lib.CountKinds(c))
		}
	}
	return findings, stats, len(files), nil
}
