package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jshufro/abi-selector-index/internal/config"
	"github.com/jshufro/abi-selector-index/internal/indexer"
	"github.com/jshufro/abi-selector-index/internal/logging"
	"github.com/jshufro/abi-selector-index/internal/store"
	"github.com/jshufro/abi-selector-index/lib"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// usageError marks configuration and argument problems
type usageError struct {
	err error
}

func (u usageError) Error() string { return u.err.Error() }
func (u usageError) Unwrap() error { return u.err }

type globalFlags struct {
	config    string
	outDir    string
	logLevel  string
	logFormat string
	logFile   string
}

var flags globalFlags

func newRootCmd() *cobra.Command {
	flags = globalFlags{}
	root := &cobra.Command{
		Use:           "abi-selector-index",
		Short:         "Build a cross-contract index of function and event selectors",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.config, "config", "", "config file (YAML or JSON)")
	root.PersistentFlags().StringVar(&flags.outDir, "out", "", "output directory (default dist)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "console or json")
	root.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "also log to this file, rotated")

	build := newBuildCmd()
	root.AddCommand(build, newSelectorCmd(), newLookupCmd(), newValidateCmd())
	// a bare invocation builds
	root.RunE = build.RunE
	root.Args = build.Args
	root.Flags().AddFlagSet(build.Flags())

	return root
}

// loadConfig layers defaults, the config file, the environment and the flags
func loadConfig() (config.Config, error) {
	cfg := config.Defaults()

	path := flags.config
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "CONFIG")
	}
	if path != "" {
		var err error
		cfg, err = config.Load(cfg, path)
		if err != nil {
			return cfg, usageError{err}
		}
	}

	cfg, err := config.ApplyEnv(cfg, os.Environ())
	if err != nil {
		return cfg, usageError{err}
	}

	if flags.outDir != "" {
		cfg.OutDir = flags.outDir
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	if flags.logFile != "" {
		cfg.Log.File = flags.logFile
	}

	return cfg, nil
}

func newStore(cfg config.Config) (*store.FS, error) {
	atomic := cfg.AtomicWrites
	return store.New(&store.Options{Root: cfg.OutDir, Atomic: &atomic})
}

func layout(cfg config.Config) lib.Layout {
	return lib.Layout{FunctionDir: cfg.FunctionDir, EventDir: cfg.EventDir}
}

type buildFlags struct {
	continueOnError bool
}

func newBuildCmd() *cobra.Command {
	var bf buildFlags

	cmd := &cobra.Command{
		Use:   "build [abi-dir]",
		Short: "Index every ABI file in a directory",
		Long: `Reads every regular, non-hidden file of the ABI directory, appends each function
and event to the group file of its selector and rewrites the contract manifest.

Group files are extended, never truncated, so outputs of earlier runs are kept.
Do not run two builds against the same output directory at the same time.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.ABIDir = args[0]
			}
			if cmd.Flags().Changed("continue") {
				cfg.ContinueOnError = bf.continueOnError
			}
			if err := config.Validate(cfg); err != nil {
				return usageError{err}
			}

			logger, err := logging.New(cfg.Log)
			if err != nil {
				return usageError{err}
			}
			defer func() { _ = logger.Sync() }()

			st, err := newStore(cfg)
			if err != nil {
				return usageError{err}
			}
			logger.Info("building index",
				zap.String("abi_dir", cfg.ABIDir),
				zap.String("out_dir", st.Root()),
				zap.Bool("continue_on_error", cfg.ContinueOnError),
			)
			ix, err := indexer.New(indexer.Options{
				ABIDir:          cfg.ABIDir,
				Store:           st,
				Layout:          layout(cfg),
				ManifestPath:    cfg.ManifestFile,
				ContinueOnError: cfg.ContinueOnError,
				Logger:          logger,
			})
			if err != nil {
				return usageError{err}
			}

			report, err := ix.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "contracts: %d, members: %d, selectors: %d, skipped entries: %d\n",
				len(report.Contracts), report.Aggregated, report.Selectors, report.Skipped)
			fmt.Fprintf(cmd.OutOrStdout(), "functions: %d, events: %d, errors: %d\n",
				report.Stats.Functions, report.Stats.Events, report.Stats.Errors)
			if len(report.Failed) > 0 {
				for _, f := range report.Failed {
					logger.Warn("not indexed", zap.String("file", f.File), zap.String("code", string(f.Code)))
				}
				return fmt.Errorf("%d ABI file(s) could not be indexed", len(report.Failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&bf.continueOnError, "continue", false, "skip ABI files that fail to load instead of aborting")
	return cmd
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var u usageError
	if errors.As(err, &u) {
		return exitUsage
	}
	return exitFailure
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(exitCode(err))
}
