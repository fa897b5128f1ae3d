// Package indexer runs one build of the selector index over an ABI directory.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jshufro/abi-selector-index/internal/source"
	"github.com/jshufro/abi-selector-index/lib"
)

type Options struct {
	ABIDir       string
	Store        lib.Store
	Layout       lib.Layout
	ManifestPath string
	// ContinueOnError skips source files that fail to load instead of aborting the run.
	// Failures in the output (corrupt groups, I/O) abort regardless.
	ContinueOnError bool
	Logger          *zap.Logger
}

// FileError records a source file skipped under ContinueOnError.
type FileError struct {
	File string
	Code lib.Code
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Report summarises a run.
type Report struct {
	Contracts  []string
	Aggregated int // members appended
	Skipped    int // entries that are not selector eligible
	Selectors  int // distinct selectors touched
	Stats      lib.Stats
	Failed     []FileError
}

type Indexer struct {
	opts     Options
	agg      *lib.Aggregator
	manifest *lib.Manifest
	log      *zap.Logger
}

func New(opts Options) (*Indexer, error) {
	if opts.Store == nil {
		return nil, errors.New("indexer: store is required")
	}
	if opts.ABIDir == "" {
		return nil, errors.New("indexer: ABI directory is required")
	}
	if opts.ManifestPath == "" {
		opts.ManifestPath = lib.DefaultManifestPath
	}
	if opts.Layout == (lib.Layout{}) {
		opts.Layout = lib.DefaultLayout
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Indexer{
		opts:     opts,
		agg:      lib.NewAggregator(opts.Store, opts.Layout),
		manifest: lib.NewManifest(opts.Store, opts.ManifestPath),
		log:      log,
	}, nil
}

// Run processes every ABI file in order and then replaces the manifest.
// The manifest is not written when the run aborts.
func (ix *Indexer) Run(ctx context.Context) (*Report, error) {
	report := new(Report)

	if err := ix.agg.Prepare(); err != nil {
		return report, fmt.Errorf("preparing output: %w", err)
	}

	files, err := source.List(ctx, ix.opts.ABIDir)
	if err != nil {
		return report, fmt.Errorf("listing %s: %w", ix.opts.ABIDir, err)
	}
	ix.log.Debug("listed ABI files", zap.String("dir", ix.opts.ABIDir), zap.Int("count", len(files)))

	touched := make(map[string]struct{})
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		err := ix.processFile(f, report, touched)
		if err == nil {
			continue
		}

		code := lib.Classify(err)
		if ix.opts.ContinueOnError && lib.Recoverable(err) {
			ix.log.Warn("skipping ABI file", zap.String("file", f.Name), zap.String("code", string(code)), zap.Error(err))
			report.Failed = append(report.Failed, FileError{File: f.Name, Code: code, Err: err})
			continue
		}
		ix.log.Error("aborting run", zap.String("file", f.Name), zap.String("code", string(code)), zap.Error(err))
		return report, err
	}
	report.Selectors = len(touched)

	if err := ix.manifest.Write(); err != nil {
		return report, fmt.Errorf("writing manifest: %w", err)
	}
	report.Contracts = ix.manifest.Names()

	ix.log.Info("index built",
		zap.Int("contracts", len(report.Contracts)),
		zap.Int("aggregated", report.Aggregated),
		zap.Int("skipped", report.Skipped),
		zap.Int("selectors", report.Selectors),
		zap.Int("failed", len(report.Failed)),
	)
	return report, nil
}

func (ix *Indexer) processFile(f source.File, report *Report, touched map[string]struct{}) error {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return err
	}

	contract, err := lib.ParseContract(lib.ContractName(f.Name), data)
	if err != nil {
		return err
	}

	// Compute every selector before writing so a malformed file leaves no partial output
	for _, entry := range contract.Entries {
		if !lib.IsEligible(entry) {
			continue
		}
		if _, err := ix.agg.Selector(entry); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}

	log := ix.log.With(zap.String("contract", contract.Name))
	for _, entry := range contract.Entries {
		sel, ok, err := ix.agg.Aggregate(contract.Name, entry)
		if err != nil {
			return err
		}
		if !ok {
			report.Skipped++
			log.Debug("skipped entry", zap.String("type", entry.Type), zap.String("name", entry.Name))
			continue
		}
		report.Aggregated++
		touched[sel.Hex()] = struct{}{}
		log.Debug("aggregated entry", zap.String("selector", sel.Hex()), zap.String("name", entry.Name))
	}

	report.Stats.Add(lib.CountKinds(contract))
	ix.manifest.RecordProcessed(contract.Name)
	return nil
}
