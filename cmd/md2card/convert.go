package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/fileutil"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// documentFilename is the export document written into every deck directory.
const documentFilename = "cards.html"

// Sentinel errors for batch operations.
var (
	ErrWriteOutput   = errors.New("failed to write output")
	ErrConverterInit = errors.New("failed to initialize converter")
)

// CardConverter converts one deck. *md2card.Converter implements it.
type CardConverter interface {
	Convert(ctx context.Context, input md2card.Input) (*md2card.ConvertResult, error)
}

var _ CardConverter = (*md2card.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (CardConverter, error)
	Release(CardConverter)
	Size() int
}

// poolAdapter exposes *md2card.ConverterPool as a Pool.
type poolAdapter struct {
	pool *md2card.ConverterPool
}

var _ Pool = (*poolAdapter)(nil)

func (a *poolAdapter) Acquire() (CardConverter, error) {
	return a.pool.Acquire()
}

// Release panics on a converter that did not come from the pool.
func (a *poolAdapter) Release(c CardConverter) {
	conv, ok := c.(*md2card.Converter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", c))
	}
	a.pool.Release(conv)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

// conversionParams groups parameters shared across the batch.
type conversionParams struct {
	deck     deckSettings
	htmlOnly bool
}

// ConversionResult holds the outcome of a single deck conversion.
type ConversionResult struct {
	InputPath string
	OutputDir string
	Cards     int
	Images    int
	Warnings  []md2card.ImageWarning
	Err       error
	Duration  time.Duration
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	if err := mergeRenderFlags(flags.set, &flags.render, cfg); err != nil {
		return err
	}
	timeout, err := resolveTimeout(flags.timeout, envCfg.Timeout)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positional, cfg.Input.DefaultDir)
	if err != nil {
		return err
	}
	outputDir := flags.output
	if outputDir == "" {
		outputDir = cfg.Output.DefaultDir
	}

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no markdown files found in %s", ErrNoInput, inputPath)
	}

	deck, err := buildDeckSettings(cfg, flags.render.card.css)
	if err != nil {
		return err
	}
	if !flags.common.quiet {
		warnUnknownTheme(env.Stderr, deck.theme)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	workers := flags.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	poolSize := min(md2card.ResolvePoolSize(workers), len(files))
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", poolSize)
	}
	pool := md2card.NewConverterPool(poolSize, converterOptions(cfg, timeout, store, env)...)
	defer pool.Close()

	results := convertBatch(ctx, &poolAdapter{pool: pool}, files, &conversionParams{
		deck:     deck,
		htmlOnly: flags.htmlOnly,
	})

	if failed := printResults(results, cfg.Images.Store, flags.common.quiet, flags.common.verbose, env); failed > 0 {
		return firstFailure(results, failed)
	}
	return nil
}

// convertBatch processes files concurrently using the converter pool.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))
	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				// Converter creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       fmt.Errorf("%w: %w", ErrConverterInit, err),
					}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile converts one Markdown file and writes its deck directory.
// Cards whose capture failed are reported after the other files are written.
func convertFile(ctx context.Context, conv CardConverter, f FileToConvert, params *conversionParams) (result ConversionResult) {
	start := time.Now()
	result = ConversionResult{InputPath: f.InputPath, OutputDir: f.OutputDir}
	defer func() { result.Duration = time.Since(start) }()

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadMarkdown, err)
		return result
	}

	res, err := conv.Convert(ctx, params.deck.input(string(content), params.htmlOnly))
	if err != nil {
		result.Err = err
		return result
	}
	result.Cards = len(res.Cards)
	result.Warnings = res.Warnings

	if err := os.MkdirAll(f.OutputDir, dirPermissions); err != nil {
		result.Err = fmt.Errorf("%w: creating %s: %v", ErrWriteOutput, f.OutputDir, err)
		return result
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(f.OutputDir, documentFilename), res.HTML, filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
		return result
	}

	for _, img := range res.Images {
		if img.Err != nil {
			continue
		}
		if err := fileutil.WriteFileAtomic(filepath.Join(f.OutputDir, img.Filename), img.PNG, filePermissions); err != nil {
			result.Err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
			return result
		}
		result.Images++
	}

	if failed := res.FailedImages(); len(failed) > 0 {
		labels := make([]string, len(failed))
		errs := make([]error, len(failed))
		for i, img := range failed {
			labels[i] = img.Label
			errs[i] = img.Err
		}
		result.Err = fmt.Errorf("%w: %s: %w", md2card.ErrRasterize, strings.Join(labels, ", "), errors.Join(errs...))
	}
	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs conversion results and returns the failure count.
func printResults(results []ConversionResult, storePath string, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if !quiet {
			printImageWarnings(env.Stderr, r.InputPath, r.Warnings, storePath)
		}
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d cards, %d PNG, %v)\n",
				r.InputPath, r.OutputDir, r.Cards, r.Images, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s (%d cards)\n", r.OutputDir, r.Cards)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// firstFailure returns the error that decides the exit code of a batch.
func firstFailure(results []ConversionResult, failed int) error {
	for _, r := range results {
		if r.Err != nil {
			if failed == 1 {
				return r.Err
			}
			return fmt.Errorf("%d of %d files failed: %w", failed, len(results), r.Err)
		}
	}
	return nil
}
