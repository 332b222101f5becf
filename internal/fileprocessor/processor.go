// Package fileprocessor handles file loading and conversion job processing.
package fileprocessor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/sidgoreloc/internal/container"
	"github.com/retroenv/sidgoreloc/internal/loader"
	"github.com/retroenv/sidgoreloc/internal/options"
	"github.com/retroenv/sidgoreloc/internal/pipeline"
	"github.com/retroenv/sidgoreloc/internal/profile"
	"github.com/retroenv/sidgoreloc/internal/verification"
	"golang.org/x/term"
)

// ProcessFile runs one conversion job for the input file.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if opts.Output == opts.Input {
		return fmt.Errorf("output file %s would overwrite the input", opts.Output)
	}

	input, err := loader.New().Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading container: %w", err)
	}

	prof, err := profile.Lookup(opts.Profile)
	if err != nil {
		return err
	}

	jobOpts := options.Job{
		Destination: opts.Destination,
		ZeroPage:    opts.ZeroPage,
		Title:       opts.Title,
		Author:      opts.Author,
		Released:    opts.Released,
	}
	job, err := pipeline.New(logger, input, prof, jobOpts)
	if err != nil {
		return fmt.Errorf("creating job: %w", err)
	}

	out, report, err := job.Run()
	if err != nil {
		return fmt.Errorf("converting: %w", err)
	}

	if err := writeContainer(opts, out); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if opts.Verify {
		if err := verification.VerifyOutput(logger, prof, input, out, jobOpts); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		logger.Info("Verification successful")
	}

	logger.Info("Converted file",
		log.String("input", opts.Input),
		log.String("output", opts.Output),
		log.Hex("address", out.LoadAddress))

	if opts.Verbose {
		printReport(logger, report)
	}
	return nil
}

func writeContainer(opts options.Program, out *container.Container) error {
	var data []byte
	switch opts.Format {
	case options.FormatPRG:
		data = container.WritePRG(out)
	case options.FormatSID:
		data = container.WriteSID(out)
	case options.FormatEditor:
		data = container.WriteEditor(out)
	default:
		return fmt.Errorf("unsupported output format '%s'", opts.Format)
	}

	if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
		return fmt.Errorf("creating file %s: %w", opts.Output, err)
	}
	return nil
}

// GetFilesToProcess returns the list of files to process based on options.
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern %s", opts.Batch)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates the output filename for a given input
// file and output format. A derived name that collides with the input file
// gets a suffix, the input is never overwritten.
func GenerateOutputFilename(inputFile string, opts options.Program) string {
	ext := filepath.Ext(inputFile)
	base := inputFile[:len(inputFile)-len(ext)]

	name := derivedFilename(base, "", opts)
	if name == inputFile {
		name = derivedFilename(base, "-relocated", opts)
	}
	return name
}

func derivedFilename(base, suffix string, opts options.Program) string {
	name := base + suffix + outputExtension(opts.Format)
	if opts.OutputDir != "" {
		name = filepath.Join(opts.OutputDir, filepath.Base(name))
	}
	return name
}

func outputExtension(format string) string {
	switch format {
	case options.FormatPRG:
		return ".prg"
	case options.FormatEditor:
		return ".swm"
	default:
		return ".sid"
	}
}

// PrintBanner prints application version information. The banner is skipped
// in quiet mode and when stdout is not a terminal.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet || !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}

	logger.Info("sidgoreloc", log.String("version", buildinfo.Version(version, commit, date)))
}

func printReport(logger *log.Logger, report *pipeline.Report) {
	logger.Info("Conversion report",
		log.Int("absolute_rewrites", report.AbsoluteRewrites),
		log.Int("zeropage_rewrites", report.ZeroPageRewrites),
		log.Int("tables_transcoded", report.TablesTranscoded),
		log.Int("patches_applied", report.PatchesApplied))

	for _, warning := range report.Warnings {
		logger.Warn(warning)
	}
}
