// Package main implements a relocator and container converter for C64 SID
// player binaries.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/sidgoreloc/internal/cli"
	"github.com/retroenv/sidgoreloc/internal/config"
	"github.com/retroenv/sidgoreloc/internal/fileprocessor"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	files, err := fileprocessor.GetFilesToProcess(&opts)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	failed := false
	for _, file := range files {
		opts.Input = file
		if len(files) > 1 || opts.Output == "" {
			opts.Output = fileprocessor.GenerateOutputFilename(file, opts)
		}

		if err := fileprocessor.ProcessFile(ctx, logger, opts); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("Operation cancelled")
				os.Exit(1)
			}
			logger.Error("Converting failed",
				log.String("file", file),
				log.Err(err))
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
