// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/blte/cmd/blte/cli"
	"github.com/bureau-foundation/blte/lib/binhash"
	"github.com/bureau-foundation/blte/lib/blte"
	"github.com/bureau-foundation/blte/lib/casc"
	"github.com/bureau-foundation/blte/lib/clock"
	"github.com/bureau-foundation/blte/lib/config"
	"github.com/bureau-foundation/blte/lib/report"
)

type extractParams struct {
	Config    string `flag:"config,c" desc:"extraction config file (default: $BLTE_CONFIG)"`
	Report    string `flag:"report,r" desc:"write the report here, overriding paths.report"`
	KeepGoing bool   `flag:"keep-going,k" desc:"continue after a failed entry"`
}

func extractCommand() *cli.Command {
	var params extractParams

	return &cli.Command{
		Name:    "extract",
		Summary: "Extract the entries listed in a config file",
		Description: `Decode every entry listed in the extraction config into files under
paths.output. Each entry's outcome, a BLAKE3 digest of the written
file and the class of any error are recorded in a report.

The first failure stops the run unless --keep-going (or
extract.keep_going) is set. The exit status is 1 when any entry
failed.`,
		Examples: []cli.Example{
			{
				Description: "Extract with the config from $BLTE_CONFIG",
				Command:     "blte extract",
			},
			{
				Description: "Extract everything possible and keep a compressed report",
				Command:     "blte extract -c job.yaml -k -r run.cbor.zst",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, _ []string, logger *slog.Logger) error {
			var cfg *config.Config
			var err error
			if params.Config != "" {
				cfg, err = config.LoadFile(params.Config)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}
			if params.Report != "" {
				cfg.Paths.Report = params.Report
			}
			if params.KeepGoing {
				cfg.Extract.KeepGoing = true
			}

			run := runExtraction(ctx, cfg, clock.Real(), logger)
			if cfg.Paths.Report != "" {
				if err := run.Write(cfg.Paths.Report); err != nil {
					return err
				}
				logger.Info("wrote report", "path", cfg.Paths.Report)
			}

			summary := run.Summarize()
			printSummary(os.Stdout, summary)
			if summary.Failed > 0 {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

// runExtraction extracts the configured entries in order and returns
// the finished report. Failures are recorded in the report rather
// than returned; the run stops at the first one unless KeepGoing is
// set, and always stops when ctx is canceled.
func runExtraction(ctx context.Context, cfg *config.Config, clk clock.Clock, logger *slog.Logger) *report.Report {
	run := report.New(clk.Now())
	decoder := blte.NewDecoder(blte.Options{TrailerSize: cfg.Decode.EntryHeaderSize, Logger: logger})
	archives := newArchiveSet(cfg)
	defer archives.close(logger)

	for _, configured := range cfg.Entries {
		started := clk.Now()
		entry := extractEntry(ctx, decoder, archives, cfg, configured, logger)
		entry.Elapsed = clock.Since(clk, started)
		run.Add(entry)
		if !entry.Failed() {
			continue
		}
		logger.Error("extracting entry failed",
			"name", configured.Name,
			"archive", configured.Archive,
			"offset", configured.Offset,
			"error_class", entry.ErrorClass,
			"error", entry.Error,
		)
		if entry.ErrorClass == "canceled" || !cfg.Extract.KeepGoing {
			break
		}
	}

	run.Finish(clk.Now())
	return run
}

func extractEntry(ctx context.Context, decoder *blte.Decoder, archives *archiveSet, cfg *config.Config, configured config.Entry, logger *slog.Logger) report.Entry {
	entry := report.Entry{
		Name:    configured.Name,
		Archive: configured.Archive,
		Offset:  configured.Offset,
	}
	fail := func(err error) report.Entry {
		entry.Error = err.Error()
		entry.ErrorClass = blte.Classify(err)
		return entry
	}

	archive, err := archives.open(configured.Archive)
	if err != nil {
		return fail(err)
	}
	located, err := archive.Entry(configured.Offset, configured.Size)
	if err != nil {
		return fail(err)
	}
	entry.DeclaredSize = located.DeclaredSize

	path, err := blte.OutputPath(cfg.Paths.Output, configured.Name)
	if err != nil {
		return fail(err)
	}

	result, err := decoder.Extract(ctx, located.Source, located.DeclaredSize, cfg.Paths.Output, configured.Name)
	if result != nil {
		entry.Layout = result.Header.Layout.String()
		entry.Chunks = len(result.Chunks)
		entry.Recovered = result.Header.Recovered
		entry.BytesWritten = result.BytesWritten
	}
	if err != nil {
		if !cfg.Extract.KeepPartial {
			removePartial(path, logger)
		}
		return fail(err)
	}

	digest, err := binhash.HashFile(path)
	if err != nil {
		return fail(err)
	}
	entry.Digest = binhash.FormatDigest(digest)

	logger.Info("extracted entry",
		"name", configured.Name,
		"layout", entry.Layout,
		"recovered", entry.Recovered,
		"bytes", entry.BytesWritten,
	)
	return entry
}

// archiveSet opens each data archive once per run.
type archiveSet struct {
	cfg    *config.Config
	opened map[int]*casc.Archive
}

func newArchiveSet(cfg *config.Config) *archiveSet {
	return &archiveSet{cfg: cfg, opened: make(map[int]*casc.Archive)}
}

func (s *archiveSet) open(index int) (*casc.Archive, error) {
	if archive, ok := s.opened[index]; ok {
		return archive, nil
	}
	archive, err := casc.Open(s.cfg.ArchivePath(index))
	if err != nil {
		return nil, err
	}
	s.opened[index] = archive
	return archive, nil
}

func (s *archiveSet) close(logger *slog.Logger) {
	var errs []error
	for _, archive := range s.opened {
		errs = append(errs, archive.Close())
	}
	if err := errors.Join(errs...); err != nil {
		logger.Warn("closing archives failed", "error", err)
	}
}

func printSummary(w io.Writer, summary report.Summary) {
	fmt.Fprintf(w, "%d extracted (%d bytes, %d with recovered boundaries), %d failed\n",
		summary.Succeeded, summary.Bytes, summary.Recovered, summary.Failed)
	for _, class := range []string{"format", "integrity", "io", "canceled", "other"} {
		if count := summary.ByClass[class]; count > 0 {
			fmt.Fprintf(w, "  %s: %d\n", class, count)
		}
	}
}
