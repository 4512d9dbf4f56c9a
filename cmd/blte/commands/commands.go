// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the blte command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bureau-foundation/blte/cmd/blte/cli"
	"github.com/bureau-foundation/blte/lib/blte"
	"github.com/bureau-foundation/blte/lib/casc"
	"github.com/bureau-foundation/blte/lib/version"
)

// Root builds and returns the complete command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "blte",
		Description: `blte: decode BLTE envelopes out of CASC data archives.

Inspect an entry's envelope structure, decode a single entry, or run
a batch extraction described by a config file.`,
		Subcommands: []*cli.Command{
			inspectCommand(),
			decodeCommand(),
			extractCommand(),
			reportCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					fmt.Println(version.Full())
					return nil
				},
			},
		},
	}
}

// entryParams locates one entry in one archive. Shared by inspect
// and decode.
type entryParams struct {
	Archive    string `flag:"archive,a" desc:"path of the data.NNN archive"`
	Offset     int64  `flag:"offset,o" desc:"offset of the entry header in the archive"`
	Size       int64  `flag:"size,s" desc:"entry size from the archive index (0: read it from the entry header)"`
	HeaderSize int64  `flag:"entry-header-size" desc:"size of the archive header between envelopes" default:"30"`
}

func (p *entryParams) validate() error {
	if p.Archive == "" {
		return cli.Validation("--archive is required")
	}
	if p.Offset < 0 || p.Size < 0 {
		return cli.Validation("--offset and --size must not be negative")
	}
	if p.HeaderSize <= 0 {
		return cli.Validation("--entry-header-size must be positive")
	}
	return nil
}

func (p *entryParams) decoder(logger *slog.Logger) *blte.Decoder {
	return blte.NewDecoder(blte.Options{TrailerSize: p.HeaderSize, Logger: logger})
}

// openEntry opens the archive and locates the entry. The caller
// closes the archive.
func (p *entryParams) openEntry() (*casc.Archive, *casc.Entry, error) {
	archive, err := casc.Open(p.Archive)
	if err != nil {
		return nil, nil, err
	}
	entry, err := archive.Entry(p.Offset, p.Size)
	if err != nil {
		archive.Close()
		return nil, nil, err
	}
	return archive, entry, nil
}

// removePartial deletes an output file left by a failed decode.
func removePartial(path string, logger *slog.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("removing partial output failed", "path", path, "error", err)
		return
	}
	logger.Debug("removed partial output", "path", path)
}
