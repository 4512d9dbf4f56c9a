// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"

	"github.com/bureau-foundation/blte/cmd/blte/cli"
)

type decodeParams struct {
	entryParams
	Output      string `flag:"output,O" desc:"file to write the decoded content to"`
	KeepPartial bool   `flag:"keep-partial" desc:"leave the partially written output in place when decoding fails"`
}

func decodeCommand() *cli.Command {
	var params decodeParams

	return &cli.Command{
		Name:    "decode",
		Summary: "Decode one archive entry to a file",
		Description: `Decode the BLTE envelope of one archive entry and write its content
to --output. Every chunk's MD5 is verified before it is written. On
failure the partial output is removed unless --keep-partial is set.`,
		Examples: []cli.Example{
			{
				Description: "Decode an entry whose size is in its entry header",
				Command:     "blte decode -a data.003 -o 1024 -O azeroth.wdt",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, _ []string, logger *slog.Logger) error {
			if err := params.validate(); err != nil {
				return err
			}
			if params.Output == "" {
				return cli.Validation("--output is required")
			}
			archive, entry, err := params.openEntry()
			if err != nil {
				return err
			}
			defer archive.Close()

			result, err := params.decoder(logger).ExtractFile(ctx, entry.Source, entry.DeclaredSize, params.Output)
			if err != nil {
				if !params.KeepPartial {
					removePartial(params.Output, logger)
				}
				return err
			}
			logger.Info("decoded entry",
				"archive", archive.Path(),
				"offset", entry.Offset,
				"layout", result.Header.Layout.String(),
				"recovered", result.Header.Recovered,
				"bytes", result.BytesWritten,
				"output", params.Output,
			)
			return nil
		},
	}
}
