// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/bureau-foundation/blte/cmd/blte/cli"
	"github.com/bureau-foundation/blte/lib/blte"
	"github.com/bureau-foundation/blte/lib/casc"
)

type inspectParams struct {
	cli.JSONOutput
	entryParams
}

// InspectResult is the structure of one entry without its decoded
// content.
type InspectResult struct {
	Archive         string      `json:"archive"`
	Offset          int64       `json:"offset"`
	Key             string      `json:"key"`
	DeclaredSize    int64       `json:"declared_size"`
	Layout          string      `json:"layout"`
	FrameHeaderSize uint32      `json:"frame_header_size"`
	PayloadSize     int64       `json:"payload_size,omitempty"`
	Recovered       bool        `json:"recovered,omitempty"`
	Mode            string      `json:"mode,omitempty"`
	Chunks          []ChunkInfo `json:"chunks,omitempty"`
	DecodedSize     int64       `json:"decoded_size,omitempty"`
}

// ChunkInfo describes one chunk table entry.
type ChunkInfo struct {
	Index            int    `json:"index"`
	Offset           int64  `json:"offset"`
	CompressedSize   uint32 `json:"compressed_size"`
	DecompressedSize uint32 `json:"decompressed_size"`
	Hash             string `json:"hash"`

	// Mode is read from the chunk data; empty when the chunk lies
	// beyond the end of the archive.
	Mode string `json:"mode,omitempty"`
}

func inspectCommand() *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Show an entry's envelope header and chunk table",
		Description: `Parse the BLTE header of one archive entry and list its chunk table
without decoding any payload. For single-payload envelopes the payload
boundary is located the same way decode does, so "recovered" shows
whether the archive's recorded size was wrong.`,
		Examples: []cli.Example{
			{
				Description: "Inspect the entry at offset 0 of data.000",
				Command:     "blte inspect --archive Data/data/data.000 --offset 0",
			},
			{
				Description: "Inspect with the size from the archive index, as JSON",
				Command:     "blte inspect -a data.012 -o 73400 -s 4096 --json",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, _ []string, logger *slog.Logger) error {
			if err := params.validate(); err != nil {
				return err
			}
			archive, entry, err := params.openEntry()
			if err != nil {
				return err
			}
			defer archive.Close()

			result, err := inspectEntry(params.decoder(logger), archive.Path(), entry)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(os.Stdout, result); done {
				return err
			}
			printInspect(os.Stdout, result)
			return nil
		},
	}
}

// inspectEntry parses the entry's header and chunk table and peeks at
// each chunk's mode tag.
func inspectEntry(decoder *blte.Decoder, archivePath string, entry *casc.Entry) (*InspectResult, error) {
	header, err := decoder.ParseHeader(entry.Source, entry.DeclaredSize)
	if err != nil {
		return nil, err
	}

	result := &InspectResult{
		Archive:         archivePath,
		Offset:          entry.Offset,
		Key:             entry.Header.Key.String(),
		DeclaredSize:    entry.DeclaredSize,
		Layout:          header.Layout.String(),
		FrameHeaderSize: header.FrameHeaderSize,
		PayloadSize:     header.PayloadSize,
		Recovered:       header.Recovered,
	}

	if header.Layout == blte.LayoutSingle {
		result.Mode = peekMode(entry.Source, header.Size)
		return result, nil
	}

	chunks, err := decoder.ReadChunkTable(entry.Source, header)
	if err != nil {
		return nil, err
	}
	offset := header.Size + int64(len(chunks))*blte.ChunkDescriptorSize
	result.Chunks = make([]ChunkInfo, len(chunks))
	for index, chunk := range chunks {
		result.Chunks[index] = ChunkInfo{
			Index:            index,
			Offset:           offset,
			CompressedSize:   chunk.CompressedSize,
			DecompressedSize: chunk.DecompressedSize,
			Hash:             blte.FormatHash(chunk.Hash),
			Mode:             peekMode(entry.Source, offset),
		}
		result.DecodedSize += int64(chunk.DecompressedSize)
		offset += int64(chunk.CompressedSize)
	}
	return result, nil
}

func peekMode(source io.ReaderAt, offset int64) string {
	var tag [1]byte
	if _, err := source.ReadAt(tag[:], offset); err != nil {
		return ""
	}
	return blte.Mode(tag[0]).String()
}

func printInspect(w io.Writer, result *InspectResult) {
	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Archive:\t%s\n", result.Archive)
	fmt.Fprintf(writer, "Offset:\t%d\n", result.Offset)
	fmt.Fprintf(writer, "Key:\t%s\n", result.Key)
	fmt.Fprintf(writer, "Declared size:\t%d\n", result.DeclaredSize)
	fmt.Fprintf(writer, "Layout:\t%s\n", result.Layout)
	if result.Layout == blte.LayoutSingle.String() {
		fmt.Fprintf(writer, "Payload size:\t%d\n", result.PayloadSize)
		fmt.Fprintf(writer, "Recovered:\t%t\n", result.Recovered)
		fmt.Fprintf(writer, "Mode:\t%s\n", result.Mode)
		writer.Flush()
		return
	}
	fmt.Fprintf(writer, "Frame header size:\t%d\n", result.FrameHeaderSize)
	fmt.Fprintf(writer, "Chunks:\t%d\n", len(result.Chunks))
	fmt.Fprintf(writer, "Decoded size:\t%d\n", result.DecodedSize)
	writer.Flush()

	fmt.Fprintln(w)
	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "INDEX\tOFFSET\tMODE\tCOMPRESSED\tDECOMPRESSED\tMD5")
	for _, chunk := range result.Chunks {
		fmt.Fprintf(table, "%d\t%d\t%s\t%d\t%d\t%s\n",
			chunk.Index, chunk.Offset, chunk.Mode, chunk.CompressedSize, chunk.DecompressedSize, chunk.Hash)
	}
	table.Flush()
}
