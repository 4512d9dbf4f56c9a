// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blte

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// DefaultTrailerSize is the number of bytes between the end of one
// single payload and the magic of the next envelope in a CASC data
// archive: the next entry's header. It also accounts for the part of
// an entry's declared size that precedes its envelope.
const DefaultTrailerSize = 30

// Options configures a Decoder.
type Options struct {
	// TrailerSize is the size of the archive structure that sits
	// between consecutive envelopes. Zero selects DefaultTrailerSize.
	TrailerSize int64

	// Logger receives debug events for layout detection and chunk
	// decoding, and a warning when a payload boundary cannot be
	// confirmed. Nil discards them.
	Logger *slog.Logger
}

// Decoder decodes BLTE envelopes. A Decoder holds only configuration
// and can be used from multiple goroutines on distinct sources.
type Decoder struct {
	trailerSize int64
	logger      *slog.Logger
}

// NewDecoder creates a Decoder.
func NewDecoder(options Options) *Decoder {
	trailerSize := options.TrailerSize
	if trailerSize == 0 {
		trailerSize = DefaultTrailerSize
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Decoder{trailerSize: trailerSize, logger: logger}
}

// Result describes a completed decode.
type Result struct {
	Header *Header

	// Chunks is the chunk table. Nil for single-payload envelopes.
	Chunks []ChunkDescriptor

	// BytesWritten is the number of decoded bytes written to the
	// sink. For chunked envelopes it equals the sum of the chunks'
	// decompressed sizes.
	BytesWritten int64
}

// Decode decodes the envelope at the current position of source and
// writes the decoded bytes to sink, one payload at a time and in
// chunk order. declaredSize is the archive's size for the entry (see
// [Decoder.ParseHeader]).
//
// ctx is checked before each chunk. When an error is returned, bytes
// already written to sink are incomplete and must be discarded by the
// caller; the partial Result reports how many were written.
func (d *Decoder) Decode(ctx context.Context, source io.ReadSeeker, declaredSize int64, sink io.Writer) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	env, err := newEnvelope(source)
	if err != nil {
		return nil, err
	}

	header, err := d.parseHeader(env, declaredSize)
	if err != nil {
		return nil, err
	}
	result := &Result{Header: header}

	if header.Layout == LayoutSingle {
		if err := d.decodeSingle(env, header, sink, result); err != nil {
			return result, err
		}
		return result, nil
	}

	result.Chunks, err = d.readChunkTable(env, header)
	if err != nil {
		return result, err
	}
	if err := d.decodeChunks(ctx, env, result.Chunks, sink, result); err != nil {
		return result, err
	}
	return result, nil
}

// decodeSingle reads the single payload at the cursor, decodes it and
// writes it to sink.
func (d *Decoder) decodeSingle(env *envelope, header *Header, sink io.Writer, result *Result) error {
	offset := env.position()
	if header.PayloadSize > env.remaining() {
		return &FormatError{
			Kind:     Truncated,
			Offset:   offset,
			Chunk:    noChunk,
			Expected: header.PayloadSize,
			Actual:   env.remaining(),
		}
	}

	payload, err := env.readBytes(header.PayloadSize, "reading payload")
	if err != nil {
		return err
	}

	decoded, err := decodeUnsized(payload, offset)
	if err != nil {
		return err
	}

	d.logger.Debug("decoded single payload",
		"mode", Mode(payload[0]).String(),
		"payload_size", header.PayloadSize,
		"decoded_size", len(decoded),
	)
	return writeDecoded(sink, decoded, result, noChunk, offset)
}

// decodeChunks verifies, decodes and writes every chunk in table
// order. The cursor must be at the first chunk's data.
func (d *Decoder) decodeChunks(ctx context.Context, env *envelope, chunks []ChunkDescriptor, sink io.Writer, result *Result) error {
	for index, descriptor := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		offset := env.position()
		if int64(descriptor.CompressedSize) > env.remaining() {
			return &FormatError{
				Kind:     Truncated,
				Offset:   offset,
				Chunk:    index,
				Expected: int64(descriptor.CompressedSize),
				Actual:   env.remaining(),
			}
		}

		payload, err := env.readBytes(int64(descriptor.CompressedSize), chunkOp(index))
		if err != nil {
			return err
		}

		if actual := HashChunk(payload); actual != descriptor.Hash {
			return &IntegrityError{Chunk: index, Offset: offset, Expected: descriptor.Hash, Actual: actual}
		}

		decoded, err := decodeSized(payload, descriptor.DecompressedSize, index, offset)
		if err != nil {
			return err
		}

		d.logger.Debug("decoded chunk",
			"chunk", index,
			"mode", Mode(payload[0]).String(),
			"compressed_size", descriptor.CompressedSize,
			"decompressed_size", descriptor.DecompressedSize,
		)
		if err := writeDecoded(sink, decoded, result, index, offset); err != nil {
			return err
		}
	}
	return nil
}

// writeDecoded appends decoded bytes to the sink and accounts for them
// in result. Sink failures are reported as IOError at the offset of
// the payload being written.
func writeDecoded(sink io.Writer, decoded []byte, result *Result, chunk int, offset int64) error {
	written, err := sink.Write(decoded)
	result.BytesWritten += int64(written)
	if err != nil {
		op := "writing payload"
		if chunk >= 0 {
			op = fmt.Sprintf("writing chunk %d", chunk)
		}
		return &IOError{Op: op, Offset: offset, Err: err}
	}
	return nil
}
