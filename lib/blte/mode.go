// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blte

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// Mode is the one-byte tag at the start of every payload that selects
// how the rest of the payload is decoded. The values are format
// constants.
type Mode byte

const (
	// ModeStored payloads hold the data verbatim after the tag.
	ModeStored Mode = 'N'

	// ModeDeflate payloads hold a zlib stream after the tag. The two
	// zlib header bytes are skipped and the remainder is inflated as
	// raw deflate; the trailing Adler-32 is never read.
	ModeDeflate Mode = 'Z'

	// ModeEncrypted payloads are encrypted with a keyed stream
	// cipher. Not decoded.
	ModeEncrypted Mode = 'E'

	// ModeFrame payloads nest another BLTE frame. Not decoded.
	ModeFrame Mode = 'F'
)

// maxDeflateRatio bounds how much a deflate stream can expand: a
// stream of n bytes never inflates to more than about 1032n. A chunk
// descriptor claiming more than this is rejected before its output
// buffer is allocated.
const maxDeflateRatio = 1032

// deflateSkip is the number of bytes before the raw deflate stream in
// a deflate payload: the mode tag and the two zlib header bytes.
const deflateSkip = 3

// String returns the mode's name, or "unknown(0xNN)" for tags outside
// the enumeration.
func (mode Mode) String() string {
	switch mode {
	case ModeStored:
		return "stored"
	case ModeDeflate:
		return "deflate"
	case ModeEncrypted:
		return "encrypted"
	case ModeFrame:
		return "frame"
	default:
		return fmt.Sprintf("unknown(0x%02X)", byte(mode))
	}
}

// Supported reports whether payloads with this mode can be decoded.
func (mode Mode) Supported() bool {
	return mode == ModeStored || mode == ModeDeflate
}

// decodeSized decodes a chunk payload whose decoded length is known
// from its descriptor. The returned slice has exactly expected bytes.
// For stored payloads it aliases payload.
func decodeSized(payload []byte, expected uint32, chunk int, offset int64) ([]byte, error) {
	mode, err := payloadMode(payload, chunk, offset)
	if err != nil {
		return nil, err
	}

	if mode == ModeDeflate {
		return inflateSized(payload, expected, chunk, offset)
	}
	if len(payload)-1 != int(expected) {
		return nil, &FormatError{
			Kind:     SizeMismatch,
			Offset:   offset,
			Chunk:    chunk,
			Expected: int64(expected),
			Actual:   int64(len(payload) - 1),
		}
	}
	return payload[1:], nil
}

// decodeUnsized decodes a single payload, whose decoded length is not
// recorded anywhere in the envelope.
func decodeUnsized(payload []byte, offset int64) ([]byte, error) {
	mode, err := payloadMode(payload, noChunk, offset)
	if err != nil {
		return nil, err
	}

	if mode == ModeDeflate {
		return inflateAll(payload, offset)
	}
	return payload[1:], nil
}

// payloadMode returns the mode tag of payload, rejecting empty
// payloads and modes this package does not decode.
func payloadMode(payload []byte, chunk int, offset int64) (Mode, error) {
	if len(payload) == 0 {
		return 0, &FormatError{Kind: EmptyPayload, Offset: offset, Chunk: chunk}
	}
	mode := Mode(payload[0])
	if !mode.Supported() {
		return 0, &FormatError{Kind: UnknownChunkMode, Offset: offset, Chunk: chunk, Value: []byte{byte(mode)}}
	}
	return mode, nil
}

// deflateStream returns an inflater over the raw deflate stream of a
// deflate payload, or a FormatError if the payload is too short to
// contain one.
func deflateStream(payload []byte, chunk int, offset int64) (io.ReadCloser, error) {
	if len(payload) < deflateSkip {
		return nil, &FormatError{
			Kind:     Truncated,
			Offset:   offset,
			Chunk:    chunk,
			Expected: deflateSkip,
			Actual:   int64(len(payload)),
		}
	}
	return flate.NewReader(bytes.NewReader(payload[deflateSkip:])), nil
}

// inflateSized inflates into a buffer of exactly expected bytes. A
// size the payload could not possibly inflate to is a SizeMismatch,
// reported with the largest reachable size as Actual. The
// inflater may return fewer bytes than asked for on any call, so it
// is read until the buffer is full or the stream ends.
func inflateSized(payload []byte, expected uint32, chunk int, offset int64) ([]byte, error) {
	if limit := maxDeflateRatio * int64(len(payload)); int64(expected) > limit {
		return nil, &FormatError{
			Kind:     SizeMismatch,
			Offset:   offset,
			Chunk:    chunk,
			Expected: int64(expected),
			Actual:   limit,
		}
	}

	inflater, err := deflateStream(payload, chunk, offset)
	if err != nil {
		return nil, err
	}
	defer inflater.Close()

	output := make([]byte, expected)
	filled, err := io.ReadFull(inflater, output)
	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		return nil, &FormatError{
			Kind:     SizeMismatch,
			Offset:   offset,
			Chunk:    chunk,
			Expected: int64(expected),
			Actual:   int64(filled),
		}
	case err != nil:
		return nil, &FormatError{Kind: CorruptPayload, Offset: offset, Chunk: chunk, Err: err}
	}

	// The declared size must also be the end of the stream.
	var extra [1]byte
	count, err := inflater.Read(extra[:])
	if count > 0 {
		return nil, &FormatError{
			Kind:     SizeMismatch,
			Offset:   offset,
			Chunk:    chunk,
			Expected: int64(expected),
			Actual:   int64(expected) + int64(count),
		}
	}
	if err != nil && err != io.EOF {
		return nil, &FormatError{Kind: CorruptPayload, Offset: offset, Chunk: chunk, Err: err}
	}
	return output, nil
}

// inflateAll inflates the whole stream, growing the output as it goes.
func inflateAll(payload []byte, offset int64) ([]byte, error) {
	inflater, err := deflateStream(payload, noChunk, offset)
	if err != nil {
		return nil, err
	}
	defer inflater.Close()

	var output bytes.Buffer
	if _, err := output.ReadFrom(inflater); err != nil {
		return nil, &FormatError{Kind: CorruptPayload, Offset: offset, Chunk: noChunk, Err: err}
	}
	return output.Bytes(), nil
}
