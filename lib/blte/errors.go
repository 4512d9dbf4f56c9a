// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blte

import (
	"context"
	"errors"
	"fmt"
)

// FormatErrorKind identifies which structural check a [FormatError]
// failed.
type FormatErrorKind int

const (
	// BadMagic: the envelope does not start with "BLTE".
	BadMagic FormatErrorKind = iota + 1

	// UnexpectedFlagByte: the byte after the frame header size of a
	// chunked envelope is not 0x0F.
	UnexpectedFlagByte

	// InvalidChunkCount: the 24-bit chunk count is negative when read
	// as a signed value, or zero in a chunked envelope.
	InvalidChunkCount

	// InvalidPayloadSize: the single payload would be shorter than
	// its mode tag.
	InvalidPayloadSize

	// UnknownChunkMode: the payload's mode tag is not one this
	// package decodes.
	UnknownChunkMode

	// SizeMismatch: decoded output length differs from the
	// descriptor's decompressed size.
	SizeMismatch

	// EmptyPayload: a payload has no bytes, so not even a mode tag.
	EmptyPayload

	// Truncated: a payload extends past the end of the source.
	Truncated

	// CorruptPayload: the deflate stream could not be decoded.
	CorruptPayload
)

// String returns the kind's name as used in error messages.
func (kind FormatErrorKind) String() string {
	switch kind {
	case BadMagic:
		return "bad magic"
	case UnexpectedFlagByte:
		return "unexpected flag byte"
	case InvalidChunkCount:
		return "invalid chunk count"
	case InvalidPayloadSize:
		return "invalid payload size"
	case UnknownChunkMode:
		return "unknown chunk mode"
	case SizeMismatch:
		return "size mismatch"
	case EmptyPayload:
		return "empty payload"
	case Truncated:
		return "truncated"
	case CorruptPayload:
		return "corrupt payload"
	default:
		return fmt.Sprintf("kind(%d)", int(kind))
	}
}

// noChunk is the Chunk value of errors that are not tied to a chunk
// (header failures and single-payload envelopes).
const noChunk = -1

// FormatError reports malformed envelope structure. Callers can use
// errors.As to inspect it:
//
//	var formatErr *blte.FormatError
//	if errors.As(err, &formatErr) && formatErr.Kind == blte.SizeMismatch {
//	    ...
//	}
type FormatError struct {
	Kind FormatErrorKind

	// Offset is the byte offset, relative to the start of the
	// envelope, of the field or payload that failed the check.
	Offset int64

	// Chunk is the zero-based chunk index, or -1 when the failure is
	// not tied to a chunk.
	Chunk int

	// Expected and Actual hold the compared values for size checks
	// and the chunk count for InvalidChunkCount. Zero when unused.
	Expected int64
	Actual   int64

	// Value holds the offending raw bytes (magic, flag byte, mode
	// tag) when there are any.
	Value []byte

	// Err is the underlying cause, currently only set for
	// CorruptPayload.
	Err error
}

func (e *FormatError) Error() string {
	location := fmt.Sprintf("offset %d", e.Offset)
	if e.Chunk >= 0 {
		location = fmt.Sprintf("chunk %d at offset %d", e.Chunk, e.Offset)
	}

	switch e.Kind {
	case BadMagic:
		return fmt.Sprintf("blte: %s at %s: got %q, want %q", e.Kind, location, e.Value, Magic)
	case UnexpectedFlagByte:
		return fmt.Sprintf("blte: %s at %s: got 0x%02X, want 0x%02X", e.Kind, location, e.Value, chunkedFlag)
	case InvalidChunkCount:
		return fmt.Sprintf("blte: %s %d at %s", e.Kind, e.Actual, location)
	case UnknownChunkMode:
		mode := Mode(0)
		if len(e.Value) > 0 {
			mode = Mode(e.Value[0])
		}
		return fmt.Sprintf("blte: %s %s at %s", e.Kind, mode, location)
	case SizeMismatch, InvalidPayloadSize, Truncated:
		return fmt.Sprintf("blte: %s at %s: expected %d bytes, got %d", e.Kind, location, e.Expected, e.Actual)
	}
	if e.Err != nil {
		return fmt.Sprintf("blte: %s at %s: %v", e.Kind, location, e.Err)
	}
	return fmt.Sprintf("blte: %s at %s", e.Kind, location)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IntegrityError reports a chunk whose MD5 does not match the hash in
// its descriptor. The chunk data is corrupt or was tampered with.
type IntegrityError struct {
	Chunk    int
	Offset   int64
	Expected Hash
	Actual   Hash
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("blte: chunk %d at offset %d hash mismatch: expected %s, got %s",
		e.Chunk, e.Offset, FormatHash(e.Expected), FormatHash(e.Actual))
}

// IOError reports a failed read or seek on the envelope source.
type IOError struct {
	// Op describes what was being read, e.g. "reading chunk 3".
	Op     string
	Offset int64
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("blte: %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsFormatError reports whether err is a *FormatError of the given
// kind. A zero kind matches any FormatError.
func IsFormatError(err error, kind FormatErrorKind) bool {
	var formatErr *FormatError
	if errors.As(err, &formatErr) {
		return kind == 0 || formatErr.Kind == kind
	}
	return false
}

// IsIntegrityError reports whether err is an *IntegrityError.
func IsIntegrityError(err error) bool {
	var integrityErr *IntegrityError
	return errors.As(err, &integrityErr)
}

// IsIOError reports whether err is an *IOError.
func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}

// Classify returns a short class name for err: "format", "integrity",
// "io", "canceled", or "" when err is nil or not a decode error.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case IsFormatError(err, 0):
		return "format"
	case IsIntegrityError(err):
		return "integrity"
	case IsIOError(err):
		return "io"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return ""
	}
}
