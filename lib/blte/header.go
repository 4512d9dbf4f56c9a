// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blte

import (
	"bufio"
	"bytes"
	"io"
)

// Magic is the 4-byte signature at the start of every envelope.
const Magic = "BLTE"

// Envelope layout constants.
const (
	// magicWord is Magic read as a big-endian uint32.
	magicWord = uint32('B')<<24 | uint32('L')<<16 | uint32('T')<<8 | uint32('E')

	// singleHeaderSize covers the magic and the frame header size
	// field, which is all a single-payload envelope has.
	singleHeaderSize = 8

	// chunkedFlag is the byte that follows the frame header size in
	// a chunked envelope.
	chunkedFlag = 0x0F

	// chunkCountOffset is the position of the 24-bit chunk count.
	chunkCountOffset = 9

	// chunkedHeaderSize covers magic, frame header size, flag byte
	// and chunk count. The chunk table starts here.
	chunkedHeaderSize = 12

	// chunkCountSignBit is the top bit of the 24-bit chunk count. A
	// count with it set is negative when read as a signed value.
	chunkCountSignBit = 0x800000

	// scanBufferSize is the read size used while scanning for the
	// next envelope's magic.
	scanBufferSize = 64 * 1024
)

// Layout distinguishes the two envelope variants.
type Layout int

const (
	// LayoutSingle envelopes hold one payload with no chunk table.
	LayoutSingle Layout = iota + 1

	// LayoutChunked envelopes hold a chunk table and one payload per
	// chunk.
	LayoutChunked
)

func (layout Layout) String() string {
	switch layout {
	case LayoutSingle:
		return "single"
	case LayoutChunked:
		return "chunked"
	default:
		return "unknown"
	}
}

// Header is the parsed envelope header.
type Header struct {
	Layout Layout

	// FrameHeaderSize is the raw value of the field after the magic.
	// Zero for single-payload envelopes.
	FrameHeaderSize uint32

	// PayloadSize is the length of the single payload, mode tag
	// included. Zero for chunked envelopes.
	PayloadSize int64

	// Recovered is true when PayloadSize was located by scanning for
	// the following envelope rather than taken from the declared
	// size.
	Recovered bool

	// ChunkCount is the number of chunks. Zero for single-payload
	// envelopes.
	ChunkCount int

	// Size is the number of header bytes consumed: where the single
	// payload or the chunk table begins.
	Size int64
}

// ParseHeader reads the envelope header from source, which must be
// positioned at the magic. declaredSize is the size the archive
// records for the entry; it only matters for single-payload
// envelopes, whose payload length is declaredSize minus the 8 header
// bytes and the decoder's trailer size.
//
// On success the source is positioned just after the header: at the
// single payload, or at the chunk table.
func (d *Decoder) ParseHeader(source io.ReadSeeker, declaredSize int64) (*Header, error) {
	env, err := newEnvelope(source)
	if err != nil {
		return nil, err
	}
	return d.parseHeader(env, declaredSize)
}

func (d *Decoder) parseHeader(env *envelope, declaredSize int64) (*Header, error) {
	var magic [4]byte
	if err := env.readFull(magic[:], "reading magic"); err != nil {
		return nil, err
	}
	if string(magic[:]) != Magic {
		return nil, &FormatError{Kind: BadMagic, Offset: 0, Chunk: noChunk, Value: bytes.Clone(magic[:])}
	}

	frameHeaderSize, err := env.readUint32BE("reading frame header size")
	if err != nil {
		return nil, err
	}

	if frameHeaderSize == 0 {
		payloadSize, recovered, err := d.locatePayloadBoundary(env, declaredSize)
		if err != nil {
			return nil, err
		}
		if payloadSize < 1 {
			return nil, &FormatError{
				Kind:     InvalidPayloadSize,
				Offset:   singleHeaderSize,
				Chunk:    noChunk,
				Expected: 1,
				Actual:   payloadSize,
			}
		}
		d.logger.Debug("parsed single-payload header",
			"declared_size", declaredSize,
			"payload_size", payloadSize,
			"recovered", recovered,
		)
		return &Header{
			Layout:      LayoutSingle,
			PayloadSize: payloadSize,
			Recovered:   recovered,
			Size:        singleHeaderSize,
		}, nil
	}

	flag, err := env.readByte("reading chunked flag byte")
	if err != nil {
		return nil, err
	}
	if flag != chunkedFlag {
		return nil, &FormatError{Kind: UnexpectedFlagByte, Offset: singleHeaderSize, Chunk: noChunk, Value: []byte{flag}}
	}

	rawCount, err := env.readUint24BE("reading chunk count")
	if err != nil {
		return nil, err
	}
	if rawCount&chunkCountSignBit != 0 || rawCount == 0 {
		// Sign-extend so the reported value is the negative count.
		count := int64(int32(rawCount<<8) >> 8)
		return nil, &FormatError{Kind: InvalidChunkCount, Offset: chunkCountOffset, Chunk: noChunk, Actual: count}
	}

	d.logger.Debug("parsed chunked header",
		"frame_header_size", frameHeaderSize,
		"chunk_count", rawCount,
	)
	return &Header{
		Layout:          LayoutChunked,
		FrameHeaderSize: frameHeaderSize,
		ChunkCount:      int(rawCount),
		Size:            chunkedHeaderSize,
	}, nil
}

// locatePayloadBoundary determines the length of a single payload.
// The first estimate comes from the declared size. Entries are packed
// back to back, so a correct estimate puts the next envelope's magic
// exactly trailerSize bytes past the payload end; if that is where
// the magic is, the estimate stands. If it is not, the true boundary
// is found by scanning forward for the next magic. When the source
// ends before a following magic could fit, or the scan finds none,
// the estimate is kept as is.
//
// The cursor is left at the start of the payload.
func (d *Decoder) locatePayloadBoundary(env *envelope, declaredSize int64) (int64, bool, error) {
	payloadStart := env.position()
	estimate := declaredSize - payloadStart - d.trailerSize

	length := env.end - env.origin
	probe := payloadStart + estimate + d.trailerSize
	if probe < payloadStart || probe+int64(len(Magic)) > length {
		return estimate, false, nil
	}

	if estimate >= 1 {
		if err := env.seek(probe); err != nil {
			return 0, false, err
		}
		word, err := env.readUint32BE("probing for next envelope magic")
		if err != nil {
			return 0, false, err
		}
		if err := env.seek(payloadStart); err != nil {
			return 0, false, err
		}
		if word == magicWord {
			return estimate, false, nil
		}
	}

	// Only magic positions leaving at least the mode tag are
	// candidates.
	found, ok, err := d.scanForMagic(env, payloadStart+d.trailerSize+1)
	if err != nil {
		return 0, false, err
	}
	if err := env.seek(payloadStart); err != nil {
		return 0, false, err
	}
	if !ok {
		d.logger.Warn("no following envelope found; keeping declared payload size",
			"declared_size", declaredSize,
			"payload_size", estimate,
		)
		return estimate, false, nil
	}

	corrected := found - payloadStart - d.trailerSize
	d.logger.Debug("recovered single payload boundary",
		"declared_size", declaredSize,
		"estimate", estimate,
		"payload_size", corrected,
		"next_magic", found,
	)
	return corrected, true, nil
}

// scanForMagic slides a 4-byte window forward one byte at a time from
// position from and returns the position of the first window equal to
// the magic. The cursor is left undefined; callers must seek.
func (d *Decoder) scanForMagic(env *envelope, from int64) (int64, bool, error) {
	if from+int64(len(Magic)) > env.end-env.origin {
		return 0, false, nil
	}
	if err := env.seek(from); err != nil {
		return 0, false, err
	}

	reader := bufio.NewReaderSize(env.source, scanBufferSize)
	var window uint32
	var consumed int64
	for {
		next, err := reader.ReadByte()
		if err == io.EOF {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, &IOError{Op: "scanning for next envelope magic", Offset: from + consumed, Err: err}
		}
		window = window<<8 | uint32(next)
		consumed++
		if consumed >= int64(len(Magic)) && window == magicWord {
			return from + consumed - int64(len(Magic)), true, nil
		}
	}
}
