// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/zlib"
)

// Envelope layout, as written by the builders.
const (
	// ChunkedHeaderSize is the size of a chunked envelope header
	// before the chunk table.
	ChunkedHeaderSize = 12

	// ChunkDescriptorSize is the size of one chunk table entry.
	ChunkDescriptorSize = 24

	// SingleHeaderSize is the size of a single-payload envelope
	// header.
	SingleHeaderSize = 8
)

// Chunk is one encoded payload: the mode tag and everything after it,
// exactly as stored in an envelope.
type Chunk struct {
	Encoded []byte

	// DecodedSize is written to the chunk table as the decompressed
	// size.
	DecodedSize int
}

// StoredChunk encodes data as a stored ('N') payload.
func StoredChunk(data []byte) Chunk {
	encoded := make([]byte, 0, len(data)+1)
	encoded = append(encoded, 'N')
	encoded = append(encoded, data...)
	return Chunk{Encoded: encoded, DecodedSize: len(data)}
}

// DeflateChunk encodes data as a deflate ('Z') payload: the tag
// followed by a complete zlib stream, whose 2-byte header the decoder
// skips.
func DeflateChunk(t testing.TB, data []byte) Chunk {
	t.Helper()

	var buffer bytes.Buffer
	buffer.WriteByte('Z')
	writer, err := zlib.NewWriterLevel(&buffer, zlib.BestCompression)
	if err != nil {
		t.Fatalf("creating zlib writer: %v", err)
	}
	if _, err := writer.Write(data); err != nil {
		t.Fatalf("compressing chunk: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing zlib writer: %v", err)
	}
	return Chunk{Encoded: buffer.Bytes(), DecodedSize: len(data)}
}

// RawChunk wraps arbitrary encoded bytes, for payloads with unknown
// mode tags or deliberately wrong decoded sizes.
func RawChunk(encoded []byte, decodedSize int) Chunk {
	return Chunk{Encoded: bytes.Clone(encoded), DecodedSize: decodedSize}
}

// ChunkDataOffset returns the envelope offset of the first chunk's
// data in a chunked envelope with count chunks.
func ChunkDataOffset(count int) int {
	return ChunkedHeaderSize + count*ChunkDescriptorSize
}

// ChunkedEnvelope builds a chunked envelope holding chunks in order.
// Each descriptor carries the MD5 of the chunk's encoded bytes.
func ChunkedEnvelope(chunks ...Chunk) []byte {
	var buffer bytes.Buffer
	buffer.WriteString("BLTE")
	writeUint32BE(&buffer, uint32(ChunkDataOffset(len(chunks))))
	buffer.WriteByte(0x0F)
	count := len(chunks)
	buffer.Write([]byte{byte(count >> 16), byte(count >> 8), byte(count)})

	for _, chunk := range chunks {
		writeUint32BE(&buffer, uint32(len(chunk.Encoded)))
		writeUint32BE(&buffer, uint32(chunk.DecodedSize))
		hash := md5.Sum(chunk.Encoded)
		buffer.Write(hash[:])
	}
	for _, chunk := range chunks {
		buffer.Write(chunk.Encoded)
	}
	return buffer.Bytes()
}

// SingleEnvelope builds a single-payload envelope around chunk.
func SingleEnvelope(chunk Chunk) []byte {
	var buffer bytes.Buffer
	buffer.WriteString("BLTE")
	writeUint32BE(&buffer, 0)
	buffer.Write(chunk.Encoded)
	return buffer.Bytes()
}

// Pattern returns size bytes of deterministic, mildly compressible
// data. seed varies the content between chunks.
func Pattern(size int, seed byte) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i%251) ^ seed
	}
	return data
}

func writeUint32BE(buffer *bytes.Buffer, value uint32) {
	var encoded [4]byte
	binary.BigEndian.PutUint32(encoded[:], value)
	buffer.Write(encoded[:])
}
