// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blte

import (
	"fmt"
	"io"
)

// ChunkDescriptorSize is the size of one chunk table entry: compressed
// size, decompressed size, and MD5.
const ChunkDescriptorSize = 4 + 4 + 16

// maxPreallocatedChunks bounds the initial capacity of the chunk
// table. The count comes from the envelope, so the table only grows
// past this as entries are actually read.
const maxPreallocatedChunks = 1024

// ChunkDescriptor is one chunk table entry.
type ChunkDescriptor struct {
	// CompressedSize is the length of the chunk as stored, mode tag
	// included.
	CompressedSize uint32

	// DecompressedSize is the length of the chunk after decoding.
	DecompressedSize uint32

	// Hash is the MD5 of the CompressedSize stored bytes.
	Hash Hash
}

// ReadChunkTable reads the chunk descriptors of a chunked envelope.
// source must be positioned at the chunk table, as [Decoder.ParseHeader]
// leaves it. Descriptors are only read, not validated; sizes and
// hashes are checked against the chunk data when it is decoded.
func (d *Decoder) ReadChunkTable(source io.ReadSeeker, header *Header) ([]ChunkDescriptor, error) {
	if header.Layout != LayoutChunked {
		return nil, fmt.Errorf("reading chunk table: envelope layout is %s", header.Layout)
	}
	env, err := newEnvelopeAt(source, header.Size)
	if err != nil {
		return nil, err
	}
	return d.readChunkTable(env, header)
}

func (d *Decoder) readChunkTable(env *envelope, header *Header) ([]ChunkDescriptor, error) {
	chunks := make([]ChunkDescriptor, 0, min(header.ChunkCount, maxPreallocatedChunks))
	for index := 0; index < header.ChunkCount; index++ {
		var descriptor ChunkDescriptor
		var err error

		descriptor.CompressedSize, err = env.readUint32BE(fmt.Sprintf("reading chunk %d compressed size", index))
		if err != nil {
			return nil, err
		}
		descriptor.DecompressedSize, err = env.readUint32BE(fmt.Sprintf("reading chunk %d decompressed size", index))
		if err != nil {
			return nil, err
		}
		if err := env.readFull(descriptor.Hash[:], fmt.Sprintf("reading chunk %d hash", index)); err != nil {
			return nil, err
		}

		chunks = append(chunks, descriptor)
	}
	return chunks, nil
}
