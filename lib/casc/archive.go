// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package casc

import (
	"errors"
	"fmt"
	"io"
)

// ErrClosed is returned by reads on a closed archive.
var ErrClosed = errors.New("casc: archive is closed")

// ReadEntryHeader reads and decodes the entry header at offset.
func (a *Archive) ReadEntryHeader(offset int64) (EntryHeader, error) {
	if offset < 0 || offset+EntryHeaderSize > a.Size() {
		return EntryHeader{}, fmt.Errorf("entry header at offset %d extends past end of %s (%d bytes)",
			offset, a.Path(), a.Size())
	}
	var buffer [EntryHeaderSize]byte
	if _, err := a.ReadAt(buffer[:], offset); err != nil {
		return EntryHeader{}, fmt.Errorf("reading entry header at offset %d of %s: %w", offset, a.Path(), err)
	}
	return ParseEntryHeader(buffer[:])
}

// Entry returns the entry whose header starts at offset. size is the
// entry size from the archive index; zero means take it from the
// entry header. The size is not checked against the archive length:
// a wrong size is exactly what the BLTE recovery scan exists for.
func (a *Archive) Entry(offset, size int64) (*Entry, error) {
	if size < 0 {
		return nil, fmt.Errorf("entry size %d is negative", size)
	}
	header, err := a.ReadEntryHeader(offset)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		size = int64(header.Size)
	}
	start := offset + EntryHeaderSize
	return &Entry{
		Offset:       offset,
		DeclaredSize: size,
		Header:       header,
		Source:       io.NewSectionReader(a, start, a.Size()-start),
	}, nil
}
