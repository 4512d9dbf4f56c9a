// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package casc

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
)

// EntryHeaderSize is the length of the header in front of every
// envelope in a data archive. It is also the distance a BLTE decoder
// skips past a single payload to reach the next entry's magic.
const EntryHeaderSize = 30

// KeySize is the length of an encoding key.
const KeySize = 16

// Key is an encoding key in its canonical byte order.
type Key [KeySize]byte

// String returns the lowercase hex form of the key.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// EntryHeader is the decoded 30-byte entry header.
type EntryHeader struct {
	Key Key

	// Size covers the whole entry, this header included. It is what
	// the archive index records as the entry size.
	Size uint32

	Flags     uint16
	ChecksumA uint32
	ChecksumB uint32
}

// EnvelopeSize returns the number of bytes the header claims for the
// envelope that follows it. Zero when Size is smaller than the header.
func (h EntryHeader) EnvelopeSize() int64 {
	if h.Size < EntryHeaderSize {
		return 0
	}
	return int64(h.Size) - EntryHeaderSize
}

// ParseEntryHeader decodes an entry header from the first
// EntryHeaderSize bytes of data.
func ParseEntryHeader(data []byte) (EntryHeader, error) {
	var header EntryHeader
	if len(data) < EntryHeaderSize {
		return header, fmt.Errorf("entry header is %d bytes, want %d", len(data), EntryHeaderSize)
	}
	for i := range KeySize {
		header.Key[i] = data[KeySize-1-i]
	}
	header.Size = binary.LittleEndian.Uint32(data[16:20])
	header.Flags = binary.LittleEndian.Uint16(data[20:22])
	header.ChecksumA = binary.LittleEndian.Uint32(data[22:26])
	header.ChecksumB = binary.LittleEndian.Uint32(data[26:30])
	return header, nil
}

// Entry locates one envelope inside an archive.
type Entry struct {
	// Offset is where the entry header starts in the archive.
	Offset int64

	// DeclaredSize is the entry size handed to the BLTE decoder:
	// either the size the caller supplied or the header's Size.
	DeclaredSize int64

	Header EntryHeader

	// Source starts at the envelope's magic and runs to the end of
	// the archive.
	Source *io.SectionReader
}

// ArchiveName returns the file name of the data archive with the
// given index, e.g. "data.007".
func ArchiveName(index int) string {
	return fmt.Sprintf("data.%03d", index)
}
