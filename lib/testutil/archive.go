// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// EntryHeaderSize is the size of the header in front of every entry
// in a CASC data archive.
const EntryHeaderSize = 30

// Archive accumulates entries for a CASC data archive.
type Archive struct {
	buffer bytes.Buffer

	// Offsets and Sizes record, per added entry, where its header
	// starts and the size written into that header.
	Offsets []int64
	Sizes   []int64
}

// Add appends an entry holding envelope and returns the entry's
// offset. The header's size field covers the header and the envelope.
func (a *Archive) Add(key [16]byte, envelope []byte) int64 {
	return a.AddWithSize(key, envelope, int64(EntryHeaderSize+len(envelope)))
}

// AddWithSize appends an entry whose header declares size instead of
// the true entry size, for exercising boundary recovery.
func (a *Archive) AddWithSize(key [16]byte, envelope []byte, size int64) int64 {
	offset := int64(a.buffer.Len())

	// The key is stored byte-reversed.
	for i := len(key) - 1; i >= 0; i-- {
		a.buffer.WriteByte(key[i])
	}
	var field [4]byte
	binary.LittleEndian.PutUint32(field[:], uint32(size))
	a.buffer.Write(field[:])
	a.buffer.Write([]byte{0, 0}) // flags
	a.buffer.Write(make([]byte, 8))
	a.buffer.Write(envelope)

	a.Offsets = append(a.Offsets, offset)
	a.Sizes = append(a.Sizes, size)
	return offset
}

// AddPadding appends raw bytes that belong to no entry.
func (a *Archive) AddPadding(count int) {
	a.buffer.Write(make([]byte, count))
}

// Bytes returns the archive contents.
func (a *Archive) Bytes() []byte {
	return a.buffer.Bytes()
}

// WriteFile writes the archive as data.NNN under directory and
// returns its path.
func (a *Archive) WriteFile(t testing.TB, directory string, index int) string {
	t.Helper()
	path := filepath.Join(directory, fmt.Sprintf("data.%03d", index))
	if err := os.WriteFile(path, a.buffer.Bytes(), 0o644); err != nil {
		t.Fatalf("writing archive %s: %v", path, err)
	}
	return path
}

// Key returns a 16-byte encoding key whose bytes are all seed, for
// tests that need distinct but readable keys.
func Key(seed byte) [16]byte {
	var key [16]byte
	for i := range key {
		key[i] = seed
	}
	return key
}
