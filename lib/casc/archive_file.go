// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !darwin && !linux

package casc

import (
	"fmt"
	"os"
)

// Archive is a read-only view of one data archive, read through an
// *os.File on platforms without the memory-mapped implementation.
type Archive struct {
	path string
	file *os.File
	size int64
}

// Open opens the archive at path. Empty files are rejected.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat archive %s: %w", path, err)
	}
	if info.Size() <= 0 {
		file.Close()
		return nil, fmt.Errorf("archive %s is empty", path)
	}
	return &Archive{path: path, file: file, size: info.Size()}, nil
}

func (a *Archive) ReadAt(p []byte, off int64) (int, error) {
	if a.file == nil {
		return 0, ErrClosed
	}
	return a.file.ReadAt(p, off)
}

func (a *Archive) Close() error {
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	if err != nil {
		return fmt.Errorf("closing archive %s: %w", a.path, err)
	}
	return nil
}

// Path returns the path the archive was opened from.
func (a *Archive) Path() string { return a.path }

// Size returns the archive length in bytes.
func (a *Archive) Size() int64 { return a.size }
