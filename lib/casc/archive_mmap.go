// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin || linux

package casc

import (
	"fmt"
	"io"
	"runtime/debug"

	"golang.org/x/sys/unix"
)

// Archive is a read-only view of one data archive. Reads are served
// from a shared memory map, so concurrent readers cost no system
// calls once the pages are resident.
type Archive struct {
	path string
	fd   int
	data []byte
	size int64
}

// Open maps the archive at path read-only. Empty files are rejected:
// they cannot be mapped and hold no entries.
func Open(path string) (*Archive, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("stat archive %s: %w", path, err)
	}
	if stat.Size <= 0 {
		unix.Close(fd)
		return nil, fmt.Errorf("archive %s is empty", path)
	}

	data, err := unix.Mmap(fd, 0, int(stat.Size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("memory-mapping archive %s: %w", path, err)
	}

	return &Archive{
		path: path,
		fd:   fd,
		data: data,
		size: stat.Size,
	}, nil
}

// ReadAt copies archive bytes starting at off into p. A page fault
// from the backing storage (a truncated file or a failing disk)
// becomes an error instead of a SIGBUS.
func (a *Archive) ReadAt(p []byte, off int64) (readCount int, err error) {
	if a.data == nil {
		return 0, ErrClosed
	}
	if off < 0 || off >= a.size {
		return 0, io.EOF
	}

	old := debug.SetPanicOnFault(true)
	defer func() {
		debug.SetPanicOnFault(old)
		if r := recover(); r != nil {
			err = fmt.Errorf("page fault reading %s at offset %d: %v", a.path, off, r)
		}
	}()

	readCount = copy(p, a.data[off:])
	if readCount < len(p) {
		return readCount, io.EOF
	}
	return readCount, nil
}

// Close unmaps the archive and closes its descriptor. Readers
// obtained from Entry must not be used afterwards.
func (a *Archive) Close() error {
	if a.data == nil {
		return nil
	}
	var firstErr error
	if err := unix.Munmap(a.data); err != nil {
		firstErr = fmt.Errorf("unmapping archive %s: %w", a.path, err)
	}
	if err := unix.Close(a.fd); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing archive %s: %w", a.path, err)
	}
	a.data = nil
	a.fd = -1
	return firstErr
}

// Path returns the path the archive was opened from.
func (a *Archive) Path() string { return a.path }

// Size returns the archive length in bytes.
func (a *Archive) Size() int64 { return a.size }
