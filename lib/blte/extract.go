// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blte

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// extractBufferSize is the write buffer between the decoder and the
// output file. Chunks are typically 64KB or more once decoded.
const extractBufferSize = 256 * 1024

// OutputPath returns the file path Extract writes name to under root.
// name must be a local, relative path: absolute paths and paths that
// climb out of root are rejected.
func OutputPath(root, name string) (string, error) {
	slashed := filepath.FromSlash(name)
	if name == "" || !filepath.IsLocal(slashed) {
		return "", fmt.Errorf("output name %q is not a local relative path", name)
	}
	return filepath.Join(root, slashed), nil
}

// Extract decodes the envelope at the current position of source into
// the file root/name. name must pass [OutputPath]; otherwise Extract
// behaves as [Decoder.ExtractFile].
func (d *Decoder) Extract(ctx context.Context, source io.ReadSeeker, declaredSize int64, root, name string) (*Result, error) {
	path, err := OutputPath(root, name)
	if err != nil {
		return nil, err
	}
	return d.ExtractFile(ctx, source, declaredSize, path)
}

// ExtractFile decodes the envelope at the current position of source
// into the file at path, creating any missing parent directories.
// Unlike Extract, path is used as given. The file is created or
// truncated, and is flushed and closed before ExtractFile returns,
// whether or not decoding succeeded.
//
// On failure the partially written file is left in place; callers
// decide whether to remove it.
func (d *Decoder) ExtractFile(ctx context.Context, source io.ReadSeeker, declaredSize int64, path string) (result *Result, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating directory for %s: %w", path, err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	writer := bufio.NewWriterSize(file, extractBufferSize)
	defer func() {
		flushErr := writer.Flush()
		closeErr := file.Close()
		if err == nil {
			if finishErr := errors.Join(flushErr, closeErr); finishErr != nil {
				err = fmt.Errorf("finishing %s: %w", path, finishErr)
			}
		}
	}()

	result, err = d.Decode(ctx, source, declaredSize, writer)
	if err != nil {
		return result, err
	}

	d.logger.Debug("extracted entry",
		"path", path,
		"layout", result.Header.Layout.String(),
		"bytes", result.BytesWritten,
	)
	return result, nil
}
