// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package report records the outcome of an extraction run: one entry
// per requested file with its envelope shape, the bytes written, a
// BLAKE3 digest of the output and the error class when it failed.
//
// Reports are stored as deterministic CBOR through lib/codec, so a
// ".zst" path suffix compresses them.
package report

import (
	"fmt"
	"time"

	"github.com/bureau-foundation/blte/lib/codec"
	"github.com/bureau-foundation/blte/lib/version"
)

// Report is the record of one extraction run.
type Report struct {
	// Version identifies the decoder build that produced the report.
	Version    string    `json:"version"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Entries    []Entry   `json:"entries"`
}

// Entry is the outcome for one requested file.
type Entry struct {
	Name    string `json:"name"`
	Archive int    `json:"archive"`
	Offset  int64  `json:"offset"`

	// DeclaredSize is the entry size handed to the decoder.
	DeclaredSize int64 `json:"declared_size"`

	// Layout is "single" or "chunked"; empty when the header could
	// not be parsed.
	Layout    string `json:"layout,omitempty"`
	Chunks    int    `json:"chunks,omitempty"`
	Recovered bool   `json:"recovered,omitempty"`

	BytesWritten int64 `json:"bytes_written"`

	// Digest is the hex BLAKE3 digest of the output file. Empty for
	// failed entries.
	Digest string `json:"digest,omitempty"`

	Error string `json:"error,omitempty"`

	// ErrorClass is "format", "integrity", "io", "canceled", or
	// empty for errors outside the decoder (opening the archive,
	// creating the output file).
	ErrorClass string `json:"error_class,omitempty"`

	// Elapsed is the wall time spent on the entry, in nanoseconds
	// on the wire.
	Elapsed time.Duration `json:"elapsed"`
}

// Failed reports whether the entry did not extract.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Summary totals a report.
type Summary struct {
	Succeeded int   `json:"succeeded"`
	Failed    int   `json:"failed"`
	Recovered int   `json:"recovered"`
	Bytes     int64 `json:"bytes"`

	// ByClass counts failures per error class. Failures without a
	// class are counted under "other".
	ByClass map[string]int `json:"by_class,omitempty"`
}

// New starts a report stamped with the current build and time.
func New(now time.Time) *Report {
	return &Report{
		Version:   version.Short(),
		StartedAt: now.UTC(),
	}
}

// Add appends an entry.
func (r *Report) Add(entry Entry) {
	r.Entries = append(r.Entries, entry)
}

// Finish stamps the end time.
func (r *Report) Finish(now time.Time) {
	r.FinishedAt = now.UTC()
}

// Summarize totals the entries.
func (r *Report) Summarize() Summary {
	var summary Summary
	for _, entry := range r.Entries {
		if entry.Failed() {
			summary.Failed++
			class := entry.ErrorClass
			if class == "" {
				class = "other"
			}
			if summary.ByClass == nil {
				summary.ByClass = make(map[string]int)
			}
			summary.ByClass[class]++
			continue
		}
		summary.Succeeded++
		summary.Bytes += entry.BytesWritten
		if entry.Recovered {
			summary.Recovered++
		}
	}
	return summary
}

// Write stores the report at path.
func (r *Report) Write(path string) error {
	if err := codec.WriteFile(path, r); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// Read loads a report written by Write.
func Read(path string) (*Report, error) {
	var loaded Report
	if err := codec.ReadFile(path, &loaded); err != nil {
		return nil, fmt.Errorf("reading report %s: %w", path, err)
	}
	return &loaded, nil
}
