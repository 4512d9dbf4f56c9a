// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/blte/lib/version"
)

func sampleReport() *Report {
	started := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	r := New(started)
	r.Add(Entry{Name: "a.bin", Archive: 0, Offset: 0, DeclaredSize: 120, Layout: "chunked", Chunks: 3, BytesWritten: 4096, Digest: "aa"})
	r.Add(Entry{Name: "b.bin", Archive: 0, Offset: 120, DeclaredSize: 80, Layout: "single", Recovered: true, BytesWritten: 50, Digest: "bb"})
	r.Add(Entry{Name: "c.bin", Archive: 1, Offset: 0, DeclaredSize: 60, Layout: "chunked", Chunks: 1, Error: "blte: chunk 0 hash mismatch", ErrorClass: "integrity"})
	r.Add(Entry{Name: "d.bin", Archive: 9, Error: "opening archive: no such file"})
	r.Finish(started.Add(2 * time.Second))
	return r
}

func TestNewStampsVersion(t *testing.T) {
	local := time.FixedZone("test", 3600)
	r := New(time.Date(2026, 1, 1, 1, 0, 0, 0, local))
	if r.Version != version.Short() {
		t.Errorf("Version = %q, want %q", r.Version, version.Short())
	}
	if r.StartedAt.Location() != time.UTC || r.StartedAt.Hour() != 0 {
		t.Errorf("StartedAt = %v, want UTC midnight", r.StartedAt)
	}
}

func TestSummarize(t *testing.T) {
	summary := sampleReport().Summarize()

	if summary.Succeeded != 2 || summary.Failed != 2 {
		t.Errorf("succeeded/failed = %d/%d, want 2/2", summary.Succeeded, summary.Failed)
	}
	if summary.Recovered != 1 {
		t.Errorf("Recovered = %d, want 1", summary.Recovered)
	}
	if summary.Bytes != 4146 {
		t.Errorf("Bytes = %d, want 4146", summary.Bytes)
	}
	if summary.ByClass["integrity"] != 1 || summary.ByClass["other"] != 1 {
		t.Errorf("ByClass = %v", summary.ByClass)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := New(time.Unix(0, 0)).Summarize()
	if summary.Succeeded != 0 || summary.Failed != 0 || summary.ByClass != nil {
		t.Errorf("empty summary = %+v", summary)
	}
}

func TestWriteRead(t *testing.T) {
	for _, name := range []string{"report.cbor", "report.cbor.zst"} {
		t.Run(name, func(t *testing.T) {
			original := sampleReport()
			path := filepath.Join(t.TempDir(), name)
			if err := original.Write(path); err != nil {
				t.Fatalf("Write failed: %v", err)
			}

			loaded, err := Read(path)
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if loaded.Version != original.Version {
				t.Errorf("Version = %q, want %q", loaded.Version, original.Version)
			}
			if !loaded.StartedAt.Equal(original.StartedAt) || !loaded.FinishedAt.Equal(original.FinishedAt) {
				t.Errorf("times = %v..%v, want %v..%v", loaded.StartedAt, loaded.FinishedAt, original.StartedAt, original.FinishedAt)
			}
			if len(loaded.Entries) != len(original.Entries) {
				t.Fatalf("%d entries, want %d", len(loaded.Entries), len(original.Entries))
			}
			for i := range original.Entries {
				if loaded.Entries[i] != original.Entries[i] {
					t.Errorf("entry %d = %+v, want %+v", i, loaded.Entries[i], original.Entries[i])
				}
			}
		})
	}
}

func TestReadMissing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.cbor")); err == nil {
		t.Fatal("Read succeeded for a missing file")
	}
}
