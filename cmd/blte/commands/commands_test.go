// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/blte/lib/binhash"
	"github.com/bureau-foundation/blte/lib/blte"
	"github.com/bureau-foundation/blte/lib/casc"
	"github.com/bureau-foundation/blte/lib/clock"
	"github.com/bureau-foundation/blte/lib/config"
	"github.com/bureau-foundation/blte/lib/report"
	"github.com/bureau-foundation/blte/lib/testutil"
)

var discardLogger = slog.New(slog.DiscardHandler)

var testEpoch = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

// testClock advances one millisecond per reading.
func testClock() *clock.FakeClock {
	c := clock.Fake(testEpoch)
	c.AutoStep(time.Millisecond)
	return c
}

// fixture is a data.000 archive with three entries: a two-chunk
// deflate/stored envelope, a single stored payload, and a chunked
// envelope whose second chunk is corrupt.
type fixture struct {
	directory string
	builder   testutil.Archive
	contents  [][]byte
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{directory: t.TempDir()}

	first := testutil.Pattern(20000, 1)
	second := testutil.Pattern(700, 2)
	third := testutil.Pattern(300, 3)
	f.contents = [][]byte{first, second, third}

	f.builder.Add(testutil.Key(1), testutil.ChunkedEnvelope(
		testutil.DeflateChunk(t, first[:12000]),
		testutil.StoredChunk(first[12000:]),
	))
	f.builder.Add(testutil.Key(2), testutil.SingleEnvelope(testutil.StoredChunk(second)))

	corrupt := testutil.ChunkedEnvelope(
		testutil.StoredChunk(third[:100]),
		testutil.StoredChunk(third[100:]),
	)
	corrupt[len(corrupt)-1] ^= 0xFF
	f.builder.Add(testutil.Key(3), corrupt)

	f.builder.WriteFile(t, f.directory, 0)
	return f
}

func (f *fixture) open(t *testing.T) *casc.Archive {
	t.Helper()
	archive, err := casc.Open(filepath.Join(f.directory, casc.ArchiveName(0)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { archive.Close() })
	return archive
}

func (f *fixture) config(t *testing.T, names ...string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Archives = f.directory
	cfg.Paths.Output = filepath.Join(t.TempDir(), "out")
	for i, name := range names {
		cfg.Entries = append(cfg.Entries, config.Entry{Name: name, Archive: 0, Offset: f.builder.Offsets[i]})
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("fixture config invalid: %v", err)
	}
	return cfg
}

func TestInspectChunkedEntry(t *testing.T) {
	f := newFixture(t)
	archive := f.open(t)
	entry, err := archive.Entry(f.builder.Offsets[0], 0)
	if err != nil {
		t.Fatalf("Entry failed: %v", err)
	}

	result, err := inspectEntry(blte.NewDecoder(blte.Options{}), archive.Path(), entry)
	if err != nil {
		t.Fatalf("inspectEntry failed: %v", err)
	}
	if result.Layout != "chunked" || len(result.Chunks) != 2 {
		t.Fatalf("result = %+v, want chunked with 2 chunks", result)
	}
	if result.Chunks[0].Mode != "deflate" || result.Chunks[1].Mode != "stored" {
		t.Errorf("modes = %s, %s", result.Chunks[0].Mode, result.Chunks[1].Mode)
	}
	if want := int64(testutil.ChunkDataOffset(2)); result.Chunks[0].Offset != want {
		t.Errorf("first chunk offset = %d, want %d", result.Chunks[0].Offset, want)
	}
	if result.Chunks[1].Offset != result.Chunks[0].Offset+int64(result.Chunks[0].CompressedSize) {
		t.Errorf("second chunk offset = %d", result.Chunks[1].Offset)
	}
	if result.DecodedSize != int64(len(f.contents[0])) {
		t.Errorf("DecodedSize = %d, want %d", result.DecodedSize, len(f.contents[0]))
	}
	if result.Key != strings.Repeat("01", 16) {
		t.Errorf("Key = %s", result.Key)
	}

	var output bytes.Buffer
	printInspect(&output, result)
	for _, want := range []string{"Layout:", "chunked", "deflate", "MD5"} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("inspect output missing %q:\n%s", want, output.String())
		}
	}
}

func TestInspectSingleEntry(t *testing.T) {
	f := newFixture(t)
	archive := f.open(t)
	entry, err := archive.Entry(f.builder.Offsets[1], 0)
	if err != nil {
		t.Fatalf("Entry failed: %v", err)
	}

	result, err := inspectEntry(blte.NewDecoder(blte.Options{}), archive.Path(), entry)
	if err != nil {
		t.Fatalf("inspectEntry failed: %v", err)
	}
	if result.Layout != "single" || result.Mode != "stored" {
		t.Errorf("result = %+v, want single stored", result)
	}
	if result.PayloadSize != int64(len(f.contents[1])+1) {
		t.Errorf("PayloadSize = %d, want %d", result.PayloadSize, len(f.contents[1])+1)
	}
	if result.Recovered {
		t.Error("exact declared size reported as recovered")
	}
}

func TestDecodeEntryToFile(t *testing.T) {
	f := newFixture(t)
	archive := f.open(t)
	entry, err := archive.Entry(f.builder.Offsets[0], 0)
	if err != nil {
		t.Fatalf("Entry failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "sub", "first.bin")
	result, err := blte.NewDecoder(blte.Options{}).ExtractFile(context.Background(), entry.Source, entry.DeclaredSize, path)
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	if result.BytesWritten != int64(len(f.contents[0])) {
		t.Errorf("BytesWritten = %d", result.BytesWritten)
	}
	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(written, f.contents[0]) {
		t.Error("decoded file does not match")
	}
}

func TestRunExtractionAll(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "maps/first.bin", "second.bin")

	run := runExtraction(context.Background(), cfg, testClock(), discardLogger)
	summary := run.Summarize()
	if summary.Succeeded != 2 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 2 succeeded", summary)
	}

	for i, entry := range run.Entries {
		path := filepath.Join(cfg.Paths.Output, filepath.FromSlash(entry.Name))
		written, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s) failed: %v", path, err)
		}
		if !bytes.Equal(written, f.contents[i]) {
			t.Errorf("%s does not match", entry.Name)
		}
		if want := binhash.FormatDigest(binhash.HashBytes(f.contents[i])); entry.Digest != want {
			t.Errorf("%s digest = %s, want %s", entry.Name, entry.Digest, want)
		}
	}
	if run.Entries[0].Layout != "chunked" || run.Entries[0].Chunks != 2 {
		t.Errorf("entry 0 = %+v", run.Entries[0])
	}
	if run.Entries[1].Layout != "single" {
		t.Errorf("entry 1 layout = %q", run.Entries[1].Layout)
	}
	if !run.StartedAt.Equal(testEpoch) {
		t.Errorf("StartedAt = %v, want %v", run.StartedAt, testEpoch)
	}
	// One reading to start the run, two per entry, one to finish.
	if want := testEpoch.Add(5 * time.Millisecond); !run.FinishedAt.Equal(want) {
		t.Errorf("FinishedAt = %v, want %v", run.FinishedAt, want)
	}
	for _, entry := range run.Entries {
		if entry.Elapsed != time.Millisecond {
			t.Errorf("%s Elapsed = %v, want 1ms", entry.Name, entry.Elapsed)
		}
	}
}

func TestRunExtractionStopsAtFirstFailure(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "first.bin", "second.bin", "third.bin")
	cfg.Entries[0], cfg.Entries[2] = cfg.Entries[2], cfg.Entries[0]

	run := runExtraction(context.Background(), cfg, testClock(), discardLogger)
	if len(run.Entries) != 1 {
		t.Fatalf("%d entries recorded, want 1 (stop after failure)", len(run.Entries))
	}
	failed := run.Entries[0]
	if failed.ErrorClass != "integrity" {
		t.Errorf("ErrorClass = %q, want integrity (error %s)", failed.ErrorClass, failed.Error)
	}
	if failed.BytesWritten != 100 {
		t.Errorf("BytesWritten = %d, want 100 from the intact first chunk", failed.BytesWritten)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.Output, "third.bin")); !os.IsNotExist(err) {
		t.Errorf("partial output not removed: %v", err)
	}
}

func TestRunExtractionKeepGoing(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "first.bin", "second.bin", "third.bin")
	cfg.Entries[0], cfg.Entries[2] = cfg.Entries[2], cfg.Entries[0]
	cfg.Entries = append(cfg.Entries, config.Entry{Name: "missing.bin", Archive: 7})
	cfg.Extract.KeepGoing = true
	cfg.Extract.KeepPartial = true

	run := runExtraction(context.Background(), cfg, testClock(), discardLogger)
	summary := run.Summarize()
	if summary.Succeeded != 2 || summary.Failed != 2 {
		t.Fatalf("summary = %+v, want 2 succeeded and 2 failed", summary)
	}
	if summary.ByClass["integrity"] != 1 || summary.ByClass["other"] != 1 {
		t.Errorf("ByClass = %v", summary.ByClass)
	}

	partial, err := os.ReadFile(filepath.Join(cfg.Paths.Output, "third.bin"))
	if err != nil {
		t.Fatalf("partial output removed despite keep_partial: %v", err)
	}
	if !bytes.Equal(partial, f.contents[2][:100]) {
		t.Error("partial output does not hold the intact first chunk")
	}
}

func TestRunExtractionRecoversWrongSize(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "first.bin", "second.bin")
	// The index overstates the single-payload entry; the next entry's
	// magic marks the real boundary.
	cfg.Entries[1].Size = f.builder.Sizes[1] + 9

	run := runExtraction(context.Background(), cfg, testClock(), discardLogger)
	if run.Summarize().Failed != 0 {
		t.Fatalf("run failed: %+v", run.Entries)
	}
	if !run.Entries[1].Recovered {
		t.Error("entry with overstated size not reported as recovered")
	}
	if run.Entries[1].BytesWritten != int64(len(f.contents[1])) {
		t.Errorf("BytesWritten = %d, want %d", run.Entries[1].BytesWritten, len(f.contents[1]))
	}
}

func TestRunExtractionCanceled(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "first.bin", "second.bin")
	cfg.Extract.KeepGoing = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := runExtraction(ctx, cfg, testClock(), discardLogger)
	if len(run.Entries) != 1 || run.Entries[0].ErrorClass != "canceled" {
		t.Errorf("entries = %+v, want one canceled entry", run.Entries)
	}
}

func TestReportOutput(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "first.bin", "second.bin")
	run := runExtraction(context.Background(), cfg, testClock(), discardLogger)

	path := filepath.Join(t.TempDir(), "run.cbor.zst")
	if err := run.Write(path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	loaded, err := report.Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	var output bytes.Buffer
	printReport(&output, reportView{Report: loaded, Summary: loaded.Summarize()})
	text := output.String()
	for _, want := range []string{"first.bin", "second.bin", "chunked", "single", "2 extracted", "0 failed"} {
		if !strings.Contains(text, want) {
			t.Errorf("report output missing %q:\n%s", want, text)
		}
	}
}

func TestPrintSummaryClasses(t *testing.T) {
	var output bytes.Buffer
	printSummary(&output, report.Summary{Succeeded: 1, Failed: 3, ByClass: map[string]int{"format": 2, "io": 1}})
	text := output.String()
	if !strings.Contains(text, "format: 2") || !strings.Contains(text, "io: 1") {
		t.Errorf("summary = %q", text)
	}
}

func TestRootVersion(t *testing.T) {
	if err := Root().Execute(context.Background(), []string{"version"}, discardLogger); err != nil {
		t.Fatalf("version failed: %v", err)
	}
}

func TestEntryParamsValidate(t *testing.T) {
	tests := []struct {
		params entryParams
		ok     bool
	}{
		{entryParams{Archive: "data.000", HeaderSize: 30}, true},
		{entryParams{HeaderSize: 30}, false},
		{entryParams{Archive: "data.000", Offset: -1, HeaderSize: 30}, false},
		{entryParams{Archive: "data.000", HeaderSize: 0}, false},
	}
	for _, test := range tests {
		if err := test.params.validate(); (err == nil) != test.ok {
			t.Errorf("validate(%+v) = %v", test.params, err)
		}
	}
}
