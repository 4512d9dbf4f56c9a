// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil builds BLTE envelopes and CASC data archives for
// tests.
//
// [StoredChunk] and [DeflateChunk] encode payloads the way the archive
// stores them: a mode tag followed by the raw bytes, or by a zlib
// stream. [ChunkedEnvelope] and [SingleEnvelope] wrap payloads in the
// two envelope layouts, computing chunk MD5s. [Archive] lays entries
// out back to back behind 30-byte entry headers and writes data.NNN
// files.
//
// Encoding is implemented here from the format description rather
// than by calling lib/blte, so that decoder tests are not checking the
// decoder against itself (and so lib/blte's own tests can import this
// package without a cycle).
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
