// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package blte decodes BLTE envelopes, the block-table-encoded
// container that wraps every file payload in a CASC game content
// archive.
//
// An envelope starts with the 4-byte magic "BLTE" and a big-endian
// frame header size. A frame header size of zero means the envelope
// holds a single payload whose length is derived from the size the
// archive index declares for the entry. Any other value means the
// envelope is chunked: a 0x0F flag byte, a 24-bit chunk count and a
// table of {compressed size, decompressed size, MD5} descriptors
// precede the chunk data.
//
//	offset 0   magic "BLTE"
//	offset 4   frameHeaderSize   u32 BE
//	-- frameHeaderSize == 0 --
//	offset 8   payload (mode tag + data)
//	-- frameHeaderSize != 0 --
//	offset 8   flag byte 0x0F
//	offset 9   chunkCount        u24 BE
//	offset 12  chunkCount x {compressed u32 BE, decompressed u32 BE, md5 [16]byte}
//	then       chunkCount payloads, each mode tag + data
//
// Each payload begins with a one-byte [Mode]. Only stored ('N') and
// deflate ('Z') payloads are decoded; deflate payloads carry two bytes
// of zlib framing after the tag which are skipped before inflating the
// raw deflate stream.
//
// Decoding is a forward pipeline of three independently usable
// stages on a [Decoder]:
//
//   - [Decoder.ParseHeader] verifies the magic and determines the
//     layout. For single-payload envelopes it confirms the payload
//     boundary by looking for the next envelope's magic, scanning for
//     it when the declared size is off.
//   - [Decoder.ReadChunkTable] reads the chunk descriptors of a
//     chunked envelope.
//   - [Decoder.Decode] runs both and then verifies, decodes and writes
//     every payload to a sink in order. [Decoder.Extract] does the same
//     into a file under a root directory.
//
// Failures are reported as [*FormatError] (malformed structure),
// [*IntegrityError] (chunk hash mismatch) or [*IOError] (the source
// failed). None are retried. Output already written when a failure
// occurs is not removed; callers must discard it.
package blte
