// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package casc reads entries out of CASC data archives, the data.NNN
// files that hold a game's encoded content.
//
// A data archive is a concatenation of entries. Each entry is a
// 30-byte header followed by a BLTE envelope:
//
//	offset 0   key        [16]byte, stored byte-reversed
//	offset 16  size       u32 LE, whole entry including this header
//	offset 20  flags      u16 LE
//	offset 22  checksumA  u32 LE
//	offset 26  checksumB  u32 LE
//	offset 30  "BLTE" ...
//
// [Archive.Entry] returns a reader over the envelope that extends to
// the end of the archive, so a decoder can look past the entry for the
// next header when the recorded size is wrong.
//
// On Linux and macOS archives are memory-mapped read-only; elsewhere
// they are read through an *os.File.
package casc
