// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the module's standard CBOR encoding
// configuration and the file helpers built on it.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2):
// sorted map keys, smallest integer encoding, no indefinite-length
// items. The same report always produces identical bytes, so two
// extraction runs over the same archives can be compared with cmp.
//
// For buffers:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For files, where a ".zst" suffix selects zstd compression:
//
//	err := codec.WriteFile("report.cbor.zst", value)
//	err = codec.ReadFile("report.cbor.zst", &value)
//
// Types shared with JSON output carry `json` struct tags only;
// fxamacker/cbor falls back to them when `cbor` tags are absent.
package codec
