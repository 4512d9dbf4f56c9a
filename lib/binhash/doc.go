// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash fingerprints extracted files with BLAKE3.
//
// Every file the extraction tool writes is hashed after it is closed
// and the digest goes into the extraction report. Two runs over the
// same archives can then be compared entry by entry without keeping
// the output trees around.
//
//   - [HashFile] streams a file through BLAKE3 with constant memory
//   - [FormatDigest] and [ParseDigest] convert to and from lowercase
//     hex, the form used in reports and log output
//
// This package has no dependencies on other packages in this module.
package binhash
