// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// DigestSize is the length of a BLAKE3 digest as used here.
const DigestSize = 32

// Digest is a 256-bit BLAKE3 digest.
type Digest [DigestSize]byte

// HashFile computes the BLAKE3 digest of the file at path, streaming
// it through the hasher.
func HashFile(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return Digest{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// HashBytes computes the BLAKE3 digest of data.
func HashBytes(data []byte) Digest {
	return blake3.Sum256(data)
}

// FormatDigest returns the lowercase hex encoding of a digest.
func FormatDigest(digest Digest) string {
	return hex.EncodeToString(digest[:])
}

// ParseDigest parses a 64-character hex string into a Digest.
func ParseDigest(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != DigestSize {
		return digest, fmt.Errorf("digest is %d bytes, want %d", len(decoded), DigestSize)
	}
	copy(digest[:], decoded)
	return digest, nil
}
