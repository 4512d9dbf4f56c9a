// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blte

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// Hash is the 16-byte MD5 digest stored in a chunk descriptor. It is
// computed over the chunk's encoded bytes exactly as stored, mode tag
// included.
type Hash [md5.Size]byte

// HashChunk computes the content hash of an encoded chunk. Each call
// uses its own digest state, so concurrent decodes share nothing.
func HashChunk(data []byte) Hash {
	return md5.Sum(data)
}

// FormatHash returns the lowercase hex encoding of a hash.
func FormatHash(hash Hash) string {
	return hex.EncodeToString(hash[:])
}

// ParseHash parses a 32-character hex string into a Hash.
func ParseHash(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, fmt.Errorf("parsing chunk hash: %w", err)
	}
	if len(decoded) != len(hash) {
		return hash, fmt.Errorf("chunk hash is %d bytes, want %d", len(decoded), len(hash))
	}
	copy(hash[:], decoded)
	return hash, nil
}
