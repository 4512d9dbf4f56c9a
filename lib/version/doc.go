// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the blte binary.
//
// Three variables are injected at build time via -ldflags -X:
//
//	go build -ldflags "-X github.com/bureau-foundation/blte/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// When GitCommit is not injected, the VCS revision recorded by the Go
// toolchain in the binary's build info is used instead.
//
// Extraction reports record [Short] so a report can be traced back to
// the decoder that produced it.
package version
