// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the blte tool.
//
// The central type is [Command]: a named command with optional nested
// [Command.Subcommands], a params struct whose tagged fields become
// flags (see [BindFlags]), and a Run function. Commands are assembled
// into a tree by cmd/blte/commands and dispatched via
// [Command.Execute], which handles flag parsing, subcommand routing
// and help output with examples.
//
// Unknown subcommands and flags get a "did you mean" suggestion based
// on Levenshtein edit distance (threshold: distance <= 3).
package cli
