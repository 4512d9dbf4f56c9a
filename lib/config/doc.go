// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads extraction job configuration for the blte tool.
//
// Configuration is loaded from a single file named by either the
// BLTE_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no discovery and no file search.
//
// Files ending in .json or .jsonc are parsed as JSON after comments
// and trailing commas are stripped; anything else is YAML.
//
// Path fields support ${HOME}, ${VAR} and ${VAR:-default} expansion
// after loading. No other environment variables override values.
//
// This package depends on no other packages in this module.
package config
