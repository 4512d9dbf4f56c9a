// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version, set manually for releases.
	Version = "0.1.0-dev"
)

// shortCommitLength matches `git rev-parse --short`.
const shortCommitLength = 7

// Commit returns the git commit of the build: the injected GitCommit,
// else the toolchain-recorded VCS revision, else "unknown". A "-dirty"
// suffix marks builds from a modified tree when the toolchain
// recorded that.
func Commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return GitCommit
	}
	return commitFromSettings(info.Settings)
}

func commitFromSettings(settings []debug.BuildSetting) string {
	revision, modified := "", false
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if revision == "" {
		return "unknown"
	}
	if len(revision) > shortCommitLength {
		revision = revision[:shortCommitLength]
	}
	if modified {
		revision += "-dirty"
	}
	return revision
}

// Info returns a one-line version string for `blte version`.
func Info() string {
	return fmt.Sprintf("blte %s (%s, %s)", Version, Commit(), BuildTime)
}

// Full returns Info plus the Go version and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns the version and commit, e.g. "0.1.0-dev+abc1234".
func Short() string {
	return Version + "+" + Commit()
}
