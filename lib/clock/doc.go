// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Code that stamps or measures time accepts a Clock instead of calling
// time.Now directly. Production code passes Real(); tests pass Fake()
// and move time forward explicitly with Advance, so report timestamps
// and durations are exact.
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	run := runExtraction(ctx, cfg, c, logger)
package clock
