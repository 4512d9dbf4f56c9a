// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// blte decodes BLTE envelopes out of CASC game data archives.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/blte/cmd/blte/cli"
	"github.com/bureau-foundation/blte/cmd/blte/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own outcome (extract with failed
		// entries) return an ExitError; no extra "error:" line.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return commands.Root().Execute(ctx, os.Args[1:], cli.NewCommandLogger())
}
