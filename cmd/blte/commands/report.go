// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/bureau-foundation/blte/cmd/blte/cli"
	"github.com/bureau-foundation/blte/lib/codec"
	"github.com/bureau-foundation/blte/lib/report"
)

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:        "report",
		Summary:     "Work with extraction reports",
		Subcommands: []*cli.Command{reportShowCommand()},
	}
}

type reportShowParams struct {
	cli.JSONOutput
	Diagnose bool `flag:"diagnose" desc:"print the raw CBOR in diagnostic notation"`
}

// reportView is the JSON form of a report with its summary.
type reportView struct {
	*report.Report
	Summary report.Summary `json:"summary"`
}

func reportShowCommand() *cli.Command {
	var params reportShowParams

	return &cli.Command{
		Name:    "show",
		Summary: "Print a stored extraction report",
		Usage:   "blte report show <path> [flags]",
		Examples: []cli.Example{
			{Command: "blte report show run.cbor.zst"},
			{
				Description: "List failed entries with jq",
				Command:     "blte report show run.cbor --json | jq '.entries[] | select(.error)'",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("report path argument required\n\nUsage: blte report show <path> [flags]")
			}
			path := args[0]

			if params.Diagnose {
				raw, err := codec.ReadRaw(path)
				if err != nil {
					return err
				}
				diagnostic, err := codec.Diagnose(raw)
				if err != nil {
					return fmt.Errorf("diagnosing %s: %w", path, err)
				}
				fmt.Println(diagnostic)
				return nil
			}

			loaded, err := report.Read(path)
			if err != nil {
				return err
			}
			view := reportView{Report: loaded, Summary: loaded.Summarize()}
			if done, err := params.EmitJSON(os.Stdout, view); done {
				return err
			}
			printReport(os.Stdout, view)
			return nil
		},
	}
}

func printReport(w io.Writer, view reportView) {
	header := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(header, "Version:\t%s\n", view.Version)
	fmt.Fprintf(header, "Started:\t%s\n", view.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(header, "Duration:\t%s\n", view.FinishedAt.Sub(view.StartedAt).Round(time.Millisecond))
	header.Flush()
	fmt.Fprintln(w)

	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "NAME\tARCHIVE\tOFFSET\tLAYOUT\tCHUNKS\tBYTES\tRESULT")
	for _, entry := range view.Entries {
		outcome := entry.Digest
		if len(outcome) > 16 {
			outcome = outcome[:16]
		}
		if entry.Recovered {
			outcome += " (recovered)"
		}
		if entry.Failed() {
			outcome = entry.Error
			if entry.ErrorClass != "" {
				outcome = entry.ErrorClass + ": " + outcome
			}
		}
		fmt.Fprintf(table, "%s\t%d\t%d\t%s\t%d\t%d\t%s\n",
			entry.Name, entry.Archive, entry.Offset, entry.Layout, entry.Chunks, entry.BytesWritten, outcome)
	}
	table.Flush()
	fmt.Fprintln(w)
	printSummary(w, view.Summary)
}
