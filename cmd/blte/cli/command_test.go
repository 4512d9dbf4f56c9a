// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

var discardLogger = slog.New(slog.DiscardHandler)

type testParams struct {
	JSONOutput
	Archive string `flag:"archive,a" desc:"data archive path"`
	Offset  int64  `flag:"offset" desc:"entry offset" default:"30"`
	Count   int    `flag:"count" desc:"entry count" default:"2"`
	Verbose bool   `flag:"verbose,v" desc:"log more"`
}

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string
	root := &Command{
		Name: "blte",
		Subcommands: []*Command{
			{Name: "version", Run: func(context.Context, []string, *slog.Logger) error { called = "version"; return nil }},
			{Name: "inspect", Run: func(context.Context, []string, *slog.Logger) error { called = "inspect"; return nil }},
		},
	}

	if err := root.Execute(context.Background(), []string{"inspect"}, discardLogger); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if called != "inspect" {
		t.Errorf("called = %q, want inspect", called)
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var gotArgs []string
	root := &Command{
		Name: "blte",
		Subcommands: []*Command{{
			Name: "report",
			Subcommands: []*Command{{
				Name: "show",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					gotArgs = args
					return nil
				},
			}},
		}},
	}

	if err := root.Execute(context.Background(), []string{"report", "show", "run.cbor"}, discardLogger); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(gotArgs) != 1 || gotArgs[0] != "run.cbor" {
		t.Errorf("args = %v, want [run.cbor]", gotArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var params testParams
	var gotArgs []string
	command := &Command{
		Name:   "inspect",
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			gotArgs = args
			return nil
		},
	}

	err := command.Execute(context.Background(), []string{"-a", "data.003", "--offset", "1024", "--json", "extra"}, discardLogger)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if params.Archive != "data.003" || params.Offset != 1024 || !params.OutputJSON {
		t.Errorf("params = %+v", params)
	}
	if params.Count != 2 {
		t.Errorf("Count = %d, want default 2", params.Count)
	}
	if len(gotArgs) != 1 || gotArgs[0] != "extra" {
		t.Errorf("args = %v, want [extra]", gotArgs)
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	var params testParams
	command := &Command{
		Name:   "inspect",
		Params: func() any { return &params },
		Run:    func(context.Context, []string, *slog.Logger) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--archiv", "x"}, discardLogger)
	if err == nil {
		t.Fatal("Execute succeeded with an unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --archive?") {
		t.Errorf("error %q has no suggestion", err)
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name:        "blte",
		Subcommands: []*Command{{Name: "extract"}, {Name: "inspect"}},
	}

	err := root.Execute(context.Background(), []string{"extarct"}, discardLogger)
	if err == nil {
		t.Fatal("Execute succeeded with an unknown subcommand")
	}
	if !strings.Contains(err.Error(), `did you mean "extract"?`) {
		t.Errorf("error %q has no suggestion", err)
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	root := &Command{Name: "blte", Subcommands: []*Command{{Name: "inspect"}}}
	err := root.Execute(context.Background(), nil, discardLogger)
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("Execute() = %v, want subcommand required", err)
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	called := false
	command := &Command{
		Name: "inspect",
		Run:  func(context.Context, []string, *slog.Logger) error { called = true; return nil },
	}
	if err := command.Execute(context.Background(), []string{"--help"}, discardLogger); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if called {
		t.Error("Run was called for --help")
	}
}

func TestCommand_Execute_LoggerScopedToPath(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buffer, nil))
	root := &Command{
		Name: "blte",
		Subcommands: []*Command{{
			Name: "report",
			Subcommands: []*Command{{
				Name: "show",
				Run: func(_ context.Context, _ []string, logger *slog.Logger) error {
					logger.Info("ran")
					return nil
				},
			}},
		}},
	}

	if err := root.Execute(context.Background(), []string{"report", "show"}, logger); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(buffer.String(), "command=report/show") {
		t.Errorf("log output %q lacks command=report/show", buffer.String())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	var params testParams
	root := &Command{Name: "blte"}
	command := &Command{
		Name:        "inspect",
		Description: "Show the envelope header and chunk table.",
		Params:      func() any { return &params },
		Examples:    []Example{{Description: "Inspect an entry", Command: "blte inspect --archive data.000 --offset 0"}},
		parent:      root,
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Show the envelope header and chunk table.",
		"Usage:\n  blte inspect [flags]",
		"--archive",
		"--offset",
		"# Inspect an entry",
		"blte inspect --archive data.000 --offset 0",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q:\n%s", want, output)
		}
	}
}

func TestBindFlags_RejectsUnsupported(t *testing.T) {
	var bad struct {
		Ratio float32 `flag:"ratio"`
	}
	if err := BindFlags(&bad, FlagsFromParams("x", &struct{}{})); err == nil {
		t.Error("BindFlags accepted a float32 field")
	}
	if err := BindFlags(bad, nil); err == nil {
		t.Error("BindFlags accepted a non-pointer")
	}
}

func TestEmitJSON(t *testing.T) {
	var output JSONOutput
	var buffer bytes.Buffer

	done, err := output.EmitJSON(&buffer, []string(nil))
	if done || err != nil || buffer.Len() != 0 {
		t.Fatalf("EmitJSON without --json = (%v, %v), wrote %q", done, err, buffer.String())
	}

	output.OutputJSON = true
	done, err = output.EmitJSON(&buffer, []string(nil))
	if !done || err != nil {
		t.Fatalf("EmitJSON = (%v, %v)", done, err)
	}
	if strings.TrimSpace(buffer.String()) != "[]" {
		t.Errorf("EmitJSON(nil slice) wrote %q, want []", buffer.String())
	}
}

func TestNewLogger(t *testing.T) {
	var buffer bytes.Buffer
	newLogger(&buffer, false, "debug").Debug("visible", "entry", "a.bin")
	if !strings.Contains(buffer.String(), `"msg":"visible"`) {
		t.Errorf("JSON debug output = %q", buffer.String())
	}

	buffer.Reset()
	newLogger(&buffer, true, "bogus").Debug("hidden")
	if buffer.Len() != 0 {
		t.Errorf("invalid level should default to info, got %q", buffer.String())
	}

	buffer.Reset()
	newLogger(&buffer, true, "").Info("shown")
	if !strings.Contains(buffer.String(), "msg=shown") {
		t.Errorf("text output = %q", buffer.String())
	}
}
