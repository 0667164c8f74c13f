// Package controller provides output adapters for displaying assertion
// generation progress and reports.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	m "gooze.dev/pkg/oracles/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeGenerate StartMode = iota
	ModeView
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode   StartMode
	suites int
	tests  int
}

// WithGenerateMode sets the UI to generation mode for the given number of
// suites and tests.
func WithGenerateMode(suites, tests int) StartOption {
	return func(c *StartConfig) {
		c.mode = ModeGenerate
		c.suites = suites
		c.tests = tests
	}
}

// WithViewMode sets the UI to report viewing mode.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

func newStartConfig(options []StartOption) StartConfig {
	cfg := StartConfig{mode: ModeGenerate}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI receives fire-and-forget progress events. Implementations can use
// different output methods (simple text, TUI, metrics).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplaySessionInfo(ctx context.Context, session string)
	DisplayProgress(ctx context.Context, suite string, done, total int)
	DisplayTestReport(ctx context.Context, report m.TestReport)
	DisplayMutationScore(ctx context.Context, suite string, score float64)
	DisplayReports(ctx context.Context, reports []m.SuiteReport) error
}

// NewUI picks the TUI for terminals and the simple UI otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(f.Fd())
}
