package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	m "gooze.dev/pkg/oracles/internal/model"
)

// SimpleUI implements UI using cobra Command's output.
type SimpleUI struct {
	cmd *cobra.Command

	mu     sync.Mutex
	mode   StartMode
	done   chan struct{}
	closed bool
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = cfg.mode
	s.done = make(chan struct{})
	s.closed = false

	if cfg.mode == ModeGenerate {
		s.printf("Generating assertions for %d test(s) in %d suite(s)\n", cfg.tests, cfg.suites)
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil && !s.closed {
		close(s.done)
		s.closed = true
	}
}

// Wait blocks until Close in generation mode. Viewing does not block.
func (s *SimpleUI) Wait(ctx context.Context) {
	s.mu.Lock()
	done, mode := s.done, s.mode
	s.mu.Unlock()

	if done == nil || mode == ModeView {
		return
	}

	select {
	case <-ctx.Done():
	case <-done:
	}
}

// DisplaySessionInfo prints the session identifier.
func (s *SimpleUI) DisplaySessionInfo(ctx context.Context, session string) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Session %s\n", session)
}

// DisplayProgress prints the percentage of tests processed in a suite.
func (s *SimpleUI) DisplayProgress(ctx context.Context, suite string, done, total int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("[%s] %d/%d tests (%d%%)\n", suite, done, total, percent(done, total))
}

// DisplayTestReport prints the outcome of one test.
func (s *SimpleUI) DisplayTestReport(ctx context.Context, report m.TestReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	if report.Skipped {
		s.printf("Skipped %s: %s\n", report.Test, report.Reason)
		return
	}

	s.printf("Completed %s -> %d assertion(s), %d/%d mutant(s) killed\n",
		report.Test, len(report.Assertions), len(report.Killed), report.Touched)

	if report.Diff != "" {
		s.printf("%s\n", report.Diff)
	}
}

// DisplayMutationScore prints the final mutation score of a suite.
func (s *SimpleUI) DisplayMutationScore(ctx context.Context, suite string, score float64) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Mutation score of %s: %.2f%%\n", suite, score*100)
}

// DisplayReports prints one table per stored suite report.
func (s *SimpleUI) DisplayReports(ctx context.Context, reports []m.SuiteReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, report := range reports {
		s.printf("\n%s (session %s)\n%s", report.Suite, report.Session, renderReportTable(report))
	}

	return nil
}

func renderReportTable(report m.SuiteReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Test", "Assertions", "Killed", "Touched", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_LEFT,
	})

	for _, test := range report.Tests {
		table.Append([]string{
			test.Test,
			fmt.Sprintf("%d", len(test.Assertions)),
			fmt.Sprintf("%d", len(test.Killed)),
			fmt.Sprintf("%d", test.Touched),
			testStatus(test),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Tests %d", len(report.Tests)),
		"",
		fmt.Sprintf("%d/%d", report.Killed, report.Total),
		"",
		fmt.Sprintf("Score %.2f%%", report.Score*100),
	})

	table.Render()

	return tableBuffer.String()
}

func testStatus(report m.TestReport) string {
	if report.Skipped {
		return "skipped: " + firstLine(report.Reason)
	}

	return "ok"
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func percent(done, total int) int {
	if total == 0 {
		return 100
	}

	return done * 100 / total
}

func (s *SimpleUI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
