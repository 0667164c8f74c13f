package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	m "gooze.dev/pkg/oracles/internal/model"
)

// recentTests bounds the test lines kept on screen during generation.
const recentTests = 8

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	scoreStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

type (
	sessionMsg  string
	progressMsg struct {
		suite       string
		done, total int
	}
	testMsg  m.TestReport
	scoreMsg struct {
		suite string
		score float64
	}
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the generation screen. Viewing starts lazily in
// DisplayReports.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)
	if cfg.mode != ModeGenerate {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.program = tea.NewProgram(newGenerateModel(cfg.tests), tea.WithOutput(p.output), tea.WithContext(ctx))
	p.done = make(chan struct{})

	program, done := p.program, p.done

	go func() {
		defer close(done)

		if _, err := program.Run(); err != nil && ctx.Err() == nil {
			fmt.Fprintf(p.output, "tui error: %v\n", err)
		}
	}()

	return nil
}

// Close stops the generation screen.
func (p *TUI) Close(_ context.Context) {
	p.mu.Lock()
	program := p.program
	p.mu.Unlock()

	if program != nil {
		program.Quit()
	}
}

// Wait blocks until the generation screen exits.
func (p *TUI) Wait(ctx context.Context) {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done == nil {
		return
	}

	select {
	case <-ctx.Done():
	case <-done:
	}
}

func (p *TUI) send(msg tea.Msg) {
	p.mu.Lock()
	program := p.program
	p.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

// DisplaySessionInfo shows the session identifier.
func (p *TUI) DisplaySessionInfo(_ context.Context, session string) {
	p.send(sessionMsg(session))
}

// DisplayProgress advances the progress bar.
func (p *TUI) DisplayProgress(_ context.Context, suite string, done, total int) {
	p.send(progressMsg{suite: suite, done: done, total: total})
}

// DisplayTestReport lists a finished test.
func (p *TUI) DisplayTestReport(_ context.Context, report m.TestReport) {
	p.send(testMsg(report))
}

// DisplayMutationScore shows the score of a finished suite.
func (p *TUI) DisplayMutationScore(_ context.Context, suite string, score float64) {
	p.send(scoreMsg{suite: suite, score: score})
}

// DisplayReports shows stored reports, paginated when they do not fit.
func (p *TUI) DisplayReports(ctx context.Context, reports []m.SuiteReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := newReportsModel(reports)

	if f, ok := p.output.(*os.File); ok {
		width, height, err := term.GetSize(f.Fd())
		if err == nil {
			model.height = height
			model.width = width
		}
	}

	if !model.needsPagination() {
		_, err := fmt.Fprint(p.output, model.View())
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

// generateModel renders a running session.
type generateModel struct {
	bar      progress.Model
	session  string
	suite    string
	total    int
	done     map[string]int
	recent   []m.TestReport
	scores   []scoreMsg
	quitting bool
}

func newGenerateModel(total int) generateModel {
	return generateModel{
		bar:   progress.New(progress.WithDefaultGradient()),
		total: total,
		done:  make(map[string]int),
	}
}

func (gm generateModel) Init() tea.Cmd {
	return nil
}

func (gm generateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		gm.bar.Width = max(msg.Width-8, 10)
		return gm, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			gm.quitting = true
			return gm, tea.Quit
		}

		return gm, nil

	case sessionMsg:
		gm.session = string(msg)
		return gm, nil

	case progressMsg:
		gm.suite = msg.suite
		gm.done[msg.suite] = msg.done

		return gm, gm.bar.SetPercent(gm.fraction())

	case testMsg:
		gm.recent = append(gm.recent, m.TestReport(msg))
		if len(gm.recent) > recentTests {
			gm.recent = gm.recent[len(gm.recent)-recentTests:]
		}

		return gm, nil

	case scoreMsg:
		gm.scores = append(gm.scores, msg)
		return gm, nil

	case progress.FrameMsg:
		bar, cmd := gm.bar.Update(msg)
		gm.bar = bar.(progress.Model)

		return gm, cmd
	}

	return gm, nil
}

func (gm generateModel) fraction() float64 {
	if gm.total == 0 {
		return 1
	}

	done := 0
	for _, n := range gm.done {
		done += n
	}

	return float64(done) / float64(gm.total)
}

func (gm generateModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Oracles - Assertion Generation"))
	b.WriteString("\n")

	if gm.session != "" {
		b.WriteString(faintStyle.Render("session " + gm.session))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n  %s %s\n\n", gm.bar.View(), gm.suite)

	for _, report := range gm.recent {
		if report.Skipped {
			fmt.Fprintf(&b, "  %s %s\n", skippedStyle.Render("skipped"), report.Test)
			continue
		}

		fmt.Fprintf(&b, "  %s: %d assertion(s), %d mutant(s) killed\n", report.Test, len(report.Assertions), len(report.Killed))
	}

	for _, score := range gm.scores {
		fmt.Fprintf(&b, "\n  %s %s", scoreStyle.Render(fmt.Sprintf("%.2f%%", score.score*100)), score.suite)
	}

	b.WriteString("\n\n")
	b.WriteString(faintStyle.Render("  q: quit"))
	b.WriteString("\n")

	return b.String()
}

// reportRow is one line of the reports view.
type reportRow struct {
	suite  string
	report m.TestReport
}

// reportsModel represents the Bubble Tea model for displaying stored reports.
type reportsModel struct {
	rows   []reportRow
	suites []m.SuiteReport
	height int
	width  int
	offset int // Current scroll offset
}

func newReportsModel(reports []m.SuiteReport) reportsModel {
	model := reportsModel{suites: reports}

	for _, suite := range reports {
		for _, test := range suite.Tests {
			model.rows = append(model.rows, reportRow{suite: suite.Suite, report: test})
		}
	}

	return model
}

func (rm reportsModel) Init() tea.Cmd {
	return nil
}

func (rm reportsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rm.height = msg.Height
		rm.width = msg.Width

		return rm, nil

	case tea.KeyMsg:
		return rm.handleKeyPress(msg)
	}

	return rm, nil
}

func (rm reportsModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return rm, tea.Quit
	case "down", "j":
		rm.offset = min(rm.offset+1, rm.maxOffset())
	case "up", "k":
		rm.offset = max(rm.offset-1, 0)
	case "g", "home":
		rm.offset = 0
	case "G", "end":
		rm.offset = rm.maxOffset()
	case "d", "pgdown":
		rm.offset = min(rm.offset+rm.itemsPerPage(), rm.maxOffset())
	case "u", "pgup":
		rm.offset = max(rm.offset-rm.itemsPerPage(), 0)
	}

	return rm, nil
}

// itemsPerPage calculates how many rows fit on screen.
func (rm reportsModel) itemsPerPage() int {
	if rm.height == 0 {
		return 10
	}

	// Title, one summary line per suite, footer.
	reserved := 6 + len(rm.suites)

	return max(rm.height-reserved, 1)
}

func (rm reportsModel) maxOffset() int {
	return max(len(rm.rows)-rm.itemsPerPage(), 0)
}

// needsPagination returns true if the rows do not fit on screen.
func (rm reportsModel) needsPagination() bool {
	return rm.height > 0 && len(rm.rows) > rm.itemsPerPage()
}

func (rm reportsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Oracles - Reports"))
	b.WriteString("\n\n")

	for _, suite := range rm.suites {
		fmt.Fprintf(&b, "  %s %s: %d/%d mutants killed, %d test(s)\n",
			scoreStyle.Render(fmt.Sprintf("%6.2f%%", suite.Score*100)), suite.Suite, suite.Killed, suite.Total, len(suite.Tests))
	}

	b.WriteString("\n")

	rows := rm.rows
	start, end := 0, len(rows)

	if rm.needsPagination() {
		start = min(rm.offset, len(rows))
		end = min(start+rm.itemsPerPage(), len(rows))
		rows = rows[start:end]
	}

	for _, row := range rows {
		line := fmt.Sprintf("  %s/%s: %d assertion(s), %d killed", row.suite, row.report.Test, len(row.report.Assertions), len(row.report.Killed))
		if row.report.Skipped {
			line = skippedStyle.Render(fmt.Sprintf("  %s/%s: skipped, %s", row.suite, row.report.Test, firstLine(row.report.Reason)))
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	if rm.needsPagination() {
		fmt.Fprintf(&b, "\n  Showing %d-%d of %d\n", start+1, end, len(rm.rows))
		b.WriteString(faintStyle.Render("  ↑/k: up | ↓/j: down | g: top | G: bottom | q: quit"))
		b.WriteString("\n")
	}

	return b.String()
}
