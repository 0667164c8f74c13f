package controller

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "gooze.dev/pkg/oracles/internal/model"
)

func newBufferedCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	return cmd, &buf
}

func TestSimpleUI_StartGenerate(t *testing.T) {
	cmd, buf := newBufferedCmd()
	ui := NewSimpleUI(cmd)

	require.NoError(t, ui.Start(context.Background(), WithGenerateMode(2, 7)))
	assert.Contains(t, buf.String(), "Generating assertions for 7 test(s) in 2 suite(s)")
}

func TestSimpleUI_StartCanceled(t *testing.T) {
	cmd, buf := newBufferedCmd()
	ui := NewSimpleUI(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, ui.Start(ctx, WithGenerateMode(1, 1)), context.Canceled)
	assert.Empty(t, buf.String())
}

func TestSimpleUI_WaitBlocksUntilClose(t *testing.T) {
	cmd, _ := newBufferedCmd()
	ui := NewSimpleUI(cmd)
	ctx := context.Background()

	require.NoError(t, ui.Start(ctx, WithGenerateMode(1, 1)))

	waited := make(chan struct{})

	go func() {
		ui.Wait(ctx)
		close(waited)
	}()

	select {
	case <-waited:
		t.Fatal("Wait returned before Close")
	case <-time.After(20 * time.Millisecond):
	}

	ui.Close(ctx)
	ui.Close(ctx)

	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Close")
	}
}

func TestSimpleUI_WaitDoesNotBlockInViewMode(t *testing.T) {
	cmd, _ := newBufferedCmd()
	ui := NewSimpleUI(cmd)
	ctx := context.Background()

	require.NoError(t, ui.Start(ctx, WithViewMode()))
	ui.Wait(ctx)
	ui.Close(ctx)
}

func TestSimpleUI_DisplayEvents(t *testing.T) {
	tests := []struct {
		name         string
		display      func(ui *SimpleUI, ctx context.Context)
		wantContains []string
	}{
		{
			name:         "session",
			display:      func(ui *SimpleUI, ctx context.Context) { ui.DisplaySessionInfo(ctx, "abc-123") },
			wantContains: []string{"Session abc-123"},
		},
		{
			name:         "progress",
			display:      func(ui *SimpleUI, ctx context.Context) { ui.DisplayProgress(ctx, "stack", 1, 4) },
			wantContains: []string{"[stack] 1/4 tests (25%)"},
		},
		{
			name:         "progress of empty suite",
			display:      func(ui *SimpleUI, ctx context.Context) { ui.DisplayProgress(ctx, "stack", 0, 0) },
			wantContains: []string{"0/0 tests (100%)"},
		},
		{
			name: "generated test",
			display: func(ui *SimpleUI, ctx context.Context) {
				ui.DisplayTestReport(ctx, m.TestReport{
					Test:       "push pop",
					Assertions: []string{"a", "b"},
					Killed:     []int{1},
					Touched:    3,
					Diff:       "+assert",
				})
			},
			wantContains: []string{"Completed push pop -> 2 assertion(s), 1/3 mutant(s) killed", "+assert"},
		},
		{
			name: "skipped test",
			display: func(ui *SimpleUI, ctx context.Context) {
				ui.DisplayTestReport(ctx, m.TestReport{Test: "broken", Skipped: true, Reason: "baseline execution failed"})
			},
			wantContains: []string{"Skipped broken: baseline execution failed"},
		},
		{
			name:         "score",
			display:      func(ui *SimpleUI, ctx context.Context) { ui.DisplayMutationScore(ctx, "stack", 0.75) },
			wantContains: []string{"Mutation score of stack: 75.00%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, buf := newBufferedCmd()
			tt.display(NewSimpleUI(cmd), context.Background())

			for _, want := range tt.wantContains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestSimpleUI_DisplayEventsIgnoredAfterCancel(t *testing.T) {
	cmd, buf := newBufferedCmd()
	ui := NewSimpleUI(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ui.DisplaySessionInfo(ctx, "abc")
	ui.DisplayProgress(ctx, "stack", 1, 2)
	ui.DisplayTestReport(ctx, m.TestReport{Test: "t"})
	ui.DisplayMutationScore(ctx, "stack", 1)

	assert.Empty(t, buf.String())
	require.ErrorIs(t, ui.DisplayReports(ctx, nil), context.Canceled)
}

func TestSimpleUI_DisplayReports(t *testing.T) {
	cmd, buf := newBufferedCmd()
	ui := NewSimpleUI(cmd)

	reports := []m.SuiteReport{
		{
			Session: "s-1",
			Suite:   "stack",
			Killed:  3,
			Total:   4,
			Score:   0.75,
			Tests: []m.TestReport{
				{Test: "push pop", Assertions: []string{"a"}, Killed: []int{1, 2}, Touched: 2},
				{Test: "overflow", Skipped: true, Reason: "baseline execution failed\nstack trace"},
			},
		},
	}

	require.NoError(t, ui.DisplayReports(context.Background(), reports))

	out := buf.String()
	assert.Contains(t, out, "stack (session s-1)")
	assert.Contains(t, out, "push pop")
	assert.Contains(t, out, "skipped: baseline execution failed")
	assert.NotContains(t, out, "stack trace")
	assert.Contains(t, out, "3/4")
	assert.Contains(t, out, "75.00%")
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "one", firstLine("one\ntwo"))
	assert.Equal(t, "single", firstLine("single"))
	assert.Empty(t, firstLine(""))
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
}

func TestNewUI(t *testing.T) {
	cmd, _ := newBufferedCmd()

	assert.IsType(t, &SimpleUI{}, NewUI(cmd, false))
	assert.IsType(t, &TUI{}, NewUI(cmd, true))
}
