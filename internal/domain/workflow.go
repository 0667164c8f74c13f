package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gooze.dev/pkg/oracles/internal/adapter"
	"gooze.dev/pkg/oracles/internal/controller"
	m "gooze.dev/pkg/oracles/internal/model"
	pkg "gooze.dev/pkg/oracles/pkg"
)

// progressInterval throttles progress events sent to the UI.
const progressInterval = 200 * time.Millisecond

// GenerateArgs contains the arguments for an assertion generation session.
type GenerateArgs struct {
	Suites     []Suite
	Reports    m.Path
	TimeBudget time.Duration
}

// ViewArgs contains the arguments for viewing stored reports.
type ViewArgs struct {
	Reports m.Path
	// Suites restricts the view to the named suites when not empty.
	Suites []string
}

// Workflow drives generation sessions and report viewing.
type Workflow interface {
	Generate(ctx context.Context, args GenerateArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.ReportStore
	controller.UI
	Engine
	cfg Config
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(reportStore adapter.ReportStore, ui controller.UI, engine Engine, cfg Config) Workflow {
	return &workflow{
		ReportStore: reportStore,
		UI:          ui,
		Engine:      engine,
		cfg:         cfg,
	}
}

func (w *workflow) Generate(ctx context.Context, args GenerateArgs) error {
	tests := 0
	for _, suite := range args.Suites {
		tests += len(suite.Tests)
	}

	if err := w.Start(ctx, controller.WithGenerateMode(len(args.Suites), tests)); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if args.TimeBudget > 0 {
		sessionCtx, cancel = context.WithTimeout(sessionCtx, args.TimeBudget)
		defer cancel()
	}

	session := uuid.NewString()
	w.DisplaySessionInfo(ctx, session)
	slog.Info("Starting assertion generation", "session", session, "suites", len(args.Suites), "tests", tests)

	var finished atomic.Bool

	group, groupCtx := errgroup.WithContext(sessionCtx)

	group.Go(func() error {
		defer w.Close(ctx)
		defer finished.Store(true)

		return w.generateAll(groupCtx, session, args)
	})

	group.Go(func() error {
		w.Wait(groupCtx)

		if !finished.Load() {
			slog.Warn("UI closed before generation finished, stopping", "session", session)
			cancel()
		}

		return nil
	})

	if err := group.Wait(); err != nil {
		slog.Error("Assertion generation failed", "session", session, "error", err)
		return err
	}

	return nil
}

func (w *workflow) generateAll(ctx context.Context, session string, args GenerateArgs) error {
	start := time.Now()

	for _, suite := range args.Suites {
		if err := w.generateSuite(ctx, session, start, suite, args.Reports); err != nil {
			return fmt.Errorf("suite %s: %w", suite.Name, err)
		}
	}

	return nil
}

func (w *workflow) generateSuite(ctx context.Context, session string, start time.Time, suite Suite, reportsDir m.Path) error {
	generator, err := w.Prepare(suite)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}

	spill, err := pkg.NewFileSpill[m.TestReport]()
	if err != nil {
		return fmt.Errorf("create report spill: %w", err)
	}

	defer func() {
		if err := spill.Close(); err != nil {
			slog.Warn("Failed to close report spill", "path", spill.Path(), "error", err)
		}
	}()

	// The session budget may expire mid suite; the results gathered so far
	// are still displayed and saved.
	display := context.WithoutCancel(ctx)
	progress := rate.Sometimes{Interval: progressInterval}
	shortOnTime := false

	for i, tc := range suite.Tests {
		if ctx.Err() != nil {
			slog.Warn("Reached maximum time to generate assertions, aborting assertion generation", "suite", suite.Name)
			break
		}

		if !shortOnTime && w.fallbackDue(ctx, start, i, len(suite.Tests)) {
			slog.Warn("Assertion minimization is taking too long, falling back to using all assertions",
				"suite", suite.Name, "minimized", i, "tests", len(suite.Tests))

			shortOnTime = true
		}

		var report m.TestReport
		if shortOnTime {
			report = generator.Complete(ctx, tc)
		} else {
			report = generator.Generate(ctx, tc)
		}

		if w.cfg.FilterNondeterminism && !report.Skipped {
			if removed := generator.Filter(ctx, tc, suite.Tests); len(removed) > 0 {
				report.Assertions = assertionCodes(tc)
			}
		}

		report.Suite = suite.Name

		if err := spill.Append(report); err != nil {
			return fmt.Errorf("spill report of %s: %w", tc.Name, err)
		}

		w.DisplayTestReport(display, report)
		progress.Do(func() { w.DisplayProgress(display, suite.Name, i+1, len(suite.Tests)) })
	}

	w.DisplayProgress(display, suite.Name, int(spill.Len()), len(suite.Tests))

	return w.saveSuiteReport(display, session, suite, spill, reportsDir)
}

// fallbackDue reports whether too few tests were minimized for the share of
// the time budget already used.
func (w *workflow) fallbackDue(ctx context.Context, start time.Time, done, total int) bool {
	deadline, ok := ctx.Deadline()
	if !ok || total == 0 {
		return false
	}

	budget := deadline.Sub(start)
	if budget <= 0 {
		return false
	}

	used := float64(time.Since(start)) / float64(budget)

	return used > w.cfg.MinimizationFallbackTime && float64(done) < w.cfg.MinimizationFallback*float64(total)
}

func (w *workflow) saveSuiteReport(ctx context.Context, session string, suite Suite, spill pkg.FileSpill[m.TestReport], dir m.Path) error {
	killed, score, err := mutationScoreFromReports(spill, len(suite.Mutants))
	if err != nil {
		return fmt.Errorf("compute mutation score: %w", err)
	}

	report := m.SuiteReport{
		Session: session,
		Suite:   suite.Name,
		Killed:  killed,
		Total:   len(suite.Mutants),
		Score:   score,
	}

	err = spill.Range(func(_ uint64, test m.TestReport) error {
		report.Tests = append(report.Tests, test)
		return nil
	})
	if err != nil {
		return fmt.Errorf("read spilled reports: %w", err)
	}

	w.DisplayMutationScore(ctx, suite.Name, score)
	slog.Info("Computed mutation score", "suite", suite.Name, "killed", killed, "total", report.Total, "score", score)

	if err := w.SaveReport(dir, report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	return nil
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	reports, err := w.LoadReports(args.Reports)
	if err != nil {
		slog.Error("Failed to load reports", "path", args.Reports, "error", err)
		return fmt.Errorf("load reports: %w", err)
	}

	if len(args.Suites) > 0 {
		reports = slices.DeleteFunc(reports, func(r m.SuiteReport) bool {
			return !slices.Contains(args.Suites, r.Suite)
		})
	}

	if len(reports) == 0 {
		return errors.New("no reports found")
	}

	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		slog.Error("Failed to start view UI", "error", err)
		return err
	}

	if err := w.DisplayReports(ctx, reports); err != nil {
		w.Close(ctx)
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)
	w.Close(ctx)

	return nil
}

func assertionCodes(tc *m.TestCase) []string {
	var codes []string
	for _, a := range tc.Assertions() {
		codes = append(codes, a.Code())
	}

	return codes
}
