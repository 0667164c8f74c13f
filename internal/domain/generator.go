package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"gooze.dev/pkg/oracles/internal/adapter"
	"gooze.dev/pkg/oracles/internal/assertion"
	"gooze.dev/pkg/oracles/internal/execution"
	m "gooze.dev/pkg/oracles/internal/model"
	"gooze.dev/pkg/oracles/internal/observe"
)

// ErrBaselineFailed is reported when a test does not run cleanly on the
// original program.
var ErrBaselineFailed = errors.New("baseline execution failed")

// Generator infers assertions for the tests of one suite.
type Generator interface {
	// Generate attaches the smallest set of assertions distinguishing the
	// original program from the mutants the test reaches.
	Generate(ctx context.Context, tc *m.TestCase) m.TestReport
	// Complete attaches every assertion the original program supports.
	Complete(ctx context.Context, tc *m.TestCase) m.TestReport
	// Filter re-runs tc, alone and after others, and drops attached
	// assertions that no longer hold. It returns the dropped keys.
	Filter(ctx context.Context, tc *m.TestCase, others []*m.TestCase) []string
}

type generator struct {
	env     execution.Environment
	mutants adapter.MutantCatalogue
	cfg     Config
	book    *mutantBook

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewGenerator creates a generator running tests through env. Mutant
// outcome counters live as long as the generator.
func NewGenerator(env execution.Environment, mutants adapter.MutantCatalogue, cfg Config) Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &generator{
		env:     env,
		mutants: mutants,
		cfg:     cfg,
		book:    newMutantBook(cfg.MutationTimeouts),
		rng:     rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

// mutantRun is the outcome of one mutant execution.
type mutantRun struct {
	mutant m.Mutant
	traces map[observe.Category]*observe.Trace
}

func (g *generator) Generate(ctx context.Context, tc *m.TestCase) m.TestReport {
	report := m.TestReport{Test: tc.Name}
	if tc.Size() == 0 {
		return skip(report, "empty test case")
	}

	before := tc.Code()

	baseline := g.env.Execute(ctx, tc, nil)
	if err := baselineError(baseline); err != nil {
		slog.Debug("Skipping test, as it has timeouts or exceptions", "test", tc.Name, "error", err)
		return skip(report, err.Error())
	}

	touched := g.touched(baseline)
	report.Touched = len(touched)

	runs, killed, candidates := g.runMutants(ctx, tc, baseline, touched)

	pool := candidates
	for _, existing := range tc.Assertions() {
		if a, ok := existing.(assertion.Assertion); ok {
			pool = append(pool, a)
		}
	}

	pool = assertion.Dedup(pool)
	kills := buildKillMap(pool, runs)

	for id := range kills.union() {
		killed[id] = struct{}{}
	}

	selected := minimize(pool, kills, g.cfg.TieBreak)
	slog.Debug("Minimized assertions", "test", tc.Name, "candidates", len(pool), "selected", len(selected),
		"before", kindStats(pool), "after", kindStats(pick(pool, selected)))

	place(tc, pool, selected, func() []assertion.Assertion { return allAssertions(tc, baseline) }, baseline.HasException())

	report.Candidates = len(pool)
	report.Selected = len(selected)
	report.Killed = sortedIDs(killed)

	return finish(report, tc, before)
}

func (g *generator) Complete(ctx context.Context, tc *m.TestCase) m.TestReport {
	report := m.TestReport{Test: tc.Name}
	if tc.Size() == 0 {
		return skip(report, "empty test case")
	}

	before := tc.Code()

	result := g.env.Execute(ctx, tc, nil)
	if result.Canceled || result.Timeout {
		return skip(report, baselineError(result).Error())
	}

	all := allAssertions(tc, result)
	for _, a := range all {
		attach(tc, a)
	}

	if result.HasException() {
		dropLastStatementAssertions(tc)
	}

	report.Candidates = len(all)
	report.Selected = len(tc.Assertions())

	return finish(report, tc, before)
}

func (g *generator) Filter(ctx context.Context, tc *m.TestCase, others []*m.TestCase) []string {
	if len(tc.Assertions()) == 0 {
		return nil
	}

	removed := dropUnstable(tc, g.env.Execute(ctx, tc, nil))

	shuffled := slices.Clone(others)
	g.shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	for _, other := range shuffled {
		if other == tc || ctx.Err() != nil {
			continue
		}

		g.env.Execute(ctx, other, nil)
	}

	removed = append(removed, dropUnstable(tc, g.env.Execute(ctx, tc, nil))...)
	if len(removed) > 0 {
		slog.Info("Removed non-deterministic assertions", "test", tc.Name, "count", len(removed))
	}

	return removed
}

// touched returns the catalogue mutants reached by the baseline, shuffled.
func (g *generator) touched(baseline *execution.Result) []m.Mutant {
	var mutants []m.Mutant

	for _, id := range baseline.Touched {
		if mutant, ok := g.mutants.Lookup(id); ok {
			mutants = append(mutants, mutant)
		}
	}

	g.shuffle(len(mutants), func(i, j int) { mutants[i], mutants[j] = mutants[j], mutants[i] })

	return mutants
}

func (g *generator) runMutants(
	ctx context.Context,
	tc *m.TestCase,
	baseline *execution.Result,
	mutants []m.Mutant,
) ([]mutantRun, map[int]struct{}, []assertion.Assertion) {
	killed := make(map[int]struct{})

	var (
		runs       []mutantRun
		candidates []assertion.Assertion
	)

	for i, mutant := range mutants {
		if ctx.Err() != nil {
			slog.Info("Reached maximum time to generate assertions", "test", tc.Name)
			break
		}

		if g.book.disabled(mutant.ID) {
			slog.Debug("Skipping disabled mutant", "mutant", mutant.ID)
			killed[mutant.ID] = struct{}{}
			continue
		}

		if g.cfg.MaxMutantsPerTest > 0 && i+1 > g.cfg.MaxMutantsPerTest {
			break
		}

		result := g.env.Execute(ctx, tc, &mutant)
		if result.Canceled {
			break
		}

		found := 0

		for category, trace := range baseline.Traces {
			other, ok := result.Traces[category]
			if !ok {
				continue
			}

			diff := trace.AssertionsAgainst(tc, other)
			found += len(diff)
			candidates = append(candidates, diff...)
		}

		runs = append(runs, mutantRun{mutant: mutant, traces: result.Traces})

		raised := result.HasException() && !result.SameExceptions(baseline)

		switch {
		case result.Timeout:
			slog.Debug("Increasing timeout count", "mutant", mutant.ID)
			g.book.timedOut(mutant.ID)
		case raised:
			slog.Debug("Increasing exception count", "mutant", mutant.ID)
			g.book.raised(mutant.ID)
		}

		if found > 0 || result.Timeout || raised {
			killed[mutant.ID] = struct{}{}
		}
	}

	return runs, killed, candidates
}

func (g *generator) shuffle(n int, swap func(i, j int)) {
	g.rngMu.Lock()
	defer g.rngMu.Unlock()

	g.rng.Shuffle(n, swap)
}

// buildKillMap records, per candidate, the mutant traces it detects.
func buildKillMap(pool []assertion.Assertion, runs []mutantRun) killMap {
	kills := make(killMap, len(pool))

	for i, a := range pool {
		for _, run := range runs {
			for _, trace := range run.traces {
				if trace.IsDetectedBy(a) {
					kills[i] = append(kills[i], run.mutant.ID)
					a.AddKilled(run.mutant.ID)

					break
				}
			}
		}
	}

	return kills
}

func baselineError(result *execution.Result) error {
	switch {
	case result.Canceled:
		return fmt.Errorf("%w: %w", ErrBaselineFailed, context.Canceled)
	case result.Timeout:
		return fmt.Errorf("%w: timeout after %s", ErrBaselineFailed, result.Duration)
	case result.HasException():
		pos := result.ExceptionPositions()[0]
		return fmt.Errorf("%w: statement %d: %w", ErrBaselineFailed, pos, result.Exceptions[pos])
	default:
		return nil
	}
}

// allAssertions returns every assertion the result's traces support, in
// statement order.
func allAssertions(tc *m.TestCase, result *execution.Result) []assertion.Assertion {
	var all []assertion.Assertion

	for _, category := range observe.Categories() {
		if trace, ok := result.Traces[category]; ok {
			all = append(all, trace.Assertions(tc)...)
		}
	}

	all = assertion.Dedup(all)
	assertion.Sort(all)

	return all
}

// dropUnstable removes the assertions of tc that failed in result or that
// result's traces contradict.
func dropUnstable(tc *m.TestCase, result *execution.Result) []string {
	if result.Canceled || result.Timeout {
		return nil
	}

	var removed []string

	for _, st := range tc.Statements() {
		for _, attached := range st.Assertions() {
			a, ok := attached.(assertion.Assertion)
			if !ok {
				continue
			}

			_, failed := result.Failures[a.Key()]
			if failed || detected(result, a) {
				st.RemoveAssertion(a)
				removed = append(removed, a.Key())
			}
		}
	}

	return removed
}

func detected(result *execution.Result, a assertion.Assertion) bool {
	for _, trace := range result.Traces {
		if trace.IsDetectedBy(a) {
			return true
		}
	}

	return false
}

func pick(pool []assertion.Assertion, indexes []int) []assertion.Assertion {
	out := make([]assertion.Assertion, 0, len(indexes))
	for _, i := range indexes {
		out = append(out, pool[i])
	}

	return out
}

func kindStats(assertions []assertion.Assertion) map[string]int {
	stats := make(map[string]int)
	for _, a := range assertions {
		stats[a.Kind().String()]++
	}

	return stats
}

func sortedIDs(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

func skip(report m.TestReport, reason string) m.TestReport {
	report.Skipped = true
	report.Reason = reason

	return report
}

func finish(report m.TestReport, tc *m.TestCase, before string) m.TestReport {
	report.Assertions = assertionCodes(tc)

	after := tc.Code()
	if after == before {
		return report
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: tc.Name + " (before)",
		ToFile:   tc.Name + " (after)",
		Context:  1,
	})
	if err != nil {
		slog.Warn("Failed to diff test code", "test", tc.Name, "error", err)
		return report
	}

	report.Diff = diff

	return report
}
