package controller

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	m "gooze.dev/pkg/oracles/internal/model"
)

const metricsNamespace = "oracles"

// MetricsUI decorates a UI and records progress as Prometheus metrics.
type MetricsUI struct {
	UI

	progress   *prometheus.GaugeVec
	tests      *prometheus.CounterVec
	assertions *prometheus.CounterVec
	killed     *prometheus.CounterVec
	score      *prometheus.GaugeVec
}

// NewMetricsUI registers the session metrics on reg and forwards every
// event to next.
func NewMetricsUI(next UI, reg prometheus.Registerer) *MetricsUI {
	factory := promauto.With(reg)

	return &MetricsUI{
		UI: next,
		progress: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "suite_progress_ratio",
			Help:      "Fraction of the suite's tests processed.",
		}, []string{"suite"}),
		tests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tests_total",
			Help:      "Tests processed, by suite and outcome.",
		}, []string{"suite", "outcome"}),
		assertions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "assertions_total",
			Help:      "Assertions attached to processed tests.",
		}, []string{"suite"}),
		killed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "mutants_killed_total",
			Help:      "Mutants killed per test, summed over tests.",
		}, []string{"suite"}),
		score: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "mutation_score_ratio",
			Help:      "Killed mutants divided by all mutants.",
		}, []string{"suite"}),
	}
}

// DisplayProgress records the progress ratio.
func (u *MetricsUI) DisplayProgress(ctx context.Context, suite string, done, total int) {
	ratio := 1.0
	if total > 0 {
		ratio = float64(done) / float64(total)
	}

	u.progress.WithLabelValues(suite).Set(ratio)
	u.UI.DisplayProgress(ctx, suite, done, total)
}

// DisplayTestReport counts the test and its assertions.
func (u *MetricsUI) DisplayTestReport(ctx context.Context, report m.TestReport) {
	outcome := "generated"
	if report.Skipped {
		outcome = "skipped"
	}

	u.tests.WithLabelValues(report.Suite, outcome).Inc()
	u.assertions.WithLabelValues(report.Suite).Add(float64(len(report.Assertions)))
	u.killed.WithLabelValues(report.Suite).Add(float64(len(report.Killed)))
	u.UI.DisplayTestReport(ctx, report)
}

// DisplayMutationScore records the final score.
func (u *MetricsUI) DisplayMutationScore(ctx context.Context, suite string, score float64) {
	u.score.WithLabelValues(suite).Set(score)
	u.UI.DisplayMutationScore(ctx, suite, score)
}
