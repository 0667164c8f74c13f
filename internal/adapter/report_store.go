package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/google/renameio/v2"
	m "gooze.dev/pkg/oracles/internal/model"
	"gopkg.in/yaml.v3"
)

const reportExt = ".yaml"

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ReportStore persists suite reports, one file per suite.
type ReportStore interface {
	SaveReport(dir m.Path, report m.SuiteReport) error
	LoadReports(dir m.Path) ([]m.SuiteReport, error)
}

type reportStore struct{}

// NewReportStore creates a ReportStore writing YAML files.
func NewReportStore() ReportStore {
	return &reportStore{}
}

// SaveReport atomically replaces the report file of the suite.
func (s *reportStore) SaveReport(dir m.Path, report m.SuiteReport) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report of %s: %w", report.Suite, err)
	}

	path := filepath.Join(string(dir), reportFileName(report.Suite))

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o640))
	if err != nil {
		return fmt.Errorf("create pending report file: %w", err)
	}

	defer func() {
		if err := pending.Cleanup(); err != nil {
			slog.Debug("Failed to clean up pending report file", "path", path, "error", err)
		}
	}()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write report data: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace report file: %w", err)
	}

	slog.Debug("Saved report", "suite", report.Suite, "path", path)

	return nil
}

// LoadReports reads every report in dir, ordered by suite name.
func (s *reportStore) LoadReports(dir m.Path) ([]m.SuiteReport, error) {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	var reports []m.SuiteReport

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != reportExt {
			continue
		}

		path := filepath.Join(string(dir), entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read report %s: %w", path, err)
		}

		var report m.SuiteReport
		if err := yaml.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("failed to decode report %s: %w", path, err)
		}

		reports = append(reports, report)
	}

	slices.SortFunc(reports, func(a, b m.SuiteReport) int { return strings.Compare(a.Suite, b.Suite) })

	return reports, nil
}

func reportFileName(suite string) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(suite, "_"), "_")
	if name == "" {
		name = "suite"
	}

	return name + reportExt
}
