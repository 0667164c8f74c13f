package domain

import (
	m "gooze.dev/pkg/oracles/internal/model"
	pkg "gooze.dev/pkg/oracles/pkg"
)

// mutationScoreFromReports returns the number of distinct mutants killed by
// any report and that number divided by total. A suite without mutants
// scores 1.
func mutationScoreFromReports(reports pkg.FileSpill[m.TestReport], total int) (int, float64, error) {
	killed := make(map[int]struct{})

	err := reports.Range(func(_ uint64, report m.TestReport) error {
		for _, id := range report.Killed {
			killed[id] = struct{}{}
		}

		return nil
	})
	if err != nil {
		return 0, 0.0, err
	}

	if total == 0 {
		return 0, 1.0, nil
	}

	return len(killed), float64(len(killed)) / float64(total), nil
}
