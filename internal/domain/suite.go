package domain

import (
	"gooze.dev/pkg/oracles/internal/execution"
	m "gooze.dev/pkg/oracles/internal/model"
)

// Suite groups test cases with the mutants of the program they exercise.
type Suite struct {
	Name    string
	Tests   []*m.TestCase
	Mutants []m.Mutant
	// Switch is consulted by the program under test to find the active
	// mutant. Suites without mutants may leave it nil.
	Switch *execution.Switch
}
