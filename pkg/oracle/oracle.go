// Package oracle is the entry point for programs embedding the oracles
// command. A program builds test cases against its own code, declares the
// mutants its code can switch on, registers them as suites and then runs
// cmd.Execute.
//
//	sw := oracle.NewSwitch()
//	tc := oracle.NewTestCase("push then pop")
//	s := tc.Construct("NewStack", NewStack)
//	tc.CallMethod(s, "Push", tc.Constant(5))
//	tc.CallMethod(s, "Pop")
//	oracle.Register(oracle.Suite{Name: "stack", Tests: []*oracle.TestCase{tc}, Switch: sw})
package oracle

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"gooze.dev/pkg/oracles/internal/domain"
	"gooze.dev/pkg/oracles/internal/execution"
	"gooze.dev/pkg/oracles/internal/model"
)

type (
	// Suite groups test cases with the mutants of the code they exercise.
	Suite = domain.Suite
	// TestCase is a linear sequence of statements.
	TestCase = model.TestCase
	// VariableRef names the value produced by a statement.
	VariableRef = model.VariableRef
	// Mutant identifies one fault the program under test can switch on.
	Mutant = model.Mutant
	// Switch tells the program under test which mutant is active.
	Switch = execution.Switch
)

// NoMutant is the identifier active when the original program runs.
const NoMutant = model.NoMutant

var (
	registryMu sync.Mutex
	registry   []Suite
)

// NewSwitch creates a mutant switch with no mutant active.
func NewSwitch() *Switch {
	return execution.NewSwitch()
}

// NewTestCase creates an empty test case.
func NewTestCase(name string) *TestCase {
	return model.NewTestCase(name)
}

// Register adds a suite to the set run by the oracles command. Suite names
// must be unique.
func Register(suite Suite) error {
	registryMu.Lock()
	defer registryMu.Unlock()

	if strings.TrimSpace(suite.Name) == "" {
		return fmt.Errorf("suite name is required")
	}

	if slices.ContainsFunc(registry, func(s Suite) bool { return s.Name == suite.Name }) {
		return fmt.Errorf("suite %q already registered", suite.Name)
	}

	registry = append(registry, suite)

	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(suite Suite) {
	if err := Register(suite); err != nil {
		panic(err)
	}
}

// Suites returns the registered suites in registration order.
func Suites() []Suite {
	registryMu.Lock()
	defer registryMu.Unlock()

	return slices.Clone(registry)
}

// Lookup returns the registered suites with the given names, or every
// suite when names is empty.
func Lookup(names ...string) ([]Suite, error) {
	all := Suites()
	if len(names) == 0 {
		return all, nil
	}

	selected := make([]Suite, 0, len(names))

	for _, name := range names {
		i := slices.IndexFunc(all, func(s Suite) bool { return s.Name == name })
		if i < 0 {
			return nil, fmt.Errorf("unknown suite %q", name)
		}

		selected = append(selected, all[i])
	}

	return selected, nil
}

func reset() {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry = nil
}
