package domain

import (
	"fmt"
	"strings"
)

// TieBreak selects between candidates killing the same number of mutants.
type TieBreak string

const (
	// TieBreakPreferStructural picks a non-primitive assertion over a
	// primitive one, then the earlier candidate.
	TieBreakPreferStructural TieBreak = "prefer-structural"
	// TieBreakInsertion picks the earlier candidate.
	TieBreakInsertion TieBreak = "insertion"
)

// ParseTieBreak converts a configuration value into a TieBreak.
func ParseTieBreak(value string) (TieBreak, error) {
	switch tb := TieBreak(strings.ToLower(strings.TrimSpace(value))); tb {
	case "":
		return TieBreakPreferStructural, nil
	case TieBreakPreferStructural, TieBreakInsertion:
		return tb, nil
	default:
		return "", fmt.Errorf("unknown tie-break policy %q", value)
	}
}

// Config controls assertion generation for one session.
type Config struct {
	// MaxMutantsPerTest bounds the mutants executed per test; 0 means no bound.
	MaxMutantsPerTest int
	// MutationTimeouts is the number of timeouts or new exceptions after
	// which a mutant is disabled for the rest of the session.
	MutationTimeouts int
	TieBreak         TieBreak
	// FilterNondeterminism re-runs tests to drop unstable assertions.
	FilterNondeterminism bool
	// MinimizationFallback is the fraction of tests that must be minimized
	// once MinimizationFallbackTime of the budget is used; below it the
	// remaining tests get every assertion.
	MinimizationFallback     float64
	MinimizationFallbackTime float64
	// Seed drives mutant order and test shuffling.
	Seed uint64
}

// DefaultConfig returns the default generation settings.
func DefaultConfig() Config {
	return Config{
		MaxMutantsPerTest:        100,
		MutationTimeouts:         3,
		TieBreak:                 TieBreakPreferStructural,
		FilterNondeterminism:     true,
		MinimizationFallback:     0.5,
		MinimizationFallbackTime: 0.7,
	}
}
