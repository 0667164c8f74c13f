package domain

import (
	"gooze.dev/pkg/oracles/internal/assertion"
)

// killMap maps candidate indexes to the mutants the candidate detects.
type killMap [][]int

func (k killMap) union() map[int]struct{} {
	all := make(map[int]struct{})

	for _, ids := range k {
		for _, id := range ids {
			all[id] = struct{}{}
		}
	}

	return all
}

// minimize runs a greedy set cover over kills and returns the selected
// candidate indexes in selection order.
func minimize(pool []assertion.Assertion, kills killMap, tieBreak TieBreak) []int {
	covered := make(map[int]struct{})
	chosen := make([]bool, len(pool))

	var selected []int

	for {
		best, bestCount := -1, 0

		for i, ids := range kills {
			if chosen[i] {
				continue
			}

			count := 0

			for _, id := range ids {
				if _, ok := covered[id]; !ok {
					count++
				}
			}

			if count == 0 {
				continue
			}

			if best < 0 || count > bestCount || (count == bestCount && preferred(tieBreak, pool[i], pool[best])) {
				best, bestCount = i, count
			}
		}

		if best < 0 {
			return selected
		}

		chosen[best] = true
		selected = append(selected, best)

		for _, id := range kills[best] {
			covered[id] = struct{}{}
		}
	}
}

// preferred reports whether candidate wins a tie against current. Earlier
// candidates win otherwise.
func preferred(tieBreak TieBreak, candidate, current assertion.Assertion) bool {
	if tieBreak != TieBreakPreferStructural {
		return false
	}

	return candidate.Kind() != assertion.KindPrimitive && current.Kind() == assertion.KindPrimitive
}
