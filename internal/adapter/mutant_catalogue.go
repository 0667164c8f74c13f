package adapter

import (
	"fmt"
	"slices"

	m "gooze.dev/pkg/oracles/internal/model"
)

// MutantCatalogue enumerates the mutants known for a program under test.
type MutantCatalogue interface {
	Mutants() []m.Mutant
	Lookup(id int) (m.Mutant, bool)
	Len() int
}

type staticCatalogue struct {
	ordered []m.Mutant
	byID    map[int]m.Mutant
}

// NewMutantCatalogue creates a catalogue over a fixed list of mutants.
// Identifiers must be unique and non-negative.
func NewMutantCatalogue(mutants ...m.Mutant) (MutantCatalogue, error) {
	c := &staticCatalogue{
		ordered: make([]m.Mutant, 0, len(mutants)),
		byID:    make(map[int]m.Mutant, len(mutants)),
	}

	for _, mutant := range mutants {
		if mutant.ID < 0 {
			return nil, fmt.Errorf("invalid mutant id %d for %q", mutant.ID, mutant.Name)
		}

		if _, ok := c.byID[mutant.ID]; ok {
			return nil, fmt.Errorf("duplicate mutant id %d", mutant.ID)
		}

		c.byID[mutant.ID] = mutant
		c.ordered = append(c.ordered, mutant)
	}

	slices.SortFunc(c.ordered, func(a, b m.Mutant) int { return a.ID - b.ID })

	return c, nil
}

func (c *staticCatalogue) Mutants() []m.Mutant {
	return slices.Clone(c.ordered)
}

func (c *staticCatalogue) Lookup(id int) (m.Mutant, bool) {
	mutant, ok := c.byID[id]
	return mutant, ok
}

func (c *staticCatalogue) Len() int {
	return len(c.ordered)
}
