package model

import "fmt"

// NoMutant is the ID reported when no mutant is active.
const NoMutant = -1

// Mutant identifies one fault injected into the program under test.
type Mutant struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

func (m Mutant) String() string {
	if m.Name == "" {
		return fmt.Sprintf("mutant %d", m.ID)
	}

	return fmt.Sprintf("mutant %d (%s)", m.ID, m.Name)
}
