package execution

import (
	"slices"
	"sync"

	m "gooze.dev/pkg/oracles/internal/model"
)

// Switch is the mutant activation flag shared between the executor and the
// program under test. Code carrying a mutant asks Reached whether to take
// the faulty path:
//
//	if sw.Reached(7) {
//		return a - b
//	}
//	return a + b
//
// Only the executor activates mutants, one run at a time.
type Switch struct {
	mu      sync.Mutex
	active  int
	touched map[int]struct{}
}

// NewSwitch creates a switch with no active mutant.
func NewSwitch() *Switch {
	return &Switch{
		active:  m.NoMutant,
		touched: make(map[int]struct{}),
	}
}

// Reached records that the code of mutant id executed and reports whether
// that mutant is active.
func (s *Switch) Reached(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touched[id] = struct{}{}

	return s.active == id
}

// Active returns the active mutant ID or model.NoMutant.
func (s *Switch) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

// Activate makes id the active mutant until the returned release is called.
func (s *Switch) Activate(id int) (release func()) {
	s.mu.Lock()
	s.active = id
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.active = m.NoMutant
		s.mu.Unlock()
	}
}

// Touched returns the mutants reached since the last reset, sorted.
func (s *Switch) Touched() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.touched))
	for id := range s.touched {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

func (s *Switch) resetTouched() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touched = make(map[int]struct{})
}
