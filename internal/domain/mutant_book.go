package domain

import "sync"

// mutantBook counts mutant timeouts and new exceptions across a session.
type mutantBook struct {
	limit int

	mu         sync.Mutex
	timeouts   map[int]int
	exceptions map[int]int
}

func newMutantBook(limit int) *mutantBook {
	return &mutantBook{
		limit:      limit,
		timeouts:   make(map[int]int),
		exceptions: make(map[int]int),
	}
}

func (b *mutantBook) timedOut(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.timeouts[id]++
}

func (b *mutantBook) raised(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.exceptions[id]++
}

// disabled reports whether the mutant crossed the limit. A limit of zero or
// less never disables.
func (b *mutantBook) disabled(id int) bool {
	if b.limit <= 0 {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.timeouts[id] >= b.limit || b.exceptions[id] >= b.limit
}
