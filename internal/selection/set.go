package selection

import "sync"

// Capacity is the maximum number of candidates that can be marked for
// comparison at once.
const Capacity = 2

// Set tracks which candidate ids are marked for pairwise comparison. It
// never grows beyond Capacity; toggling a new id at capacity is an accepted
// no-op rather than an error, so call sites need no locking or error paths.
type Set struct {
	mu  sync.Mutex
	ids []int
}

// NewSet creates an empty selection set.
func NewSet() *Set {
	return &Set{}
}

// Toggle flips the membership of id. A present id is always removed; an
// absent id is added only while the set is below capacity.
func (s *Set) Toggle(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}

	if len(s.ids) < Capacity {
		s.ids = append(s.ids, id)
	}
}

// IDs returns the selected ids in selection order.
func (s *Set) IDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]int(nil), s.ids...)
}

// CompareEnabled reports whether exactly Capacity candidates are selected.
func (s *Set) CompareEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.ids) == Capacity
}

// Reset clears the selection.
func (s *Set) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = nil
}
