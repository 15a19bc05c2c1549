package compare

import "sync"

// State is the lifecycle of one orchestrated comparison.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// View is an immutable snapshot of a slot. Result is meaningful only in
// StateSucceeded; Err only in StateFailed.
type View[T any] struct {
	State  State
	Result T
	Err    string
}

// Slot holds the tri-state outcome of an orchestration as a single value,
// so loading/error/result can never coexist. Each invocation obtains a
// token from Begin; completions carrying a superseded token are discarded,
// which makes re-entry safe with last-valid-write-wins semantics.
type Slot[T any] struct {
	mu     sync.Mutex
	state  State
	result T
	errMsg string
	gen    uint64
}

// Begin marks a new invocation as loading and returns its completion token.
func (s *Slot[T]) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.state = StateLoading
	var zero T
	s.result = zero
	s.errMsg = ""

	return s.gen
}

// Succeed stores the result for the invocation identified by token. It
// reports whether the write was applied.
func (s *Slot[T]) Succeed(token uint64, result T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.gen {
		return false
	}

	s.state = StateSucceeded
	s.result = result
	s.errMsg = ""

	return true
}

// Fail stores the error message for the invocation identified by token. It
// reports whether the write was applied.
func (s *Slot[T]) Fail(token uint64, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.gen {
		return false
	}

	s.state = StateFailed
	var zero T
	s.result = zero
	s.errMsg = message

	return true
}

// View returns the current snapshot.
func (s *Slot[T]) View() View[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	return View[T]{State: s.state, Result: s.result, Err: s.errMsg}
}

// Reset returns the slot to idle and invalidates outstanding tokens.
func (s *Slot[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.state = StateIdle
	var zero T
	s.result = zero
	s.errMsg = ""
}
