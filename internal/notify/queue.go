package notify

import (
	"sync"
	"time"
)

// Kind classifies a notification for display purposes.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// DefaultTTL is how long a notification stays visible unless dismissed.
const DefaultTTL = 5 * time.Second

// Notification is a transient user-facing message.
type Notification struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

// Queue holds notifications in enqueue order and expires each one after a
// fixed delay. It has no failure modes: dismissing an unknown id is a no-op.
type Queue struct {
	mu     sync.Mutex
	ttl    time.Duration
	nextID int64
	items  []*Notification
	timers map[int64]*time.Timer
}

// NewQueue creates a queue whose entries expire after ttl. A non-positive
// ttl falls back to DefaultTTL.
func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{
		ttl:    ttl,
		timers: make(map[int64]*time.Timer),
	}
}

// Enqueue appends a notification and schedules its automatic dismissal.
func (q *Queue) Enqueue(message string, kind Kind) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	id := q.nextID

	q.items = append(q.items, &Notification{
		ID:        id,
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	})
	q.timers[id] = time.AfterFunc(q.ttl, func() {
		q.Dismiss(id)
	})

	return id
}

// Dismiss removes the notification with the given id. It is idempotent and
// cancels the pending automatic dismissal.
func (q *Queue) Dismiss(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}

	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// Active returns the currently visible notifications in enqueue order.
func (q *Queue) Active() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Notification, 0, len(q.items))
	for _, n := range q.items {
		out = append(out, *n)
	}

	return out
}

// Stop cancels all pending expiry timers and clears the queue.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.items = nil
}
