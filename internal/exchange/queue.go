package exchange

import "sync"

// serialQueue runs submitted functions one at a time in submission order.
//
// The goroutine that finds the queue idle drains it. Submissions made while
// draining, including re-entrant ones from inside a running function, are
// appended and run after the current function returns, so a delegate that
// calls back into the controller never observes a half-applied transition.
type serialQueue struct {
	mu       sync.Mutex
	pending  []func()
	draining bool
}

func (q *serialQueue) do(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	if q.draining {
		q.mu.Unlock()
		return
	}
	q.draining = true

	for len(q.pending) > 0 {
		next := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		next()

		q.mu.Lock()
	}
	q.draining = false
	q.mu.Unlock()
}
