package bus

import (
	"context"
	"sync"
)

// queue is a per-subscriber FIFO. With limit > 0 a push onto a full queue
// evicts the oldest item; with limit 0 it grows without bound.
type queue[T any] struct {
	mu     sync.Mutex
	items  []T
	limit  int
	closed bool
	notify chan struct{}
}

func newQueue[T any](limit int) *queue[T] {
	return &queue[T]{
		limit:  limit,
		notify: make(chan struct{}, 1),
	}
}

// push appends v and reports whether an old item was evicted, plus the
// depth after the push. Pushing onto a closed queue is a no-op.
func (q *queue[T]) push(v T) (evicted bool, depth int) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false, 0
	}
	if q.limit > 0 && len(q.items) >= q.limit {
		var zero T
		q.items[0] = zero
		q.items = q.items[1:]
		evicted = true
	}
	q.items = append(q.items, v)
	depth = len(q.items)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return evicted, depth
}

// pop blocks until an item is available, the queue is closed and drained,
// or ctx is done.
func (q *queue[T]) pop(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return v, nil
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return zero, ErrClosed
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-q.notify:
		}
	}
}

func (q *queue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *queue[T]) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}
