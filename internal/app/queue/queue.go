package queue

import (
	"context"
	"sync"
	"time"
)

// Queue is an unbounded FIFO; Push never blocks and Pop waits a bounded time
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	notify chan struct{}
}

// New creates an empty queue
func New[T any]() *Queue[T] {
	return &Queue[T]{notify: make(chan struct{}, 1)}
}

// Push appends an item
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// TryPop removes the head item without waiting
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}

	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]

	return item, true
}

// Pop removes the head item, waiting up to timeout for one to arrive or until ctx ends
func (q *Queue[T]) Pop(ctx context.Context, timeout time.Duration) (T, bool) {
	if item, ok := q.TryPop(); ok {
		return item, true
	}

	var zero T
	if timeout <= 0 {
		return zero, false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-q.notify:
			if item, ok := q.TryPop(); ok {
				return item, true
			}
		case <-timer.C:
			return q.TryPop()
		case <-ctx.Done():
			return zero, false
		}
	}
}

// Len returns the number of queued items
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}
