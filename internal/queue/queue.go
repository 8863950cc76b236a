// Package queue holds the bounded hand-off buffer between the game thread and background writers.
package queue

import (
	"sync"
)

// Queue is a generic thread-safe FIFO with an optional capacity.
// Pushes beyond capacity are rejected and counted instead of blocking the producer.
type Queue[T any] struct {
	mu       sync.Mutex
	items    []T
	capacity int
	dropped  uint64
	ready    chan struct{}
}

// New creates a new empty queue. A capacity <= 0 means unbounded.
func New[T any](capacity int) *Queue[T] {
	return &Queue[T]{
		items:    make([]T, 0),
		capacity: capacity,
		ready:    make(chan struct{}, 1),
	}
}

// Push appends items to the queue and returns how many did not fit.
func (q *Queue[T]) Push(items ...T) int {
	q.mu.Lock()
	accepted := len(items)
	if q.capacity > 0 {
		accepted = min(accepted, max(q.capacity-len(q.items), 0))
	}
	q.items = append(q.items, items[:accepted]...)
	rejected := len(items) - accepted
	q.dropped += uint64(rejected)
	q.mu.Unlock()

	if accepted > 0 {
		select {
		case q.ready <- struct{}{}:
		default:
		}
	}
	return rejected
}

// Ready is signalled after a push; receivers should Drain afterwards.
func (q *Queue[T]) Ready() <-chan struct{} {
	return q.ready
}

// Pop removes and returns the first item. Returns zero value if empty.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns the number of items rejected because the queue was full.
func (q *Queue[T]) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Drain returns all items in push order and empties the queue.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := q.items
	q.items = make([]T, 0, cap(q.items))
	return result
}
