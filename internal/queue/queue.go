// Package queue provides a goroutine-safe FIFO queue that can be waited on.
package queue

import (
	"sync"
)

// Queue is a thread-safe generic FIFO queue
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	ready chan struct{}
}

// New creates an empty queue
func New[T any]() *Queue[T] {
	return &Queue[T]{ready: make(chan struct{}, 1)}
}

// Len returns the number of queued values
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Enqueue appends a value and wakes a waiting consumer
func (q *Queue[T]) Enqueue(value T) {
	q.mu.Lock()
	q.items = append(q.items, value)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Dequeue removes and returns the oldest value
func (q *Queue[T]) Dequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	value := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return value, true
}

// DequeueAll removes and returns every queued value, oldest first
func (q *Queue[T]) DequeueAll() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil
	return items
}

// Ready is signalled after an Enqueue. A consumer should drain with Dequeue after
// receiving from it, since several enqueues may share one signal.
func (q *Queue[T]) Ready() <-chan struct{} {
	return q.ready
}
