package dispatch

import (
	"sync"
)

// Queue is an unbounded FIFO that any goroutine may push onto and a single
// consumer drains. Enqueue never blocks on the consumer.
type Queue[T any] struct {
	mut_items sync.Mutex
	items     []T
}

func CreateQueue[T any]() *Queue[T] {
	return &Queue[T]{
		mut_items: sync.Mutex{},
		items:     []T{},
	}
}

func (q *Queue[T]) Enqueue(item T) {
	q.mut_items.Lock()
	defer q.mut_items.Unlock()
	q.items = append(q.items, item)
}

// Drain runs fn for every item present when Drain was called, oldest first,
// and returns how many ran. Items enqueued while fn runs (including by fn
// itself) are left for the next Drain. A panic in fn discards the rest of
// the batch, so callers that run untrusted code recover inside fn.
func (q *Queue[T]) Drain(fn func(item T)) int {
	q.mut_items.Lock()
	batch := q.items
	q.items = nil
	q.mut_items.Unlock()

	for _, item := range batch {
		fn(item)
	}
	return len(batch)
}

func (q *Queue[T]) Len() int {
	q.mut_items.Lock()
	defer q.mut_items.Unlock()
	return len(q.items)
}

// Clear drops every pending item without running it.
func (q *Queue[T]) Clear() int {
	q.mut_items.Lock()
	defer q.mut_items.Unlock()

	n := len(q.items)
	q.items = nil
	return n
}
