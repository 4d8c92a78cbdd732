package handlers

import (
	"sync"
)

type entry[T any] struct {
	id int
	fn func(T)
}

// List is a set of callbacks for one kind of event, scoped to whatever owns
// it. Add and the returned unsubscribe func may be called from any goroutine;
// Notify runs the callbacks on the calling goroutine.
type List[T any] struct {
	mut_entries sync.Mutex
	nextId      int
	entries     []entry[T]
}

func (l *List[T]) Add(fn func(T)) func() {
	l.mut_entries.Lock()
	defer l.mut_entries.Unlock()

	l.nextId++
	id := l.nextId
	l.entries = append(l.entries, entry[T]{id: id, fn: fn})

	return func() {
		l.mut_entries.Lock()
		defer l.mut_entries.Unlock()

		for i, e := range l.entries {
			if e.id == id {
				l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
				return
			}
		}
	}
}

func (l *List[T]) Len() int {
	l.mut_entries.Lock()
	defer l.mut_entries.Unlock()
	return len(l.entries)
}

// Notify calls every callback registered at the time of the call, in
// registration order. If a callback panics, onPanic receives the recovered
// value and the remaining callbacks still run. A nil onPanic swallows it.
func (l *List[T]) Notify(v T, onPanic func(r any)) {
	l.mut_entries.Lock()
	entries := append([]entry[T]{}, l.entries...)
	l.mut_entries.Unlock()

	for _, e := range entries {
		func() {
			defer func() {
				if r := recover(); r != nil && onPanic != nil {
					onPanic(r)
				}
			}()
			e.fn(v)
		}()
	}
}
