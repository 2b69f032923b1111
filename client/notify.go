package client

import "sync"

// Event is a notification point that multiple independent observers can
// subscribe to. The invocation order across observers is unspecified.
type Event[T any] struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(T)
}

// Subscribe registers the given handler and returns a function that
// unsubscribes it again.
func (e *Event[T]) Subscribe(handler func(T)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handlers == nil {
		e.handlers = make(map[int]func(T))
	}
	id := e.nextID
	e.nextID++
	e.handlers[id] = handler

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.handlers, id)
	}
}

// emit invokes all subscribed handlers with the given value. The handlers
// run outside the event's lock, so a handler may subscribe or unsubscribe
// without deadlocking.
func (e *Event[T]) emit(value T) {
	e.mu.Lock()
	handlers := make([]func(T), 0, len(e.handlers))
	for _, handler := range e.handlers {
		handlers = append(handlers, handler)
	}
	e.mu.Unlock()

	for _, handler := range handlers {
		handler(value)
	}
}
