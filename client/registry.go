package client

import (
	"time"
)

// AwaitTimeout is the default duration to wait for an entity to appear
// when a caller needs it synchronously.
var AwaitTimeout = 5 * time.Second

// Entity is a dynamically created/destroyed record representing one
// instance of a radio sub-resource.
type Entity interface {
	// EntityID returns the identifier of this entity, unique within its
	// collection. The format depends on the entity kind: a decimal index,
	// a 0x-prefixed stream id, or a name.
	EntityID() string
}

// Collection is an insertion-ordered set of entities of one kind, keyed
// by their identifier. Each collection has its own lock; collections are
// independent of each other.
type Collection[E Entity] struct {
	mu       chanMutex
	entities []E

	// Added is emitted after a new entity was added to this collection,
	// with all attributes from the triggering status line already applied.
	Added Event[E]
	// Removed is emitted after an entity was removed from this collection.
	Removed Event[E]
}

// chanMutex is a mutex that can also wake waiters on mutation, used to
// implement the bounded wait in AwaitByID.
type chanMutex struct {
	lock    chan struct{}
	changed chan struct{}
}

func (m *chanMutex) init() {
	if m.lock == nil {
		m.lock = make(chan struct{}, 1)
		m.changed = make(chan struct{})
	}
}

// NewCollection returns an empty collection.
func NewCollection[E Entity]() *Collection[E] {
	result := &Collection[E]{}
	result.mu.init()
	return result
}

func (c *Collection[E]) acquire() {
	c.mu.lock <- struct{}{}
}

func (c *Collection[E]) release(mutated bool) {
	var changed chan struct{}
	if mutated {
		changed = c.mu.changed
		c.mu.changed = make(chan struct{})
	}
	<-c.mu.lock
	if changed != nil {
		close(changed)
	}
}

// Add puts the given entity into the collection. Adding an entity whose
// identifier is already present is a no-op. It returns true if the entity
// was actually added; the Added event is emitted outside the lock.
func (c *Collection[E]) Add(entity E) bool {
	id := entity.EntityID()

	c.acquire()
	for _, e := range c.entities {
		if e.EntityID() == id {
			c.release(false)
			return false
		}
	}
	c.entities = append(c.entities, entity)
	c.release(true)

	c.Added.emit(entity)
	return true
}

// Remove takes the entity with the given identifier out of the
// collection. Removing an unknown identifier is a no-op and emits no
// notification.
func (c *Collection[E]) Remove(id string) (E, bool) {
	var removed E
	found := false

	c.acquire()
	for i, e := range c.entities {
		if e.EntityID() == id {
			removed = e
			found = true
			c.entities = append(c.entities[:i], c.entities[i+1:]...)
			break
		}
	}
	c.release(found)

	if found {
		c.Removed.emit(removed)
	}
	return removed, found
}

// FindByID returns the entity with the given identifier.
func (c *Collection[E]) FindByID(id string) (E, bool) {
	c.acquire()
	defer c.release(false)

	for _, e := range c.entities {
		if e.EntityID() == id {
			return e, true
		}
	}
	var zero E
	return zero, false
}

// All returns a snapshot of all entities in insertion order. The snapshot
// stays stable under concurrent mutation of the collection.
func (c *Collection[E]) All() []E {
	c.acquire()
	defer c.release(false)

	result := make([]E, len(c.entities))
	copy(result, c.entities)
	return result
}

// Count returns the current number of entities.
func (c *Collection[E]) Count() int {
	c.acquire()
	defer c.release(false)
	return len(c.entities)
}

// AwaitByID waits until an entity with the given identifier appears, at
// most for the given timeout. A zero timeout uses AwaitTimeout. It always
// proceeds past the wait: on timeout it returns the zero value and false.
func (c *Collection[E]) AwaitByID(id string, timeout time.Duration) (E, bool) {
	if timeout == 0 {
		timeout = AwaitTimeout
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		c.acquire()
		for _, e := range c.entities {
			if e.EntityID() == id {
				c.release(false)
				return e, true
			}
		}
		changed := c.mu.changed
		c.release(false)

		select {
		case <-changed:
		case <-deadline.C:
			var zero E
			return zero, false
		}
	}
}

// clear removes all entities, emitting a removal notification for each.
// Used during session teardown.
func (c *Collection[E]) clear() {
	c.acquire()
	removed := c.entities
	c.entities = nil
	c.release(len(removed) > 0)

	for _, e := range removed {
		c.Removed.emit(e)
	}
}
