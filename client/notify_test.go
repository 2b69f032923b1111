package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventSubscribeAndUnsubscribe(t *testing.T) {
	var event Event[int]

	first := 0
	second := 0
	unsubscribe := event.Subscribe(func(v int) { first += v })
	event.Subscribe(func(v int) { second += v })

	event.emit(1)
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)

	unsubscribe()
	event.emit(2)
	assert.Equal(t, 1, first)
	assert.Equal(t, 3, second)
}

func TestEventEmitWithoutSubscribers(t *testing.T) {
	var event Event[string]
	event.emit("nobody listens")
}

func TestEventHandlerMaySubscribeDuringEmit(t *testing.T) {
	var event Event[int]

	nested := 0
	event.Subscribe(func(int) {
		event.Subscribe(func(int) { nested++ })
	})

	event.emit(1)
	event.emit(2)
	assert.Equal(t, 1, nested)
}
